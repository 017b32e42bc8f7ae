package debugserver

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

const maxFrameSize = 256 << 20

// Client attaches to debug servers.
type Client struct {
	Framing Framing
}

// Fetch attaches with newline framing.
func Fetch(ctx context.Context, addr Address) (recording.Export, recording.Warnings, error) {
	return (&Client{}).Fetch(ctx, addr)
}

// Fetch retrieves and imports the document served at addr.
func (c *Client) Fetch(ctx context.Context, addr Address) (recording.Export, recording.Warnings, error) {
	data, err := c.FetchRaw(ctx, addr)
	if err != nil {
		return recording.Export{}, nil, err
	}
	return recording.Decode(data)
}

// FetchRaw retrieves the served document without decoding it.
func (c *Client) FetchRaw(ctx context.Context, addr Address) ([]byte, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, addr.Network(), addr.Target())
	if err != nil {
		return nil, &TransportError{Op: "dial", Addr: addr.String(), Err: err}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	data, err := readFrame(bufio.NewReader(conn), c.Framing)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, &TransportError{Op: "read", Addr: addr.String(), Err: err}
	}
	return data, nil
}

func readFrame(r *bufio.Reader, framing Framing) ([]byte, error) {
	switch framing {
	case FramingLength:
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return nil, err
		}
		if n > maxFrameSize {
			return nil, fmt.Errorf("frame of %d bytes exceeds limit", n)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	default:
		data, err := r.ReadBytes('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(data) > 0) {
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if n := len(data); n > 0 && data[n-1] == '\n' {
			data = data[:n-1]
		}
		return data, nil
	}
}
