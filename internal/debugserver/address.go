package debugserver

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AddressKind tells how an Address was specified.
type AddressKind int

const (
	// AddressName derives a socket path from an application name.
	AddressName AddressKind = iota
	// AddressPath is an explicit Unix socket path.
	AddressPath
	// AddressTCP is a host and port.
	AddressTCP
)

func (k AddressKind) String() string {
	switch k {
	case AddressName:
		return "name"
	case AddressPath:
		return "path"
	case AddressTCP:
		return "tcp"
	default:
		return "unknown"
	}
}

// SocketDir is the directory name-derived socket paths live in.
var SocketDir = filepath.Join(os.TempDir(), "rewind")

// Address identifies where a debug server listens. Build it with
// NameAddress, PathAddress, TCPAddress or ParseAddress.
type Address struct {
	Kind AddressKind
	Name string
	Path string
	Host string
	Port int
}

func NameAddress(name string) Address {
	return Address{Kind: AddressName, Name: name}
}

func PathAddress(path string) Address {
	return Address{Kind: AddressPath, Path: path}
}

func TCPAddress(host string, port int) Address {
	return Address{Kind: AddressTCP, Host: host, Port: port}
}

// ParseAddress accepts "unix:///path", "tcp://host:port", a bare
// "host:port", a filesystem path, or an application name.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Address{}, errors.New("debug server address is empty")
	case strings.HasPrefix(s, "unix://"):
		path := strings.TrimPrefix(s, "unix://")
		if path == "" {
			return Address{}, fmt.Errorf("invalid address %q: empty socket path", s)
		}
		return PathAddress(path), nil
	case strings.HasPrefix(s, "tcp://"):
		return parseHostPort(s, strings.TrimPrefix(s, "tcp://"))
	case strings.ContainsRune(s, '/') || strings.HasSuffix(s, ".sock"):
		return PathAddress(s), nil
	case strings.ContainsRune(s, ':'):
		return parseHostPort(s, s)
	default:
		return NameAddress(s), nil
	}
}

func parseHostPort(orig, hostport string) (Address, error) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", orig, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return Address{}, fmt.Errorf("invalid port in address %q", orig)
	}
	return TCPAddress(host, port), nil
}

// SocketPath returns the socket path derived from an application name.
// The same name always yields the same path.
func SocketPath(name string) string {
	return filepath.Join(SocketDir, sanitizeName(name)+".sock")
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "app"
	}
	return b.String()
}

// Network returns "unix" or "tcp".
func (a Address) Network() string {
	if a.Kind == AddressTCP {
		return "tcp"
	}
	return "unix"
}

// Target returns the dialable form: a socket path or host:port.
func (a Address) Target() string {
	switch a.Kind {
	case AddressName:
		return SocketPath(a.Name)
	case AddressPath:
		return a.Path
	default:
		return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
	}
}

func (a Address) String() string {
	return a.Network() + "://" + a.Target()
}
