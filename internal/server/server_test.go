package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
	"github.com/SmitUplenchwar2687/Rewind/internal/recorder"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newSession(t *testing.T) (*recorder.Session, *clock.VirtualClock) {
	t.Helper()
	vc := clock.NewVirtualClock(epoch)
	s := recorder.New(recording.DefaultConfig("inspector-test"), recorder.WithClock(vc), recorder.WithLogger(quietLogger))
	s.Start()
	s.RecordEvent(recording.KindClick, recording.Pointer{X: 5, Y: 5, Button: recording.ButtonLeft})
	vc.Advance(200 * time.Millisecond)
	s.RecordEvent(recording.KindKeyDown, recording.Key{Code: "KeyQ"})
	s.RecordSnapshot(recording.Snapshot{Window: recording.Window{Width: 640, Height: 480, ScaleFactor: 1}})
	return s, vc
}

func startTestServer(t *testing.T, sess Session, opts ...Option) (*Server, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	opts = append([]Option{WithLogger(quietLogger)}, opts...)
	srv := New(ln.Addr().String(), sess, opts...)
	go srv.StartOnListener(ln)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, ln.Addr().String()
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestServer_Root(t *testing.T) {
	sess, _ := newSession(t)
	_, addr := startTestServer(t, sess)

	var body map[string]string
	resp := getJSON(t, "http://"+addr+"/", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rewind", body["service"])
	assert.Equal(t, "inspector-test", body["app"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestServer_Health(t *testing.T) {
	sess, _ := newSession(t)
	_, addr := startTestServer(t, sess)

	var body map[string]string
	resp := getJSON(t, "http://"+addr+"/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_NotFoundAndMethod(t *testing.T) {
	sess, _ := newSession(t)
	_, addr := startTestServer(t, sess)

	resp := getJSON(t, "http://"+addr+"/nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	post, err := http.Post("http://"+addr+"/api/export", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, post.StatusCode)
}

func TestServer_ExportIsCanonical(t *testing.T) {
	sess, _ := newSession(t)
	_, addr := startTestServer(t, sess)

	resp, err := http.Get("http://" + addr + "/api/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	want, err := recording.Marshal(sess.Export())
	require.NoError(t, err)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, string(want), string(body))

	got, warnings, err := recording.Decode(body)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 2, got.Stats.TotalEvents)
}

func TestServer_ExportPretty(t *testing.T) {
	sess, _ := newSession(t)
	_, addr := startTestServer(t, sess)

	resp, err := http.Get("http://" + addr + "/api/export?pretty=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "\n  ")
	got, _, err := recording.Decode(body)
	require.NoError(t, err)
	assert.True(t, recording.Equal(got, sess.Export()))
}

func TestServer_Stats(t *testing.T) {
	sess, _ := newSession(t)
	_, addr := startTestServer(t, sess)

	var msg StatsMessage
	getJSON(t, "http://"+addr+"/api/stats", &msg)
	assert.Equal(t, "stats", msg.Type)
	assert.Equal(t, "recording", msg.State)
	assert.Equal(t, int64(200), msg.ElapsedMS)
	assert.Equal(t, 2, msg.Stats.TotalEvents)
	assert.Equal(t, 1, msg.Stats.TotalSnapshots)
	assert.Equal(t, 200*time.Millisecond, msg.Stats.Duration)
	assert.Equal(t, 1, msg.ByKind[recording.KindClick])
	assert.Equal(t, 1, msg.ByKind[recording.KindKeyDown])
}

func TestServer_ReadOnly(t *testing.T) {
	sess, _ := newSession(t)
	_, addr := startTestServer(t, sess)

	before := sess.Export()
	for _, path := range []string{"/", "/api/export", "/api/stats", "/dashboard"} {
		getJSON(t, "http://"+addr+path, nil)
	}
	assert.True(t, recording.Equal(before, sess.Export()))
	assert.True(t, sess.IsRecording())
}

func TestServer_CORS(t *testing.T) {
	sess, _ := newSession(t)
	_, addr := startTestServer(t, sess, WithAllowedOrigins([]string{"http://devtools.local"}))

	req, err := http.NewRequest(http.MethodGet, "http://"+addr+"/api/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://devtools.local")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://devtools.local", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://elsewhere.local")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_Dashboard(t *testing.T) {
	sess, _ := newSession(t)
	_, addr := startTestServer(t, sess)

	resp, err := http.Get("http://" + addr + "/dashboard")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "Rewind Inspector")
}

func TestServer_WebSocketBroadcast(t *testing.T) {
	sess, _ := newSession(t)
	srv, addr := startTestServer(t, sess, WithBroadcastInterval(20*time.Millisecond))

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return srv.Hub().ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg StatsMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "stats", msg.Type)
	assert.Equal(t, "inspector-test", msg.App)
	assert.Equal(t, 2, msg.Stats.TotalEvents)
}

func TestServer_ShutdownClosesWebSockets(t *testing.T) {
	sess, _ := newSession(t)
	srv, addr := startTestServer(t, sess, WithBroadcastInterval(time.Hour))

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return srv.Hub().ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, srv.Hub().ClientCount())
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	h := NewHub(quietLogger)
	h.Broadcast(StatsMessage{Type: "stats"})
	assert.Equal(t, 0, h.ClientCount())
}

func TestServer_ExportRateLimit(t *testing.T) {
	sess, vc := newSession(t)
	_, addr := startTestServer(t, sess, WithClock(vc), WithExportRateLimit(60, time.Minute, 2))

	for i := 0; i < 2; i++ {
		resp := getJSON(t, "http://"+addr+"/api/export", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i+1)
		assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
	}

	resp := getJSON(t, "http://"+addr+"/api/export", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// Stats stay available while exports are throttled.
	resp = getJSON(t, "http://"+addr+"/api/stats", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	vc.Advance(time.Second)
	resp = getJSON(t, "http://"+addr+"/api/export", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExportLimiter_PerClient(t *testing.T) {
	vc := clock.NewVirtualClock(epoch)
	l := newExportLimiter(1, time.Second, 1, vc)

	assert.True(t, l.take("10.0.0.1").Allowed)
	assert.False(t, l.take("10.0.0.1").Allowed)
	assert.True(t, l.take("10.0.0.2").Allowed)

	d := l.take("10.0.0.1")
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Second, d.RetryAfter)

	vc.Advance(time.Second)
	assert.True(t, l.take("10.0.0.1").Allowed)
}

func TestExportLimiter_SweepsIdleClients(t *testing.T) {
	vc := clock.NewVirtualClock(epoch)
	l := newExportLimiter(10, time.Second, 5, vc)

	for i := 0; i < 100; i++ {
		l.take("10.0.1." + strconv.Itoa(i))
	}
	assert.Equal(t, 100, l.tracked())

	// Half a refill period later nothing has refilled yet.
	vc.Advance(250 * time.Millisecond)
	l.take("10.0.2.1")
	assert.Equal(t, 101, l.tracked())

	// A full refill period after the burst every idle client is back at
	// capacity and forgotten; only the caller remains.
	vc.Advance(time.Second)
	d := l.take("10.0.2.2")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, l.tracked())
	assert.Equal(t, 4, d.Remaining)
}

func TestClientKey(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "/api/export", nil)
	require.NoError(t, err)
	r.RemoteAddr = "192.168.1.4:53211"
	assert.Equal(t, "192.168.1.4", clientKey(r))
	r.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientKey(r))
}
