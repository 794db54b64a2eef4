package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivierh59500/specks/internal/sim"
)

func TestFrame_EncodeDecode(t *testing.T) {
	s := sim.NewSystem(2, 3, 20, sim.WithSeed(1))
	s.SetParticle(0, mgl64.Vec2{1.5, -2.25}, mgl64.Vec2{1.5, -2.25})
	s.SetParticle(1, mgl64.Vec2{-19, 19.5}, mgl64.Vec2{-19, 19.5})
	s.Tick(1.0 / 60)
	s.SetParticle(0, mgl64.Vec2{1.5, -2.25}, mgl64.Vec2{1.5, -2.25})
	s.SetParticle(1, mgl64.Vec2{-19, 19.5}, mgl64.Vec2{-19, 19.5})

	b := EncodeFrame(s)
	require.Len(t, b, headerSize+2*recordSize)

	f, err := DecodeFrame(b)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), f.Tick)
	assert.Equal(t, float32(20), f.BoxSize)
	assert.Equal(t, []Point{
		{X: 1.5, Y: -2.25, Color: 0},
		{X: -19, Y: 19.5, Color: 1},
	}, f.Points)
}

func TestFrame_AppendReusesBuffer(t *testing.T) {
	s := sim.NewSystem(10, 2, 20, sim.WithSeed(1))
	buf := make([]byte, 0, headerSize+10*recordSize)
	out := AppendFrame(buf, s)
	assert.Equal(t, cap(buf), cap(out))
	assert.Len(t, out, headerSize+10*recordSize)
}

func TestDecodeFrame_Errors(t *testing.T) {
	_, err := DecodeFrame([]byte{1, 2, 3})
	assert.Error(t, err)

	b := EncodeFrame(sim.NewSystem(3, 1, 10, sim.WithSeed(1)))
	_, err = DecodeFrame(b[:len(b)-1])
	assert.Error(t, err)
}

func TestClient_OfferDropsWhenFull(t *testing.T) {
	c := &client{send: make(chan []byte, 1)}
	assert.True(t, c.offer([]byte{1}))
	assert.False(t, c.offer([]byte{2}))
	assert.Equal(t, []byte{1}, <-c.send)
}

func dial(t *testing.T, srv *httptest.Server) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	return websocket.DefaultDialer.Dial(url, nil)
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(4)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn, _, err := dial(t, srv)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	frame := EncodeFrame(sim.NewSystem(5, 2, 30, sim.WithSeed(2)))
	hub.Broadcast(frame)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, got, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, mt)
	assert.Equal(t, frame, got)
	assert.Zero(t, hub.Dropped())
}

func TestHub_Disconnect(t *testing.T) {
	hub := NewHub(4)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := dial(t, srv)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)

	// Broadcasting with no clients is a no-op
	hub.Broadcast([]byte{0})
}

func TestHub_MaxClients(t *testing.T) {
	hub := NewHub(1)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	first, _, err := dial(t, srv)
	require.NoError(t, err)
	defer first.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	_, resp, err := dial(t, srv)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHub_ReserveCountsPendingHandshakes(t *testing.T) {
	hub := NewHub(2)
	assert.True(t, hub.reserve())
	assert.True(t, hub.reserve())
	assert.False(t, hub.reserve())
	assert.Zero(t, hub.Clients())
}

func TestHub_ConcurrentDialsRespectCap(t *testing.T) {
	const maxClients = 3
	hub := NewHub(maxClients)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted []*websocket.Conn
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, _, err := dial(t, srv)
			if err != nil {
				return
			}
			mu.Lock()
			accepted = append(accepted, conn)
			mu.Unlock()
		}()
	}
	wg.Wait()
	defer func() {
		for _, conn := range accepted {
			conn.Close()
		}
	}()

	assert.LessOrEqual(t, len(accepted), maxClients)
	assert.LessOrEqual(t, hub.Clients(), maxClients)
}
