package observer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/horde/internal/config"
	"github.com/vovakirdan/horde/internal/events"
	"github.com/vovakirdan/horde/internal/runner"
	"github.com/vovakirdan/horde/internal/scenario"
	"github.com/vovakirdan/horde/internal/sim"
)

type fakeSource struct {
	world  *sim.World
	frames chan sim.Frame
}

func newFakeSource(frames ...sim.Frame) *fakeSource {
	ch := make(chan sim.Frame, len(frames))
	for _, f := range frames {
		ch <- f
	}
	close(ch)
	return &fakeSource{world: sim.New(config.DefaultSimConfig()), frames: ch}
}

func (f *fakeSource) Subscribe(int) (<-chan sim.Frame, func()) { return f.frames, func() {} }
func (f *fakeSource) World() *sim.World                         { return f.world }
func (f *fakeSource) RunID() string                             { return "run-xyz" }

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestBootstrap(t *testing.T) {
	s := NewServer(newFakeSource(), Info{Scenario: "swarm", TickRate: 60}, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/bootstrap")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var b BootstrapResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&b))
	assert.Equal(t, Version, b.ProtocolVersion)
	assert.Equal(t, "run-xyz", b.RunID)
	assert.Equal(t, "swarm", b.Scenario)
	assert.Equal(t, float32(4096), b.MapW)

	post, err := http.Post(srv.URL+"/bootstrap", "application/json", nil)
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, post.StatusCode)
}

func TestWatchFiltersAndEnds(t *testing.T) {
	src := newFakeSource(
		sim.Frame{FrameID: 1}, sim.Frame{FrameID: 2},
		sim.Frame{FrameID: 3}, sim.Frame{FrameID: 4, PlayerX: 42},
	)
	srv := httptest.NewServer(NewServer(src, Info{}, nil).Handler())
	defer srv.Close()

	var got []sim.Frame
	err := Watch(context.Background(), wsURL(srv), 2, func(f sim.Frame) error {
		got = append(got, f)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(2), got[0].FrameID)
	assert.Equal(t, float32(42), got[1].PlayerX)
}

func TestBadSubscribeIsRejected(t *testing.T) {
	srv := httptest.NewServer(NewServer(newFakeSource(), Info{}, nil).Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(SubscribeMsg{Type: "HELLO", ProtocolVersion: Version}))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
}

func TestLoopbackOnly(t *testing.T) {
	s := NewServer(newFakeSource(), Info{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/bootstrap", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	s.AllowRemote()
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type idleDirector struct{}

func (idleDirector) ID() string                                 { return "idle" }
func (idleDirector) Setup(*sim.World) error                     { return nil }
func (idleDirector) Resume(*sim.World)                          {}
func (idleDirector) Update(*sim.World, []events.Event, float64) {}
func (idleDirector) Choose(*sim.World, int) error               { return nil }
func (idleDirector) Over() bool                                 { return false }
func (idleDirector) Tally() scenario.Tally                      { return scenario.Tally{} }

func TestStreamsLiveRun(t *testing.T) {
	cfg := config.DefaultSimConfig()
	cfg.FrameBudgetMs = 0
	r := runner.New(sim.New(cfg), idleDirector{}, runner.Options{TickRate: 100, Realtime: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_, _ = r.Run(ctx)
	}()

	srv := httptest.NewServer(NewServer(r, Info{Scenario: "idle", TickRate: 100}, nil).Handler())
	defer srv.Close()

	var ids []uint64
	err := Watch(ctx, wsURL(srv), 1, func(f sim.Frame) error {
		ids = append(ids, f.FrameID)
		if len(ids) == 3 {
			return ErrStopWatching
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Less(t, ids[0], ids[2], "frames arrive in tick order")

	cancel()
	<-runDone
}
