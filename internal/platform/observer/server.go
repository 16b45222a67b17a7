// Package observer streams presentation frames to read-only websocket
// clients.
package observer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/horde/internal/sim"
)

// Source is what the server observes. *runner.Runner satisfies it.
type Source interface {
	Subscribe(buf int) (<-chan sim.Frame, func())
	World() *sim.World
	RunID() string
}

// Info is static run metadata for the bootstrap endpoint.
type Info struct {
	Scenario string
	TickRate int
}

// Server serves /bootstrap and /ws.
type Server struct {
	src    Source
	info   Info
	log    *log.Logger
	remote bool

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

// NewServer creates an observer server. Only loopback clients are served
// unless AllowRemote is called.
func NewServer(src Source, info Info, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		src:  src,
		info: info,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// AllowRemote lets non-loopback clients connect.
func (s *Server) AllowRemote() { s.remote = true }

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bootstrap", s.BootstrapHandler())
	mux.HandleFunc("/ws", s.WSHandler())
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("observer listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) allowed(r *http.Request) bool {
	return s.remote || isLoopbackRemote(r.RemoteAddr)
}

// BootstrapHandler reports the run id, scenario and map size.
func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !s.allowed(r) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		d := s.src.World().Diagnostics()
		resp := BootstrapResponse{
			ProtocolVersion: Version,
			RunID:           s.src.RunID(),
			Scenario:        s.info.Scenario,
			FrameID:         d.FrameID,
			MapW:            d.MapW,
			MapH:            d.MapH,
			TickRate:        s.info.TickRate,
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

// WSHandler upgrades the connection, waits for SUBSCRIBE and then streams
// frames until either side goes away.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !s.allowed(r) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil || sub.Type != TypeSubscribe || sub.ProtocolVersion != Version {
			closeWith(conn, websocket.ClosePolicyViolation, "expected SUBSCRIBE")
			return
		}
		every := uint64(max(sub.Every, 1))

		sid := fmt.Sprintf("O%d", s.nextID.Add(1))
		logger := s.log.With("observer", sid)
		logger.Info("observer joined", "remote", r.RemoteAddr, "every", every)
		defer logger.Info("observer left")

		frames, cancelSub := s.src.Subscribe(2)
		defer cancelSub()

		// Reader: only watches for the client going away.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			_ = conn.SetReadDeadline(time.Time{})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-gone:
				return
			case f, ok := <-frames:
				if !ok {
					_ = writeJSON(conn, map[string]string{"type": TypeEnd})
					closeWith(conn, websocket.CloseNormalClosure, "run finished")
					return
				}
				if f.FrameID%every != 0 {
					continue
				}
				if err := writeJSON(conn, FrameMsg{Type: TypeFrame, Frame: f}); err != nil {
					logger.Debug("write failed", "err", err)
					return
				}
			}
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func closeWith(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(time.Second))
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
