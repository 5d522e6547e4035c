package shell

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/tonimelisma/switchboard/internal/browser"
)

// Window geometry settings maintained by the shell. Sizes below the minimums
// are clamped, not rejected, so a misbehaving window manager cannot persist
// an unusable geometry.
const (
	WindowWidthKey  = "window.width"
	WindowHeightKey = "window.height"

	windowMinWidth  = 640
	windowMinHeight = 480
)

// clientBufferSize is the per-connection outbound queue. A client that stops
// reading for this many messages is dropped rather than allowed to stall the
// dispatch path.
const clientBufferSize = 64

// Server owns the engine on behalf of all connected shells. Every dispatch
// runs under one mutex: the engine's contract is strictly serial, and the
// state is small enough that contention is irrelevant next to the SQLite
// commit inside each dispatch.
type Server struct {
	logger *slog.Logger

	mu      sync.Mutex
	engine  *browser.Engine
	thumbs  thumbnailLRU
	clients map[string]chan []byte
}

// NewServer wraps an engine for websocket access.
func NewServer(engine *browser.Engine, logger *slog.Logger) *Server {
	return &Server{
		logger:  logger,
		engine:  engine,
		clients: make(map[string]chan []byte),
	}
}

// Dispatch applies one intent and broadcasts the resulting patch to every
// connected shell. Safe for concurrent use.
func (s *Server) Dispatch(ctx context.Context, intent browser.Intent) (browser.Patch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dispatchLocked(ctx, intent)
}

func (s *Server) dispatchLocked(ctx context.Context, intent browser.Intent) (browser.Patch, error) {
	patch, err := s.engine.Dispatch(ctx, intent)
	if err != nil {
		return browser.Patch{}, err
	}
	s.broadcastLocked(patch)

	if observe, ok := intent.(browser.ObserveTabThumbnail); ok {
		s.retainThumbnailsLocked(ctx, observe)
	}

	return patch, nil
}

// retainThumbnailsLocked updates the retention list after a thumbnail
// observation and clears the oldest thumbnails beyond the cap.
func (s *Server) retainThumbnailsLocked(ctx context.Context, observe browser.ObserveTabThumbnail) {
	if observe.DataURL == "" {
		s.thumbs.remove(observe.TabID)
	} else {
		s.thumbs.touch(observe.TabID)
	}

	for _, tabID := range s.thumbs.evictable(s.engine.State()) {
		patch, err := s.engine.Dispatch(ctx, browser.ObserveTabThumbnail{TabID: tabID})
		if err != nil {
			s.logger.Warn("thumbnail eviction failed", "tab", tabID, "error", err)
			continue
		}
		s.thumbs.remove(tabID)
		s.broadcastLocked(patch)
	}
}

func (s *Server) broadcastLocked(patch browser.Patch) {
	if len(patch.Ops) == 0 {
		return
	}

	encoded, err := EncodePatch(patch)
	if err != nil {
		s.logger.Error("patch encoding failed", "error", err)
		return
	}

	for id, ch := range s.clients {
		select {
		case ch <- encoded:
		default:
			s.logger.Warn("dropping stalled client", "client", id)
			close(ch)
			delete(s.clients, id)
		}
	}
}

// Setting reads one setting under the dispatch lock.
func (s *Server) Setting(key string) (browser.SettingValue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.engine.State().Settings[key]
	return value, ok
}

// HandleMessage decodes and executes one inbound wire message, returning the
// resulting patch. Shell-boundary commands that never reach the reducer
// (window_resized) return an empty patch.
func (s *Server) HandleMessage(ctx context.Context, data []byte) (browser.Patch, error) {
	cmd, err := DecodeCommand(data)
	if err != nil {
		return browser.Patch{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cmd.Type == "window_resized" {
		return s.persistWindowSizeLocked(ctx, cmd.Width, cmd.Height)
	}

	intent, err := cmd.Intent(s.engine.State())
	if err != nil {
		return browser.Patch{}, err
	}

	return s.dispatchLocked(ctx, intent)
}

// persistWindowSizeLocked writes window geometry through ordinary setting
// intents, with a no-change short-circuit because window managers emit
// resize events far more often than the size actually changes.
func (s *Server) persistWindowSizeLocked(ctx context.Context, width, height int64) (browser.Patch, error) {
	if width < windowMinWidth {
		width = windowMinWidth
	}
	if height < windowMinHeight {
		height = windowMinHeight
	}

	settings := s.engine.State().Settings

	var last browser.Patch
	for _, dim := range []struct {
		key   string
		value int64
	}{
		{WindowWidthKey, width},
		{WindowHeightKey, height},
	} {
		current, ok := settings[dim.key]
		if ok && current.Kind == browser.SettingInt && current.Int == dim.value {
			continue
		}
		patch, err := s.dispatchLocked(ctx, browser.SettingSet{
			Key:   dim.key,
			Value: browser.IntSetting(dim.value),
		})
		if err != nil {
			return browser.Patch{}, err
		}
		last = patch
	}

	return last, nil
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ServeHTTP upgrades the connection, sends a full snapshot, then relays
// commands in and patches out until the client disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	clientID := uuid.NewString()
	logger := s.logger.With("client", clientID)
	logger.Info("shell connected", "remote", r.RemoteAddr)

	snapshot, outbound, err := s.subscribe(clientID)
	if err != nil {
		logger.Error("snapshot encoding failed", "error", err)
		return
	}
	defer s.unregister(clientID)

	if err := conn.Write(ctx, websocket.MessageText, snapshot); err != nil {
		logger.Warn("snapshot send failed", "error", err)
		return
	}

	go func() {
		for msg := range outbound {
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				logger.Info("shell disconnected")
			} else {
				logger.Warn("shell read failed", "error", err)
			}
			return
		}

		if _, err := s.HandleMessage(ctx, data); err != nil {
			logger.Warn("command rejected", "error", err)
			if sendErr := writeJSON(ctx, conn, errorMessage{Type: "error", Message: err.Error()}); sendErr != nil {
				return
			}
		}
	}
}

// subscribe encodes the current snapshot and registers the client's outbound
// channel under a single lock hold. The two must be atomic: registering after
// releasing the lock would let a concurrent dispatch broadcast a patch that is
// neither in the snapshot nor queued on the channel, leaving the client stale
// with no resync path.
func (s *Server) subscribe(clientID string) ([]byte, chan []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded, err := EncodeSnapshot(s.engine.Snapshot())
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan []byte, clientBufferSize)
	s.clients[clientID] = ch

	return encoded, ch, nil
}

func (s *Server) unregister(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.clients[clientID]; ok {
		close(ch)
		delete(s.clients, clientID)
	}
}

func writeJSON(ctx context.Context, conn *websocket.Conn, v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	return conn.Write(ctx, websocket.MessageText, encoded)
}
