// Package chat implements the core of the server: per-connection sessions,
// the registry of live sessions, the modal input state machine, and the
// synchronization loop that keeps every connected terminal's view of the
// shared feed and roster eventually consistent.
//
// There is no push-based event bus: sessions never notify each other.
// Every view is refreshed by the loop on a fixed period, which bounds
// staleness to one tick at the cost of a fixed latency floor.
package chat

import (
	"context"
	"time"

	"github.com/dmitrijs2005/shack/internal/logging"
	"github.com/dmitrijs2005/shack/internal/server/chat/keys"
	"github.com/dmitrijs2005/shack/internal/server/models"
	"github.com/dmitrijs2005/shack/internal/server/ui"
)

// MessageLog is the slice of the message service the hub depends on.
type MessageLog interface {
	Append(ctx context.Context, content string, sender models.User) error
	Recent(ctx context.Context) ([]models.Message, error)
}

// Hub owns the registry and drives the synchronization loop. It is
// constructed once at startup and passed by handle to every connection
// task; there is no ambient singleton.
type Hub struct {
	registry *Registry
	messages MessageLog
	interval time.Duration
	logger   logging.Logger
}

func NewHub(messages MessageLog, interval time.Duration, l logging.Logger) *Hub {
	return &Hub{
		registry: NewRegistry(),
		messages: messages,
		interval: interval,
		logger:   l.With("module", "hub"),
	}
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

// Join creates a session for an authenticated user and registers it. The
// user appears in the roster immediately.
func (h *Hub) Join(ctx context.Context, user models.User, conn Conn) *Session {
	s := NewSession(user, conn)
	id := h.registry.Add(s)
	h.logger.Info(ctx, "session joined", "session_id", id, "user", user.Username)
	return s
}

// HandleKey applies one decoded key to the session according to its mode.
// Every (mode, key) pair is total: it mutates state, switches mode, or is
// a no-op. The returned flag tells the caller to reset its byte decoder
// (set on the Insert→Navigate switch, where pending escape bytes must not
// leak into Navigate bindings).
func (h *Hub) HandleKey(ctx context.Context, s *Session, k keys.Key) bool {
	switch s.Mode() {
	case ui.ModeInsert:
		return h.handleInsertKey(ctx, s, k)
	case ui.ModeNavigate:
		h.handleNavigateKey(ctx, s, k)
	}
	return false
}

func (h *Hub) handleInsertKey(ctx context.Context, s *Session, k keys.Key) bool {
	switch k.Type {
	case keys.KeyRune:
		s.TypeRune(k.Rune)
	case keys.KeyBackspace:
		s.Backspace()
	case keys.KeyEnter:
		line := s.InputLine()
		if line == "" {
			return false
		}
		if err := h.messages.Append(ctx, line, s.User()); err != nil {
			// Buffer stays intact; the user may retry with enter.
			h.logger.Error(ctx, "send failed", "session_id", s.ID(), "error", err)
			return false
		}
		s.ClearInput()
	case keys.KeyCtrlN:
		s.SetMode(ui.ModeNavigate)
		return true
	case keys.KeyCtrlQ:
		h.leave(ctx, s)
	}
	return false
}

func (h *Hub) handleNavigateKey(ctx context.Context, s *Session, k keys.Key) {
	switch k.Type {
	case keys.KeyEnter:
		s.SetMode(ui.ModeInsert)
	case keys.KeyRune:
		switch k.Rune {
		case 'q':
			h.leave(ctx, s)
		case 'k':
			s.ScrollUp()
		case 'j':
			s.ScrollDown()
		}
	}
}

func (h *Hub) leave(ctx context.Context, s *Session) {
	s.Disconnect()
	h.logger.Info(ctx, "session disconnected", "session_id", s.ID(), "user", s.User().Username)
}

// Run drives the synchronization loop until ctx is canceled. This is the
// single synchronization point between sessions.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info(ctx, "sync loop starting", "interval", h.interval)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info(ctx, "sync loop stopped")
			return
		case <-ticker.C:
			h.tick(ctx)
		}
	}
}

// tick re-renders every live session from the current feed and roster,
// reaps sessions marked inactive, and republishes the roster from the
// survivors.
func (h *Hub) tick(ctx context.Context) {
	messages, err := h.messages.Recent(ctx)
	if err != nil {
		// Rendering is skipped this tick; reaping still proceeds so dead
		// sessions do not linger through a storage outage.
		h.logger.Error(ctx, "history fetch failed", "error", err)
	}
	roster := h.registry.Roster()

	var dead []uint64
	for _, s := range h.registry.Snapshot() {
		if err == nil {
			if rerr := s.Render(messages, roster); rerr != nil {
				// A failed write does not terminate the session; liveness
				// is decided by the active flag alone.
				h.logger.Error(ctx, "render failed", "session_id", s.ID(), "user", s.User().Username, "error", rerr)
			}
		}
		if !s.Active() {
			dead = append(dead, s.ID())
		}
	}

	for _, id := range dead {
		h.registry.Remove(id)
		h.logger.Debug(ctx, "session reaped", "session_id", id)
	}

	h.registry.RebuildRoster()
}
