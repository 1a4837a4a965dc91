package chat

import (
	"io"
	"sync"

	"github.com/dmitrijs2005/shack/internal/server/models"
	"github.com/dmitrijs2005/shack/internal/server/ui"
)

// Conn is the per-session transport handle: outbound frame writes plus
// teardown. The sshd package provides the real implementation.
type Conn interface {
	io.Writer
	Close() error
}

// Session is one connected user's live interaction state. All mutable
// fields are guarded by mu; only one of input handling, the sync loop's
// render, or disconnect holds the lock at a time.
type Session struct {
	mu sync.Mutex

	id     uint64
	user   models.User
	conn   Conn
	input  string
	mode   ui.Mode
	scroll int
	width  int
	height int
	active bool

	// lastFrame suppresses rewrites of identical frames, so an idle
	// session costs no transport traffic between ticks.
	lastFrame string
}

func NewSession(user models.User, conn Conn) *Session {
	return &Session{
		user:   user,
		conn:   conn,
		mode:   ui.ModeInsert,
		active: true,
	}
}

// setID is called exactly once, by Registry.Add.
func (s *Session) setID(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
}

func (s *Session) ID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// User returns the session's identity. Immutable after creation.
func (s *Session) User() models.User {
	return s.user
}

func (s *Session) Mode() ui.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) SetMode(m ui.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

func (s *Session) InputLine() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// TypeRune appends a printable character to the input buffer and runs the
// shortcode expansion pass over the result.
func (s *Session) TypeRune(r rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = ExpandShortcodes(s.input + string(r))
}

// Backspace removes the last buffered character. No-op on an empty buffer.
func (s *Session) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	runes := []rune(s.input)
	if len(runes) == 0 {
		return
	}
	s.input = ExpandShortcodes(string(runes[:len(runes)-1]))
}

func (s *Session) ClearInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = ""
}

// ScrollUp moves one line toward older messages. The upper bound is
// applied at render time, where the viewport height is known.
func (s *Session) ScrollUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroll++
}

// ScrollDown moves one line toward newer messages, floored at zero.
func (s *Session) ScrollDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scroll > 0 {
		s.scroll--
	}
}

func (s *Session) ScrollOffset() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scroll
}

func (s *Session) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
	s.lastFrame = ""
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Disconnect marks the session inactive and releases its transport
// channel. Idempotent: the second and later calls are no-ops. The registry
// entry is reaped by the sync loop on its next tick.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	_ = s.conn.Close()
}

// Render draws the current state against the given feed and roster and
// pushes the frame to the transport. The clamped scroll offset is stored
// back. Frames identical to the previous one are not rewritten.
func (s *Session) Render(messages []models.Message, roster []models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return nil
	}

	frame, offset := ui.Render(ui.State{
		Messages:     messages,
		Roster:       roster,
		Mode:         s.mode,
		Input:        s.input,
		ScrollOffset: s.scroll,
		Width:        s.width,
		Height:       s.height,
	})
	s.scroll = offset

	if frame == "" || frame == s.lastFrame {
		return nil
	}

	if _, err := s.conn.Write([]byte(frame)); err != nil {
		return err
	}
	s.lastFrame = frame
	return nil
}
