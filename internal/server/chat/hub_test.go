package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/shack/internal/logging"
	"github.com/dmitrijs2005/shack/internal/server/chat/keys"
	"github.com/dmitrijs2005/shack/internal/server/models"
	"github.com/dmitrijs2005/shack/internal/server/ui"
)

type stubLog struct {
	mu        sync.Mutex
	messages  []models.Message
	appendErr error
	recentErr error
}

func (l *stubLog) Append(ctx context.Context, content string, sender models.User) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.appendErr != nil {
		return l.appendErr
	}
	l.messages = append(l.messages, models.Message{
		ID:      int64(len(l.messages) + 1),
		Content: content,
		Sender:  sender,
	})
	return nil
}

func (l *stubLog) Recent(ctx context.Context) ([]models.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.recentErr != nil {
		return nil, l.recentErr
	}
	out := make([]models.Message, len(l.messages))
	copy(out, l.messages)
	return out, nil
}

func newTestHub(log *stubLog) *Hub {
	return NewHub(log, 50*time.Millisecond, logging.NewNopLogger())
}

func keyRune(r rune) keys.Key { return keys.Key{Type: keys.KeyRune, Rune: r} }

// --- input state machine ---

func TestHandleKey_InsertMode(t *testing.T) {
	tests := []struct {
		name       string
		seed       string
		key        keys.Key
		wantBuffer string
		wantMode   ui.Mode
		wantReset  bool
	}{
		{name: "printable appends", seed: "h", key: keyRune('i'), wantBuffer: "hi", wantMode: ui.ModeInsert},
		{name: "space appends", seed: "hi", key: keyRune(' '), wantBuffer: "hi ", wantMode: ui.ModeInsert},
		{name: "backspace trims", seed: "hi", key: keys.Key{Type: keys.KeyBackspace}, wantBuffer: "h", wantMode: ui.ModeInsert},
		{name: "backspace on empty is noop", seed: "", key: keys.Key{Type: keys.KeyBackspace}, wantBuffer: "", wantMode: ui.ModeInsert},
		{name: "enter on empty is noop", seed: "", key: keys.Key{Type: keys.KeyEnter}, wantBuffer: "", wantMode: ui.ModeInsert},
		{name: "ctrl-n switches and resets decoder", seed: "hi", key: keys.Key{Type: keys.KeyCtrlN}, wantBuffer: "hi", wantMode: ui.ModeNavigate, wantReset: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHub(&stubLog{})
			s, _ := newTestSession()
			for _, r := range tc.seed {
				s.TypeRune(r)
			}

			reset := h.HandleKey(context.Background(), s, tc.key)

			assert.Equal(t, tc.wantBuffer, s.InputLine())
			assert.Equal(t, tc.wantMode, s.Mode())
			assert.Equal(t, tc.wantReset, reset)
			assert.True(t, s.Active())
		})
	}
}

func TestHandleKey_InsertEnterSendsAndClears(t *testing.T) {
	log := &stubLog{}
	h := newTestHub(log)
	s, _ := newTestSession()
	ctx := context.Background()

	for _, r := range "hi" {
		h.HandleKey(ctx, s, keyRune(r))
	}
	h.HandleKey(ctx, s, keys.Key{Type: keys.KeyEnter})

	assert.Equal(t, "", s.InputLine())
	got, err := log.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hi", got[0].Content)
	assert.Equal(t, "alice", got[0].Sender.Username)
}

func TestHandleKey_InsertEnterKeepsBufferOnSendFailure(t *testing.T) {
	log := &stubLog{appendErr: errors.New("storage unavailable")}
	h := newTestHub(log)
	s, _ := newTestSession()
	ctx := context.Background()

	h.HandleKey(ctx, s, keyRune('h'))
	h.HandleKey(ctx, s, keyRune('i'))
	h.HandleKey(ctx, s, keys.Key{Type: keys.KeyEnter})

	assert.Equal(t, "hi", s.InputLine(), "buffer must survive a failed send")

	// Retry after the failure clears.
	log.appendErr = nil
	h.HandleKey(ctx, s, keys.Key{Type: keys.KeyEnter})
	assert.Equal(t, "", s.InputLine())
}

func TestHandleKey_InsertCtrlQDisconnects(t *testing.T) {
	h := newTestHub(&stubLog{})
	s, conn := newTestSession()

	h.HandleKey(context.Background(), s, keys.Key{Type: keys.KeyCtrlQ})

	assert.False(t, s.Active())
	assert.Equal(t, 1, conn.closeCount())
}

func TestHandleKey_NavigateMode(t *testing.T) {
	tests := []struct {
		name       string
		key        keys.Key
		wantMode   ui.Mode
		wantScroll int
		wantActive bool
	}{
		{name: "enter returns to insert", key: keys.Key{Type: keys.KeyEnter}, wantMode: ui.ModeInsert, wantActive: true},
		{name: "k scrolls toward older", key: keyRune('k'), wantMode: ui.ModeNavigate, wantScroll: 1, wantActive: true},
		{name: "j floors at zero", key: keyRune('j'), wantMode: ui.ModeNavigate, wantActive: true},
		{name: "q disconnects", key: keyRune('q'), wantMode: ui.ModeNavigate, wantActive: false},
		{name: "other runes ignored", key: keyRune('x'), wantMode: ui.ModeNavigate, wantActive: true},
		{name: "ctrl-q ignored in navigate", key: keys.Key{Type: keys.KeyCtrlQ}, wantMode: ui.ModeNavigate, wantActive: true},
		{name: "backspace ignored in navigate", key: keys.Key{Type: keys.KeyBackspace}, wantMode: ui.ModeNavigate, wantActive: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHub(&stubLog{})
			s, _ := newTestSession()
			s.SetMode(ui.ModeNavigate)

			reset := h.HandleKey(context.Background(), s, tc.key)

			assert.False(t, reset)
			assert.Equal(t, tc.wantMode, s.Mode())
			assert.Equal(t, tc.wantScroll, s.ScrollOffset())
			assert.Equal(t, tc.wantActive, s.Active())
		})
	}
}

func TestHandleKey_NavigateTypingDoesNotTouchBuffer(t *testing.T) {
	h := newTestHub(&stubLog{})
	s, _ := newTestSession()
	s.TypeRune('h')
	s.SetMode(ui.ModeNavigate)

	h.HandleKey(context.Background(), s, keyRune('x'))

	assert.Equal(t, "h", s.InputLine())
}

// --- synchronization loop ---

func TestTick_RendersEverySessionFromSharedState(t *testing.T) {
	log := &stubLog{}
	h := newTestHub(log)
	ctx := context.Background()

	alice := h.Join(ctx, models.Authenticated("alice"), &stubConn{})
	alice.Resize(80, 24)
	bobConn := &stubConn{}
	bob := h.Join(ctx, models.Authenticated("bob"), bobConn)
	bob.Resize(80, 24)

	for _, r := range "hi" {
		h.HandleKey(ctx, alice, keyRune(r))
	}
	h.HandleKey(ctx, alice, keys.Key{Type: keys.KeyEnter})

	h.tick(ctx)

	frame := bobConn.lastFrame()
	assert.Contains(t, frame, "alice: hi")
	assert.Contains(t, frame, "@alice")
	assert.Contains(t, frame, "@bob")
}

func TestTick_ReapsInactiveAndRebuildsRoster(t *testing.T) {
	h := newTestHub(&stubLog{})
	ctx := context.Background()

	alice := h.Join(ctx, models.Authenticated("alice"), &stubConn{})
	h.Join(ctx, models.Authenticated("bob"), &stubConn{})
	require.Len(t, h.registry.Roster(), 2)

	alice.Disconnect()
	h.tick(ctx)

	assert.Equal(t, 1, h.registry.Len())
	assert.Equal(t, []models.User{models.Authenticated("bob")}, h.registry.Roster())
}

func TestTick_RenderFailureDoesNotAffectOtherSessions(t *testing.T) {
	h := newTestHub(&stubLog{})
	ctx := context.Background()

	broken := h.Join(ctx, models.Authenticated("alice"), &stubConn{writeErr: errors.New("pipe broken")})
	broken.Resize(80, 24)
	okConn := &stubConn{}
	ok := h.Join(ctx, models.Authenticated("bob"), okConn)
	ok.Resize(80, 24)

	h.tick(ctx)

	// A write failure neither aborts the loop nor kills the session.
	assert.True(t, broken.Active())
	assert.Equal(t, 2, h.registry.Len())
	assert.Equal(t, 1, okConn.frameCount())
}

func TestTick_FetchFailureSkipsRenderButStillReaps(t *testing.T) {
	log := &stubLog{recentErr: errors.New("db down")}
	h := newTestHub(log)
	ctx := context.Background()

	conn := &stubConn{}
	s := h.Join(ctx, models.Authenticated("alice"), conn)
	s.Resize(80, 24)
	s.Disconnect()

	h.tick(ctx)

	assert.Zero(t, conn.frameCount())
	assert.Zero(t, h.registry.Len())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	h := NewHub(&stubLog{}, time.Millisecond, logging.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	conn := &stubConn{}
	s := h.Join(ctx, models.Authenticated("alice"), conn)
	s.Resize(80, 24)

	require.Eventually(t, func() bool { return conn.frameCount() > 0 }, time.Second, time.Millisecond,
		"the loop must render within a few ticks")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on cancel")
	}
}
