// Package ui composes the full-screen terminal frame for a chat session:
// message feed, user roster, input box and a mode-specific help line.
// Rendering is a pure function of the passed State; the only feedback to
// the caller is the clamped scroll offset.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/shack/internal/server/models"
)

// Mode selects which subset of keys a session currently accepts.
type Mode int

const (
	// ModeInsert: typing a message.
	ModeInsert Mode = iota
	// ModeNavigate: scrolling and commands.
	ModeNavigate
)

func (m Mode) String() string {
	if m == ModeNavigate {
		return "navigate"
	}
	return "insert"
}

// State is the snapshot a frame is rendered from.
type State struct {
	Messages     []models.Message
	Roster       []models.User
	Mode         Mode
	Input        string
	ScrollOffset int
	Width        int
	Height       int
}

const (
	minWidth  = 20
	minHeight = 7

	inputBoxHeight = 3
	helpLineHeight = 1
)

var (
	paneStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder())
	helpInsert = "Ctrl-N: navigate mode | Ctrl-Q: exit"
)

// Render produces one complete frame (clear screen, CRLF line endings) and
// the scroll offset after clamping. A viewport smaller than the minimum
// (in particular the 0x0 viewport before the pty is sized) yields an empty
// frame and leaves the offset untouched.
func Render(st State) (string, int) {
	if st.Width < minWidth || st.Height < minHeight {
		return "", st.ScrollOffset
	}

	mainHeight := st.Height - inputBoxHeight - helpLineHeight
	rosterWidth := st.Width / 10
	if rosterWidth < 8 {
		rosterWidth = 8
	}
	messagesWidth := st.Width - rosterWidth
	visibleLines := mainHeight - 2

	offset := clampOffset(st.ScrollOffset, len(st.Messages), mainHeight)

	messagePane := paneStyle.
		Width(messagesWidth - 2).
		Height(visibleLines).
		Render(strings.Join(messageLines(st.Messages, offset, visibleLines, messagesWidth-2), "\n"))

	rosterPane := paneStyle.
		Width(rosterWidth - 2).
		Height(visibleLines).
		Render(strings.Join(rosterLines(st.Roster, rosterWidth-2), "\n"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, messagePane, rosterPane)

	var input string
	if st.Mode == ModeInsert {
		input = paneStyle.
			Width(st.Width - 2).
			Height(1).
			Render(truncate("> "+st.Input+"▉", st.Width-2))
	} else {
		input = strings.Repeat("\n", inputBoxHeight-1)
	}

	help := helpInsert
	if st.Mode == ModeNavigate {
		help = fmt.Sprintf("Enter: exit navigate mode | k: scroll up | j: scroll down | q: exit | offset: %d", offset)
	}

	frame := lipgloss.JoinVertical(lipgloss.Left, main, input, truncate(help, st.Width))

	return "\x1b[2J\x1b[H" + strings.ReplaceAll(frame, "\n", "\r\n"), offset
}

// clampOffset bounds the scroll offset to [0, max(0, count - paneHeight + 2)].
// The upper bound keeps at least one screenful reachable when scrolled all
// the way back.
func clampOffset(offset, count, paneHeight int) int {
	maxOffset := count - paneHeight + 2
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// messageLines returns the window of the feed that is visible at the given
// offset: offset lines are dropped from the bottom (newest) end, then the
// last height lines are kept, oldest first.
func messageLines(messages []models.Message, offset, height, width int) []string {
	end := len(messages) - offset
	if end < 0 {
		end = 0
	}
	start := end - height
	if start < 0 {
		start = 0
	}

	lines := make([]string, 0, end-start)
	for _, m := range messages[start:end] {
		lines = append(lines, truncate(m.Sender.Username+": "+m.Content, width))
	}
	return lines
}

func rosterLines(roster []models.User, width int) []string {
	lines := make([]string, 0, len(roster))
	for _, u := range roster {
		lines = append(lines, truncate("@"+u.Username, width))
	}
	return lines
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}
