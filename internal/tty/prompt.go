package tty

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Prompt is the typing line under the clearing.
type Prompt struct {
	buf   []rune
	limit int
}

// NewPrompt returns an empty prompt accepting up to limit runes.
func NewPrompt(limit int) *Prompt {
	if limit <= 0 {
		limit = 280
	}
	return &Prompt{limit: limit}
}

// Text returns the line typed so far.
func (p *Prompt) Text() string { return string(p.buf) }

// Key applies one key press. On Enter it returns the trimmed line and true,
// and clears the prompt. Blank lines are swallowed.
func (p *Prompt) Key(ev *tcell.EventKey) (string, bool) {
	switch ev.Key() {
	case tcell.KeyEnter:
		line := strings.TrimSpace(string(p.buf))
		p.buf = p.buf[:0]
		return line, line != ""
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(p.buf) > 0 {
			p.buf = p.buf[:len(p.buf)-1]
		}
	case tcell.KeyCtrlU:
		p.buf = p.buf[:0]
	case tcell.KeyRune:
		if len(p.buf) < p.limit {
			p.buf = append(p.buf, ev.Rune())
		}
	}
	return "", false
}
