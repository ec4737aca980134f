package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kalima/internal/ui/theme"
)

// ChoiceList renders the options of one multiple-choice question. The
// owner decides what a pick means; ChoiceList only tracks the cursor.
type ChoiceList struct {
	Options  []string
	Cursor   int
	Chosen   string // Empty until an option is picked
	Correct  string // Revealed answer; empty hides it
	Disabled bool
}

// NewChoiceList creates a list with the cursor on the first option.
func NewChoiceList(options []string) ChoiceList {
	return ChoiceList{Options: options}
}

// Update moves the cursor. It returns the picked option when the learner
// presses enter or a number key, or "" otherwise.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, string) {
	if c.Disabled || len(c.Options) == 0 {
		return c, ""
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, ""
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	case "enter":
		return c, c.Options[c.Cursor]
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(c.Options) {
				c.Cursor = i
				return c, c.Options[i]
			}
		}
	}
	return c, ""
}

// View renders the options.
func (c ChoiceList) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Cursor && c.Chosen == "" && !c.Disabled {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)

		switch {
		case c.Correct != "" && opt == c.Correct:
			b.WriteString(theme.Correct.Render(line))
		case c.Chosen != "" && opt == c.Chosen && c.Correct != "":
			b.WriteString(theme.Incorrect.Render(line))
		case c.Chosen != "" && opt == c.Chosen:
			b.WriteString(theme.Selected.Render(line))
		case c.Chosen != "" || c.Disabled:
			b.WriteString(theme.Muted.Render(line))
		case i == c.Cursor:
			b.WriteString(theme.Selected.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
