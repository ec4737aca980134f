// Package study drives a single lesson's word list through the Learn,
// Practice and Test modes.
package study

import "errors"

// ErrNoWords is returned by Open when the lesson has no words.
var ErrNoWords = errors.New("lesson has no words")

// Mode is the learner-selected study mode.
type Mode int

const (
	ModeLearn    Mode = iota // Read-only browsing
	ModePractice             // Self-assessed flip cards
	ModeTest                 // Multiple choice with auto-advance
)

// Modes lists the modes in display order.
var Modes = []Mode{ModeLearn, ModePractice, ModeTest}

func (m Mode) String() string {
	switch m {
	case ModeLearn:
		return "learn"
	case ModePractice:
		return "practice"
	case ModeTest:
		return "test"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name back to a Mode.
func ParseMode(s string) (Mode, bool) {
	for _, m := range Modes {
		if m.String() == s {
			return m, true
		}
	}
	return ModeLearn, false
}

// State is the machine's current state.
type State int

const (
	StateClosed          State = iota // Not opened yet, or torn down
	StateLearn                        // Browsing words
	StatePracticeCard                 // Flip card, front or back
	StatePracticeSummary              // Practice results grouped by outcome
	StateTestQuestion                 // Answering multiple choice questions
	StateTestSubmitted                // Read-only test results
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateLearn:
		return "learn"
	case StatePracticeCard:
		return "practice-card"
	case StatePracticeSummary:
		return "practice-summary"
	case StateTestQuestion:
		return "test-question"
	case StateTestSubmitted:
		return "test-submitted"
	default:
		return "unknown"
	}
}
