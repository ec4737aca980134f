package study

import "time"

// openedMsg is sent when the machine finished loading the lesson.
type openedMsg struct {
	Err error
}

// tickMsg re-renders while an auto-advance timer is pending.
type tickMsg time.Time

// changedMsg is sent from the machine's change hook when the timer moved
// the session without a key press.
type changedMsg struct{}
