package study

import "github.com/abhisek/kalima/internal/vocab"

// Snapshot is a read-only copy of the machine state for renderers.
type Snapshot struct {
	SessionID string
	LessonID  int64
	Mode      Mode
	State     State
	Flipped   bool

	// Position and Total describe the cursor in the active mode's order.
	Position int
	Total    int
	Word     vocab.VocabularyWord
	HasWord  bool

	// Practice.
	Practiced int

	// Test.
	Attempt      int
	Question     TestQuestion
	Answered     int
	AllAnswered  bool
	TimerPending bool
}

// Snapshot copies the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		SessionID: m.sessionID,
		LessonID:  m.lessonID,
		Mode:      m.mode,
		State:     m.state,
		Flipped:   m.flipped,
		Attempt:   m.attempt,
	}
	if m.seq == nil {
		return snap
	}

	snap.Total = m.seq.Len()
	snap.Position = m.seq.Cursor(m.mode)
	snap.Word, snap.HasWord = m.seq.Current(m.mode)
	snap.Practiced = len(m.outcomes)

	if m.mode == ModeTest && m.questions != nil {
		q := m.questions[snap.Position]
		q.Options = append([]string(nil), q.Options...)
		snap.Question = q
		for _, q := range m.questions {
			if q.Answered {
				snap.Answered++
			}
		}
		snap.AllAnswered = snap.Answered == len(m.questions)
		snap.TimerPending = m.pending != nil
	}
	return snap
}
