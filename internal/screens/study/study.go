// Package study implements the lesson screen that drives a study.Machine
// through its learn, practice and test modes.
package study

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kalima/internal/screen"
	engine "github.com/abhisek/kalima/internal/study"
	"github.com/abhisek/kalima/internal/ui/components"
	"github.com/abhisek/kalima/internal/ui/layout"
	"github.com/abhisek/kalima/internal/vocab"
)

const tickInterval = 250 * time.Millisecond

// Machine is the part of study.Machine the screen drives.
type Machine interface {
	Open(ctx context.Context) error
	Snapshot() engine.Snapshot
	SetMode(engine.Mode) bool
	Next() bool
	Previous() bool
	Flip() bool
	AnswerPractice(correct bool) bool
	SummaryView() engine.PracticeSummary
	JumpToWord(wordID int64) bool
	ResetPractice() bool
	SelectOption(option string) bool
	ViewResults() bool
	Retake() bool
	TestReport() engine.TestReport
	Close()
	Flush()
}

var _ Machine = (*engine.Machine)(nil)

// StudyScreen is the vocabulary view for one lesson.
type StudyScreen struct {
	lesson  vocab.Lesson
	machine Machine

	snap   engine.Snapshot
	errMsg string
	ready  bool

	choices    components.ChoiceList
	choicesKey [2]int

	// summaryCursor indexes the flattened practice summary.
	summaryCursor int

	startMode engine.Mode
}

var _ screen.Screen = (*StudyScreen)(nil)
var _ screen.KeyHintProvider = (*StudyScreen)(nil)

// New creates a StudyScreen. The machine is opened by Init.
func New(lesson vocab.Lesson, m Machine) *StudyScreen {
	return &StudyScreen{lesson: lesson, machine: m}
}

// StartIn makes the screen switch to mode once the lesson is loaded.
func (s *StudyScreen) StartIn(mode engine.Mode) *StudyScreen {
	s.startMode = mode
	return s
}

func (s *StudyScreen) Init() tea.Cmd {
	m := s.machine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return openedMsg{Err: m.Open(ctx)}
	}
}

func (s *StudyScreen) Title() string {
	return s.lesson.Title
}

// Close tears the machine down and waits for pending writes.
func (s *StudyScreen) Close() {
	s.machine.Close()
	s.machine.Flush()
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case openedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.ready = true
		if s.startMode != engine.ModeLearn {
			s.machine.SetMode(s.startMode)
		}
		s.refresh()
		return s, nil

	case tickMsg, changedMsg:
		if !s.ready {
			return s, nil
		}
		s.refresh()
		return s, s.maybeTick()

	case tea.KeyMsg:
		if !s.ready {
			return s, nil
		}
		cmd := s.handleKey(msg)
		s.refresh()
		if cmd != nil {
			return s, cmd
		}
		return s, s.maybeTick()
	}
	return s, nil
}

func (s *StudyScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab":
		s.machine.SetMode(nextMode(s.snap.Mode))
		return nil
	case "shift+tab":
		s.machine.SetMode(prevMode(s.snap.Mode))
		return nil
	}

	switch s.snap.State {
	case engine.StateLearn:
		s.handleNav(msg)

	case engine.StatePracticeCard:
		switch msg.String() {
		case "space", " ", "f":
			s.machine.Flip()
		case "y":
			if s.snap.Flipped {
				s.machine.AnswerPractice(true)
			}
		case "n":
			if s.snap.Flipped {
				s.machine.AnswerPractice(false)
			}
		default:
			s.handleNav(msg)
		}

	case engine.StatePracticeSummary:
		s.handleSummaryKey(msg)

	case engine.StateTestQuestion:
		switch msg.String() {
		case "left", "right":
			s.handleNav(msg)
			return nil
		case "v":
			s.machine.ViewResults()
			return nil
		}
		var picked string
		s.choices, picked = s.choices.Update(msg)
		if picked != "" && s.machine.SelectOption(picked) {
			return tickCmd()
		}

	case engine.StateTestSubmitted:
		if msg.String() == "r" {
			s.machine.Retake()
		}
	}
	return nil
}

func (s *StudyScreen) handleNav(msg tea.KeyMsg) {
	switch msg.String() {
	case "right", "l":
		s.machine.Next()
	case "left", "h":
		s.machine.Previous()
	}
}

func (s *StudyScreen) handleSummaryKey(msg tea.KeyMsg) {
	words := flatten(s.machine.SummaryView())
	switch msg.String() {
	case "up", "k":
		if s.summaryCursor > 0 {
			s.summaryCursor--
		}
	case "down", "j":
		if s.summaryCursor < len(words)-1 {
			s.summaryCursor++
		}
	case "enter":
		if s.summaryCursor < len(words) {
			s.machine.JumpToWord(words[s.summaryCursor].ID)
		}
	case "r":
		s.machine.ResetPractice()
		s.summaryCursor = 0
	}
}

// refresh re-reads the machine and keeps the option list in step with
// the current question.
func (s *StudyScreen) refresh() {
	s.snap = s.machine.Snapshot()
	if s.snap.State != engine.StateTestQuestion {
		return
	}

	q := s.snap.Question
	key := [2]int{s.snap.Attempt, s.snap.Position}
	if key != s.choicesKey || len(s.choices.Options) == 0 {
		s.choices = components.NewChoiceList(q.Options)
		s.choicesKey = key
	}
	s.choices.Disabled = q.Answered
	s.choices.Chosen = q.SelectedAnswer
	s.choices.Correct = ""
	if q.Answered {
		s.choices.Correct = s.snap.Word.English
	}
}

func (s *StudyScreen) maybeTick() tea.Cmd {
	if s.snap.TimerPending {
		return tickCmd()
	}
	return nil
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Changed returns a message that makes the screen re-read the machine.
// Wire it to the machine's change hook through Program.Send.
func Changed() tea.Msg {
	return changedMsg{}
}

func nextMode(m engine.Mode) engine.Mode {
	return engine.Modes[(int(m)+1)%len(engine.Modes)]
}

func prevMode(m engine.Mode) engine.Mode {
	n := len(engine.Modes)
	return engine.Modes[(int(m)+n-1)%n]
}

func flatten(sum engine.PracticeSummary) []vocab.VocabularyWord {
	out := make([]vocab.VocabularyWord, 0, len(sum.Incorrect)+len(sum.Correct)+len(sum.NotPracticed))
	out = append(out, sum.Incorrect...)
	out = append(out, sum.Correct...)
	return append(out, sum.NotPracticed...)
}

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Tab", Description: "Mode"}}
	switch s.snap.State {
	case engine.StateLearn:
		hints = append(hints, layout.KeyHint{Key: "←→", Description: "Browse"})
	case engine.StatePracticeCard:
		if s.snap.Flipped {
			hints = append(hints,
				layout.KeyHint{Key: "Y", Description: "Knew it"},
				layout.KeyHint{Key: "N", Description: "Missed it"})
		} else {
			hints = append(hints, layout.KeyHint{Key: "Space", Description: "Flip"})
		}
	case engine.StatePracticeSummary:
		hints = append(hints,
			layout.KeyHint{Key: "Enter", Description: "Practice word"},
			layout.KeyHint{Key: "R", Description: "Start over"})
	case engine.StateTestQuestion:
		hints = append(hints, layout.KeyHint{Key: "1-4", Description: "Answer"})
		if s.snap.AllAnswered {
			hints = append(hints, layout.KeyHint{Key: "V", Description: "Results"})
		}
	case engine.StateTestSubmitted:
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Retake"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}
