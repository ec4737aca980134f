package study

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kalima/internal/store"
	engine "github.com/abhisek/kalima/internal/study"
	"github.com/abhisek/kalima/internal/vocab"
)

// manualScheduler holds timers until the test fires them.
type manualScheduler struct {
	mu  sync.Mutex
	fns []func()
}

func (s *manualScheduler) AfterFunc(_ time.Duration, fn func()) engine.Cancel {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.fns)
	s.fns = append(s.fns, fn)
	return func() {
		s.mu.Lock()
		s.fns[i] = nil
		s.mu.Unlock()
	}
}

func (s *manualScheduler) fire() {
	s.mu.Lock()
	fns := s.fns
	s.fns = nil
	s.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn()
		}
	}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

var words = []struct{ ar, en string }{
	{"كتاب", "book"},
	{"قلم", "pen"},
	{"بيت", "house"},
}

func newScreen(t *testing.T, withWords bool) (*StudyScreen, *manualScheduler, *store.Memory) {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()
	lesson, err := mem.UpsertLesson(ctx, "Lesson 1", 1)
	if err != nil {
		t.Fatalf("upsert lesson: %v", err)
	}
	if withWords {
		for i, w := range words {
			if _, _, err := mem.UpsertWord(ctx, vocab.VocabularyWord{LessonID: lesson.ID, Arabic: w.ar, English: w.en, Order: i}); err != nil {
				t.Fatalf("upsert word: %v", err)
			}
		}
	}

	sched := &manualScheduler{}
	m := engine.NewMachine("local", lesson.ID, mem, mem,
		engine.WithScheduler(sched),
		engine.WithSyncWrites(),
		engine.WithRand(rand.New(rand.NewPCG(1, 2))),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s := New(lesson, m)
	s.Update(s.Init()())
	return s, sched, mem
}

func TestOpenShowsLearnCard(t *testing.T) {
	s, _, _ := newScreen(t, true)

	if s.snap.State != engine.StateLearn {
		t.Fatalf("expected learn state, got %s", s.snap.State)
	}
	if !strings.Contains(s.View(100, 30), "كتاب") {
		t.Error("expected first word in view")
	}
}

func TestOpenErrorShown(t *testing.T) {
	s, _, _ := newScreen(t, false)

	if s.errMsg == "" {
		t.Fatal("expected an error for a lesson without words")
	}
	if !strings.Contains(s.View(100, 30), "Esc") {
		t.Error("expected back hint in error view")
	}
}

func TestLearnNavigation(t *testing.T) {
	s, _, _ := newScreen(t, true)

	s.Update(specialKey(tea.KeyRight))
	if s.snap.Position != 1 {
		t.Fatalf("expected position 1, got %d", s.snap.Position)
	}
	s.Update(specialKey(tea.KeyLeft))
	s.Update(specialKey(tea.KeyLeft))
	if s.snap.Position != 0 {
		t.Errorf("expected position to stay at 0, got %d", s.snap.Position)
	}
}

func TestPracticeFlowReachesSummary(t *testing.T) {
	s, _, mem := newScreen(t, true)

	s.Update(specialKey(tea.KeyTab))
	if s.snap.State != engine.StatePracticeCard {
		t.Fatalf("expected practice card, got %s", s.snap.State)
	}

	// Answers before flipping are ignored.
	s.Update(keyPress('y'))
	if s.snap.Practiced != 0 {
		t.Fatalf("expected unflipped answer to be ignored")
	}

	for i := range words {
		s.Update(keyPress('f'))
		if !s.snap.Flipped {
			t.Fatalf("expected card %d flipped", i)
		}
		if i == 0 {
			s.Update(keyPress('n'))
		} else {
			s.Update(keyPress('y'))
		}
	}

	if s.snap.State != engine.StatePracticeSummary {
		t.Fatalf("expected summary, got %s", s.snap.State)
	}
	if !strings.Contains(s.View(100, 40), "Needs review") {
		t.Error("expected incorrect group in summary view")
	}

	progress, err := mem.GetProgress(context.Background(), "local")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	total := 0
	for _, p := range progress {
		total += p.Attempts()
	}
	if total != len(words) {
		t.Errorf("expected %d stored answers, got %d", len(words), total)
	}

	// Enter on the first summary row goes back to that card.
	s.Update(specialKey(tea.KeyEnter))
	if s.snap.State != engine.StatePracticeCard {
		t.Errorf("expected jump back to card, got %s", s.snap.State)
	}
}

func TestTestModeAutoAdvance(t *testing.T) {
	s, sched, _ := newScreen(t, true)

	s.Update(specialKey(tea.KeyTab))
	s.Update(specialKey(tea.KeyTab))
	if s.snap.State != engine.StateTestQuestion {
		t.Fatalf("expected test question, got %s", s.snap.State)
	}
	if len(s.choices.Options) != len(words) {
		t.Fatalf("expected %d options, got %d", len(words), len(s.choices.Options))
	}

	_, cmd := s.Update(keyPress('1'))
	if cmd == nil {
		t.Fatal("expected tick command after answering")
	}
	if !s.snap.Question.Answered || !s.snap.TimerPending {
		t.Fatal("expected answered question with pending timer")
	}
	if !s.choices.Disabled {
		t.Error("expected options locked after answering")
	}

	sched.fire()
	s.Update(Changed())
	if s.snap.Position != 1 {
		t.Errorf("expected auto-advance to position 1, got %d", s.snap.Position)
	}
	if s.choices.Disabled {
		t.Error("expected fresh options for the next question")
	}
}

func TestTestModeResultsAndRetake(t *testing.T) {
	s, sched, _ := newScreen(t, true)
	s.Update(specialKey(tea.KeyTab))
	s.Update(specialKey(tea.KeyTab))

	for range words {
		s.Update(keyPress('1'))
		sched.fire()
		s.Update(Changed())
	}

	if s.snap.State != engine.StateTestSubmitted {
		t.Fatalf("expected submitted, got %s", s.snap.State)
	}
	if !strings.Contains(s.View(100, 40), "Score") {
		t.Error("expected score in results view")
	}

	attempt := s.snap.Attempt
	s.Update(keyPress('r'))
	if s.snap.State != engine.StateTestQuestion || s.snap.Attempt != attempt+1 {
		t.Errorf("expected new attempt after retake, got %s attempt %d", s.snap.State, s.snap.Attempt)
	}
}

func TestCloseStopsMachine(t *testing.T) {
	s, _, _ := newScreen(t, true)
	s.Close()

	if got := s.machine.Snapshot().State; got != engine.StateClosed {
		t.Errorf("expected closed state, got %s", got)
	}
}

func TestKeyHintsFollowState(t *testing.T) {
	s, _, _ := newScreen(t, true)
	s.Update(specialKey(tea.KeyTab))

	found := false
	for _, h := range s.KeyHints() {
		if h.Key == "Space" {
			found = true
		}
	}
	if !found {
		t.Error("expected flip hint on practice card")
	}
}

func TestStartInPractice(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	lesson, _ := mem.UpsertLesson(ctx, "Lesson 1", 1)
	for i, w := range words {
		mem.UpsertWord(ctx, vocab.VocabularyWord{LessonID: lesson.ID, Arabic: w.ar, English: w.en, Order: i})
	}
	s := New(lesson, engine.NewMachine("local", lesson.ID, mem, mem, engine.WithSyncWrites())).StartIn(engine.ModePractice)
	s.Update(s.Init()())

	if s.snap.State != engine.StatePracticeCard {
		t.Errorf("expected practice card, got %s", s.snap.State)
	}
}
