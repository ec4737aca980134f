package study

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/kalima/internal/store"
	"github.com/abhisek/kalima/internal/vocab"
)

// Option configures a Machine.
type Option func(*Machine)

// WithScheduler replaces the wall-clock scheduler used for auto-advance.
func WithScheduler(s Scheduler) Option {
	return func(m *Machine) { m.sched = s }
}

// WithLogger sets the logger for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// WithRand sets the random source for shuffles and distractors.
func WithRand(r *rand.Rand) Option {
	return func(m *Machine) { m.rng = r }
}

// WithClock sets the time source for optimistic progress updates.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithSyncWrites makes every progress write complete before the
// transition that caused it returns.
func WithSyncWrites() Option {
	return func(m *Machine) { m.syncWrites = true }
}

// WithAutoAdvance overrides AutoAdvanceDelay.
func WithAutoAdvance(d time.Duration) Option {
	return func(m *Machine) { m.autoAdvance = d }
}

// OnChange registers fn to run after a timer-driven transition.
func OnChange(fn func()) Option {
	return func(m *Machine) { m.onChange = fn }
}

// OnModeExit registers fn to run when a mode is left or the machine closes.
// Side effects tied to a mode, like audio playback, stop here.
func OnModeExit(fn func(Mode)) Option {
	return func(m *Machine) { m.onModeExit = fn }
}

// Machine is the per-view study state machine. It is driven by a single UI
// goroutine; the auto-advance timer is the only other actor and it takes
// the same lock.
//
// Invalid transitions are no-ops that return false.
type Machine struct {
	mu sync.Mutex

	userID    string
	lessonID  int64
	sessionID string

	content     store.LessonContent
	progress    store.ProgressStore
	persist     *Persister
	sched       Scheduler
	logger      *slog.Logger
	rng         *rand.Rand
	now         func() time.Time
	syncWrites  bool
	autoAdvance time.Duration
	onChange    func()
	onModeExit  func(Mode)

	seq     *Sequencer
	choices *ChoiceGenerator

	state   State
	mode    Mode
	flipped bool

	// local mirrors the persisted progress with optimistic updates applied.
	local map[int64]vocab.UserProgress

	// outcomes holds the practice result per word for this view, seeded
	// from persisted history on open.
	outcomes map[int64]bool

	questions []TestQuestion
	attempt   int
	submitted bool

	pending Cancel
	gen     uint64
}

// NewMachine returns a machine for one user studying one lesson. Call Open
// before driving it.
func NewMachine(userID string, lessonID int64, content store.LessonContent, progress store.ProgressStore, opts ...Option) *Machine {
	m := &Machine{
		userID:      userID,
		lessonID:    lessonID,
		sessionID:   uuid.New().String(),
		content:     content,
		progress:    progress,
		sched:       ClockScheduler{},
		logger:      slog.Default(),
		now:         time.Now,
		autoAdvance: AutoAdvanceDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = newRand()
	}
	m.persist = NewPersister(progress, m.logger, m.syncWrites)
	m.choices = NewChoiceGenerator(m.rng)
	return m
}

// SessionID identifies this view in logs.
func (m *Machine) SessionID() string {
	return m.sessionID
}

// Open loads the lesson's words and the user's progress, preclassifies
// previously practiced words and enters learn mode.
func (m *Machine) Open(ctx context.Context) error {
	words, err := m.content.GetWordsByLesson(ctx, m.lessonID)
	if err != nil {
		return fmt.Errorf("load words: %w", err)
	}
	if len(words) == 0 {
		return ErrNoWords
	}
	progress, err := m.progress.GetProgress(ctx, m.userID)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq = NewSequencer(words, m.rng)
	m.local = make(map[int64]vocab.UserProgress, len(words))
	m.outcomes = make(map[int64]bool, len(words))
	for _, w := range words {
		p, ok := progress[w.ID]
		if !ok {
			continue
		}
		m.local[w.ID] = p
		if p.Practiced() {
			m.outcomes[w.ID] = p.MostlyCorrect()
		}
	}

	m.mode = ModeLearn
	m.state = StateLearn
	m.markSeenLocked()
	return nil
}

// Mode returns the active mode.
func (m *Machine) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetMode switches modes. Any pending timer is cancelled and the exit hook
// runs for the mode being left. Practice outcomes and an unfinished test
// attempt survive the switch.
func (m *Machine) SetMode(mode Mode) bool {
	m.mu.Lock()
	if m.state == StateClosed || mode == m.mode {
		m.mu.Unlock()
		return false
	}
	m.cancelTimerLocked()
	left := m.mode
	m.mode = mode

	switch mode {
	case ModeLearn:
		m.state = StateLearn
		m.markSeenLocked()
	case ModePractice:
		m.flipped = false
		if m.practiceCompleteLocked() {
			m.state = StatePracticeSummary
		} else {
			m.state = StatePracticeCard
			m.markSeenLocked()
		}
	case ModeTest:
		if m.questions == nil || m.submitted {
			m.newAttemptLocked()
		}
		m.state = StateTestQuestion
	}
	hook := m.onModeExit
	m.mu.Unlock()

	if hook != nil {
		hook(left)
	}
	return true
}

// Next moves to the next word in the active mode.
func (m *Machine) Next() bool {
	return m.step(true)
}

// Previous moves to the previous word in the active mode.
func (m *Machine) Previous() bool {
	return m.step(false)
}

func (m *Machine) step(forward bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	move := m.seq.Previous
	if forward {
		move = m.seq.Next
	}
	switch m.state {
	case StateLearn, StatePracticeCard:
		if !move(m.mode) {
			return false
		}
		m.flipped = false
		m.markSeenLocked()
		return true
	case StateTestQuestion:
		m.cancelTimerLocked()
		return move(ModeTest)
	default:
		return false
	}
}

// Flip toggles the practice card between front and back.
func (m *Machine) Flip() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePracticeCard {
		return false
	}
	m.flipped = !m.flipped
	return true
}

// AnswerPractice records a self-assessed answer for the current card and
// moves on. The durable write is fire-and-forget.
func (m *Machine) AnswerPractice(correct bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePracticeCard {
		return false
	}
	w, ok := m.seq.Current(ModePractice)
	if !ok {
		return false
	}

	m.recordLocked(w.ID, vocab.Mark(correct))
	m.outcomes[w.ID] = correct
	m.flipped = false

	if m.practiceCompleteLocked() {
		m.state = StatePracticeSummary
		return true
	}
	if !m.seq.Next(ModePractice) {
		if i := m.firstUnpracticedLocked(); i >= 0 {
			m.seq.Jump(ModePractice, i)
		}
	}
	m.markSeenLocked()
	return true
}

// SummaryView groups the practice list by session outcome.
func (m *Machine) SummaryView() PracticeSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summaryLocked()
}

func (m *Machine) summaryLocked() PracticeSummary {
	var s PracticeSummary
	if m.seq == nil {
		return s
	}
	for _, w := range m.seq.Words(ModePractice) {
		correct, ok := m.outcomes[w.ID]
		switch {
		case !ok:
			s.NotPracticed = append(s.NotPracticed, w)
		case correct:
			s.Correct = append(s.Correct, w)
		default:
			s.Incorrect = append(s.Incorrect, w)
		}
	}
	return s
}

// JumpToWord leaves the summary for the card of wordID and clears that
// word's outcome, so the summary stays hidden until it is answered again.
func (m *Machine) JumpToWord(wordID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePracticeSummary {
		return false
	}
	i := m.seq.IndexOf(ModePractice, wordID)
	if i < 0 {
		return false
	}
	m.seq.Jump(ModePractice, i)
	delete(m.outcomes, wordID)
	m.flipped = false
	m.state = StatePracticeCard
	return true
}

// ResetPractice clears every practice outcome, including the ones seeded
// from history, and starts the deck over.
func (m *Machine) ResetPractice() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode != ModePractice || m.state == StateClosed {
		return false
	}
	clear(m.outcomes)
	m.seq.Jump(ModePractice, 0)
	m.flipped = false
	m.state = StatePracticeCard
	m.markSeenLocked()
	return true
}

// SelectOption answers the current test question. Answers are final.
// The next unanswered question is shown after the auto-advance delay, or
// the results once the last question has been answered.
func (m *Machine) SelectOption(option string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateTestQuestion {
		return false
	}
	i := m.seq.Cursor(ModeTest)
	q := &m.questions[i]
	if q.Answered || !contains(q.Options, option) {
		return false
	}
	w, _ := m.seq.At(ModeTest, i)

	q.SelectedAnswer = option
	q.Answered = true
	q.IsCorrect = option == w.English
	m.recordLocked(w.ID, vocab.Mark(q.IsCorrect))

	m.cancelTimerLocked()
	gen := m.gen
	m.pending = m.sched.AfterFunc(m.autoAdvance, func() {
		m.autoAdvanceFrom(gen, i)
	})
	return true
}

// autoAdvanceFrom runs on the scheduler's goroutine.
func (m *Machine) autoAdvanceFrom(gen uint64, from int) {
	m.mu.Lock()
	if gen != m.gen || m.state != StateTestQuestion {
		m.mu.Unlock()
		return
	}
	m.pending = nil

	next := -1
	if from < len(m.questions)-1 {
		next = m.nextUnansweredLocked(from)
	}
	if next < 0 {
		m.state = StateTestSubmitted
		m.submitted = true
	} else {
		m.seq.Jump(ModeTest, next)
	}
	hook := m.onChange
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// AllAnswered reports whether every question of the attempt is answered.
func (m *Machine) AllAnswered() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allAnsweredLocked()
}

// ViewResults shows the submitted view once every question is answered.
func (m *Machine) ViewResults() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateTestQuestion || !m.allAnsweredLocked() {
		return false
	}
	m.cancelTimerLocked()
	m.state = StateTestSubmitted
	m.submitted = true
	return true
}

// Retake discards the attempt and starts a new one with a fresh order and
// fresh option sets.
func (m *Machine) Retake() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateTestQuestion && m.state != StateTestSubmitted {
		return false
	}
	m.cancelTimerLocked()
	m.newAttemptLocked()
	m.state = StateTestQuestion
	return true
}

// TestReport returns the current attempt's per-question results.
func (m *Machine) TestReport() TestReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := TestReport{Attempt: m.attempt}
	for i, q := range m.questions {
		w, _ := m.seq.At(ModeTest, i)
		r.Results = append(r.Results, QuestionResult{
			Word:           w,
			SelectedAnswer: q.SelectedAnswer,
			Answered:       q.Answered,
			IsCorrect:      q.IsCorrect,
		})
	}
	return r
}

// Close cancels any pending timer. Later timer fires are ignored and every
// transition becomes a no-op.
func (m *Machine) Close() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	m.cancelTimerLocked()
	m.state = StateClosed
	left := m.mode
	hook := m.onModeExit
	m.mu.Unlock()

	if hook != nil {
		hook(left)
	}
}

// Flush waits for in-flight progress writes.
func (m *Machine) Flush() {
	m.persist.Flush()
}

// WriteFailures returns the number of progress writes that did not commit.
func (m *Machine) WriteFailures() int64 {
	return m.persist.Failures()
}

// Progress returns the optimistic local progress for wordID.
func (m *Machine) Progress(wordID int64) (vocab.UserProgress, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.local[wordID]
	return p, ok
}

func (m *Machine) newAttemptLocked() {
	m.seq.Shuffle()
	m.questions = m.choices.BuildQuestions(m.seq.Words(ModeTest))
	m.attempt++
	m.submitted = false
}

func (m *Machine) cancelTimerLocked() {
	if m.pending != nil {
		m.pending()
		m.pending = nil
	}
	m.gen++
}

// markSeenLocked records the first exposure of the word under the cursor.
func (m *Machine) markSeenLocked() {
	if m.mode == ModeTest {
		return
	}
	w, ok := m.seq.Current(m.mode)
	if !ok || m.local[w.ID].Seen {
		return
	}
	m.recordLocked(w.ID, vocab.Exposure())
}

// recordLocked applies upd locally and hands it to the persister.
func (m *Machine) recordLocked(wordID int64, upd vocab.ProgressUpdate) {
	p, ok := m.local[wordID]
	if !ok {
		p = vocab.UserProgress{UserID: m.userID, WordID: wordID}
	}
	m.local[wordID] = upd.Apply(p, m.now())
	m.persist.Record(m.userID, m.sessionID, wordID, upd)
}

func (m *Machine) practiceCompleteLocked() bool {
	for _, w := range m.seq.Words(ModePractice) {
		if _, ok := m.outcomes[w.ID]; !ok {
			return false
		}
	}
	return true
}

func (m *Machine) firstUnpracticedLocked() int {
	for i, w := range m.seq.Words(ModePractice) {
		if _, ok := m.outcomes[w.ID]; !ok {
			return i
		}
	}
	return -1
}

// nextUnansweredLocked searches forward from after, then wraps.
func (m *Machine) nextUnansweredLocked(after int) int {
	n := len(m.questions)
	for k := 1; k < n; k++ {
		i := (after + k) % n
		if !m.questions[i].Answered {
			return i
		}
	}
	return -1
}

func (m *Machine) allAnsweredLocked() bool {
	if len(m.questions) == 0 {
		return false
	}
	for _, q := range m.questions {
		if !q.Answered {
			return false
		}
	}
	return true
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
