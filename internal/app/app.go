// Package app wires the services into the Bubble Tea program.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kalima/internal/analytics"
	"github.com/abhisek/kalima/internal/router"
	"github.com/abhisek/kalima/internal/screen"
	"github.com/abhisek/kalima/internal/screens/home"
	studyscreen "github.com/abhisek/kalima/internal/screens/study"
	"github.com/abhisek/kalima/internal/store"
	"github.com/abhisek/kalima/internal/study"
	"github.com/abhisek/kalima/internal/ui/layout"
	"github.com/abhisek/kalima/internal/vocab"
)

// Options configures the interactive program.
type Options struct {
	UserID    string
	Content   store.LessonContent
	Progress  store.ProgressStore
	Analytics *analytics.Aggregator
	Logger    *slog.Logger

	// StartLesson opens this lesson on top of the lesson list.
	StartLesson *vocab.Lesson
	StartMode   study.Mode
}

// statsMsg carries fresh header figures.
type statsMsg layout.HeaderStats

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	opts   Options
	boot   []tea.Cmd
	stats  layout.HeaderStats
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options, notify func()) AppModel {
	factory := MachineFactory(opts, notify)
	deps := home.Deps{
		Lessons:    opts.Content,
		UserID:     opts.UserID,
		OpenLesson: factory,
	}
	if opts.Analytics != nil {
		deps.Dashboard = opts.Analytics
	}
	h := home.New(deps)
	m := AppModel{
		router: router.New(h),
		opts:   opts,
		boot:   []tea.Cmd{h.Init()},
	}
	if l := opts.StartLesson; l != nil {
		s := studyscreen.New(*l, factory(*l)).StartIn(opts.StartMode)
		m.boot = append(m.boot, m.router.Push(s))
	}
	return m
}

// MachineFactory returns a constructor for study machines that report
// timer-driven changes through notify.
func MachineFactory(opts Options, notify func()) func(vocab.Lesson) studyscreen.Machine {
	return func(l vocab.Lesson) studyscreen.Machine {
		mopts := []study.Option{}
		if opts.Logger != nil {
			mopts = append(mopts, study.WithLogger(opts.Logger.With("lesson_id", l.ID)))
		}
		if notify != nil {
			mopts = append(mopts, study.OnChange(notify))
		}
		mopts = append(mopts, study.OnModeExit(func(m study.Mode) {
			if opts.Logger != nil {
				opts.Logger.Debug("mode exit", "lesson_id", l.ID, "mode", m.String())
			}
		}))
		return study.NewMachine(opts.UserID, l.ID, opts.Content, opts.Progress, mopts...)
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(append(m.boot, m.loadStats())...)
}

func (m AppModel) loadStats() tea.Cmd {
	agg, userID := m.opts.Analytics, m.opts.UserID
	if agg == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s := agg.UserSummary(ctx, userID)
		return statsMsg{Streak: s.CurrentStreak, Accuracy: s.AccuracyRate}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statsMsg:
		m.stats = layout.HeaderStats(msg)
		return m, nil

	case router.ScreenResumedMsg:
		return m, tea.Batch(m.router.Update(msg), m.loadStats())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.CloseAll()
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.SetContent(m.render())
	return v
}

// render draws the full frame: header, active screen and footer.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.stats, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	var prog atomic.Pointer[tea.Program]
	notify := func() {
		if p := prog.Load(); p != nil {
			p.Send(studyscreen.Changed())
		}
	}

	model := newAppModel(opts, notify)
	p := tea.NewProgram(model)
	prog.Store(p)

	_, err := p.Run()
	model.router.CloseAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
