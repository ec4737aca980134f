// Package home implements the lesson picker shown at startup.
package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kalima/internal/router"
	"github.com/abhisek/kalima/internal/screen"
	"github.com/abhisek/kalima/internal/screens/dashboard"
	studyscreen "github.com/abhisek/kalima/internal/screens/study"
	"github.com/abhisek/kalima/internal/ui/components"
	"github.com/abhisek/kalima/internal/ui/layout"
	"github.com/abhisek/kalima/internal/ui/theme"
	"github.com/abhisek/kalima/internal/vocab"
)

const title = `╦╔═╔═╗╦  ╦╔╦╗╔═╗
╠╩╗╠═╣║  ║║║║╠═╣
╩ ╩╩ ╩╩═╝╩╩ ╩╩ ╩`

// LessonLister lists lessons in display order.
type LessonLister interface {
	ListLessons(ctx context.Context) ([]vocab.Lesson, error)
}

// Deps are the services the home screen hands to the screens it opens.
type Deps struct {
	Lessons   LessonLister
	Dashboard dashboard.Source
	UserID    string

	// OpenLesson builds the study machine for a lesson.
	OpenLesson func(vocab.Lesson) studyscreen.Machine
}

type lessonsMsg struct {
	Lessons []vocab.Lesson
	Err     error
}

// HomeScreen lists lessons and links to the dashboard.
type HomeScreen struct {
	deps    Deps
	lessons []vocab.Lesson
	menu    components.Menu
	filter  components.TextInput
	typing  bool
	errMsg  string
	loaded  bool
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	h := &HomeScreen{
		deps:   deps,
		filter: components.NewTextInput("filter lessons", 40),
	}
	h.rebuildMenu()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	lister := h.deps.Lessons
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		lessons, err := lister.ListLessons(ctx)
		return lessonsMsg{Lessons: lessons, Err: err}
	}
}

func (h *HomeScreen) Title() string {
	return "Lessons"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.typing {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Done"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Filter"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case lessonsMsg:
		h.loaded = true
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.lessons = msg.Lessons
		h.rebuildMenu()
		return h, nil

	case router.ScreenResumedMsg:
		return h, h.load()

	case tea.KeyMsg:
		if h.typing {
			if msg.String() == "enter" {
				h.typing = false
				return h, nil
			}
			var cmd tea.Cmd
			h.filter, cmd = h.filter.Update(msg)
			h.rebuildMenu()
			return h, cmd
		}
		if msg.String() == "/" {
			h.typing = true
			return h, h.filter.Init()
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// rebuildMenu lists the lessons matching the filter, then the fixed items.
func (h *HomeScreen) rebuildMenu() {
	q := strings.ToLower(h.filter.Value())

	var items []components.MenuItem
	for _, l := range h.lessons {
		if q != "" && !strings.Contains(strings.ToLower(l.Title), q) {
			continue
		}
		items = append(items, components.MenuItem{
			Label:  l.Title,
			Action: h.openLesson(l),
		})
	}
	if len(items) == 0 {
		items = append(items, components.MenuItem{Label: "No lessons", Disabled: true})
	}
	items = append(items,
		components.MenuItem{Label: "Progress", Detail: "accuracy, streaks, tests", Action: h.openDashboard},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)

	h.menu = components.NewMenu(items)
}

func (h *HomeScreen) openLesson(l vocab.Lesson) func() tea.Cmd {
	return func() tea.Cmd {
		if h.deps.OpenLesson == nil {
			return nil
		}
		s := studyscreen.New(l, h.deps.OpenLesson(l))
		return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
	}
}

func (h *HomeScreen) openDashboard() tea.Cmd {
	if h.deps.Dashboard == nil {
		return nil
	}
	s := dashboard.New(h.deps.Dashboard, h.deps.UserID)
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, theme.Title.Render(title))
	sections = append(sections, theme.Subtitle.Render(fmt.Sprintf("Arabic vocabulary · %s", h.deps.UserID)))

	switch {
	case h.errMsg != "":
		sections = append(sections, theme.Incorrect.Render(h.errMsg))
	case !h.loaded:
		sections = append(sections, theme.Muted.Render("Loading lessons..."))
	}

	if h.typing || h.filter.Value() != "" {
		sections = append(sections, "/ "+h.filter.View())
	}
	sections = append(sections, components.Card(h.menu.View(), cw))

	return components.Center(strings.Join(sections, "\n\n"), width, height)
}
