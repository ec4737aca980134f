package home

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kalima/internal/analytics"
	"github.com/abhisek/kalima/internal/router"
	studyscreen "github.com/abhisek/kalima/internal/screens/study"
	"github.com/abhisek/kalima/internal/store"
	engine "github.com/abhisek/kalima/internal/study"
	"github.com/abhisek/kalima/internal/vocab"
)

type stubLessons struct {
	lessons []vocab.Lesson
	err     error
}

func (s stubLessons) ListLessons(context.Context) ([]vocab.Lesson, error) {
	return s.lessons, s.err
}

type stubDashboard struct{}

func (stubDashboard) Dashboard(context.Context, analytics.Query) analytics.Dashboard {
	return analytics.Dashboard{}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func loaded(t *testing.T, deps Deps) *HomeScreen {
	t.Helper()
	h := New(deps)
	h.Update(h.Init()())
	return h
}

var twoLessons = []vocab.Lesson{
	{ID: 1, Title: "Greetings", Order: 1},
	{ID: 2, Title: "Food", Order: 2},
}

func TestListsLessons(t *testing.T) {
	h := loaded(t, Deps{Lessons: stubLessons{lessons: twoLessons}, UserID: "local"})

	view := h.View(100, 40)
	for _, want := range []string{"Greetings", "Food", "Progress", "Quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view", want)
		}
	}
}

func TestLoadErrorShown(t *testing.T) {
	h := loaded(t, Deps{Lessons: stubLessons{err: errors.New("db down")}})

	if !strings.Contains(h.View(100, 40), "db down") {
		t.Error("expected error in view")
	}
	if h.menu.Items[0].Label != "No lessons" || !h.menu.Items[0].Disabled {
		t.Error("expected disabled placeholder item")
	}
}

func TestEnterPushesStudyScreen(t *testing.T) {
	var opened vocab.Lesson
	mem := store.NewMemory()
	h := loaded(t, Deps{
		Lessons: stubLessons{lessons: twoLessons},
		OpenLesson: func(l vocab.Lesson) studyscreen.Machine {
			opened = l
			return engine.NewMachine("local", l.ID, mem, mem)
		},
	})

	h.Update(specialKey(tea.KeyDown))
	_, cmd := h.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected push command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if msg.Screen.Title() != "Food" {
		t.Errorf("expected Food screen, got %q", msg.Screen.Title())
	}
	if opened.ID != 2 {
		t.Errorf("expected lesson 2 opened, got %d", opened.ID)
	}
}

func TestProgressOpensDashboard(t *testing.T) {
	h := loaded(t, Deps{Lessons: stubLessons{lessons: twoLessons}, Dashboard: stubDashboard{}, UserID: "local"})

	h.Update(specialKey(tea.KeyDown))
	h.Update(specialKey(tea.KeyDown))
	_, cmd := h.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected push command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok || msg.Screen.Title() != "Progress" {
		t.Fatalf("expected dashboard push, got %#v", cmd())
	}
}

func TestFilterNarrowsLessons(t *testing.T) {
	h := loaded(t, Deps{Lessons: stubLessons{lessons: twoLessons}})

	h.Update(keyPress('/'))
	if !h.typing {
		t.Fatal("expected filter mode")
	}
	h.filter.Model.SetValue("FOO")
	h.Update(specialKey(tea.KeyEnter))
	h.rebuildMenu()

	if h.typing {
		t.Error("expected enter to leave filter mode")
	}
	if h.menu.Items[0].Label != "Food" {
		t.Errorf("expected Food first, got %q", h.menu.Items[0].Label)
	}
	for _, it := range h.menu.Items {
		if it.Label == "Greetings" {
			t.Error("expected Greetings filtered out")
		}
	}
}

func TestResumeReloads(t *testing.T) {
	h := loaded(t, Deps{Lessons: stubLessons{lessons: twoLessons}})

	_, cmd := h.Update(router.ScreenResumedMsg{})
	if cmd == nil {
		t.Fatal("expected reload on resume")
	}
	if _, ok := cmd().(lessonsMsg); !ok {
		t.Error("expected lessonsMsg from reload")
	}
}
