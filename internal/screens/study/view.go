package study

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	engine "github.com/abhisek/kalima/internal/study"
	"github.com/abhisek/kalima/internal/ui/components"
	"github.com/abhisek/kalima/internal/ui/theme"
)

func (s *StudyScreen) View(width, height int) string {
	if s.errMsg != "" {
		return components.Center(theme.Incorrect.Render(s.errMsg)+"\n\n"+theme.Hint.Render("Press Esc to go back"), width, height)
	}
	if !s.ready {
		return components.Center(theme.Muted.Render("Loading words..."), width, height)
	}

	cw := components.ContentWidth(width)
	var body string
	switch s.snap.State {
	case engine.StateLearn:
		body = s.renderLearn(cw)
	case engine.StatePracticeCard:
		body = s.renderCard(cw)
	case engine.StatePracticeSummary:
		body = s.renderSummary(cw)
	case engine.StateTestQuestion:
		body = s.renderQuestion(cw)
	case engine.StateTestSubmitted:
		body = s.renderResults(cw)
	default:
		body = theme.Muted.Render("Session closed")
	}

	return components.Center(renderTabs(s.snap.Mode)+"\n\n"+body, width, height)
}

func renderTabs(active engine.Mode) string {
	parts := make([]string, 0, len(engine.Modes))
	for _, m := range engine.Modes {
		label := " " + strings.ToUpper(m.String()) + " "
		if m == active {
			parts = append(parts, lipgloss.NewStyle().Background(theme.Primary).Foreground(theme.BgDark).Bold(true).Render(label))
		} else {
			parts = append(parts, theme.Muted.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

func (s *StudyScreen) counter() string {
	return theme.Muted.Render(fmt.Sprintf("%d / %d", s.snap.Position+1, s.snap.Total))
}

func (s *StudyScreen) renderLearn(cw int) string {
	w := s.snap.Word
	card := components.Card(theme.Arabic.Render(w.Arabic)+"\n\n"+theme.Body.Render(w.English), cw)
	return card + "\n" + s.counter()
}

func (s *StudyScreen) renderCard(cw int) string {
	w := s.snap.Word
	face := theme.Arabic.Render(w.Arabic)
	if s.snap.Flipped {
		face += "\n\n" + theme.Body.Render(w.English)
	} else {
		face += "\n\n" + theme.Hint.Render("press space to flip")
	}
	progress := theme.Muted.Render(fmt.Sprintf("practiced %d of %d", s.snap.Practiced, s.snap.Total))
	return components.Card(face, cw) + "\n" + s.counter() + "   " + progress
}

func (s *StudyScreen) renderSummary(cw int) string {
	sum := s.machine.SummaryView()
	words := flatten(sum)

	var b strings.Builder
	b.WriteString(theme.Title.Render("Practice complete"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d correct, %d to review, %.0f%% accuracy",
		len(sum.Correct), len(sum.Incorrect), sum.Accuracy())))
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("", sum.Accuracy()/100, true, cw).View())
	b.WriteString("\n\n")

	groups := []struct {
		title string
		n     int
		style lipgloss.Style
	}{
		{"Needs review", len(sum.Incorrect), theme.Incorrect},
		{"Correct", len(sum.Correct), theme.Correct},
		{"Not practiced", len(sum.NotPracticed), theme.Muted},
	}
	i := 0
	for _, g := range groups {
		if g.n == 0 {
			continue
		}
		b.WriteString(g.style.Render(g.title))
		b.WriteString("\n")
		for j := 0; j < g.n; j++ {
			w := words[i]
			line := fmt.Sprintf("%s  %s", w.Arabic, w.English)
			if i == s.summaryCursor {
				b.WriteString(theme.Selected.Render("▸ " + line))
			} else {
				b.WriteString(theme.Unselected.Render("  " + line))
			}
			b.WriteString("\n")
			i++
		}
	}
	return b.String()
}

func (s *StudyScreen) renderQuestion(cw int) string {
	q := s.snap.Question
	var b strings.Builder
	b.WriteString(components.Card(theme.Arabic.Render(s.snap.Word.Arabic), cw))
	b.WriteString("\n\n")
	b.WriteString(s.choices.View())

	switch {
	case q.Answered && q.IsCorrect:
		b.WriteString("\n" + theme.Correct.Render("Correct!"))
	case q.Answered:
		b.WriteString("\n" + theme.Incorrect.Render("Answer: "+s.snap.Word.English))
	}
	if s.snap.TimerPending {
		b.WriteString("\n" + theme.Hint.Render("next question shortly..."))
	}
	b.WriteString("\n" + s.counter() + "   " + theme.Muted.Render(fmt.Sprintf("answered %d", s.snap.Answered)))
	return b.String()
}

func (s *StudyScreen) renderResults(cw int) string {
	r := s.machine.TestReport()

	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("Score %.0f%%", r.Score())))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d of %d correct", r.CorrectCount(), len(r.Results))))
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("", r.Score()/100, false, cw).View())
	b.WriteString("\n\n")

	for _, res := range r.Results {
		mark := theme.Incorrect.Render("✗")
		if res.IsCorrect {
			mark = theme.Correct.Render("✓")
		}
		answer := res.SelectedAnswer
		if !res.Answered {
			answer = "-"
		}
		line := fmt.Sprintf("%s  %s  %s", mark, res.Word.Arabic, answer)
		if !res.IsCorrect {
			line += theme.Muted.Render("  (" + res.Word.English + ")")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
