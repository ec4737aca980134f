package study

import "github.com/abhisek/kalima/internal/vocab"

// PracticeSummary groups the lesson's words by their session outcome.
type PracticeSummary struct {
	Incorrect    []vocab.VocabularyWord
	Correct      []vocab.VocabularyWord
	NotPracticed []vocab.VocabularyWord
}

// Answered returns the number of words with an outcome.
func (s PracticeSummary) Answered() int {
	return len(s.Correct) + len(s.Incorrect)
}

// Accuracy returns the percentage of answered words marked correct, or 0
// when nothing has been answered.
func (s PracticeSummary) Accuracy() float64 {
	return Percent(len(s.Correct), s.Answered())
}

// QuestionResult is one row of the submitted test view.
type QuestionResult struct {
	Word           vocab.VocabularyWord
	SelectedAnswer string
	Answered       bool
	IsCorrect      bool
}

// TestReport is the read-only result of a test attempt.
type TestReport struct {
	Attempt int
	Results []QuestionResult
}

// CorrectCount returns the number of correctly answered questions.
func (r TestReport) CorrectCount() int {
	n := 0
	for _, q := range r.Results {
		if q.IsCorrect {
			n++
		}
	}
	return n
}

// Score returns the percentage of questions answered correctly.
func (r TestReport) Score() float64 {
	return Percent(r.CorrectCount(), len(r.Results))
}

// Percent returns part/total*100, or 0 when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
