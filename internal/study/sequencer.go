package study

import (
	"math/rand/v2"
	"sort"

	"github.com/abhisek/kalima/internal/vocab"
)

// Sequencer holds the word orderings and an independent cursor per mode.
// Learn and Practice walk the list by Order; Test walks a permutation that
// stays fixed until Shuffle is called again.
type Sequencer struct {
	words    []vocab.VocabularyWord
	testPerm []int
	cursor   map[Mode]int
	rng      *rand.Rand
}

// NewSequencer sorts a copy of words by Order.
func NewSequencer(words []vocab.VocabularyWord, rng *rand.Rand) *Sequencer {
	if rng == nil {
		rng = newRand()
	}
	sorted := make([]vocab.VocabularyWord, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return &Sequencer{
		words:  sorted,
		cursor: make(map[Mode]int, len(Modes)),
		rng:    rng,
	}
}

// Len returns the number of words.
func (s *Sequencer) Len() int {
	return len(s.words)
}

// Shuffled reports whether a test permutation exists.
func (s *Sequencer) Shuffled() bool {
	return s.testPerm != nil
}

// Shuffle draws a fresh test permutation and resets the test cursor.
func (s *Sequencer) Shuffle() {
	s.testPerm = s.rng.Perm(len(s.words))
	s.cursor[ModeTest] = 0
}

// Words returns the traversal order for mode. Test mode without a
// permutation yields nil.
func (s *Sequencer) Words(mode Mode) []vocab.VocabularyWord {
	if mode != ModeTest {
		return s.words
	}
	if s.testPerm == nil {
		return nil
	}
	out := make([]vocab.VocabularyWord, len(s.testPerm))
	for i, idx := range s.testPerm {
		out[i] = s.words[idx]
	}
	return out
}

// At returns the word at position i of mode's ordering.
func (s *Sequencer) At(mode Mode, i int) (vocab.VocabularyWord, bool) {
	if i < 0 || i >= len(s.words) {
		return vocab.VocabularyWord{}, false
	}
	if mode != ModeTest {
		return s.words[i], true
	}
	if s.testPerm == nil {
		return vocab.VocabularyWord{}, false
	}
	return s.words[s.testPerm[i]], true
}

// Cursor returns the current position for mode.
func (s *Sequencer) Cursor(mode Mode) int {
	return s.cursor[mode]
}

// Current returns the word under mode's cursor.
func (s *Sequencer) Current(mode Mode) (vocab.VocabularyWord, bool) {
	return s.At(mode, s.cursor[mode])
}

// Next moves mode's cursor forward. It is a no-op at the end.
func (s *Sequencer) Next(mode Mode) bool {
	c := s.cursor[mode]
	if c >= len(s.words)-1 {
		return false
	}
	s.cursor[mode] = c + 1
	return true
}

// Previous moves mode's cursor back. It is a no-op at the start.
func (s *Sequencer) Previous(mode Mode) bool {
	c := s.cursor[mode]
	if c <= 0 {
		return false
	}
	s.cursor[mode] = c - 1
	return true
}

// Jump moves mode's cursor to i, clamped to the list bounds, and returns
// the resulting position.
func (s *Sequencer) Jump(mode Mode, i int) int {
	i = max(0, min(i, len(s.words)-1))
	s.cursor[mode] = i
	return i
}

// IndexOf returns the position of wordID in mode's ordering, or -1.
func (s *Sequencer) IndexOf(mode Mode, wordID int64) int {
	for i := range s.words {
		w, ok := s.At(mode, i)
		if !ok {
			return -1
		}
		if w.ID == wordID {
			return i
		}
	}
	return -1
}
