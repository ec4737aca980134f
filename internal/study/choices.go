package study

import (
	"math/rand/v2"

	"github.com/abhisek/kalima/internal/vocab"
)

// MaxOptions is the size of a full multiple choice option set.
const MaxOptions = 4

// TestQuestion is the per-word state of one test attempt.
type TestQuestion struct {
	WordID         int64
	Options        []string
	SelectedAnswer string
	Answered       bool
	IsCorrect      bool
}

// ChoiceGenerator builds option sets from other words' translations. Each
// generator owns its random source; create one per study session.
type ChoiceGenerator struct {
	rng *rand.Rand
}

// NewChoiceGenerator returns a generator drawing from rng. A nil rng gets
// a randomly seeded source.
func NewChoiceGenerator(rng *rand.Rand) *ChoiceGenerator {
	if rng == nil {
		rng = newRand()
	}
	return &ChoiceGenerator{rng: rng}
}

// Options returns correct plus up to MaxOptions-1 distractors sampled
// without replacement from pool, in random order. Pool entries equal to
// correct and repeated entries are ignored, so correct appears exactly
// once and a small pool yields fewer options.
func (g *ChoiceGenerator) Options(correct string, pool []string) []string {
	seen := map[string]bool{correct: true}
	var candidates []string
	for _, p := range pool {
		if seen[p] {
			continue
		}
		seen[p] = true
		candidates = append(candidates, p)
	}

	n := min(MaxOptions-1, len(candidates))
	// Partial Fisher-Yates: the first n slots become a uniform sample.
	for i := 0; i < n; i++ {
		j := i + g.rng.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}

	options := make([]string, 0, n+1)
	options = append(options, correct)
	options = append(options, candidates[:n]...)
	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

// BuildQuestions returns one unanswered question per word, using the other
// words' translations as the distractor pool.
func (g *ChoiceGenerator) BuildQuestions(words []vocab.VocabularyWord) []TestQuestion {
	questions := make([]TestQuestion, len(words))
	for i, w := range words {
		pool := make([]string, 0, len(words)-1)
		for j, other := range words {
			if j != i {
				pool = append(pool, other.English)
			}
		}
		questions[i] = TestQuestion{
			WordID:  w.ID,
			Options: g.Options(w.English, pool),
		}
	}
	return questions
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
