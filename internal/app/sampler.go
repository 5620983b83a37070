package app

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
	"unicode"

	"scisoc-quiz-service/internal/domain"
)

const (
	// DefaultQuestionCount is used when a request asks for no usable count.
	DefaultQuestionCount = 12
	// MaxQuestionCount caps every play session.
	MaxQuestionCount = 50
)

// Sampler draws a bounded, uniformly shuffled subset of questions.
type Sampler struct {
	intn func(n int) int
}

// NewSampler uses the package-level math/rand source, which is safe for
// concurrent handlers.
func NewSampler() *Sampler {
	return &Sampler{intn: rand.Intn}
}

// NewSamplerWithRand is used by tests for reproducible orderings. The given
// source must not be shared across goroutines.
func NewSamplerWithRand(rnd *rand.Rand) *Sampler {
	return &Sampler{intn: rnd.Intn}
}

// ClampCount maps a requested count onto [1, MaxQuestionCount], falling back
// to DefaultQuestionCount for non-positive requests.
func ClampCount(n int) int {
	if n <= 0 {
		return DefaultQuestionCount
	}
	if n > MaxQuestionCount {
		return MaxQuestionCount
	}
	return n
}

// ParseCount reads a count from a query value the way a browser's parseInt
// does: leading whitespace, an optional sign, then the longest digit prefix.
// A value with no digit prefix yields the default.
func ParseCount(raw string) int {
	n, ok := leadingInt(raw)
	if !ok {
		return DefaultQuestionCount
	}
	return ClampCount(n)
}

// leadingInt parses the integer prefix of raw. "20abc" is 20, "1e3" is 1 and
// "12.9" is 12. Prefixes too large for an int saturate.
func leadingInt(raw string) (int, bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		n = math.MaxInt
	}
	if negative {
		n = -n
	}
	return n, true
}

// Sample returns the first min(n, len(questions)) elements of a shuffled copy.
func (s *Sampler) Sample(questions []domain.QuizQuestion, n int) []domain.QuizQuestion {
	n = ClampCount(n)
	shuffled := s.Shuffle(questions)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// Shuffle returns a Fisher–Yates permutation of a copy of questions.
func (s *Sampler) Shuffle(questions []domain.QuizQuestion) []domain.QuizQuestion {
	items := make([]domain.QuizQuestion, len(questions))
	copy(items, questions)
	for i := len(items) - 1; i > 0; i-- {
		j := s.intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
	return items
}
