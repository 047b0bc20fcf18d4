package matching

import (
	"errors"
	"fmt"
	"math"
)

// DefaultThreshold — порог для стройматериалов/напольных покрытий (>=35% общих токенов).
const DefaultThreshold = 0.35

var ErrInvalidThreshold = errors.New("threshold must be within [0,1]")

// Jaccard = |A ∩ B| / |A ∪ B|; пустое множество с любой стороны → 0.
func Jaccard(a, b TokenSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := intersectCount(a, b)
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// IsMatch — решение по порогу, когда на руках только score.
func IsMatch(score, threshold float64) bool {
	return score >= threshold
}

// Matcher связывает токенизатор и порог вызывающей стороны.
type Matcher struct {
	tok       *Tokenizer
	threshold float64
}

func ValidateThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 || math.IsNaN(threshold) {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	return nil
}

func NewMatcher(tok *Tokenizer, threshold float64) (*Matcher, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	return &Matcher{tok: tok, threshold: threshold}, nil
}

func (m *Matcher) Tokenizer() *Tokenizer { return m.tok }

func (m *Matcher) Threshold() float64 { return m.threshold }

// WithThreshold — копия с другим порогом, токенизатор общий.
func (m *Matcher) WithThreshold(threshold float64) (*Matcher, error) {
	return NewMatcher(m.tok, threshold)
}

func (m *Matcher) Similarity(a, b string) float64 {
	return Jaccard(m.tok.Tokenize(a), m.tok.Tokenize(b))
}

func (m *Matcher) IsMatch(score float64) bool {
	return IsMatch(score, m.threshold)
}

// Comparison — разбор одной пары для диагностики ("почему не сматчилось").
type Comparison struct {
	NormA     string   `json:"normA"`
	NormB     string   `json:"normB"`
	TokensA   []string `json:"tokensA"`
	TokensB   []string `json:"tokensB"`
	Shared    []string `json:"shared"`
	Score     float64  `json:"score"`
	Threshold float64  `json:"threshold"`
	Match     bool     `json:"match"`
}

func (m *Matcher) Compare(a, b string) Comparison {
	na, nb := m.tok.Normalizer().Normalize(a), m.tok.Normalizer().Normalize(b)
	ta, tb := m.tok.TokenizeNormalized(na), m.tok.TokenizeNormalized(nb)
	score := Jaccard(ta, tb)
	return Comparison{
		NormA:     na,
		NormB:     nb,
		TokensA:   ta.Sorted(),
		TokensB:   tb.Sorted(),
		Shared:    ta.Intersect(tb).Sorted(),
		Score:     score,
		Threshold: m.threshold,
		Match:     m.IsMatch(score),
	}
}

// === пакетные функции с настройками по умолчанию ===

var (
	defaultNormalizer = NewNormalizer(DefaultNormalizeOptions())
	defaultTokenizer  = NewTokenizer(defaultNormalizer, DefaultVocabulary())
)

func Normalize(raw string) string { return defaultNormalizer.Normalize(raw) }

func Tokenize(raw string) TokenSet { return defaultTokenizer.Tokenize(raw) }

func Similarity(a, b string) float64 {
	return Jaccard(defaultTokenizer.Tokenize(a), defaultTokenizer.Tokenize(b))
}

// DefaultMatcher — встроенный словарь и DefaultThreshold.
func DefaultMatcher() *Matcher {
	return &Matcher{tok: defaultTokenizer, threshold: DefaultThreshold}
}
