package matching

import "sort"

// TokenSet — множество токенов, только членство.
type TokenSet map[string]struct{}

func NewTokenSet(tokens ...string) TokenSet {
	s := make(TokenSet, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

func (s TokenSet) Has(t string) bool {
	_, ok := s[t]
	return ok
}

func (s TokenSet) Len() int { return len(s) }

// Sorted — детерминированный порядок для логов/ответов
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Intersect — токены, общие для обоих множеств.
func (s TokenSet) Intersect(o TokenSet) TokenSet {
	small, big := s, o
	if len(big) < len(small) {
		small, big = big, small
	}
	out := make(TokenSet)
	for t := range small {
		if big.Has(t) {
			out[t] = struct{}{}
		}
	}
	return out
}

func (s TokenSet) Union(o TokenSet) TokenSet {
	out := make(TokenSet, len(s)+len(o))
	for t := range s {
		out[t] = struct{}{}
	}
	for t := range o {
		out[t] = struct{}{}
	}
	return out
}

// intersectCount без аллокаций — горячий путь Jaccard
func intersectCount(a, b TokenSet) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}
