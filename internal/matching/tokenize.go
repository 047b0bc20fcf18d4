package matching

import (
	"regexp"
	"sort"
	"strings"
)

// артикулы/размеры: отдельно стоящие 2–4 цифры ("230", "7230"), но не "5" из "5/8"
var reNumericCode = regexp.MustCompile(`\b\d{2,4}\b`)

var reToken = regexp.MustCompile(`[a-z0-9]+`)

// Tokenizer строит множество значимых токенов из сырого наименования.
// После создания неизменяем, безопасен для конкурентного использования.
type Tokenizer struct {
	norm       Normalizer
	vocab      Vocabulary
	reSuppress *regexp.Regexp // nil, если словарь пуст
	stop       map[string]struct{}
}

func NewTokenizer(norm Normalizer, vocab Vocabulary) *Tokenizer {
	vocab = vocab.clean()
	t := &Tokenizer{
		norm:  norm,
		vocab: vocab,
		stop:  make(map[string]struct{}, len(vocab.StopWords)),
	}
	for _, w := range vocab.StopWords {
		t.stop[w] = struct{}{}
	}
	t.reSuppress = compileSuppress(vocab.Suppress)
	return t
}

// одна альтернация по границам слов; длинные фразы первыми ("heavy duty" раньше "heavy")
func compileSuppress(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return nil
	}
	alts := make([]string, len(words))
	for i, w := range words {
		alts[i] = regexp.QuoteMeta(w)
	}
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
	return regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)\b`)
}

func (t *Tokenizer) Normalizer() Normalizer { return t.norm }

func (t *Tokenizer) Vocabulary() Vocabulary { return t.vocab }

// Tokenize: normalize → вырезать словарь → вырезать коды → [a-z0-9]+ → set − стоп-слова.
func (t *Tokenizer) Tokenize(raw string) TokenSet {
	return t.TokenizeNormalized(t.norm.Normalize(raw))
}

// TokenizeNormalized — без нормализации; на входе уже результат Normalize.
func (t *Tokenizer) TokenizeNormalized(norm string) TokenSet {
	if norm == "" {
		return TokenSet{}
	}
	s := t.suppress(norm)
	s = stripNumericCodes(s)
	out := make(TokenSet)
	for _, tok := range reToken.FindAllString(s, -1) {
		if _, stop := t.stop[tok]; stop {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}

func (t *Tokenizer) suppress(s string) string {
	if t.reSuppress == nil {
		return s
	}
	return t.reSuppress.ReplaceAllString(s, "")
}

func stripNumericCodes(s string) string {
	return reNumericCode.ReplaceAllString(s, "")
}
