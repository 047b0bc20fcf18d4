package matching

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMinSeparatorIndex — разделитель раньше этой позиции (в символах) не режет строку.
const DefaultMinSeparatorIndex = 10

// DefaultSeparators — дефис, en-dash, em-dash, окружённые одиночными пробелами.
var DefaultSeparators = []string{" - ", " – ", " — "}

type NormalizeOptions struct {
	MinSeparatorIndex int      // гард: режем только если позиция >= MinSeparatorIndex
	Separators        []string // пусто → DefaultSeparators
}

func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		MinSeparatorIndex: DefaultMinSeparatorIndex,
		Separators:        DefaultSeparators,
	}
}

// Normalizer приводит сырое наименование к каноническому виду.
// Без состояния, безопасен для конкурентного использования.
type Normalizer struct {
	minSepIdx  int
	separators []string
}

func NewNormalizer(opt NormalizeOptions) Normalizer {
	seps := opt.Separators
	if len(seps) == 0 {
		seps = DefaultSeparators
	}
	idx := opt.MinSeparatorIndex
	if idx < 0 {
		idx = 0
	}
	return Normalizer{minSepIdx: idx, separators: append([]string(nil), seps...)}
}

// управляющие U+0000–U+001F, ®, ™, ©, U+FFFD
var reNoise = regexp.MustCompile(`[\x00-\x1f®™©\x{FFFD}]`)

// (...) вместе с окружающими пробелами, нежадно
var reParenthetical = regexp.MustCompile(`\s*\(.*?\)\s*`)

// === Normalize — конвейер, порядок шагов важен ===
func (n Normalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	out := lowerTrim(raw)
	out = stripNoise(out)
	out = dropParentheticals(out)
	out = plainSpaces(out)
	out = truncateAtSeparator(out, n.separators, n.minSepIdx)
	return collapseSpaces(out)
}

// 1) регистр + обрезка
func lowerTrim(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// 2) управляющие символы и декоративные знаки
func stripNoise(s string) string {
	return reNoise.ReplaceAllString(s, "")
}

// 3) "(extra wide)" и т.п.
func dropParentheticals(s string) string {
	return reParenthetical.ReplaceAllString(s, " ")
}

// NBSP и прочие юникод-пробелы → ' ', позиции символов не меняются
func plainSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}

// 4) хвост после " - " (обычно артикул поставщика).
// Для каждого разделителя берём первое вхождение; режем по самому левому,
// прошедшему гард по позиции.
func truncateAtSeparator(s string, seps []string, minIdx int) string {
	cut := -1
	for _, sep := range seps {
		if sep == "" {
			continue
		}
		i := strings.Index(s, sep)
		if i < 0 {
			continue
		}
		if utf8.RuneCountInString(s[:i]) < minIdx {
			continue
		}
		if cut < 0 || i < cut {
			cut = i
		}
	}
	if cut < 0 {
		return s
	}
	return s[:cut]
}

// 5) схлопывание пробелов
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
