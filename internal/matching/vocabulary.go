package matching

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary — конфигурируемые словари токенизатора.
// Для другой предметной области передаётся свой файл, код не меняется.
type Vocabulary struct {
	Name      string   `yaml:"name" json:"name"`
	Version   string   `yaml:"version" json:"version"`
	Suppress  []string `yaml:"suppress" json:"suppress"`     // бренды + маркетинговые прилагательные
	StopWords []string `yaml:"stop_words" json:"stopWords"` // служебные слова и единицы
}

//go:embed vocab/flooring.yaml
var flooringYAML []byte

// DefaultVocabulary — встроенный словарь для напольных покрытий и инструмента.
func DefaultVocabulary() Vocabulary {
	v, err := ParseVocabulary(flooringYAML)
	if err != nil {
		panic(fmt.Sprintf("matching: embedded vocabulary: %v", err))
	}
	return v
}

// LoadVocabulary читает словарь из YAML-файла.
func LoadVocabulary(path string) (Vocabulary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	v, err := ParseVocabulary(b)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	return v, nil
}

func ParseVocabulary(b []byte) (Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(b, &v); err != nil {
		return Vocabulary{}, err
	}
	return v.clean(), nil
}

// clean: нижний регистр, без пустых и повторов, порядок сохраняется
func (v Vocabulary) clean() Vocabulary {
	v.Suppress = cleanWords(v.Suppress)
	v.StopWords = cleanWords(v.StopWords)
	return v
}

func cleanWords(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, w := range in {
		w = collapseSpaces(strings.ToLower(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
