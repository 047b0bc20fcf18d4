package service

import (
	"sort"

	"supplier-match/internal/matching"
	"supplier-match/internal/reconcile/model"
)

// индекс для быстрого поиска по B (значения — позиции в срезе B)
type Index struct {
	bySku  map[string][]int
	byName map[string][]int
	inv    map[string][]int // token -> позиции B, по возрастанию
}

func buildIndexB(rows []model.Product) *Index {
	idx := &Index{
		bySku:  make(map[string][]int),
		byName: make(map[string][]int),
		inv:    make(map[string][]int),
	}

	for i, r := range rows {
		if r.Sku != "" {
			idx.bySku[r.Sku] = append(idx.bySku[r.Sku], i)
		}
		if r.NameNorm == "" {
			continue
		}
		idx.byName[r.NameNorm] = append(idx.byName[r.NameNorm], i)

		for t := range r.Tokens {
			idx.inv[t] = append(idx.inv[t], i)
		}
	}

	return idx
}

// Кандидаты — строки B, разделяющие с A хотя бы один токен.
// Пара без общих токенов даёт Jaccard = 0, сравнивать её незачем.
func (idx *Index) candidates(tokens matching.TokenSet, used []bool) []int {
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[int]struct{})
	for t := range tokens {
		for _, j := range idx.inv[t] {
			if used[j] {
				continue
			}
			seen[j] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for j := range seen {
		out = append(out, j)
	}
	sort.Ints(out) // для детерминированного порядка
	return out
}
