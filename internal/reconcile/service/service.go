package service

import (
	"context"
	"math"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"supplier-match/internal/matching"
	"supplier-match/internal/reconcile/model"
)

// prepare: нормализация и токены считаются один раз на строку, не на пару.
// Работает на копии, входной срез вызывающего не трогаем.
func prepare(rows []model.Product, tok *matching.Tokenizer) []model.Product {
	norm := tok.Normalizer()
	out := make([]model.Product, len(rows))
	for i, r := range rows {
		r.Sku = strings.TrimSpace(r.Sku)
		r.NameNorm = norm.Normalize(r.Name)
		r.Tokens = tok.TokenizeNormalized(r.NameNorm)
		out[i] = r
	}
	return out
}

// aggregate duplicates by key (prefer SKU; otherwise normalized name), keep the cheapest listing
func aggregate(rows []model.Product, opt model.Options) []model.Product {
	pos := make(map[string]int)
	out := make([]model.Product, 0, len(rows))
	for _, r := range rows {
		key := aggKey(r, opt)
		if key == "" {
			out = append(out, r)
			continue
		}
		i, ok := pos[key]
		if !ok {
			pos[key] = len(out)
			out = append(out, r)
			continue
		}
		ex := out[i]
		if cheaper(r, ex) {
			r.Dups = ex.Dups
			ex = r
		}
		ex.Dups++
		out[i] = ex
	}
	return out
}

func aggKey(r model.Product, opt model.Options) string {
	if opt.UseSku && r.Sku != "" {
		return "sku:" + r.Sku
	}
	if r.NameNorm != "" {
		return "name:" + r.NameNorm
	}
	return ""
}

func cheaper(r, than model.Product) bool {
	if !r.HasPrice {
		return false
	}
	return !than.HasPrice || r.Price < than.Price
}

type pair struct {
	a, b   int
	score  float64
	method string
}

// Run — сверка каталогов двух поставщиков: SKU → точное имя → токены (Jaccard).
func Run(ctx context.Context, a, b []model.Product, opt model.Options, m *matching.Matcher) (model.Result, error) {
	if err := matching.ValidateThreshold(opt.Threshold); err != nil {
		return model.Result{}, err
	}
	tok := m.Tokenizer()

	// 1) Нормализация + токены
	a = prepare(a, tok)
	b = prepare(b, tok)
	stats := model.Stats{RowsA: len(a), RowsB: len(b)}

	// 2) Схлопываем дубли внутри каждого каталога
	a = aggregate(a, opt)
	b = aggregate(b, opt)
	for _, r := range a {
		stats.DupsA += r.Dups
	}
	for _, r := range b {
		stats.DupsB += r.Dups
	}

	// 3) Индекс по B
	idxB := buildIndexB(b)

	usedB := make([]bool, len(b))
	matchedA := make([]bool, len(a))
	pairs := make([]pair, 0, len(a))

	take := func(i, j int, method string) {
		matchedA[i] = true
		usedB[j] = true
		pairs = append(pairs, pair{a: i, b: j, score: matching.Jaccard(a[i].Tokens, b[j].Tokens), method: method})
	}

	// (1) Совпадение по SKU
	if opt.UseSku {
		for i, ar := range a {
			if ar.Sku == "" {
				continue
			}
			if j := chooseBest(idxB.bySku[ar.Sku], ar, b, usedB); j >= 0 {
				take(i, j, model.MethodSku)
				stats.BySku++
			}
		}
	}

	// (2) Точное совпадение нормализованного имени
	for i, ar := range a {
		if matchedA[i] || ar.NameNorm == "" {
			continue
		}
		if j := chooseBest(idxB.byName[ar.NameNorm], ar, b, usedB); j >= 0 {
			take(i, j, model.MethodExact)
			stats.ByExact++
		}
	}

	// (3) По токенам (если разрешено и НЕ strict-after-norm)
	if opt.EnableTokens && !opt.StrictAfterNorm {
		cands, comps, err := scoreCandidates(ctx, a, b, matchedA, usedB, idxB, opt)
		if err != nil {
			return model.Result{}, err
		}
		stats.Comparisons = comps

		// жадно: лучшие пары первыми, каждая строка участвует один раз
		for _, c := range cands {
			if matchedA[c.a] || usedB[c.b] {
				continue
			}
			matchedA[c.a] = true
			usedB[c.b] = true
			pairs = append(pairs, c)
			stats.ByTokens++
		}
	}

	sortPairs(pairs)

	rows := make([]model.ResultRow, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, toRow(a[p.a], b[p.b], p))
	}

	onlyA := make([]model.Product, 0)
	for i, ar := range a {
		if !matchedA[i] {
			onlyA = append(onlyA, ar)
		}
	}
	onlyB := make([]model.Product, 0)
	for j, br := range b {
		if !usedB[j] {
			onlyB = append(onlyB, br)
		}
	}

	return model.Result{
		Rows:  rows,
		OnlyA: onlyA,
		OnlyB: onlyB,
		Stats: stats,
		Opts:  opt,
	}, nil
}

// scoreCandidates считает Jaccard для всех пар A×B с общими токенами.
// Строки A раскидываются по воркерам; каждый пишет только в свой слот.
func scoreCandidates(
	ctx context.Context,
	a, b []model.Product,
	matchedA, usedB []bool,
	idxB *Index,
	opt model.Options,
) ([]pair, int, error) {
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	perA := make([][]pair, len(a))
	comps := make([]int, len(a))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range a {
		if matchedA[i] || len(a[i].Tokens) == 0 {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, j := range idxB.candidates(a[i].Tokens, usedB) {
				comps[i]++
				s := matching.Jaccard(a[i].Tokens, b[j].Tokens)
				if s > 0 && matching.IsMatch(s, opt.Threshold) {
					perA[i] = append(perA[i], pair{a: i, b: j, score: s, method: model.MethodTokens})
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var out []pair
	total := 0
	for i := range perA {
		out = append(out, perA[i]...)
		total += comps[i]
	}
	sortPairs(out)
	return out, total, nil
}

// по убыванию score; при равенстве — по позиции A, затем B
func sortPairs(p []pair) {
	sort.SliceStable(p, func(x, y int) bool {
		if p[x].score != p[y].score {
			return p[x].score > p[y].score
		}
		if p[x].a != p[y].a {
			return p[x].a < p[y].a
		}
		return p[x].b < p[y].b
	})
}

// Выбираем неиспользованного кандидата с минимальной разницей цен
func chooseBest(cands []int, ar model.Product, b []model.Product, used []bool) int {
	best := -1
	bestDist := math.MaxFloat64

	for _, j := range cands {
		if used[j] {
			continue // уже использован
		}
		d := math.MaxFloat64 / 2 // цена неизвестна — хуже любой известной разницы
		if ar.HasPrice && b[j].HasPrice {
			d = math.Abs(ar.Price - b[j].Price)
		}
		if best < 0 || d < bestDist {
			best = j
			bestDist = d
		}
	}
	return best
}

func toRow(ar, br model.Product, p pair) model.ResultRow {
	row := model.ResultRow{
		NameA:  ar.Name,
		NameB:  br.Name,
		SkuA:   ar.Sku,
		SkuB:   br.Sku,
		Method: p.method,
		Score:  p.score,
		Shared: ar.Tokens.Intersect(br.Tokens).Sorted(),
	}
	if ar.HasPrice {
		v := ar.Price
		row.PriceA = &v
	}
	if br.HasPrice {
		v := br.Price
		row.PriceB = &v
	}
	if ar.HasPrice && br.HasPrice {
		d := ar.Price - br.Price
		row.Delta = &d
	}
	return row
}
