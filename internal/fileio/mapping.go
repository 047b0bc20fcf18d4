package fileio

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"supplier-match/internal/reconcile/model"
	"supplier-match/internal/utils"
)

// алиасы колонок по умолчанию, если маппинг не передан
const (
	DefaultNameKeys  = "name|product|product name|description|item|title"
	DefaultSkuKeys   = "sku|code|item code|product code|part number"
	DefaultPriceKeys = "price|cost|rrp|unit price|sell price"
)

var reHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// нормализуем имя колонки: нижний регистр, без служебных символов и двойных пробелов
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = reHeaderJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// ResolveKey ищет реальный заголовок по желаемому имени.
// Варианты через "|" ("Product|Description"); сначала точное совпадение, потом нормализованное,
// потом вхождение (для составных заголовков вида "Price (ex GST)").
func ResolveKey(headers []string, want string) string {
	want = strings.TrimSpace(want)
	if want == "" {
		return ""
	}
	var alts []string
	for _, a := range strings.Split(want, "|") {
		if a = strings.TrimSpace(a); a != "" {
			alts = append(alts, a)
		}
	}

	for _, a := range alts {
		for _, h := range headers {
			if h == a {
				return h
			}
		}
	}

	norm := make([]string, len(alts))
	for i, a := range alts {
		norm[i] = normHeaderKey(a)
	}
	for _, n := range norm {
		for _, h := range headers {
			if normHeaderKey(h) == n {
				return h
			}
		}
	}

	// частичное: побеждает самый длинный совпавший алиас, при равенстве — левая колонка
	best, bestScore := "", 0
	for _, h := range headers {
		nh := normHeaderKey(h)
		if nh == "" {
			continue
		}
		for _, n := range norm {
			if n != "" && strings.Contains(nh, n) && len(n) > bestScore {
				best, bestScore = h, len(n)
			}
		}
	}
	return best
}

// headersOf — заголовки из первой строки; у map нет порядка, сортируем
func headersOf(maps []map[string]string) []string {
	if len(maps) == 0 {
		return nil
	}
	hs := make([]string, 0, len(maps[0]))
	for k := range maps[0] {
		hs = append(hs, k)
	}
	sort.Strings(hs)
	return hs
}

// повторная шапка посреди файла (склеенные выгрузки)
func looksLikeHeaderMap(m map[string]string) bool {
	cnt := 0
	for k, v := range m {
		nv := normHeaderKey(v)
		if nv == "" {
			continue
		}
		if nv == normHeaderKey(k) {
			cnt++
			continue
		}
		switch nv {
		case "name", "product", "description", "sku", "code", "price", "cost", "total":
			cnt++
		}
	}
	return cnt >= 2
}

// ToProducts раскладывает сырые строки по маппингу; строки без наименования пропускаются.
func ToProducts(maps []map[string]string, m model.Mapping) []model.Product {
	headers := headersOf(maps)
	nameKey := ResolveKey(headers, m.NameKey)
	skuKey := ResolveKey(headers, m.SkuKey)
	priceKey := ResolveKey(headers, m.PriceKey)

	out := make([]model.Product, 0, len(maps))
	if nameKey == "" {
		return out
	}
	for _, rec := range maps {
		if looksLikeHeaderMap(rec) {
			continue
		}
		name := strings.TrimSpace(rec[nameKey])
		if name == "" {
			continue
		}
		p := model.Product{Source: m.Source, Name: name}
		if m.UseSku && skuKey != "" {
			p.Sku = strings.TrimSpace(rec[skuKey])
		}
		if priceKey != "" {
			p.Price, p.HasPrice = utils.ParsePrice(rec[priceKey])
		}
		out = append(out, p)
	}
	return out
}

// ReadCatalog — файл с диска сразу в товары (CLI).
func ReadCatalog(path string, m model.Mapping) ([]model.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	maps, err := ReadAnyMaps(f, path, m.HeaderRow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ToProducts(maps, m), nil
}
