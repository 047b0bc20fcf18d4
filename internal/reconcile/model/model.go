package model

import "supplier-match/internal/matching"

type Mapping struct {
	NameKey   string // колонка с наименованием
	SkuKey    string // колонка с артикулом (опционально)
	PriceKey  string // колонка с ценой (опционально)
	UseSku    bool   // использовать ли артикул
	HeaderRow int    // строка заголовков (1-based)
	Source    string // метка поставщика ("kevmor", "gibbon", ...)
}

type Options struct {
	UseSku          bool    // сначала совпадение по артикулу
	EnableTokens    bool    // сопоставление по токенам, если нет точного
	StrictAfterNorm bool    // только точные совпадения после нормализации
	Threshold       float64 // порог Jaccard (0..1)
	Workers         int     // параллелизм скоринга; 0 → GOMAXPROCS
}

type Product struct {
	Source   string  `json:"source"`
	Name     string  `json:"name"`
	Sku      string  `json:"sku,omitempty"`
	Price    float64 `json:"price,omitempty"`
	HasPrice bool    `json:"hasPrice"`
	Category string  `json:"category,omitempty"`
	URL      string  `json:"url,omitempty"`

	NameNorm string            `json:"-"` // считается сервисом
	Tokens   matching.TokenSet `json:"-"`
	Dups     int               `json:"-"` // сколько дублей схлопнуто в эту строку
}

const (
	MethodSku    = "sku"
	MethodExact  = "exact"
	MethodTokens = "tokens"
)

type ResultRow struct {
	NameA  string   `json:"nameA"`
	NameB  string   `json:"nameB"`
	SkuA   string   `json:"skuA,omitempty"`
	SkuB   string   `json:"skuB,omitempty"`
	PriceA *float64 `json:"priceA,omitempty"`
	PriceB *float64 `json:"priceB,omitempty"`
	Delta  *float64 `json:"delta,omitempty"` // PriceA - PriceB, если обе цены известны
	Method string   `json:"method"`          // sku | exact | tokens
	Score  float64  `json:"score"`
	Shared []string `json:"shared,omitempty"` // общие токены — объяснение совпадения
}

type Stats struct {
	RowsA       int `json:"rowsA"`
	RowsB       int `json:"rowsB"`
	DupsA       int `json:"dupsA"`
	DupsB       int `json:"dupsB"`
	BySku       int `json:"bySku"`
	ByExact     int `json:"byExact"`
	ByTokens    int `json:"byTokens"`
	Comparisons int `json:"comparisons"` // сколько пар реально сравнили по токенам
}

type Result struct {
	Rows  []ResultRow `json:"rows"`
	OnlyA []Product   `json:"onlyA"`
	OnlyB []Product   `json:"onlyB"`
	Stats Stats       `json:"stats"`
	Opts  Options     `json:"opts"`
	MapA  Mapping     `json:"mapA"`
	MapB  Mapping     `json:"mapB"`
}
