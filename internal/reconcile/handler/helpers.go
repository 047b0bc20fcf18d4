package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"supplier-match/internal/fileio"
	"supplier-match/internal/reconcile/model"
)

func mappingFrom(r *http.Request, side, filename string, useSku bool) model.Mapping {
	return model.Mapping{
		NameKey:   formOr(r, side+"_name", fileio.DefaultNameKeys),
		SkuKey:    formOr(r, side+"_sku", fileio.DefaultSkuKeys),
		PriceKey:  formOr(r, side+"_price", fileio.DefaultPriceKeys),
		UseSku:    useSku,
		HeaderRow: max(1, atoi(r.FormValue(side+"_header_row"), 1)),
		Source:    formOr(r, side+"_source", sourceName(filename)),
	}
}

// "kevmor_prices.xlsx" → "kevmor_prices"
func sourceName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func formOr(r *http.Request, key, def string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return def
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func toBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// toFloat: пусто → def; мусор/NaN/Inf → ok=false
func toFloat(s string, def float64) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, map[string]string{"error": msg})
}
