package fileio

import (
	"fmt"
	"io"
	"strings"

	excelize "github.com/xuri/excelize/v2"

	"supplier-match/internal/reconcile/model"
)

const (
	SheetMatches = "matches"
	SheetOnlyA   = "only_a"
	SheetOnlyB   = "only_b"
)

var (
	matchesHeader = []any{"Name A", "Name B", "SKU A", "SKU B", "Price A", "Price B", "Delta", "Method", "Score", "Shared tokens"}
	productHeader = []any{"Source", "Name", "SKU", "Price", "Category", "URL"}
)

// WriteResultXLSX пишет результат сверки в книгу из трёх листов: matches, only_a, only_b.
func WriteResultXLSX(w io.Writer, res model.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	// лист по умолчанию переименовываем, а не удаляем: в книге должен остаться хотя бы один
	if err := f.SetSheetName(f.GetSheetName(0), SheetMatches); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := writeMatches(f, res.Rows); err != nil {
		return err
	}
	if err := writeProducts(f, SheetOnlyA, res.OnlyA); err != nil {
		return err
	}
	if err := writeProducts(f, SheetOnlyB, res.OnlyB); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write: %w", err)
	}
	return nil
}

func writeMatches(f *excelize.File, rows []model.ResultRow) error {
	if err := setRow(f, SheetMatches, 1, matchesHeader); err != nil {
		return err
	}
	for i, r := range rows {
		vals := []any{r.NameA, r.NameB, r.SkuA, r.SkuB, optNum(r.PriceA), optNum(r.PriceB), optNum(r.Delta), r.Method, r.Score, strings.Join(r.Shared, " ")}
		if err := setRow(f, SheetMatches, i+2, vals); err != nil {
			return err
		}
	}
	return nil
}

func writeProducts(f *excelize.File, sheet string, ps []model.Product) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("export: sheet %s: %w", sheet, err)
	}
	if err := setRow(f, sheet, 1, productHeader); err != nil {
		return err
	}
	for i, p := range ps {
		var price any
		if p.HasPrice {
			price = p.Price
		}
		if err := setRow(f, sheet, i+2, []any{p.Source, p.Name, p.Sku, price, p.Category, p.URL}); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, vals []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("export: %s row %d: %w", sheet, row, err)
	}
	return nil
}

// optNum: nil → пустая ячейка
func optNum(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
