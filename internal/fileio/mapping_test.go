package fileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-match/internal/reconcile/model"
)

func TestResolveKey(t *testing.T) {
	headers := []string{"Item Code", "Product Description", "Price (ex GST)", "Qty"}
	tests := []struct {
		want, expect string
	}{
		{"Qty", "Qty"},
		{"qty", "Qty"},
		{"item code", "Item Code"},
		{"name|description", "Product Description"},
		{"price", "Price (ex GST)"},
		{"sku|code", "Item Code"},
		{"colour", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.expect, ResolveKey(headers, tt.want))
		})
	}
}

func TestToProducts(t *testing.T) {
	maps := []map[string]string{
		{"Name": "Trowel", "SKU": " T1 ", "Price": "$9.95"},
		{"Name": "Name", "SKU": "SKU", "Price": "Price"},
		{"Name": "", "SKU": "X", "Price": "1"},
		{"Name": "Float", "SKU": "", "Price": "POA"},
	}
	m := model.Mapping{NameKey: "name", SkuKey: "sku", PriceKey: "price", UseSku: true, Source: "kevmor"}

	got := ToProducts(maps, m)
	require.Len(t, got, 2)
	assert.Equal(t, model.Product{Source: "kevmor", Name: "Trowel", Sku: "T1", Price: 9.95, HasPrice: true}, got[0])
	assert.Equal(t, model.Product{Source: "kevmor", Name: "Float"}, got[1])

	t.Run("sku ignored when disabled", func(t *testing.T) {
		m.UseSku = false
		assert.Empty(t, ToProducts(maps, m)[0].Sku)
	})

	t.Run("no name column", func(t *testing.T) {
		m.NameKey = "colour"
		assert.Empty(t, ToProducts(maps, m))
	})
}

func TestReadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gibbon.csv")
	require.NoError(t, os.WriteFile(path, []byte("Description,Cost\nKnee Pads,28\n"), 0o644))

	m := model.Mapping{NameKey: DefaultNameKeys, PriceKey: DefaultPriceKeys, HeaderRow: 1, Source: "gibbon"}
	got, err := ReadCatalog(path, m)
	require.NoError(t, err)
	assert.Equal(t, []model.Product{{Source: "gibbon", Name: "Knee Pads", Price: 28, HasPrice: true}}, got)

	_, err = ReadCatalog(filepath.Join(t.TempDir(), "missing.csv"), m)
	assert.Error(t, err)
}
