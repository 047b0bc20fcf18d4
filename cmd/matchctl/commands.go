package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"supplier-match/internal/fileio"
	"supplier-match/internal/reconcile/model"
	recSvc "supplier-match/internal/reconcile/service"
)

// Version проставляется через -ldflags "-X main.Version=..."
var Version = "dev"

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTokenizeCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tokenize <name>...",
		Short: "Show the normalized form and token set of a product name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, m, err := c.load()
			if err != nil {
				return err
			}
			tok := m.Tokenizer()
			name := strings.Join(args, " ")
			norm := tok.Normalizer().Normalize(name)
			tokens := tok.TokenizeNormalized(norm).Sorted()

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, map[string]any{"name": name, "normalized": norm, "tokens": tokens})
			}
			fmt.Fprintf(out, "normalized: %s\n", norm)
			fmt.Fprintf(out, "tokens:     %s\n", strings.Join(tokens, " "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newScoreCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "score <a> <b>",
		Short: "Compare two product names and explain the similarity score",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, m, err := c.load()
			if err != nil {
				return err
			}
			cmp := m.Compare(args[0], args[1])

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, cmp)
			}
			fmt.Fprintf(out, "a:      %s  [%s]\n", cmp.NormA, strings.Join(cmp.TokensA, " "))
			fmt.Fprintf(out, "b:      %s  [%s]\n", cmp.NormB, strings.Join(cmp.TokensB, " "))
			fmt.Fprintf(out, "shared: %s\n", strings.Join(cmp.Shared, " "))
			fmt.Fprintf(out, "score:  %.4f (threshold %.2f) match=%t\n", cmp.Score, cmp.Threshold, cmp.Match)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

type reconcileFlags struct {
	out            string
	headerA        int
	headerB        int
	noSku          bool
	strict         bool
	nameA, nameB   string
	priceA, priceB string
}

func newReconcileCmd(c *cli) *cobra.Command {
	var f reconcileFlags
	cmd := &cobra.Command{
		Use:   "reconcile <fileA> <fileB>",
		Short: "Match two supplier catalogs (csv, xls, xlsx)",
		Long: "Match two supplier catalogs by SKU, exact normalized name and token similarity.\n" +
			"Prints JSON to stdout, or writes an xlsx workbook with --out.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, m, err := c.load()
			if err != nil {
				return err
			}
			useSku := !f.noSku
			ma := catalogMapping(args[0], f.nameA, f.priceA, f.headerA, useSku)
			mb := catalogMapping(args[1], f.nameB, f.priceB, f.headerB, useSku)

			a, err := fileio.ReadCatalog(args[0], ma)
			if err != nil {
				return err
			}
			b, err := fileio.ReadCatalog(args[1], mb)
			if err != nil {
				return err
			}

			opt := model.Options{
				UseSku:          useSku,
				EnableTokens:    true,
				StrictAfterNorm: f.strict,
				Threshold:       m.Threshold(),
				Workers:         cfg.Matching.Workers,
			}
			start := time.Now()
			res, err := recSvc.Run(cmd.Context(), a, b, opt, m)
			if err != nil {
				return err
			}
			res.MapA, res.MapB = ma, mb

			if f.out == "" {
				return printJSON(cmd.OutOrStdout(), res)
			}
			file, err := os.Create(f.out)
			if err != nil {
				return err
			}
			if err := fileio.WriteResultXLSX(file, res); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d matched (sku %d, exact %d, tokens %d), %d only in A, %d only in B, %s → %s\n",
				len(res.Rows), res.Stats.BySku, res.Stats.ByExact, res.Stats.ByTokens,
				len(res.OnlyA), len(res.OnlyB), time.Since(start).Round(time.Millisecond), f.out)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.out, "out", "o", "", "write result workbook (xlsx) instead of JSON")
	fl.IntVar(&f.headerA, "a-header-row", 1, "header row of fileA (1-based)")
	fl.IntVar(&f.headerB, "b-header-row", 1, "header row of fileB (1-based)")
	fl.StringVar(&f.nameA, "a-name", fileio.DefaultNameKeys, "name column of fileA, alternatives separated by |")
	fl.StringVar(&f.nameB, "b-name", fileio.DefaultNameKeys, "name column of fileB, alternatives separated by |")
	fl.StringVar(&f.priceA, "a-price", fileio.DefaultPriceKeys, "price column of fileA")
	fl.StringVar(&f.priceB, "b-price", fileio.DefaultPriceKeys, "price column of fileB")
	fl.BoolVar(&f.noSku, "no-sku", false, "do not match by SKU")
	fl.BoolVar(&f.strict, "strict", false, "only exact matches after normalization")
	return cmd
}

func catalogMapping(path, name, price string, headerRow int, useSku bool) model.Mapping {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return model.Mapping{
		NameKey:   name,
		SkuKey:    fileio.DefaultSkuKeys,
		PriceKey:  price,
		UseSku:    useSku,
		HeaderRow: max(1, headerRow),
		Source:    base,
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the matchctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", app, Version)
		},
	}
}
