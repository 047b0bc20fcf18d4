package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"supplier-match/internal/config"
	"supplier-match/internal/fileio"
	"supplier-match/internal/matching"
	"supplier-match/internal/middleware"
	"supplier-match/internal/reconcile/model"
	recSvc "supplier-match/internal/reconcile/service"
)

// Recorder — приёмник метрик сверки (internal/metrics.Recorder).
type Recorder interface {
	ObserveReconcile(d time.Duration, res model.Result, err error)
}

// multipart сверх этого уходит во временные файлы
const multipartMemory = 32 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Reconcile возвращает http.HandlerFunc, чтобы вызвать его как
// r.Post("/reconcile", recHnd.Reconcile(cfg, logger, m, rec)) в роутере.
func Reconcile(cfg config.Config, logger zerolog.Logger, m *matching.Matcher, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := requestLogger(r, logger)

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		threshold, ok := toFloat(r.FormValue("threshold"), m.Threshold())
		if !ok {
			writeError(w, http.StatusBadRequest, "threshold is not a number")
			return
		}
		useSku := toBool(r.FormValue("use_sku"), true)
		opt := model.Options{
			UseSku:          useSku,
			EnableTokens:    toBool(r.FormValue("enable_tokens"), true),
			StrictAfterNorm: toBool(r.FormValue("strict_after_norm"), false),
			Threshold:       threshold,
			Workers:         cfg.Matching.Workers,
		}
		if err := matching.ValidateThreshold(opt.Threshold); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		format := r.FormValue("format")
		if format != "" && format != "json" && format != "xlsx" {
			writeError(w, http.StatusBadRequest, "format must be json or xlsx")
			return
		}

		a, ma, err := readSide(r, "a", useSku)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		b, mb, err := readSide(r, "b", useSku)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		log.Debug().
			Int("a_rows", len(a)).
			Int("b_rows", len(b)).
			Str("a_source", ma.Source).
			Str("b_source", mb.Source).
			Interface("opts", opt).
			Msg("catalogs mapped")

		res, err := recSvc.Run(r.Context(), a, b, opt, m)
		if rec != nil {
			rec.ObserveReconcile(time.Since(start), res, err)
		}
		if err != nil {
			// клиент ушёл — писать некому
			if r.Context().Err() != nil {
				log.Warn().Err(err).Msg("reconcile cancelled")
				return
			}
			log.Error().Err(err).Msg("reconcile failed")
			writeError(w, http.StatusInternalServerError, "reconcile failed")
			return
		}

		// эхо того, что реально применилось (для отладки в UI и curl)
		res.MapA = ma
		res.MapB = mb

		if format == "xlsx" {
			w.Header().Set("Content-Type", xlsxContentType)
			w.Header().Set("Content-Disposition",
				fmt.Sprintf(`attachment; filename="reconcile-%s.xlsx"`, middleware.GetRequestID(r)))
			if err := fileio.WriteResultXLSX(w, res); err != nil {
				log.Error().Err(err).Msg("write xlsx")
				return
			}
		} else if err := writeJSON(w, http.StatusOK, res); err != nil {
			log.Error().Err(err).Msg("write json")
			return
		}

		log.Info().
			Int("rowsA", res.Stats.RowsA).
			Int("rowsB", res.Stats.RowsB).
			Int("matched", len(res.Rows)).
			Int("bySku", res.Stats.BySku).
			Int("byExact", res.Stats.ByExact).
			Int("byTokens", res.Stats.ByTokens).
			Int("comparisons", res.Stats.Comparisons).
			Dur("elapsed", time.Since(start)).
			Msg("reconcile done")
	}
}

// readSide читает fileA/fileB и раскладывает строки по маппингу этой стороны.
func readSide(r *http.Request, side string, useSku bool) ([]model.Product, model.Mapping, error) {
	field := "file" + strings.ToUpper(side)
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, model.Mapping{}, fmt.Errorf("missing %s: %w", field, err)
	}
	defer f.Close()

	m := mappingFrom(r, side, hdr.Filename, useSku)
	maps, err := fileio.ReadAnyMaps(f, hdr.Filename, m.HeaderRow)
	if err != nil {
		return nil, m, fmt.Errorf("failed to read %s: %w", field, err)
	}
	return fileio.ToProducts(maps, m), m, nil
}

type tokenizeRequest struct {
	Name string `json:"name"`
}

type tokenizeResponse struct {
	Name       string   `json:"name"`
	Normalized string   `json:"normalized"`
	Tokens     []string `json:"tokens"`
}

// Tokenize — POST /match/tokenize {"name": "..."}: что движок видит в наименовании.
func Tokenize(m *matching.Matcher) http.HandlerFunc {
	tok := m.Tokenizer()
	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenizeRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		norm := tok.Normalizer().Normalize(req.Name)
		_ = writeJSON(w, http.StatusOK, tokenizeResponse{
			Name:       req.Name,
			Normalized: norm,
			Tokens:     tok.TokenizeNormalized(norm).Sorted(),
		})
	}
}

type similarityRequest struct {
	A         string   `json:"a"`
	B         string   `json:"b"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// Similarity — POST /match/similarity {"a","b","threshold"?} → разбор сравнения.
func Similarity(m *matching.Matcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req similarityRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		mm := m
		if req.Threshold != nil {
			var err error
			if mm, err = m.WithThreshold(*req.Threshold); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		_ = writeJSON(w, http.StatusOK, mm.Compare(req.A, req.B))
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return fmt.Errorf("request body too large")
		}
		return fmt.Errorf("bad json: %w", err)
	}
	return nil
}

// логгер с rid из middleware.Logging, иначе переданный
func requestLogger(r *http.Request, fallback zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &fallback
}
