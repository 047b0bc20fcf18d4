package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"supplier-match/internal/reconcile/model"
)

func TestRecorder_ObserveReconcile(t *testing.T) {
	r := New()
	res := model.Result{
		OnlyA: make([]model.Product, 2),
		Stats: model.Stats{BySku: 1, ByExact: 2, ByTokens: 3, Comparisons: 40},
	}
	r.ObserveReconcile(150*time.Millisecond, res, nil)
	r.ObserveReconcile(time.Second, model.Result{}, errors.New("bad file"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.rows.WithLabelValues(model.MethodSku)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.rows.WithLabelValues(model.MethodExact)))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.rows.WithLabelValues(model.MethodTokens)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.rows.WithLabelValues("only_a")))
	assert.Equal(t, 40.0, testutil.ToFloat64(r.comparisons))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() { r.ObserveReconcile(time.Second, model.Result{}, nil) })
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.ObserveReconcile(time.Millisecond, model.Result{Stats: model.Stats{Comparisons: 5}}, nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "supplier_match_comparisons_total 5")
	assert.Contains(t, rec.Body.String(), "supplier_match_reconcile_duration_seconds_count 1")
}
