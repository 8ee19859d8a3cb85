package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordOperation(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordOperation("getTerm", "ok", time.Millisecond)
	m.RecordOperation("getTerm", "ok", time.Millisecond)
	m.RecordOperation("getTerm", "unrecognized GUID", time.Millisecond)

	if got := testutil.ToFloat64(m.OperationsTotal.WithLabelValues("getTerm", "ok")); got != 2 {
		t.Errorf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.OperationsTotal.WithLabelValues("getTerm", "unrecognized GUID")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
}

func TestRecordConversionAndCache(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordConversion("Glossary", "fromElement", nil)
	m.RecordConversion("Glossary", "fromElement", errors.New("x"))
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)
	m.SetRecordCounts(5, 3)

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"conversion ok", m.ConversionsTotal.WithLabelValues("Glossary", "fromElement", "ok"), 1},
		{"conversion error", m.ConversionsTotal.WithLabelValues("Glossary", "fromElement", "error"), 1},
		{"cache hit", m.CacheLookupsTotal.WithLabelValues("hit"), 1},
		{"cache miss", m.CacheLookupsTotal.WithLabelValues("miss"), 2},
		{"elements", m.RecordsLoaded.WithLabelValues("element"), 5},
	}
	for _, c := range checks {
		if got := testutil.ToFloat64(c.c); got != c.want {
			t.Errorf("%s = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordOperation("op", "ok", 0)
	m.RecordConversion("Glossary", "fromElement", nil)
	m.RecordHTTPRequest("/health", 200, 0)
	m.RecordCacheLookup(true)
	m.SetRecordCounts(1, 1)
}

func TestStatusLabel(t *testing.T) {
	for code, want := range map[int]string{200: "2xx", 304: "3xx", 404: "4xx", 503: "5xx"} {
		if got := statusLabel(code); got != want {
			t.Errorf("statusLabel(%d) = %q, want %q", code, got, want)
		}
	}
}
