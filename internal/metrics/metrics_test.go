package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordOutcome(t *testing.T) {
	before := testutil.ToFloat64(DownloadOutcomes.WithLabelValues("enqueued"))
	RecordOutcome("enqueued", 10*time.Millisecond)
	if got := testutil.ToFloat64(DownloadOutcomes.WithLabelValues("enqueued")); got != before+1 {
		t.Fatalf("enqueued=%v, want %v", got, before+1)
	}
}

func TestRecordRecords(t *testing.T) {
	ins := testutil.ToFloat64(RecordsPersisted.WithLabelValues("inserted"))
	skp := testutil.ToFloat64(RecordsPersisted.WithLabelValues("skipped"))
	RecordRecords(3, 2)
	if got := testutil.ToFloat64(RecordsPersisted.WithLabelValues("inserted")); got != ins+3 {
		t.Fatalf("inserted=%v", got)
	}
	if got := testutil.ToFloat64(RecordsPersisted.WithLabelValues("skipped")); got != skp+2 {
		t.Fatalf("skipped=%v", got)
	}
}

func TestRecordCache(t *testing.T) {
	hits, misses := testutil.ToFloat64(CacheHits), testutil.ToFloat64(CacheMisses)
	RecordCache(true)
	RecordCache(false)
	RecordCache(false)
	if testutil.ToFloat64(CacheHits) != hits+1 || testutil.ToFloat64(CacheMisses) != misses+2 {
		t.Fatalf("unexpected cache counters")
	}
}

func TestRecordRun(t *testing.T) {
	RecordRun(nil, time.Second)
	RecordRun(errors.New("boom"), time.Second)
	if n := testutil.CollectAndCount(RunDuration); n != 2 {
		t.Fatalf("expected 2 run duration series, got %d", n)
	}
}
