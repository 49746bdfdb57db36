package jsonfile

import (
	"github.com/VictoriaMetrics/metrics"
)

// Operation counters and flush timings for all jsonfile datastores of the
// process. Exposed through metrics.WritePrometheus by embedding programs.
var (
	setCalls    = metrics.GetOrCreateCounter(`jkv_store_ops_total{op="set"}`)
	getCalls    = metrics.GetOrCreateCounter(`jkv_store_ops_total{op="get"}`)
	hasCalls    = metrics.GetOrCreateCounter(`jkv_store_ops_total{op="has"}`)
	deleteCalls = metrics.GetOrCreateCounter(`jkv_store_ops_total{op="delete"}`)
	queryCalls  = metrics.GetOrCreateCounter(`jkv_store_ops_total{op="query"}`)
	flushCalls  = metrics.GetOrCreateCounter(`jkv_store_ops_total{op="flush"}`)

	flushDuration = metrics.GetOrCreateSummary(`jkv_store_flush_duration_seconds`)
	flushedBytes  = metrics.GetOrCreateCounter(`jkv_store_flush_bytes_total`)
)
