package app

import (
	"context"
)

// MetricsRecorder receives the counters derived from service events.
// telemetry.QuoteMetrics implements it.
type MetricsRecorder interface {
	SetStoreSize(quotes, categories int)
	RecordSync(ok bool, added int)
	RecordPost(ok bool)
	RecordImport()
}

// MetricsObserver returns an Observer that feeds rec. Subscribe it before
// Start so the initial load sets the store gauges.
func MetricsObserver(rec MetricsRecorder) Observer {
	return func(_ context.Context, e Event) {
		switch e.Kind {
		case EventQuotesChanged:
			rec.SetStoreSize(e.Total, len(e.Categories))

			if e.Reason == ReasonImport {
				rec.RecordImport()
			}
		case EventSyncCompleted:
			rec.RecordSync(true, e.Added)
		case EventSyncFailed:
			rec.RecordSync(false, 0)
		case EventQuotePublished:
			rec.RecordPost(true)
		case EventPostFailed:
			rec.RecordPost(false)
		case EventFilterChanged, EventSessionCleared:
		}
	}
}
