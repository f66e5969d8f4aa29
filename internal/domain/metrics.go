package domain

import "time"

type MetricsCollector interface {
	RecordCheck(outcome ValidationOutcome, issue IssueType, duration time.Duration)
	RecordHeadFallback()
	RecordPageFailure(reason string)
	RecordLinksDiscovered(n int)
	RecordWorkerStart(workerID string)
	RecordWorkerStop(workerID string)
}
