package dto

type BatchStatus string

const (
	BatchAllSuccess BatchStatus = "ALL_SUCCESS"
	BatchPartial    BatchStatus = "PARTIAL"
	BatchAllFailed  BatchStatus = "ALL_FAILED"
)

type FailureReason string

const (
	ReasonNotFound     FailureReason = "NOT_FOUND"
	ReasonInvalid      FailureReason = "INVALID"
	ReasonConflict     FailureReason = "CONFLICT"
	ReasonUnreachable  FailureReason = "STORE_UNREACHABLE"
	ReasonStoreFailure FailureReason = "STORE_FAILURE"
)

// ItemFailure reports one item of a bulk operation that was not applied.
// Row is set for spreadsheet imports (1-based, header row excluded).
type ItemFailure struct {
	ID      string
	Row     int
	Reason  FailureReason
	Message string
}

// BatchResult summarizes a bulk operation whose items were applied
// independently.
type BatchResult struct {
	Status    BatchStatus
	Succeeded int
	Failures  []ItemFailure
}

func NewBatchResult(succeeded int, failures []ItemFailure) *BatchResult {
	status := BatchAllSuccess
	switch {
	case len(failures) > 0 && succeeded == 0:
		status = BatchAllFailed
	case len(failures) > 0:
		status = BatchPartial
	}
	if failures == nil {
		failures = []ItemFailure{}
	}
	return &BatchResult{
		Status:    status,
		Succeeded: succeeded,
		Failures:  failures,
	}
}

type ImportWarning struct {
	Row     int
	Column  string
	Message string
}

// ImportResult is the outcome of a spreadsheet import. Skipped counts rows
// with no values at all.
type ImportResult struct {
	Batch          *BatchResult
	Skipped        int
	Warnings       []ImportWarning
	IgnoredColumns []string
}
