package integration

import (
	"strconv"
	"time"
)

// ---------------------------------------------------------------------------
// Batch sync results
// ---------------------------------------------------------------------------

// SyncStatus represents the outcome of one sync run
type SyncStatus string

const (
	SyncStatusPending    SyncStatus = "PENDING"
	SyncStatusInProgress SyncStatus = "IN_PROGRESS"
	SyncStatusSuccess    SyncStatus = "SUCCESS"
	SyncStatusPartial    SyncStatus = "PARTIAL"
	SyncStatusFailed     SyncStatus = "FAILED"
)

// String returns the string representation of SyncStatus
func (s SyncStatus) String() string {
	return string(s)
}

// SyncFailure records one item that could not be synced
type SyncFailure struct {
	ExternalID string `json:"external_id"`
	Error      string `json:"error"`
}

// SyncResult is the aggregate report of a batch. A failing item never aborts
// the batch; it lands in FailedItems.
type SyncResult struct {
	Status       SyncStatus    `json:"status"`
	TotalCount   int           `json:"total_count"`
	SuccessCount int           `json:"success_count"`
	FailedCount  int           `json:"failed_count"`
	FailedItems  []SyncFailure `json:"failed_items,omitempty"`
	SyncedAt     time.Time     `json:"synced_at"`
}

// NewSyncResult starts an in-progress result
func NewSyncResult() *SyncResult {
	return &SyncResult{Status: SyncStatusInProgress}
}

// AddSuccess counts one synced item
func (r *SyncResult) AddSuccess() {
	r.TotalCount++
	r.SuccessCount++
}

// AddFailure records one failed item
func (r *SyncResult) AddFailure(externalID string, err error) {
	r.TotalCount++
	r.FailedCount++
	r.FailedItems = append(r.FailedItems, SyncFailure{ExternalID: externalID, Error: err.Error()})
}

// Finish derives the final status from the counters
func (r *SyncResult) Finish() {
	r.SyncedAt = time.Now().UTC()
	switch {
	case r.FailedCount == 0:
		r.Status = SyncStatusSuccess
	case r.SuccessCount == 0:
		r.Status = SyncStatusFailed
	default:
		r.Status = SyncStatusPartial
	}
}

// ---------------------------------------------------------------------------
// Paging
// ---------------------------------------------------------------------------

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// PageRequest is one bounded unit of work
type PageRequest struct {
	// Cursor is opaque to callers: a 1-based page number for Bling, an
	// offset for locally polled payments. Empty means start.
	Cursor string
	Limit  int
	Since  *time.Time
}

// Normalize clamps Limit into [1, MaxPageSize], defaulting to DefaultPageSize.
func (p PageRequest) Normalize() PageRequest {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// PageNumber decodes a 1-based page cursor; invalid or empty cursors are page 1.
func (p PageRequest) PageNumber() int {
	n, err := strconv.Atoi(p.Cursor)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Offset decodes a 0-based offset cursor; invalid or empty cursors are 0.
func (p PageRequest) Offset() int {
	n, err := strconv.Atoi(p.Cursor)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// BatchResult is what every sync entry point returns: the per-item report
// plus how to continue. The caller re-invokes with NextCursor while HasMore.
type BatchResult struct {
	SyncResult
	NextCursor string `json:"next_cursor,omitempty"`
	// Remaining is the number of items left after this page, or -1 when the
	// provider does not report totals.
	Remaining int64 `json:"remaining"`
	HasMore   bool  `json:"has_more"`
}
