package storage

import "rangescope/internal/model"

// SnapshotSink receives valuation snapshots from the watch loop.
type SnapshotSink interface {
	PutSnapshots(records []model.ValuationRecord) error
}
