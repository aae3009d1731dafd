package procurement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates a missing record.
var ErrNotFound = errors.New("procurement: record not found")

// SnapshotParams scopes the record set loaded for one analytics request.
// Date bounds apply to PO creation; child records follow PO membership.
type SnapshotParams struct {
	OrganizationID uuid.UUID
	ProjectID      *uuid.UUID
	DateFrom       *time.Time
	DateTo         *time.Time
}

// SnapshotRepository loads the full record snapshot for one request.
type SnapshotRepository interface {
	LoadSnapshot(ctx context.Context, params SnapshotParams) (Snapshot, error)
}
