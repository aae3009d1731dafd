package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAlertDigest computes and dispatches the daily alert digest.
	TaskAlertDigest = "alerts:digest"
	// TaskQualityScan recomputes data-quality counts across projects.
	TaskQualityScan = "quality:scan"
)

// AlertDigestPayload scopes a digest run. A nil ProjectID means every
// project with purchase orders.
type AlertDigestPayload struct {
	ProjectID *uuid.UUID `json:"projectId,omitempty"`
}

// NewAlertDigestTask builds a digest task.
func NewAlertDigestTask(payload AlertDigestPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAlertDigest, body, asynq.Queue(QueueDefault)), nil
}

// NewQualityScanTask builds a data-quality scan task.
func NewQualityScanTask() *asynq.Task {
	return asynq.NewTask(TaskQualityScan, nil, asynq.Queue(QueueDefault))
}
