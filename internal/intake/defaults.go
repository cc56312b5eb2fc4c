package intake

import (
	"context"
	"time"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

const (
	// OfflineFlag marks records that were not classified by a model
	OfflineFlag = "offline_classification"
	// OfflineName is the name reported by the offline classifier
	OfflineName = "offline"
)

// DefaultsClassifier produces schema-default records without calling a
// model. The scoring engine still runs on them, so an offline verdict rests
// on provenance and text signals alone.
type DefaultsClassifier struct {
	now func() time.Time
}

// NewDefaultsClassifier creates the offline classifier
func NewDefaultsClassifier() *DefaultsClassifier {
	return &DefaultsClassifier{now: time.Now}
}

func (c *DefaultsClassifier) Name() string { return OfflineName }

func (c *DefaultsClassifier) IsAvailable(context.Context) bool { return true }

// Classify returns defaults with the offline flag set
func (c *DefaultsClassifier) Classify(ctx context.Context, req ClassifyRequest) (*model.ClassificationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return DefaultRecord(req, c.now()), nil
}

// DefaultRecord builds the offline record for req. It cannot fail.
func DefaultRecord(req ClassifyRequest, now time.Time) *model.ClassificationRecord {
	return finalize(&model.ClassificationRecord{Flags: []string{OfflineFlag}}, req, now)
}
