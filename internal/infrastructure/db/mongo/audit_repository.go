package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

// AuditRepository persists report status changes to the report_status_events
// collection.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionStatusEvents)}
}

type statusEventDocument struct {
	ReportID   int64     `bson:"report_id"`
	From       string    `bson:"from,omitempty"`
	To         string    `bson:"to"`
	ChangedBy  int64     `bson:"changed_by"`
	ChangedAt  time.Time `bson:"changed_at"`
	RecordedAt time.Time `bson:"recorded_at"`
}

func (r *AuditRepository) Insert(ctx context.Context, c *domain.StatusChange) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := statusEventDocument{
		ReportID:   c.ReportID,
		From:       string(c.From),
		To:         string(c.To),
		ChangedBy:  c.ChangedBy,
		ChangedAt:  c.ChangedAt.UTC(),
		RecordedAt: time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert status event: %w", err)
	}
	return nil
}

// ListByReport returns the history of a report, oldest first.
func (r *AuditRepository) ListByReport(ctx context.Context, reportID int64) ([]*domain.StatusChange, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "changed_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"report_id": reportID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list status events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []statusEventDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode status events: %w", err)
	}

	changes := make([]*domain.StatusChange, 0, len(docs))
	for _, d := range docs {
		changes = append(changes, &domain.StatusChange{
			ReportID:  d.ReportID,
			From:      domain.ReportStatus(d.From),
			To:        domain.ReportStatus(d.To),
			ChangedBy: d.ChangedBy,
			ChangedAt: d.ChangedAt.UTC(),
		})
	}
	return changes, nil
}
