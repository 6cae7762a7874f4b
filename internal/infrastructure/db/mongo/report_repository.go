package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

// ReportRepository implements ports.ReportRepository using MongoDB.
type ReportRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{db: db, col: db.Collection(collectionReports)}
}

type reportDocument struct {
	ID          int64     `bson:"_id"`
	UserID      int64     `bson:"user_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Address     string    `bson:"address"`
	Latitude    float64   `bson:"latitude"`
	Longitude   float64   `bson:"longitude"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d reportDocument) toDomain() *domain.Report {
	return &domain.Report{
		ID:          d.ID,
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		Address:     d.Address,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		Status:      domain.ReportStatus(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// Create inserts a new report document with the next report id.
func (r *ReportRepository) Create(ctx context.Context, rep *domain.Report) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, collectionReports)
	if err != nil {
		return nil, err
	}

	doc := reportDocument{
		ID:          id,
		UserID:      rep.UserID,
		Title:       rep.Title,
		Description: rep.Description,
		Address:     rep.Address,
		Latitude:    rep.Latitude,
		Longitude:   rep.Longitude,
		Status:      string(rep.Status),
		CreatedAt:   rep.CreatedAt.UTC().Truncate(time.Millisecond),
		UpdatedAt:   rep.UpdatedAt.UTC().Truncate(time.Millisecond),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id int64) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reportDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReportRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Report, error) {
	return r.list(ctx, bson.M{"user_id": ownerID})
}

func (r *ReportRepository) ListAll(ctx context.Context) ([]*domain.Report, error) {
	return r.list(ctx, bson.M{})
}

func (r *ReportRepository) list(ctx context.Context, filter bson.M) ([]*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer cur.Close(ctx)

	var docs []reportDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}

	reports := make([]*domain.Report, 0, len(docs))
	for _, d := range docs {
		reports = append(reports, d.toDomain())
	}
	return reports, nil
}

// UpdateStatus atomically sets status and updated_at and returns the new document.
func (r *ReportRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReportStatus, updatedAt time.Time) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":     string(status),
		"updated_at": updatedAt.UTC().Truncate(time.Millisecond),
	}}

	var doc reportDocument
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("update report status: %w", err)
	}
	return doc.toDomain(), nil
}
