package repository

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"time"

	"record_access_service/internal/metrics"
	"record_access_service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// RecordAccessRepository persists the per-record access documents and the
// audit trail. It is the storage side of the access core's RecordStore
// collaborator.
type RecordAccessRepository struct {
	collection *mongo.Collection
	audit      *mongo.Collection
}

func NewRecordAccessRepository(db *mongo.Database) *RecordAccessRepository {
	return &RecordAccessRepository{
		collection: db.Collection("RecordAccess"),
		audit:      db.Collection("AuditLog"),
	}
}

func (r *RecordAccessRepository) Load(ctx context.Context, recordID string) (*models.RecordAccess, error) {
	var doc models.RecordAccess
	err := r.collection.FindOne(ctx, bson.M{"recordId": recordID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("record %s has no access document", recordID)
		}
		metrics.StorageFailures.WithLabelValues("load").Inc()
		return nil, err
	}
	return &doc, nil
}

// Save upserts the access document and appends the audit comment to the
// record's audit trail. A failed audit write is logged but does not fail the
// save.
func (r *RecordAccessRepository) Save(ctx context.Context, doc *models.RecordAccess, auditComment string) error {
	currentTime := int(time.Now().Unix())
	if doc.CreatedAt == 0 {
		doc.CreatedAt = currentTime
	}
	doc.UpdatedAt = currentTime

	filter := bson.M{"recordId": doc.RecordID}
	opts := options.UpdateOne().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": doc}, opts)
	if err != nil {
		metrics.StorageFailures.WithLabelValues("save").Inc()
		return fmt.Errorf("failed to save access document for record %s: %w", doc.RecordID, err)
	}

	entry := &models.AuditLog{
		ID:        bson.NewObjectID(),
		RecordID:  doc.RecordID,
		Event:     "access.updated",
		Comment:   auditComment,
		Timestamp: currentTime,
	}
	if _, err := r.audit.InsertOne(ctx, entry); err != nil {
		log.Printf("Error writing audit entry for record %s: %s", doc.RecordID, err)
	}

	return nil
}

// Create seeds a fresh access document for a newly created record. Returns
// an error when a document for the record already exists.
func (r *RecordAccessRepository) Create(ctx context.Context, recordID, owner, visibility string) (*models.RecordAccess, error) {
	existing, err := r.Load(ctx, recordID)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("record %s already has an access document", recordID)
	}

	currentTime := int(time.Now().Unix())
	doc := &models.RecordAccess{
		ID:            bson.NewObjectID(),
		RecordID:      recordID,
		Owner:         owner,
		Visibility:    visibility,
		Collaborators: []models.CollaboratorEntry{},
		CreatedAt:     currentTime,
		UpdatedAt:     currentTime,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		metrics.StorageFailures.WithLabelValues("create").Inc()
		return nil, fmt.Errorf("failed to create access document for record %s: %w", recordID, err)
	}
	return doc, nil
}

// Stream lazily walks every access document, in recordId order. Decode and
// cursor errors end the sequence after being logged; the consumer sees a
// shorter stream, never an error.
func (r *RecordAccessRepository) Stream(ctx context.Context) iter.Seq[*models.RecordAccess] {
	return func(yield func(*models.RecordAccess) bool) {
		opts := options.Find().SetSort(bson.M{"recordId": 1})
		cursor, err := r.collection.Find(ctx, bson.M{}, opts)
		if err != nil {
			metrics.StorageFailures.WithLabelValues("stream").Inc()
			log.Printf("Error streaming access documents: %s", err)
			return
		}
		defer cursor.Close(ctx)

		for cursor.Next(ctx) {
			var doc models.RecordAccess
			if err := cursor.Decode(&doc); err != nil {
				log.Printf("Error decoding access document: %s", err)
				return
			}
			if !yield(&doc) {
				return
			}
		}
		if err := cursor.Err(); err != nil {
			log.Printf("Error iterating access documents: %s", err)
		}
	}
}

// FindByVisibility pages through the records stored under the given
// visibility names.
func (r *RecordAccessRepository) FindByVisibility(ctx context.Context, visibilities []string, page, limit int) ([]*models.RecordAccess, error) {
	opts := options.Find()
	opts.SetSort(bson.M{"recordId": 1})
	if page > 0 && limit > 0 {
		opts.SetSkip(int64((page - 1) * limit))
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"visibility": bson.M{"$in": visibilities}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*models.RecordAccess
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// AuditTrail returns the audit entries of one record, newest first.
func (r *RecordAccessRepository) AuditTrail(ctx context.Context, recordID string, page, limit int) ([]*models.AuditLog, error) {
	opts := options.Find()
	opts.SetSort(bson.M{"timestamp": -1})
	if page > 0 && limit > 0 {
		opts.SetSkip(int64((page - 1) * limit))
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.audit.Find(ctx, bson.M{"recordId": recordID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*models.AuditLog
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
