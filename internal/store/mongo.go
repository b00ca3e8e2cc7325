package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"researchagent/internal/models"
)

// MongoArchive keeps completed research reports in MongoDB.
type MongoArchive struct {
	col *mongo.Collection
}

func NewMongoArchive(db *mongo.Database) *MongoArchive {
	return &MongoArchive{col: db.Collection("reports")}
}

func (s *MongoArchive) Insert(ctx context.Context, doc *models.Document) (string, error) {
	doc.CreatedAt = time.Now()
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("mongo insert: %w", err)
	}
	oid := res.InsertedID.(primitive.ObjectID)
	return oid.Hex(), nil
}

// List returns archived reports, newest first, without the report bodies.
func (s *MongoArchive) List(ctx context.Context) ([]models.Document, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"markdown": 0, "html": 0})
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []models.Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// GetByJobID returns the archived report for a job id.
func (s *MongoArchive) GetByJobID(ctx context.Context, jobID string) (*models.Document, error) {
	var doc models.Document
	if err := s.col.FindOne(ctx, bson.M{"job_id": jobID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}
