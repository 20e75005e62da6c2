package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/krishi/app/models"
)

const mongoCollection = "moderation_audits"

// MongoRecorder writes to a MongoDB collection.
type MongoRecorder struct {
	client *mongo.Client
	col    *mongo.Collection
}

// NewMongoRecorder connects to uri and uses database db. Call Close when done.
func NewMongoRecorder(ctx context.Context, uri, db string) (*MongoRecorder, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("audit: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("audit: mongo ping: %w", err)
	}

	col := client.Database(db).Collection(mongoCollection)
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "entity", Value: 1}, {Key: "entity_id", Value: 1}}},
	})

	return &MongoRecorder{client: client, col: col}, nil
}

func (r *MongoRecorder) Record(ctx context.Context, entry models.ModerationAudit) error {
	if _, err := r.col.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("audit: mongo insert: %w", err)
	}
	return nil
}

func (r *MongoRecorder) Recent(ctx context.Context, entity string, limit int) ([]models.ModerationAudit, error) {
	filter := bson.M{}
	if entity != "" {
		filter["entity"] = entity
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetLimit(int64(clampLimit(limit)))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("audit: mongo find: %w", err)
	}
	var out []models.ModerationAudit
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("audit: mongo decode: %w", err)
	}
	return out, nil
}

// Close disconnects the client.
func (r *MongoRecorder) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
