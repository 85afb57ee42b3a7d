package features

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/photobook/pkg/cache"
	"github.com/matzehuels/photobook/pkg/errors"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "photobook"
	DefaultMongoCollection = "photo_features"
	mongoCloseTimeout      = 5 * time.Second
)

// MongoConfig locates the feature collection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore is a Store backed by a MongoDB collection, one document per
// photo keyed by path.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to MongoDB and verifies the connection with a ping,
// retrying transient failures.
func OpenMongo(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeConfiguration, "mongo uri is empty")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFeatureStore, err, "connect to mongo")
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		return cache.Retryable(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeFeatureStore, err, "ping mongo")
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// GetMany implements Store.
func (s *MongoStore) GetMany(ctx context.Context, paths []string) (Map, error) {
	out := make(Map, len(paths))
	if len(paths) == 0 {
		return out, nil
	}
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": paths}})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFeatureStore, err, "find features")
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var f Features
		if err := cur.Decode(&f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeFeatureStore, err, "decode features")
		}
		out[f.Path] = f
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFeatureStore, err, "iterate features")
	}
	return out, nil
}

// Put implements Store.
func (s *MongoStore) Put(ctx context.Context, f Features) error {
	if err := errors.ValidatePhotoPath(f.Path); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": f.Path}, f, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeFeatureStore, err, "upsert features of %s", f.Path)
	}
	return nil
}

// Close implements Store.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoCloseTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
