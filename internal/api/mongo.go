package api

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mkersting/slidegrid/pkg/errors"
)

// MongoStore persists jobs in a MongoDB collection, so job state and
// rendered outputs survive server restarts.
type MongoStore struct {
	client *mongo.Client
	jobs   *mongo.Collection
}

// NewMongoStore connects to the given MongoDB URI and verifies the
// connection with a ping. Jobs live in the "jobs" collection of the
// "slidegrid" database.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		jobs:   client.Database("slidegrid").Collection("jobs"),
	}, nil
}

func (s *MongoStore) Put(ctx context.Context, job *Job) error {
	_, err := s.jobs.ReplaceOne(ctx,
		bson.M{"_id": job.ID},
		job,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "store job %q", job.ID)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Job, error) {
	var job Job
	err := s.jobs.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeJobNotFound, "job %q not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load job %q", id)
	}
	return &job, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
