// Package mongodb provides a MongoDB-backed implementation of the
// storage.Storage interface using the official Go driver.
//
// A *mongo.Client is a connection pool: it is safe for concurrent use by
// every in-flight request, so one client is built at startup and shared.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanand-mishra/students-docstore/internal/config"
	"github.com/aanand-mishra/students-docstore/internal/storage"
	"github.com/aanand-mishra/students-docstore/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoDB is the concrete implementation of storage.Storage.
// It keeps the client (for Ping/Close) and the resolved collection handle.
type MongoDB struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// New connects to the server at cfg.Storage.URI, verifies the connection
// with a ping and resolves the configured database/collection pair.
func New(ctx context.Context, cfg *config.Config) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Storage.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Storage.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo.New: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.New: ping: %w", err)
	}

	coll := client.Database(cfg.Storage.Database).Collection(cfg.Storage.Collection)

	return &MongoDB{client: client, coll: coll}, nil
}

// NewFromCollection wraps an existing collection handle.
func NewFromCollection(coll *mongo.Collection) *MongoDB {
	return &MongoDB{client: coll.Database().Client(), coll: coll}
}

// ListStudents runs an unfiltered find and drains the cursor.
func (m *MongoDB) ListStudents(ctx context.Context) ([]types.Student, error) {
	cursor, err := m.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, storage.Unavailable("ListStudents: find", err)
	}
	defer cursor.Close(ctx)

	// Non-nil so an empty collection encodes as [] rather than null.
	students := make([]types.Student, 0)
	if err := cursor.All(ctx, &students); err != nil {
		return nil, storage.Unavailable("ListStudents: decode", err)
	}

	return students, nil
}

// CreateStudent inserts the student and returns the id the store assigned.
func (m *MongoDB) CreateStudent(ctx context.Context, student types.Student) (string, error) {
	// The id is never taken from the caller.
	student.ID = nil

	res, err := m.coll.InsertOne(ctx, student)
	if err != nil {
		return "", storage.Unavailable("CreateStudent: insert", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("CreateStudent: unexpected id type %T", res.InsertedID)
	}

	return oid.Hex(), nil
}

// GetStudentByID looks the student up by _id. An unparsable id is reported
// as not found.
func (m *MongoDB) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	oid, err := storage.ParseID(id)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w: %w", storage.ErrNotFound, err)
	}

	var student types.Student
	err = m.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&student)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return types.Student{}, storage.Unavailable("GetStudentByID: find", err)
	}

	return student, nil
}

// UpdateStudentByID applies a $set of the settable fields. Using $set
// rather than ReplaceOne keeps _id (and any field this service does not
// know about) untouched.
func (m *MongoDB) UpdateStudentByID(ctx context.Context, id string, student types.Student) error {
	oid, err := storage.ParseID(id)
	if err != nil {
		return fmt.Errorf("UpdateStudentByID: %w", err)
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: student.Name},
		{Key: "age", Value: student.Age},
		{Key: "subject", Value: student.Subject},
	}}}

	if _, err := m.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, update); err != nil {
		return storage.Unavailable("UpdateStudentByID: update", err)
	}

	return nil
}

// DeleteStudentByID removes the document with the given _id.
func (m *MongoDB) DeleteStudentByID(ctx context.Context, id string) error {
	oid, err := storage.ParseID(id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: %w", err)
	}

	if _, err := m.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}}); err != nil {
		return storage.Unavailable("DeleteStudentByID: delete", err)
	}

	return nil
}

// Ping checks the primary is reachable.
func (m *MongoDB) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return storage.Unavailable("Ping", err)
	}
	return nil
}

// Close disconnects the client and drains its pool.
func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
