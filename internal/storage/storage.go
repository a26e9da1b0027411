// Package storage defines the Storage interface, the contract any
// document store backend must satisfy to serve the student routes.
//
// Handlers depend only on this interface, so the MongoDB and SQLite
// backends are interchangeable and tests can pass an in-memory fake.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanand-mishra/students-docstore/internal/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel errors. Backends wrap them with %w; callers match with errors.Is.
var (
	// ErrInvalidIdentifier: the id is not a 24-character hex ObjectID.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrNotFound: no record has the requested id.
	ErrNotFound = errors.New("student not found")

	// ErrStorageUnavailable: the store could not run the operation.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Storage is the database contract.
type Storage interface {
	// ListStudents returns every student in the store's natural order.
	// Returns an empty slice (not nil) if there are none.
	ListStudents(ctx context.Context) ([]types.Student, error)

	// CreateStudent inserts a new record; the store assigns the id.
	// Any id on the argument is ignored. Returns the new id in hex form.
	CreateStudent(ctx context.Context, student types.Student) (string, error)

	// GetStudentByID returns ErrNotFound both when id does not parse
	// (the error then also matches ErrInvalidIdentifier) and when
	// nothing matches.
	GetStudentByID(ctx context.Context, id string) (types.Student, error)

	// UpdateStudentByID sets name, age and subject on the matching record
	// and leaves its id alone. No match is a no-op success.
	UpdateStudentByID(ctx context.Context, id string, student types.Student) error

	// DeleteStudentByID removes the matching record. No match is a no-op
	// success.
	DeleteStudentByID(ctx context.Context, id string) error

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying client or connection pool.
	Close(ctx context.Context) error
}

// ParseID converts a path id into the store's native identifier.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return oid, nil
}

// Unavailable wraps a driver error so it matches ErrStorageUnavailable
// while keeping the driver's message and chain.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
