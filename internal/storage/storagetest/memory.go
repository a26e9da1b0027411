// Package storagetest provides an in-memory storage.Storage for handler
// and router tests.
package storagetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/aanand-mishra/students-docstore/internal/storage"
	"github.com/aanand-mishra/students-docstore/internal/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory keeps students in insertion order. Set Err to make every
// operation fail with storage.ErrStorageUnavailable.
type Memory struct {
	mu    sync.Mutex
	order []primitive.ObjectID
	docs  map[primitive.ObjectID]types.Student

	Err error
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[primitive.ObjectID]types.Student)}
}

func (m *Memory) fail(op string) error {
	if m.Err == nil {
		return nil
	}
	return storage.Unavailable(op, m.Err)
}

func (m *Memory) ListStudents(_ context.Context) ([]types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("ListStudents"); err != nil {
		return nil, err
	}

	students := make([]types.Student, 0, len(m.order))
	for _, oid := range m.order {
		students = append(students, m.docs[oid])
	}
	return students, nil
}

func (m *Memory) CreateStudent(_ context.Context, student types.Student) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("CreateStudent"); err != nil {
		return "", err
	}

	oid := primitive.NewObjectID()
	student.ID = &oid
	m.docs[oid] = student
	m.order = append(m.order, oid)
	return oid.Hex(), nil
}

func (m *Memory) GetStudentByID(_ context.Context, id string) (types.Student, error) {
	oid, err := storage.ParseID(id)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w: %w", storage.ErrNotFound, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("GetStudentByID"); err != nil {
		return types.Student{}, err
	}

	student, ok := m.docs[oid]
	if !ok {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w: %s", storage.ErrNotFound, id)
	}
	return student, nil
}

func (m *Memory) UpdateStudentByID(_ context.Context, id string, student types.Student) error {
	oid, err := storage.ParseID(id)
	if err != nil {
		return fmt.Errorf("UpdateStudentByID: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("UpdateStudentByID"); err != nil {
		return err
	}

	current, ok := m.docs[oid]
	if !ok {
		return nil
	}
	current.Name = student.Name
	current.Age = student.Age
	current.Subject = student.Subject
	m.docs[oid] = current
	return nil
}

func (m *Memory) DeleteStudentByID(_ context.Context, id string) error {
	oid, err := storage.ParseID(id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("DeleteStudentByID"); err != nil {
		return err
	}

	if _, ok := m.docs[oid]; !ok {
		return nil
	}
	delete(m.docs, oid)
	for i, o := range m.order {
		if o == oid {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fail("Ping")
}

func (m *Memory) Close(_ context.Context) error { return nil }
