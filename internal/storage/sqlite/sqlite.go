// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// It keeps the whole store in one file with no server process, which is
// handy for local runs without MongoDB. Identifiers are still ObjectIDs,
// generated here on insert the way the Mongo driver would, so clients see
// exactly the same ids and error behaviour with either backend.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/students-docstore/internal/storage"
	"github.com/aanand-mishra/students-docstore/internal/types"
	"go.mongodb.org/mongo-driver/bson/primitive"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at path, creates the students table if it
// does not already exist, and returns a ready-to-use *SQLite.
func New(path string) (*SQLite, error) {
	// sql.Open does NOT open a real connection yet; it only validates the
	// driver name and DSN.
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite serialises writers anyway; one connection avoids
	// "database is locked" errors under concurrent requests.
	db.SetMaxOpenConns(1)

	// Schema:
	//   id      : 24-char hex ObjectID, assigned on insert
	//   name    : student's full name
	//   age     : 0..255
	//   subject : subject the student is enrolled in
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id      TEXT    PRIMARY KEY,
			name    TEXT    NOT NULL,
			age     INTEGER NOT NULL CHECK (age BETWEEN 0 AND 255),
			subject TEXT    NOT NULL
		)
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// CreateStudent inserts a new row with a freshly generated ObjectID.
//
// Values are bound through ? placeholders, never concatenated into SQL.
func (s *SQLite) CreateStudent(ctx context.Context, student types.Student) (string, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO students (id, name, age, subject) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return "", storage.Unavailable("CreateStudent: prepare", err)
	}
	defer stmt.Close()

	id := primitive.NewObjectID().Hex()

	if _, err := stmt.ExecContext(ctx, id, student.Name, student.Age, student.Subject); err != nil {
		return "", storage.Unavailable("CreateStudent: exec", err)
	}

	return id, nil
}

// GetStudentByID fetches exactly one row matched by id.
// An id that is not a valid ObjectID can never match, so it is reported
// as not found without touching the database.
func (s *SQLite) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	oid, err := storage.ParseID(id)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w: %w", storage.ErrNotFound, err)
	}

	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, name, age, subject FROM students WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Student{}, storage.Unavailable("GetStudentByID: prepare", err)
	}
	defer stmt.Close()

	student, err := scanStudent(stmt.QueryRowContext(ctx, oid.Hex()))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return types.Student{}, storage.Unavailable("GetStudentByID: scan", err)
	}

	return student, nil
}

// ListStudents returns all rows in insertion order (rowid).
func (s *SQLite) ListStudents(ctx context.Context) ([]types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, name, age, subject FROM students ORDER BY rowid",
	)
	if err != nil {
		return nil, storage.Unavailable("ListStudents: prepare", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, storage.Unavailable("ListStudents: query", err)
	}
	defer rows.Close()

	// [] instead of null in JSON.
	students := make([]types.Student, 0)

	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, storage.Unavailable("ListStudents: scan row", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, storage.Unavailable("ListStudents: rows iteration", err)
	}

	return students, nil
}

// UpdateStudentByID sets the three data columns; id is never written.
func (s *SQLite) UpdateStudentByID(ctx context.Context, id string, student types.Student) error {
	oid, err := storage.ParseID(id)
	if err != nil {
		return fmt.Errorf("UpdateStudentByID: %w", err)
	}

	stmt, err := s.Db.PrepareContext(ctx,
		"UPDATE students SET name = ?, age = ?, subject = ? WHERE id = ?",
	)
	if err != nil {
		return storage.Unavailable("UpdateStudentByID: prepare", err)
	}
	defer stmt.Close()

	// Argument order matches the ? order: name, age, subject, id
	if _, err := stmt.ExecContext(ctx, student.Name, student.Age, student.Subject, oid.Hex()); err != nil {
		return storage.Unavailable("UpdateStudentByID: exec", err)
	}

	return nil
}

// DeleteStudentByID removes a row by id.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id string) error {
	oid, err := storage.ParseID(id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: %w", err)
	}

	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM students WHERE id = ?")
	if err != nil {
		return storage.Unavailable("DeleteStudentByID: prepare", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, oid.Hex()); err != nil {
		return storage.Unavailable("DeleteStudentByID: exec", err)
	}

	return nil
}

// Ping checks the database file is usable.
func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.Db.PingContext(ctx); err != nil {
		return storage.Unavailable("Ping", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *SQLite) Close(_ context.Context) error {
	return s.Db.Close()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (types.Student, error) {
	var (
		student types.Student
		hexID   string
	)

	// Column order must match the SELECT list: id, name, age, subject
	if err := row.Scan(&hexID, &student.Name, &student.Age, &student.Subject); err != nil {
		return types.Student{}, err
	}

	oid, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return types.Student{}, fmt.Errorf("stored id %q: %w", hexID, err)
	}
	student.ID = &oid

	return student, nil
}
