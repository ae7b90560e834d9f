package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/clipstudio/internal/domain/project"
	"github.com/rpggio/clipstudio/internal/repository"
)

// RegistryRepository implements project.Registry for SQLite
type RegistryRepository struct {
	db *DB
}

// NewRegistryRepository creates a new RegistryRepository
func NewRegistryRepository(db *DB) *RegistryRepository {
	return &RegistryRepository{db: db}
}

const registryColumns = `name, path, created_at`

// Get retrieves a project entry by name
func (r *RegistryRepository) Get(ctx context.Context, name string) (*project.Entry, error) {
	query := `SELECT ` + registryColumns + ` FROM projects WHERE name = ?`
	return r.getOne(ctx, query, name)
}

// GetByPath retrieves a project entry by root path
func (r *RegistryRepository) GetByPath(ctx context.Context, path string) (*project.Entry, error) {
	query := `SELECT ` + registryColumns + ` FROM projects WHERE path = ?`
	return r.getOne(ctx, query, path)
}

func (r *RegistryRepository) getOne(ctx context.Context, query string, arg string) (*project.Entry, error) {
	var entry project.Entry
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&entry.Name, &entry.Path, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &entry, nil
}

// List returns every entry in registration order
func (r *RegistryRepository) List(ctx context.Context) ([]project.Entry, error) {
	query := `SELECT ` + registryColumns + ` FROM projects ORDER BY rowid`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	entries := []project.Entry{}
	for rows.Next() {
		var entry project.Entry
		if err := rows.Scan(&entry.Name, &entry.Path, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return entries, nil
}

// Put registers entry, re-pointing an existing name to the new path. A
// path already held by another name fails with repository.ErrConflict.
func (r *RegistryRepository) Put(ctx context.Context, entry *project.Entry) error {
	if entry == nil || entry.Name == "" || entry.Path == "" {
		return repository.ErrInvalidInput
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO projects (id, name, path, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET path = excluded.path
	`
	_, err := r.db.ExecContext(ctx, query, uuid.NewString(), entry.Name, entry.Path, createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: path %s", repository.ErrConflict, entry.Path)
		}
		return fmt.Errorf("failed to register project: %w", err)
	}
	entry.CreatedAt = createdAt
	return nil
}

// Delete removes the entry with the given name
func (r *RegistryRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
