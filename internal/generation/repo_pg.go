package generation

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts an index row for a generated document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO generated_documents (
    id,
    step_key,
    step_slug,
    employee_key,
    file_name,
    storage_key,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	// employee_key is NOT NULL; an absent employee is stored as the empty string.
	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.StepKey,
		doc.StepSlug,
		doc.EmployeeKey,
		doc.FileName,
		doc.StorageKey,
		doc.CreatedAt,
	)
	return err
}

// LatestByStep returns the most recent document for a step slug.
func (r *PGRepo) LatestByStep(ctx context.Context, stepSlug string) (Document, error) {
	const query = `
SELECT id, step_key, step_slug, employee_key, file_name, storage_key, created_at
FROM generated_documents
WHERE step_slug = $1
ORDER BY created_at DESC
LIMIT 1`

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, stepSlug))
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNoDocument
	}
	return doc, err
}

// Recent returns up to limit documents, newest first.
func (r *PGRepo) Recent(ctx context.Context, limit int) ([]Document, error) {
	const query = `
SELECT id, step_key, step_slug, employee_key, file_name, storage_key, created_at
FROM generated_documents
ORDER BY created_at DESC
LIMIT $1`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var employeeKey sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.StepKey,
		&doc.StepSlug,
		&employeeKey,
		&doc.FileName,
		&doc.StorageKey,
		&doc.CreatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	doc.EmployeeKey = employeeKey.String
	return doc, nil
}
