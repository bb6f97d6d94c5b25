package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	doc := Document{
		ID:          "doc-1",
		StepKey:     "handbook-ack",
		StepSlug:    "handbook-ack",
		EmployeeKey: "jane_doe",
		FileName:    "2026-08-30T12-00-00-000Z_jane-doe_handbook-ack.pdf",
		StorageKey:  "2026-08-30T12-00-00-000Z_jane-doe_handbook-ack.pdf",
		CreatedAt:   time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO generated_documents").
		WithArgs(
			doc.ID,
			doc.StepKey,
			doc.StepSlug,
			doc.EmployeeKey,
			doc.FileName,
			doc.StorageKey,
			doc.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateWithoutEmployee(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	doc := Document{
		ID:         "doc-3",
		StepKey:    "it-security-policy",
		StepSlug:   "it-security-policy",
		FileName:   "2026-08-30T12-00-00-000Z_it-security-policy.pdf",
		StorageKey: "2026-08-30T12-00-00-000Z_it-security-policy.pdf",
		CreatedAt:  time.Now().UTC(),
	}

	// The column is NOT NULL, so the empty string must go over the wire as-is.
	mock.ExpectExec("INSERT INTO generated_documents").
		WithArgs(
			doc.ID,
			doc.StepKey,
			doc.StepSlug,
			"",
			doc.FileName,
			doc.StorageKey,
			doc.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoLatestByStep(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "step_key", "step_slug", "employee_key", "file_name", "storage_key", "created_at"}).
		AddRow("doc-2", "handbook-ack", "handbook-ack", nil, "latest.pdf", "latest.pdf", created)
	mock.ExpectQuery("SELECT (.+) FROM generated_documents").
		WithArgs("handbook-ack").
		WillReturnRows(rows)

	doc, err := repo.LatestByStep(context.Background(), "handbook-ack")
	if err != nil {
		t.Fatalf("LatestByStep: %v", err)
	}
	if doc.FileName != "latest.pdf" || doc.EmployeeKey != "" {
		t.Fatalf("doc = %+v", doc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoLatestByStepNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM generated_documents").
		WithArgs("never").
		WillReturnRows(sqlmock.NewRows([]string{"id", "step_key", "step_slug", "employee_key", "file_name", "storage_key", "created_at"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.LatestByStep(context.Background(), "never"); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("err = %v", err)
	}
}

func TestPGRepoRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	created := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "step_key", "step_slug", "employee_key", "file_name", "storage_key", "created_at"}).
		AddRow("b", "handbook-ack", "handbook-ack", "jane_doe", "b.pdf", "b.pdf", created).
		AddRow("a", "it-security-policy", "it-security-policy", nil, "a.pdf", "a.pdf", created.Add(-time.Minute))
	mock.ExpectQuery("SELECT (.+) FROM generated_documents").
		WithArgs(10).
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	docs, err := repo.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "b" || docs[1].EmployeeKey != "" {
		t.Fatalf("docs = %+v", docs)
	}
}
