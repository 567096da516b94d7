package voices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateIdentity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	identity := Identity{
		ID:        "v-42",
		UserID:    "user-1",
		Label:     "Narrator",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO voice_identities").
		WithArgs(identity.ID, identity.UserID, identity.Label, identity.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.CreateIdentity(context.Background(), identity); err != nil {
		t.Fatalf("CreateIdentity: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetIdentityByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT id, user_id, label, created_at").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "label", "created_at"}))

	_, err = repo.GetIdentityByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListSamplesEligibleFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id, user_id, storage_key, mime_type, size_bytes, eligible, created_at").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "storage_key", "mime_type", "size_bytes", "eligible", "created_at"}).
			AddRow("s1", "user-1", "key-1", "audio/mpeg", int64(100), true, now))

	samples, err := repo.ListSamplesByUser(context.Background(), "user-1", true)
	if err != nil {
		t.Fatalf("ListSamplesByUser: %v", err)
	}
	if len(samples) != 1 || samples[0].ID != "s1" {
		t.Fatalf("samples = %+v", samples)
	}
}

func TestPGRepoDeleteIdentityNotOwned(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("UPDATE voice_identities SET deleted_at").
		WithArgs("v-42", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteIdentity(context.Background(), "user-2", "v-42"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
