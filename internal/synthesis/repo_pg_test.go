package synthesis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	outputKey := "tts-output/abc.mp3"
	event := Event{
		ID:          "e-1",
		UserID:      "user-1",
		InitiatedAt: time.Now().UTC(),
		Successful:  true,
		OutputKey:   &outputKey,
		VoiceUsed:   "v-42",
		AudioLength: 9000,
	}

	mock.ExpectExec("INSERT INTO synthesis_events").
		WithArgs(
			event.ID,
			event.UserID,
			event.InitiatedAt,
			event.Successful,
			nil,
			outputKey,
			event.VoiceUsed,
			event.AudioLength,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetEventByOutputKeyNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT id, user_id, initiated_at, successful").
		WithArgs("user-1", "tts-output/missing.mp3").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "initiated_at", "successful", "source_document_id", "output_key", "voice_used", "audio_length"}))

	_, err = repo.GetEventByOutputKey(context.Background(), "user-1", "tts-output/missing.mp3")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListEventsByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id, user_id, initiated_at, successful").
		WithArgs("user-1", 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "initiated_at", "successful", "source_document_id", "output_key", "voice_used", "audio_length"}).
			AddRow("e-2", "user-1", now, false, nil, nil, "v-42", int64(0)).
			AddRow("e-1", "user-1", now.Add(-time.Minute), true, nil, "tts-output/a.mp3", "v-42", int64(9000)))

	events, err := repo.ListEventsByUser(context.Background(), "user-1", 50)
	if err != nil {
		t.Fatalf("ListEventsByUser: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Successful || !events[1].Successful {
		t.Fatalf("unexpected ordering or flags: %+v", events)
	}
	if events[1].OutputKey == nil || *events[1].OutputKey != "tts-output/a.mp3" {
		t.Fatalf("output key = %v", events[1].OutputKey)
	}
}
