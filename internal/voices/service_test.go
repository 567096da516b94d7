package voices

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"scriptorium-backend/internal/shared/storage/object"
	"scriptorium-backend/internal/tts"
)

type stubProvider struct {
	voiceID    string
	err        error
	calls      int
	lastLabel  string
	lastInputs []tts.Sample
}

func (p *stubProvider) CloneVoice(ctx context.Context, label string, samples []tts.Sample) (string, error) {
	p.calls++
	p.lastLabel = label
	p.lastInputs = samples
	if p.err != nil {
		return "", p.err
	}
	return p.voiceID, nil
}

func (p *stubProvider) Synthesize(ctx context.Context, text, voiceID string, settings tts.Settings) ([]byte, error) {
	return nil, errors.New("not implemented")
}

type fakeStore struct {
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Save(ctx context.Context, userID, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := userID + "/" + fileName
	s.objects[key] = data
	return key, int64(len(data)), "application/octet-stream", nil
}

func (s *fakeStore) SaveWithKey(ctx context.Context, storageKey, contentType string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.objects[storageKey] = data
	return int64(len(data)), nil
}

func (s *fakeStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	data, ok := s.objects[storageKey]
	if !ok {
		return nil, fmt.Errorf("%w: key=%s", object.ErrNotFound, storageKey)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func seedSample(t *testing.T, repo Repo, store *fakeStore, userID, sampleID string, eligible bool) Sample {
	t.Helper()
	key := userID + "/" + sampleID + ".mp3"
	store.objects[key] = []byte("audio-" + sampleID)
	sample := Sample{
		ID:         sampleID,
		UserID:     userID,
		StorageKey: key,
		MimeType:   "audio/mpeg",
		SizeBytes:  int64(len("audio-" + sampleID)),
		Eligible:   eligible,
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.CreateSample(context.Background(), sample); err != nil {
		t.Fatalf("seed sample: %v", err)
	}
	return sample
}

func TestCloneCreatesIdentity(t *testing.T) {
	repo := NewMemoryRepo()
	store := newFakeStore()
	provider := &stubProvider{voiceID: "v-42"}
	svc := &Service{Repo: repo, Store: store, Provider: provider}

	seedSample(t, repo, store, "user-1", "s1", true)
	seedSample(t, repo, store, "user-1", "s2", true)

	identity, err := svc.Clone(context.Background(), "user-1", "Narrator", []string{"s1", "s2"})
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if identity.ID != "v-42" {
		t.Fatalf("identity id = %q, want v-42", identity.ID)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want exactly 1", provider.calls)
	}
	if len(provider.lastInputs) != 2 {
		t.Fatalf("provider inputs = %d, want 2", len(provider.lastInputs))
	}
	if provider.lastLabel != "Narrator" {
		t.Fatalf("label = %q", provider.lastLabel)
	}

	stored, err := repo.GetIdentityByID(context.Background(), "v-42")
	if err != nil {
		t.Fatalf("identity not persisted: %v", err)
	}
	if stored.UserID != "user-1" || stored.Label != "Narrator" {
		t.Fatalf("persisted identity = %+v", stored)
	}
}

func TestCloneFallsBackToEligibleSamples(t *testing.T) {
	repo := NewMemoryRepo()
	store := newFakeStore()
	provider := &stubProvider{voiceID: "v-7"}
	svc := &Service{Repo: repo, Store: store, Provider: provider}

	seedSample(t, repo, store, "user-1", "eligible-1", true)
	seedSample(t, repo, store, "user-1", "ineligible", false)

	if _, err := svc.Clone(context.Background(), "user-1", "Narrator", nil); err != nil {
		t.Fatalf("clone: %v", err)
	}
	if len(provider.lastInputs) != 1 {
		t.Fatalf("provider inputs = %d, want only the eligible sample", len(provider.lastInputs))
	}
}

func TestCloneNoSamplesFailsBeforeProvider(t *testing.T) {
	repo := NewMemoryRepo()
	provider := &stubProvider{voiceID: "v-1"}
	svc := &Service{Repo: repo, Store: newFakeStore(), Provider: provider}

	_, err := svc.Clone(context.Background(), "user-1", "Narrator", nil)
	if !errors.Is(err, ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatal("provider must not be called when there are no samples")
	}
}

func TestCloneForeignSampleIsForbidden(t *testing.T) {
	repo := NewMemoryRepo()
	store := newFakeStore()
	provider := &stubProvider{voiceID: "v-1"}
	svc := &Service{Repo: repo, Store: store, Provider: provider}

	seedSample(t, repo, store, "user-2", "theirs", true)

	_, err := svc.Clone(context.Background(), "user-1", "Narrator", []string{"theirs"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatal("provider must not be called for foreign samples")
	}
}

func TestCloneMissingSampleBytesIsAllOrNothing(t *testing.T) {
	repo := NewMemoryRepo()
	store := newFakeStore()
	provider := &stubProvider{voiceID: "v-1"}
	svc := &Service{Repo: repo, Store: store, Provider: provider}

	seedSample(t, repo, store, "user-1", "ok", true)
	broken := seedSample(t, repo, store, "user-1", "broken", true)
	delete(store.objects, broken.StorageKey)

	_, err := svc.Clone(context.Background(), "user-1", "Narrator", []string{"ok", "broken"})
	if !errors.Is(err, ErrSampleUnavailable) {
		t.Fatalf("expected ErrSampleUnavailable, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatal("provider must not be called when any sample is unavailable")
	}
}

type persistFailRepo struct {
	Repo
}

func (r persistFailRepo) CreateIdentity(ctx context.Context, identity Identity) error {
	return errors.New("insert failed")
}

func TestClonePersistFailureCarriesVoiceID(t *testing.T) {
	repo := NewMemoryRepo()
	store := newFakeStore()
	provider := &stubProvider{voiceID: "v-orphan"}
	svc := &Service{Repo: persistFailRepo{repo}, Store: store, Provider: provider}

	seedSample(t, repo, store, "user-1", "s1", true)

	_, err := svc.Clone(context.Background(), "user-1", "Narrator", []string{"s1"})

	var persistErr *PersistFailedError
	if !errors.As(err, &persistErr) {
		t.Fatalf("expected *PersistFailedError, got %v", err)
	}
	if persistErr.VoiceID != "v-orphan" {
		t.Fatalf("orphan voice id = %q, want v-orphan", persistErr.VoiceID)
	}
}

func TestCloneProviderErrorNothingPersisted(t *testing.T) {
	repo := NewMemoryRepo()
	store := newFakeStore()
	provider := &stubProvider{err: &tts.ProviderError{Status: 400, Message: "bad samples"}}
	svc := &Service{Repo: repo, Store: store, Provider: provider}

	seedSample(t, repo, store, "user-1", "s1", true)

	_, err := svc.Clone(context.Background(), "user-1", "Narrator", []string{"s1"})
	var provErr *tts.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected provider error, got %v", err)
	}

	identities, err := repo.ListIdentitiesByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list identities: %v", err)
	}
	if len(identities) != 0 {
		t.Fatalf("expected no identities after provider failure, got %d", len(identities))
	}
}

func TestCloneDedupesSampleIDs(t *testing.T) {
	repo := NewMemoryRepo()
	store := newFakeStore()
	provider := &stubProvider{voiceID: "v-1"}
	svc := &Service{Repo: repo, Store: store, Provider: provider}

	seedSample(t, repo, store, "user-1", "s1", true)

	if _, err := svc.Clone(context.Background(), "user-1", "Narrator", []string{"s1", "s1", "s1"}); err != nil {
		t.Fatalf("clone: %v", err)
	}
	if len(provider.lastInputs) != 1 {
		t.Fatalf("provider inputs = %d, want deduped to 1", len(provider.lastInputs))
	}
}

func TestUploadSampleValidation(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo(), Store: newFakeStore()}

	_, err := svc.UploadSample(context.Background(), "user-1", "notes.txt", "text/plain", strings.NewReader("x"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}

	_, err = svc.UploadSample(context.Background(), "user-1", "", "audio/mpeg", strings.NewReader("x"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUploadSampleStoresAndRecords(t *testing.T) {
	repo := NewMemoryRepo()
	store := newFakeStore()
	svc := &Service{Repo: repo, Store: store}

	sample, err := svc.UploadSample(context.Background(), "user-1", "voice.mp3", "audio/mpeg", strings.NewReader("sound"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !sample.Eligible {
		t.Fatal("new samples start eligible")
	}
	if sample.SizeBytes != int64(len("sound")) {
		t.Fatalf("size = %d", sample.SizeBytes)
	}

	listed, err := svc.ListSamples(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != sample.ID {
		t.Fatalf("listed = %+v", listed)
	}
}
