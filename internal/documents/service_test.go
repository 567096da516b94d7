package documents

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"scriptorium-backend/internal/extract"
	"scriptorium-backend/internal/projects"
	"scriptorium-backend/internal/shared/storage/object"
)

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

func newService(t *testing.T) (*Service, string) {
	t.Helper()
	projectRepo := projects.NewMemoryRepo()
	project := projects.Project{
		ID:        "p-1",
		UserID:    "user-1",
		Title:     "Moby-Dick",
		CreatedAt: time.Now().UTC(),
	}
	if err := projectRepo.Create(context.Background(), project); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	svc := &Service{
		Store:    newFakeStore(),
		Repo:     NewMemoryRepo(),
		Projects: projectRepo,
	}
	return svc, project.ID
}

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var sb strings.Builder
	sb.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		sb.WriteString("<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>")
	}
	sb.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(sb.String())); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestUploadExtractsTextSynchronously(t *testing.T) {
	svc, projectID := newService(t)

	data := buildDocx(t, "Chapter one.", "Chapter two.")
	doc, err := svc.Upload(context.Background(), "user-1", projectID, "book.docx", extract.MimeDOCX, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.ExtractedText == nil {
		t.Fatal("docx upload must extract text")
	}
	if *doc.ExtractedText != "Chapter one. Chapter two." {
		t.Fatalf("extracted = %q", *doc.ExtractedText)
	}
	if doc.Position != 0 {
		t.Fatalf("first document position = %d, want 0", doc.Position)
	}
}

func TestUploadImageSkipsExtraction(t *testing.T) {
	svc, projectID := newService(t)

	doc, err := svc.Upload(context.Background(), "user-1", projectID, "cover.png", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.ExtractedText != nil {
		t.Fatal("image uploads carry no extracted text")
	}
}

func TestUploadAppendsPositions(t *testing.T) {
	svc, projectID := newService(t)

	for i := 0; i < 3; i++ {
		doc, err := svc.Upload(context.Background(), "user-1", projectID,
			fmt.Sprintf("page-%d.png", i), "image/png", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
		if doc.Position != i {
			t.Fatalf("document %d position = %d", i, doc.Position)
		}
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc, projectID := newService(t)

	_, err := svc.Upload(context.Background(), "user-1", projectID, "notes.txt", "text/plain", strings.NewReader("x"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestUploadForeignProjectForbidden(t *testing.T) {
	svc, projectID := newService(t)

	_, err := svc.Upload(context.Background(), "user-2", projectID, "cover.png", "image/png", strings.NewReader("x"))
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUploadTooLarge(t *testing.T) {
	svc, projectID := newService(t)

	big := io.LimitReader(neverEndingReader{}, MaxUploadBytes+2)
	_, err := svc.Upload(context.Background(), "user-1", projectID, "huge.png", "image/png", big)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

type neverEndingReader struct{}

func (neverEndingReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'a'
	}
	return len(p), nil
}

func TestReorderReplacesSequence(t *testing.T) {
	svc, projectID := newService(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		doc, err := svc.Upload(ctx, "user-1", projectID, fmt.Sprintf("p%d.png", i), "image/png", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		ids = append(ids, doc.ID)
	}

	reversed := []string{ids[2], ids[1], ids[0]}
	if err := svc.Reorder(ctx, "user-1", projectID, reversed); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	listed, err := svc.List(ctx, "user-1", projectID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, doc := range listed {
		if doc.ID != reversed[i] {
			t.Fatalf("position %d = %s, want %s", i, doc.ID, reversed[i])
		}
	}
}

func TestReorderRejectsBadSequences(t *testing.T) {
	svc, projectID := newService(t)
	ctx := context.Background()

	a, _ := svc.Upload(ctx, "user-1", projectID, "a.png", "image/png", strings.NewReader("x"))
	b, _ := svc.Upload(ctx, "user-1", projectID, "b.png", "image/png", strings.NewReader("x"))

	cases := [][]string{
		{a.ID},                 // missing a document
		{a.ID, b.ID, "ghost"},  // extra id
		{a.ID, a.ID},           // duplicate
		{a.ID, "not-a-doc-id"}, // unknown id
	}
	for i, seq := range cases {
		if err := svc.Reorder(ctx, "user-1", projectID, seq); !errors.Is(err, ErrBadSequence) {
			t.Fatalf("case %d: expected ErrBadSequence, got %v", i, err)
		}
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc, projectID := newService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "user-1", projectID, "a.png", "image/png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if _, err := svc.Get(ctx, "user-2", doc.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
