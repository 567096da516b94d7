package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestText_DocxJoinsParagraphs(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>It was a dark and stormy night.</w:t></w:r></w:p>
    <w:p><w:r><w:t>The rain fell in torrents.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	got, err := Text(buildDocx(t, doc), MimeDOCX)
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	want := "It was a dark and stormy night. The rain fell in torrents."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestText_DocxEmptyParagraphContributesEmptyString(t *testing.T) {
	doc := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>first</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>third</w:t></w:r></w:p>
  </w:body>
</w:document>`

	got, err := Text(buildDocx(t, doc), MimeDOCX)
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if got != "first  third" {
		t.Fatalf("got %q, want %q", got, "first  third")
	}
}

func TestText_Deterministic(t *testing.T) {
	doc := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body><w:p><w:r><w:t>stable output</w:t></w:r></w:p></w:body>
</w:document>`
	data := buildDocx(t, doc)

	first, err := Text(data, MimeDOCX)
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	second, err := Text(data, MimeDOCX)
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if first != second {
		t.Fatalf("extraction not deterministic: %q vs %q", first, second)
	}
}

func TestText_DocxMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = Text(buf.Bytes(), MimeDOCX)
	if err == nil {
		t.Fatal("expected error for zip without document.xml")
	}
	if !strings.Contains(err.Error(), "document.xml") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestText_UnsupportedType(t *testing.T) {
	_, err := Text([]byte("plain text"), "text/plain")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestText_CorruptPDF(t *testing.T) {
	if _, err := Text([]byte("not a pdf"), MimePDF); err == nil {
		t.Fatal("expected error for corrupt pdf bytes")
	}
}

func TestExtractable(t *testing.T) {
	cases := []struct {
		mime string
		want bool
	}{
		{MimePDF, true},
		{MimeDOCX, true},
		{"application/pdf; charset=binary", true},
		{"image/png", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := Extractable(tc.mime); got != tc.want {
			t.Fatalf("Extractable(%q) = %v, want %v", tc.mime, got, tc.want)
		}
	}
}
