package resume

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractPlainText(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"cv.txt", "CV.MD"} {
		text, err := Extract(name, []byte("\n  Jane Doe\nPython, Docker  \n"))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if text != "Jane Doe\nPython, Docker" {
			t.Fatalf("%s: unexpected text %q", name, text)
		}
	}
}

func TestExtractRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"cv.doc", "cv", "cv.rtf"} {
		_, err := Extract(name, []byte("data"))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("%s: expected ErrUnsupportedFormat, got %v", name, err)
		}
	}
}

func TestExtractRejectsEmptyText(t *testing.T) {
	t.Parallel()

	if _, err := Extract("cv.txt", []byte(" \n\t")); err == nil {
		t.Fatal("expected error for empty resume")
	}
}

func TestExtractBrokenBinaryFormats(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"cv.pdf", "cv.docx"} {
		_, err := Extract(name, []byte("definitely not a document"))
		if err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
		if errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("%s: format is supported, got %v", name, err)
		}
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "resume.txt")
	if err := os.WriteFile(path, []byte("Skills\nGo"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	text, err := ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Skills\nGo" {
		t.Fatalf("unexpected text %q", text)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParagraphs(t *testing.T) {
	t.Parallel()

	xml := `<w:body><w:p><w:r><w:t>Jane   Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>R&amp;D</w:t><w:tab/><w:t>Go</w:t></w:r></w:p><w:p></w:p>` +
		`<w:p><w:r><w:t>Docker</w:t></w:r></w:p></w:body>`

	got := paragraphs(xml)
	want := "Jane Doe\nR&D Go\nDocker"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
