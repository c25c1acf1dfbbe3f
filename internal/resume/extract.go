package resume

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ErrUnsupportedFormat is returned for resume files that are not pdf, docx, txt or md.
var ErrUnsupportedFormat = errors.New("unsupported resume format")

var (
	xmlTags    = regexp.MustCompile(`<[^>]+>`)
	blankRuns  = regexp.MustCompile(`[ \t\r\f\v\x{00A0}]+`)
	emptyLines = regexp.MustCompile(`\n{2,}`)
)

// ReadFile loads a resume from disk and returns its plain text.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume %q: %w", path, err)
	}

	return Extract(filepath.Base(path), data)
}

// Extract returns the plain text of a resume document, picking the parser by file extension.
func Extract(name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = pdfText(data)
	case ".docx":
		text, err = docxText(data)
	case ".txt", ".md":
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %q (pdf, docx, txt and md are supported)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text found in %s", name)
	}
	return text, nil
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n"), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	return paragraphs(doc.Editable().GetContent()), nil
}

// paragraphs turns WordprocessingML into plain text, one line per paragraph.
func paragraphs(xml string) string {
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
	text := html.UnescapeString(xmlTags.ReplaceAllString(xml, ""))
	text = blankRuns.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}

	return strings.TrimSpace(emptyLines.ReplaceAllString(strings.Join(lines, "\n"), "\n"))
}
