package jobpage

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	htmlTags    = regexp.MustCompile(`<[^>]*?>`)
	urls        = regexp.MustCompile(`https?://[^\s]+`)
	nonAlnum    = regexp.MustCompile(`[^a-zA-Z0-9 ]`)
	whitespaces = regexp.MustCompile(`\s+`)
)

// Elements whose content is never visible text.
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"head":     true,
}

// Block level elements that end a line of text.
var blocks = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true,
	"tr": true, "table": true, "main": true,
}

// Text returns the visible text of an HTML document, one block per line.
// Malformed markup is tolerated the way browsers tolerate it.
func Text(document string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(document))

	var (
		b    strings.Builder
		skip int
	)
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return tidyLines(b.String())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if skipped[tag] {
				skip++
			}
			if blocks[tag] {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if skipped[tag] && skip > 0 {
				skip--
			}
			if blocks[tag] {
				b.WriteByte('\n')
			}
		case html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			if blocks[string(name)] {
				b.WriteByte('\n')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(tokenizer.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func tidyLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Clean reduces text to ASCII letters, digits and single spaces. Tags and
// URLs are removed first. Whitespace becomes a space before punctuation is
// stripped so that words on separate lines do not merge.
func Clean(text string) string {
	text = htmlTags.ReplaceAllString(text, "")
	text = urls.ReplaceAllString(text, "")
	text = whitespaces.ReplaceAllString(text, " ")
	text = nonAlnum.ReplaceAllString(text, "")
	text = whitespaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
