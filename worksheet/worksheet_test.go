package worksheet

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"lyric_cloze_worksheet/generator"
	"lyric_cloze_worksheet/layout"
)

const tinyPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func styles(t *testing.T, lines []string) layout.Styles {
	t.Helper()
	s, err := layout.NewResolver(true, nil).ResolveLines(lines)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func lyricLines(n, width int) []string {
	lines := make([]string, n)
	for i := range lines {
		base := fmt.Sprintf("line %d _____ ", i+1)
		lines[i] = base + strings.Repeat("o", width-len(base))
	}
	return lines
}

func parseHTML(t *testing.T, b []byte) *html.Node {
	t.Helper()
	doc, err := html.Parse(bytes.NewReader(bytes.TrimPrefix(b, []byte(bom))))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	return doc
}

// findAll collects elements with the given tag and class ("" matches any).
func findAll(n *html.Node, tag, class string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag && (class == "" || hasClass(n, class)) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func TestLineHTML(t *testing.T) {
	n := 0
	got := lineHTML("I <3 _____ and _____!", &n)
	want := `I &lt;3 <span class="blank"><sup>1</sup>__________</span> and <span class="blank"><sup>2</sup>__________</span>!`
	if got != want {
		t.Errorf("lineHTML() = %q\nwant %q", got, want)
	}
	if n != 2 {
		t.Errorf("counter = %d, want 2", n)
	}
	if got := lineHTML("  ", &n); got != nbsp {
		t.Errorf("empty line = %q, want nbsp", got)
	}
}

func TestRenderPage(t *testing.T) {
	lines := []string{"first _____ line", "", "second _____"}
	var buf bytes.Buffer
	err := Render(&buf, Page{
		Song:      generator.SongData{Title: "Night & Day", Artist: "Someone"},
		Result:    generator.ClozeResult{Lines: lines, AnswerKey: []string{"alpha", "beta"}},
		Screen:    styles(t, lines).Screen,
		ExportURL: "/worksheets/abc/export",
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	doc := parseHTML(t, buf.Bytes())

	if got := findAll(doc, "p", "line"); len(got) != 3 {
		t.Fatalf("lines = %d, want 3", len(got))
	} else if text(got[1]) != "\u00a0" {
		t.Errorf("empty line text = %q, want nbsp", text(got[1]))
	}
	if got := findAll(doc, "span", "badge"); len(got) != 1 || text(got[0]) != Label {
		t.Errorf("badge missing")
	}
	if got := findAll(doc, "h1", "title"); text(got[0]) != "Night & Day" {
		t.Errorf("title = %q", text(got[0]))
	}
	covers := findAll(doc, "div", "cover")
	if len(covers) != 1 || len(findAll(covers[0], "img", "")) != 0 || !strings.Contains(text(covers[0]), placeholder) {
		t.Errorf("cover slot should hold the placeholder glyph")
	}
	if got := findAll(doc, "li", ""); len(got) != 2 || text(got[1]) != "beta" {
		t.Errorf("answer key = %d items", len(got))
	}
	sups := findAll(doc, "sup", "")
	if len(sups) != 2 || text(sups[1]) != "2" {
		t.Errorf("blank numbering wrong")
	}
	out := buf.String()
	if !strings.Contains(out, "column-count:1") || !strings.Contains(out, "text-align:center") {
		t.Errorf("short sheet should be one centered column")
	}
	if !strings.Contains(out, `href="/worksheets/abc/export"`) {
		t.Errorf("export link missing")
	}
}

func TestRenderCoverAndColumns(t *testing.T) {
	lines := lyricLines(80, 40)
	s := styles(t, lines)
	var buf bytes.Buffer
	err := Render(&buf, Page{
		Song:   generator.SongData{Title: "T", CoverImage: tinyPNG},
		Result: generator.ClozeResult{Lines: lines, AnswerKey: []string{"a"}},
		Screen: s.Screen,
	})
	if err != nil {
		t.Fatal(err)
	}
	doc := parseHTML(t, buf.Bytes())
	imgs := findAll(doc, "img", "")
	if len(imgs) != 1 || attr(imgs[0], "src") != tinyPNG {
		t.Fatalf("cover image not embedded")
	}
	out := buf.String()
	if !strings.Contains(out, "column-count:2") || !strings.Contains(out, "font-size:10pt") {
		t.Errorf("dense sheet should use two columns and 10pt text")
	}
	// slot size comes from the profile, image or not
	if !strings.Contains(out, ".cover{width:72px;height:72px;") {
		t.Errorf("cover slot size missing")
	}
	if strings.Contains(out, "Export to Word") {
		t.Errorf("export link shown without URL")
	}
}

func TestRenderInstructions(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Page{
		Song:   generator.SongData{Instructions: "Listen **twice**.\n\n<script>alert(1)</script>"},
		Result: generator.ClozeResult{Lines: []string{"x"}},
		Screen: styles(t, []string{"x"}).Screen,
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "<strong>twice</strong>") {
		t.Errorf("markdown not rendered")
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("raw html passed through")
	}
}

func TestRenderNoResult(t *testing.T) {
	if err := Render(&bytes.Buffer{}, Page{}); err != ErrNoResult {
		t.Errorf("Render() error = %v, want ErrNoResult", err)
	}
}
