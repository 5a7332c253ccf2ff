// Package worksheet renders a cloze result as a printable page and as a
// word-processor document.
package worksheet

import (
	"errors"
	"html"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"lyric_cloze_worksheet/generator"
)

// ErrNoResult is returned when there is nothing to render yet.
var ErrNoResult = errors.New("worksheet: no cloze result")

// Label is the fixed badge printed in every header.
const Label = "Listening Cloze Exercise"

const (
	nbsp        = "&nbsp;"
	placeholder = "♪"
	blankRule   = "__________"
)

// lineHTML escapes one lyric line and numbers its blanks starting at *next.
// An empty line becomes a non-breaking space so it keeps its height.
func lineHTML(line string, next *int) string {
	if strings.TrimSpace(line) == "" {
		return nbsp
	}
	var b strings.Builder
	last := 0
	for _, loc := range generator.BlankRe.FindAllStringIndex(line, -1) {
		b.WriteString(html.EscapeString(line[last:loc[0]]))
		*next++
		b.WriteString(`<span class="blank"><sup>`)
		b.WriteString(strconv.Itoa(*next))
		b.WriteString("</sup>" + blankRule + "</span>")
		last = loc[1]
	}
	b.WriteString(html.EscapeString(line[last:]))
	return b.String()
}

func linesHTML(lines []string) []string {
	out := make([]string, len(lines))
	n := 0
	for i, line := range lines {
		out[i] = lineHTML(line, &n)
	}
	return out
}

// instructionsHTML converts the optional markdown note. goldmark drops raw
// HTML unless WithUnsafe is set, so user input can't inject markup.
func instructionsHTML(md string) (string, error) {
	md = strings.TrimSpace(md)
	if md == "" {
		return "", nil
	}
	var b strings.Builder
	if err := goldmark.Convert([]byte(md), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func hasCover(dataURL string) bool {
	return strings.HasPrefix(dataURL, "data:image/")
}
