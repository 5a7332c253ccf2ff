package worksheet

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"lyric_cloze_worksheet/generator"
	"lyric_cloze_worksheet/layout"
)

const (
	// ContentType is sent with the downloaded document.
	ContentType = "application/msword"

	defaultFileBase = "lyrics"
	fileSuffix      = "_cloze_worksheet.doc"
	bom             = "\ufeff"
)

var (
	nonAlnumRe = regexp.MustCompile(`[^a-zA-Z0-9]`)
	headingRe  = regexp.MustCompile(`(?s)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
)

// text/template keeps the mso conditional comments that html/template
// would strip; every value is escaped with the html func instead.
var docTmpl = template.Must(template.New("document.doc.tmpl").
	Funcs(template.FuncMap{
		"num": layout.FormatNumber,
		"inc": func(i int) int { return i + 1 },
	}).
	ParseFS(templateFS, "templates/document.doc.tmpl"))

// Doc is the input to Export.
type Doc struct {
	Song   generator.SongData
	Result generator.ClozeResult
	Style  layout.ExportStyle
}

type docView struct {
	Title        string
	Artist       string
	Label        string
	Cover        string
	HasCover     bool
	Placeholder  string
	Instructions string
	Lines        []string
	Answers      []string
	S            layout.ExportStyle
	TwoColumns   bool
}

// Export builds the .doc payload: a UTF-8 byte order mark followed by
// Word-flavoured HTML. Output depends only on the input.
func Export(d Doc) ([]byte, error) {
	if len(d.Result.Lines) == 0 {
		return nil, ErrNoResult
	}
	notes, err := instructionsHTML(d.Song.Instructions)
	if err != nil {
		return nil, fmt.Errorf("export instructions: %w", err)
	}

	v := docView{
		Title:        d.Song.Title,
		Artist:       d.Song.Artist,
		Label:        Label,
		HasCover:     hasCover(d.Song.CoverImage),
		Placeholder:  placeholder,
		Instructions: headingsForWord(notes, d.Style.BodyPt),
		Lines:        linesHTML(d.Result.Lines),
		Answers:      d.Result.AnswerKey,
		S:            d.Style,
		TwoColumns:   d.Style.Columns == 2,
	}
	if v.HasCover {
		v.Cover = d.Song.CoverImage
	}

	var buf bytes.Buffer
	buf.WriteString(bom)
	if err := docTmpl.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("export document: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportFilename derives the download name from the title.
func ExportFilename(title string) string {
	base := strings.ToLower(nonAlnumRe.ReplaceAllString(title, ""))
	if base == "" {
		base = defaultFileBase
	}
	return base + fileSuffix
}

// headingsForWord turns markdown headings into sized paragraphs; Word maps
// <hN> to its own heading styles, which ignore the worksheet scale.
func headingsForWord(html string, bodyPt float64) string {
	return headingRe.ReplaceAllStringFunc(html, func(block string) string {
		parts := headingRe.FindStringSubmatch(block)
		level := int(parts[1][0] - '0')
		size := bodyPt + float64(7-level)
		text := strings.TrimSpace(parts[2])
		return fmt.Sprintf(`<p style="font-size:%spt;font-weight:bold;margin:0 0 4pt">%s</p>`, layout.FormatNumber(size), text)
	})
}
