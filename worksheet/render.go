package worksheet

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"lyric_cloze_worksheet/generator"
	"lyric_cloze_worksheet/layout"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/worksheet.html.tmpl"))

// Page is everything the on-screen/print view needs.
type Page struct {
	Song   generator.SongData
	Result generator.ClozeResult
	Screen layout.ScreenStyle
	// ExportURL and ResetURL enable the toolbar links when set.
	ExportURL string
	ResetURL  string
}

type pageView struct {
	Title        string
	Artist       string
	Label        string
	Cover        template.URL
	HasCover     bool
	Placeholder  string
	Instructions template.HTML
	Lines        []template.HTML
	Answers      []string
	CSS          template.CSS
	ExportURL    string
	ResetURL     string
}

// Render writes the worksheet page.
func Render(w io.Writer, p Page) error {
	if len(p.Result.Lines) == 0 {
		return ErrNoResult
	}
	notes, err := instructionsHTML(p.Song.Instructions)
	if err != nil {
		return fmt.Errorf("render instructions: %w", err)
	}

	v := pageView{
		Title:        p.Song.Title,
		Artist:       p.Song.Artist,
		Label:        Label,
		HasCover:     hasCover(p.Song.CoverImage),
		Placeholder:  placeholder,
		Instructions: template.HTML(notes),
		Answers:      p.Result.AnswerKey,
		CSS:          screenCSS(p.Screen),
		ExportURL:    p.ExportURL,
		ResetURL:     p.ResetURL,
	}
	if v.HasCover {
		v.Cover = template.URL(p.Song.CoverImage)
	}
	for _, line := range linesHTML(p.Result.Lines) {
		v.Lines = append(v.Lines, template.HTML(line))
	}
	return pageTmpl.Execute(w, v)
}

// screenCSS projects the screen style onto the page stylesheet. The cover
// slot keeps the same size with or without an image.
func screenCSS(s layout.ScreenStyle) template.CSS {
	var b strings.Builder
	fmt.Fprintf(&b, ".sheet{padding:%s;}\n", s.Padding)
	fmt.Fprintf(&b, ".sheet-header{margin-bottom:%s;}\n", s.HeaderGap)
	fmt.Fprintf(&b, ".title{font-size:%s;}\n", s.TitleSize)
	fmt.Fprintf(&b, ".artist{font-size:%s;}\n", s.ArtistSize)
	fmt.Fprintf(&b, ".cover{width:%[1]s;height:%[1]s;flex:0 0 %[1]s;}\n", s.CoverSize)
	fmt.Fprintf(&b, ".lyrics{font-size:%s;line-height:%s;letter-spacing:%s;column-count:%d;column-gap:%s;", s.BodySize, s.LineHeight, s.LetterSpacing, s.Columns, s.ColumnGap)
	if s.Centered {
		b.WriteString("text-align:center;max-width:140mm;margin:0 auto;")
	}
	b.WriteString("}\n")
	return template.CSS(b.String())
}
