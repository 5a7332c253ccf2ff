package worksheet

import (
	"bytes"

	"lyric_cloze_worksheet/generator"
	"lyric_cloze_worksheet/layout"
)

// Sheet binds content to its resolved styles so the page and the document
// always come from the same tier.
type Sheet struct {
	Song   generator.SongData
	Result generator.ClozeResult
	Styles layout.Styles
}

// Build classifies the result and resolves its styles.
func Build(r *layout.Resolver, song generator.SongData, result generator.ClozeResult) (Sheet, error) {
	if len(result.Lines) == 0 {
		return Sheet{}, ErrNoResult
	}
	styles, err := r.ResolveLines(result.Lines)
	if err != nil {
		return Sheet{}, err
	}
	return Sheet{Song: song, Result: result, Styles: styles}, nil
}

// HTML renders the printable page. Empty URLs hide the matching controls.
func (s Sheet) HTML(exportURL, resetURL string) ([]byte, error) {
	var buf bytes.Buffer
	err := Render(&buf, Page{
		Song:      s.Song,
		Result:    s.Result,
		Screen:    s.Styles.Screen,
		ExportURL: exportURL,
		ResetURL:  resetURL,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Document builds a fresh export on every call.
func (s Sheet) Document() ([]byte, error) {
	return Export(Doc{Song: s.Song, Result: s.Result, Style: s.Styles.Export})
}

func (s Sheet) Filename() string {
	return ExportFilename(s.Song.Title)
}
