package publisher

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lyric_cloze_worksheet/generator"
	"lyric_cloze_worksheet/layout"
)

const lyrics = `Walking down the empty avenue
Counting every streetlight shining through
Nobody knows the secrets that we keep
Whisper softly baby, fall asleep
Morning comes and carries us away
Holding on to everything we say
Dancing slowly, golden evening light
Turning shadows into something bright`

func newTestPublisher(t *testing.T) *Publisher {
	t.Helper()
	logger := log.New(&bytes.Buffer{}, "", 0)
	agent, err := generator.NewAgent(generator.MockLLM{}, false, logger)
	if err != nil {
		t.Fatal(err)
	}
	p, err := New(agent, layout.NewResolver(true, logger), true, logger)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPublishWritesBothFormats(t *testing.T) {
	p := newTestPublisher(t)
	dir := t.TempDir()
	lyricsPath := writeFile(t, "song.txt", lyrics)
	notesPath := writeFile(t, "notes.md", "Listen and **fill** the gaps.")

	art, err := p.Publish(context.Background(), PublishParams{
		LyricsPath:       lyricsPath,
		Title:            "Evening Light",
		Artist:           "Test Band",
		InstructionsPath: notesPath,
		OutDir:           filepath.Join(dir, "out"),
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if art.Tier != layout.TierShort {
		t.Errorf("tier = %s, want short", art.Tier)
	}
	if filepath.Base(art.DocPath) != "eveninglight_cloze_worksheet.doc" {
		t.Errorf("DocPath = %s", art.DocPath)
	}
	if filepath.Base(art.HTMLPath) != "eveninglight_cloze_worksheet.html" {
		t.Errorf("HTMLPath = %s", art.HTMLPath)
	}

	doc, err := os.ReadFile(art.DocPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(doc), "\ufeff") || !strings.Contains(string(doc), "Evening Light") {
		t.Errorf("unexpected document content")
	}
	page, err := os.ReadFile(art.HTMLPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), "<strong>fill</strong>") {
		t.Errorf("instructions missing from page")
	}
	if len(art.Answers) != 12 {
		t.Errorf("answers = %d", len(art.Answers))
	}
}

func TestPublishValidation(t *testing.T) {
	p := newTestPublisher(t)
	if _, err := p.Publish(context.Background(), PublishParams{Title: "x"}); err == nil {
		t.Error("expected error without lyrics path")
	}
	empty := writeFile(t, "empty.txt", "  \n")
	_, err := p.Publish(context.Background(), PublishParams{LyricsPath: empty, Title: "x", OutDir: t.TempDir()})
	if generator.UserMessage(err) != generator.MsgEmptyLyrics {
		t.Errorf("error = %v, want empty lyrics", err)
	}
	bad := writeFile(t, "cover.png", "not an image")
	lyricsPath := writeFile(t, "song.txt", lyrics)
	if _, err := p.Publish(context.Background(), PublishParams{LyricsPath: lyricsPath, Title: "x", CoverPath: bad}); err == nil {
		t.Error("expected error for invalid cover")
	}
}
