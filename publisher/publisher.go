package publisher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"lyric_cloze_worksheet/coverart"
	"lyric_cloze_worksheet/generator"
	"lyric_cloze_worksheet/layout"
	"lyric_cloze_worksheet/worksheet"
)

// PublishParams describes the worksheet to produce from local files.
type PublishParams struct {
	LyricsPath       string
	Title            string
	Artist           string
	CoverPath        string
	InstructionsPath string
	OutDir           string
}

// Artifacts lists what Publish wrote.
type Artifacts struct {
	Tier     layout.Tier
	HTMLPath string
	DocPath  string
	Answers  []string
}

// Publisher runs generation and writes the printable page and .doc export.
type Publisher struct {
	agent    *generator.Agent
	resolver *layout.Resolver
	verbose  bool
	logger   *log.Logger
}

func New(agent *generator.Agent, resolver *layout.Resolver, verbose bool, logger *log.Logger) (*Publisher, error) {
	if agent == nil {
		return nil, errors.New("generator agent required")
	}
	if logger == nil {
		logger = log.Default()
	}
	if resolver == nil {
		resolver = layout.NewResolver(false, logger)
	}
	return &Publisher{agent: agent, resolver: resolver, verbose: verbose, logger: logger}, nil
}

func (p *Publisher) infof(format string, args ...interface{}) {
	if !p.verbose {
		return
	}
	p.logger.Printf("[INFO] "+format, args...)
}

// Publish reads the inputs, generates the cloze and writes both formats.
func (p *Publisher) Publish(ctx context.Context, params PublishParams) (Artifacts, error) {
	if params.LyricsPath == "" || params.Title == "" {
		return Artifacts{}, errors.New("lyrics path and title are required")
	}

	lyrics, err := os.ReadFile(params.LyricsPath)
	if err != nil {
		return Artifacts{}, err
	}
	song := generator.SongData{Title: params.Title, Artist: params.Artist, Lyrics: string(lyrics)}

	if params.CoverPath != "" {
		song.CoverImage, err = coverart.FromFile(params.CoverPath)
		if err != nil {
			return Artifacts{}, fmt.Errorf("cover %s: %w", params.CoverPath, err)
		}
		p.infof("Loaded cover image %s", params.CoverPath)
	}
	if params.InstructionsPath != "" {
		notes, err := os.ReadFile(params.InstructionsPath)
		if err != nil {
			return Artifacts{}, err
		}
		song.Instructions = string(notes)
	}

	result, err := p.agent.Generate(ctx, song)
	if err != nil {
		return Artifacts{}, err
	}
	p.infof("Generated cloze: %d lines, %d answers", len(result.Lines), len(result.AnswerKey))

	sheet, err := worksheet.Build(p.resolver, song, result)
	if err != nil {
		return Artifacts{}, err
	}
	p.infof("Layout tier %s (%d units)", sheet.Styles.Tier, layout.Units(result.Lines))

	outDir := params.OutDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Artifacts{}, err
	}

	docName := sheet.Filename()
	art := Artifacts{
		Tier:     sheet.Styles.Tier,
		HTMLPath: filepath.Join(outDir, strings.TrimSuffix(docName, ".doc")+".html"),
		DocPath:  filepath.Join(outDir, docName),
		Answers:  result.AnswerKey,
	}

	page, err := sheet.HTML(filepath.Base(art.DocPath), "")
	if err != nil {
		return Artifacts{}, err
	}
	if err := os.WriteFile(art.HTMLPath, page, 0o644); err != nil {
		return Artifacts{}, err
	}
	p.infof("Wrote %s", art.HTMLPath)

	doc, err := sheet.Document()
	if err != nil {
		return Artifacts{}, err
	}
	if err := os.WriteFile(art.DocPath, doc, 0o644); err != nil {
		return Artifacts{}, err
	}
	p.infof("Wrote %s", art.DocPath)
	return art, nil
}
