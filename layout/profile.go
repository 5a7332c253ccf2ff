package layout

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
)

// ErrUnmappedTier is returned in strict mode for a tier with no profile.
var ErrUnmappedTier = errors.New("layout: tier has no style profile")

const (
	minBodyPt        = 8
	minPrintMarginMm = 10
	pxToPt           = 0.75
)

// Profile is the canonical style of one tier. Both the screen stylesheet and
// the exported document are derived from it.
type Profile struct {
	BodyPt          float64 `json:"body_pt"`
	LineHeight      float64 `json:"line_height"`
	LetterSpacingEm float64 `json:"letter_spacing_em"`
	TitlePt         float64 `json:"title_pt"`
	ArtistPt        float64 `json:"artist_pt"`
	CoverPx         int     `json:"cover_px"`
	HeaderGapMm     float64 `json:"header_gap_mm"`
	PaddingMm       float64 `json:"padding_mm"`
	Columns         int     `json:"columns"`
	ColumnGapMm     float64 `json:"column_gap_mm"`
}

var profiles = map[Tier]Profile{
	TierDense: {
		BodyPt:          10,
		LineHeight:      1.3,
		LetterSpacingEm: 0,
		TitlePt:         20,
		ArtistPt:        12,
		CoverPx:         72,
		HeaderGapMm:     4,
		PaddingMm:       10,
		Columns:         2,
		ColumnGapMm:     8,
	},
	TierBalanced: {
		BodyPt:          12,
		LineHeight:      1.55,
		LetterSpacingEm: 0.01,
		TitlePt:         26,
		ArtistPt:        14,
		CoverPx:         96,
		HeaderGapMm:     6,
		PaddingMm:       14,
		Columns:         2,
		ColumnGapMm:     10,
	},
	TierShort: {
		BodyPt:          15,
		LineHeight:      1.9,
		LetterSpacingEm: 0.04,
		TitlePt:         32,
		ArtistPt:        17,
		CoverPx:         128,
		HeaderGapMm:     10,
		PaddingMm:       18,
		Columns:         1,
		ColumnGapMm:     0,
	},
}

// Validate reports the first attribute that cannot be rendered.
func (p Profile) Validate() error {
	switch {
	case p.BodyPt < minBodyPt:
		return fmt.Errorf("body size %vpt below %vpt", p.BodyPt, minBodyPt)
	case p.LineHeight < 1:
		return fmt.Errorf("line height %v below 1", p.LineHeight)
	case p.LetterSpacingEm < 0:
		return fmt.Errorf("negative letter spacing %v", p.LetterSpacingEm)
	case p.TitlePt <= p.BodyPt || p.ArtistPt <= 0:
		return fmt.Errorf("header sizes %v/%v invalid for body %v", p.TitlePt, p.ArtistPt, p.BodyPt)
	case p.CoverPx <= 0:
		return fmt.Errorf("cover edge %dpx invalid", p.CoverPx)
	case p.HeaderGapMm < 0 || p.PaddingMm <= 0:
		return fmt.Errorf("spacing %vmm/%vmm invalid", p.HeaderGapMm, p.PaddingMm)
	case p.Columns != 1 && p.Columns != 2:
		return fmt.Errorf("column count %d not supported", p.Columns)
	case p.Columns == 2 && p.ColumnGapMm <= 0:
		return fmt.Errorf("two columns need a gap")
	}
	return nil
}

// ScreenStyle holds CSS values for the on-screen and printed worksheet.
type ScreenStyle struct {
	BodySize      string
	LineHeight    string
	LetterSpacing string
	TitleSize     string
	ArtistSize    string
	CoverSize     string
	HeaderGap     string
	Padding       string
	Columns       int
	ColumnGap     string
	Centered      bool
}

// Screen renders the profile as CSS values.
func (p Profile) Screen() ScreenStyle {
	return ScreenStyle{
		BodySize:      FormatNumber(p.BodyPt) + "pt",
		LineHeight:    FormatNumber(p.LineHeight),
		LetterSpacing: FormatNumber(p.LetterSpacingEm) + "em",
		TitleSize:     FormatNumber(p.TitlePt) + "pt",
		ArtistSize:    FormatNumber(p.ArtistPt) + "pt",
		CoverSize:     strconv.Itoa(p.CoverPx) + "px",
		HeaderGap:     FormatNumber(p.HeaderGapMm) + "mm",
		Padding:       FormatNumber(p.PaddingMm) + "mm",
		Columns:       p.Columns,
		ColumnGap:     FormatNumber(p.ColumnGapMm) + "mm",
		Centered:      p.Columns == 1,
	}
}

// ExportStyle holds absolute print units for the word-processor document.
// Word stores font sizes in half points and ignores CSS-only image sizing,
// hence the integer pixel edge.
type ExportStyle struct {
	BodyPt          float64
	TitlePt         float64
	ArtistPt        float64
	LineHeightPct   int
	LetterSpacingPt float64
	CoverPx         int
	CoverPt         float64
	HeaderGapMm     float64
	MarginMm        float64
	Columns         int
	ColumnGapMm     float64
}

// Export re-encodes the profile in document units.
func (p Profile) Export() ExportStyle {
	return ExportStyle{
		BodyPt:          halfPoint(p.BodyPt),
		TitlePt:         halfPoint(p.TitlePt),
		ArtistPt:        halfPoint(p.ArtistPt),
		LineHeightPct:   int(math.Round(p.LineHeight * 100)),
		LetterSpacingPt: math.Round(p.LetterSpacingEm*p.BodyPt*10) / 10,
		CoverPx:         p.CoverPx,
		CoverPt:         halfPoint(float64(p.CoverPx) * pxToPt),
		HeaderGapMm:     p.HeaderGapMm,
		MarginMm:        math.Max(p.PaddingMm, minPrintMarginMm),
		Columns:         p.Columns,
		ColumnGapMm:     p.ColumnGapMm,
	}
}

func halfPoint(v float64) float64 {
	return math.Round(v*2) / 2
}

// FormatNumber prints v without trailing zeros ("12", "1.55").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Styles is a resolved tier: the canonical profile plus both projections.
type Styles struct {
	Tier    Tier
	Profile Profile
	Screen  ScreenStyle
	Export  ExportStyle
}

// Resolver expands tiers to styles. Strict resolvers fail on an unmapped
// tier; lenient ones log it and use the balanced profile so an export never
// crashes.
type Resolver struct {
	Strict bool
	logger *log.Logger
}

func NewResolver(strict bool, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{Strict: strict, logger: logger}
}

func (r *Resolver) Resolve(t Tier) (Styles, error) {
	p, ok := profiles[t]
	if !ok {
		if r.Strict {
			return Styles{}, fmt.Errorf("%w: %s", ErrUnmappedTier, t)
		}
		r.logger.Printf("[WARN] layout: no profile for %s, using %s", t, TierBalanced)
		t, p = TierBalanced, profiles[TierBalanced]
	}
	return Styles{Tier: t, Profile: p, Screen: p.Screen(), Export: p.Export()}, nil
}

// ResolveLines classifies lines and resolves the resulting tier.
func (r *Resolver) ResolveLines(lines []string) (Styles, error) {
	return r.Resolve(Classify(lines))
}
