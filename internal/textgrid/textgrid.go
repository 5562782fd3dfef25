// Package textgrid reads and writes Praat TextGrid files in both the short
// (positional) and the long (key = value) text syntax.
package textgrid

import (
	"fmt"
	"strings"

	"github.com/mgpai22/tiergrid/internal/faults"
)

var (
	ErrNotFound          = faults.ErrNotFound
	ErrMalformedInput    = faults.ErrMalformedInput
	ErrUnsupportedSyntax = faults.ErrUnsupportedVariant
)

// shape violation at a given input line; matches ErrMalformedInput
type SyntaxError = faults.SyntaxError

// textual layout of a TextGrid file
type Syntax string

const (
	SyntaxShort Syntax = "short"
	SyntaxLong  Syntax = "long"
)

func ParseSyntax(s string) (Syntax, error) {
	switch Syntax(strings.ToLower(strings.TrimSpace(s))) {
	case SyntaxShort:
		return SyntaxShort, nil
	case SyntaxLong:
		return SyntaxLong, nil
	default:
		return "", fmt.Errorf("%w %q: use short or long", ErrUnsupportedSyntax, s)
	}
}

const (
	classInterval = "IntervalTier"
	classText     = "TextTier"
)

// labeled time range in seconds
type Interval struct {
	Start float64
	End   float64
	Label string
}

// labeled instant in seconds
type Point struct {
	Time  float64
	Label string
}

// one of *IntervalTier or *TextTier
type Tier interface {
	TierName() string
	Bounds() (xmin, xmax float64)
	Len() int
	class() string
}

type IntervalTier struct {
	Name      string
	XMin      float64
	XMax      float64
	Intervals []Interval
}

// point tier
type TextTier struct {
	Name   string
	XMin   float64
	XMax   float64
	Points []Point
}

func (t *IntervalTier) TierName() string           { return t.Name }
func (t *IntervalTier) Bounds() (float64, float64) { return t.XMin, t.XMax }
func (t *IntervalTier) Len() int                   { return len(t.Intervals) }
func (*IntervalTier) class() string                { return classInterval }

func (t *TextTier) TierName() string           { return t.Name }
func (t *TextTier) Bounds() (float64, float64) { return t.XMin, t.XMax }
func (t *TextTier) Len() int                   { return len(t.Points) }
func (*TextTier) class() string                { return classText }

type TextGrid struct {
	XMin  float64
	XMax  float64
	Tiers []Tier
}

func New(xmin, xmax float64) *TextGrid {
	return &TextGrid{XMin: xmin, XMax: xmax}
}

func (tg *TextGrid) AddTier(t Tier) {
	tg.Tiers = append(tg.Tiers, t)
}
