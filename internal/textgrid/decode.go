package textgrid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/mgpai22/tiergrid/internal/faults"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const maxLineSize = 16 * 1024 * 1024

// reads and decodes a TextGrid file written in the given syntax
func ReadFile(path string, syntax Syntax) (*TextGrid, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open TextGrid file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return Decode(file, syntax)
}

func Decode(r io.Reader, syntax Syntax) (*TextGrid, error) {
	switch syntax {
	case SyntaxShort:
		return DecodeShort(r)
	case SyntaxLong:
		return DecodeLong(r)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedSyntax, syntax)
	}
}

// parses the positional layout: one bare value per line
func DecodeShort(r io.Reader) (*TextGrid, error) {
	c, err := newCursor(r, SyntaxShort)
	if err != nil {
		return nil, err
	}
	return c.textGrid()
}

// parses the "key = value" layout with item [n]: framing
func DecodeLong(r io.Reader) (*TextGrid, error) {
	c, err := newCursor(r, SyntaxLong)
	if err != nil {
		return nil, err
	}
	return c.textGrid()
}

// walks the file line by line; pos is the index of the next unread line
type cursor struct {
	lines  []string
	pos    int
	syntax Syntax
}

func newCursor(r io.Reader, syntax Syntax) (*cursor, error) {
	// UTF-16 files written by Praat carry a BOM; anything else is read as UTF-8
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading TextGrid: %w", err)
	}
	return &cursor{lines: lines, syntax: syntax}, nil
}

func (c *cursor) long() bool {
	return c.syntax == SyntaxLong
}

// next non-blank line, trimmed, and its 1-based number
func (c *cursor) next(what string) (string, int, error) {
	for c.pos < len(c.lines) {
		line := strings.TrimSpace(c.lines[c.pos])
		c.pos++
		if line != "" {
			return line, c.pos, nil
		}
	}
	return "", c.pos, faults.Syntaxf(c.pos, "unexpected end of file, expected %s", what)
}

// value of the next field; in long syntax the line must be "key = value"
func (c *cursor) field(key string) (string, int, error) {
	line, n, err := c.next(key)
	if err != nil {
		return "", n, err
	}
	if !c.long() {
		return line, n, nil
	}
	k, v, ok := strings.Cut(line, "=")
	if !ok || strings.TrimSpace(k) != key {
		return "", n, faults.Syntaxf(n, "expected %q, got %q", key+" = ...", line)
	}
	return strings.TrimSpace(v), n, nil
}

// consumes an "item [n]:" style header line; short syntax has none
func (c *cursor) header(prefix string) error {
	if !c.long() {
		return nil
	}
	line, n, err := c.next(prefix + " [...]:")
	if err != nil {
		return err
	}
	if !strings.HasPrefix(line, prefix+" [") || !strings.HasSuffix(line, ":") {
		return faults.Syntaxf(n, "expected %q header, got %q", prefix+" [...]:", line)
	}
	return nil
}

func (c *cursor) number(key string) (float64, error) {
	raw, n, err := c.field(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, faults.Syntaxf(n, "invalid %s %q", key, raw)
	}
	return v, nil
}

func (c *cursor) count(key string) (int, error) {
	raw, n, err := c.field(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, faults.Syntaxf(n, "invalid %s %q", key, raw)
	}
	return v, nil
}

// declared item count bounded by what the remaining lines can hold, each
// item taking at least perItem lines; a larger count fails while parsing
func (c *cursor) capacity(declared, perItem int) int {
	return min(declared, (len(c.lines)-c.pos)/perItem)
}

// quoted Praat string: "" escapes a quote and the text may run over
// several lines
func (c *cursor) text(key string) (string, error) {
	raw, n, err := c.field(key)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(raw, `"`) {
		return "", faults.Syntaxf(n, "expected quoted %s, got %q", key, raw)
	}

	var sb strings.Builder
	rest := raw[1:]
	for {
		if closed := unquote(&sb, rest); closed {
			return sb.String(), nil
		}
		if c.pos >= len(c.lines) {
			return "", faults.Syntaxf(n, "unterminated string in %s", key)
		}
		sb.WriteByte('\n')
		rest = c.lines[c.pos]
		c.pos++
	}
}

// appends s up to the closing quote and reports whether it was found
func unquote(sb *strings.Builder, s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '"' {
			sb.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '"' {
			sb.WriteByte('"')
			i++
			continue
		}
		return true
	}
	return false
}

func (c *cursor) preamble() error {
	line, n, err := c.next("file type")
	if err != nil {
		return err
	}
	if !strings.Contains(line, "ooTextFile") {
		return faults.Syntaxf(n, "not a Praat text file: %q", line)
	}
	line, n, err = c.next("object class")
	if err != nil {
		return err
	}
	if !strings.Contains(line, `"TextGrid"`) {
		return faults.Syntaxf(n, "object class is not TextGrid: %q", line)
	}
	return nil
}

func (c *cursor) textGrid() (*TextGrid, error) {
	if err := c.preamble(); err != nil {
		return nil, err
	}

	xmin, err := c.number("xmin")
	if err != nil {
		return nil, err
	}
	xmax, err := c.number("xmax")
	if err != nil {
		return nil, err
	}
	tg := New(xmin, xmax)

	flag, n, err := c.next("tier flag")
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(flag, "<absent>"):
		return tg, nil
	case !strings.HasSuffix(flag, "<exists>"):
		return nil, faults.Syntaxf(n, "expected <exists> or <absent>, got %q", flag)
	}

	size, err := c.count("size")
	if err != nil {
		return nil, err
	}
	if c.long() {
		line, n, err := c.next("item []:")
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(line, "item []") {
			return nil, faults.Syntaxf(n, "expected \"item []:\", got %q", line)
		}
	}

	for i := 0; i < size; i++ {
		tier, err := c.tier()
		if err != nil {
			return nil, err
		}
		tg.AddTier(tier)
	}
	if err := c.end(); err != nil {
		return nil, err
	}
	return tg, nil
}

// anything left after the declared tiers means a count was too small
func (c *cursor) end() error {
	for c.pos < len(c.lines) {
		line := strings.TrimSpace(c.lines[c.pos])
		c.pos++
		if line != "" {
			return faults.Syntaxf(c.pos, "unexpected content after last tier: %q", line)
		}
	}
	return nil
}

func (c *cursor) tier() (Tier, error) {
	if err := c.header("item"); err != nil {
		return nil, err
	}

	class, n, err := c.field("class")
	if err != nil {
		return nil, err
	}
	if len(class) < 2 {
		return nil, faults.Syntaxf(n, "invalid tier class %q", class)
	}
	name, err := c.text("name")
	if err != nil {
		return nil, err
	}
	xmin, err := c.number("xmin")
	if err != nil {
		return nil, err
	}
	xmax, err := c.number("xmax")
	if err != nil {
		return nil, err
	}

	// the first letter inside the quotes tells the two tier classes apart
	switch class[1] {
	case 'I':
		return c.intervalTier(name, xmin, xmax)
	case 'T':
		return c.textTier(name, xmin, xmax)
	default:
		return nil, faults.Syntaxf(n, "unknown tier class %s", class)
	}
}

func (c *cursor) intervalTier(name string, xmin, xmax float64) (*IntervalTier, error) {
	size, err := c.count("intervals: size")
	if err != nil {
		return nil, err
	}
	tier := &IntervalTier{Name: name, XMin: xmin, XMax: xmax, Intervals: make([]Interval, 0, c.capacity(size, 3))}
	for i := 0; i < size; i++ {
		if err := c.header("intervals"); err != nil {
			return nil, err
		}
		start, err := c.number("xmin")
		if err != nil {
			return nil, err
		}
		end, err := c.number("xmax")
		if err != nil {
			return nil, err
		}
		label, err := c.text("text")
		if err != nil {
			return nil, err
		}
		tier.Intervals = append(tier.Intervals, Interval{Start: start, End: end, Label: label})
	}
	return tier, nil
}

func (c *cursor) textTier(name string, xmin, xmax float64) (*TextTier, error) {
	size, err := c.count("points: size")
	if err != nil {
		return nil, err
	}
	tier := &TextTier{Name: name, XMin: xmin, XMax: xmax, Points: make([]Point, 0, c.capacity(size, 2))}
	for i := 0; i < size; i++ {
		if err := c.header("points"); err != nil {
			return nil, err
		}
		at, err := c.number("number")
		if err != nil {
			return nil, err
		}
		label, err := c.text("mark")
		if err != nil {
			return nil, err
		}
		tier.Points = append(tier.Points, Point{Time: at, Label: label})
	}
	return tier, nil
}
