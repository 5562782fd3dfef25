// Package timeslot turns EAF time references into absolute offsets in
// seconds.
//
// A reference is either a literal millisecond value or the identifier of a
// TIME_SLOT. Nothing in the format tags which one it is, so a numeric
// heuristic decides: a reference that parses as a finite number and is
// either whole or has magnitude above 50 is a literal. The threshold is
// kept for compatibility with existing converters and has no basis in the
// EAF schema.
package timeslot

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrUnknownSlot    = errors.New("unknown time slot")
	ErrUnanchoredSlot = errors.New("time slot has no value")
)

// failed lookup of one reference
type RefError struct {
	Ref string
	Err error
}

func (e *RefError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Ref)
}

func (e *RefError) Unwrap() error {
	return e.Err
}

// literal references above this magnitude are taken as numbers even when fractional
const literalThreshold = 50

// resolved start/end pair in seconds, start <= end
type Span struct {
	Start float64
	End   float64
	Label string
}

// resolves references against one document's time slot table
type Resolver struct {
	slots map[string]*int64
}

func NewResolver(slots map[string]*int64) *Resolver {
	copied := make(map[string]*int64, len(slots))
	for id, v := range slots {
		copied[id] = v
	}
	return &Resolver{slots: copied}
}

// reports whether ref is a literal millisecond value and returns it
func Literal(ref string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(ref), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v == math.Trunc(v) || math.Abs(v) > literalThreshold {
		return v, true
	}
	return 0, false
}

// returns the offset of ref in seconds
func (r *Resolver) Resolve(ref string) (float64, error) {
	if ms, ok := Literal(ref); ok {
		return ms / 1000.0, nil
	}
	value, ok := r.slots[ref]
	if !ok {
		return 0, &RefError{Ref: ref, Err: ErrUnknownSlot}
	}
	if value == nil {
		return 0, &RefError{Ref: ref, Err: ErrUnanchoredSlot}
	}
	return float64(*value) / 1000.0, nil
}

// resolves both ends of an annotation, swapping them when reversed
func (r *Resolver) ResolveSpan(startRef, endRef string) (Span, error) {
	start, err := r.Resolve(startRef)
	if err != nil {
		return Span{}, err
	}
	end, err := r.Resolve(endRef)
	if err != nil {
		return Span{}, err
	}
	if end < start {
		start, end = end, start
	}
	return Span{Start: start, End: end}, nil
}

// annotation that could not be placed on the time line
type Skipped struct {
	Tier         string
	AnnotationID string
	Ref          string
	Reason       string
}

func (s Skipped) String() string {
	return fmt.Sprintf("tier %q annotation %q: %s", s.Tier, s.AnnotationID, s.Reason)
}

// accumulates the spans of a single tier
type Collector struct {
	resolver *Resolver
	tier     string
	spans    []Span
	skipped  []Skipped
}

func (r *Resolver) Collect(tier string) *Collector {
	return &Collector{resolver: r, tier: tier}
}

// resolves and records one annotation; an unresolvable one is skipped
// and reported as false
func (c *Collector) Add(annotationID, startRef, endRef, label string) bool {
	span, err := c.resolver.ResolveSpan(startRef, endRef)
	if err != nil {
		skipped := Skipped{
			Tier:         c.tier,
			AnnotationID: annotationID,
			Reason:       err.Error(),
		}
		var refErr *RefError
		if errors.As(err, &refErr) {
			skipped.Ref = refErr.Ref
		}
		c.skipped = append(c.skipped, skipped)
		return false
	}
	span.Label = label
	c.spans = append(c.spans, span)
	return true
}

// spans ordered by start; ties keep insertion order
func (c *Collector) Sorted() []Span {
	out := make([]Span, len(c.spans))
	copy(out, c.spans)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

func (c *Collector) Skipped() []Skipped {
	return c.skipped
}
