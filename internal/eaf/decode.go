package eaf

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// compiled once; Select clones the query so these are safe to share
var (
	timeSlotExpr   = xpath.MustCompile("TIME_SLOT")
	annotationExpr = xpath.MustCompile("ANNOTATION")
	valueExpr      = xpath.MustCompile("ANNOTATION_VALUE")
)

// reads and decodes an EAF file
func ReadFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open EAF file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return Decode(file)
}

// parses an EAF document
func Decode(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	top := firstElement(root)
	if top == nil {
		return nil, fmt.Errorf("%w: document has no root element", ErrMalformedInput)
	}

	d := &decoder{
		doc:         &Document{Author: top.SelectAttr("AUTHOR"), Date: top.SelectAttr("DATE")},
		slots:       make(map[string]bool),
		tiers:       make(map[string]bool),
		annotations: make(map[string]bool),
	}

	for child := top.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		switch child.Data {
		case "HEADER":
			d.doc.MediaFile = child.SelectAttr("MEDIA_FILE")
		case "TIME_ORDER":
			if err := d.timeOrder(child); err != nil {
				return nil, err
			}
		case "TIER":
			if err := d.tier(child); err != nil {
				return nil, err
			}
		}
	}

	return d.doc, nil
}

type decoder struct {
	doc         *Document
	slots       map[string]bool
	tiers       map[string]bool
	annotations map[string]bool
}

func (d *decoder) timeOrder(n *xmlquery.Node) error {
	for _, slot := range xmlquery.QuerySelectorAll(n, timeSlotExpr) {
		id, ok := attr(slot, "TIME_SLOT_ID")
		if !ok {
			return fmt.Errorf("%w: TIME_SLOT missing TIME_SLOT_ID", ErrStructural)
		}
		if d.slots[id] {
			return fmt.Errorf("%w: duplicate TIME_SLOT_ID %q", ErrStructural, id)
		}
		d.slots[id] = true

		var value *int64
		if raw, ok := attr(slot, "TIME_VALUE"); ok {
			v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return fmt.Errorf(
					"%w: TIME_SLOT %q has invalid TIME_VALUE %q",
					ErrMalformedInput,
					id,
					raw,
				)
			}
			value = &v
		}
		d.doc.AddTimeSlot(id, value)
	}
	return nil
}

func (d *decoder) tier(n *xmlquery.Node) error {
	id, ok := attr(n, "TIER_ID")
	if !ok {
		return fmt.Errorf("%w: TIER missing TIER_ID", ErrStructural)
	}
	if d.tiers[id] {
		return fmt.Errorf("%w: duplicate TIER_ID %q", ErrStructural, id)
	}
	d.tiers[id] = true

	tier := &Tier{
		ID:             id,
		LinguisticType: n.SelectAttr("LINGUISTIC_TYPE_REF"),
		Participant:    n.SelectAttr("PARTICIPANT"),
		ParentRef:      n.SelectAttr("PARENT_REF"),
	}
	d.doc.Tiers = append(d.doc.Tiers, tier)

	for _, wrapper := range xmlquery.QuerySelectorAll(n, annotationExpr) {
		a, err := d.annotation(id, wrapper)
		if err != nil {
			return err
		}
		tier.Add(a)
	}
	return nil
}

func (d *decoder) annotation(tierID string, wrapper *xmlquery.Node) (Annotation, error) {
	inner := elementChildren(wrapper)
	if len(inner) != 1 {
		return nil, fmt.Errorf(
			"%w: ANNOTATION on tier %q must wrap exactly one annotation, found %d",
			ErrStructural,
			tierID,
			len(inner),
		)
	}
	n := inner[0]

	id, ok := attr(n, "ANNOTATION_ID")
	if !ok {
		return nil, fmt.Errorf("%w: %s on tier %q missing ANNOTATION_ID", ErrStructural, n.Data, tierID)
	}
	if d.annotations[id] {
		return nil, fmt.Errorf("%w: duplicate ANNOTATION_ID %q", ErrStructural, id)
	}
	d.annotations[id] = true

	var value string
	if v := xmlquery.QuerySelector(n, valueExpr); v != nil {
		value = v.InnerText()
	}

	switch n.Data {
	case "ALIGNABLE_ANNOTATION":
		start, ok := attr(n, "TIME_SLOT_REF1")
		if !ok {
			return nil, fmt.Errorf("%w: annotation %q missing TIME_SLOT_REF1", ErrStructural, id)
		}
		end, ok := attr(n, "TIME_SLOT_REF2")
		if !ok {
			return nil, fmt.Errorf("%w: annotation %q missing TIME_SLOT_REF2", ErrStructural, id)
		}
		return &AlignedAnnotation{
			ID:       id,
			Value:    value,
			StartRef: start,
			EndRef:   end,
			SVGRef:   n.SelectAttr("SVG_REF"),
		}, nil
	case "REF_ANNOTATION":
		parent, ok := attr(n, "ANNOTATION_REF")
		if !ok {
			return nil, fmt.Errorf("%w: annotation %q missing ANNOTATION_REF", ErrStructural, id)
		}
		return &RefAnnotation{
			ID:          id,
			Value:       value,
			ParentRef:   parent,
			PreviousRef: n.SelectAttr("PREVIOUS_ANNOTATION"),
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown annotation element %q on tier %q", ErrStructural, n.Data, tierID)
	}
}

// attribute value and whether it is present at all
func attr(n *xmlquery.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func firstElement(n *xmlquery.Node) *xmlquery.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return child
		}
	}
	return nil
}

func elementChildren(n *xmlquery.Node) []*xmlquery.Node {
	var out []*xmlquery.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			out = append(out, child)
		}
	}
	return out
}
