package eaf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	formatVersion  = "3.0"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLocation = "http://www.mpi.nl/tools/elan/EAFv3.0.xsd"
	urnPrefix      = "urn:nl-mpi-tools-elan-eaf:"
)

// writes documents as EAF 3.0 XML
type Encoder struct {
	Author string
	// wall clock used for the DATE attribute
	Now func() time.Time
	// document URN; a random one is generated when nil
	URN func() string
}

func DefaultEncoder() *Encoder {
	return &Encoder{Now: time.Now}
}

func (e *Encoder) Encode(w io.Writer, doc *Document) error {
	if err := Validate(doc); err != nil {
		return err
	}

	out, err := xml.MarshalIndent(e.build(doc), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal EAF: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(out)
	buf.WriteString("\n")

	_, err = w.Write(buf.Bytes())
	return err
}

// checks that every reference in doc points at something that exists
func Validate(doc *Document) error {
	slots := doc.SlotTable()
	ids := make(map[string]bool, doc.AnnotationCount())
	for _, tier := range doc.Tiers {
		for _, a := range tier.Annotations {
			ids[a.AnnotationID()] = true
		}
	}

	for _, tier := range doc.Tiers {
		for _, a := range tier.Annotations {
			switch a := a.(type) {
			case *AlignedAnnotation:
				for _, ref := range []string{a.StartRef, a.EndRef} {
					if _, ok := slots[ref]; !ok {
						return fmt.Errorf(
							"%w: annotation %q on tier %q references missing time slot %q",
							ErrStructural,
							a.ID,
							tier.ID,
							ref,
						)
					}
				}
			case *RefAnnotation:
				if !ids[a.ParentRef] {
					return fmt.Errorf(
						"%w: annotation %q on tier %q references missing annotation %q",
						ErrStructural,
						a.ID,
						tier.ID,
						a.ParentRef,
					)
				}
			default:
				return fmt.Errorf("%w: unsupported annotation type %T", ErrStructural, a)
			}
		}
	}
	return nil
}

func (e *Encoder) build(doc *Document) *xmlDocument {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	urn := e.URN
	if urn == nil {
		urn = uuid.NewString
	}

	out := &xmlDocument{
		Author:  e.Author,
		Date:    now().Format(time.RFC3339),
		Format:  formatVersion,
		Version: formatVersion,
		XSI:     xsiNamespace,
		Schema:  schemaLocation,
		Header: xmlHeader{
			MediaFile:  "",
			TimeUnits:  "milliseconds",
			Properties: []xmlProperty{
				{Name: "URN", Value: urnPrefix + urn()},
				{Name: "lastUsedAnnotationId", Value: strconv.Itoa(lastUsedAnnotationID(doc))},
			},
		},
		LinguisticTypes: []xmlLinguisticType{{
			ID:                DefaultLinguisticType,
			TimeAlignable:     "true",
			GraphicReferences: "false",
		}},
	}

	for _, ts := range SortedTimeSlots(doc.TimeSlots) {
		out.TimeOrder.Slots = append(out.TimeOrder.Slots, xmlTimeSlot{
			ID:    ts.ID,
			Value: ts.Value,
		})
	}

	for _, tier := range doc.Tiers {
		xt := xmlTier{ID: tier.ID, LinguisticType: DefaultLinguisticType}
		for _, a := range tier.Annotations {
			var wrapper xmlAnnotation
			switch a := a.(type) {
			case *AlignedAnnotation:
				wrapper.Aligned = &xmlAligned{
					ID:     a.ID,
					Ref1:   a.StartRef,
					Ref2:   a.EndRef,
					SVGRef: a.SVGRef,
					Value:  a.Value,
				}
			case *RefAnnotation:
				wrapper.Ref = &xmlRef{
					ID:       a.ID,
					Ref:      a.ParentRef,
					Previous: a.PreviousRef,
					Value:    a.Value,
				}
			}
			xt.Annotations = append(xt.Annotations, wrapper)
		}
		out.Tiers = append(out.Tiers, xt)
	}

	return out
}

// slots ordered by value; unaligned slots keep their relative order at the end
func SortedTimeSlots(slots []TimeSlot) []TimeSlot {
	out := make([]TimeSlot, len(slots))
	copy(out, slots)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Value, out[j].Value
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	return out
}

// highest numeric suffix among "a<N>" ids, which ELAN continues from
func lastUsedAnnotationID(doc *Document) int {
	last := 0
	for _, tier := range doc.Tiers {
		for _, a := range tier.Annotations {
			digits, ok := strings.CutPrefix(a.AnnotationID(), "a")
			if !ok {
				continue
			}
			if n, err := strconv.Atoi(digits); err == nil && n > last {
				last = n
			}
		}
	}
	return last
}

type xmlDocument struct {
	XMLName         xml.Name            `xml:"ANNOTATION_DOCUMENT"`
	Author          string              `xml:"AUTHOR,attr"`
	Date            string              `xml:"DATE,attr"`
	Format          string              `xml:"FORMAT,attr"`
	Version         string              `xml:"VERSION,attr"`
	XSI             string              `xml:"xmlns:xsi,attr"`
	Schema          string              `xml:"xsi:noNamespaceSchemaLocation,attr"`
	Header          xmlHeader           `xml:"HEADER"`
	TimeOrder       xmlTimeOrder        `xml:"TIME_ORDER"`
	Tiers           []xmlTier           `xml:"TIER"`
	LinguisticTypes []xmlLinguisticType `xml:"LINGUISTIC_TYPE"`
}

type xmlHeader struct {
	MediaFile  string        `xml:"MEDIA_FILE,attr"`
	TimeUnits  string        `xml:"TIME_UNITS,attr"`
	Properties []xmlProperty `xml:"PROPERTY"`
}

type xmlProperty struct {
	Name  string `xml:"NAME,attr"`
	Value string `xml:",chardata"`
}

type xmlTimeOrder struct {
	Slots []xmlTimeSlot `xml:"TIME_SLOT"`
}

type xmlTimeSlot struct {
	ID    string `xml:"TIME_SLOT_ID,attr"`
	Value *int64 `xml:"TIME_VALUE,attr,omitempty"`
}

type xmlTier struct {
	ID             string          `xml:"TIER_ID,attr"`
	LinguisticType string          `xml:"LINGUISTIC_TYPE_REF,attr"`
	Annotations    []xmlAnnotation `xml:"ANNOTATION"`
}

type xmlAnnotation struct {
	Aligned *xmlAligned `xml:"ALIGNABLE_ANNOTATION,omitempty"`
	Ref     *xmlRef     `xml:"REF_ANNOTATION,omitempty"`
}

type xmlAligned struct {
	ID     string `xml:"ANNOTATION_ID,attr"`
	Ref1   string `xml:"TIME_SLOT_REF1,attr"`
	Ref2   string `xml:"TIME_SLOT_REF2,attr"`
	SVGRef string `xml:"SVG_REF,attr,omitempty"`
	Value  string `xml:"ANNOTATION_VALUE"`
}

type xmlRef struct {
	ID       string `xml:"ANNOTATION_ID,attr"`
	Ref      string `xml:"ANNOTATION_REF,attr"`
	Previous string `xml:"PREVIOUS_ANNOTATION,attr,omitempty"`
	Value    string `xml:"ANNOTATION_VALUE"`
}

type xmlLinguisticType struct {
	ID                string `xml:"LINGUISTIC_TYPE_ID,attr"`
	TimeAlignable     string `xml:"TIME_ALIGNABLE,attr"`
	GraphicReferences string `xml:"GRAPHIC_REFERENCES,attr"`
}
