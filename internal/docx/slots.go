package docx

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoSlots is returned when a section has profile entries to place but the
// template contains no detectable repeating block to hold them.
var ErrNoSlots = errors.New("no repeating block detected in section")

// Span is a byte range in the raw XML, end exclusive.
type Span struct {
	Start int
	End   int
}

// Slot is one detected repeating template block: the paragraphs that make up
// a single job or degree entry, with the segment indices they contain.
type Slot struct {
	SegmentIndices []int
	Paragraphs     []Span
}

// spacerParagraph separates a cloned block from the original.
const spacerParagraph = "<w:p></w:p>"

// DetectSlots finds the repeating entry blocks in a section. A new slot
// begins at every paragraph whose combined text matches the section's
// date-range pattern; paragraphs before the first dated paragraph are not
// part of any slot.
func DetectSlots(doc *Document, section SectionType) []Slot {
	pattern := dateRangePattern(section)
	if pattern == nil {
		return nil
	}

	// Paragraph indices holding non-header segments of the section, in order.
	var paraOrder []int
	seen := make(map[int]bool)
	for _, seg := range doc.Segments {
		if seg.Section != section || seg.IsHeader || seg.Para < 0 {
			continue
		}
		if !seen[seg.Para] {
			seen[seg.Para] = true
			paraOrder = append(paraOrder, seg.Para)
		}
	}
	sort.Ints(paraOrder)

	var slots []Slot
	var current *Slot
	for _, pi := range paraOrder {
		text := strings.TrimSpace(doc.paragraphText(pi))
		if pattern.MatchString(text) {
			slots = append(slots, Slot{})
			current = &slots[len(slots)-1]
		}
		if current == nil {
			continue // leading paragraphs before the first dated one
		}
		p := doc.Paragraphs[pi]
		current.Paragraphs = append(current.Paragraphs, Span{p.Start, p.End})
		for _, si := range p.Segments {
			if !doc.Segments[si].IsHeader {
				current.SegmentIndices = append(current.SegmentIndices, si)
			}
		}
	}
	return slots
}

// DuplicateLastSlot clones the last slot's XML span verbatim, each copy
// prefixed by an empty spacer paragraph, until the template has room for
// `needed` entries. It returns the mutated XML and the number of copies
// inserted. The returned XML must be re-extracted before any further use:
// duplication invalidates every previously computed offset.
func DuplicateLastSlot(xml string, slots []Slot, needed int) (string, int, error) {
	if needed <= len(slots) {
		return xml, 0, nil
	}
	if len(slots) == 0 {
		return xml, 0, ErrNoSlots
	}

	last := slots[len(slots)-1]
	if len(last.Paragraphs) == 0 {
		return xml, 0, fmt.Errorf("last slot has no paragraphs")
	}
	start := last.Paragraphs[0].Start
	end := last.Paragraphs[len(last.Paragraphs)-1].End
	if start < 0 || end > len(xml) || start >= end {
		return xml, 0, fmt.Errorf("slot span [%d,%d) out of bounds", start, end)
	}

	block := xml[start:end]
	copies := needed - len(slots)

	var sb strings.Builder
	sb.WriteString(xml[:end])
	for i := 0; i < copies; i++ {
		sb.WriteString(spacerParagraph)
		sb.WriteString(block)
	}
	sb.WriteString(xml[end:])
	return sb.String(), copies, nil
}
