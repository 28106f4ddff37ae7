package docx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSlotsWorkExperience(t *testing.T) {
	xml := body(
		p("Work Experience"),
		p("2019 - 2021"),
		p("Developer at Initech"),
		p("2021 - Present"),
		p("Engineer at Hooli"),
	)
	doc := Extract(xml)

	slots := DetectSlots(doc, SectionWorkExperience)
	require.Len(t, slots, 2)
	assert.Len(t, slots[0].Paragraphs, 2)
	assert.Len(t, slots[1].Paragraphs, 2)
	assert.Len(t, slots[0].SegmentIndices, 2)
}

func TestDetectSlotsDiscardsLeadingParagraphs(t *testing.T) {
	xml := body(
		p("Work Experience"),
		p("An introductory line with no date"),
		p("2019 - 2021"),
		p("Developer"),
	)
	doc := Extract(xml)

	slots := DetectSlots(doc, SectionWorkExperience)
	require.Len(t, slots, 1)
	assert.Len(t, slots[0].Paragraphs, 2, "intro paragraph is not part of any slot")
}

func TestDetectSlotsDutchDateRange(t *testing.T) {
	xml := body(p("Werkervaring"), p("2018 - Heden"), p("Ontwikkelaar"))
	doc := Extract(xml)

	slots := DetectSlots(doc, SectionWorkExperience)
	require.Len(t, slots, 1)
}

func TestEducationAcceptsSingleYear(t *testing.T) {
	xml := body(p("Education"), p("2018"), p("MSc Computer Science"))
	doc := Extract(xml)

	require.Len(t, DetectSlots(doc, SectionEducation), 1)

	// A lone year is not enough for a work-experience slot.
	xml = body(p("Work Experience"), p("2018"), p("Developer"))
	doc = Extract(xml)
	assert.Empty(t, DetectSlots(doc, SectionWorkExperience))
}

func TestDetectSlotsNonRepeatingSection(t *testing.T) {
	xml := body(p("Skills"), p("Go, SQL"))
	doc := Extract(xml)

	assert.Nil(t, DetectSlots(doc, SectionSkills))
}

func TestDuplicateLastSlotArithmetic(t *testing.T) {
	xml := body(
		p("Work Experience"),
		p("2019 - 2021"),
		p("Developer at Initech"),
	)
	doc := Extract(xml)
	slots := DetectSlots(doc, SectionWorkExperience)
	require.Len(t, slots, 1)

	slotParas := len(slots[0].Paragraphs)
	before := len(doc.Paragraphs)

	out, copies, err := DuplicateLastSlot(xml, slots, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, copies)

	after := Extract(out)
	assert.Equal(t, before+3*(slotParas+1), len(after.Paragraphs),
		"each copy adds the slot's paragraphs plus one spacer")
	assert.Len(t, DetectSlots(after, SectionWorkExperience), 4)
}

func TestDuplicateCopiesBlockVerbatim(t *testing.T) {
	xml := body(p("Work Experience"), p("2019 - 2021"), p("Developer at Initech"))
	doc := Extract(xml)
	slots := DetectSlots(doc, SectionWorkExperience)
	require.Len(t, slots, 1)

	out, _, err := DuplicateLastSlot(xml, slots, 2)
	require.NoError(t, err)

	after := Extract(out)
	newSlots := DetectSlots(after, SectionWorkExperience)
	require.Len(t, newSlots, 2)

	// The clone is byte-identical to the original block.
	orig := out[newSlots[0].Paragraphs[0].Start:newSlots[0].Paragraphs[len(newSlots[0].Paragraphs)-1].End]
	clone := out[newSlots[1].Paragraphs[0].Start:newSlots[1].Paragraphs[len(newSlots[1].Paragraphs)-1].End]
	assert.Equal(t, orig, clone)
}

func TestDuplicateNoopWhenEnoughSlots(t *testing.T) {
	xml := body(p("Work Experience"), p("2019 - 2021"), p("Developer"))
	doc := Extract(xml)
	slots := DetectSlots(doc, SectionWorkExperience)

	out, copies, err := DuplicateLastSlot(xml, slots, 1)
	require.NoError(t, err)
	assert.Zero(t, copies)
	assert.Equal(t, xml, out)
}

func TestDuplicateWithZeroSlots(t *testing.T) {
	xml := body(p("Work Experience"), p("No dates here"))
	doc := Extract(xml)
	slots := DetectSlots(doc, SectionWorkExperience)
	require.Empty(t, slots)

	_, _, err := DuplicateLastSlot(xml, slots, 2)
	assert.ErrorIs(t, err, ErrNoSlots)
}
