package docx

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareDuplicatesForEntryCounts(t *testing.T) {
	xml := body(
		p("Jane Doe"),
		p("Work Experience"),
		p("2019 - 2021"),
		p("Developer at Initech"),
		p("Education"),
		p("2015 - 2019"),
		p("BSc Computer Science"),
	)

	prep, err := Prepare(xml, 3, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, prep.WorkCopies)
	assert.Equal(t, 1, prep.EducationCopies)
	assert.Len(t, prep.WorkSlots, 3)
	assert.Len(t, prep.EducationSlots, 2)
}

func TestPrepareNoopWhenTemplateHasRoom(t *testing.T) {
	xml := body(
		p("Work Experience"),
		p("2019 - 2021"), p("Developer"),
		p("2017 - 2019"), p("Junior Developer"),
	)

	prep, err := Prepare(xml, 1, 0)
	require.NoError(t, err)
	assert.Zero(t, prep.WorkCopies)
	assert.Len(t, prep.WorkSlots, 2)
	assert.Equal(t, xml, prep.Doc.XML)
}

func TestPrepareFailsWhenSectionHasNoSlots(t *testing.T) {
	xml := body(p("Work Experience"), p("A block without any date range"))

	_, err := Prepare(xml, 2, 0)
	assert.ErrorIs(t, err, ErrNoSlots)
}

func TestPrepareIgnoresMissingSections(t *testing.T) {
	xml := body(p("Skills"), p("Go, SQL"))

	prep, err := Prepare(xml, 3, 2)
	require.NoError(t, err, "entries without a matching section are simply not placed")
	assert.Empty(t, prep.WorkSlots)
}

// Three experience entries against a one-slot template: duplication makes
// room, filling lands one entry per slot in order.
func TestPipelineEndToEnd(t *testing.T) {
	xml := body(
		p("Work Experience"),
		p("2019 - 2021"),
		p("Developer at Initech"),
	)

	prep, err := Prepare(xml, 3, 0)
	require.NoError(t, err)
	require.Len(t, prep.WorkSlots, 3)

	entries := []struct{ date, role string }{
		{"2021 - Present", "Staff Engineer at Hooli"},
		{"2018 - 2021", "Engineer at Initech"},
		{"2015 - 2018", "Junior Developer at Globex"},
	}

	fills := make(map[int]string)
	for i, slot := range prep.WorkSlots {
		require.Len(t, slot.SegmentIndices, 2)
		fills[slot.SegmentIndices[0]] = entries[i].date
		fills[slot.SegmentIndices[1]] = entries[i].role
	}

	out, err := prep.Apply(fills)
	require.NoError(t, err)

	// Each entry appears exactly once, in document order.
	lastPos := -1
	for i, e := range entries {
		pos := strings.Index(out, e.role)
		require.GreaterOrEqual(t, pos, 0, fmt.Sprintf("entry %d missing", i))
		assert.Greater(t, pos, lastPos, "entries keep their order")
		lastPos = pos
		assert.Equal(t, pos, strings.LastIndex(out, e.role), "entry appears once")
	}
	assert.NotContains(t, out, "Developer at Initech", "template text is fully replaced")

	// The result still parses into three distinct work slots.
	final := Extract(out)
	assert.Len(t, DetectSlots(final, SectionWorkExperience), 3)
}
