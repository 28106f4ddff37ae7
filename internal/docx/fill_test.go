package docx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFillsEmptyIsNoop(t *testing.T) {
	xml := body(p("Jane Doe"), p("Work Experience"), p("2019 - 2021"), p("Developer"))
	doc := Extract(xml)

	out, err := ApplyFills(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, xml, out)
}

func TestApplyFillsEmptyRemovesOnlyEmptyBullets(t *testing.T) {
	xml := body(p("Work Experience"), p("2019 - 2021"), p("-"), p("Developer"))
	doc := Extract(xml)

	out, err := ApplyFills(doc, nil)
	require.NoError(t, err)
	assert.NotContains(t, out, "<w:t>-</w:t>")
	assert.Contains(t, out, "Developer")

	// Re-running the bullet cleanup on its own output changes nothing.
	assert.Equal(t, out, RemoveEmptyBulletParagraphs(out))
}

func TestLabelValueOutsideWorkSection(t *testing.T) {
	xml := body(p("Personalia"), p("Naam:"), p("Telefoon:"))
	doc := Extract(xml)

	// Segment 1 is the "Naam:" run.
	out, err := ApplyFills(doc, map[int]string{1: "Jane Doe"})
	require.NoError(t, err)

	assert.Contains(t, out, ">Naam: Jane Doe</w:t>")
	assert.NotContains(t, out, "<w:tab/>", "personal fields are single-run, not tab-aligned")
	assert.Contains(t, out, "Telefoon:", "untouched label survives")
}

func TestLabelFillAfterSelfClosingParagraph(t *testing.T) {
	xml := body(`<w:p w:rsidR="00A1" w:rsidRDefault="00A1"/>`, p("Naam:"))
	doc := Extract(xml)

	out, err := ApplyFills(doc, map[int]string{0: "Jane Doe"})
	require.NoError(t, err)

	assert.Contains(t, out, `<w:p w:rsidR="00A1" w:rsidRDefault="00A1"/>`, "empty paragraph survives untouched")
	assert.Contains(t, out, "<w:p><w:r><w:t xml:space=\"preserve\">Naam: Jane Doe</w:t></w:r></w:p>")
	assert.Equal(t, strings.Count(out, "<w:p>"), strings.Count(out, "</w:p>"), "paragraph tags stay balanced")
}

func TestLabelValueInWorkSectionIsTabAligned(t *testing.T) {
	xml := body(p("Work Experience"), p("2019 - 2021"), p("Functie:"))
	doc := Extract(xml)

	out, err := ApplyFills(doc, map[int]string{2: "Developer"})
	require.NoError(t, err)

	assert.Contains(t, out, ">Functie:</w:t>")
	assert.Contains(t, out, "<w:tab/>")
	assert.Contains(t, out, `w:pos="2268"`)
	assert.Contains(t, out, ">Developer</w:t>")
}

func TestMultilineValueBecomesSiblingParagraphs(t *testing.T) {
	xml := body(p("Work Experience"), p("2019 - 2021"), p("Taken:"))
	doc := Extract(xml)

	out, err := ApplyFills(doc, map[int]string{2: "Built services\nLed migrations\n- \nShipped weekly"})
	require.NoError(t, err)

	assert.Contains(t, out, ">Built services</w:t>")
	assert.Contains(t, out, `<w:ind w:left="2268"/>`)
	assert.Contains(t, out, ">Led migrations</w:t>")
	assert.Contains(t, out, ">Shipped weekly</w:t>")
	assert.NotContains(t, out, ">- </w:t>", "bullet placeholder lines are dropped")

	// Continuation paragraphs are real paragraphs in the output.
	after := Extract(out)
	var texts []string
	for pi := range after.Paragraphs {
		texts = append(texts, strings.TrimSpace(after.paragraphText(pi)))
	}
	assert.Contains(t, texts, "Led migrations")
	assert.Contains(t, texts, "Shipped weekly")
}

func TestLabelFillReusesExistingTabStop(t *testing.T) {
	para := `<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="3000"/></w:tabs></w:pPr>` +
		`<w:r><w:t>Periode:</w:t></w:r></w:p>`
	xml := body(p("Work Experience"), p("2019 - 2021"), para)
	doc := Extract(xml)

	// Segments: 0 heading, 1 date, 2 "Periode:".
	out, err := ApplyFills(doc, map[int]string{2: "2015 - 2018"})
	require.NoError(t, err)

	assert.Contains(t, out, ">Periode:</w:t>")
	assert.Contains(t, out, ">2015 - 2018</w:t>")
	assert.Contains(t, out, `w:pos="3000"`, "existing tab stop is reused")
	assert.NotContains(t, out, `w:pos="2268"`)
}

func TestManualTabParagraphSplit(t *testing.T) {
	para := `<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="3000"/></w:tabs></w:pPr>` +
		`<w:r><w:t>Werkgever</w:t></w:r><w:r><w:tab/></w:r><w:r><w:t>: Initech</w:t></w:r></w:p>`
	xml := body(p("Work Experience"), p("2019 - 2021"), para)
	doc := Extract(xml)

	// Segments: 0 heading, 1 date, 2 "Werkgever", 3 ": Initech". Neither run
	// matches the label pattern, so the manual-tab split applies.
	out, err := ApplyFills(doc, map[int]string{2: "Werkgever", 3: ": Hooli"})
	require.NoError(t, err)

	assert.Contains(t, out, ">Werkgever:</w:t>")
	assert.Contains(t, out, ">Hooli</w:t>", "leading ': ' is stripped from the value")
	assert.Contains(t, out, `w:pos="3000"`, "existing tab stop is reused")
}

func TestFreeTextInPlaceRewrite(t *testing.T) {
	xml := body(p("Profile"), p("Old summary text"))
	doc := Extract(xml)

	out, err := ApplyFills(doc, map[int]string{1: "A better summary"})
	require.NoError(t, err)

	assert.Contains(t, out, ">A better summary</w:t>")
	assert.NotContains(t, out, "Old summary text")
}

func TestFillEscapesXMLSpecials(t *testing.T) {
	xml := body(p("Profile"), p("placeholder"))
	doc := Extract(xml)

	out, err := ApplyFills(doc, map[int]string{1: "R&D <lead>"})
	require.NoError(t, err)

	assert.Contains(t, out, "R&amp;D &lt;lead&gt;")

	after := Extract(out)
	assert.Equal(t, "R&D <lead>", after.Segments[1].Text)
}

func TestOffsetSafetyAcrossParagraphs(t *testing.T) {
	xml := body(
		p("Jane Doe"),
		p("Untouched middle paragraph"),
		p("Profile"),
		p("placeholder one"),
		p("placeholder two"),
	)
	doc := Extract(xml)

	out, err := ApplyFills(doc, map[int]string{3: "first fill", 4: "second fill"})
	require.NoError(t, err)

	after := Extract(out)
	require.Equal(t, len(doc.Segments), len(after.Segments))

	// Untouched paragraphs keep identical byte content.
	for _, pi := range []int{0, 1, 2} {
		was := xml[doc.Paragraphs[pi].Start:doc.Paragraphs[pi].End]
		now := out[after.Paragraphs[pi].Start:after.Paragraphs[pi].End]
		assert.Equal(t, was, now)
	}
	assert.Equal(t, "first fill", after.Segments[3].Text)
	assert.Equal(t, "second fill", after.Segments[4].Text)
}

func TestFillRejectsOutOfRangeSegment(t *testing.T) {
	doc := Extract(body(p("one")))
	_, err := ApplyFills(doc, map[int]string{5: "nope"})
	assert.Error(t, err)
}

func TestRemoveEmptyBulletParagraphsIdempotent(t *testing.T) {
	xml := body(p("Tasks"), p("-"), p("• "), p("Real content"))

	once := RemoveEmptyBulletParagraphs(xml)
	assert.NotContains(t, once, ">-<")
	assert.Contains(t, once, "Real content")
	assert.Equal(t, once, RemoveEmptyBulletParagraphs(once))
}

func TestEditPlanRejectsOverlaps(t *testing.T) {
	plan := &editPlan{}
	plan.replace(0, 10, "a")
	plan.replace(5, 15, "b")
	_, err := plan.apply(strings.Repeat("x", 20))
	assert.Error(t, err)
}

func TestEditPlanAppliesDescending(t *testing.T) {
	plan := &editPlan{}
	plan.replace(0, 3, "AAA")
	plan.replace(10, 13, "BBB")
	out, err := plan.apply("xxx4567890yyy456")
	require.NoError(t, err)
	assert.Equal(t, "AAA4567890BBB456", out)
}
