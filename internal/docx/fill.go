package docx

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// defaultTabPos is the value-column tab stop, in twentieths of a point,
// used when a paragraph does not already define one.
const defaultTabPos = 2268

// ── Edit plan ──────────────────────────────────────────

// edit is one byte-range replacement in the raw XML.
type edit struct {
	start, end int
	text       string
}

// editPlan batches edits and applies them in a single pass, in descending
// start order, so that no edit can shift the offsets of another. Overlapping
// edits are a bug in the caller and are rejected.
type editPlan struct {
	edits []edit
}

func (p *editPlan) replace(start, end int, text string) {
	p.edits = append(p.edits, edit{start, end, text})
}

func (p *editPlan) delete(start, end int) {
	p.edits = append(p.edits, edit{start, end, ""})
}

func (p *editPlan) apply(xml string) (string, error) {
	sort.Slice(p.edits, func(i, j int) bool { return p.edits[i].start > p.edits[j].start })
	prevStart := len(xml) + 1
	for _, e := range p.edits {
		if e.start < 0 || e.end > len(xml) || e.start > e.end {
			return "", fmt.Errorf("edit [%d,%d) out of bounds", e.start, e.end)
		}
		if e.end > prevStart {
			return "", fmt.Errorf("overlapping edits at [%d,%d)", e.start, e.end)
		}
		prevStart = e.start
		xml = xml[:e.start] + e.text + xml[e.end:]
	}
	return xml, nil
}

// ── Fill application ───────────────────────────────────

// ApplyFills splices replacement text into the document. fills maps a
// segment index (into doc.Segments) to its new text. Paragraph structure
// decides the rewrite strategy:
//
//   - "Label:" paragraphs outside work/education become one "Label: value" run.
//   - "Label:" paragraphs inside work/education become a tab-aligned
//     label/value pair; extra value lines become sibling paragraphs indented
//     to the value column.
//   - Paragraphs with a manual tab and two or more filled runs are split at
//     the tab into a label group and a value group, then re-emitted with the
//     same tab-aligned layout.
//   - Anything else is an in-place <w:t> text replacement.
//
// Untargeted paragraphs that contain only bullet placeholders or whitespace
// are removed. doc must have been extracted from exactly this XML; the
// returned string requires re-extraction before further edits.
func ApplyFills(doc *Document, fills map[int]string) (string, error) {
	xml := doc.XML
	plan := &editPlan{}

	// Group targeted segments by enclosing paragraph.
	byPara := make(map[int][]int)
	for si := range fills {
		if si < 0 || si >= len(doc.Segments) {
			return "", fmt.Errorf("fill references segment %d of %d", si, len(doc.Segments))
		}
		pi := doc.Segments[si].Para
		if pi < 0 {
			// Run outside any paragraph: plain in-place rewrite.
			seg := doc.Segments[si]
			plan.replace(seg.Start, seg.End, escapeText(fills[si]))
			continue
		}
		byPara[pi] = append(byPara[pi], si)
	}

	for pi, targets := range byPara {
		sort.Ints(targets)
		if err := fillParagraph(doc, plan, pi, targets, fills); err != nil {
			return "", err
		}
	}

	// Cleanup: untouched paragraphs that hold nothing but empty bullets or
	// whitespace are template leftovers.
	for pi := range doc.Paragraphs {
		if _, touched := byPara[pi]; touched {
			continue
		}
		if paragraphIsEmptyPlaceholder(doc, pi) {
			plan.delete(doc.Paragraphs[pi].Start, doc.Paragraphs[pi].End)
		}
	}

	return plan.apply(xml)
}

func paragraphIsEmptyPlaceholder(doc *Document, pi int) bool {
	p := doc.Paragraphs[pi]
	if len(p.Segments) == 0 {
		return false
	}
	for _, si := range p.Segments {
		seg := doc.Segments[si]
		if !seg.IsBulletPlaceholder && !seg.IsWhitespace {
			return false
		}
	}
	return true
}

// fillParagraph plans the rewrite of one targeted paragraph.
func fillParagraph(doc *Document, plan *editPlan, pi int, targets []int, fills map[int]string) error {
	p := doc.Paragraphs[pi]
	paraXML := doc.XML[p.Start:p.End]
	section := doc.Segments[targets[0]].Section
	inWorkEdu := section == SectionWorkExperience || section == SectionEducation

	// A "Label:" run anywhere in the paragraph marks it label:value.
	label := ""
	for _, si := range p.Segments {
		if m := labelRe.FindStringSubmatch(doc.Segments[si].Text); m != nil {
			label = m[1]
			break
		}
	}

	switch {
	case label != "" && !inWorkEdu:
		value := joinFills(doc, targets, fills)
		value = strings.ReplaceAll(value, "\n", " ")
		rPr := firstRunProps(paraXML)
		contentStart, pPr := paragraphProps(doc.XML, p)
		body := pPr + makeRun(rPr, label+": "+strings.TrimSpace(value))
		plan.replace(contentStart, p.End-len("</w:p>"), body)

	case label != "" && inWorkEdu:
		value := joinFills(doc, targets, fills)
		return planTabAligned(doc, plan, p, paraXML, label, value)

	case inWorkEdu && len(targets) >= 2 && strings.Contains(paraXML, "<w:tab/>"):
		// Manual tab layout: split runs at the first tab, left side is the
		// label, right side the value. "<w:tab/>" is the run-level tab
		// character; "<w:tab w:pos=...>" inside <w:tabs> is only a stop
		// definition.
		tabOff := p.Start + strings.Index(paraXML, "<w:tab/>")
		var labelParts, valueParts []string
		for _, si := range p.Segments {
			seg := doc.Segments[si]
			text := seg.Text
			if v, ok := fills[si]; ok {
				text = v
			}
			if seg.Start < tabOff {
				labelParts = append(labelParts, text)
			} else {
				valueParts = append(valueParts, text)
			}
		}
		label := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(strings.Join(labelParts, "")), ":"))
		value := strings.TrimPrefix(strings.Join(valueParts, ""), ": ")
		return planTabAligned(doc, plan, p, paraXML, label, value)

	default:
		// Free text: rewrite each targeted run's inner text in place.
		for _, si := range targets {
			seg := doc.Segments[si]
			plan.replace(seg.Start, seg.End, escapeText(fills[si]))
		}
	}
	return nil
}

// joinFills concatenates the replacement text of the targeted segments in
// document order.
func joinFills(doc *Document, targets []int, fills map[int]string) string {
	var sb strings.Builder
	for _, si := range targets {
		sb.WriteString(fills[si])
	}
	return sb.String()
}

// planTabAligned replaces a whole paragraph with the two-run tab layout:
// label run, explicit tab, value run, with a tab stop at the value column.
// Value lines past the first become sibling paragraphs indented to the same
// column, carrying the original run formatting.
func planTabAligned(doc *Document, plan *editPlan, p Paragraph, paraXML, label, value string) error {
	rPr := firstRunProps(paraXML)
	openTag := paraXML[:strings.Index(paraXML, ">")+1]
	pos := existingTabStop(paraXML)

	lines := strings.Split(value, "\n")
	first := strings.TrimSpace(lines[0])

	var sb strings.Builder
	sb.WriteString(openTag)
	sb.WriteString(tabbedProps(paraXML, pos))
	sb.WriteString(makeRun(rPr, label+":"))
	sb.WriteString("<w:r>" + rPr + "<w:tab/></w:r>")
	sb.WriteString(makeRun(rPr, first))
	sb.WriteString("</w:p>")

	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" || bulletPlaceholderRe.MatchString(line) {
			continue
		}
		sb.WriteString(`<w:p><w:pPr><w:ind w:left="` + strconv.Itoa(pos) + `"/></w:pPr>`)
		sb.WriteString(makeRun(rPr, line))
		sb.WriteString("</w:p>")
	}

	plan.replace(p.Start, p.End, sb.String())
	return nil
}

var (
	pPrRe     = regexp.MustCompile(`<w:pPr(?: [^>]*)?>(?s:.*?)</w:pPr>|<w:pPr/>`)
	rPrRe     = regexp.MustCompile(`<w:rPr(?: [^>]*)?>(?s:.*?)</w:rPr>`)
	tabStopRe = regexp.MustCompile(`<w:tab [^>]*w:pos="(\d+)"`)
)

// paragraphProps returns the paragraph's <w:pPr> block (possibly "") and the
// absolute offset where run content starts.
func paragraphProps(xml string, p Paragraph) (contentStart int, pPr string) {
	open := strings.Index(xml[p.Start:p.End], ">")
	contentStart = p.Start + open + 1
	if loc := pPrRe.FindStringIndex(xml[contentStart:p.End]); loc != nil && loc[0] == 0 {
		pPr = xml[contentStart : contentStart+loc[1]]
	}
	return contentStart, pPr
}

// firstRunProps returns the first <w:rPr> block in the paragraph so rebuilt
// runs keep the template's character formatting.
func firstRunProps(paraXML string) string {
	return rPrRe.FindString(paraXML)
}

// existingTabStop returns the paragraph's first defined tab stop position,
// or defaultTabPos when it has none.
func existingTabStop(paraXML string) int {
	if m := tabStopRe.FindStringSubmatch(paraXML); m != nil {
		if pos, err := strconv.Atoi(m[1]); err == nil && pos > 0 {
			return pos
		}
	}
	return defaultTabPos
}

// tabbedProps produces the paragraph properties for a tab-aligned rewrite:
// the existing pPr with a <w:tabs> block ensured, or a fresh minimal one.
func tabbedProps(paraXML string, pos int) string {
	tabs := `<w:tabs><w:tab w:val="left" w:pos="` + strconv.Itoa(pos) + `"/></w:tabs>`
	pPr := pPrRe.FindString(paraXML)
	if pPr == "" || pPr == "<w:pPr/>" {
		return "<w:pPr>" + tabs + "</w:pPr>"
	}
	if strings.Contains(pPr, "<w:tabs>") {
		return pPr // paragraph already aligns somewhere; reuse it
	}
	return strings.Replace(pPr, "<w:pPr>", "<w:pPr>"+tabs, 1)
}

// makeRun builds a single run with the given formatting and literal text.
func makeRun(rPr, text string) string {
	return "<w:r>" + rPr + `<w:t xml:space="preserve">` + escapeText(text) + "</w:t></w:r>"
}

// RemoveEmptyBulletParagraphs deletes every paragraph whose combined visible
// text is a lone dash or bullet. Running it on its own output is a no-op.
func RemoveEmptyBulletParagraphs(xml string) string {
	doc := Extract(xml)
	plan := &editPlan{}
	for pi := range doc.Paragraphs {
		if len(doc.Paragraphs[pi].Segments) == 0 {
			continue
		}
		if bulletPlaceholderRe.MatchString(doc.paragraphText(pi)) {
			plan.delete(doc.Paragraphs[pi].Start, doc.Paragraphs[pi].End)
		}
	}
	out, err := plan.apply(xml)
	if err != nil {
		return xml
	}
	return out
}
