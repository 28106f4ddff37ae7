package docx

import (
	"regexp"
	"strings"
)

// Segment is one <w:t> run in document order. Start and End are byte offsets
// of the run's inner text within the raw XML string; they are only valid for
// the exact XML the segment was extracted from.
type Segment struct {
	Index               int         `json:"index"`
	Text                string      `json:"text"`
	Start               int         `json:"start"`
	End                 int         `json:"end"`
	Section             SectionType `json:"section"`
	IsHeader            bool        `json:"isHeader,omitempty"`
	IsWhitespace        bool        `json:"isWhitespace,omitempty"`
	IsBulletPlaceholder bool        `json:"isBulletPlaceholder,omitempty"`

	// Para indexes into Document.Paragraphs.
	Para int `json:"-"`
}

// Paragraph is the span of one <w:p>...</w:p> element, with the indices of
// the segments it encloses. End is exclusive.
type Paragraph struct {
	Start    int
	End      int
	Segments []int
}

// SectionInfo is a contiguous run of segment indices sharing a section.
// EndIndex is exclusive; the ranges returned by Extract tile
// [0, len(Segments)) with no gaps or overlaps.
type SectionInfo struct {
	Type       SectionType
	StartIndex int
	EndIndex   int
}

// Document is the parsed view of one document.xml body. Segments are
// ephemeral: any mutation of the XML invalidates them and requires a fresh
// Extract.
type Document struct {
	XML        string
	Segments   []Segment
	Paragraphs []Paragraph
	Sections   []SectionInfo
}

var (
	// <w:p > or <w:p> but never <w:pPr>, <w:pgSz> etc.
	paraOpenRe = regexp.MustCompile(`<w:p(?: [^>]*)?>`)
	runTextRe  = regexp.MustCompile(`<w:t(?: [^>]*)?>`)
)

// Extract parses raw document.xml text into segments, paragraphs and
// sections. It never fails: a document with no headings comes back as one
// "unknown" section spanning everything.
func Extract(xml string) *Document {
	doc := &Document{XML: xml}

	doc.Paragraphs = findParagraphs(xml)

	// Collect segments and attach each to its enclosing paragraph.
	para := 0
	for _, loc := range runTextRe.FindAllStringIndex(xml, -1) {
		if selfClosing(xml[loc[0]:loc[1]]) {
			continue
		}
		innerStart := loc[1]
		rel := strings.Index(xml[innerStart:], "</w:t>")
		if rel < 0 {
			continue
		}
		innerEnd := innerStart + rel

		seg := Segment{
			Index: len(doc.Segments),
			Text:  decodeEntities(xml[innerStart:innerEnd]),
			Start: innerStart,
			End:   innerEnd,
			Para:  -1,
		}
		seg.IsWhitespace = strings.TrimSpace(seg.Text) == ""

		for para < len(doc.Paragraphs) && doc.Paragraphs[para].End <= innerStart {
			para++
		}
		if para < len(doc.Paragraphs) && doc.Paragraphs[para].Start <= innerStart {
			seg.Para = para
			doc.Paragraphs[para].Segments = append(doc.Paragraphs[para].Segments, seg.Index)
		}

		doc.Segments = append(doc.Segments, seg)
	}

	doc.assignSections()
	return doc
}

// findParagraphs locates every <w:p>...</w:p> span in document order.
// Paragraphs do not nest in WordprocessingML, so pairing each opening tag
// with the next closing tag is sufficient.
func findParagraphs(xml string) []Paragraph {
	var paras []Paragraph
	for _, loc := range paraOpenRe.FindAllStringIndex(xml, -1) {
		// Word emits empty paragraphs as self-closing <w:p .../> tags; those
		// have no closing tag of their own and must not steal the next one.
		if selfClosing(xml[loc[0]:loc[1]]) {
			continue
		}
		rel := strings.Index(xml[loc[1]:], "</w:p>")
		if rel < 0 {
			continue
		}
		paras = append(paras, Paragraph{Start: loc[0], End: loc[1] + rel + len("</w:p>")})
	}
	return paras
}

func selfClosing(tag string) bool { return strings.HasSuffix(tag, "/>") }

// assignSections scans paragraphs for heading text and carves the segment
// index space into contiguous section ranges. A heading paragraph belongs to
// the section it opens.
func (d *Document) assignSections() {
	current := SectionUnknown
	sectionStart := 0

	for pi := range d.Paragraphs {
		p := &d.Paragraphs[pi]
		if len(p.Segments) == 0 {
			continue
		}
		text := strings.TrimSpace(d.paragraphText(pi))

		if sec := matchSection(text); sec != SectionUnknown {
			first := p.Segments[0]
			if first > sectionStart {
				d.Sections = append(d.Sections, SectionInfo{current, sectionStart, first})
			}
			current = sec
			sectionStart = first
			for _, si := range p.Segments {
				d.Segments[si].IsHeader = true
			}
		}

		bullet := bulletPlaceholderRe.MatchString(text)
		for _, si := range p.Segments {
			d.Segments[si].Section = current
			if bullet {
				d.Segments[si].IsBulletPlaceholder = true
			}
		}
	}

	if sectionStart < len(d.Segments) {
		d.Sections = append(d.Sections, SectionInfo{current, sectionStart, len(d.Segments)})
	}
}

// paragraphText concatenates the decoded text of a paragraph's segments.
func (d *Document) paragraphText(pi int) string {
	var sb strings.Builder
	for _, si := range d.Paragraphs[pi].Segments {
		sb.WriteString(d.Segments[si].Text)
	}
	return sb.String()
}

// ParagraphText returns the combined visible text of the paragraph that
// contains segment si, or "" when the segment sits outside any paragraph.
func (d *Document) ParagraphText(si int) string {
	if si < 0 || si >= len(d.Segments) || d.Segments[si].Para < 0 {
		return ""
	}
	return d.paragraphText(d.Segments[si].Para)
}

// ── XML text escaping ──────────────────────────────────

var entityDecoder = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

var entityEncoder = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

func decodeEntities(s string) string { return entityDecoder.Replace(s) }

// escapeText prepares replacement text for splicing into a <w:t> element.
func escapeText(s string) string { return entityEncoder.Replace(s) }
