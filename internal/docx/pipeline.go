package docx

import "fmt"

// Prepared is the intermediate state between structural preparation and
// filling: the template XML after block duplication, freshly re-extracted so
// every offset is valid.
type Prepared struct {
	Doc             *Document
	WorkSlots       []Slot
	EducationSlots  []Slot
	WorkCopies      int
	EducationCopies int
}

// Prepare runs the structural half of the fill pipeline: extract, detect the
// work-experience and education blocks, duplicate each section's last block
// until the template has room for every profile entry, and re-extract.
//
// A section with entries to place but no detectable block fails with
// ErrNoSlots rather than silently leaving entries unplaced.
func Prepare(xml string, workEntries, eduEntries int) (*Prepared, error) {
	doc := Extract(xml)
	prep := &Prepared{}

	workSlots := DetectSlots(doc, SectionWorkExperience)
	if workEntries > 0 && len(workSlots) == 0 && sectionPresent(doc, SectionWorkExperience) {
		return nil, fmt.Errorf("work experience: %w", ErrNoSlots)
	}
	if workEntries > len(workSlots) && len(workSlots) > 0 {
		out, copies, err := DuplicateLastSlot(xml, workSlots, workEntries)
		if err != nil {
			return nil, fmt.Errorf("duplicating work block: %w", err)
		}
		xml = out
		prep.WorkCopies = copies
		doc = Extract(xml)
	}

	eduSlots := DetectSlots(doc, SectionEducation)
	if eduEntries > 0 && len(eduSlots) == 0 && sectionPresent(doc, SectionEducation) {
		return nil, fmt.Errorf("education: %w", ErrNoSlots)
	}
	if eduEntries > len(eduSlots) && len(eduSlots) > 0 {
		out, copies, err := DuplicateLastSlot(xml, eduSlots, eduEntries)
		if err != nil {
			return nil, fmt.Errorf("duplicating education block: %w", err)
		}
		xml = out
		prep.EducationCopies = copies
		doc = Extract(xml)
	}

	prep.Doc = doc
	prep.WorkSlots = DetectSlots(doc, SectionWorkExperience)
	prep.EducationSlots = DetectSlots(doc, SectionEducation)
	return prep, nil
}

// Apply finishes the pipeline: splice the fills and clean leftover bullets.
func (p *Prepared) Apply(fills map[int]string) (string, error) {
	out, err := ApplyFills(p.Doc, fills)
	if err != nil {
		return "", err
	}
	return RemoveEmptyBulletParagraphs(out), nil
}

func sectionPresent(doc *Document, section SectionType) bool {
	for _, s := range doc.Sections {
		if s.Type == section {
			return true
		}
	}
	return false
}
