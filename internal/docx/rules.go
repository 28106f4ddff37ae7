package docx

import (
	"regexp"

	"github.com/yourusername/cvstudio-api/internal/model"
)

// SectionType labels the logical CV section a segment belongs to.
type SectionType string

const (
	SectionUnknown        SectionType = "unknown"
	SectionPersonal       SectionType = "personal"
	SectionWorkExperience SectionType = "work_experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionLanguages      SectionType = "languages"
	SectionCertifications SectionType = "certifications"
	SectionProfile        SectionType = "profile"
)

// maxHeadingLen guards against body text that happens to start with a
// section word. Anything longer is never treated as a heading.
const maxHeadingLen = 50

// sectionRule maps heading text to a section. Rules are evaluated in order;
// the first match wins. Dutch and English synonyms live in the same pattern
// so templates in either language resolve to the same section.
type sectionRule struct {
	Type    SectionType
	Pattern *regexp.Regexp
}

var sectionRules = []sectionRule{
	{SectionWorkExperience, regexp.MustCompile(`(?i)^(werk\s*ervaring|werkervaring|work\s*experience|professional\s*experience|employment(\s*history)?|ervaring|experience)\b`)},
	{SectionEducation, regexp.MustCompile(`(?i)^(opleiding(en)?|onderwijs|education|studies|academic\s*background)\b`)},
	{SectionSkills, regexp.MustCompile(`(?i)^(vaardigheden|competenties|skills|expertise|kerncompetenties)\b`)},
	{SectionLanguages, regexp.MustCompile(`(?i)^(talen(kennis)?|languages?)\b`)},
	{SectionCertifications, regexp.MustCompile(`(?i)^(certificer?ingen|certificaten|certifications?|cursussen|courses)\b`)},
	{SectionPersonal, regexp.MustCompile(`(?i)^(personalia|persoonlijke\s*gegevens|personal\s*(details|information)|contact(gegevens)?)\b`)},
	{SectionProfile, regexp.MustCompile(`(?i)^(profiel|profile|samenvatting|summary|over\s*mij|about\s*me)\b`)},
}

// matchSection returns the section a heading-like paragraph opens, or
// SectionUnknown if the text is not a heading.
func matchSection(text string) SectionType {
	if len(text) > maxHeadingLen {
		return SectionUnknown
	}
	for _, rule := range sectionRules {
		if rule.Pattern.MatchString(text) {
			return rule.Type
		}
	}
	return SectionUnknown
}

// bulletPlaceholderRe matches empty template bullets awaiting content.
var bulletPlaceholderRe = regexp.MustCompile(`^\s*[-•]\s*$`)

// labelRe matches a "Field name:" label run (value still missing).
var labelRe = regexp.MustCompile(`^(.+?)\s*:\s*$`)

// Date-range patterns delimit repeating blocks. Work experience requires a
// full range; education also accepts a lone year (degrees often print only
// the graduation year).
var (
	workDateRangeRe = regexp.MustCompile(`\d{4}\s*[-–—]\s*(\d{4}|[Hh]eden|[Pp]resent|[Nn]u|[Nn]ow|[Cc]urrent)`)
	eduDateRangeRe  = regexp.MustCompile(`\d{4}(\s*[-–—]\s*(\d{4}|[Hh]eden|[Pp]resent|[Nn]u|[Nn]ow|[Cc]urrent))?`)
)

// dateRangePattern returns the slot-delimiter pattern for a section, or nil
// when the section has no repeating-block semantics.
func dateRangePattern(section SectionType) *regexp.Regexp {
	switch section {
	case SectionWorkExperience:
		return workDateRangeRe
	case SectionEducation:
		return eduDateRangeRe
	}
	return nil
}

// fieldNameRule maps a placeholder label or token to a profile field.
type fieldNameRule struct {
	Pattern    *regexp.Regexp
	Mapping    model.ProfileFieldMapping
	Confidence string
}

var fieldNameRules = []fieldNameRule{
	{regexp.MustCompile(`(?i)^(naam|volledige\s*naam|full[\s_]?name|name)$`), model.ProfileFieldMapping{Type: model.MappingPersonal, Field: "fullName"}, model.ConfidenceHigh},
	{regexp.MustCompile(`(?i)^(e-?mail(adres)?)$`), model.ProfileFieldMapping{Type: model.MappingPersonal, Field: "email"}, model.ConfidenceHigh},
	{regexp.MustCompile(`(?i)^(telefoon(nummer)?|phone|tel|mobile|mobiel)$`), model.ProfileFieldMapping{Type: model.MappingPersonal, Field: "phone"}, model.ConfidenceHigh},
	{regexp.MustCompile(`(?i)^(woonplaats|adres|locatie|location|address|city)$`), model.ProfileFieldMapping{Type: model.MappingPersonal, Field: "location"}, model.ConfidenceMedium},
	{regexp.MustCompile(`(?i)^(headline|titel|kop)$`), model.ProfileFieldMapping{Type: model.MappingPersonal, Field: "headline"}, model.ConfidenceMedium},
	{regexp.MustCompile(`(?i)^(profiel|profile|samenvatting|summary|about|over\s*mij)$`), model.ProfileFieldMapping{Type: model.MappingPersonal, Field: "about"}, model.ConfidenceMedium},
	{regexp.MustCompile(`(?i)^(functie(titel)?|job\s*title|title|role|rol)$`), model.ProfileFieldMapping{Type: model.MappingExperience, Field: "title"}, model.ConfidenceMedium},
	{regexp.MustCompile(`(?i)^(bedrijf|werkgever|company|employer|organisatie)$`), model.ProfileFieldMapping{Type: model.MappingExperience, Field: "company"}, model.ConfidenceMedium},
	{regexp.MustCompile(`(?i)^(periode|period|datum|dates?)$`), model.ProfileFieldMapping{Type: model.MappingExperience, Field: "dateRange"}, model.ConfidenceLow},
	{regexp.MustCompile(`(?i)^(opleiding|studie|school|degree|education)$`), model.ProfileFieldMapping{Type: model.MappingEducation, Field: "school"}, model.ConfidenceLow},
}

// matchFieldName resolves a placeholder label to a mapping. The boolean is
// false when no rule matches.
func matchFieldName(label string) (model.ProfileFieldMapping, string, bool) {
	for _, rule := range fieldNameRules {
		if rule.Pattern.MatchString(label) {
			return rule.Mapping, rule.Confidence, true
		}
	}
	return model.ProfileFieldMapping{}, "", false
}
