package docx

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yourusername/cvstudio-api/internal/model"
)

var (
	explicitPlaceholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\- ]+?)\s*\}\}`)
	labelLineRe           = regexp.MustCompile(`(?m)^([A-Za-z][A-Za-z /&\-]{0,30}?)\s*:\s*$`)
)

// DetectPlaceholders scans a template's plain text for fillable spans:
// explicit {{token}} markers and bare "Label:" lines awaiting a value.
// Unrecognized labels come back as low-confidence custom mappings so the
// dashboard can still offer them for manual assignment.
func DetectPlaceholders(text string) []model.DocxPlaceholder {
	var out []model.DocxPlaceholder
	seen := make(map[string]bool)

	for _, m := range explicitPlaceholderRe.FindAllStringSubmatch(text, -1) {
		token := m[1]
		if seen[m[0]] {
			continue
		}
		seen[m[0]] = true

		mapping, confidence, ok := matchFieldName(normalizeToken(token))
		if !ok {
			mapping = model.ProfileFieldMapping{Type: model.MappingCustom}
			confidence = model.ConfidenceLow
		} else {
			// An explicit marker is deliberate; trust it more than a label.
			confidence = model.ConfidenceHigh
		}
		out = append(out, model.DocxPlaceholder{
			ID:              fmt.Sprintf("ph_%d", len(out)+1),
			OriginalText:    m[0],
			PlaceholderType: model.PlaceholderExplicit,
			Mapping:         mapping,
			Confidence:      confidence,
		})
	}

	for _, m := range labelLineRe.FindAllStringSubmatch(text, -1) {
		label := strings.TrimSpace(m[1])
		if seen[m[0]] {
			continue
		}
		seen[m[0]] = true

		mapping, confidence, ok := matchFieldName(label)
		if !ok {
			mapping = model.ProfileFieldMapping{Type: model.MappingCustom}
			confidence = model.ConfidenceLow
		}
		out = append(out, model.DocxPlaceholder{
			ID:              fmt.Sprintf("ph_%d", len(out)+1),
			OriginalText:    m[0],
			PlaceholderType: model.PlaceholderLabelWithSpace,
			Mapping:         mapping,
			Confidence:      confidence,
		})
	}

	return out
}

// normalizeToken turns {{full_name}} style tokens into label form so the
// same field-name rules cover both placeholder kinds.
func normalizeToken(token string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(token, "_", " "), ".", " "))
}

// PlainText concatenates the document's visible text, one line per
// paragraph, for placeholder scanning.
func (d *Document) PlainText() string {
	var sb strings.Builder
	for pi := range d.Paragraphs {
		if len(d.Paragraphs[pi].Segments) == 0 {
			continue
		}
		sb.WriteString(d.paragraphText(pi))
		sb.WriteString("\n")
	}
	return sb.String()
}
