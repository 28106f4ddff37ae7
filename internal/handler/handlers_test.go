package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/cvstudio-api/internal/docx"
	"github.com/yourusername/cvstudio-api/internal/model"
)

func TestMergeEnrichedKeepsStructure(t *testing.T) {
	orig := model.ParsedLinkedIn{
		FullName: "Jane Doe",
		Headline: "dev",
		Experience: []model.Experience{
			{Title: "eng", Company: "Initech", Description: "did stuff"},
			{Title: "jr", Company: "Globex"},
		},
	}

	enriched := orig
	enriched.Headline = "Software Engineer"
	enriched.Experience = []model.Experience{
		{Title: "Engineer", Company: "WrongCo", Description: "Built and operated backend services."},
		{Title: "Junior Engineer", Company: "AlsoWrong"},
	}

	merged := mergeEnriched(orig, enriched)

	assert.Equal(t, "Software Engineer", merged.Headline)
	assert.Equal(t, "Engineer", merged.Experience[0].Title)
	assert.Equal(t, "Built and operated backend services.", merged.Experience[0].Description)
	// Only text fields move; companies are facts, not prose.
	assert.Equal(t, "Initech", merged.Experience[0].Company)
}

func TestMergeEnrichedRejectsReshapedArrays(t *testing.T) {
	orig := model.ParsedLinkedIn{
		FullName:   "Jane Doe",
		Experience: []model.Experience{{Title: "eng"}, {Title: "jr"}},
	}
	enriched := model.ParsedLinkedIn{
		Experience: []model.Experience{{Title: "Engineer, now with an invented second job"}},
	}

	merged := mergeEnriched(orig, enriched)
	require.Len(t, merged.Experience, 2)
	assert.Equal(t, "eng", merged.Experience[0].Title, "length mismatch keeps the original array")
}

func TestSegmentListingSkipsWhitespace(t *testing.T) {
	xml := `<w:document><w:body>` +
		`<w:p><w:r><w:t>Work Experience</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>  </w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>2019 - 2021</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	doc := docx.Extract(xml)

	listing := segmentListing(doc)
	assert.Contains(t, listing, `[0] (work_experience HEADING) "Work Experience"`)
	assert.Contains(t, listing, `[2] (work_experience) "2019 - 2021"`)
	assert.NotContains(t, listing, "[1]")
}

func TestFillAuxiliaryPart(t *testing.T) {
	profile := &model.ParsedLinkedIn{FullName: "Jane Doe", Email: "jane@example.com"}
	xml := `<w:document><w:body>` +
		`<w:p><w:r><w:t>{{full_name}}</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Page numbering</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	out := fillAuxiliaryPart(xml, profile)
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "Page numbering", "non-placeholder text is untouched")

	// No recognizable placeholders: the part passes through verbatim.
	plain := `<w:document><w:body><w:p><w:r><w:t>Footer</w:t></w:r></w:p></w:body></w:document>`
	assert.Equal(t, plain, fillAuxiliaryPart(plain, profile))
}

func TestHTMLEscape(t *testing.T) {
	assert.Equal(t, "a &amp; b &lt;c&gt;", htmlEscape("a & b <c>"))
	assert.False(t, strings.Contains(htmlEscape("<script>"), "<"))
}
