package style

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/cvstudio-api/internal/model"
	"github.com/yourusername/cvstudio-api/internal/prompt"
)

func sampleCV(t *testing.T) *prompt.GeneratedCV {
	t.Helper()
	raw := `{
		"headline": "Engineer bridging data and product",
		"summary": "Ten years of shipping.",
		"experience": [{"title": "Engineer", "company": "Initech", "dateRange": "2019 - Present", "bullets": ["Shipped things"]}],
		"education": [{"school": "TU Delft", "degree": "MSc", "dateRange": "2015 - 2019"}],
		"skills": ["Go", "SQL"]
	}`
	var cv prompt.GeneratedCV
	require.NoError(t, json.Unmarshal([]byte(raw), &cv))
	return &cv
}

func TestRenderHTML(t *testing.T) {
	profile := &model.ParsedLinkedIn{
		FullName: "Jane Doe",
		Location: "Amsterdam",
		Email:    "jane@example.com",
	}

	html, err := RenderHTML(profile, sampleCV(t), DefaultTokens("modern"))
	require.NoError(t, err)

	assert.Contains(t, html, "<h1>Jane Doe</h1>")
	assert.Contains(t, html, "Engineer bridging data and product")
	assert.Contains(t, html, "Amsterdam · jane@example.com")
	assert.Contains(t, html, "Initech")
	assert.Contains(t, html, "TU Delft")
	assert.Contains(t, html, "Shipped things")
	assert.Contains(t, html, "#334155", "token CSS is inlined")
}

func TestRenderHTMLEscapesUserData(t *testing.T) {
	profile := &model.ParsedLinkedIn{FullName: `Jane <script>alert(1)</script>`}
	cv := &prompt.GeneratedCV{Summary: "a & b"}

	html, err := RenderHTML(profile, cv, DefaultTokens("minimal"))
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>alert")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderHTMLOmitsEmptySections(t *testing.T) {
	profile := &model.ParsedLinkedIn{FullName: "Jane Doe"}
	cv := &prompt.GeneratedCV{Summary: "Short."}

	html, err := RenderHTML(profile, cv, DefaultTokens("classic"))
	require.NoError(t, err)

	assert.NotContains(t, html, "<h2>Experience</h2>")
	assert.NotContains(t, html, "<h2>Skills</h2>")
	assert.Contains(t, html, "<h2>Summary</h2>")
}
