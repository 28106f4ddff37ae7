package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/cvstudio-api/internal/model"
)

func sampleProfile() *model.ParsedLinkedIn {
	return &model.ParsedLinkedIn{
		FullName: "Jane Doe",
		Headline: "Software Engineer",
		Location: "Amsterdam",
		Experience: []model.Experience{
			{Title: "Engineer", Company: "Initech", StartDate: "2019", IsCurrentRole: true, Description: "Built services."},
			{Title: "Junior", Company: "Globex", StartDate: "2016", EndDate: "2019"},
		},
		Education: []model.Education{{School: "TU Delft", Degree: "MSc", FieldOfStudy: "CS"}},
		Skills:    []model.Skill{{Name: "Go"}, {Name: "SQL"}},
		Languages: []model.Language{{Language: "Dutch", Proficiency: "Native"}},
	}
}

func TestBuildCVPromptDeterministic(t *testing.T) {
	p := sampleProfile()
	a := BuildCVPrompt(p, nil, Options{})
	b := BuildCVPrompt(p, nil, Options{})
	assert.Equal(t, a, b)
}

func TestBuildCVPromptSerializesProfile(t *testing.T) {
	out := BuildCVPrompt(sampleProfile(), nil, Options{})

	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "Engineer at Initech (2019 - Present)")
	assert.Contains(t, out, "Junior at Globex (2016 - 2019)")
	assert.Contains(t, out, "TU Delft, MSc in CS")
	assert.Contains(t, out, "SKILLS: Go, SQL")
	assert.Contains(t, out, "Dutch (Native)")
}

func TestHeadlineOnlyWithJob(t *testing.T) {
	p := sampleProfile()

	without := BuildCVPrompt(p, nil, Options{})
	assert.Contains(t, without, "omit the headline")

	job := &model.JobVacancy{Title: "Staff Engineer", Description: "Build platforms."}
	with := BuildCVPrompt(p, job, Options{})
	assert.Contains(t, with, "Include a headline")
	assert.Contains(t, with, "Do not inflate seniority")
	assert.Contains(t, with, "Staff Engineer")
}

func TestIndustryGuidanceBuckets(t *testing.T) {
	cases := map[string]string{
		"Software / SaaS":        "technical stack",
		"IT":                     "technical stack",
		"Information Technology": "technical stack",
		"FinTech":                "regulatory",
		"Financial Services":     "regulatory",
		"Healthcare":             "compliance",
		"Management Consulting":  "client engagements",
		"Digital Marketing":      "campaign results",
		"E-commerce consumer":    "conversion",
		"Hospitality":            "transferable achievements", // "it" only matches as a whole word
		"Recruiting":             "transferable achievements",
		"Forestry":               "transferable achievements",
		"":                       "transferable achievements",
	}
	for industry, want := range cases {
		assert.Contains(t, industryGuidance(industry), want, "industry %q", industry)
	}
}

func TestLanguageAndFormatOptions(t *testing.T) {
	p := sampleProfile()

	def := BuildCVPrompt(p, nil, Options{})
	assert.Contains(t, def, "Write all output in English.")
	assert.Contains(t, def, "2-4 concise bullets")

	nl := BuildCVPrompt(p, nil, Options{Language: "Dutch", DescriptionFormat: "paragraph"})
	assert.Contains(t, nl, "Write all output in Dutch.")
	assert.Contains(t, nl, "short paragraph")
}

func TestSystemPromptsCarryHonestyPolicy(t *testing.T) {
	for name, sys := range map[string]string{
		"cv":       CVSystemPrompt,
		"linkedin": LinkedInSystemPrompt,
		"enrich":   EnrichSystemPrompt,
		"fill":     FillSystemPrompt,
	} {
		assert.Contains(t, sys, "NEVER fabricate", "system prompt %q", name)
		assert.Contains(t, sys, "ONLY a JSON object", "system prompt %q", name)
	}
}

func TestBuildFillPromptIncludesSegmentsAndProfile(t *testing.T) {
	out := BuildFillPrompt("[0] (personal) \"Naam:\"\n", sampleProfile())
	assert.True(t, strings.HasPrefix(out, "TEMPLATE SEGMENTS:"))
	assert.Contains(t, out, "Naam:")
	assert.Contains(t, out, "Jane Doe")
}
