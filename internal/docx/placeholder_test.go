package docx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/cvstudio-api/internal/model"
)

func TestDetectExplicitPlaceholders(t *testing.T) {
	text := "CV of {{full_name}}\nContact: {{email}}\n"
	phs := DetectPlaceholders(text)
	require.Len(t, phs, 2)

	assert.Equal(t, model.PlaceholderExplicit, phs[0].PlaceholderType)
	assert.Equal(t, "{{full_name}}", phs[0].OriginalText)
	assert.Equal(t, model.MappingPersonal, phs[0].Mapping.Type)
	assert.Equal(t, "fullName", phs[0].Mapping.Field)
	assert.Equal(t, model.ConfidenceHigh, phs[0].Confidence, "explicit markers are trusted")

	assert.Equal(t, "email", phs[1].Mapping.Field)
}

func TestUnknownExplicitTokenFallsBackToCustom(t *testing.T) {
	phs := DetectPlaceholders("{{favorite_color}}")
	require.Len(t, phs, 1)
	assert.Equal(t, model.MappingCustom, phs[0].Mapping.Type)
	assert.Equal(t, model.ConfidenceLow, phs[0].Confidence)
}

func TestDetectLabelPlaceholders(t *testing.T) {
	text := "Naam:\nTelefoon:\nHobby:\n"
	phs := DetectPlaceholders(text)
	require.Len(t, phs, 3)

	assert.Equal(t, model.PlaceholderLabelWithSpace, phs[0].PlaceholderType)
	assert.Equal(t, "fullName", phs[0].Mapping.Field)
	assert.Equal(t, "phone", phs[1].Mapping.Field)

	// Unrecognized label still surfaces, for manual assignment.
	assert.Equal(t, model.MappingCustom, phs[2].Mapping.Type)
	assert.Equal(t, model.ConfidenceLow, phs[2].Confidence)
}

func TestDuplicatePlaceholdersReportedOnce(t *testing.T) {
	phs := DetectPlaceholders("{{email}} and again {{email}}")
	assert.Len(t, phs, 1)
}

func TestLabelWithValueIsNotAPlaceholder(t *testing.T) {
	phs := DetectPlaceholders("Naam: Jane Doe\n")
	assert.Empty(t, phs, "a label already followed by a value needs no fill")
}

func TestPlainTextJoinsParagraphs(t *testing.T) {
	doc := Extract(body(p("Naam:"), p("Telefoon:")))
	assert.Equal(t, "Naam:\nTelefoon:\n", doc.PlainText())
}
