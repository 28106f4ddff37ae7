package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveMapping(t *testing.T) {
	p := &ParsedLinkedIn{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Experience: []Experience{
			{Title: "Engineer", Company: "Initech", StartDate: "2019", EndDate: "2021"},
		},
		Education: []Education{{School: "TU Delft", Degree: "MSc"}},
		Skills:    []Skill{{Name: "Go"}},
		Languages: []Language{{Language: "Dutch", Proficiency: "Native"}},
	}

	assert.Equal(t, "Jane Doe", ResolveMapping(p, ProfileFieldMapping{Type: MappingPersonal, Field: "fullName"}))
	assert.Equal(t, "Initech", ResolveMapping(p, ProfileFieldMapping{Type: MappingExperience, Index: 0, Field: "company"}))
	assert.Equal(t, "2019 - 2021", ResolveMapping(p, ProfileFieldMapping{Type: MappingExperience, Index: 0, Field: "dateRange"}))
	assert.Equal(t, "TU Delft", ResolveMapping(p, ProfileFieldMapping{Type: MappingEducation, Index: 0, Field: "school"}))
	assert.Equal(t, "Go", ResolveMapping(p, ProfileFieldMapping{Type: MappingSkill, Index: 0}))
	assert.Equal(t, "Native", ResolveMapping(p, ProfileFieldMapping{Type: MappingLanguage, Index: 0, Field: "proficiency"}))
	assert.Equal(t, "anything", ResolveMapping(p, ProfileFieldMapping{Type: MappingCustom, Value: "anything"}))
}

func TestResolveMappingOutOfRange(t *testing.T) {
	p := &ParsedLinkedIn{FullName: "Jane Doe"}

	assert.Empty(t, ResolveMapping(p, ProfileFieldMapping{Type: MappingExperience, Index: 3, Field: "title"}))
	assert.Empty(t, ResolveMapping(p, ProfileFieldMapping{Type: MappingSkill, Index: -1}))
	assert.Empty(t, ResolveMapping(p, ProfileFieldMapping{Type: MappingPersonal, Field: "no-such-field"}))
	assert.Empty(t, ResolveMapping(p, ProfileFieldMapping{Type: "bogus"}))
}

func TestExperienceDateRange(t *testing.T) {
	assert.Equal(t, "2019 - 2021", Experience{StartDate: "2019", EndDate: "2021"}.DateRange())
	assert.Equal(t, "2019 - Present", Experience{StartDate: "2019", IsCurrentRole: true}.DateRange())
	assert.Equal(t, "2019 - Present", Experience{StartDate: "2019"}.DateRange())
	assert.Equal(t, "Present", Experience{}.DateRange())
}

func TestUserCredits(t *testing.T) {
	u := &User{FreeCredits: 3, PurchasedCredits: 7}
	assert.Equal(t, 10, u.Credits())
}

func TestFindCreditPack(t *testing.T) {
	assert.NotNil(t, FindCreditPack("pack_small"))
	assert.Equal(t, 60, FindCreditPack("pack_medium").Credits)
	assert.Nil(t, FindCreditPack("pack_enormous"))
}
