package model

import (
	"time"

	"github.com/google/uuid"
)

// ── Profile section types ──────────────────────────────

type Experience struct {
	Title         string `json:"title"`
	Company       string `json:"company"`
	Location      string `json:"location,omitempty"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate,omitempty"`
	Description   string `json:"description,omitempty"`
	IsCurrentRole bool   `json:"isCurrentRole"`
}

type Education struct {
	School       string `json:"school"`
	Degree       string `json:"degree,omitempty"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	StartYear    string `json:"startYear,omitempty"`
	EndYear      string `json:"endYear,omitempty"`
}

type Skill struct {
	Name string `json:"name"`
}

type Language struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency,omitempty"`
}

type Certification struct {
	Name      string `json:"name"`
	Issuer    string `json:"issuer,omitempty"`
	IssueDate string `json:"issueDate,omitempty"`
}

// ParsedLinkedIn is the structured profile a CV is generated from.
// FullName is the only required scalar; every slice may be empty.
type ParsedLinkedIn struct {
	FullName       string          `json:"fullName"`
	Headline       string          `json:"headline,omitempty"`
	About          string          `json:"about,omitempty"`
	Location       string          `json:"location,omitempty"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Skills         []Skill         `json:"skills"`
	Languages      []Language      `json:"languages"`
	Certifications []Certification `json:"certifications"`
}

// JobVacancy is optional targeting data. A nil vacancy means the CV is
// generated without tailoring toward a specific posting.
type JobVacancy struct {
	Title          string   `json:"title"`
	Company        string   `json:"company,omitempty"`
	Description    string   `json:"description"`
	Requirements   []string `json:"requirements"`
	Keywords       []string `json:"keywords,omitempty"`
	Industry       string   `json:"industry,omitempty"`
	Location       string   `json:"location,omitempty"`
	EmploymentType string   `json:"employmentType,omitempty"`
}

// ── Placeholder mapping ────────────────────────────────

// Placeholder types detected in uploaded templates
const (
	PlaceholderExplicit       = "explicit"         // {{full_name}} style
	PlaceholderLabelWithSpace = "label-with-space" // "Name: " style
)

// Mapping confidence levels
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// ProfileFieldMapping ties a detected placeholder to a profile field. Type
// selects the variant; Index addresses an array element for the indexed
// variants. An out-of-range index resolves to an empty string, never an error.
type ProfileFieldMapping struct {
	Type  string `json:"type"` // personal, experience, education, skill, language, certification, custom
	Field string `json:"field,omitempty"`
	Index int    `json:"index,omitempty"`
	Value string `json:"value,omitempty"` // custom only
}

// Mapping type constants
const (
	MappingPersonal      = "personal"
	MappingExperience    = "experience"
	MappingEducation     = "education"
	MappingSkill         = "skill"
	MappingLanguage      = "language"
	MappingCertification = "certification"
	MappingCustom        = "custom"
)

// DocxPlaceholder is one detected fillable span in a template's text.
type DocxPlaceholder struct {
	ID              string              `json:"id"`
	OriginalText    string              `json:"originalText"`
	PlaceholderType string              `json:"placeholderType"`
	Mapping         ProfileFieldMapping `json:"mapping"`
	Confidence      string              `json:"confidence"`
}

// ResolveMapping returns the profile value a mapping points at. Out-of-range
// indices and unknown fields resolve to "".
func ResolveMapping(p *ParsedLinkedIn, m ProfileFieldMapping) string {
	switch m.Type {
	case MappingPersonal:
		switch m.Field {
		case "fullName":
			return p.FullName
		case "headline":
			return p.Headline
		case "about":
			return p.About
		case "location":
			return p.Location
		case "email":
			return p.Email
		case "phone":
			return p.Phone
		}
	case MappingExperience:
		if m.Index < 0 || m.Index >= len(p.Experience) {
			return ""
		}
		exp := p.Experience[m.Index]
		switch m.Field {
		case "title":
			return exp.Title
		case "company":
			return exp.Company
		case "location":
			return exp.Location
		case "startDate":
			return exp.StartDate
		case "endDate":
			return exp.EndDate
		case "description":
			return exp.Description
		case "dateRange":
			return exp.DateRange()
		}
	case MappingEducation:
		if m.Index < 0 || m.Index >= len(p.Education) {
			return ""
		}
		edu := p.Education[m.Index]
		switch m.Field {
		case "school":
			return edu.School
		case "degree":
			return edu.Degree
		case "fieldOfStudy":
			return edu.FieldOfStudy
		case "startYear":
			return edu.StartYear
		case "endYear":
			return edu.EndYear
		}
	case MappingSkill:
		if m.Index >= 0 && m.Index < len(p.Skills) {
			return p.Skills[m.Index].Name
		}
	case MappingLanguage:
		if m.Index < 0 || m.Index >= len(p.Languages) {
			return ""
		}
		lang := p.Languages[m.Index]
		if m.Field == "proficiency" {
			return lang.Proficiency
		}
		return lang.Language
	case MappingCertification:
		if m.Index >= 0 && m.Index < len(p.Certifications) {
			return p.Certifications[m.Index].Name
		}
	case MappingCustom:
		return m.Value
	}
	return ""
}

// DateRange formats the experience period the way templates print it.
func (e Experience) DateRange() string {
	end := e.EndDate
	if e.IsCurrentRole || end == "" {
		end = "Present"
	}
	if e.StartDate == "" {
		return end
	}
	return e.StartDate + " - " + end
}

// ── Persisted entities ─────────────────────────────────

// User is an account with a credit balance and an optional BYO API key.
type User struct {
	ID               uuid.UUID `json:"id"`
	FirebaseUID      string    `json:"-"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	FreeCredits      int       `json:"freeCredits"`
	PurchasedCredits int       `json:"purchasedCredits"`
	APIKeyEncrypted  string    `json:"-"`
	APIProvider      string    `json:"apiProvider,omitempty"`
	APIModel         string    `json:"apiModel,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Credits returns the spendable balance (free plus purchased).
func (u *User) Credits() int {
	return u.FreeCredits + u.PurchasedCredits
}

// Profile is a stored ParsedLinkedIn with dashboard metadata.
type Profile struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"userId"`
	Name       string         `json:"name"`
	ParsedData ParsedLinkedIn `json:"parsedData"`
	AvatarURL  string         `json:"avatarUrl,omitempty"`
	IsDefault  bool           `json:"isDefault"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// Template is an uploaded .docx with its detected placeholders.
type Template struct {
	ID           uuid.UUID         `json:"id"`
	UserID       uuid.UUID         `json:"userId"`
	Name         string            `json:"name"`
	FileType     string            `json:"fileType"`
	FileData     []byte            `json:"-"`
	StorageURL   string            `json:"storageUrl,omitempty"`
	Placeholders []DocxPlaceholder `json:"placeholders"`
	AutoAnalyzed bool              `json:"autoAnalyzed"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Transaction records a credit balance change.
type Transaction struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Amount      int       `json:"amount"` // positive = credit, negative = debit
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Transaction types
const (
	TxGrant    = "grant"
	TxPurchase = "purchase"
	TxSpend    = "spend"
)

// Credit costs per operation
const (
	CostImport         = 1
	CostLinkedInExport = 1
	CostEnrich         = 1
	CostTemplateFill   = 2
	CostGenerate       = 2
)

// StarterCredits is granted to every new account.
const StarterCredits = 10

// CreditPack is a purchasable bundle.
type CreditPack struct {
	ID       string `json:"id"`
	Credits  int    `json:"credits"`
	PriceUSD int64  `json:"priceUsd"` // cents
}

var CreditPacks = []CreditPack{
	{ID: "pack_small", Credits: 20, PriceUSD: 499},
	{ID: "pack_medium", Credits: 60, PriceUSD: 1199},
	{ID: "pack_large", Credits: 150, PriceUSD: 2499},
}

// FindCreditPack returns the pack with the given id, or nil.
func FindCreditPack(id string) *CreditPack {
	for i := range CreditPacks {
		if CreditPacks[i].ID == id {
			return &CreditPacks[i]
		}
	}
	return nil
}
