// Package prompt builds the natural-language instruction blocks sent to LLM
// providers. Every builder is a pure function of its inputs: same profile,
// same job, same options, same prompt.
package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yourusername/cvstudio-api/internal/model"
)

// Options tunes CV generation output without changing its substance.
type Options struct {
	Language          string // output language, default "English"
	DescriptionFormat string // "bullets" or "paragraph"
}

// honestyPolicy is embedded in every generation prompt. The product promise
// is that nothing in the output is invented; omission always beats invention.
const honestyPolicy = `STRICT HONESTY POLICY:
- NEVER fabricate employers, job titles, dates, degrees, certifications, or metrics.
- Every claim must be traceable to the candidate data provided below.
- If a section has no source data, omit it entirely. Do not fill gaps with plausible-sounding content.
- Rephrasing and reordering are allowed; inventing specializations or inflating seniority is not.`

// GeneratedCV is the JSON shape generation prompts instruct the model to
// return.
type GeneratedCV struct {
	Headline   string   `json:"headline,omitempty"`
	Summary    string   `json:"summary"`
	Experience []struct {
		Title       string   `json:"title"`
		Company     string   `json:"company"`
		DateRange   string   `json:"dateRange"`
		Location    string   `json:"location,omitempty"`
		Bullets     []string `json:"bullets,omitempty"`
		Description string   `json:"description,omitempty"`
	} `json:"experience"`
	Education []struct {
		School    string `json:"school"`
		Degree    string `json:"degree,omitempty"`
		DateRange string `json:"dateRange,omitempty"`
	} `json:"education"`
	Skills         []string `json:"skills"`
	Languages      []string `json:"languages,omitempty"`
	Certifications []string `json:"certifications,omitempty"`
}

// CVSystemPrompt is the system message for CV generation.
const CVSystemPrompt = `You are a professional CV writer. You rewrite real candidate data into polished CV content.

Always respond with ONLY a JSON object (no markdown, no backticks, no explanation) with these fields:
{
  "headline": "only when a target job is provided: one line bridging the candidate's real background to the target role",
  "summary": "3-4 sentence professional summary",
  "experience": [{"title": "", "company": "", "dateRange": "", "location": "", "bullets": ["..."], "description": ""}],
  "education": [{"school": "", "degree": "", "dateRange": ""}],
  "skills": ["..."],
  "languages": ["..."],
  "certifications": ["..."]
}

` + honestyPolicy

// BuildCVPrompt serializes profile and optional job targeting into the user
// message for CV generation.
func BuildCVPrompt(profile *model.ParsedLinkedIn, job *model.JobVacancy, opts Options) string {
	var sb strings.Builder

	sb.WriteString("Generate CV content from this candidate data.\n\n")
	writeProfile(&sb, profile)

	if job != nil {
		sb.WriteString("\nTARGET JOB:\n")
		fmt.Fprintf(&sb, "Title: %s\n", job.Title)
		if job.Company != "" {
			fmt.Fprintf(&sb, "Company: %s\n", job.Company)
		}
		if len(job.Requirements) > 0 {
			fmt.Fprintf(&sb, "Requirements: %s\n", strings.Join(job.Requirements, "; "))
		}
		if len(job.Keywords) > 0 {
			fmt.Fprintf(&sb, "Keywords to reflect where truthful: %s\n", strings.Join(job.Keywords, ", "))
		}
		fmt.Fprintf(&sb, "Description: %s\n", job.Description)
		sb.WriteString("\n" + industryGuidance(job.Industry) + "\n")
		sb.WriteString("Include a headline that bridges the candidate's real background to this role. Do not inflate seniority or invent specializations.\n")
	} else {
		sb.WriteString("\nNo target job was provided: omit the headline field and keep the content role-neutral.\n")
	}

	lang := opts.Language
	if lang == "" {
		lang = "English"
	}
	fmt.Fprintf(&sb, "\nWrite all output in %s.\n", lang)

	switch opts.DescriptionFormat {
	case "paragraph":
		sb.WriteString("Write each experience entry as a short paragraph in the description field; leave bullets empty.\n")
	default:
		sb.WriteString("Write each experience entry as 2-4 concise bullets; leave description empty.\n")
	}

	return sb.String()
}

// industryGuidance returns emphasis instructions selected by keyword match
// on the job's industry field. Specific buckets (finance owns "fintech") are
// checked before the generic tech bucket.
func industryGuidance(industry string) string {
	switch {
	case matchesIndustry(industry, "financ", "bank", "insurance", "fintech"):
		return "Industry guidance: emphasize regulatory awareness, risk handling, and quantified business impact."
	case matchesIndustry(industry, "health", "medical", "pharma", "care"):
		return "Industry guidance: emphasize patient/client outcomes, compliance, and cross-disciplinary collaboration."
	case matchesIndustry(industry, "consult"):
		return "Industry guidance: emphasize client engagements, problem framing, and delivered recommendations."
	case matchesIndustry(industry, "market", "advertis", "brand", "media"):
		return "Industry guidance: emphasize campaign results, audience growth, and creative-to-metric storytelling."
	case matchesIndustry(industry, "retail", "commerce", "consumer"):
		return "Industry guidance: emphasize customer experience, conversion and revenue metrics, and operational scale."
	case matchesIndustry(industry, "tech", "software", "it", "saas", "engineering"):
		return "Industry guidance: emphasize technical stack, shipped systems, and measurable engineering outcomes."
	default:
		return "Industry guidance: emphasize transferable achievements with concrete, verifiable outcomes."
	}
}

var industryWordRe = regexp.MustCompile(`[a-z]+`)

// matchesIndustry checks each word of the industry string against the
// keywords. Stems of four letters or more match as word prefixes
// ("financ" takes "financial"); shorter keywords like "it" must match a
// whole word, so "hospitality" or "digital" never trip them.
func matchesIndustry(industry string, keywords ...string) bool {
	for _, word := range industryWordRe.FindAllString(strings.ToLower(industry), -1) {
		for _, kw := range keywords {
			if word == kw || (len(kw) >= 4 && strings.HasPrefix(word, kw)) {
				return true
			}
		}
	}
	return false
}

// ── LinkedIn export ───────────────────────────────────

// LinkedInSystemPrompt instructs plain-text sectioned output suited to
// pasting into LinkedIn's profile editor.
const LinkedInSystemPrompt = `You convert CV data into LinkedIn-ready profile text.

Respond with ONLY a JSON object (no markdown, no backticks):
{
  "headline": "max 220 characters",
  "about": "first-person About section, 3-5 short paragraphs",
  "experienceDescriptions": ["one description per experience entry, in the same order as provided"]
}

` + honestyPolicy

// BuildLinkedInExportPrompt serializes a profile for LinkedIn export.
func BuildLinkedInExportPrompt(profile *model.ParsedLinkedIn) string {
	var sb strings.Builder
	sb.WriteString("Rewrite this profile as LinkedIn content and return the JSON:\n\n")
	writeProfile(&sb, profile)
	return sb.String()
}

// ── Profile enrichment ────────────────────────────────

// EnrichSystemPrompt asks the model to improve phrasing without adding facts.
const EnrichSystemPrompt = `You polish CV profile data: fix capitalization, expand cryptic abbreviations, and rewrite descriptions into clear professional prose.

Respond with ONLY a JSON object mirroring the input profile structure (same field names, same array lengths, same order). You may rewrite text fields; you may not add, remove, or reorder entries.

` + honestyPolicy

// BuildEnrichPrompt serializes a profile for the enrichment pass.
func BuildEnrichPrompt(profile *model.ParsedLinkedIn) string {
	var sb strings.Builder
	sb.WriteString("Polish this profile and return the full JSON:\n\n")
	writeProfile(&sb, profile)
	return sb.String()
}

// ── Segment filling ───────────────────────────────────

// FillSystemPrompt drives the template-fill mapping call: the model sees the
// template's segments and decides, per index, what replacement text belongs
// there.
const FillSystemPrompt = `You fill a CV template. You receive the template's text segments (indexed, with their section) and the candidate's data.

Respond with ONLY a JSON object mapping segment index (as a string) to replacement text, e.g. {"4": "Jane Doe", "9": "Acme Corp"}.

Rules:
- Only include segments whose text should change. Leave headings and layout text alone.
- Use "\n" inside a value for multi-line descriptions.
- Work experience and education slots appear in document order; fill them with the candidate's entries in the same order.

` + honestyPolicy

// BuildFillPrompt serializes segments plus profile data for the fill call.
func BuildFillPrompt(segments string, profile *model.ParsedLinkedIn) string {
	var sb strings.Builder
	sb.WriteString("TEMPLATE SEGMENTS:\n")
	sb.WriteString(segments)
	sb.WriteString("\n\nCANDIDATE DATA:\n")
	writeProfile(&sb, profile)
	sb.WriteString("\nReturn the segment-index to replacement-text JSON.\n")
	return sb.String()
}

// ── Résumé import ─────────────────────────────────────

// ImportSystemPrompt turns raw résumé text into the structured profile shape.
const ImportSystemPrompt = `You are a résumé parser. Extract structured data from raw résumé text.

Respond with ONLY a JSON object (no markdown, no backticks) with these fields:
{
  "fullName": "", "headline": "", "about": "", "location": "", "email": "", "phone": "",
  "experience": [{"title": "", "company": "", "location": "", "startDate": "", "endDate": "", "description": "", "isCurrentRole": false}],
  "education": [{"school": "", "degree": "", "fieldOfStudy": "", "startYear": "", "endYear": ""}],
  "skills": [{"name": ""}],
  "languages": [{"language": "", "proficiency": ""}],
  "certifications": [{"name": "", "issuer": "", "issueDate": ""}]
}

Extract only what is explicitly stated. Use empty strings and empty arrays for anything absent.`

// ── Shared serialization ──────────────────────────────

func writeProfile(sb *strings.Builder, p *model.ParsedLinkedIn) {
	fmt.Fprintf(sb, "Name: %s\n", p.FullName)
	if p.Headline != "" {
		fmt.Fprintf(sb, "Headline: %s\n", p.Headline)
	}
	if p.Location != "" {
		fmt.Fprintf(sb, "Location: %s\n", p.Location)
	}
	if p.About != "" {
		fmt.Fprintf(sb, "About: %s\n", p.About)
	}

	if len(p.Experience) > 0 {
		sb.WriteString("\nEXPERIENCE:\n")
		for i, e := range p.Experience {
			fmt.Fprintf(sb, "%d. %s at %s (%s)", i+1, e.Title, e.Company, e.DateRange())
			if e.Location != "" {
				fmt.Fprintf(sb, ", %s", e.Location)
			}
			sb.WriteString("\n")
			if e.Description != "" {
				fmt.Fprintf(sb, "   %s\n", e.Description)
			}
		}
	}

	if len(p.Education) > 0 {
		sb.WriteString("\nEDUCATION:\n")
		for i, e := range p.Education {
			fmt.Fprintf(sb, "%d. %s", i+1, e.School)
			if e.Degree != "" {
				fmt.Fprintf(sb, ", %s", e.Degree)
			}
			if e.FieldOfStudy != "" {
				fmt.Fprintf(sb, " in %s", e.FieldOfStudy)
			}
			if e.StartYear != "" || e.EndYear != "" {
				fmt.Fprintf(sb, " (%s-%s)", e.StartYear, e.EndYear)
			}
			sb.WriteString("\n")
		}
	}

	if len(p.Skills) > 0 {
		names := make([]string, len(p.Skills))
		for i, s := range p.Skills {
			names[i] = s.Name
		}
		fmt.Fprintf(sb, "\nSKILLS: %s\n", strings.Join(names, ", "))
	}

	if len(p.Languages) > 0 {
		parts := make([]string, len(p.Languages))
		for i, l := range p.Languages {
			parts[i] = l.Language
			if l.Proficiency != "" {
				parts[i] += " (" + l.Proficiency + ")"
			}
		}
		fmt.Fprintf(sb, "LANGUAGES: %s\n", strings.Join(parts, ", "))
	}

	if len(p.Certifications) > 0 {
		parts := make([]string, len(p.Certifications))
		for i, c := range p.Certifications {
			parts[i] = c.Name
			if c.Issuer != "" {
				parts[i] += " — " + c.Issuer
			}
		}
		fmt.Fprintf(sb, "CERTIFICATIONS: %s\n", strings.Join(parts, ", "))
	}
}
