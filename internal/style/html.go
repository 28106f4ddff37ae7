package style

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yourusername/cvstudio-api/internal/model"
	"github.com/yourusername/cvstudio-api/internal/prompt"
)

// previewTemplate is the single-page HTML document handed to the PDF
// renderer. Styling comes entirely from the token-generated CSS.
var previewTemplate = template.Must(template.New("cv").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>{{.CSS}}</style>
</head>
<body>
<header>
  <h1>{{.Name}}</h1>
  {{if .Headline}}<div class="headline">{{.Headline}}</div>{{end}}
  {{if .Contact}}<div class="contact">{{.Contact}}</div>{{end}}
</header>
{{if .Summary}}
<section>
  <h2>Summary</h2>
  <p>{{.Summary}}</p>
</section>
{{end}}
{{if .Experience}}
<section>
  <h2>Experience</h2>
  {{range .Experience}}
  <div class="entry">
    <div class="entry-head"><span>{{.Title}}</span><span>{{.DateRange}}</span></div>
    <div class="entry-sub">{{.Company}}{{if .Location}} — {{.Location}}{{end}}</div>
    {{if .Bullets}}<ul>{{range .Bullets}}<li>{{.}}</li>{{end}}</ul>{{end}}
    {{if .Description}}<p>{{.Description}}</p>{{end}}
  </div>
  {{end}}
</section>
{{end}}
{{if .Education}}
<section>
  <h2>Education</h2>
  {{range .Education}}
  <div class="entry">
    <div class="entry-head"><span>{{.School}}</span><span>{{.DateRange}}</span></div>
    {{if .Degree}}<div class="entry-sub">{{.Degree}}</div>{{end}}
  </div>
  {{end}}
</section>
{{end}}
{{if .Skills}}
<section>
  <h2>Skills</h2>
  <div class="skills">{{range .Skills}}<span>{{.}}</span>{{end}}</div>
</section>
{{end}}
{{if .Languages}}
<section>
  <h2>Languages</h2>
  <div class="skills">{{range .Languages}}<span>{{.}}</span>{{end}}</div>
</section>
{{end}}
{{if .Certifications}}
<section>
  <h2>Certifications</h2>
  <div class="skills">{{range .Certifications}}<span>{{.}}</span>{{end}}</div>
</section>
{{end}}
</body>
</html>
`))

type previewData struct {
	CSS            template.CSS
	Name           string
	Headline       string
	Contact        string
	Summary        string
	Experience     []previewExperience
	Education      []previewEducation
	Skills         []string
	Languages      []string
	Certifications []string
}

type previewExperience struct {
	Title, Company, Location, DateRange, Description string
	Bullets                                          []string
}

type previewEducation struct {
	School, Degree, DateRange string
}

// RenderHTML builds the preview document from generated CV content, contact
// details taken from the profile, and the requested design tokens.
func RenderHTML(profile *model.ParsedLinkedIn, cv *prompt.GeneratedCV, tokens CVDesignTokens) (string, error) {
	data := previewData{
		CSS:            template.CSS(TokensToCSS(tokens)),
		Name:           profile.FullName,
		Headline:       cv.Headline,
		Contact:        contactLine(profile),
		Summary:        cv.Summary,
		Skills:         cv.Skills,
		Languages:      cv.Languages,
		Certifications: cv.Certifications,
	}
	if data.Headline == "" {
		data.Headline = profile.Headline
	}
	for _, e := range cv.Experience {
		data.Experience = append(data.Experience, previewExperience{
			Title: e.Title, Company: e.Company, Location: e.Location,
			DateRange: e.DateRange, Description: e.Description, Bullets: e.Bullets,
		})
	}
	for _, e := range cv.Education {
		data.Education = append(data.Education, previewEducation{
			School: e.School, Degree: e.Degree, DateRange: e.DateRange,
		})
	}

	var buf bytes.Buffer
	if err := previewTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering cv preview: %w", err)
	}
	return buf.String(), nil
}

func contactLine(p *model.ParsedLinkedIn) string {
	var parts []string
	for _, s := range []string{p.Location, p.Email, p.Phone} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " · ")
}
