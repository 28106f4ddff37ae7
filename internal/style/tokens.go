// Package style maps enumerated design tokens to CSS for CV preview and PDF
// rendering, and converts between the token form and the legacy flat style
// config still accepted on the API.
package style

import "fmt"

// CVDesignTokens is the enumerated style description a CV is rendered with.
// Every field has a closed value set; unknown values fall back to the
// "modern" theme defaults.
type CVDesignTokens struct {
	ThemeBase     string `json:"themeBase"`     // modern | classic | minimal | bold | elegant
	FontPairing   string `json:"fontPairing"`   // sans | serif | mixed | mono
	ColorSet      string `json:"colorSet"`      // slate | navy | forest | burgundy | charcoal
	HeaderVariant string `json:"headerVariant"` // banner | centered | sidebar | plain
	SectionStyle  string `json:"sectionStyle"`  // underline | block | sideline | plain
	SkillsVariant string `json:"skillsVariant"` // pills | list | inline
	Spacing       string `json:"spacing"`       // compact | normal | relaxed
	Scale         string `json:"scale"`         // small | medium | large
	Decorations   bool   `json:"decorations"`
}

// CVStyleConfig is the legacy flat shape older clients send. It carries less
// information than the token form; the conversion back re-derives the missing
// fields from the theme defaults.
type CVStyleConfig struct {
	Template    string `json:"template"`
	Font        string `json:"font"`
	AccentColor string `json:"accentColor"`
	Layout      string `json:"layout"`
	Density     string `json:"density"`
	FontSize    string `json:"fontSize"`
	ShowIcons   bool   `json:"showIcons"`
}

// themeDefaults is the canonical token set per theme base. ThemeBase alone
// must be enough to render something sensible.
var themeDefaults = map[string]CVDesignTokens{
	"modern": {
		ThemeBase: "modern", FontPairing: "sans", ColorSet: "slate",
		HeaderVariant: "banner", SectionStyle: "underline", SkillsVariant: "pills",
		Spacing: "normal", Scale: "medium", Decorations: true,
	},
	"classic": {
		ThemeBase: "classic", FontPairing: "serif", ColorSet: "navy",
		HeaderVariant: "centered", SectionStyle: "underline", SkillsVariant: "inline",
		Spacing: "normal", Scale: "medium", Decorations: false,
	},
	"minimal": {
		ThemeBase: "minimal", FontPairing: "sans", ColorSet: "charcoal",
		HeaderVariant: "plain", SectionStyle: "plain", SkillsVariant: "inline",
		Spacing: "relaxed", Scale: "medium", Decorations: false,
	},
	"bold": {
		ThemeBase: "bold", FontPairing: "mixed", ColorSet: "burgundy",
		HeaderVariant: "banner", SectionStyle: "block", SkillsVariant: "pills",
		Spacing: "compact", Scale: "large", Decorations: true,
	},
	"elegant": {
		ThemeBase: "elegant", FontPairing: "serif", ColorSet: "forest",
		HeaderVariant: "sidebar", SectionStyle: "sideline", SkillsVariant: "list",
		Spacing: "relaxed", Scale: "medium", Decorations: true,
	},
}

// DefaultTokens returns the full token set for a theme base, falling back to
// "modern" for unknown names.
func DefaultTokens(themeBase string) CVDesignTokens {
	if t, ok := themeDefaults[themeBase]; ok {
		return t
	}
	return themeDefaults["modern"]
}

// ThemeNames lists the available theme bases in a stable order.
func ThemeNames() []string {
	return []string{"modern", "classic", "minimal", "bold", "elegant"}
}

// Normalize fills empty or unknown fields from the theme's defaults so the
// renderer only ever sees complete token sets.
func (t CVDesignTokens) Normalize() CVDesignTokens {
	def := DefaultTokens(t.ThemeBase)
	out := t
	out.ThemeBase = def.ThemeBase
	if _, ok := fontStacks[out.FontPairing]; !ok {
		out.FontPairing = def.FontPairing
	}
	if _, ok := palettes[out.ColorSet]; !ok {
		out.ColorSet = def.ColorSet
	}
	if !oneOf(out.HeaderVariant, "banner", "centered", "sidebar", "plain") {
		out.HeaderVariant = def.HeaderVariant
	}
	if !oneOf(out.SectionStyle, "underline", "block", "sideline", "plain") {
		out.SectionStyle = def.SectionStyle
	}
	if !oneOf(out.SkillsVariant, "pills", "list", "inline") {
		out.SkillsVariant = def.SkillsVariant
	}
	if _, ok := spacingScale[out.Spacing]; !ok {
		out.Spacing = def.Spacing
	}
	if _, ok := fontScale[out.Scale]; !ok {
		out.Scale = def.Scale
	}
	return out
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// ── Legacy conversion ─────────────────────────────────

// legacy font names per pairing; the pairing is recoverable from the name.
var pairingToFont = map[string]string{
	"sans":  "Inter",
	"serif": "Georgia",
	"mixed": "Playfair/Inter",
	"mono":  "JetBrains Mono",
}

var fontToPairing = map[string]string{
	"Inter":          "sans",
	"Georgia":        "serif",
	"Playfair/Inter": "mixed",
	"JetBrains Mono": "mono",
}

var colorSetToHex = map[string]string{
	"slate":    "#334155",
	"navy":     "#1e3a5f",
	"forest":   "#2d5a3d",
	"burgundy": "#6e1e2f",
	"charcoal": "#2b2b2b",
}

var hexToColorSet = map[string]string{
	"#334155": "slate",
	"#1e3a5f": "navy",
	"#2d5a3d": "forest",
	"#6e1e2f": "burgundy",
	"#2b2b2b": "charcoal",
}

// TokensToStyleConfig converts the token form to the legacy flat config.
// Lossy: SectionStyle and SkillsVariant have no legacy equivalent and are
// re-derived from the theme defaults on the way back.
func TokensToStyleConfig(t CVDesignTokens) CVStyleConfig {
	t = t.Normalize()
	return CVStyleConfig{
		Template:    t.ThemeBase,
		Font:        pairingToFont[t.FontPairing],
		AccentColor: colorSetToHex[t.ColorSet],
		Layout:      t.HeaderVariant,
		Density:     t.Spacing,
		FontSize:    t.Scale,
		ShowIcons:   t.Decorations,
	}
}

// StyleConfigToTokens converts a legacy config back to tokens. Fields the
// legacy shape cannot express come from the template's theme defaults, so a
// round-trip through TokensToStyleConfig recovers everything the theme base
// drives.
func StyleConfigToTokens(c CVStyleConfig) CVDesignTokens {
	t := DefaultTokens(c.Template)
	if p, ok := fontToPairing[c.Font]; ok {
		t.FontPairing = p
	}
	if cs, ok := hexToColorSet[c.AccentColor]; ok {
		t.ColorSet = cs
	}
	if oneOf(c.Layout, "banner", "centered", "sidebar", "plain") {
		t.HeaderVariant = c.Layout
	}
	if _, ok := spacingScale[c.Density]; ok {
		t.Spacing = c.Density
	}
	if _, ok := fontScale[c.FontSize]; ok {
		t.Scale = c.FontSize
	}
	t.Decorations = c.ShowIcons
	return t
}

// ── CSS generation ────────────────────────────────────

var fontStacks = map[string]struct{ heading, body string }{
	"sans":  {"'Inter', 'Helvetica Neue', Arial, sans-serif", "'Inter', 'Helvetica Neue', Arial, sans-serif"},
	"serif": {"Georgia, 'Times New Roman', serif", "Georgia, 'Times New Roman', serif"},
	"mixed": {"'Playfair Display', Georgia, serif", "'Inter', Arial, sans-serif"},
	"mono":  {"'JetBrains Mono', 'Courier New', monospace", "'JetBrains Mono', 'Courier New', monospace"},
}

var palettes = map[string]struct{ accent, text, muted string }{
	"slate":    {"#334155", "#1e293b", "#64748b"},
	"navy":     {"#1e3a5f", "#14263d", "#5a748a"},
	"forest":   {"#2d5a3d", "#1c3526", "#6b8577"},
	"burgundy": {"#6e1e2f", "#3d1019", "#9c6b77"},
	"charcoal": {"#2b2b2b", "#1a1a1a", "#707070"},
}

var spacingScale = map[string]struct{ section, item string }{
	"compact": {"14px", "8px"},
	"normal":  {"22px", "12px"},
	"relaxed": {"30px", "16px"},
}

var fontScale = map[string]struct{ base, heading, name string }{
	"small":  {"12px", "15px", "24px"},
	"medium": {"13px", "17px", "28px"},
	"large":  {"15px", "19px", "32px"},
}

// TokensToCSS renders the token set as a self-contained CSS block for the
// preview/PDF HTML document.
func TokensToCSS(t CVDesignTokens) string {
	t = t.Normalize()
	fonts := fontStacks[t.FontPairing]
	pal := palettes[t.ColorSet]
	sp := spacingScale[t.Spacing]
	fs := fontScale[t.Scale]

	css := fmt.Sprintf(`body {
  font-family: %s;
  font-size: %s;
  color: %s;
  margin: 0;
  padding: 40px 48px;
  line-height: 1.5;
}
h1 { font-family: %s; font-size: %s; margin: 0 0 4px; color: %s; }
h2 { font-family: %s; font-size: %s; margin: %s 0 %s; color: %s; %s }
.headline { color: %s; font-size: 1.05em; margin-bottom: 2px; }
.contact { color: %s; font-size: 0.9em; }
.entry { margin-bottom: %s; }
.entry-head { display: flex; justify-content: space-between; font-weight: 600; }
.entry-sub { color: %s; font-size: 0.92em; margin-bottom: 3px; }
.entry ul { margin: 4px 0 0 18px; padding: 0; }
.entry li { margin-bottom: 2px; }
`,
		fonts.body, fs.base, pal.text,
		fonts.heading, fs.name, pal.accent,
		fonts.heading, fs.heading, sp.section, sp.item, pal.accent, sectionHeadingCSS(t.SectionStyle, pal.accent),
		pal.accent,
		pal.muted,
		sp.item,
		pal.muted,
	)

	css += headerCSS(t.HeaderVariant, pal.accent)
	css += skillsCSS(t.SkillsVariant, pal.accent)
	if !t.Decorations {
		css += ".decoration { display: none; }\n"
	}
	return css
}

func sectionHeadingCSS(style, accent string) string {
	switch style {
	case "underline":
		return fmt.Sprintf("border-bottom: 1.5px solid %s; padding-bottom: 3px;", accent)
	case "block":
		return fmt.Sprintf("background: %s; color: #ffffff; padding: 4px 10px;", accent)
	case "sideline":
		return fmt.Sprintf("border-left: 3px solid %s; padding-left: 10px;", accent)
	default:
		return ""
	}
}

func headerCSS(variant, accent string) string {
	switch variant {
	case "banner":
		return fmt.Sprintf("header { background: %s; color: #ffffff; margin: -40px -48px 24px; padding: 32px 48px; }\nheader h1, header .headline, header .contact { color: #ffffff; }\n", accent)
	case "centered":
		return "header { text-align: center; margin-bottom: 24px; }\n"
	case "sidebar":
		return fmt.Sprintf("header { border-left: 4px solid %s; padding-left: 16px; margin-bottom: 24px; }\n", accent)
	default:
		return "header { margin-bottom: 24px; }\n"
	}
}

func skillsCSS(variant, accent string) string {
	switch variant {
	case "pills":
		return fmt.Sprintf(".skills span { display: inline-block; border: 1px solid %s; border-radius: 10px; padding: 2px 10px; margin: 0 6px 6px 0; font-size: 0.88em; }\n", accent)
	case "list":
		return ".skills span { display: block; margin-bottom: 3px; }\n"
	default:
		return ".skills span::after { content: ' · '; }\n.skills span:last-child::after { content: ''; }\n"
	}
}
