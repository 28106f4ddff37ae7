package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yourusername/cvstudio-api/internal/docx"
	"github.com/yourusername/cvstudio-api/internal/model"
	"github.com/yourusername/cvstudio-api/internal/prompt"
	"github.com/yourusername/cvstudio-api/internal/repository"
	"github.com/yourusername/cvstudio-api/internal/service"
	"github.com/yourusername/cvstudio-api/internal/style"
)

const maxTemplateSize = 15 << 20 // 15 MB

type TemplateHandler struct {
	templateRepo *repository.TemplateRepo
	profileRepo  *repository.ProfileRepo
	userRepo     *repository.UserRepo
	txRepo       *repository.TransactionRepo
	ai           *AIFactory
	renderer     *service.PDFRenderer
}

func NewTemplateHandler(templateRepo *repository.TemplateRepo, profileRepo *repository.ProfileRepo, userRepo *repository.UserRepo, txRepo *repository.TransactionRepo, ai *AIFactory, renderer *service.PDFRenderer) *TemplateHandler {
	return &TemplateHandler{
		templateRepo: templateRepo,
		profileRepo:  profileRepo,
		userRepo:     userRepo,
		txRepo:       txRepo,
		ai:           ai,
		renderer:     renderer,
	}
}

// ListTemplates handles GET /api/templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	templates, err := h.templateRepo.List(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list templates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list templates"})
		return
	}
	if templates == nil {
		templates = []model.Template{}
	}

	c.JSON(http.StatusOK, templates)
}

// GetTemplate handles GET /api/templates/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return
	}

	tmpl, err := h.templateRepo.FindByID(c.Request.Context(), templateID, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get template")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get template"})
		return
	}
	if tmpl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	c.JSON(http.StatusOK, tmpl)
}

// UploadTemplate handles POST /api/templates
// Accepts a multipart .docx, extracts its text, and auto-detects fillable
// placeholders.
func (h *TemplateHandler) UploadTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file upload"})
		return
	}
	if fileHeader.Size > maxTemplateSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large (max 15 MB)"})
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".docx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .docx templates are supported"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read upload"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read upload"})
		return
	}

	xml, err := docx.ReadDocumentXML(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not a valid .docx file", "details": err.Error()})
		return
	}

	doc := docx.Extract(xml)
	placeholders := docx.DetectPlaceholders(doc.PlainText())

	name := c.PostForm("name")
	if name == "" {
		name = strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	}

	tmpl, err := h.templateRepo.Create(c.Request.Context(), userID, name, "docx", data, placeholders, true)
	if err != nil {
		log.Error().Err(err).Msg("Failed to store template")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store template"})
		return
	}

	c.JSON(http.StatusCreated, tmpl)
}

// DeleteTemplate handles DELETE /api/templates/:id
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return
	}

	deleted, err := h.templateRepo.Delete(c.Request.Context(), templateID, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete template")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete template"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// FillTemplate handles POST /api/templates/:id/fill
// Runs the full docx pipeline: structural preparation (block duplication for
// the profile's entry counts), an LLM mapping of segment index to replacement
// text, and the fill pass. Returns the rewritten .docx, or a PDF rendering
// when format=pdf.
func (h *TemplateHandler) FillTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return
	}

	var req struct {
		ProfileID string `json:"profileId" binding:"required"`
		Format    string `json:"format"` // "docx" (default) or "pdf"
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	profileID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile ID"})
		return
	}

	tmpl, err := h.templateRepo.FindByID(c.Request.Context(), templateID, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get template")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get template"})
		return
	}
	if tmpl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	profile, err := h.profileRepo.FindByID(c.Request.Context(), profileID, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	user, err := h.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	provider, modelID, err := h.ai.ProviderFor(c.Request.Context(), user)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build AI provider")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI provider unavailable"})
		return
	}
	defer closeProvider(provider)

	var filledBodyXML string
	out, err := docx.RewritePackage(tmpl.FileData, func(name, xml string) (string, error) {
		if name == "word/document.xml" {
			filled, err := h.fillDocumentXML(c, provider, modelID, xml, &profile.ParsedData)
			if err != nil {
				return "", err
			}
			filledBodyXML = filled
			return filled, nil
		}
		// Headers and footers carry only personal fields; fill them
		// deterministically from the detected placeholder mappings.
		return fillAuxiliaryPart(xml, &profile.ParsedData), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, docx.ErrNoSlots):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Template has no fillable experience or education blocks", "details": err.Error()})
		default:
			log.Error().Err(err).Msg("Template fill failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Template fill failed", "details": err.Error()})
		}
		return
	}

	if !chargeCredits(c, h.userRepo, h.txRepo, userID, model.CostTemplateFill, "Template fill: "+tmpl.Name) {
		return
	}

	baseName := strings.TrimSuffix(tmpl.Name, ".docx")
	if req.Format == "pdf" {
		pdfBytes, err := h.renderFilledPDF(c, filledBodyXML)
		if err != nil {
			log.Error().Err(err).Msg("PDF rendering failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "PDF rendering failed", "details": err.Error()})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", baseName+".pdf"))
		c.Data(http.StatusOK, "application/pdf", pdfBytes)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", baseName+".docx"))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", out)
}

// fillDocumentXML runs the two-phase pipeline on the document body.
func (h *TemplateHandler) fillDocumentXML(c *gin.Context, provider service.Provider, modelID, xml string, profile *model.ParsedLinkedIn) (string, error) {
	prep, err := docx.Prepare(xml, len(profile.Experience), len(profile.Education))
	if err != nil {
		return "", err
	}

	listing := segmentListing(prep.Doc)
	if listing == "" {
		return "", fmt.Errorf("template contains no fillable text")
	}

	var raw map[string]string
	err = service.CompleteJSON(c.Request.Context(), provider, service.CompletionRequest{
		Model:     modelID,
		System:    prompt.FillSystemPrompt,
		Prompt:    prompt.BuildFillPrompt(listing, profile),
		MaxTokens: 8192,
	}, &raw)
	if err != nil {
		return "", fmt.Errorf("segment mapping: %w", err)
	}

	fills := make(map[int]string, len(raw))
	for k, v := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 || idx >= len(prep.Doc.Segments) {
			log.Warn().Str("key", k).Msg("Ignoring out-of-range segment index from model")
			continue
		}
		fills[idx] = v
	}

	return prep.Apply(fills)
}

// segmentListing serializes the extracted segments for the mapping prompt.
func segmentListing(doc *docx.Document) string {
	var sb strings.Builder
	for _, seg := range doc.Segments {
		if seg.IsWhitespace {
			continue
		}
		marker := ""
		if seg.IsHeader {
			marker = " HEADING"
		}
		fmt.Fprintf(&sb, "[%d] (%s%s) %q\n", seg.Index, seg.Section, marker, seg.Text)
	}
	return sb.String()
}

// fillAuxiliaryPart rewrites header/footer text runs whose content matches a
// known personal-field placeholder. No structural edits, no LLM call.
func fillAuxiliaryPart(xml string, profile *model.ParsedLinkedIn) string {
	doc := docx.Extract(xml)
	fills := make(map[int]string)
	for _, seg := range doc.Segments {
		if seg.IsWhitespace {
			continue
		}
		for _, ph := range docx.DetectPlaceholders(seg.Text) {
			if ph.Confidence == model.ConfidenceLow {
				continue
			}
			if v := model.ResolveMapping(profile, ph.Mapping); v != "" {
				fills[seg.Index] = v
			}
		}
	}
	if len(fills) == 0 {
		return xml
	}
	out, err := docx.ApplyFills(doc, fills)
	if err != nil {
		log.Warn().Err(err).Msg("Header/footer fill skipped")
		return xml
	}
	return out
}

// renderFilledPDF converts the filled document body into a simple HTML
// rendering and prints it to PDF. Run-level formatting from the template is
// not preserved; the default theme's typography is used instead.
func (h *TemplateHandler) renderFilledPDF(c *gin.Context, bodyXML string) ([]byte, error) {
	if bodyXML == "" {
		return nil, fmt.Errorf("no document body to render")
	}
	doc := docx.Extract(bodyXML)

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><style>")
	sb.WriteString(style.TokensToCSS(style.DefaultTokens("classic")))
	sb.WriteString("</style></head><body>")
	for pi := range doc.Paragraphs {
		text := strings.TrimSpace(paragraphPlainText(doc, pi))
		if text == "" {
			continue
		}
		if paragraphIsHeading(doc, pi) {
			sb.WriteString("<h2>" + htmlEscape(text) + "</h2>")
		} else {
			sb.WriteString("<p>" + htmlEscape(text) + "</p>")
		}
	}
	sb.WriteString("</body></html>")

	return h.renderer.RenderHTMLToPDF(c.Request.Context(), sb.String())
}

func paragraphPlainText(doc *docx.Document, pi int) string {
	var sb strings.Builder
	for _, si := range doc.Paragraphs[pi].Segments {
		sb.WriteString(doc.Segments[si].Text)
	}
	return sb.String()
}

func paragraphIsHeading(doc *docx.Document, pi int) bool {
	for _, si := range doc.Paragraphs[pi].Segments {
		if doc.Segments[si].IsHeader {
			return true
		}
	}
	return false
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func htmlEscape(s string) string { return htmlEscaper.Replace(s) }
