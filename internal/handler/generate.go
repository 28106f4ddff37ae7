package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yourusername/cvstudio-api/internal/model"
	"github.com/yourusername/cvstudio-api/internal/prompt"
	"github.com/yourusername/cvstudio-api/internal/repository"
	"github.com/yourusername/cvstudio-api/internal/service"
	"github.com/yourusername/cvstudio-api/internal/style"
)

type GenerateHandler struct {
	profileRepo *repository.ProfileRepo
	userRepo    *repository.UserRepo
	txRepo      *repository.TransactionRepo
	ai          *AIFactory
	renderer    *service.PDFRenderer
	catalog     *service.ModelCatalog
}

func NewGenerateHandler(profileRepo *repository.ProfileRepo, userRepo *repository.UserRepo, txRepo *repository.TransactionRepo, ai *AIFactory, renderer *service.PDFRenderer, catalog *service.ModelCatalog) *GenerateHandler {
	return &GenerateHandler{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		txRepo:      txRepo,
		ai:          ai,
		renderer:    renderer,
		catalog:     catalog,
	}
}

// Generate handles POST /api/generate
// Turns a stored profile (plus optional job targeting and design tokens) into
// generated CV content, returned as JSON or rendered to PDF.
func (h *GenerateHandler) Generate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req struct {
		ProfileID         string                `json:"profileId" binding:"required"`
		Job               *model.JobVacancy     `json:"job"`
		Tokens            *style.CVDesignTokens `json:"tokens"`
		StyleConfig       *style.CVStyleConfig  `json:"styleConfig"` // legacy clients
		Language          string                `json:"language"`
		DescriptionFormat string                `json:"descriptionFormat"`
		Format            string                `json:"format"` // "json" (default) or "pdf"
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

	var cv prompt.GeneratedCV
	err = service.CompleteJSON(c.Request.Context(), provider, service.CompletionRequest{
		Model:  modelID,
		System: prompt.CVSystemPrompt,
		Prompt: prompt.BuildCVPrompt(&profile.ParsedData, req.Job, prompt.Options{
			Language:          req.Language,
			DescriptionFormat: req.DescriptionFormat,
		}),
		MaxTokens: 4096,
	}, &cv)
	if err != nil {
		log.Error().Err(err).Msg("CV generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "CV generation failed", "details": err.Error()})
		return
	}

	if !chargeCredits(c, h.userRepo, h.txRepo, userID, model.CostGenerate, "CV generation") {
		return
	}

	// Token resolution: explicit tokens win, then the legacy flat config,
	// then the default theme.
	var tokens style.CVDesignTokens
	switch {
	case req.Tokens != nil:
		tokens = req.Tokens.Normalize()
	case req.StyleConfig != nil:
		tokens = style.StyleConfigToTokens(*req.StyleConfig)
	default:
		tokens = style.DefaultTokens("modern")
	}

	if req.Format == "pdf" {
		html, err := style.RenderHTML(&profile.ParsedData, &cv, tokens)
		if err != nil {
			log.Error().Err(err).Msg("Preview rendering failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Preview rendering failed"})
			return
		}
		pdfBytes, err := h.renderer.RenderHTMLToPDF(c.Request.Context(), html)
		if err != nil {
			log.Error().Err(err).Msg("PDF rendering failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "PDF rendering failed", "details": err.Error()})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", profile.Name+".pdf"))
		c.Data(http.StatusOK, "application/pdf", pdfBytes)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cv": cv, "tokens": tokens})
}

// ListModels handles GET /api/models
func (h *GenerateHandler) ListModels(c *gin.Context) {
	models, err := h.catalog.Models(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch model catalog")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch model catalog"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

// ListThemes handles GET /api/themes
func (h *GenerateHandler) ListThemes(c *gin.Context) {
	themes := make([]gin.H, 0, len(style.ThemeNames()))
	for _, name := range style.ThemeNames() {
		themes = append(themes, gin.H{"name": name, "tokens": style.DefaultTokens(name)})
	}
	c.JSON(http.StatusOK, gin.H{"themes": themes})
}
