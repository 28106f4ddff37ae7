package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
	"github.com/yourusername/cvstudio-api/internal/model"
	"github.com/yourusername/cvstudio-api/internal/prompt"
	"github.com/yourusername/cvstudio-api/internal/repository"
	"github.com/yourusername/cvstudio-api/internal/service"
)

const maxImportPDFSize = 10 << 20 // 10 MB

type ProfileHandler struct {
	profileRepo *repository.ProfileRepo
	userRepo    *repository.UserRepo
	txRepo      *repository.TransactionRepo
	ai          *AIFactory
}

func NewProfileHandler(profileRepo *repository.ProfileRepo, userRepo *repository.UserRepo, txRepo *repository.TransactionRepo, ai *AIFactory) *ProfileHandler {
	return &ProfileHandler{profileRepo: profileRepo, userRepo: userRepo, txRepo: txRepo, ai: ai}
}

// ListProfiles handles GET /api/profiles
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	profiles, err := h.profileRepo.List(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list profiles")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list profiles"})
		return
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}

	c.JSON(http.StatusOK, profiles)
}

// GetProfile handles GET /api/profiles/:id
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	profileID, err := uuid.Parse(c.Param("id"))
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

	c.JSON(http.StatusOK, profile)
}

type profileRequest struct {
	Name       string               `json:"name" binding:"required"`
	ParsedData model.ParsedLinkedIn `json:"parsedData" binding:"required"`
	AvatarURL  string               `json:"avatarUrl"`
	IsDefault  bool                 `json:"isDefault"`
}

// CreateProfile handles POST /api/profiles
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.ParsedData.FullName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parsedData.fullName is required"})
		return
	}

	profile, err := h.profileRepo.Create(c.Request.Context(), userID, req.Name, req.ParsedData, req.AvatarURL, req.IsDefault)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// UpdateProfile handles PUT /api/profiles/:id
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile ID"})
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	profile, err := h.profileRepo.Update(c.Request.Context(), profileID, userID, req.Name, req.ParsedData, req.AvatarURL, req.IsDefault)
	if err != nil {
		log.Error().Err(err).Msg("Failed to update profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteProfile handles DELETE /api/profiles/:id
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile ID"})
		return
	}

	deleted, err := h.profileRepo.Delete(c.Request.Context(), profileID, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete profile"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ImportProfile handles POST /api/profiles/import
// Accepts a multipart PDF résumé, extracts its text, and parses it into a
// structured profile via the LLM. Costs one credit on success.
func (h *ProfileHandler) ImportProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	user, err := h.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file upload"})
		return
	}
	if fileHeader.Size > maxImportPDFSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large (max 10 MB)"})
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are supported"})
		return
	}

	text, err := extractPDFText(fileHeader)
	if err != nil {
		log.Error().Err(err).Msg("Failed to extract PDF text")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read PDF", "details": err.Error()})
		return
	}
	if strings.TrimSpace(text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "PDF contains no extractable text"})
		return
	}

	provider, modelID, err := h.ai.ProviderFor(c.Request.Context(), user)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build AI provider")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI provider unavailable"})
		return
	}
	defer closeProvider(provider)

	var parsed model.ParsedLinkedIn
	err = service.CompleteJSON(c.Request.Context(), provider, service.CompletionRequest{
		Model:     modelID,
		System:    prompt.ImportSystemPrompt,
		Prompt:    text,
		MaxTokens: 4096,
	}, &parsed)
	if err != nil {
		log.Error().Err(err).Msg("Résumé parsing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Résumé parsing failed", "details": err.Error()})
		return
	}
	if parsed.FullName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not identify a name in the résumé"})
		return
	}

	if !chargeCredits(c, h.userRepo, h.txRepo, userID, model.CostImport, "Résumé import") {
		return
	}

	name := strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	profile, err := h.profileRepo.Create(c.Request.Context(), userID, name, parsed, "", false)
	if err != nil {
		log.Error().Err(err).Msg("Failed to store imported profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store profile"})
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// LinkedInExport handles POST /api/profiles/:id/linkedin-export
func (h *ProfileHandler) LinkedInExport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile ID"})
		return
	}

	profile, user, ok := h.loadProfileAndUser(c, profileID, userID)
	if !ok {
		return
	}

	provider, modelID, err := h.ai.ProviderFor(c.Request.Context(), user)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build AI provider")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI provider unavailable"})
		return
	}
	defer closeProvider(provider)

	var export struct {
		Headline               string   `json:"headline"`
		About                  string   `json:"about"`
		ExperienceDescriptions []string `json:"experienceDescriptions"`
	}
	err = service.CompleteJSON(c.Request.Context(), provider, service.CompletionRequest{
		Model:     modelID,
		System:    prompt.LinkedInSystemPrompt,
		Prompt:    prompt.BuildLinkedInExportPrompt(&profile.ParsedData),
		MaxTokens: 4096,
	}, &export)
	if err != nil {
		log.Error().Err(err).Msg("LinkedIn export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "LinkedIn export failed", "details": err.Error()})
		return
	}

	if !chargeCredits(c, h.userRepo, h.txRepo, userID, model.CostLinkedInExport, "LinkedIn export") {
		return
	}

	c.JSON(http.StatusOK, export)
}

// EnrichProfile handles POST /api/profiles/:id/enrich
// Asks the LLM to polish the profile's text fields and merges the result back
// in. Structural fields (array lengths, order) never change.
func (h *ProfileHandler) EnrichProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile ID"})
		return
	}

	profile, user, ok := h.loadProfileAndUser(c, profileID, userID)
	if !ok {
		return
	}

	provider, modelID, err := h.ai.ProviderFor(c.Request.Context(), user)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build AI provider")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI provider unavailable"})
		return
	}
	defer closeProvider(provider)

	var enriched model.ParsedLinkedIn
	err = service.CompleteJSON(c.Request.Context(), provider, service.CompletionRequest{
		Model:     modelID,
		System:    prompt.EnrichSystemPrompt,
		Prompt:    prompt.BuildEnrichPrompt(&profile.ParsedData),
		MaxTokens: 4096,
	}, &enriched)
	if err != nil {
		log.Error().Err(err).Msg("Profile enrichment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Profile enrichment failed", "details": err.Error()})
		return
	}

	merged := mergeEnriched(profile.ParsedData, enriched)

	if !chargeCredits(c, h.userRepo, h.txRepo, userID, model.CostEnrich, "Profile enrichment") {
		return
	}

	updated, err := h.profileRepo.UpdateParsedData(c.Request.Context(), profileID, userID, merged)
	if err != nil {
		log.Error().Err(err).Msg("Failed to store enriched profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store enriched profile"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *ProfileHandler) loadProfileAndUser(c *gin.Context, profileID, userID uuid.UUID) (*model.Profile, *model.User, bool) {
	profile, err := h.profileRepo.FindByID(c.Request.Context(), profileID, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get profile"})
		return nil, nil, false
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return nil, nil, false
	}

	user, err := h.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, nil, false
	}
	return profile, user, true
}

// mergeEnriched overwrites text fields from the enriched copy while keeping
// the original structure: if the model added, dropped, or reordered entries,
// that array is kept as-is.
func mergeEnriched(orig, enriched model.ParsedLinkedIn) model.ParsedLinkedIn {
	out := orig
	if enriched.Headline != "" {
		out.Headline = enriched.Headline
	}
	if enriched.About != "" {
		out.About = enriched.About
	}
	if len(enriched.Experience) == len(orig.Experience) {
		for i := range out.Experience {
			if enriched.Experience[i].Title != "" {
				out.Experience[i].Title = enriched.Experience[i].Title
			}
			if enriched.Experience[i].Description != "" {
				out.Experience[i].Description = enriched.Experience[i].Description
			}
		}
	}
	if len(enriched.Education) == len(orig.Education) {
		for i := range out.Education {
			if enriched.Education[i].Degree != "" {
				out.Education[i].Degree = enriched.Education[i].Degree
			}
			if enriched.Education[i].FieldOfStudy != "" {
				out.Education[i].FieldOfStudy = enriched.Education[i].FieldOfStudy
			}
		}
	}
	return out
}

// extractPDFText writes the upload to a temp file and extracts page text.
func extractPDFText(fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	tmpFile, err := os.CreateTemp("", "cvstudio-import-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, src); err != nil {
		return "", fmt.Errorf("writing temp file: %w", err)
	}

	f, reader, err := pdf.Open(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn().Int("page", i).Err(err).Msg("Failed to extract text from PDF page")
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
