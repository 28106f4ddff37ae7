package handler

import (
	"context"
	"fmt"
	"io"

	"github.com/yourusername/cvstudio-api/internal/config"
	"github.com/yourusername/cvstudio-api/internal/model"
	"github.com/yourusername/cvstudio-api/internal/service"
)

// AIFactory builds a provider client per request: the user's own key when
// they configured one, otherwise the platform default from config.
type AIFactory struct {
	cfg *config.Config
}

func NewAIFactory(cfg *config.Config) *AIFactory {
	return &AIFactory{cfg: cfg}
}

// ProviderFor returns the client and model id to use for a user's request.
func (f *AIFactory) ProviderFor(ctx context.Context, user *model.User) (service.Provider, string, error) {
	if user != nil && user.APIProvider != "" && user.APIKeyEncrypted != "" {
		p, err := service.NewProvider(ctx, user.APIProvider, user.APIKeyEncrypted)
		if err != nil {
			return nil, "", fmt.Errorf("user provider: %w", err)
		}
		return p, user.APIModel, nil
	}

	if f.cfg.AIAPIKey == "" {
		return nil, "", fmt.Errorf("no AI provider configured")
	}
	p, err := service.NewProvider(ctx, f.cfg.AIProvider, f.cfg.AIAPIKey)
	if err != nil {
		return nil, "", err
	}
	return p, f.cfg.AIModel, nil
}

// closeProvider releases SDK-backed clients (the Gemini adapter holds a
// connection); HTTP-based adapters are no-ops.
func closeProvider(p service.Provider) {
	if c, ok := p.(io.Closer); ok {
		c.Close()
	}
}
