package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v81"
	checkoutsession "github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/yourusername/cvstudio-api/internal/config"
	"github.com/yourusername/cvstudio-api/internal/model"
	"github.com/yourusername/cvstudio-api/internal/repository"
)

// StripeService sells one-time credit packs through Stripe Checkout.
type StripeService struct {
	cfg      *config.Config
	userRepo *repository.UserRepo
	txRepo   *repository.TransactionRepo
}

func NewStripeService(cfg *config.Config, userRepo *repository.UserRepo, txRepo *repository.TransactionRepo) *StripeService {
	stripe.Key = cfg.StripeSecretKey
	return &StripeService{cfg: cfg, userRepo: userRepo, txRepo: txRepo}
}

// CreateCheckoutSession builds a one-time payment session for a credit pack
// and returns the redirect URL.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, packID string) (string, error) {
	pack := model.FindCreditPack(packID)
	if pack == nil {
		return "", fmt.Errorf("unknown credit pack: %s", packID)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("finding user for checkout: %w", err)
	}
	if user == nil {
		return "", fmt.Errorf("no user %s for checkout", userID)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(user.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(pack.PriceUSD),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("%d CV credits", pack.Credits)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.FrontendURL + "?checkout=success"),
		CancelURL:  stripe.String(s.cfg.FrontendURL + "?checkout=cancel"),
	}
	params.AddMetadata("cvstudio_user_id", userID.String())
	params.AddMetadata("pack_id", pack.ID)
	params.AddMetadata("credits", strconv.Itoa(pack.Credits))

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("creating checkout session: %w", err)
	}

	log.Info().
		Str("userId", userID.String()).
		Str("pack", pack.ID).
		Msg("Checkout session created")

	return sess.URL, nil
}

// VerifyWebhook verifies the Stripe webhook signature and returns the event
func (s *StripeService) VerifyWebhook(body io.Reader, signature string) (*stripe.Event, error) {
	payload, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading webhook body: %w", err)
	}

	event, err := webhook.ConstructEvent(payload, signature, s.cfg.StripeWebhookSecret)
	if err != nil {
		if s.cfg.Env == "development" {
			log.Warn().Err(err).Msg("Webhook signature failed — falling back to raw parse (dev mode)")
			var fallbackEvent stripe.Event
			if jsonErr := json.Unmarshal(payload, &fallbackEvent); jsonErr != nil {
				return nil, fmt.Errorf("verifying webhook signature: %w (raw parse also failed: %v)", err, jsonErr)
			}
			return &fallbackEvent, nil
		}
		return nil, fmt.Errorf("verifying webhook signature: %w", err)
	}

	return &event, nil
}

// HandleWebhookEvent processes a Stripe webhook event
func (s *StripeService) HandleWebhookEvent(ctx context.Context, event *stripe.Event) error {
	log.Info().
		Str("type", string(event.Type)).
		Str("id", event.ID).
		Msg("Processing Stripe webhook")

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	default:
		log.Debug().Str("type", string(event.Type)).Msg("Ignoring unhandled webhook type")
		return nil
	}
}

func (s *StripeService) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	var session struct {
		Mode     string            `json:"mode"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("unmarshaling checkout session: %w", err)
	}

	if session.Mode != "payment" {
		log.Debug().Str("mode", session.Mode).Msg("Ignoring non-payment checkout")
		return nil
	}

	userID, err := uuid.Parse(session.Metadata["cvstudio_user_id"])
	if err != nil {
		return fmt.Errorf("checkout session missing user id: %w", err)
	}
	credits, err := strconv.Atoi(session.Metadata["credits"])
	if err != nil || credits <= 0 {
		return fmt.Errorf("checkout session has invalid credit amount %q", session.Metadata["credits"])
	}

	if err := s.userRepo.AddPurchasedCredits(ctx, userID, credits); err != nil {
		return fmt.Errorf("crediting purchase: %w", err)
	}
	if err := s.txRepo.Record(ctx, userID, credits, model.TxPurchase,
		fmt.Sprintf("Purchased %s", session.Metadata["pack_id"])); err != nil {
		return fmt.Errorf("recording purchase transaction: %w", err)
	}

	log.Info().
		Str("userId", userID.String()).
		Int("credits", credits).
		Msg("Credit purchase applied")
	return nil
}
