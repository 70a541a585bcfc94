package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// MetadataPendingID is the session metadata key carrying the pending booking ID
const MetadataPendingID = "pending_booking_id"

var ErrSessionNotFound = errors.New("checkout session not found")

// SessionRequest describes what the client is paying for
type SessionRequest struct {
	PendingID   string
	ClientEmail string
	Title       string
	Price       float64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// Session is a checkout session as seen by the booking flow
type Session struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Paid      bool   `json:"paid"`
	PendingID string `json:"pending_booking_id"`
}

// Provider creates and inspects hosted checkout sessions
type Provider interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
}

// StripeProvider uses Stripe Checkout in payment mode
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider creates a provider using the given secret key
func NewStripeProvider(secretKey string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api}
}

// CreateSession opens a Stripe Checkout session with one line item for the booking
func (p *StripeProvider) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	successURL := req.SuccessURL
	if !strings.Contains(successURL, "{CHECKOUT_SESSION_ID}") {
		sep := "?"
		if strings.Contains(successURL, "?") {
			sep = "&"
		}
		successURL += sep + "session_id={CHECKOUT_SESSION_ID}"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.PendingID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Title),
					},
					UnitAmount: stripe.Int64(MinorUnits(req.Price)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.ClientEmail != "" {
		params.CustomerEmail = stripe.String(req.ClientEmail)
	}
	params.AddMetadata(MetadataPendingID, req.PendingID)
	params.Context = ctx

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe checkout session: %w", err)
	}
	return fromStripe(s), nil
}

// GetSession fetches a Stripe Checkout session by ID
func (p *StripeProvider) GetSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.Get(id, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get stripe checkout session: %w", err)
	}
	return fromStripe(s), nil
}

func fromStripe(s *stripe.CheckoutSession) *Session {
	return &Session{
		ID:        s.ID,
		URL:       s.URL,
		Paid:      s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		PendingID: s.Metadata[MetadataPendingID],
	}
}

// MinorUnits converts a price to the smallest currency unit
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// LocalProvider settles sessions immediately without a payment gateway.
// It is meant for development when no Stripe key is configured.
type LocalProvider struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewLocalProvider creates an in-memory provider
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{sessions: make(map[string]*Session)}
}

// CreateSession records a paid session and points the client straight at the success URL
func (p *LocalProvider) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	id := "local_" + uuid.NewString()

	url := req.SuccessURL
	if strings.Contains(url, "{CHECKOUT_SESSION_ID}") {
		url = strings.ReplaceAll(url, "{CHECKOUT_SESSION_ID}", id)
	} else {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + "session_id=" + id
	}

	s := &Session{ID: id, URL: url, Paid: true, PendingID: req.PendingID}

	p.mu.Lock()
	p.sessions[id] = s
	p.mu.Unlock()

	copied := *s
	return &copied, nil
}

// GetSession returns a previously created session
func (p *LocalProvider) GetSession(ctx context.Context, id string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}
