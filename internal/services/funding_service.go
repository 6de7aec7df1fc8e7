package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/internal/config"
)

// FundingService handles hosted-checkout sessions for stored-value purchases:
// wallet top-ups and gift cards. The provider speaks a Stripe-style
// form-encoded API and reports settlement through the session's
// payment_status field.
type FundingService struct {
	config *config.FundingConfig
	logger *logrus.Logger
	client *http.Client
}

// CheckoutSession represents a hosted payment page at the provider
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"` // unpaid, paid
	AmountTotal   int64  `json:"amount_total"`   // smallest currency unit
}

// Paid reports whether the session settled.
func (c *CheckoutSession) Paid() bool {
	return c.PaymentStatus == "paid"
}

// NewFundingService creates a new FundingService
func NewFundingService(cfg *config.FundingConfig, logger *logrus.Logger) *FundingService {
	return &FundingService{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateSession opens a hosted-checkout session for the amount (whole
// rupees). The caller stores the session id and polls it for settlement.
func (s *FundingService) CreateSession(amount int64, productName, reference string) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", s.config.SuccessURL)
	form.Set("cancel_url", s.config.CancelURL)
	form.Set("client_reference_id", reference)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", s.config.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(amount*100, 10))
	form.Set("line_items[0][price_data][product_data][name]", productName)

	req, err := http.NewRequest(http.MethodPost, s.config.BaseURL+"/checkout/sessions",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.config.SecretKey)

	var session CheckoutSession
	if err := s.do(req, &session); err != nil {
		s.logger.WithError(err).WithField("reference", reference).Error("Failed to create checkout session")
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"amount":     amount,
		"reference":  reference,
	}).Info("Checkout session created")

	return &session, nil
}

// GetSession retrieves a session's current state
func (s *FundingService) GetSession(sessionID string) (*CheckoutSession, error) {
	req, err := http.NewRequest(http.MethodGet, s.config.BaseURL+"/checkout/sessions/"+sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.SecretKey)

	var session CheckoutSession
	if err := s.do(req, &session); err != nil {
		return nil, fmt.Errorf("failed to retrieve session %s: %w", sessionID, err)
	}
	return &session, nil
}

func (s *FundingService) do(req *http.Request, out interface{}) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("funding request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read funding response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("funding provider returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode funding response: %w", err)
	}
	return nil
}
