package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/internal/config"
)

// CardGatewayService handles card payment integration with the Razorpay-style
// orders API: create an order, poll its payments, refund a captured payment.
type CardGatewayService struct {
	config *config.GatewayConfig
	logger *logrus.Logger
	client *http.Client
}

// GatewayOrder represents an order created at the gateway
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // smallest currency unit
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// GatewayPayment represents one payment attempt against an order
type GatewayPayment struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"` // created, authorized, captured, refunded, failed
	Method   string `json:"method"`
}

// GatewayRefund represents a refund issued against a captured payment
type GatewayRefund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

type gatewayPaymentList struct {
	Count int              `json:"count"`
	Items []GatewayPayment `json:"items"`
}

// NewCardGatewayService creates a new CardGatewayService
func NewCardGatewayService(cfg *config.GatewayConfig, logger *logrus.Logger) *CardGatewayService {
	return &CardGatewayService{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateOrder registers a payable order at the gateway. Amount is whole
// rupees; the gateway wire format wants paise.
func (s *CardGatewayService) CreateOrder(amount int64, receipt string) (*GatewayOrder, error) {
	payload := map[string]interface{}{
		"amount":   amount * 100,
		"currency": s.config.Currency,
		"receipt":  receipt,
	}

	var order GatewayOrder
	if err := s.post("/orders", payload, &order); err != nil {
		s.logger.WithError(err).WithField("receipt", receipt).Error("Failed to create gateway order")
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"amount":   amount,
		"receipt":  receipt,
	}).Info("Gateway order created")

	return &order, nil
}

// FetchOrderPayments lists the payment attempts recorded against an order
func (s *CardGatewayService) FetchOrderPayments(orderID string) ([]GatewayPayment, error) {
	var list gatewayPaymentList
	if err := s.get("/orders/"+orderID+"/payments", &list); err != nil {
		return nil, fmt.Errorf("failed to fetch payments for order %s: %w", orderID, err)
	}
	return list.Items, nil
}

// CapturedPayment returns the captured payment against an order, or nil when
// no attempt has been captured yet.
func (s *CardGatewayService) CapturedPayment(orderID string) (*GatewayPayment, error) {
	payments, err := s.FetchOrderPayments(orderID)
	if err != nil {
		return nil, err
	}
	for i := range payments {
		if payments[i].Status == "captured" {
			return &payments[i], nil
		}
	}
	return nil, nil
}

// Refund issues a partial refund against a captured payment. Amount is whole
// rupees.
func (s *CardGatewayService) Refund(paymentID string, amount int64) (*GatewayRefund, error) {
	payload := map[string]interface{}{
		"amount": amount * 100,
	}

	var refund GatewayRefund
	if err := s.post("/payments/"+paymentID+"/refund", payload, &refund); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"payment_id": paymentID,
			"amount":     amount,
		}).Error("Failed to issue gateway refund")
		return nil, fmt.Errorf("failed to refund payment %s: %w", paymentID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"refund_id":  refund.ID,
		"payment_id": paymentID,
		"amount":     amount,
	}).Info("Gateway refund issued")

	return &refund, nil
}

// VerifyWebhookSignature checks the HMAC-SHA256 signature a payment callback
// carries: hex(HMAC(secret, "orderRef|paymentRef")). Comparison is constant
// time.
func (s *CardGatewayService) VerifyWebhookSignature(orderRef, paymentRef, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.config.WebhookSecret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *CardGatewayService) post(path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.config.KeyID, s.config.KeySecret)

	return s.do(req, out)
}

func (s *CardGatewayService) get(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, s.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(s.config.KeyID, s.config.KeySecret)

	return s.do(req, out)
}

func (s *CardGatewayService) do(req *http.Request, out interface{}) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}
