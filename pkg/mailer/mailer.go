package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/internal/config"
)

// Template names the transactional mails the system sends.
type Template string

const (
	TemplateWelcome             Template = "welcome"
	TemplateBookingConfirmation Template = "booking_confirmation"
	TemplateBookingCancellation Template = "booking_cancellation"
	TemplateRefund              Template = "refund"
	TemplateWalletCredit        Template = "wallet_credit"
	TemplateWalletDebit         Template = "wallet_debit"
	TemplateGiftCard            Template = "gift_card"
)

// Attachment is a file carried with a mail, typically the PDF ticket.
type Attachment struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

// Mailer sends transactional mail. Delivery failures are the caller's to log
// and ignore: mail never blocks a booking transition.
type Mailer interface {
	Send(to string, template Template, data map[string]interface{}, attachments ...Attachment) error
}

// New returns a gateway-backed mailer, or a logging no-op in dev mode.
func New(cfg *config.MailConfig, logger *logrus.Logger) Mailer {
	if cfg.Mode == "dev" {
		return &devMailer{logger: logger}
	}
	return &httpMailer{
		config: cfg,
		logger: logger,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// devMailer logs instead of sending, for local development and tests
type devMailer struct {
	logger *logrus.Logger
}

func (m *devMailer) Send(to string, template Template, data map[string]interface{}, attachments ...Attachment) error {
	m.logger.WithFields(logrus.Fields{
		"to":          to,
		"template":    template,
		"data":        data,
		"attachments": len(attachments),
	}).Info("[DEV MAIL] Would send email")
	return nil
}

// httpMailer posts to a transactional mail API
type httpMailer struct {
	config *config.MailConfig
	logger *logrus.Logger
	client *http.Client
}

func (m *httpMailer) Send(to string, template Template, data map[string]interface{}, attachments ...Attachment) error {
	payload := map[string]interface{}{
		"from_address": m.config.FromAddr,
		"from_name":    m.config.FromName,
		"to":           to,
		"template":     template,
		"data":         data,
	}
	if len(attachments) > 0 {
		payload["attachments"] = attachments
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mail payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, m.config.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.config.APIKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	m.logger.WithFields(logrus.Fields{
		"to":       to,
		"template": template,
	}).Info("Email sent")
	return nil
}
