package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/internal/database"
	"github.com/eazybus/booking-backend/internal/models"
	"github.com/eazybus/booking-backend/pkg/mailer"
)

// WalletService owns the stored-value wallet: apply, top-up via hosted
// checkout, and the credit/debit paths other services settle through.
type WalletService struct {
	walletRepo *database.WalletRepository
	funding    *FundingService
	mail       mailer.Mailer
	logger     *logrus.Logger
}

// NewWalletService creates a new WalletService
func NewWalletService(
	walletRepo *database.WalletRepository,
	funding *FundingService,
	mail mailer.Mailer,
	logger *logrus.Logger,
) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		funding:    funding,
		mail:       mail,
		logger:     logger,
	}
}

// Apply opens a wallet for the user. One wallet per user; a second apply
// fails on the unique constraint.
func (s *WalletService) Apply(userID string, req *models.ApplyWalletRequest) (*models.Wallet, error) {
	existing, err := s.walletRepo.GetByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up wallet: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("user already holds a wallet")
	}

	wallet := &models.Wallet{
		UserID: userID,
		Holder: req.Holder,
		PAN:    req.PAN,
	}
	if err := s.walletRepo.Create(wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	err = s.mail.Send(userID, mailer.TemplateWelcome, map[string]interface{}{
		"holder": wallet.Holder,
	})
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to send welcome mail")
	}

	s.logger.WithField("user_id", userID).Info("Wallet opened")
	return wallet, nil
}

// Get returns the user's wallet, or nil when none exists
func (s *WalletService) Get(userID string) (*models.Wallet, error) {
	return s.walletRepo.GetByUser(userID)
}

// Transactions returns the user's transaction history, newest first
func (s *WalletService) Transactions(userID string) ([]models.WalletTransaction, error) {
	return s.walletRepo.ListTransactionsByUser(userID)
}

// TopUp opens a hosted-checkout session and stages an initiated credit
// transaction against it. The reconciliation sweep settles the credit once
// the session reports paid.
func (s *WalletService) TopUp(userID string, amount int64) (*CheckoutSession, error) {
	wallet, err := s.walletRepo.GetByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up wallet: %w", err)
	}
	if wallet == nil {
		return nil, fmt.Errorf("user has no wallet")
	}

	session, err := s.funding.CreateSession(amount, "EazyBus Wallet Top-Up", wallet.ID)
	if err != nil {
		return nil, err
	}

	tx := &models.WalletTransaction{
		UserID:    userID,
		WalletID:  wallet.ID,
		TxRef:     session.ID,
		Type:      models.WalletTxCredit,
		Status:    models.WalletTxInitiated,
		Amount:    amount,
		Narration: "Wallet top-up",
	}
	if err := s.walletRepo.CreateTransaction(tx); err != nil {
		return nil, fmt.Errorf("failed to stage top-up transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": session.ID,
		"amount":     amount,
	}).Info("Wallet top-up initiated")

	return session, nil
}

// Credit adds funds and records a completed credit transaction. Used for
// refunds, gift card redemptions, and settled top-ups.
func (s *WalletService) Credit(userID, walletID, ref string, amount int64, narration string) error {
	if err := s.walletRepo.Credit(walletID, amount); err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}

	tx := &models.WalletTransaction{
		UserID:    userID,
		WalletID:  walletID,
		TxRef:     ref,
		Type:      models.WalletTxCredit,
		Status:    models.WalletTxCompleted,
		Amount:    amount,
		Narration: narration,
	}
	if err := s.walletRepo.CreateTransaction(tx); err != nil {
		// balance moved but the audit row is missing; surface loudly
		s.logger.WithError(err).WithFields(logrus.Fields{
			"wallet_id": walletID,
			"ref":       ref,
			"fatal":     true,
		}).Error("Wallet credited without audit row")
		return fmt.Errorf("failed to record credit transaction: %w", err)
	}

	s.notify(userID, mailer.TemplateWalletCredit, amount, narration)
	return nil
}

// Debit withdraws funds behind the non-negative balance guard and records a
// completed debit transaction. Returns database.ErrInsufficientFunds
// (wrapped) when the balance cannot cover the amount.
func (s *WalletService) Debit(userID, walletID, ref string, amount int64, narration string) error {
	if err := s.walletRepo.Debit(walletID, amount); err != nil {
		return err
	}

	tx := &models.WalletTransaction{
		UserID:    userID,
		WalletID:  walletID,
		TxRef:     ref,
		Type:      models.WalletTxDebit,
		Status:    models.WalletTxCompleted,
		Amount:    amount,
		Narration: narration,
	}
	if err := s.walletRepo.CreateTransaction(tx); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"wallet_id": walletID,
			"ref":       ref,
			"fatal":     true,
		}).Error("Wallet debited without audit row")
		return fmt.Errorf("failed to record debit transaction: %w", err)
	}

	s.notify(userID, mailer.TemplateWalletDebit, amount, narration)
	return nil
}

func (s *WalletService) notify(userID string, template mailer.Template, amount int64, narration string) {
	// mail is best-effort; the balance mutation already committed
	err := s.mail.Send(userID, template, map[string]interface{}{
		"amount":    amount,
		"narration": narration,
	})
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to send wallet mail")
	}
}
