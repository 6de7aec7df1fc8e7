package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/eazybus/booking-backend/internal/database"
	"github.com/eazybus/booking-backend/internal/models"
	"github.com/eazybus/booking-backend/internal/utils"
	"github.com/eazybus/booking-backend/pkg/mailer"
)

// GiftCardService owns prepaid vouchers: purchase through hosted checkout,
// delivery by mail once settled, and redemption into a wallet.
type GiftCardService struct {
	giftRepo   *database.GiftCardRepository
	walletRepo *database.WalletRepository
	walletSvc  *WalletService
	funding    *FundingService
	mail       mailer.Mailer
	logger     *logrus.Logger
}

// NewGiftCardService creates a new GiftCardService
func NewGiftCardService(
	giftRepo *database.GiftCardRepository,
	walletRepo *database.WalletRepository,
	walletSvc *WalletService,
	funding *FundingService,
	mail mailer.Mailer,
	logger *logrus.Logger,
) *GiftCardService {
	return &GiftCardService{
		giftRepo:   giftRepo,
		walletRepo: walletRepo,
		walletSvc:  walletSvc,
		funding:    funding,
		mail:       mail,
		logger:     logger,
	}
}

// Purchase stages a gift card and opens a hosted-checkout session for it.
// The card stays payment-initiated, undeliverable and unredeemable, until
// the reconciliation sweep sees the session paid.
func (s *GiftCardService) Purchase(purchaserID string, req *models.PurchaseGiftCardRequest) (*CheckoutSession, error) {
	code, err := utils.NewGiftCardCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate card code: %w", err)
	}
	pin, err := utils.NewGiftCardPIN()
	if err != nil {
		return nil, fmt.Errorf("failed to generate card pin: %w", err)
	}
	pinHash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash card pin: %w", err)
	}

	session, err := s.funding.CreateSession(req.Amount, "EazyBus Gift Card", code)
	if err != nil {
		return nil, err
	}

	card := &models.GiftCard{
		Code:          code,
		PurchaserID:   purchaserID,
		RecipientMail: req.RecipientMail,
		Message:       req.Message,
		Amount:        req.Amount,
		PINHash:       string(pinHash),
		SessionRef:    session.ID,
		Status:        models.GiftCardOpen,
		PaymentStatus: models.GiftCardPaymentInitiated,
	}
	if err := s.giftRepo.Create(card); err != nil {
		return nil, fmt.Errorf("failed to stage gift card: %w", err)
	}

	// Only the bcrypt hash is stored, so the clear PIN must go out now.
	// The card stays unredeemable until the funding session settles, which
	// keeps an unpaid mailed card worthless.
	err = s.mail.Send(card.RecipientMail, mailer.TemplateGiftCard, map[string]interface{}{
		"code":    card.Code,
		"pin":     pin,
		"amount":  card.Amount,
		"message": card.Message,
		"pending": true,
	})
	if err != nil {
		s.logger.WithError(err).WithField("card_id", card.ID).Warn("Failed to send gift card mail")
	}

	s.logger.WithFields(logrus.Fields{
		"card_id":    card.ID,
		"purchaser":  purchaserID,
		"session_id": session.ID,
		"amount":     req.Amount,
	}).Info("Gift card purchase initiated")

	return session, nil
}

// Settle activates a card whose funding session paid and tells the recipient
// it is ready. Keyed on payment status, so a replayed sweep cannot activate
// twice.
func (s *GiftCardService) Settle(card *models.GiftCard) error {
	settled, err := s.giftRepo.MarkPaymentCompleted(card.ID)
	if err != nil {
		return fmt.Errorf("failed to settle gift card: %w", err)
	}
	if !settled {
		return nil
	}

	err = s.mail.Send(card.RecipientMail, mailer.TemplateGiftCard, map[string]interface{}{
		"code":    card.Code,
		"amount":  card.Amount,
		"message": card.Message,
		"pending": false,
	})
	if err != nil {
		s.logger.WithError(err).WithField("card_id", card.ID).Warn("Failed to send gift card mail")
	}

	s.logger.WithFields(logrus.Fields{"card_id": card.ID}).Info("Gift card activated")
	return nil
}

// Abandon discards a staged card whose funding session never settled.
func (s *GiftCardService) Abandon(card *models.GiftCard) error {
	if err := s.giftRepo.Delete(card.ID); err != nil {
		return fmt.Errorf("failed to discard gift card: %w", err)
	}
	s.logger.WithField("card_id", card.ID).Info("Abandoned gift card discarded")
	return nil
}

// Redeem claims a settled card into the user's wallet. The status-keyed
// update makes the race between two redeemers single-winner; the PIN check
// runs against the stored bcrypt hash.
func (s *GiftCardService) Redeem(userID string, req *models.RedeemGiftCardRequest) (*models.Wallet, error) {
	card, err := s.giftRepo.GetByCode(req.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up gift card: %w", err)
	}
	if card == nil {
		return nil, fmt.Errorf("gift card not found")
	}
	if !card.Redeemable() {
		return nil, fmt.Errorf("gift card is not redeemable")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(card.PINHash), []byte(req.PIN)); err != nil {
		return nil, fmt.Errorf("invalid gift card pin")
	}

	wallet, err := s.walletRepo.GetByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up wallet: %w", err)
	}
	if wallet == nil {
		return nil, fmt.Errorf("user has no wallet")
	}

	claimed, err := s.giftRepo.Redeem(card.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem gift card: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("gift card was already redeemed")
	}

	err = s.walletSvc.Credit(userID, wallet.ID, card.Code, card.Amount, "Gift card redemption")
	if err != nil {
		// card is marked redeemed but the wallet was not credited
		s.logger.WithError(err).WithFields(logrus.Fields{
			"card_id":   card.ID,
			"wallet_id": wallet.ID,
			"fatal":     true,
		}).Error("Gift card redeemed without wallet credit")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"card_id": card.ID,
		"user_id": userID,
	}).Info("Gift card redeemed")

	return s.walletRepo.GetByUser(userID)
}
