package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/internal/database"
	"github.com/eazybus/booking-backend/internal/models"
	"github.com/eazybus/booking-backend/internal/utils"
)

// ReconciliationService runs the idempotent background sweeps that converge
// storage toward the truth: reclaiming stale holds, settling pending
// payments, retiring finished bookings, and rolling the catalog. Every sweep
// skips and logs a failing row instead of aborting, and every transition is
// keyed on the row's current status so overlapping runs cannot double-apply.
type ReconciliationService struct {
	bookingRepo *database.BookingRepository
	walletRepo  *database.WalletRepository
	giftRepo    *database.GiftCardRepository
	serviceRepo *database.ServiceRepository
	catalog     *CatalogService
	bookingSvc  *BookingService
	seatLock    *SeatLockService
	gateway     *CardGatewayService
	funding     *FundingService
	giftSvc     *GiftCardService
	clock       *utils.Clock

	holdGrace        time.Duration
	completionBuffer time.Duration
	logger           *logrus.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	bookingRepo *database.BookingRepository,
	walletRepo *database.WalletRepository,
	giftRepo *database.GiftCardRepository,
	serviceRepo *database.ServiceRepository,
	catalog *CatalogService,
	bookingSvc *BookingService,
	seatLock *SeatLockService,
	gateway *CardGatewayService,
	funding *FundingService,
	giftSvc *GiftCardService,
	clock *utils.Clock,
	holdGrace time.Duration,
	completionBuffer time.Duration,
	logger *logrus.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		bookingRepo:      bookingRepo,
		walletRepo:       walletRepo,
		giftRepo:         giftRepo,
		serviceRepo:      serviceRepo,
		catalog:          catalog,
		bookingSvc:       bookingSvc,
		seatLock:         seatLock,
		gateway:          gateway,
		funding:          funding,
		giftSvc:          giftSvc,
		clock:            clock,
		holdGrace:        holdGrace,
		completionBuffer: completionBuffer,
		logger:           logger,
	}
}

// SweepDepartedServices turns off today's services past the booking cutoff
func (s *ReconciliationService) SweepDepartedServices() {
	n, err := s.catalog.DeactivateDeparted()
	if err != nil {
		s.logger.WithError(err).Error("Departed services sweep failed")
		return
	}
	if n > 0 {
		s.logger.WithField("deactivated", n).Info("Departed services swept")
	}
}

// SweepStaleHolds reclaims seats from initiated bookings that outlived the
// hold grace period. The delete runs first and is keyed on the initiated
// status: a payment landing between the listing and the delete promotes the
// row, the delete misses, and the sold seats are never re-enabled.
func (s *ReconciliationService) SweepStaleHolds() {
	now := time.Now()
	stale, err := s.bookingRepo.ListByStatusOlderThan(models.BookingStatusInitiated, now.Add(-s.holdGrace))
	if err != nil {
		s.logger.WithError(err).Error("Stale holds sweep failed to list")
		return
	}

	for i := range stale {
		booking := &stale[i]
		if !booking.HoldExpired(now, s.holdGrace) {
			continue
		}

		deleted, err := s.bookingRepo.DeleteInitiated(booking.ID)
		if err != nil {
			s.logger.WithError(err).WithField("booking_id", booking.BookingID).Error("Stale hold: failed to delete booking")
			continue
		}
		if !deleted {
			// promoted to paid since the listing; the seats are sold
			continue
		}

		svc, err := s.serviceRepo.GetByServiceNoAndDate(booking.ServiceNo, booking.JourneyDate)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"booking_id": booking.BookingID,
				"fatal":      true,
			}).Error("Stale hold deleted but service lookup failed, seats still held")
			continue
		}
		// a purged service took its inventory with it; nothing to release
		if svc != nil {
			if err := s.seatLock.Release(svc.ID, booking.Seats); err != nil {
				s.logger.WithError(err).WithField("booking_id", booking.BookingID).Error("Stale hold: failed to release seats")
				continue
			}
		}

		s.logger.WithFields(logrus.Fields{
			"booking_id": booking.BookingID,
			"seats":      booking.Seats,
		}).Info("Stale hold reclaimed")
	}
}

// SweepCompletions retires paid bookings older than the completion buffer
func (s *ReconciliationService) SweepCompletions() {
	now := time.Now()
	due, err := s.bookingRepo.ListByStatusOlderThan(models.BookingStatusPaid, now.Add(-s.completionBuffer))
	if err != nil {
		s.logger.WithError(err).Error("Completions sweep failed to list")
		return
	}

	for i := range due {
		booking := &due[i]
		if !booking.CompletionDue(now, s.completionBuffer) {
			continue
		}
		retired, err := s.bookingRepo.MarkCompleted(booking.ID)
		if err != nil {
			s.logger.WithError(err).WithField("booking_id", booking.BookingID).Error("Completion sweep: failed to retire")
			continue
		}
		if retired {
			s.logger.WithField("booking_id", booking.BookingID).Info("Booking completed")
		}
	}
}

// SweepPendingCardPayments polls the gateway for initiated card bookings the
// webhook never reached and promotes the captured ones. The webhook and this
// poller share the status-keyed promotion, so double delivery is harmless.
func (s *ReconciliationService) SweepPendingCardPayments() {
	pending, err := s.bookingRepo.ListPendingCardPayments()
	if err != nil {
		s.logger.WithError(err).Error("Card payments sweep failed to list")
		return
	}

	for i := range pending {
		booking := &pending[i]
		if !booking.PaymentPending() {
			continue
		}

		payment, err := s.gateway.CapturedPayment(booking.OrderRef)
		if err != nil {
			s.logger.WithError(err).WithField("booking_id", booking.BookingID).Error("Card payments sweep: poll failed")
			continue
		}
		if payment == nil {
			continue
		}

		if err := s.bookingSvc.settleCardPayment(booking, payment.ID); err != nil {
			s.logger.WithError(err).WithField("booking_id", booking.BookingID).Error("Card payments sweep: settle failed")
		}
	}
}

// SweepFundingSessions polls the funding provider for initiated wallet
// credits and gift card purchases. Paid sessions settle; sessions abandoned
// past the hold grace are discarded.
func (s *ReconciliationService) SweepFundingSessions() {
	s.sweepWalletCredits()
	s.sweepGiftCardPurchases()
}

func (s *ReconciliationService) sweepWalletCredits() {
	credits, err := s.walletRepo.ListInitiatedCredits()
	if err != nil {
		s.logger.WithError(err).Error("Wallet credits sweep failed to list")
		return
	}

	for i := range credits {
		tx := &credits[i]

		session, err := s.funding.GetSession(tx.TxRef)
		if err != nil {
			s.logger.WithError(err).WithField("tx_ref", tx.TxRef).Error("Wallet credits sweep: poll failed")
			continue
		}

		if session.Paid() {
			settled, err := s.walletRepo.SettleTransaction(tx.ID, models.WalletTxCompleted)
			if err != nil {
				s.logger.WithError(err).WithField("tx_ref", tx.TxRef).Error("Wallet credits sweep: settle failed")
				continue
			}
			if !settled {
				continue
			}
			if err := s.walletRepo.Credit(tx.WalletID, tx.Amount); err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"tx_ref": tx.TxRef,
					"fatal":  true,
				}).Error("Wallet credits sweep: transaction settled but balance not credited")
				continue
			}
			s.logger.WithFields(logrus.Fields{
				"tx_ref": tx.TxRef,
				"amount": tx.Amount,
			}).Info("Wallet top-up settled")
			continue
		}

		if time.Since(tx.CreatedAt) > s.holdGrace {
			if err := s.walletRepo.DeleteTransaction(tx.ID); err != nil {
				s.logger.WithError(err).WithField("tx_ref", tx.TxRef).Error("Wallet credits sweep: cleanup failed")
				continue
			}
			s.logger.WithField("tx_ref", tx.TxRef).Info("Abandoned top-up discarded")
		}
	}
}

func (s *ReconciliationService) sweepGiftCardPurchases() {
	cards, err := s.giftRepo.ListInitiatedPurchases()
	if err != nil {
		s.logger.WithError(err).Error("Gift card sweep failed to list")
		return
	}

	for i := range cards {
		card := &cards[i]

		session, err := s.funding.GetSession(card.SessionRef)
		if err != nil {
			s.logger.WithError(err).WithField("card_id", card.ID).Error("Gift card sweep: poll failed")
			continue
		}

		if session.Paid() {
			if err := s.giftSvc.Settle(card); err != nil {
				s.logger.WithError(err).WithField("card_id", card.ID).Error("Gift card sweep: settle failed")
			}
			continue
		}

		if time.Since(card.CreatedAt) > s.holdGrace {
			if err := s.giftSvc.Abandon(card); err != nil {
				s.logger.WithError(err).WithField("card_id", card.ID).Error("Gift card sweep: cleanup failed")
			}
		}
	}
}

// SweepCatalog rolls the catalog window forward: today and tomorrow exist,
// yesterday is purged.
func (s *ReconciliationService) SweepCatalog() {
	if _, err := s.catalog.EnsureServiceDay(s.clock.Today()); err != nil {
		s.logger.WithError(err).Error("Catalog sweep: ensure today failed")
	}
	if _, err := s.catalog.EnsureServiceDay(s.clock.Tomorrow()); err != nil {
		s.logger.WithError(err).Error("Catalog sweep: ensure tomorrow failed")
	}
	if _, err := s.catalog.PurgeServiceDay(s.clock.Yesterday()); err != nil {
		s.logger.WithError(err).Error("Catalog sweep: purge yesterday failed")
	}
}
