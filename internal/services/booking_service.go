package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/internal/database"
	"github.com/eazybus/booking-backend/internal/models"
	"github.com/eazybus/booking-backend/internal/utils"
	"github.com/eazybus/booking-backend/pkg/mailer"
	"github.com/eazybus/booking-backend/pkg/ticket"
)

// BookingService drives the reservation flow: staging a session, checkout
// through one of the settlement paths, the payment callback, and
// cancellation with refund.
type BookingService struct {
	bookingRepo *database.BookingRepository
	sessionRepo *database.SessionRepository
	serviceRepo *database.ServiceRepository
	seatLock    *SeatLockService
	gateway     *CardGatewayService
	walletSvc   *WalletService
	walletRepo  *database.WalletRepository
	mail        mailer.Mailer
	renderer    *ticket.Renderer
	clock       *utils.Clock
	logger      *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookingRepo *database.BookingRepository,
	sessionRepo *database.SessionRepository,
	serviceRepo *database.ServiceRepository,
	seatLock *SeatLockService,
	gateway *CardGatewayService,
	walletSvc *WalletService,
	walletRepo *database.WalletRepository,
	mail mailer.Mailer,
	renderer *ticket.Renderer,
	clock *utils.Clock,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		sessionRepo: sessionRepo,
		serviceRepo: serviceRepo,
		seatLock:    seatLock,
		gateway:     gateway,
		walletSvc:   walletSvc,
		walletRepo:  walletRepo,
		mail:        mail,
		renderer:    renderer,
		clock:       clock,
		logger:      logger,
	}
}

// Flow errors the handler layer maps onto caller-facing outcomes.
var (
	ErrNoSession        = errors.New("no staged reservation session")
	ErrSeatsTaken       = errors.New("selected seats are no longer available")
	ErrServiceGone      = errors.New("service is not bookable")
	ErrNotCancellable   = errors.New("booking cannot be cancelled")
	ErrInvalidSignature = errors.New("payment callback signature mismatch")
)

// SettlementMethod is the tagged settlement variant chosen at checkout.
type SettlementMethod string

const (
	SettleByCard   SettlementMethod = "card"
	SettleByWallet SettlementMethod = "eazy-wallet"
)

// CheckoutResult tells the caller how to proceed after checkout. Card
// checkouts return the gateway order to pay; wallet checkouts settle
// immediately and return the finished booking.
type CheckoutResult struct {
	Booking *models.Booking `json:"booking"`
	Order   *GatewayOrder   `json:"order,omitempty"`
}

// ============================================================================
// SESSION STAGING
// ============================================================================

// StageSelection verifies the chosen seats against the live inventory and
// stages them in the user's session, overwriting any earlier selection.
func (s *BookingService) StageSelection(userID string, req *models.SelectSeatsRequest) (*models.ReservationSession, error) {
	svc, err := s.serviceRepo.GetByServiceNoAndDate(req.ServiceNo, req.JourneyDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if svc == nil || !svc.Active {
		return nil, ErrServiceGone
	}

	var chosen models.StringArray
	for _, seatNo := range req.Seats {
		if !svc.HasSeat(seatNo) {
			return nil, fmt.Errorf("seat %s does not exist on service %s", seatNo, req.ServiceNo)
		}
		if chosen.Contains(seatNo) {
			return nil, fmt.Errorf("seat %s selected more than once", seatNo)
		}
		chosen = append(chosen, seatNo)
	}

	ok, blocked, err := s.seatLock.CheckAvailability(svc.ID, req.Seats)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrSeatsTaken, blocked)
	}

	session := &models.ReservationSession{
		UserID:      userID,
		ServiceNo:   svc.ServiceNo,
		JourneyDate: svc.ServiceDate,
		Origin:      svc.Origin,
		Destination: svc.Destination,
		BusName:     svc.BusName,
		DepTime:     svc.DepTime,
		ArrTime:     svc.ArrTime,
		BoardingPt:  svc.BoardingPt,
		DropPt:      svc.DropPt,
		Seats:       models.StringArray(req.Seats),
		Fare:        svc.Fare * int64(len(req.Seats)),
	}
	if err := s.sessionRepo.Upsert(session); err != nil {
		return nil, fmt.Errorf("failed to stage session: %w", err)
	}
	return session, nil
}

// AttachPassenger adds passenger details to the staged session
func (s *BookingService) AttachPassenger(userID string, req *models.PassengerRequest) error {
	updated, err := s.sessionRepo.UpdatePassenger(userID, req.Name, req.Age, req.Phone, req.Gender)
	if err != nil {
		return fmt.Errorf("failed to attach passenger: %w", err)
	}
	if !updated {
		return ErrNoSession
	}
	return nil
}

// ============================================================================
// CHECKOUT
// ============================================================================

// Checkout settles the staged session through the chosen method. The seat
// hold happens before any money moves; a failed settlement releases it.
func (s *BookingService) Checkout(userID string, method SettlementMethod) (*CheckoutResult, error) {
	session, err := s.sessionRepo.GetByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrNoSession
	}

	svc, err := s.serviceRepo.GetByServiceNoAndDate(session.ServiceNo, session.JourneyDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if svc == nil || !svc.Active {
		return nil, ErrServiceGone
	}

	// the departed-services sweep runs on an interval; a same-day service
	// whose departure already passed is not sellable in the gap either
	if session.JourneyDate == s.clock.Today() && utils.TimeBefore(svc.DepTime, s.clock.CutoffTime(0)) {
		return nil, ErrServiceGone
	}

	// another live session staging any of these seats means a seat fight;
	// the later checkout re-selects
	overlapping, err := s.sessionRepo.CountOverlapping(session.ServiceNo, session.JourneyDate, session.Seats)
	if err != nil {
		return nil, fmt.Errorf("failed to check overlapping sessions: %w", err)
	}
	if overlapping > 1 {
		return nil, ErrSeatsTaken
	}

	switch method {
	case SettleByCard:
		return s.checkoutCard(userID, session, svc)
	case SettleByWallet:
		return s.checkoutWallet(userID, session, svc)
	default:
		return nil, fmt.Errorf("unknown settlement method %q", method)
	}
}

// checkoutCard holds the seats, registers a gateway order, and records an
// initiated booking waiting on the payment callback.
func (s *BookingService) checkoutCard(userID string, session *models.ReservationSession, svc *models.Service) (*CheckoutResult, error) {
	if err := s.seatLock.Hold(svc.ID, session.Seats); err != nil {
		if errors.Is(err, database.ErrSeatConflict) {
			return nil, ErrSeatsTaken
		}
		return nil, err
	}

	bookingID, err := utils.NewBookingID()
	if err != nil {
		s.rollbackHold(svc.ID, session.Seats)
		return nil, err
	}

	order, err := s.gateway.CreateOrder(session.Fare, bookingID)
	if err != nil {
		s.rollbackHold(svc.ID, session.Seats)
		return nil, err
	}

	booking := s.bookingFromSession(userID, session, bookingID)
	booking.OrderRef = order.ID
	booking.PaymentRef = models.PendingPaymentRef
	booking.PaymentMethod = models.PaymentMethodCard
	booking.Status = models.BookingStatusInitiated

	if err := s.bookingRepo.Create(booking); err != nil {
		s.rollbackHold(svc.ID, session.Seats)
		return nil, fmt.Errorf("failed to record booking: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.BookingID,
		"order_ref":  booking.OrderRef,
		"user_id":    userID,
	}).Info("Card checkout initiated")

	return &CheckoutResult{Booking: booking, Order: order}, nil
}

// checkoutWallet holds the seats, debits the wallet behind its balance
// guard, and records the booking as paid immediately.
func (s *BookingService) checkoutWallet(userID string, session *models.ReservationSession, svc *models.Service) (*CheckoutResult, error) {
	wallet, err := s.walletRepo.GetByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	if wallet == nil {
		return nil, fmt.Errorf("user has no wallet")
	}
	if wallet.Balance < session.Fare {
		return nil, database.ErrInsufficientFunds
	}

	if err := s.seatLock.Hold(svc.ID, session.Seats); err != nil {
		if errors.Is(err, database.ErrSeatConflict) {
			return nil, ErrSeatsTaken
		}
		return nil, err
	}

	bookingID, err := utils.NewBookingID()
	if err != nil {
		s.rollbackHold(svc.ID, session.Seats)
		return nil, err
	}
	orderRef, err := utils.NewWalletSettlementRef()
	if err != nil {
		s.rollbackHold(svc.ID, session.Seats)
		return nil, err
	}

	err = s.walletSvc.Debit(userID, wallet.ID, orderRef, session.Fare,
		fmt.Sprintf("Booking %s", bookingID))
	if err != nil {
		s.rollbackHold(svc.ID, session.Seats)
		return nil, err
	}

	booking := s.bookingFromSession(userID, session, bookingID)
	booking.OrderRef = orderRef
	booking.PaymentRef = orderRef
	booking.PaymentMethod = models.PaymentMethodWallet
	booking.Status = models.BookingStatusPaid

	if err := s.bookingRepo.Create(booking); err != nil {
		// money already moved; keep the seats held and escalate
		s.logger.WithError(err).WithFields(logrus.Fields{
			"order_ref": orderRef,
			"user_id":   userID,
			"fatal":     true,
		}).Error("Wallet debited but booking not recorded")
		return nil, fmt.Errorf("failed to record booking: %w", err)
	}

	s.finishPaidBooking(booking)

	return &CheckoutResult{Booking: booking}, nil
}

func (s *BookingService) bookingFromSession(userID string, session *models.ReservationSession, bookingID string) *models.Booking {
	return &models.Booking{
		UserID:      userID,
		BookingID:   bookingID,
		BookingDate: s.clock.Today(),
		ServiceNo:   session.ServiceNo,
		JourneyDate: session.JourneyDate,
		BusName:     session.BusName,
		Origin:      session.Origin,
		Destination: session.Destination,
		DepTime:     session.DepTime,
		ArrTime:     session.ArrTime,
		BoardingPt:  session.BoardingPt,
		DropPt:      session.DropPt,
		Seats:       session.Seats,
		Fare:        session.Fare,
		PaxName:     session.PaxName,
		PaxAge:      session.PaxAge,
		PaxPhone:    session.PaxPhone,
		PaxGender:   session.PaxGender,
	}
}

func (s *BookingService) rollbackHold(serviceID string, seats []string) {
	if err := s.seatLock.Release(serviceID, seats); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"service_id": serviceID,
			"seats":      seats,
		}).Error("Failed to roll back seat hold")
	}
}

// finishPaidBooking runs the side effects of a booking reaching paid:
// consume the session and send the confirmation mail with the ticket
// attached. Neither failure rolls the payment back.
func (s *BookingService) finishPaidBooking(booking *models.Booking) {
	if err := s.sessionRepo.Delete(booking.UserID); err != nil {
		s.logger.WithError(err).WithField("user_id", booking.UserID).Warn("Failed to consume session")
	}

	var attachments []mailer.Attachment
	if pdf, err := s.renderer.RenderTicket(booking); err == nil {
		attachments = append(attachments, mailer.Attachment{
			Filename: booking.BookingID + ".pdf",
			Content:  pdf,
		})
	} else {
		s.logger.WithError(err).WithField("booking_id", booking.BookingID).Warn("Failed to render ticket")
	}

	err := s.mail.Send(booking.UserID, mailer.TemplateBookingConfirmation, map[string]interface{}{
		"booking_id":   booking.BookingID,
		"journey_date": booking.JourneyDate,
		"origin":       booking.Origin,
		"destination":  booking.Destination,
		"seats":        booking.Seats,
		"fare":         booking.Fare,
	}, attachments...)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.BookingID).Warn("Failed to send confirmation mail")
	}
}

// ============================================================================
// PAYMENT CALLBACK
// ============================================================================

// WebhookPayload is the payment callback the gateway posts after a card
// payment attempt.
type WebhookPayload struct {
	OrderRef   string `json:"order_ref" binding:"required"`
	PaymentRef string `json:"payment_ref" binding:"required"`
	Signature  string `json:"signature" binding:"required"`
}

// HandlePaymentCallback verifies the callback signature and promotes the
// matching booking to paid. Replays and unknown orders are no-ops.
func (s *BookingService) HandlePaymentCallback(payload *WebhookPayload) error {
	if !s.gateway.VerifyWebhookSignature(payload.OrderRef, payload.PaymentRef, payload.Signature) {
		s.logger.WithField("order_ref", payload.OrderRef).Warn("Payment callback signature mismatch")
		return ErrInvalidSignature
	}

	booking, err := s.bookingRepo.GetByOrderRef(payload.OrderRef)
	if err != nil {
		return fmt.Errorf("failed to load booking: %w", err)
	}
	if booking == nil {
		s.logger.WithField("order_ref", payload.OrderRef).Warn("Payment callback for unknown order")
		return nil
	}

	return s.settleCardPayment(booking, payload.PaymentRef)
}

// settleCardPayment promotes an initiated card booking to paid. Shared by
// the webhook and the reconciliation poller; the status-keyed update makes
// whichever arrives second a no-op.
func (s *BookingService) settleCardPayment(booking *models.Booking, paymentRef string) error {
	promoted, err := s.bookingRepo.MarkPaid(booking.ID, paymentRef)
	if err != nil {
		return fmt.Errorf("failed to mark booking paid: %w", err)
	}
	if !promoted {
		return nil
	}

	booking.Status = models.BookingStatusPaid
	booking.PaymentRef = paymentRef
	s.finishPaidBooking(booking)

	s.logger.WithFields(logrus.Fields{
		"booking_id":  booking.BookingID,
		"payment_ref": paymentRef,
	}).Info("Booking paid")
	return nil
}

// ============================================================================
// QUERIES AND CANCELLATION
// ============================================================================

// ListBookings returns the user's bookings, newest first
func (s *BookingService) ListBookings(userID string) ([]models.Booking, error) {
	return s.bookingRepo.ListByUser(userID)
}

// GetBooking returns one of the user's bookings by its visible reference
func (s *BookingService) GetBooking(userID, bookingID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByBookingID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking == nil || booking.UserID != userID {
		return nil, nil
	}
	return booking, nil
}

// RenderTicket produces the downloadable ticket PDF for a paid booking
func (s *BookingService) RenderTicket(userID, bookingID string) ([]byte, error) {
	booking, err := s.paidBooking(userID, bookingID)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderTicket(booking)
}

// RenderInvoice produces the downloadable tax invoice PDF for a paid booking
func (s *BookingService) RenderInvoice(userID, bookingID string) ([]byte, error) {
	booking, err := s.paidBooking(userID, bookingID)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderInvoice(booking)
}

func (s *BookingService) paidBooking(userID, bookingID string) (*models.Booking, error) {
	booking, err := s.GetBooking(userID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("booking not found")
	}
	if booking.Status != models.BookingStatusPaid && booking.Status != models.BookingStatusCompleted {
		return nil, fmt.Errorf("document is only available for paid bookings")
	}
	return booking, nil
}

// Cancel cancels a paid booking before its service departs: seats go back
// on sale, the status flips paid -> cancelled, and half the fare is
// refunded. The refund goes back the way the money came in: wallet-settled
// bookings are credited to the wallet, card bookings are refunded at the
// gateway against the captured payment.
func (s *BookingService) Cancel(userID, bookingID string) (*models.Booking, error) {
	booking, err := s.GetBooking(userID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("booking not found")
	}
	if !booking.Cancellable() {
		return nil, ErrNotCancellable
	}

	svc, err := s.serviceRepo.GetByServiceNoAndDate(booking.ServiceNo, booking.JourneyDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if svc == nil || !svc.Active {
		return nil, ErrNotCancellable
	}

	cancelled, err := s.bookingRepo.MarkCancelled(booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	if !cancelled {
		// lost a race with another cancel or the completion sweep
		return nil, ErrNotCancellable
	}
	booking.Status = models.BookingStatusCancelled

	if err := s.seatLock.Release(svc.ID, booking.Seats); err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.BookingID).Error("Failed to release cancelled seats")
	}

	refund := booking.RefundAmount()
	s.refund(booking, refund)

	err = s.mail.Send(booking.UserID, mailer.TemplateBookingCancellation, map[string]interface{}{
		"booking_id": booking.BookingID,
		"refund":     refund,
	})
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.BookingID).Warn("Failed to send cancellation mail")
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.BookingID,
		"refund":     refund,
	}).Info("Booking cancelled")

	return booking, nil
}

// refund returns money through the channel the booking was settled on.
func (s *BookingService) refund(booking *models.Booking, amount int64) {
	switch booking.PaymentMethod {
	case models.PaymentMethodWallet:
		s.refundToWallet(booking, amount)
	case models.PaymentMethodCard:
		s.refundToCard(booking, amount)
	default:
		s.logger.WithFields(logrus.Fields{
			"booking_id":     booking.BookingID,
			"payment_method": booking.PaymentMethod,
			"fatal":          true,
		}).Error("No refund path for payment method")
	}
}

func (s *BookingService) refundToWallet(booking *models.Booking, amount int64) {
	wallet, err := s.walletRepo.GetByUser(booking.UserID)
	if err == nil && wallet == nil {
		// a wallet-settled booking implies the wallet exists
		err = fmt.Errorf("wallet not found for user %s", booking.UserID)
	}
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id": booking.BookingID,
			"fatal":      true,
		}).Error("Wallet refund failed")
		return
	}

	err = s.walletSvc.Credit(booking.UserID, wallet.ID, booking.OrderRef, amount,
		fmt.Sprintf("Refund for booking %s", booking.BookingID))
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id": booking.BookingID,
			"fatal":      true,
		}).Error("Wallet refund failed")
	}
}

func (s *BookingService) refundToCard(booking *models.Booking, amount int64) {
	if booking.PaymentRef == models.PendingPaymentRef {
		s.logger.WithFields(logrus.Fields{
			"booking_id": booking.BookingID,
			"fatal":      true,
		}).Error("Card refund has no captured payment to refund against")
		return
	}

	if _, err := s.gateway.Refund(booking.PaymentRef, amount); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id": booking.BookingID,
			"fatal":      true,
		}).Error("Card refund failed")
		return
	}

	err := s.mail.Send(booking.UserID, mailer.TemplateRefund, map[string]interface{}{
		"booking_id":  booking.BookingID,
		"amount":      amount,
		"payment_ref": booking.PaymentRef,
	})
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.BookingID).Warn("Failed to send refund mail")
	}
}
