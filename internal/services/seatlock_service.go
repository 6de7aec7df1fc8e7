package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/internal/database"
	"github.com/eazybus/booking-backend/internal/models"
)

// SeatLockService guards the seat inventory. Holds and releases run as
// all-or-nothing batches keyed on the seat's current status, so two checkouts
// racing for the same seat cannot both win.
type SeatLockService struct {
	serviceRepo *database.ServiceRepository
	logger      *logrus.Logger
}

// NewSeatLockService creates a new SeatLockService
func NewSeatLockService(serviceRepo *database.ServiceRepository, logger *logrus.Logger) *SeatLockService {
	return &SeatLockService{serviceRepo: serviceRepo, logger: logger}
}

// CheckAvailability re-reads the named seats and reports the ones no longer
// purchasable. Seats missing from the layout count as blocked.
func (s *SeatLockService) CheckAvailability(serviceID string, seatNos []string) (bool, []string, error) {
	seats, err := s.serviceRepo.GetSeatStatuses(serviceID, seatNos)
	if err != nil {
		return false, nil, fmt.Errorf("failed to read seat statuses: %w", err)
	}

	found := make(map[string]models.SeatStatus, len(seats))
	for _, seat := range seats {
		found[seat.SeatNo] = seat.Status
	}

	var blocked []string
	for _, seatNo := range seatNos {
		status, ok := found[seatNo]
		if !ok || status != models.SeatStatusEnabled {
			blocked = append(blocked, seatNo)
		}
	}

	return len(blocked) == 0, blocked, nil
}

// Hold flips the seats enabled -> disabled in one batch. Returns
// database.ErrSeatConflict (wrapped) when another checkout got there first.
func (s *SeatLockService) Hold(serviceID string, seatNos []string) error {
	err := s.serviceRepo.UpdateSeatStatuses(serviceID, seatNos,
		models.SeatStatusEnabled, models.SeatStatusDisabled)
	if err != nil {
		if errors.Is(err, database.ErrSeatConflict) {
			s.logger.WithFields(logrus.Fields{
				"service_id": serviceID,
				"seats":      seatNos,
			}).Warn("Seat hold lost race")
			return err
		}
		return fmt.Errorf("failed to hold seats: %w", err)
	}
	return nil
}

// Release flips the seats disabled -> enabled in one batch. A conflict here
// means the inventory no longer matches the booking that held the seats, so
// it is escalated loudly instead of being retried.
func (s *SeatLockService) Release(serviceID string, seatNos []string) error {
	err := s.serviceRepo.UpdateSeatStatuses(serviceID, seatNos,
		models.SeatStatusDisabled, models.SeatStatusEnabled)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"service_id": serviceID,
			"seats":      seatNos,
			"fatal":      true,
		}).Error("Seat release failed, inventory inconsistent")
		return fmt.Errorf("failed to release seats: %w", err)
	}
	return nil
}
