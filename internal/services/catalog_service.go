package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/internal/database"
	"github.com/eazybus/booking-backend/internal/models"
	"github.com/eazybus/booking-backend/internal/utils"
)

// CatalogService owns the service catalog: route templates, the nightly
// rollout that materializes them into bookable services, search, and the
// retention purge.
type CatalogService struct {
	routeRepo   *database.RouteRepository
	serviceRepo *database.ServiceRepository
	clock       *utils.Clock
	lead        time.Duration // minimum gap before departure a seat can still be sold
	logger      *logrus.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	routeRepo *database.RouteRepository,
	serviceRepo *database.ServiceRepository,
	clock *utils.Clock,
	lead time.Duration,
	logger *logrus.Logger,
) *CatalogService {
	return &CatalogService{
		routeRepo:   routeRepo,
		serviceRepo: serviceRepo,
		clock:       clock,
		lead:        lead,
		logger:      logger,
	}
}

// CreateRoute registers a route template. Journey duration is computed from
// the departure and arrival times; the next rollout picks the route up.
func (s *CatalogService) CreateRoute(req *models.CreateRouteRequest) (*models.RouteTemplate, error) {
	existing, err := s.routeRepo.GetByServiceNo(req.ServiceNo)
	if err != nil {
		return nil, fmt.Errorf("failed to look up route: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("route %s already exists", req.ServiceNo)
	}

	duration, err := utils.JourneyDuration(req.DepTime, req.ArrTime)
	if err != nil {
		return nil, err
	}

	route := &models.RouteTemplate{
		ServiceNo:   req.ServiceNo,
		Origin:      req.Origin,
		Destination: req.Destination,
		Category:    req.Category,
		BusName:     req.BusName,
		DepTime:     req.DepTime,
		ArrTime:     req.ArrTime,
		Duration:    duration,
		BoardingPt:  req.BoardingPt,
		DropPt:      req.DropPt,
		Fare:        req.Fare,
	}

	if err := s.routeRepo.Create(route); err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"service_no": route.ServiceNo,
		"origin":     route.Origin,
		"dest":       route.Destination,
		"seats":      models.SeatCount(route.Category),
	}).Info("Route template created")

	return route, nil
}

// ListRoutes returns every registered route template
func (s *CatalogService) ListRoutes() ([]models.RouteTemplate, error) {
	return s.routeRepo.List()
}

// DeleteRoute removes a route template
func (s *CatalogService) DeleteRoute(serviceNo string) error {
	removed, err := s.routeRepo.Delete(serviceNo)
	if err != nil {
		return fmt.Errorf("failed to delete route: %w", err)
	}
	if !removed {
		return fmt.Errorf("route %s not found", serviceNo)
	}
	return nil
}

// EnsureServiceDay materializes every route template into a service for the
// date, unless the day already has any services. The guard is day-granular:
// a partially rolled-out day is treated as done and left for operators, which
// keeps the nightly job and its backup from double-inserting.
func (s *CatalogService) EnsureServiceDay(date string) (int, error) {
	exists, err := s.serviceRepo.AnyServiceForDate(date)
	if err != nil {
		return 0, fmt.Errorf("failed to check day %s: %w", date, err)
	}
	if exists {
		return 0, nil
	}

	routes, err := s.routeRepo.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list routes: %w", err)
	}

	created := 0
	for _, route := range routes {
		svc := &models.Service{
			ServiceNo:   route.ServiceNo,
			ServiceDate: date,
			Origin:      route.Origin,
			Destination: route.Destination,
			Category:    route.Category,
			BusName:     route.BusName,
			DepTime:     route.DepTime,
			ArrTime:     route.ArrTime,
			Duration:    route.Duration,
			BoardingPt:  route.BoardingPt,
			DropPt:      route.DropPt,
			Fare:        route.Fare,
			Active:      true,
			Seats:       models.SeatLayout(route.Category),
		}

		if err := s.serviceRepo.CreateService(svc); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"service_no": route.ServiceNo,
				"date":       date,
			}).Error("Failed to materialize service")
			continue
		}
		created++
	}

	s.logger.WithFields(logrus.Fields{
		"date":    date,
		"created": created,
		"routes":  len(routes),
	}).Info("Service day materialized")

	return created, nil
}

// PurgeServiceDay removes yesterday's services and their seat inventories.
// Bookings carry their own copies of the journey fields, so nothing dangles.
func (s *CatalogService) PurgeServiceDay(date string) (int, error) {
	removed, err := s.serviceRepo.DeleteByDate(date)
	if err != nil {
		return 0, fmt.Errorf("failed to purge day %s: %w", date, err)
	}
	if removed > 0 {
		s.logger.WithFields(logrus.Fields{"date": date, "removed": removed}).Info("Service day purged")
	}
	return removed, nil
}

// DeactivateDeparted turns off today's services whose departure has passed
// the booking cutoff.
func (s *CatalogService) DeactivateDeparted() (int, error) {
	return s.serviceRepo.DeactivateDeparted(s.clock.Today(), s.clock.CutoffTime(s.lead))
}

// Search returns bookable services for a corridor and date. Searching today
// applies the departure cutoff; future dates return the full day.
func (s *CatalogService) Search(origin, destination, date string) ([]models.Service, error) {
	if _, err := s.clock.ParseDate(date); err != nil {
		return nil, err
	}

	cutoff := "00:00"
	if date == s.clock.Today() {
		cutoff = s.clock.CutoffTime(s.lead)
	}

	services, err := s.serviceRepo.Search(origin, destination, date, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to search services: %w", err)
	}
	return services, nil
}

// GetService returns one service with its live seat inventory
func (s *CatalogService) GetService(serviceNo, date string) (*models.Service, error) {
	svc, err := s.serviceRepo.GetByServiceNoAndDate(serviceNo, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	return svc, nil
}
