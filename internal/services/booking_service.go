package services

import (
	"context"
	"time"

	"haulgo/internal/apperrors"
	"haulgo/internal/models"
	"haulgo/internal/repositories/interfaces"
	"haulgo/internal/utils"
	"haulgo/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateBookingRequest struct {
	PickupLocation  models.Location        `json:"pickup_location" validate:"required"`
	DropoffLocation models.Location        `json:"dropoff_location" validate:"required"`
	VehicleCategory models.VehicleCategory `json:"vehicle_category"`
	// VehicleID targets a specific vehicle instead of the open market; the
	// vehicle is held for the booking at creation time.
	VehicleID     *primitive.ObjectID  `json:"vehicle_id"`
	PaymentMethod models.PaymentMethod `json:"payment_method" validate:"required,oneof=cash card transfer ussd wallet"`
	ScheduledAt   *time.Time           `json:"scheduled_at"`
	Notes         string               `json:"notes" validate:"max=500"`
}

type EstimateRequest struct {
	PickupLocation  models.Location         `json:"pickup_location" validate:"required"`
	DropoffLocation models.Location         `json:"dropoff_location" validate:"required"`
	VehicleCategory *models.VehicleCategory `json:"vehicle_category"`
	ScheduledAt     *time.Time              `json:"scheduled_at"`
}

type EstimateResponse struct {
	DistanceKM float64  `json:"distance_km"`
	Quotes     []*Quote `json:"quotes"`
}

type BookingService interface {
	CreateBooking(ctx context.Context, actor models.Actor, req *CreateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Booking, error)
	ListCustomerBookings(ctx context.Context, actor models.Actor, status *models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	CancelBooking(ctx context.Context, actor models.Actor, id primitive.ObjectID, reason string) (*models.Booking, error)
	StartTrip(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Booking, error)
	CompleteTrip(ctx context.Context, actor models.Actor, id primitive.ObjectID, actualPrice *float64) (*models.Booking, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id primitive.ObjectID, status models.BookingStatus, actualPrice *float64) (*models.Booking, error)
	RateBooking(ctx context.Context, actor models.Actor, id primitive.ObjectID, rating int, review string) (*models.Booking, error)
	EstimatePrice(ctx context.Context, req *EstimateRequest) (*EstimateResponse, error)
}

type bookingService struct {
	bookingRepo  interfaces.BookingRepository
	vehicleRepo  interfaces.VehicleRepository
	pricing      PricingService
	notification NotificationService
	logger       *logger.Logger
}

func NewBookingService(
	bookingRepo interfaces.BookingRepository,
	vehicleRepo interfaces.VehicleRepository,
	pricing PricingService,
	notification NotificationService,
	logger *logger.Logger,
) BookingService {
	return &bookingService{
		bookingRepo:  bookingRepo,
		vehicleRepo:  vehicleRepo,
		pricing:      pricing,
		notification: notification,
		logger:       logger,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor models.Actor, req *CreateBookingRequest) (*models.Booking, error) {
	if actor.Role == models.AccountTypeDriver {
		return nil, apperrors.Forbidden("drivers cannot create bookings")
	}

	category := req.VehicleCategory
	var targetVehicle *models.Vehicle
	if req.VehicleID != nil {
		vehicle, err := s.vehicleRepo.GetByID(ctx, *req.VehicleID)
		if err != nil {
			return nil, err
		}
		if vehicle == nil {
			return nil, apperrors.NotFound("vehicle")
		}
		if category != "" && category != vehicle.Category {
			return nil, apperrors.Validation("vehicle does not match the requested category")
		}
		category = vehicle.Category
		targetVehicle = vehicle
	}
	if !category.Valid() {
		return nil, apperrors.Validation("unknown vehicle category")
	}

	scheduledAt := time.Now()
	if req.ScheduledAt != nil {
		if req.ScheduledAt.Before(time.Now()) {
			return nil, apperrors.Validation("scheduled time must be in the future")
		}
		scheduledAt = *req.ScheduledAt
	}

	distance := utils.CalculateDistance(
		req.PickupLocation.Latitude, req.PickupLocation.Longitude,
		req.DropoffLocation.Latitude, req.DropoffLocation.Longitude,
	)

	quote := s.pricing.Estimate(category, distance, scheduledAt)

	booking := &models.Booking{
		CustomerID:      actor.UserID,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		Distance:        distance,
		VehicleCategory: category,
		EstimatedPrice:  quote.Total,
		Status:          models.BookingStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   req.PaymentMethod,
		ScheduledAt:     scheduledAt,
		Notes:           req.Notes,
	}

	// A targeted vehicle is held before the booking exists so two bookings
	// can never hold the same vehicle.
	if targetVehicle != nil {
		reserved, err := s.vehicleRepo.Reserve(ctx, targetVehicle.ID)
		if err != nil {
			return nil, err
		}
		if reserved == nil {
			return nil, apperrors.Conflict("vehicle is not available")
		}
		booking.VehicleID = &targetVehicle.ID
		booking.CompanyID = targetVehicle.CompanyID
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		if targetVehicle != nil {
			if rerr := s.vehicleRepo.Release(ctx, targetVehicle.ID); rerr != nil {
				s.logger.WithError(rerr).Error("Failed to release vehicle after booking insert failure")
			}
		}
		return nil, err
	}

	s.notification.NotifyBookingCreated(ctx, booking)

	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canViewBooking(actor, booking) {
		return nil, apperrors.Forbidden("you do not have access to this booking")
	}

	return booking, nil
}

// ListCustomerBookings returns the caller's own bookings; admins see every
// booking.
func (s *bookingService) ListCustomerBookings(ctx context.Context, actor models.Actor, status *models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	if actor.IsAdmin() {
		return s.bookingRepo.List(ctx, status, params)
	}
	return s.bookingRepo.ListByCustomer(ctx, actor.UserID, status, params)
}

// CancelBooking moves a pending or accepted booking to cancelled. Trips
// already in progress cannot be abandoned through this path.
func (s *bookingService) CancelBooking(ctx context.Context, actor models.Actor, id primitive.ObjectID, reason string) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.CustomerID != actor.UserID && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only the booking owner can cancel it")
	}

	if reason == "" {
		reason = utils.DefaultCancelReason
	}

	now := time.Now()
	cancelled, err := s.bookingRepo.Transition(ctx, id,
		[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusAccepted},
		map[string]interface{}{
			"status":        models.BookingStatusCancelled,
			"cancelled_at":  now,
			"cancel_reason": reason,
		},
	)
	if err != nil {
		return nil, err
	}
	if cancelled == nil {
		return nil, apperrors.InvalidState("booking can no longer be cancelled")
	}

	// Free the vehicle the accept had reserved.
	if cancelled.VehicleID != nil {
		if err := s.vehicleRepo.Release(ctx, *cancelled.VehicleID); err != nil {
			s.logger.WithError(err).WithBookingID(cancelled.ID).Error("Failed to release vehicle after cancellation")
		}
	}

	s.notification.NotifyBookingCancelled(ctx, cancelled)

	return cancelled, nil
}

func (s *bookingService) StartTrip(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.DriverID == nil || *booking.DriverID != actor.UserID {
		return nil, apperrors.Forbidden("only the assigned driver can start this trip")
	}

	return s.markInProgress(ctx, id)
}

func (s *bookingService) CompleteTrip(ctx context.Context, actor models.Actor, id primitive.ObjectID, actualPrice *float64) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.DriverID == nil || *booking.DriverID != actor.UserID {
		return nil, apperrors.Forbidden("only the assigned driver can complete this trip")
	}

	return s.markCompleted(ctx, booking, actualPrice)
}

// UpdateStatus drives the booking lifecycle on behalf of an operator: the
// assigned driver, the serving company, or an admin. It covers the same
// accepted→in_progress and in_progress→completed transitions as the
// driver-facing start and complete paths.
func (s *bookingService) UpdateStatus(ctx context.Context, actor models.Actor, id primitive.ObjectID, status models.BookingStatus, actualPrice *float64) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canManageBooking(actor, booking) {
		return nil, apperrors.Forbidden("you do not manage this booking")
	}

	switch status {
	case models.BookingStatusInProgress:
		return s.markInProgress(ctx, id)
	case models.BookingStatusCompleted:
		return s.markCompleted(ctx, booking, actualPrice)
	default:
		return nil, apperrors.Validation("status must be in_progress or completed")
	}
}

func (s *bookingService) markInProgress(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	started, err := s.bookingRepo.Transition(ctx, id,
		[]models.BookingStatus{models.BookingStatusAccepted},
		map[string]interface{}{
			"status":     models.BookingStatusInProgress,
			"started_at": time.Now(),
		},
	)
	if err != nil {
		return nil, err
	}
	if started == nil {
		return nil, apperrors.InvalidState("trip can only start from an accepted booking")
	}

	s.notification.NotifyBookingStarted(ctx, started)

	return started, nil
}

// markCompleted closes out an in-progress booking. The final price is the
// reported amount when given, the estimate otherwise; the serving vehicle's
// trip counters absorb it and the vehicle returns to the pool.
func (s *bookingService) markCompleted(ctx context.Context, booking *models.Booking, actualPrice *float64) (*models.Booking, error) {
	finalPrice := booking.EstimatedPrice
	if actualPrice != nil {
		if *actualPrice <= 0 {
			return nil, apperrors.Validation("actual price must be positive")
		}
		finalPrice = *actualPrice
	}

	completed, err := s.bookingRepo.Transition(ctx, booking.ID,
		[]models.BookingStatus{models.BookingStatusInProgress},
		map[string]interface{}{
			"status":       models.BookingStatusCompleted,
			"actual_price": finalPrice,
			"completed_at": time.Now(),
		},
	)
	if err != nil {
		return nil, err
	}
	if completed == nil {
		return nil, apperrors.InvalidState("only an in-progress trip can be completed")
	}

	if completed.VehicleID != nil {
		if err := s.vehicleRepo.IncrementTripStats(ctx, *completed.VehicleID, finalPrice); err != nil {
			s.logger.WithError(err).WithBookingID(completed.ID).Error("Failed to record vehicle trip stats")
		}
		if err := s.vehicleRepo.Release(ctx, *completed.VehicleID); err != nil {
			s.logger.WithError(err).WithBookingID(completed.ID).Error("Failed to release vehicle after completion")
		}
	}

	s.notification.NotifyBookingCompleted(ctx, completed)

	return completed, nil
}

func (s *bookingService) RateBooking(ctx context.Context, actor models.Actor, id primitive.ObjectID, rating int, review string) (*models.Booking, error) {
	if rating < utils.MinRating || rating > utils.MaxRating {
		return nil, apperrors.Validation("rating must be between 1 and 5")
	}

	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.CustomerID != actor.UserID {
		return nil, apperrors.Forbidden("only the booking owner can rate it")
	}

	rated, err := s.bookingRepo.SetRating(ctx, id, actor.UserID, rating, review)
	if err != nil {
		return nil, err
	}
	if rated == nil {
		if booking.Rating != nil {
			return nil, apperrors.Conflict("booking has already been rated")
		}
		return nil, apperrors.InvalidState("only completed bookings can be rated")
	}

	return rated, nil
}

func (s *bookingService) EstimatePrice(ctx context.Context, req *EstimateRequest) (*EstimateResponse, error) {
	distance := utils.CalculateDistance(
		req.PickupLocation.Latitude, req.PickupLocation.Longitude,
		req.DropoffLocation.Latitude, req.DropoffLocation.Longitude,
	)

	at := time.Now()
	if req.ScheduledAt != nil {
		at = *req.ScheduledAt
	}

	var quotes []*Quote
	if req.VehicleCategory != nil {
		if !req.VehicleCategory.Valid() {
			return nil, apperrors.Validation("unknown vehicle category")
		}
		quotes = []*Quote{s.pricing.Estimate(*req.VehicleCategory, distance, at)}
	} else {
		quotes = s.pricing.EstimateAll(distance, at)
	}

	return &EstimateResponse{
		DistanceKM: distance,
		Quotes:     quotes,
	}, nil
}

func (s *bookingService) loadBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking")
	}

	return booking, nil
}

func canManageBooking(actor models.Actor, booking *models.Booking) bool {
	if actor.IsAdmin() {
		return true
	}
	if booking.DriverID != nil && *booking.DriverID == actor.UserID {
		return true
	}
	return booking.CompanyID != nil && *booking.CompanyID == actor.UserID
}

func canViewBooking(actor models.Actor, booking *models.Booking) bool {
	if actor.IsAdmin() {
		return true
	}
	if booking.CustomerID == actor.UserID {
		return true
	}
	if booking.DriverID != nil && *booking.DriverID == actor.UserID {
		return true
	}
	if booking.CompanyID != nil && *booking.CompanyID == actor.UserID {
		return true
	}
	return false
}
