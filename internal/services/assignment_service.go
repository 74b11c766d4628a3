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

type EarningsSummary struct {
	TotalEarnings  float64    `json:"total_earnings"`
	CompletedTrips int64      `json:"completed_trips"`
	Since          *time.Time `json:"since,omitempty"`
}

// AssignmentService binds drivers to vehicles and bookings to both.
// Accepting a job and wiring a driver into a fleet share the same
// exclusivity rules: one vehicle per driver, one driver per vehicle, one
// active job per driver.
type AssignmentService interface {
	// Job board
	AcceptBooking(ctx context.Context, actor models.Actor, bookingID primitive.ObjectID) (*models.Booking, error)
	AssignDriver(ctx context.Context, actor models.Actor, bookingID, driverUserID primitive.ObjectID) (*models.Booking, error)
	ListOpenJobs(ctx context.Context, actor models.Actor, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	ListDriverJobs(ctx context.Context, actor models.Actor, statuses []models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	DriverEarnings(ctx context.Context, actor models.Actor, since *time.Time) (*EarningsSummary, error)
	SetDriverAvailability(ctx context.Context, actor models.Actor, available bool) error

	// Fleet assignment
	AssignVehicle(ctx context.Context, actor models.Actor, vehicleID, driverUserID primitive.ObjectID) (*models.Vehicle, error)
	UnassignVehicle(ctx context.Context, actor models.Actor, vehicleID primitive.ObjectID) (*models.Vehicle, error)
}

type assignmentService struct {
	bookingRepo  interfaces.BookingRepository
	vehicleRepo  interfaces.VehicleRepository
	driverRepo   interfaces.DriverRepository
	companyRepo  interfaces.CompanyRepository
	notification NotificationService
	logger       *logger.Logger
}

func NewAssignmentService(
	bookingRepo interfaces.BookingRepository,
	vehicleRepo interfaces.VehicleRepository,
	driverRepo interfaces.DriverRepository,
	companyRepo interfaces.CompanyRepository,
	notification NotificationService,
	logger *logger.Logger,
) AssignmentService {
	return &assignmentService{
		bookingRepo:  bookingRepo,
		vehicleRepo:  vehicleRepo,
		driverRepo:   driverRepo,
		companyRepo:  companyRepo,
		notification: notification,
		logger:       logger,
	}
}

// AcceptBooking claims a pending job for the calling driver.
func (s *assignmentService) AcceptBooking(ctx context.Context, actor models.Actor, bookingID primitive.ObjectID) (*models.Booking, error) {
	if actor.Role != models.AccountTypeDriver {
		return nil, apperrors.Forbidden("only drivers can accept bookings")
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking")
	}
	if booking.Status != models.BookingStatusPending || booking.DriverID != nil {
		return nil, apperrors.InvalidState("booking is no longer available")
	}

	profile, err := s.driverRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.NotFound("driver profile")
	}

	return s.claimForDriver(ctx, booking, profile)
}

// AssignDriver hands a pending booking to a named driver. Companies can
// only direct drivers on their own roster; admins can direct anyone. The
// driver is held to the same guards as a self-accept.
func (s *assignmentService) AssignDriver(ctx context.Context, actor models.Actor, bookingID, driverUserID primitive.ObjectID) (*models.Booking, error) {
	if actor.Role != models.AccountTypeCompany && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only companies and admins can assign drivers")
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking")
	}
	if booking.Status != models.BookingStatusPending || booking.DriverID != nil {
		return nil, apperrors.InvalidState("booking is no longer available")
	}

	profile, err := s.driverRepo.GetByUserID(ctx, driverUserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.NotFound("driver profile")
	}
	if !actor.IsAdmin() && (profile.CompanyID == nil || *profile.CompanyID != actor.UserID) {
		return nil, apperrors.Forbidden("driver is not on your roster")
	}

	return s.claimForDriver(ctx, booking, profile)
}

// claimForDriver runs the single accept path shared by self-accepts and
// directed assignments: check the driver and their vehicle, reserve the
// vehicle, then claim the booking, rolling the reservation back on a lost
// race.
func (s *assignmentService) claimForDriver(ctx context.Context, booking *models.Booking, profile *models.DriverProfile) (*models.Booking, error) {
	if !profile.IsVerified {
		return nil, apperrors.Forbidden("driver is not verified")
	}
	if !profile.IsAvailable {
		return nil, apperrors.InvalidState("driver is not available")
	}
	if profile.AssignedVehicleID == nil {
		return nil, apperrors.InvalidState("driver has no assigned vehicle")
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, *profile.AssignedVehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("assigned vehicle")
	}
	if booking.VehicleID != nil && *booking.VehicleID != vehicle.ID {
		return nil, apperrors.InvalidState("booking is tied to a different vehicle")
	}
	if vehicle.Category != booking.VehicleCategory {
		return nil, apperrors.InvalidState("vehicle category does not match the booking")
	}

	activeCount, err := s.bookingRepo.CountActiveByDriver(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	if activeCount > 0 {
		return nil, apperrors.Conflict("driver already has an active job")
	}

	conflict, err := s.bookingRepo.HasScheduleConflict(ctx, profile.UserID, booking.ScheduledAt, utils.TripDuration)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperrors.Conflict("driver has an overlapping job at that time")
	}

	// A vehicle-targeted booking was already held at creation; everything
	// else reserves here.
	alreadyHeld := booking.VehicleID != nil
	if !alreadyHeld {
		reserved, err := s.vehicleRepo.Reserve(ctx, vehicle.ID)
		if err != nil {
			return nil, err
		}
		if reserved == nil {
			return nil, apperrors.Conflict("vehicle is no longer available")
		}
	}

	assignment := &models.Assignment{
		DriverID:  profile.UserID,
		VehicleID: vehicle.ID,
		CompanyID: vehicle.CompanyID,
	}

	claimed, err := s.bookingRepo.Claim(ctx, booking.ID, assignment, time.Now())
	if err != nil {
		if !alreadyHeld {
			s.releaseVehicle(ctx, vehicle.ID, booking.ID)
		}
		return nil, err
	}
	if claimed == nil {
		// Another driver won the claim; give the vehicle back.
		if !alreadyHeld {
			s.releaseVehicle(ctx, vehicle.ID, booking.ID)
		}
		return nil, apperrors.Conflict("booking was taken by another driver")
	}

	s.notification.NotifyBookingAccepted(ctx, claimed)

	return claimed, nil
}

func (s *assignmentService) ListOpenJobs(ctx context.Context, actor models.Actor, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	if actor.Role != models.AccountTypeDriver {
		return nil, 0, apperrors.Forbidden("only drivers can browse open jobs")
	}

	profile, err := s.driverRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, 0, err
	}
	if profile == nil {
		return nil, 0, apperrors.NotFound("driver profile")
	}

	// The board only shows jobs the driver's vehicle can actually serve.
	var categories []models.VehicleCategory
	if profile.AssignedVehicleID != nil {
		vehicle, err := s.vehicleRepo.GetByID(ctx, *profile.AssignedVehicleID)
		if err != nil {
			return nil, 0, err
		}
		if vehicle != nil {
			categories = []models.VehicleCategory{vehicle.Category}
		}
	}

	return s.bookingRepo.ListPendingByCategories(ctx, categories, params)
}

func (s *assignmentService) ListDriverJobs(ctx context.Context, actor models.Actor, statuses []models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	if actor.Role != models.AccountTypeDriver {
		return nil, 0, apperrors.Forbidden("only drivers have a job history")
	}

	return s.bookingRepo.ListByDriver(ctx, actor.UserID, statuses, params)
}

func (s *assignmentService) DriverEarnings(ctx context.Context, actor models.Actor, since *time.Time) (*EarningsSummary, error) {
	if actor.Role != models.AccountTypeDriver {
		return nil, apperrors.Forbidden("only drivers have earnings")
	}

	earnings, err := s.bookingRepo.EarningsByDriver(ctx, actor.UserID, since)
	if err != nil {
		return nil, err
	}

	return &EarningsSummary{
		TotalEarnings:  earnings.TotalEarnings,
		CompletedTrips: earnings.CompletedTrips,
		Since:          since,
	}, nil
}

func (s *assignmentService) SetDriverAvailability(ctx context.Context, actor models.Actor, available bool) error {
	if actor.Role != models.AccountTypeDriver {
		return apperrors.Forbidden("only drivers can toggle availability")
	}

	profile, err := s.driverRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if profile == nil {
		return apperrors.NotFound("driver profile")
	}

	return s.driverRepo.SetAvailability(ctx, actor.UserID, available)
}

// AssignVehicle pairs a fleet vehicle with a driver. Both sides are
// guarded: the vehicle must be unassigned and the driver must not already
// hold a vehicle. A company-owned vehicle also affiliates the driver to
// that company and bumps its roster counter.
func (s *assignmentService) AssignVehicle(ctx context.Context, actor models.Actor, vehicleID, driverUserID primitive.ObjectID) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("vehicle")
	}

	if !canManageVehicle(actor, vehicle) {
		return nil, apperrors.Forbidden("you do not manage this vehicle")
	}

	profile, err := s.driverRepo.GetByUserID(ctx, driverUserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.NotFound("driver profile")
	}
	if !profile.IsVerified {
		return nil, apperrors.InvalidState("driver is not verified")
	}

	updatedProfile, err := s.driverRepo.SetAssignedVehicle(ctx, driverUserID, vehicleID, vehicle.CompanyID)
	if err != nil {
		return nil, err
	}
	if updatedProfile == nil {
		return nil, apperrors.Conflict("driver already has an assigned vehicle")
	}

	assigned, err := s.vehicleRepo.AssignDriver(ctx, vehicleID, driverUserID)
	if err != nil {
		s.rollbackDriverAssignment(ctx, driverUserID, vehicleID)
		return nil, err
	}
	if assigned == nil {
		s.rollbackDriverAssignment(ctx, driverUserID, vehicleID)
		return nil, apperrors.Conflict("vehicle is already assigned to a driver")
	}

	if vehicle.CompanyID != nil && (profile.CompanyID == nil || *profile.CompanyID != *vehicle.CompanyID) {
		if err := s.companyRepo.IncrementCounters(ctx, *vehicle.CompanyID, 0, 1); err != nil {
			s.logger.WithError(err).WithField("company_id", vehicle.CompanyID.Hex()).Error("Failed to bump company roster")
		}
	}

	return assigned, nil
}

func (s *assignmentService) UnassignVehicle(ctx context.Context, actor models.Actor, vehicleID primitive.ObjectID) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("vehicle")
	}

	if !canManageVehicle(actor, vehicle) {
		return nil, apperrors.Forbidden("you do not manage this vehicle")
	}

	if vehicle.AssignedDriverID == nil {
		return nil, apperrors.InvalidState("vehicle has no assigned driver")
	}
	driverUserID := *vehicle.AssignedDriverID

	activeCount, err := s.bookingRepo.CountActiveByDriver(ctx, driverUserID)
	if err != nil {
		return nil, err
	}
	if activeCount > 0 {
		return nil, apperrors.Conflict("driver has an active job on this vehicle")
	}

	unassigned, err := s.vehicleRepo.UnassignDriver(ctx, vehicleID, driverUserID)
	if err != nil {
		return nil, err
	}
	if unassigned == nil {
		return nil, apperrors.Conflict("vehicle assignment changed concurrently")
	}

	if _, err := s.driverRepo.ClearAssignedVehicle(ctx, driverUserID, vehicleID); err != nil {
		s.logger.WithError(err).WithField("vehicle_id", vehicleID.Hex()).Error("Failed to clear driver assignment")
	}

	if vehicle.CompanyID != nil {
		if err := s.companyRepo.IncrementCounters(ctx, *vehicle.CompanyID, 0, -1); err != nil {
			s.logger.WithError(err).WithField("company_id", vehicle.CompanyID.Hex()).Error("Failed to bump company roster")
		}
	}

	return unassigned, nil
}

func (s *assignmentService) releaseVehicle(ctx context.Context, vehicleID, bookingID primitive.ObjectID) {
	if err := s.vehicleRepo.Release(ctx, vehicleID); err != nil {
		s.logger.WithError(err).WithBookingID(bookingID).Error("Failed to release vehicle after lost claim")
	}
}

func (s *assignmentService) rollbackDriverAssignment(ctx context.Context, driverUserID, vehicleID primitive.ObjectID) {
	if _, err := s.driverRepo.ClearAssignedVehicle(ctx, driverUserID, vehicleID); err != nil {
		s.logger.WithError(err).WithField("vehicle_id", vehicleID.Hex()).Error("Failed to roll back driver assignment")
	}
}

func canManageVehicle(actor models.Actor, vehicle *models.Vehicle) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == models.AccountTypeCompany && vehicle.CompanyID != nil && *vehicle.CompanyID == actor.UserID
}
