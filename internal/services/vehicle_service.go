package services

import (
	"context"

	"haulgo/internal/apperrors"
	"haulgo/internal/models"
	"haulgo/internal/repositories/interfaces"
	"haulgo/internal/utils"
	"haulgo/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateVehicleRequest struct {
	Category    models.VehicleCategory `json:"category" validate:"required"`
	Name        string                 `json:"name" validate:"required,min=2,max=100"`
	Model       string                 `json:"model" validate:"required,min=2,max=100"`
	Color       string                 `json:"color" validate:"max=50"`
	PlateNumber string                 `json:"plate_number" validate:"required,min=3,max=20"`
	BasePrice   float64                `json:"base_price" validate:"gte=0"`
}

type UpdateVehicleRequest struct {
	Name      *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Model     *string  `json:"model" validate:"omitempty,min=2,max=100"`
	Color     *string  `json:"color" validate:"omitempty,max=50"`
	BasePrice *float64 `json:"base_price" validate:"omitempty,gte=0"`
}

type VehicleService interface {
	CreateVehicle(ctx context.Context, actor models.Actor, req *CreateVehicleRequest) (*models.Vehicle, error)
	GetVehicle(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, actor models.Actor, id primitive.ObjectID, req *UpdateVehicleRequest) (*models.Vehicle, error)
	DeactivateVehicle(ctx context.Context, actor models.Actor, id primitive.ObjectID) error
	ListCompanyVehicles(ctx context.Context, actor models.Actor, params *utils.PaginationParams) ([]*models.Vehicle, int64, error)
	ListAvailableVehicles(ctx context.Context, category *models.VehicleCategory, params *utils.PaginationParams) ([]*models.Vehicle, int64, error)
}

type vehicleService struct {
	vehicleRepo interfaces.VehicleRepository
	companyRepo interfaces.CompanyRepository
	logger      *logger.Logger
}

func NewVehicleService(vehicleRepo interfaces.VehicleRepository, companyRepo interfaces.CompanyRepository, logger *logger.Logger) VehicleService {
	return &vehicleService{
		vehicleRepo: vehicleRepo,
		companyRepo: companyRepo,
		logger:      logger,
	}
}

func (s *vehicleService) CreateVehicle(ctx context.Context, actor models.Actor, req *CreateVehicleRequest) (*models.Vehicle, error) {
	if actor.Role != models.AccountTypeCompany && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only companies can register vehicles")
	}
	if !req.Category.Valid() {
		return nil, apperrors.Validation("unknown vehicle category")
	}

	existing, err := s.vehicleRepo.GetByPlateNumber(ctx, req.PlateNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("a vehicle with this plate number already exists")
	}

	vehicle := &models.Vehicle{
		Category:    req.Category,
		Name:        req.Name,
		Model:       req.Model,
		Color:       req.Color,
		PlateNumber: req.PlateNumber,
		BasePrice:   req.BasePrice,
		IsActive:    true,
		IsAvailable: true,
	}
	if actor.Role == models.AccountTypeCompany {
		companyID := actor.UserID
		vehicle.CompanyID = &companyID
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	if vehicle.CompanyID != nil {
		if err := s.companyRepo.IncrementCounters(ctx, *vehicle.CompanyID, 1, 0); err != nil {
			s.logger.WithError(err).WithField("company_id", vehicle.CompanyID.Hex()).Error("Failed to bump company fleet size")
		}
	}

	return vehicle, nil
}

func (s *vehicleService) GetVehicle(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Vehicle, error) {
	vehicle, err := s.loadVehicle(ctx, id)
	if err != nil {
		return nil, err
	}

	return vehicle, nil
}

func (s *vehicleService) UpdateVehicle(ctx context.Context, actor models.Actor, id primitive.ObjectID, req *UpdateVehicleRequest) (*models.Vehicle, error) {
	vehicle, err := s.loadVehicle(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canManageVehicle(actor, vehicle) {
		return nil, apperrors.Forbidden("you do not manage this vehicle")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.BasePrice != nil {
		updates["base_price"] = *req.BasePrice
	}
	if len(updates) == 0 {
		return vehicle, nil
	}

	if err := s.vehicleRepo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	return s.loadVehicle(ctx, id)
}

// DeactivateVehicle retires a vehicle from the fleet. Assigned or busy
// vehicles must be unwound first.
func (s *vehicleService) DeactivateVehicle(ctx context.Context, actor models.Actor, id primitive.ObjectID) error {
	vehicle, err := s.loadVehicle(ctx, id)
	if err != nil {
		return err
	}

	if !canManageVehicle(actor, vehicle) {
		return apperrors.Forbidden("you do not manage this vehicle")
	}
	if vehicle.IsAssigned {
		return apperrors.InvalidState("unassign the driver before retiring the vehicle")
	}
	if !vehicle.IsAvailable {
		return apperrors.InvalidState("vehicle is serving a trip")
	}

	if err := s.vehicleRepo.Delete(ctx, id); err != nil {
		return err
	}

	if vehicle.CompanyID != nil {
		if err := s.companyRepo.IncrementCounters(ctx, *vehicle.CompanyID, -1, 0); err != nil {
			s.logger.WithError(err).WithField("company_id", vehicle.CompanyID.Hex()).Error("Failed to bump company fleet size")
		}
	}

	return nil
}

func (s *vehicleService) ListCompanyVehicles(ctx context.Context, actor models.Actor, params *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	if actor.Role != models.AccountTypeCompany && !actor.IsAdmin() {
		return nil, 0, apperrors.Forbidden("only companies have a fleet")
	}

	return s.vehicleRepo.ListByCompany(ctx, actor.UserID, params)
}

func (s *vehicleService) ListAvailableVehicles(ctx context.Context, category *models.VehicleCategory, params *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	if category != nil && !category.Valid() {
		return nil, 0, apperrors.Validation("unknown vehicle category")
	}

	return s.vehicleRepo.ListAvailable(ctx, category, params)
}

func (s *vehicleService) loadVehicle(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("vehicle")
	}

	return vehicle, nil
}
