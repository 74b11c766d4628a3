package validators

import (
	"haulgo/internal/apperrors"
	"haulgo/internal/services"
)

func ValidateCreateVehicle(req *services.CreateVehicleRequest) error {
	if errs := ValidateStruct(req); len(errs) > 0 {
		return apperrors.Validation(errs.Error())
	}
	if !req.Category.Valid() {
		return apperrors.Validation("unknown vehicle category")
	}

	return nil
}

func ValidateUpdateVehicle(req *services.UpdateVehicleRequest) error {
	if errs := ValidateStruct(req); len(errs) > 0 {
		return apperrors.Validation(errs.Error())
	}

	return nil
}
