package validators

import (
	"haulgo/internal/apperrors"
	"haulgo/internal/models"
	"haulgo/internal/services"
)

// ValidateCreateBooking runs structural validation plus the semantic checks
// tags cannot express.
func ValidateCreateBooking(req *services.CreateBookingRequest) error {
	if errs := ValidateStruct(req); len(errs) > 0 {
		return apperrors.Validation(errs.Error())
	}

	if err := validateLocationPair(req.PickupLocation, req.DropoffLocation); err != nil {
		return err
	}
	if req.VehicleID == nil && !req.VehicleCategory.Valid() {
		return apperrors.Validation("unknown vehicle category")
	}
	if req.VehicleCategory != "" && !req.VehicleCategory.Valid() {
		return apperrors.Validation("unknown vehicle category")
	}

	return nil
}

func ValidateEstimate(req *services.EstimateRequest) error {
	if errs := ValidateStruct(req); len(errs) > 0 {
		return apperrors.Validation(errs.Error())
	}

	return validateLocationPair(req.PickupLocation, req.DropoffLocation)
}

func ValidateRating(rating int, review string) error {
	if rating < 1 || rating > 5 {
		return apperrors.Validation("rating must be between 1 and 5")
	}
	if len(review) > 1000 {
		return apperrors.Validation("review must be at most 1000 characters")
	}

	return nil
}

func ValidateCancelReason(reason string) error {
	if len(reason) > 255 {
		return apperrors.Validation("cancel reason must be at most 255 characters")
	}

	return nil
}

func validateLocationPair(pickup, dropoff models.Location) error {
	if !validLatLng(pickup) || !validLatLng(dropoff) {
		return apperrors.Validation("invalid GPS coordinates")
	}
	if pickup.Latitude == dropoff.Latitude && pickup.Longitude == dropoff.Longitude {
		return apperrors.Validation("pickup and dropoff cannot be the same point")
	}

	return nil
}

func validLatLng(loc models.Location) bool {
	return loc.Latitude >= -90 && loc.Latitude <= 90 &&
		loc.Longitude >= -180 && loc.Longitude <= 180
}
