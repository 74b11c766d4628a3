package validators

import (
	"strings"

	"haulgo/internal/apperrors"
	"haulgo/internal/services"
	"haulgo/internal/utils"
)

func ValidateInitializePayment(req *services.InitializePaymentRequest) error {
	if errs := ValidateStruct(req); len(errs) > 0 {
		return apperrors.Validation(errs.Error())
	}

	return nil
}

// ValidatePaymentReference accepts both gateway and cash references.
func ValidatePaymentReference(reference string) error {
	if reference == "" {
		return apperrors.Validation("payment reference is required")
	}
	if !strings.HasPrefix(reference, utils.PaymentReferencePrefix+"-") &&
		!strings.HasPrefix(reference, utils.CashReferencePrefix+"-") {
		return apperrors.Validation("unrecognized payment reference format")
	}

	return nil
}

func ValidateRefundReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return apperrors.Validation("refund reason is required")
	}
	if len(reason) > 500 {
		return apperrors.Validation("refund reason must be at most 500 characters")
	}

	return nil
}
