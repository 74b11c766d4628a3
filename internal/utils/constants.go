package utils

import "time"

// Application Constants
const (
	AppName = "HaulGo"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Booking Constants
	//
	// TripDuration approximates a driver's busy window for the scheduling
	// conflict check. The check compares scheduled starts only, treating
	// every trip as one fixed-length block.
	TripDuration        = 45 * time.Minute
	DefaultCancelReason = "Cancelled by user"

	// Rating
	MinRating = 1
	MaxRating = 5

	// Surge Pricing
	SurgeMultiplier    = 1.2
	MorningPeakStart   = 7
	MorningPeakEnd     = 9
	EveningPeakStart   = 17
	EveningPeakEnd     = 19

	// Payment Constants
	PaymentReferencePrefix = "PAY"
	CashReferencePrefix    = "CASH"

	// Geo
	EarthRadiusKM = 6371.0
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrValidationFailed = "validation failed"
)

// Cache Keys
const (
	CacheRateLimitPrefix = "rate_limit:"
)

// Event Types
const (
	EventBookingCreated   = "booking_created"
	EventBookingAccepted  = "booking_accepted"
	EventBookingStarted   = "booking_started"
	EventBookingCompleted = "booking_completed"
	EventBookingCancelled = "booking_cancelled"
	EventPaymentConfirmed = "payment_confirmed"
)
