package services

import (
	"context"
	"fmt"
	"time"

	"haulgo/internal/apperrors"
	"haulgo/internal/models"
	"haulgo/internal/repositories/interfaces"
	"haulgo/internal/utils"
	"haulgo/pkg/logger"
	"haulgo/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InitializePaymentRequest struct {
	BookingID primitive.ObjectID   `json:"booking_id" validate:"required"`
	Method    models.PaymentMethod `json:"method" validate:"required,oneof=card transfer ussd"`
	// Email overrides the receipt address on the customer's account.
	Email string `json:"email" validate:"omitempty,email"`
}

type InitializePaymentResponse struct {
	Payment          *models.Payment `json:"payment"`
	AuthorizationURL string          `json:"authorization_url"`
	AccessCode       string          `json:"access_code"`
	Reference        string          `json:"reference"`
}

// PaymentService reconciles booking payments against the card gateway and
// the cash path. Gateway verification is the source of truth for card
// money; the local ledger only moves forward once the gateway confirms.
type PaymentService interface {
	InitializePayment(ctx context.Context, actor models.Actor, req *InitializePaymentRequest) (*InitializePaymentResponse, error)
	VerifyPayment(ctx context.Context, actor models.Actor, reference string) (*models.Payment, error)
	RecordCashPayment(ctx context.Context, actor models.Actor, bookingID primitive.ObjectID) (*models.Payment, error)
	RefundPayment(ctx context.Context, actor models.Actor, paymentID primitive.ObjectID, reason string) (*models.Payment, error)
	GetPayment(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Payment, error)
	ListUserPayments(ctx context.Context, actor models.Actor, filter *interfaces.PaymentFilter, params *utils.PaginationParams) ([]*models.Payment, int64, error)
	ListBookingPayments(ctx context.Context, actor models.Actor, bookingID primitive.ObjectID) ([]*models.Payment, error)
}

type paymentService struct {
	paymentRepo  interfaces.PaymentRepository
	bookingRepo  interfaces.BookingRepository
	userRepo     interfaces.UserRepository
	gateway      payment.Gateway
	notification NotificationService
	logger       *logger.Logger
	currency     string
	callbackURL  string
}

func NewPaymentService(
	paymentRepo interfaces.PaymentRepository,
	bookingRepo interfaces.BookingRepository,
	userRepo interfaces.UserRepository,
	gateway payment.Gateway,
	notification NotificationService,
	logger *logger.Logger,
	currency string,
	callbackURL string,
) PaymentService {
	return &paymentService{
		paymentRepo:  paymentRepo,
		bookingRepo:  bookingRepo,
		userRepo:     userRepo,
		gateway:      gateway,
		notification: notification,
		logger:       logger,
		currency:     currency,
		callbackURL:  callbackURL,
	}
}

// InitializePayment opens a gateway transaction for a booking. The pending
// ledger row is inserted before the gateway call; the unique index on open
// payments per booking means a second initialize while one is in flight
// fails fast instead of charging twice.
func (s *paymentService) InitializePayment(ctx context.Context, actor models.Actor, req *InitializePaymentRequest) (*InitializePaymentResponse, error) {
	booking, err := s.loadBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.CustomerID != actor.UserID && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only the booking owner can pay for it")
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, apperrors.InvalidState("only completed bookings can be paid")
	}
	if booking.PaymentStatus == models.PaymentStatusPaid {
		return nil, apperrors.Conflict("booking is already paid")
	}

	email := req.Email
	if email == "" {
		customer, err := s.userRepo.GetByID(ctx, booking.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil || customer.Email == "" {
			return nil, apperrors.Validation("no receipt email on the customer's account")
		}
		email = customer.Email
	}

	amount := booking.EstimatedPrice
	if booking.ActualPrice > 0 {
		amount = booking.ActualPrice
	}

	record := &models.Payment{
		BookingID: booking.ID,
		UserID:    booking.CustomerID,
		Amount:    amount,
		Currency:  s.currency,
		Method:    req.Method,
		Reference: utils.GeneratePaymentReference(utils.PaymentReferencePrefix),
	}

	if err := s.paymentRepo.CreatePending(ctx, record); err != nil {
		if !apperrors.IsKind(err, apperrors.KindConflict) {
			return nil, err
		}
		// The unique index says an open payment already exists. A paid one
		// blocks; a pending one is picked up again with a fresh gateway
		// intent on the same reference.
		open, gerr := s.paymentRepo.GetOpenByBooking(ctx, booking.ID)
		if gerr != nil {
			return nil, gerr
		}
		if open == nil {
			return nil, err
		}
		if open.Status == models.PaymentStatusPaid {
			return nil, apperrors.Conflict("booking is already paid")
		}
		record = open
	}

	intent, err := s.gateway.CreateIntent(ctx, &payment.IntentRequest{
		Email:       email,
		Amount:      amount,
		Currency:    s.currency,
		Reference:   record.Reference,
		CallbackURL: s.callbackURL,
		Metadata: map[string]interface{}{
			"booking_id": booking.ID.Hex(),
		},
	})
	if err != nil {
		// The row stays pending. It is reused on the next initialize and
		// nothing is written to paid or failed on the strength of a
		// transport error.
		return nil, apperrors.Upstream("payment gateway rejected the transaction", err)
	}

	if err := s.paymentRepo.Update(ctx, record.ID, map[string]interface{}{
		"amount":            amount,
		"method":            req.Method,
		"access_code":       intent.AccessCode,
		"authorization_url": intent.AuthorizationURL,
	}); err != nil {
		s.logger.WithError(err).WithField("reference", record.Reference).Error("Failed to store gateway intent")
	}
	record.Amount = amount
	record.Method = req.Method
	record.AccessCode = intent.AccessCode
	record.AuthorizationURL = intent.AuthorizationURL

	return &InitializePaymentResponse{
		Payment:          record,
		AuthorizationURL: intent.AuthorizationURL,
		AccessCode:       intent.AccessCode,
		Reference:        record.Reference,
	}, nil
}

// VerifyPayment asks the gateway what actually happened to a reference and
// folds the answer into the ledger. Verifying an already-paid reference is
// a no-op returning the stored record, so callbacks and webhooks can both
// call it safely.
func (s *paymentService) VerifyPayment(ctx context.Context, actor models.Actor, reference string) (*models.Payment, error) {
	record, err := s.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NotFound("payment")
	}

	if record.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("you do not have access to this payment")
	}

	if record.Status == models.PaymentStatusPaid {
		return record, nil
	}

	result, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, apperrors.Upstream("payment verification failed", err)
	}

	if !result.IsSuccess() {
		if result.IsFinal() {
			if _, terr := s.paymentRepo.Transition(ctx, record.ID,
				[]models.PaymentStatus{models.PaymentStatusPending},
				map[string]interface{}{"status": models.PaymentStatusFailed},
			); terr != nil {
				s.logger.WithError(terr).WithField("reference", reference).Error("Failed to mark payment failed")
			}
			return nil, apperrors.InvalidState(fmt.Sprintf("payment %s", result.Status))
		}
		return nil, apperrors.InvalidState("payment is still pending at the gateway")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":            models.PaymentStatusPaid,
		"transaction_id":    result.TransactionID,
		"channel":           result.Channel,
		"gateway_reference": reference,
		"paid_at":           now,
	}
	if result.Authorization != nil {
		updates["card_details"] = &models.CardDetails{
			Brand: result.Authorization.Brand,
			Last4: result.Authorization.Last4,
			Bank:  result.Authorization.Bank,
		}
	}

	paid, err := s.paymentRepo.Transition(ctx, record.ID,
		[]models.PaymentStatus{models.PaymentStatusPending},
		updates,
	)
	if err != nil {
		return nil, err
	}
	if paid == nil {
		// Lost a race with another verify; the stored row is authoritative.
		return s.paymentRepo.GetByID(ctx, record.ID)
	}

	booking := s.markBookingPaid(ctx, paid.BookingID, paid.Method)
	s.notification.NotifyPaymentConfirmed(ctx, paid, booking)

	return paid, nil
}

// RecordCashPayment settles a booking in cash. Only the assigned driver can
// report cash collected, and the ledger row is paid from the start.
func (s *paymentService) RecordCashPayment(ctx context.Context, actor models.Actor, bookingID primitive.ObjectID) (*models.Payment, error) {
	if actor.Role != models.AccountTypeDriver {
		return nil, apperrors.Forbidden("only drivers can record cash payments")
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.DriverID == nil || *booking.DriverID != actor.UserID {
		return nil, apperrors.Forbidden("only the assigned driver can record this payment")
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, apperrors.InvalidState("cash is collected once the trip is completed")
	}
	if booking.PaymentStatus == models.PaymentStatusPaid {
		return nil, apperrors.Conflict("booking is already paid")
	}

	// An abandoned card intent must not block the driver from settling
	// in cash; the stale pending row is failed before the cash row takes
	// its place under the one-open-payment index.
	open, err := s.paymentRepo.GetOpenByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		if open.Status == models.PaymentStatusPaid {
			return nil, apperrors.Conflict("booking is already paid")
		}
		superseded, err := s.paymentRepo.Transition(ctx, open.ID,
			[]models.PaymentStatus{models.PaymentStatusPending},
			map[string]interface{}{"status": models.PaymentStatusFailed},
		)
		if err != nil {
			return nil, err
		}
		if superseded == nil {
			return nil, apperrors.Conflict("payment for this booking changed, retry")
		}
	}

	amount := booking.EstimatedPrice
	if booking.ActualPrice > 0 {
		amount = booking.ActualPrice
	}

	now := time.Now()
	record := &models.Payment{
		BookingID: booking.ID,
		UserID:    booking.CustomerID,
		Amount:    amount,
		Currency:  s.currency,
		Method:    models.PaymentMethodCash,
		Reference: utils.GeneratePaymentReference(utils.CashReferencePrefix),
	}

	if err := s.paymentRepo.CreatePending(ctx, record); err != nil {
		return nil, err
	}

	paid, err := s.paymentRepo.Transition(ctx, record.ID,
		[]models.PaymentStatus{models.PaymentStatusPending},
		map[string]interface{}{
			"status":  models.PaymentStatusPaid,
			"paid_at": now,
		},
	)
	if err != nil {
		return nil, err
	}
	if paid == nil {
		return nil, apperrors.Conflict("cash payment was settled concurrently")
	}

	bookingAfter := s.markBookingPaid(ctx, booking.ID, models.PaymentMethodCash)
	s.notification.NotifyPaymentConfirmed(ctx, paid, bookingAfter)

	return paid, nil
}

// RefundPayment reverses a paid record in the local ledger. Moving the
// money back through the gateway is an operational step outside this
// service; the ledger records the decision.
func (s *paymentService) RefundPayment(ctx context.Context, actor models.Actor, paymentID primitive.ObjectID, reason string) (*models.Payment, error) {
	if reason == "" {
		return nil, apperrors.Validation("refund reason is required")
	}

	record, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NotFound("payment")
	}
	if record.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only the payer can refund this payment")
	}

	refunded, err := s.paymentRepo.Transition(ctx, paymentID,
		[]models.PaymentStatus{models.PaymentStatusPaid},
		map[string]interface{}{
			"status":        models.PaymentStatusRefunded,
			"refund_reason": reason,
			"refunded_at":   time.Now(),
		},
	)
	if err != nil {
		return nil, err
	}
	if refunded == nil {
		return nil, apperrors.InvalidState("only paid payments can be refunded")
	}

	if err := s.bookingRepo.Update(ctx, refunded.BookingID, map[string]interface{}{
		"payment_status": models.PaymentStatusRefunded,
	}); err != nil {
		s.logger.WithError(err).WithBookingID(refunded.BookingID).Error("Failed to mark booking refunded")
	}

	s.logger.LogPaymentEvent(refunded.ID, "payment_refunded", refunded.Amount, refunded.Currency)

	return refunded, nil
}

func (s *paymentService) GetPayment(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Payment, error) {
	record, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NotFound("payment")
	}

	if record.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("you do not have access to this payment")
	}

	return record, nil
}

func (s *paymentService) ListUserPayments(ctx context.Context, actor models.Actor, filter *interfaces.PaymentFilter, params *utils.PaginationParams) ([]*models.Payment, int64, error) {
	return s.paymentRepo.ListByUser(ctx, actor.UserID, filter, params)
}

func (s *paymentService) ListBookingPayments(ctx context.Context, actor models.Actor, bookingID primitive.ObjectID) ([]*models.Payment, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !canViewBooking(actor, booking) {
		return nil, apperrors.Forbidden("you do not have access to this booking")
	}

	return s.paymentRepo.ListByBooking(ctx, bookingID)
}

func (s *paymentService) loadBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking")
	}

	return booking, nil
}

func (s *paymentService) markBookingPaid(ctx context.Context, bookingID primitive.ObjectID, method models.PaymentMethod) *models.Booking {
	if err := s.bookingRepo.Update(ctx, bookingID, map[string]interface{}{
		"payment_status": models.PaymentStatusPaid,
		"payment_method": method,
	}); err != nil {
		s.logger.WithError(err).WithBookingID(bookingID).Error("Failed to mark booking paid")
		return nil
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil
	}
	return booking
}
