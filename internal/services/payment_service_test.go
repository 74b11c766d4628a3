package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"haulgo/internal/apperrors"
	"haulgo/internal/models"
	"haulgo/internal/repositories/interfaces"
	"haulgo/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type paymentFixture struct {
	svc         PaymentService
	paymentRepo *memPaymentRepo
	bookingRepo *memBookingRepo
	userRepo    *memUserRepo
	gateway     *stubGateway
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		paymentRepo: newMemPaymentRepo(),
		bookingRepo: newMemBookingRepo(),
		userRepo:    newMemUserRepo(),
		gateway:     &stubGateway{},
	}
	f.svc = NewPaymentService(f.paymentRepo, f.bookingRepo, f.userRepo, f.gateway, testNotifier(), testLogger(),
		"NGN", "https://app.example.com/payments/callback")
	return f
}

// completedTrip seeds a booking that has been accepted by driverID and driven
// to completion, the state every settlement path starts from.
func completedTrip(t *testing.T, repo *memBookingRepo, customerID, driverID primitive.ObjectID) *models.Booking {
	t.Helper()
	booking := seedBooking(t, repo, customerID, models.BookingStatusPending)
	assignDriverToBooking(t, repo, booking, driverID, primitive.NewObjectID())
	if _, err := repo.Transition(context.Background(), booking.ID,
		[]models.BookingStatus{models.BookingStatusAccepted},
		map[string]interface{}{"status": models.BookingStatusCompleted},
	); err != nil {
		t.Fatalf("seed completion: %v", err)
	}
	booking.Status = models.BookingStatusCompleted
	return booking
}

func TestInitializePayment(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	booking := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusCompleted)

	resp, err := f.svc.InitializePayment(ctx, owner, &InitializePaymentRequest{
		BookingID: booking.ID,
		Method:    models.PaymentMethodCard,
		Email:     "customer@example.com",
	})
	if err != nil {
		t.Fatalf("InitializePayment: %v", err)
	}

	if resp.AuthorizationURL == "" || resp.AccessCode == "" {
		t.Error("gateway intent fields not propagated")
	}
	if !strings.HasPrefix(resp.Reference, "PAY-") {
		t.Errorf("reference = %q, want PAY- prefix", resp.Reference)
	}
	if resp.Payment.Amount != booking.EstimatedPrice {
		t.Errorf("amount = %.2f, want estimate %.2f", resp.Payment.Amount, booking.EstimatedPrice)
	}
	if f.gateway.lastIntent == nil || f.gateway.lastIntent.Currency != "NGN" {
		t.Error("gateway intent missing or wrong currency")
	}

	stored, _ := f.paymentRepo.GetByReference(ctx, resp.Reference)
	if stored == nil || stored.Status != models.PaymentStatusPending {
		t.Fatal("pending ledger row not stored")
	}
}

func TestInitializePaymentEmailFromAccount(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	if err := f.userRepo.Create(ctx, &models.User{
		ID:          owner.UserID,
		Name:        "Ngozi Obi",
		Email:       "ngozi@example.com",
		AccountType: models.AccountTypeIndividual,
	}); err != nil {
		t.Fatal(err)
	}
	booking := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusCompleted)

	if _, err := f.svc.InitializePayment(ctx, owner, &InitializePaymentRequest{
		BookingID: booking.ID,
		Method:    models.PaymentMethodCard,
	}); err != nil {
		t.Fatalf("InitializePayment: %v", err)
	}
	if f.gateway.lastIntent.Email != "ngozi@example.com" {
		t.Errorf("intent email = %q, want the account address", f.gateway.lastIntent.Email)
	}
}

func TestInitializePaymentNoEmailAnywhere(t *testing.T) {
	f := newPaymentFixture()
	owner := customerActor()
	booking := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusCompleted)

	_, err := f.svc.InitializePayment(context.Background(), owner, &InitializePaymentRequest{
		BookingID: booking.ID,
		Method:    models.PaymentMethodCard,
	})
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestInitializePaymentStrangerForbidden(t *testing.T) {
	f := newPaymentFixture()
	owner := customerActor()
	booking := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusCompleted)

	_, err := f.svc.InitializePayment(context.Background(), customerActor(), &InitializePaymentRequest{
		BookingID: booking.ID,
		Method:    models.PaymentMethodCard,
		Email:     "someone@example.com",
	})
	if !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestInitializePaymentBeforeCompletion(t *testing.T) {
	f := newPaymentFixture()
	owner := customerActor()

	for _, status := range []models.BookingStatus{
		models.BookingStatusPending,
		models.BookingStatusAccepted,
		models.BookingStatusInProgress,
		models.BookingStatusCancelled,
	} {
		booking := seedBooking(t, f.bookingRepo, owner.UserID, status)
		_, err := f.svc.InitializePayment(context.Background(), owner, &InitializePaymentRequest{
			BookingID: booking.ID,
			Method:    models.PaymentMethodCard,
			Email:     "customer@example.com",
		})
		if !apperrors.IsKind(err, apperrors.KindInvalidState) {
			t.Errorf("status %s: err = %v, want invalid_state", status, err)
		}
	}
}

func TestInitializePaymentReusesPendingRow(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	booking := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusCompleted)

	req := &InitializePaymentRequest{BookingID: booking.ID, Method: models.PaymentMethodCard, Email: "c@example.com"}
	first, err := f.svc.InitializePayment(ctx, owner, req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.svc.InitializePayment(ctx, owner, req)
	if err != nil {
		t.Fatalf("second initialize: %v", err)
	}
	if second.Reference != first.Reference {
		t.Errorf("second reference = %q, want the open row's %q", second.Reference, first.Reference)
	}
	if f.gateway.intentCalls != 2 {
		t.Errorf("intent calls = %d, want a fresh gateway intent per initialize", f.gateway.intentCalls)
	}
	if n := f.paymentRepo.count(); n != 1 {
		t.Errorf("ledger rows = %d, want the single pending row reused", n)
	}
}

func TestInitializePaymentAlreadyPaid(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	booking := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusCompleted)
	resp := initializedPayment(t, f, owner, booking)

	f.gateway.verifyResp = &payment.VerifyResponse{Status: "success", TransactionID: "txn_1", Channel: "card"}
	if _, err := f.svc.VerifyPayment(ctx, owner, resp.Reference); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.InitializePayment(ctx, owner, &InitializePaymentRequest{
		BookingID: booking.ID,
		Method:    models.PaymentMethodCard,
		Email:     "customer@example.com",
	})
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestInitializePaymentGatewayFailure(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	f.gateway.intentErr = errors.New("gateway timeout")
	owner := customerActor()
	booking := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusCompleted)

	_, err := f.svc.InitializePayment(ctx, owner, &InitializePaymentRequest{
		BookingID: booking.ID,
		Method:    models.PaymentMethodCard,
		Email:     "customer@example.com",
	})
	if !apperrors.IsKind(err, apperrors.KindUpstream) {
		t.Fatalf("err = %v, want upstream", err)
	}

	open, _ := f.paymentRepo.GetOpenByBooking(ctx, booking.ID)
	if open == nil || open.Status != models.PaymentStatusPending {
		t.Fatal("gateway failure must leave the row pending")
	}

	f.gateway.intentErr = nil
	resp, err := f.svc.InitializePayment(ctx, owner, &InitializePaymentRequest{
		BookingID: booking.ID,
		Method:    models.PaymentMethodCard,
		Email:     "customer@example.com",
	})
	if err != nil {
		t.Fatalf("retry after gateway failure: %v", err)
	}
	if resp.Reference != open.Reference {
		t.Errorf("retry reference = %q, want the pending row's %q", resp.Reference, open.Reference)
	}
}

func initializedPayment(t *testing.T, f *paymentFixture, owner models.Actor, booking *models.Booking) *InitializePaymentResponse {
	t.Helper()
	resp, err := f.svc.InitializePayment(context.Background(), owner, &InitializePaymentRequest{
		BookingID: booking.ID,
		Method:    models.PaymentMethodCard,
		Email:     "customer@example.com",
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return resp
}

func TestVerifyPayment(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	booking := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusCompleted)
	resp := initializedPayment(t, f, owner, booking)

	f.gateway.verifyResp = &payment.VerifyResponse{
		Status:        "success",
		TransactionID: "txn_42",
		Channel:       "card",
		Authorization: &payment.CardAuthorization{Brand: "visa", Last4: "4081", Bank: "GTBank"},
	}

	paid, err := f.svc.VerifyPayment(ctx, owner, resp.Reference)
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if paid.Status != models.PaymentStatusPaid {
		t.Errorf("status = %s, want paid", paid.Status)
	}
	if paid.TransactionID != "txn_42" {
		t.Errorf("transaction_id = %q, want txn_42", paid.TransactionID)
	}
	if paid.CardDetails == nil || paid.CardDetails.Last4 != "4081" {
		t.Error("card details not stored")
	}
	if paid.PaidAt == nil {
		t.Error("paid_at not set")
	}

	after, _ := f.bookingRepo.GetByID(ctx, booking.ID)
	if after.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("booking payment_status = %s, want paid", after.PaymentStatus)
	}
}

func TestVerifyPaymentIdempotent(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	booking := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusCompleted)
	resp := initializedPayment(t, f, owner, booking)

	f.gateway.verifyResp = &payment.VerifyResponse{Status: "success", TransactionID: "txn_7", Channel: "card"}
	if _, err := f.svc.VerifyPayment(ctx, owner, resp.Reference); err != nil {
		t.Fatal(err)
	}
	verifyCalls := f.gateway.verifyCalls

	again, err := f.svc.VerifyPayment(ctx, owner, resp.Reference)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if again.Status != models.PaymentStatusPaid {
		t.Errorf("status = %s, want paid", again.Status)
	}
	if f.gateway.verifyCalls != verifyCalls {
		t.Error("already-paid verify should not hit the gateway again")
	}
}

func TestVerifyPaymentFinalFailure(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	booking := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusCompleted)
	resp := initializedPayment(t, f, owner, booking)

	f.gateway.verifyResp = &payment.VerifyResponse{Status: "abandoned"}

	_, err := f.svc.VerifyPayment(ctx, owner, resp.Reference)
	if !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Fatalf("err = %v, want invalid_state", err)
	}

	stored, _ := f.paymentRepo.GetByReference(ctx, resp.Reference)
	if stored.Status != models.PaymentStatusFailed {
		t.Errorf("status = %s, want failed", stored.Status)
	}
}

func TestVerifyPaymentStillPending(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	booking := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusCompleted)
	resp := initializedPayment(t, f, owner, booking)

	f.gateway.verifyResp = &payment.VerifyResponse{Status: "pending"}

	_, err := f.svc.VerifyPayment(ctx, owner, resp.Reference)
	if !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Fatalf("err = %v, want invalid_state", err)
	}

	// A non-final status leaves the row open for the next verify.
	stored, _ := f.paymentRepo.GetByReference(ctx, resp.Reference)
	if stored.Status != models.PaymentStatusPending {
		t.Errorf("status = %s, want pending", stored.Status)
	}
}

func TestVerifyPaymentUnknownReference(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.VerifyPayment(context.Background(), customerActor(), "PAY-unknown")
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
}

func TestRecordCashPayment(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	driver := driverActor()
	booking := completedTrip(t, f.bookingRepo, owner.UserID, driver.UserID)

	paid, err := f.svc.RecordCashPayment(ctx, driver, booking.ID)
	if err != nil {
		t.Fatalf("RecordCashPayment: %v", err)
	}
	if paid.Status != models.PaymentStatusPaid {
		t.Errorf("status = %s, want paid", paid.Status)
	}
	if paid.Method != models.PaymentMethodCash {
		t.Errorf("method = %s, want cash", paid.Method)
	}
	if !strings.HasPrefix(paid.Reference, "CASH-") {
		t.Errorf("reference = %q, want CASH- prefix", paid.Reference)
	}
	if paid.UserID != owner.UserID {
		t.Error("cash payment should be recorded against the customer")
	}
	if f.gateway.intentCalls != 0 || f.gateway.verifyCalls != 0 {
		t.Error("cash settlement must not touch the gateway")
	}

	after, _ := f.bookingRepo.GetByID(ctx, booking.ID)
	if after.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("booking payment_status = %s, want paid", after.PaymentStatus)
	}
	if after.PaymentMethod != models.PaymentMethodCash {
		t.Errorf("booking payment_method = %s, want cash", after.PaymentMethod)
	}
}

func TestRecordCashPaymentBeforeCompletion(t *testing.T) {
	f := newPaymentFixture()
	owner := customerActor()
	driver := driverActor()
	booking := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusPending)
	assignDriverToBooking(t, f.bookingRepo, booking, driver.UserID, primitive.NewObjectID())

	_, err := f.svc.RecordCashPayment(context.Background(), driver, booking.ID)
	if !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Fatalf("err = %v, want invalid_state", err)
	}
}

func TestRecordCashPaymentNonDriverForbidden(t *testing.T) {
	f := newPaymentFixture()
	owner := customerActor()
	booking := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusPending)

	_, err := f.svc.RecordCashPayment(context.Background(), owner, booking.ID)
	if !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestRecordCashPaymentWrongDriver(t *testing.T) {
	f := newPaymentFixture()
	owner := customerActor()
	booking := completedTrip(t, f.bookingRepo, owner.UserID, primitive.NewObjectID())

	_, err := f.svc.RecordCashPayment(context.Background(), driverActor(), booking.ID)
	if !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestRecordCashPaymentAlreadyPaid(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	driver := driverActor()
	booking := completedTrip(t, f.bookingRepo, owner.UserID, driver.UserID)

	if _, err := f.svc.RecordCashPayment(ctx, driver, booking.ID); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.RecordCashPayment(ctx, driver, booking.ID)
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestRefundPayment(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	driver := driverActor()
	admin := models.Actor{UserID: primitive.NewObjectID(), Role: models.AccountTypeAdmin}
	booking := completedTrip(t, f.bookingRepo, owner.UserID, driver.UserID)

	paid, err := f.svc.RecordCashPayment(ctx, driver, booking.ID)
	if err != nil {
		t.Fatal(err)
	}

	refunded, err := f.svc.RefundPayment(ctx, admin, paid.ID, "driver never showed up")
	if err != nil {
		t.Fatalf("RefundPayment: %v", err)
	}
	if refunded.Status != models.PaymentStatusRefunded {
		t.Errorf("status = %s, want refunded", refunded.Status)
	}
	if refunded.RefundReason != "driver never showed up" {
		t.Errorf("reason = %q", refunded.RefundReason)
	}
	if refunded.RefundedAt == nil {
		t.Error("refunded_at not set")
	}

	after, _ := f.bookingRepo.GetByID(ctx, booking.ID)
	if after.PaymentStatus != models.PaymentStatusRefunded {
		t.Errorf("booking payment_status = %s, want refunded", after.PaymentStatus)
	}
}

func TestRefundPaymentByOwner(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	driver := driverActor()
	booking := completedTrip(t, f.bookingRepo, owner.UserID, driver.UserID)

	paid, err := f.svc.RecordCashPayment(ctx, driver, booking.ID)
	if err != nil {
		t.Fatal(err)
	}

	refunded, err := f.svc.RefundPayment(ctx, owner, paid.ID, "overcharged")
	if err != nil {
		t.Fatalf("owner refund: %v", err)
	}
	if refunded.Status != models.PaymentStatusRefunded {
		t.Errorf("status = %s, want refunded", refunded.Status)
	}
}

func TestRefundPaymentStrangerForbidden(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	driver := driverActor()
	booking := completedTrip(t, f.bookingRepo, owner.UserID, driver.UserID)

	paid, err := f.svc.RecordCashPayment(ctx, driver, booking.ID)
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.RefundPayment(ctx, customerActor(), paid.ID, "not mine")
	if !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestRefundPaymentRequiresReason(t *testing.T) {
	f := newPaymentFixture()
	admin := models.Actor{UserID: primitive.NewObjectID(), Role: models.AccountTypeAdmin}

	_, err := f.svc.RefundPayment(context.Background(), admin, primitive.NewObjectID(), "")
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestRefundPaymentNotPaid(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	admin := models.Actor{UserID: primitive.NewObjectID(), Role: models.AccountTypeAdmin}
	booking := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusCompleted)
	resp := initializedPayment(t, f, owner, booking)

	_, err := f.svc.RefundPayment(ctx, admin, resp.Payment.ID, "never settled")
	if !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Fatalf("err = %v, want invalid_state", err)
	}
}

func TestGetPaymentAccess(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	booking := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusCompleted)
	resp := initializedPayment(t, f, owner, booking)

	if _, err := f.svc.GetPayment(ctx, owner, resp.Payment.ID); err != nil {
		t.Fatalf("owner access: %v", err)
	}

	_, err := f.svc.GetPayment(ctx, customerActor(), resp.Payment.ID)
	if !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Fatalf("stranger err = %v, want forbidden", err)
	}

	admin := models.Actor{UserID: primitive.NewObjectID(), Role: models.AccountTypeAdmin}
	if _, err := f.svc.GetPayment(ctx, admin, resp.Payment.ID); err != nil {
		t.Fatalf("admin access: %v", err)
	}
}

func TestListUserPaymentsFiltered(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	other := customerActor()

	first := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusCompleted)
	paid, err := f.svc.InitializePayment(ctx, owner, &InitializePaymentRequest{
		BookingID: first.ID,
		Method:    models.PaymentMethodCard,
		Email:     "owner@example.com",
	})
	if err != nil {
		t.Fatalf("InitializePayment: %v", err)
	}
	if _, err := f.svc.VerifyPayment(ctx, owner, paid.Reference); err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}

	second := seedBooking(t, f.bookingRepo, owner.UserID, models.BookingStatusCompleted)
	if _, err := f.svc.InitializePayment(ctx, owner, &InitializePaymentRequest{
		BookingID: second.ID,
		Method:    models.PaymentMethodTransfer,
		Email:     "owner@example.com",
	}); err != nil {
		t.Fatalf("InitializePayment: %v", err)
	}

	theirs := seedBooking(t, f.bookingRepo, other.UserID, models.BookingStatusCompleted)
	if _, err := f.svc.InitializePayment(ctx, other, &InitializePaymentRequest{
		BookingID: theirs.ID,
		Method:    models.PaymentMethodCard,
		Email:     "other@example.com",
	}); err != nil {
		t.Fatalf("InitializePayment: %v", err)
	}

	all, total, err := f.svc.ListUserPayments(ctx, owner, nil, nil)
	if err != nil {
		t.Fatalf("ListUserPayments: %v", err)
	}
	if len(all) != 2 || total != 2 {
		t.Errorf("unfiltered: %d payments (total %d), want 2", len(all), total)
	}

	paidStatus := models.PaymentStatusPaid
	settled, _, err := f.svc.ListUserPayments(ctx, owner, &interfaces.PaymentFilter{Status: &paidStatus}, nil)
	if err != nil {
		t.Fatalf("ListUserPayments by status: %v", err)
	}
	if len(settled) != 1 || settled[0].Reference != paid.Reference {
		t.Errorf("status filter returned %d payments, want the paid one", len(settled))
	}

	transfer := models.PaymentMethodTransfer
	byMethod, _, err := f.svc.ListUserPayments(ctx, owner, &interfaces.PaymentFilter{Method: &transfer}, nil)
	if err != nil {
		t.Fatalf("ListUserPayments by method: %v", err)
	}
	if len(byMethod) != 1 || byMethod[0].Method != models.PaymentMethodTransfer {
		t.Errorf("method filter returned %d payments, want the transfer one", len(byMethod))
	}
}

func TestRecordCashPaymentSupersedesPendingIntent(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := customerActor()
	driver := driverActor()
	booking := completedTrip(t, f.bookingRepo, owner.UserID, driver.UserID)

	intent, err := f.svc.InitializePayment(ctx, owner, &InitializePaymentRequest{
		BookingID: booking.ID,
		Method:    models.PaymentMethodCard,
		Email:     "owner@example.com",
	})
	if err != nil {
		t.Fatalf("InitializePayment: %v", err)
	}

	paid, err := f.svc.RecordCashPayment(ctx, driver, booking.ID)
	if err != nil {
		t.Fatalf("RecordCashPayment over pending intent: %v", err)
	}
	if paid.Status != models.PaymentStatusPaid || paid.Method != models.PaymentMethodCash {
		t.Errorf("cash row = %s/%s, want paid/cash", paid.Status, paid.Method)
	}

	stale, _ := f.paymentRepo.GetByReference(ctx, intent.Reference)
	if stale == nil || stale.Status != models.PaymentStatusFailed {
		t.Fatalf("abandoned card intent = %v, want failed", stale)
	}

	after, _ := f.bookingRepo.GetByID(ctx, booking.ID)
	if after.PaymentStatus != models.PaymentStatusPaid || after.PaymentMethod != models.PaymentMethodCash {
		t.Errorf("booking settled as %s/%s, want paid/cash", after.PaymentStatus, after.PaymentMethod)
	}
}
