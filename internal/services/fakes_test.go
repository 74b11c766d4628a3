package services

import (
	"context"
	"sync"
	"time"

	"haulgo/internal/apperrors"
	"haulgo/internal/models"
	"haulgo/internal/repositories/interfaces"
	"haulgo/internal/utils"
	"haulgo/pkg/logger"
	"haulgo/pkg/payment"
	"haulgo/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *logger.Logger {
	l, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stdout"})
	if err != nil {
		panic(err)
	}
	return l
}

// silentBroadcaster swallows realtime messages.
type silentBroadcaster struct{}

func (silentBroadcaster) Publish(roomID string, message websocket.Message)                {}
func (silentBroadcaster) SendToUser(userID primitive.ObjectID, message websocket.Message) {}

func testNotifier() NotificationService {
	return NewNotificationService(silentBroadcaster{}, nil, testLogger())
}

// memBookingRepo is an in-memory BookingRepository with the same
// precondition semantics as the Mongo implementation.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]*models.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[primitive.ObjectID]*models.Booking)}
}

func (r *memBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	clone := *booking
	r.bookings[booking.ID] = &clone
	return nil
}

func (r *memBookingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	clone := *booking
	return &clone, nil
}

func (r *memBookingRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil
	}
	applyBookingUpdates(booking, updates)
	return nil
}

func (r *memBookingRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bookings, id)
	return nil
}

func (r *memBookingRepo) Claim(ctx context.Context, id primitive.ObjectID, assignment *models.Assignment, acceptedAt time.Time) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok || booking.Status != models.BookingStatusPending || booking.DriverID != nil {
		return nil, nil
	}
	driverID := assignment.DriverID
	vehicleID := assignment.VehicleID
	booking.Status = models.BookingStatusAccepted
	booking.DriverID = &driverID
	booking.VehicleID = &vehicleID
	booking.CompanyID = assignment.CompanyID
	at := acceptedAt
	booking.AcceptedAt = &at
	clone := *booking
	return &clone, nil
}

func (r *memBookingRepo) Transition(ctx context.Context, id primitive.ObjectID, from []models.BookingStatus, updates map[string]interface{}) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	matched := false
	for _, status := range from {
		if booking.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return nil, nil
	}
	applyBookingUpdates(booking, updates)
	clone := *booking
	return &clone, nil
}

func (r *memBookingRepo) SetRating(ctx context.Context, id, customerID primitive.ObjectID, rating int, review string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok || booking.CustomerID != customerID || booking.Status != models.BookingStatusCompleted || booking.Rating != nil {
		return nil, nil
	}
	booking.Rating = &rating
	booking.Review = review
	clone := *booking
	return &clone, nil
}

func (r *memBookingRepo) List(ctx context.Context, status *models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Booking
	for _, booking := range r.bookings {
		if status != nil && booking.Status != *status {
			continue
		}
		clone := *booking
		result = append(result, &clone)
	}
	return result, int64(len(result)), nil
}

func (r *memBookingRepo) ListByCustomer(ctx context.Context, customerID primitive.ObjectID, status *models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Booking
	for _, booking := range r.bookings {
		if booking.CustomerID != customerID {
			continue
		}
		if status != nil && booking.Status != *status {
			continue
		}
		clone := *booking
		result = append(result, &clone)
	}
	return result, int64(len(result)), nil
}

func (r *memBookingRepo) ListByDriver(ctx context.Context, driverID primitive.ObjectID, statuses []models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Booking
	for _, booking := range r.bookings {
		if booking.DriverID == nil || *booking.DriverID != driverID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, booking.Status) {
			continue
		}
		clone := *booking
		result = append(result, &clone)
	}
	return result, int64(len(result)), nil
}

func (r *memBookingRepo) ListPendingByCategories(ctx context.Context, categories []models.VehicleCategory, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Booking
	for _, booking := range r.bookings {
		if booking.Status != models.BookingStatusPending || booking.DriverID != nil {
			continue
		}
		if len(categories) > 0 && !containsCategory(categories, booking.VehicleCategory) {
			continue
		}
		clone := *booking
		result = append(result, &clone)
	}
	return result, int64(len(result)), nil
}

func (r *memBookingRepo) CountActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, booking := range r.bookings {
		if booking.DriverID != nil && *booking.DriverID == driverID && booking.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

func (r *memBookingRepo) HasScheduleConflict(ctx context.Context, driverID primitive.ObjectID, scheduledAt time.Time, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, booking := range r.bookings {
		if booking.DriverID == nil || *booking.DriverID != driverID || !booking.Status.IsActive() {
			continue
		}
		if booking.ScheduledAt.After(scheduledAt.Add(-window)) && booking.ScheduledAt.Before(scheduledAt.Add(window)) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookingRepo) EarningsByDriver(ctx context.Context, driverID primitive.ObjectID, since *time.Time) (*interfaces.DriverEarnings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	earnings := &interfaces.DriverEarnings{}
	for _, booking := range r.bookings {
		if booking.DriverID == nil || *booking.DriverID != driverID || booking.Status != models.BookingStatusCompleted {
			continue
		}
		if since != nil && (booking.CompletedAt == nil || booking.CompletedAt.Before(*since)) {
			continue
		}
		earnings.TotalEarnings += booking.ActualPrice
		earnings.CompletedTrips++
	}
	return earnings, nil
}

func applyBookingUpdates(booking *models.Booking, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "status":
			booking.Status = value.(models.BookingStatus)
		case "payment_status":
			booking.PaymentStatus = value.(models.PaymentStatus)
		case "payment_method":
			booking.PaymentMethod = value.(models.PaymentMethod)
		case "actual_price":
			booking.ActualPrice = value.(float64)
		case "cancel_reason":
			booking.CancelReason = value.(string)
		case "started_at":
			t := value.(time.Time)
			booking.StartedAt = &t
		case "completed_at":
			t := value.(time.Time)
			booking.CompletedAt = &t
		case "cancelled_at":
			t := value.(time.Time)
			booking.CancelledAt = &t
		}
	}
	booking.UpdatedAt = time.Now()
}

func containsStatus(statuses []models.BookingStatus, status models.BookingStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func containsCategory(categories []models.VehicleCategory, category models.VehicleCategory) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

// memVehicleRepo mirrors the Mongo vehicle repository in memory.
type memVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[primitive.ObjectID]*models.Vehicle
}

func newMemVehicleRepo() *memVehicleRepo {
	return &memVehicleRepo{vehicles: make(map[primitive.ObjectID]*models.Vehicle)}
}

func (r *memVehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle.ID = primitive.NewObjectID()
	clone := *vehicle
	r.vehicles[vehicle.ID] = &clone
	return nil
}

func (r *memVehicleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle, ok := r.vehicles[id]
	if !ok {
		return nil, nil
	}
	clone := *vehicle
	return &clone, nil
}

func (r *memVehicleRepo) GetByPlateNumber(ctx context.Context, plateNumber string) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, vehicle := range r.vehicles {
		if vehicle.PlateNumber == plateNumber {
			clone := *vehicle
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memVehicleRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle, ok := r.vehicles[id]
	if !ok {
		return nil
	}
	for key, value := range updates {
		switch key {
		case "name":
			vehicle.Name = value.(string)
		case "model":
			vehicle.Model = value.(string)
		case "color":
			vehicle.Color = value.(string)
		case "base_price":
			vehicle.BasePrice = value.(float64)
		case "is_active":
			vehicle.IsActive = value.(bool)
		case "is_available":
			vehicle.IsAvailable = value.(bool)
		}
	}
	return nil
}

func (r *memVehicleRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.Update(ctx, id, map[string]interface{}{"is_active": false})
}

func (r *memVehicleRepo) Reserve(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle, ok := r.vehicles[id]
	if !ok || !vehicle.IsActive || !vehicle.IsAvailable {
		return nil, nil
	}
	vehicle.IsAvailable = false
	clone := *vehicle
	return &clone, nil
}

func (r *memVehicleRepo) Release(ctx context.Context, id primitive.ObjectID) error {
	return r.Update(ctx, id, map[string]interface{}{"is_available": true})
}

func (r *memVehicleRepo) AssignDriver(ctx context.Context, vehicleID, driverID primitive.ObjectID) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle, ok := r.vehicles[vehicleID]
	if !ok || !vehicle.IsActive || vehicle.IsAssigned {
		return nil, nil
	}
	vehicle.IsAssigned = true
	id := driverID
	vehicle.AssignedDriverID = &id
	clone := *vehicle
	return &clone, nil
}

func (r *memVehicleRepo) UnassignDriver(ctx context.Context, vehicleID, driverID primitive.ObjectID) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle, ok := r.vehicles[vehicleID]
	if !ok || vehicle.AssignedDriverID == nil || *vehicle.AssignedDriverID != driverID {
		return nil, nil
	}
	vehicle.IsAssigned = false
	vehicle.AssignedDriverID = nil
	clone := *vehicle
	return &clone, nil
}

func (r *memVehicleRepo) IncrementTripStats(ctx context.Context, id primitive.ObjectID, revenue float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle, ok := r.vehicles[id]
	if !ok {
		return nil
	}
	vehicle.TotalTrips++
	vehicle.TotalRevenue += revenue
	return nil
}

func (r *memVehicleRepo) ListByCompany(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Vehicle
	for _, vehicle := range r.vehicles {
		if vehicle.CompanyID != nil && *vehicle.CompanyID == companyID && vehicle.IsActive {
			clone := *vehicle
			result = append(result, &clone)
		}
	}
	return result, int64(len(result)), nil
}

func (r *memVehicleRepo) ListAvailable(ctx context.Context, category *models.VehicleCategory, params *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Vehicle
	for _, vehicle := range r.vehicles {
		if !vehicle.IsActive || !vehicle.IsAvailable {
			continue
		}
		if category != nil && vehicle.Category != *category {
			continue
		}
		clone := *vehicle
		result = append(result, &clone)
	}
	return result, int64(len(result)), nil
}

// memDriverRepo keeps driver profiles keyed by user ID.
type memDriverRepo struct {
	mu       sync.Mutex
	profiles map[primitive.ObjectID]*models.DriverProfile
}

func newMemDriverRepo() *memDriverRepo {
	return &memDriverRepo{profiles: make(map[primitive.ObjectID]*models.DriverProfile)}
}

func (r *memDriverRepo) Create(ctx context.Context, profile *models.DriverProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	clone := *profile
	r.profiles[profile.UserID] = &clone
	return nil
}

func (r *memDriverRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.DriverProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, profile := range r.profiles {
		if profile.ID == id {
			clone := *profile
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memDriverRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.DriverProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	clone := *profile
	return &clone, nil
}

func (r *memDriverRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *memDriverRepo) SetAssignedVehicle(ctx context.Context, userID, vehicleID primitive.ObjectID, companyID *primitive.ObjectID) (*models.DriverProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[userID]
	if !ok || profile.AssignedVehicleID != nil {
		return nil, nil
	}
	id := vehicleID
	profile.AssignedVehicleID = &id
	if companyID != nil {
		cid := *companyID
		profile.CompanyID = &cid
	}
	clone := *profile
	return &clone, nil
}

func (r *memDriverRepo) ClearAssignedVehicle(ctx context.Context, userID, vehicleID primitive.ObjectID) (*models.DriverProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[userID]
	if !ok || profile.AssignedVehicleID == nil || *profile.AssignedVehicleID != vehicleID {
		return nil, nil
	}
	profile.AssignedVehicleID = nil
	clone := *profile
	return &clone, nil
}

func (r *memDriverRepo) SetAvailability(ctx context.Context, userID primitive.ObjectID, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile, ok := r.profiles[userID]; ok {
		profile.IsAvailable = available
	}
	return nil
}

func (r *memDriverRepo) ListByCompany(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*models.DriverProfile, int64, error) {
	return nil, 0, nil
}

func (r *memDriverRepo) ListAvailable(ctx context.Context, params *utils.PaginationParams) ([]*models.DriverProfile, int64, error) {
	return nil, 0, nil
}

// memCompanyRepo tracks counter deltas for assertions.
type memCompanyRepo struct {
	mu            sync.Mutex
	profiles      map[primitive.ObjectID]*models.CompanyProfile
	vehiclesDelta map[primitive.ObjectID]int
	driversDelta  map[primitive.ObjectID]int
}

func newMemCompanyRepo() *memCompanyRepo {
	return &memCompanyRepo{
		profiles:      make(map[primitive.ObjectID]*models.CompanyProfile),
		vehiclesDelta: make(map[primitive.ObjectID]int),
		driversDelta:  make(map[primitive.ObjectID]int),
	}
}

func (r *memCompanyRepo) Create(ctx context.Context, profile *models.CompanyProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	clone := *profile
	r.profiles[profile.UserID] = &clone
	return nil
}

func (r *memCompanyRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.CompanyProfile, error) {
	return nil, nil
}

func (r *memCompanyRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.CompanyProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	clone := *profile
	return &clone, nil
}

func (r *memCompanyRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *memCompanyRepo) IncrementCounters(ctx context.Context, userID primitive.ObjectID, vehiclesDelta, driversDelta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehiclesDelta[userID] += vehiclesDelta
	r.driversDelta[userID] += driversDelta
	return nil
}

// memPaymentRepo enforces the one-open-payment-per-booking rule the same
// way the partial unique index does.
type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[primitive.ObjectID]*models.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[primitive.ObjectID]*models.Payment)}
}

func (r *memPaymentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}

func (r *memPaymentRepo) CreatePending(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payments {
		if existing.BookingID == payment.BookingID &&
			(existing.Status == models.PaymentStatusPending || existing.Status == models.PaymentStatusPaid) {
			return apperrors.Conflict("an open payment already exists for this booking")
		}
	}
	payment.ID = primitive.NewObjectID()
	payment.Status = models.PaymentStatusPending
	payment.CreatedAt = time.Now()
	clone := *payment
	r.payments[payment.ID] = &clone
	return nil
}

func (r *memPaymentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (r *memPaymentRepo) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.payments {
		if record.Reference == reference {
			clone := *record
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memPaymentRepo) GetByBookingID(ctx context.Context, bookingID primitive.ObjectID) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.payments {
		if record.BookingID == bookingID {
			clone := *record
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memPaymentRepo) GetOpenByBooking(ctx context.Context, bookingID primitive.ObjectID) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.payments {
		if record.BookingID == bookingID &&
			(record.Status == models.PaymentStatusPending || record.Status == models.PaymentStatusPaid) {
			clone := *record
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memPaymentRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.payments[id]
	if !ok {
		return nil
	}
	applyPaymentUpdates(record, updates)
	return nil
}

func (r *memPaymentRepo) Transition(ctx context.Context, id primitive.ObjectID, from []models.PaymentStatus, updates map[string]interface{}) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	matched := false
	for _, status := range from {
		if record.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return nil, nil
	}
	applyPaymentUpdates(record, updates)
	clone := *record
	return &clone, nil
}

func (r *memPaymentRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, filter *interfaces.PaymentFilter, params *utils.PaginationParams) ([]*models.Payment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Payment
	for _, record := range r.payments {
		if record.UserID != userID {
			continue
		}
		if filter != nil {
			if filter.Status != nil && record.Status != *filter.Status {
				continue
			}
			if filter.Method != nil && record.Method != *filter.Method {
				continue
			}
		}
		clone := *record
		result = append(result, &clone)
	}
	return result, int64(len(result)), nil
}

func (r *memPaymentRepo) ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Payment
	for _, record := range r.payments {
		if record.BookingID == bookingID {
			clone := *record
			result = append(result, &clone)
		}
	}
	return result, nil
}

func applyPaymentUpdates(record *models.Payment, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "status":
			record.Status = value.(models.PaymentStatus)
		case "amount":
			record.Amount = value.(float64)
		case "method":
			record.Method = value.(models.PaymentMethod)
		case "access_code":
			record.AccessCode = value.(string)
		case "authorization_url":
			record.AuthorizationURL = value.(string)
		case "transaction_id":
			record.TransactionID = value.(string)
		case "channel":
			record.Channel = value.(string)
		case "gateway_reference":
			record.GatewayReference = value.(string)
		case "refund_reason":
			record.RefundReason = value.(string)
		case "card_details":
			record.CardDetails = value.(*models.CardDetails)
		case "paid_at":
			t := value.(time.Time)
			record.PaidAt = &t
		case "refunded_at":
			t := value.(time.Time)
			record.RefundedAt = &t
		}
	}
	record.UpdatedAt = time.Now()
}

// memUserRepo holds identity records keyed by ID.
type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

// stubGateway scripts gateway responses and counts calls.
type stubGateway struct {
	intentErr    error
	verifyResp   *payment.VerifyResponse
	verifyErr    error
	intentCalls  int
	verifyCalls  int
	lastIntent   *payment.IntentRequest
	lastVerified string
}

func (g *stubGateway) CreateIntent(ctx context.Context, req *payment.IntentRequest) (*payment.IntentResponse, error) {
	g.intentCalls++
	g.lastIntent = req
	if g.intentErr != nil {
		return nil, g.intentErr
	}
	return &payment.IntentResponse{
		Reference:        req.Reference,
		AccessCode:       "ac_test",
		AuthorizationURL: "https://checkout.example.com/" + req.Reference,
	}, nil
}

func (g *stubGateway) Verify(ctx context.Context, reference string) (*payment.VerifyResponse, error) {
	g.verifyCalls++
	g.lastVerified = reference
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	if g.verifyResp != nil {
		return g.verifyResp, nil
	}
	return &payment.VerifyResponse{Status: "success", TransactionID: "txn_1", Channel: "card", Amount: 0}, nil
}
