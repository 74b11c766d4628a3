package services

import (
	"context"

	"haulgo/internal/models"
	"haulgo/internal/utils"
	"haulgo/pkg/logger"
	"haulgo/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Broadcaster is the realtime fan-out surface the notification service
// publishes through.
type Broadcaster interface {
	Publish(roomID string, message websocket.Message)
	SendToUser(userID primitive.ObjectID, message websocket.Message)
}

// NotificationService pushes booking and payment lifecycle events to the
// parties involved. Delivery is best effort; business flows never block on
// it.
type NotificationService interface {
	NotifyBookingCreated(ctx context.Context, booking *models.Booking)
	NotifyBookingAccepted(ctx context.Context, booking *models.Booking)
	NotifyBookingStarted(ctx context.Context, booking *models.Booking)
	NotifyBookingCompleted(ctx context.Context, booking *models.Booking)
	NotifyBookingCancelled(ctx context.Context, booking *models.Booking)
	NotifyPaymentConfirmed(ctx context.Context, payment *models.Payment, booking *models.Booking)
}

type notificationService struct {
	broadcaster Broadcaster
	cache       CacheService
	logger      *logger.Logger
}

func NewNotificationService(broadcaster Broadcaster, cache CacheService, logger *logger.Logger) NotificationService {
	return &notificationService{
		broadcaster: broadcaster,
		cache:       cache,
		logger:      logger,
	}
}

func (s *notificationService) NotifyBookingCreated(ctx context.Context, booking *models.Booking) {
	payload := bookingPayload(booking)

	// New jobs go to the driver pool; the customer gets a confirmation.
	s.broadcaster.Publish(websocket.RoomDrivers, websocket.Message{
		Type: utils.EventBookingCreated,
		Data: payload,
	})
	s.broadcaster.SendToUser(booking.CustomerID, websocket.Message{
		Type: utils.EventBookingCreated,
		Data: payload,
	})

	s.publishEvent(ctx, utils.EventBookingCreated, payload)
	s.logger.LogBookingEvent(booking.ID, utils.EventBookingCreated, map[string]interface{}{"status": booking.Status})
}

func (s *notificationService) NotifyBookingAccepted(ctx context.Context, booking *models.Booking) {
	s.notifyParties(ctx, utils.EventBookingAccepted, booking)
}

func (s *notificationService) NotifyBookingStarted(ctx context.Context, booking *models.Booking) {
	s.notifyParties(ctx, utils.EventBookingStarted, booking)
}

func (s *notificationService) NotifyBookingCompleted(ctx context.Context, booking *models.Booking) {
	s.notifyParties(ctx, utils.EventBookingCompleted, booking)
}

func (s *notificationService) NotifyBookingCancelled(ctx context.Context, booking *models.Booking) {
	s.notifyParties(ctx, utils.EventBookingCancelled, booking)
}

func (s *notificationService) NotifyPaymentConfirmed(ctx context.Context, payment *models.Payment, booking *models.Booking) {
	payload := map[string]interface{}{
		"payment_id": payment.ID.Hex(),
		"booking_id": payment.BookingID.Hex(),
		"amount":     payment.Amount,
		"currency":   payment.Currency,
		"method":     payment.Method,
		"status":     payment.Status,
		"reference":  payment.Reference,
	}

	s.broadcaster.SendToUser(payment.UserID, websocket.Message{
		Type: utils.EventPaymentConfirmed,
		Data: payload,
	})
	if booking != nil && booking.DriverID != nil {
		s.broadcaster.SendToUser(*booking.DriverID, websocket.Message{
			Type: utils.EventPaymentConfirmed,
			Data: payload,
		})
	}

	s.publishEvent(ctx, utils.EventPaymentConfirmed, payload)
	s.logger.LogPaymentEvent(payment.ID, utils.EventPaymentConfirmed, payment.Amount, payment.Currency)
}

func (s *notificationService) notifyParties(ctx context.Context, event string, booking *models.Booking) {
	payload := bookingPayload(booking)

	s.broadcaster.SendToUser(booking.CustomerID, websocket.Message{
		Type: event,
		Data: payload,
	})
	if booking.DriverID != nil {
		s.broadcaster.SendToUser(*booking.DriverID, websocket.Message{
			Type: event,
			Data: payload,
		})
	}
	s.broadcaster.Publish(websocket.RoomDispatch, websocket.Message{
		Type: event,
		Data: payload,
	})

	s.publishEvent(ctx, event, payload)
	s.logger.LogBookingEvent(booking.ID, event, map[string]interface{}{"status": booking.Status})
}

// publishEvent mirrors the event onto the Redis channel so other instances
// can relay it to their own websocket clients.
func (s *notificationService) publishEvent(ctx context.Context, event string, payload map[string]interface{}) {
	if s.cache == nil {
		return
	}

	message := map[string]interface{}{
		"event": event,
		"data":  payload,
	}
	if err := s.cache.Publish(ctx, "events", message); err != nil {
		s.logger.WithError(err).WithField("event", event).Warn("Failed to publish event")
	}
}

func bookingPayload(booking *models.Booking) map[string]interface{} {
	payload := map[string]interface{}{
		"booking_id":       booking.ID.Hex(),
		"customer_id":      booking.CustomerID.Hex(),
		"status":           booking.Status,
		"vehicle_category": booking.VehicleCategory,
		"pickup_location":  booking.PickupLocation,
		"dropoff_location": booking.DropoffLocation,
		"distance":         booking.Distance,
		"estimated_price":  booking.EstimatedPrice,
		"scheduled_at":     booking.ScheduledAt,
	}
	if booking.DriverID != nil {
		payload["driver_id"] = booking.DriverID.Hex()
	}
	if booking.VehicleID != nil {
		payload["vehicle_id"] = booking.VehicleID.Hex()
	}

	return payload
}
