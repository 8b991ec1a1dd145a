package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/salestrack/messenger-service/internal/domain/entity"
	"github.com/salestrack/messenger-service/internal/domain/push"
	"github.com/salestrack/messenger-service/internal/domain/repository"
)

// payloadKey is the data key the mobile client reads.
const payloadKey = "salesMessage"

// ErrNoPushToken distinguishes "user exists but never registered a
// device" from a missing user on the single-recipient order path.
type ErrNoPushToken struct {
	Cpf string
}

func (e *ErrNoPushToken) Error() string {
	return "user with cpf: " + e.Cpf + " has no registered push token"
}

// ErrNoInterestedProducts is returned when a price update matches no
// subscription at all.
type ErrNoInterestedProducts struct {
	ProductID int64
	Price     float64
}

func (e *ErrNoInterestedProducts) Error() string {
	return fmt.Sprintf("no product of interest with salesProviderProductId '%d' and minPriceAlert greater than or equal to %.2f was found to notify", e.ProductID, e.Price)
}

// TransportError wraps a push-transport failure. It is always recorded
// per recipient and never aborts the remaining batch.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return "failed to send notification: " + e.Cause.Error()
}

func (e *TransportError) Unwrap() error { return e.Cause }

// NotifierService resolves inbound price and order events to interested
// users and dispatches push messages through the Sender capability.
// It never retries: a failed send is reported once in the aggregate.
type NotifierService struct {
	Users     repository.UserRepository
	Interests repository.ProductOfInterestRepository
	Sender    push.Sender
	Logger    *logrus.Logger
}

func NewNotifierService(users repository.UserRepository, interests repository.ProductOfInterestRepository, sender push.Sender, logger *logrus.Logger) *NotifierService {
	return &NotifierService{Users: users, Interests: interests, Sender: sender, Logger: logger}
}

// PriceUpdate fans the event out to every subscription whose threshold
// the new price has reached (minPriceAlert >= newProductPrice). Each
// match yields exactly one line in the aggregate: sent, owner missing,
// owner without token, or transport failure. Cancellation of ctx stops
// further sends and returns the lines collected so far.
func (s *NotifierService) PriceUpdate(ctx context.Context, ev *entity.PriceUpdate) (string, error) {
	if err := ev.Validate(); err != nil {
		return "", err
	}

	matches, err := s.Interests.FindByProductAndMinPrice(ctx, ev.ProductID, ev.NewProductPrice)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", &ErrNoInterestedProducts{ProductID: ev.ProductID, Price: ev.NewProductPrice}
	}

	lines := make([]string, 0, len(matches))
	for _, poi := range matches {
		if ctx.Err() != nil {
			break
		}
		lines = append(lines, s.notifyInterest(ctx, &poi, ev))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *NotifierService) notifyInterest(ctx context.Context, poi *entity.ProductOfInterest, ev *entity.PriceUpdate) string {
	user, err := s.Users.GetByCpf(ctx, poi.Cpf)
	if err != nil {
		return fmt.Sprintf("STATUS: notification not sent. REASON: user with cpf: %s has products of interest to notify but was not found", poi.Cpf)
	}
	if user.FcmRegID == "" {
		return fmt.Sprintf("STATUS: notification not sent. REASON: user with cpf: %s has products of interest to notify but no registered fcmRegId", poi.Cpf)
	}

	text := priceUpdateNotification(user, poi, ev)
	msgID, err := s.Sender.Send(ctx, user.FcmRegID, map[string]string{payloadKey: text})
	if err != nil {
		terr := &TransportError{Cause: err}
		s.Logger.WithError(err).WithField("cpf", user.Cpf).Warn("push send failed")
		return "STATUS: notification not sent. REASON: " + terr.Error()
	}

	s.Logger.WithFields(logrus.Fields{"cpf": user.Cpf, "message_id": msgID}).Info("price update notification sent")
	return fmt.Sprintf("STATUS: notification sent. REASON: user with cpf: %s has a product of interest with minimum price alert of %.2f", user.Cpf, poi.MinPriceAlert)
}

// OrderStatus notifies the single user the order belongs to. The
// event's salesProviderUserId must match the stored one; a mismatch is
// a validation failure, not a lookup failure.
func (s *NotifierService) OrderStatus(ctx context.Context, order *entity.Order) (string, error) {
	if err := order.Validate(); err != nil {
		return "", err
	}

	user, err := s.Users.GetByCpf(ctx, order.Cpf)
	if err != nil {
		return "", err
	}
	if order.SalesProviderUserID != user.SalesProviderUserID {
		return "", &entity.ValidationError{
			Field:  "salesProviderUserId",
			Reason: "does not match the sales provider user id registered for the user",
		}
	}
	if user.FcmRegID == "" {
		return "", &ErrNoPushToken{Cpf: user.Cpf}
	}

	text := orderNotification(user, order)
	msgID, err := s.Sender.Send(ctx, user.FcmRegID, map[string]string{payloadKey: text})
	if err != nil {
		return "", &TransportError{Cause: err}
	}

	s.Logger.WithFields(logrus.Fields{"cpf": user.Cpf, "order_id": order.OrderID, "message_id": msgID}).Info("order notification sent")
	return "notification successfully sent to user with cpf: " + user.Cpf, nil
}

func priceUpdateNotification(u *entity.User, poi *entity.ProductOfInterest, ev *entity.PriceUpdate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello user: %s\n", u.Email)
	fmt.Fprintf(&b, "CPF: %s\n", u.Cpf)
	fmt.Fprintf(&b, "Your product of interest with salesProviderProductId: %d has an update:\n", poi.SalesProviderProductID)
	fmt.Fprintf(&b, "New product price: %.2f\n", ev.NewProductPrice)
	fmt.Fprintf(&b, "Minimum price alert: %.2f", poi.MinPriceAlert)
	return b.String()
}

func orderNotification(u *entity.User, order *entity.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello user: %s\n", u.Email)
	fmt.Fprintf(&b, "CPF: %s\n", u.Cpf)
	fmt.Fprintf(&b, "Sales provider user id: %d\n", u.SalesProviderUserID)
	fmt.Fprintf(&b, "Your order %d has an update:\n", order.OrderID)
	fmt.Fprintf(&b, "%s\n", order.Notification)
	fmt.Fprintf(&b, "New order status: %s", order.NewOrderStatus)
	return b.String()
}
