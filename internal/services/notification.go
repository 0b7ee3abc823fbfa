package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aaravmahajanofficial/storefront-api/internal/models"
	repository "github.com/aaravmahajanofficial/storefront-api/internal/repositories"
	"github.com/aaravmahajanofficial/storefront-api/pkg/sendgrid"
)

type NotificationService interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
	SendOrderStatusUpdate(ctx context.Context, order *models.Order) error
}

type notificationService struct {
	users        repository.UserRepository
	emailService sendgrid.EmailService
}

func NewNotificationService(users repository.UserRepository, emailService sendgrid.EmailService) NotificationService {
	return &notificationService{users: users, emailService: emailService}
}

func (n *notificationService) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	var text, body strings.Builder

	fmt.Fprintf(&text, "Thank you for your order %s.\n\n", order.ID)
	body.WriteString("<p>Thank you for your order <strong>" + html.EscapeString(order.ID.String()) + "</strong>.</p><ul>")

	for _, item := range order.Items {
		fmt.Fprintf(&text, "- %d x %s @ %.2f\n", item.Quantity, item.ProductID, item.UnitPrice)
		fmt.Fprintf(&body, "<li>%d &times; %s @ %.2f</li>", item.Quantity, html.EscapeString(item.ProductID.String()), item.UnitPrice)
	}

	fmt.Fprintf(&text, "\nTotal: %.2f\nPayment: %s\n", order.TotalAmount, order.PaymentMethod)
	fmt.Fprintf(&body, "</ul><p>Total: <strong>%.2f</strong></p>", order.TotalAmount)

	return n.send(ctx, order, "Order confirmation #"+shortID(order), text.String(), body.String())
}

func (n *notificationService) SendOrderStatusUpdate(ctx context.Context, order *models.Order) error {
	text := fmt.Sprintf("Your order %s is now %s.", order.ID, order.Status)
	body := "<p>" + html.EscapeString(text) + "</p>"

	return n.send(ctx, order, "Order #"+shortID(order)+" update", text, body)
}

func (n *notificationService) send(ctx context.Context, order *models.Order, subject, text, body string) error {
	user, err := n.users.GetUserByID(ctx, order.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to load order recipient: %w", err)
	}

	msg := &models.EmailMessage{
		To:          user.Email,
		ToName:      user.Name,
		Subject:     subject,
		Content:     text,
		HTMLContent: body,
	}

	if err := n.emailService.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func shortID(order *models.Order) string {
	return order.ID.String()[:8]
}
