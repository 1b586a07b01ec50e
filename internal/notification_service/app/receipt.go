package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
	"github.com/ordernotify/golang_services/internal/notification_service/provider"
	"github.com/ordernotify/golang_services/internal/notification_service/templates"
)

var tenDigitPhone = regexp.MustCompile(`^\d{10}$`)

// ReceiptSender texts a copy of an order form to the customer. Receipts keep no state.
type ReceiptSender struct {
	sender  provider.SMSSenderProvider
	catalog *templates.Catalog
	logger  *slog.Logger
}

func NewReceiptSender(sender provider.SMSSenderProvider, catalog *templates.Catalog, logger *slog.Logger) *ReceiptSender {
	return &ReceiptSender{sender: sender, catalog: catalog, logger: logger.With("service", "receipt_sender")}
}

// Send expects orderForm to carry a 10-digit "phoneNumber" and a "customerName". It returns the
// transport's message id.
func (r *ReceiptSender) Send(ctx context.Context, orderForm map[string]any) (string, error) {
	if orderForm == nil {
		return "", domain.NewValidationError("Invalid request: orderForm is required")
	}
	phone, _ := orderForm["phoneNumber"].(string)
	if !tenDigitPhone.MatchString(phone) {
		return "", domain.NewValidationError("Invalid phone number. Must be 10 digits")
	}
	name, _ := orderForm["customerName"].(string)
	if name == "" {
		return "", domain.NewValidationError("Invalid request: customerName is required")
	}

	details, err := json.MarshalIndent(orderForm, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encoding order form: %w", err)
	}
	body, err := r.catalog.Receipt(templates.MessageData{Name: name, Details: string(details)})
	if err != nil {
		return "", err
	}

	recipient := "+1" + phone
	resp, err := r.sender.Send(ctx, provider.SendRequestDetails{
		InternalMessageID: uuid.NewString(),
		Recipient:         recipient,
		Content:           body,
	})
	if err = sendError(resp, err); err != nil {
		r.logger.ErrorContext(ctx, "Failed to send receipt", "error", err, "recipient", recipient)
		return "", domain.Downstream("send receipt", err)
	}
	r.logger.InfoContext(ctx, "Receipt sent", "recipient", recipient, "provider_message_id", resp.ProviderMessageID)
	return resp.ProviderMessageID, nil
}
