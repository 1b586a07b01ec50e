package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ordernotify/golang_services/internal/notification_service/app"
)

// NotificationHandler serves the API-key protected routes.
type NotificationHandler struct {
	validator  *app.BatchValidator
	dispatcher *app.OrderReadyDispatcher
	reminders  *app.ReminderManager
	receipts   *app.ReceiptSender
	logs       *app.MessageLogService
	logger     *slog.Logger
}

func NewNotificationHandler(
	validator *app.BatchValidator,
	dispatcher *app.OrderReadyDispatcher,
	reminders *app.ReminderManager,
	receipts *app.ReceiptSender,
	logs *app.MessageLogService,
	logger *slog.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		validator:  validator,
		dispatcher: dispatcher,
		reminders:  reminders,
		receipts:   receipts,
		logs:       logs,
		logger:     logger.With("handler", "notification"),
	}
}

func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sms", h.SendOrderReady)
	r.Post("/reminders", h.CreateReminders)
	r.Delete("/reminders/{orderNumber}", h.DeleteReminder)
	r.Post("/logs", h.ListMessageLogs)
	r.Post("/receipt", h.SendReceipt)
}

func (h *NotificationHandler) SendOrderReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chimiddleware.GetReqID(ctx))

	var req OrderReadyRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "Failed to decode /sms body", "error", err)
		writeMessage(w, http.StatusBadRequest, "Invalid request: customers array is required")
		return
	}
	if err := h.validator.ValidateOrderReady(req.Customers); err != nil {
		logger.WarnContext(ctx, "Rejected /sms batch", "error", err)
		writeError(w, r, logger, err)
		return
	}

	summary, err := h.dispatcher.Dispatch(ctx, req.Customers)
	if err != nil {
		writeError(w, r, logger, err)
		return
	}

	writeJSON(w, http.StatusOK, OrderReadyResponse{
		Message: OrderReadySummary{
			TotalMessagesSent:      summary.Sent,
			TotalMessagesSkipped:   len(summary.Skipped),
			SkippedMessagesDetails: nonNil(summary.Skipped),
			TotalMessagesFailed:    len(summary.Failed),
			FailedMessagesDetails:  nonNil(summary.Failed),
		},
		Success: summary.Success(),
	})
}

func (h *NotificationHandler) CreateReminders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chimiddleware.GetReqID(ctx))

	var req ReminderRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "Failed to decode /reminders body", "error", err)
		writeMessage(w, http.StatusBadRequest, "Invalid request: customers array is required")
		return
	}
	if err := h.validator.ValidateReminders(req.Customers); err != nil {
		logger.WarnContext(ctx, "Rejected /reminders batch", "error", err)
		writeError(w, r, logger, err)
		return
	}

	summary, err := h.reminders.Create(ctx, req.Customers)
	if err != nil {
		writeError(w, r, logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ReminderResponse{
		Message:               reminderMessage(len(req.Customers), summary.Sent),
		TotalMessagesSent:     summary.Sent,
		TotalMessagesFailed:   len(summary.Failed),
		FailedMessagesDetails: nonNil(summary.Failed),
		Success:               summary.Success(),
	})
}

func (h *NotificationHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderNumber := chi.URLParam(r, "orderNumber")
	logger := h.logger.With("request_id", chimiddleware.GetReqID(ctx), "order_number", orderNumber)

	var req DeleteReminderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request: customer phoneNumber is required")
		return
	}
	if err := h.validator.ValidatePhoneNumber(req.Customer.PhoneNumber); err != nil {
		writeError(w, r, logger, err)
		return
	}

	deleted, err := h.reminders.Delete(ctx, orderNumber, req.Customer.PhoneNumber)
	if err != nil {
		if isNotFound(err) {
			writeMessage(w, http.StatusNotFound, "No reminder found")
			return
		}
		writeError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteReminderResponse{Message: "Reminder Deleted Successfully", DeletedCount: deleted, Success: true})
}

func (h *NotificationHandler) ListMessageLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chimiddleware.GetReqID(ctx))

	var req MessageLogsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request: dateRange is required")
		return
	}
	logs, err := h.logs.List(ctx, req.DateRange)
	if err != nil {
		writeError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *NotificationHandler) SendReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chimiddleware.GetReqID(ctx))

	var req ReceiptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request: orderForm is required")
		return
	}
	sid, err := h.receipts.Send(ctx, req.OrderForm)
	if err != nil {
		writeError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ReceiptResponse{Message: "Message sent successfully", SID: sid, Success: true})
}

// reminderMessage reports what was actually delivered. A lone entry keeps the singular form.
func reminderMessage(requested, sent int) string {
	switch {
	case sent == 0 && requested == 1:
		return "Failed to send message"
	case sent == 0:
		return "Failed to send messages"
	case requested == 1:
		return "Message sent successfully"
	default:
		return fmt.Sprintf("%d Messages sent successfully", sent)
	}
}
