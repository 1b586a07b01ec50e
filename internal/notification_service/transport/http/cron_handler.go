package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ordernotify/golang_services/internal/notification_service/app"
	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

// CronHandler runs the expiration sweep for the trusted scheduler.
type CronHandler struct {
	sweeper *app.ExpirationSweeper
	logger  *slog.Logger
}

func NewCronHandler(sweeper *app.ExpirationSweeper, logger *slog.Logger) *CronHandler {
	return &CronHandler{sweeper: sweeper, logger: logger.With("handler", "cron")}
}

func (h *CronHandler) CheckExpiredOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chimiddleware.GetReqID(ctx))

	result, err := h.sweeper.Sweep(ctx)
	switch {
	case errors.Is(err, domain.ErrSweepInProgress):
		writeMessage(w, http.StatusConflict, "Expiration sweep already in progress")
		return
	case errors.Is(err, domain.ErrReportFailed):
		logger.ErrorContext(ctx, "Expiration report failed; transitions kept", "error", err, "expired", len(result.Expired))
		writeMessage(w, http.StatusInternalServerError, "There was an error sending the message")
		return
	case err != nil:
		writeError(w, r, logger, err)
		return
	}

	if len(result.Expired) == 0 {
		writeJSON(w, http.StatusOK, SweepResponse{Message: "No expired orders found"})
		return
	}
	writeJSON(w, http.StatusOK, SweepResponse{
		Message:       fmt.Sprintf("Processed %d expired orders", len(result.Expired)),
		ExpiredOrders: result.Expired,
	})
}
