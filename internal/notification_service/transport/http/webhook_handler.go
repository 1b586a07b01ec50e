package http

import (
	"encoding/xml"
	"log/slog"
	"mime"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ordernotify/golang_services/internal/notification_service/app"
)

// twimlResponse is the messaging-gateway reply document.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// WebhookHandler answers inbound SMS. It always responds 200 with a reply text.
type WebhookHandler struct {
	inbound       *app.InboundReplyService
	internalError string
	logger        *slog.Logger
}

func NewWebhookHandler(inbound *app.InboundReplyService, internalErrorReply string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{inbound: inbound, internalError: internalErrorReply, logger: logger.With("handler", "inbound_webhook")}
}

func (h *WebhookHandler) HandleInboundMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chimiddleware.GetReqID(ctx))

	defer func() {
		if rec := recover(); rec != nil {
			logger.ErrorContext(ctx, "Panic while handling inbound message", "panic", rec)
			writeTwiML(w, h.internalError)
		}
	}()

	from, body, err := readInbound(r)
	if err != nil {
		// Unreadable bodies are answered like empty ones.
		logger.WarnContext(ctx, "Failed to parse inbound message", "error", err)
	}

	_, reply := h.inbound.Handle(ctx, from, body)
	writeTwiML(w, reply)
}

func readInbound(r *http.Request) (from, body string, err error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req InboundMessageRequest
		if err := decodeJSON(r, &req); err != nil {
			return "", "", err
		}
		return req.From, req.Body, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", "", err
	}
	return r.PostFormValue("From"), r.PostFormValue("Body"), nil
}

func writeTwiML(w http.ResponseWriter, message string) {
	out, err := xml.Marshal(twimlResponse{Message: message})
	if err != nil {
		out = []byte("<Response></Response>")
	}
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}
