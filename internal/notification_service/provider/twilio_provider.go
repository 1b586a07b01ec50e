package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	twilioDateLayout = "2006-01-02"
	twilioMaxPages   = 50
)

// TwilioSMSProvider talks to the Twilio Messages REST resource.
type TwilioSMSProvider struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
}

func NewTwilioSMSProvider(logger *slog.Logger, baseURL, accountSID, authToken, fromNumber string, httpClient *http.Client) *TwilioSMSProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &TwilioSMSProvider{
		logger:     logger.With("provider", "twilio"),
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
	}
}

type twilioMessage struct {
	SID          string `json:"sid"`
	From         string `json:"from"`
	To           string `json:"to"`
	Body         string `json:"body"`
	Status       string `json:"status"`
	Direction    string `json:"direction"`
	DateSent     string `json:"date_sent"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type twilioListResponse struct {
	Messages    []twilioMessage `json:"messages"`
	NextPageURI string          `json:"next_page_uri"`
}

type twilioErrorResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func (p *TwilioSMSProvider) messagesURL() string {
	return fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", p.baseURL, url.PathEscape(p.accountSID))
}

func (p *TwilioSMSProvider) Send(ctx context.Context, details SendRequestDetails) (*SendResponseDetails, error) {
	timer := prometheus.NewTimer(smsProviderRequestDurationHist.WithLabelValues(p.GetName(), "send"))
	defer timer.ObserveDuration()

	form := url.Values{}
	form.Set("To", details.Recipient)
	form.Set("From", p.fromNumber)
	form.Set("Body", details.Content)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.messagesURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request for Twilio: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(p.accountSID, p.authToken)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		smsProviderSendsTotal.WithLabelValues(p.GetName(), "failure").Inc()
		p.logger.ErrorContext(ctx, "Failed to send request to Twilio", "error", err, "internal_message_id", details.InternalMessageID)
		return nil, fmt.Errorf("failed to send request to Twilio: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		smsProviderSendsTotal.WithLabelValues(p.GetName(), "failure").Inc()
		return nil, fmt.Errorf("reading Twilio response (status %d): %w", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		smsProviderSendsTotal.WithLabelValues(p.GetName(), "failure").Inc()
		errMsg := p.errorMessage(httpResp.StatusCode, body)
		p.logger.WarnContext(ctx, "Twilio send failed", "status_code", httpResp.StatusCode, "error_message", errMsg, "internal_message_id", details.InternalMessageID)
		return &SendResponseDetails{
			IsSuccess:      false,
			ProviderStatus: fmt.Sprintf("FAILED_TWILIO_%d", httpResp.StatusCode),
			ErrorMessage:   errMsg,
		}, fmt.Errorf("%s", errMsg)
	}

	var msg twilioMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		p.logger.WarnContext(ctx, "Sent via Twilio, but failed to parse response body", "status_code", httpResp.StatusCode, "error", err)
	}
	smsProviderSendsTotal.WithLabelValues(p.GetName(), "success").Inc()
	p.logger.InfoContext(ctx, "Successfully sent SMS via Twilio", "provider_message_id", msg.SID, "status", msg.Status, "internal_message_id", details.InternalMessageID)
	return &SendResponseDetails{
		ProviderMessageID: msg.SID,
		IsSuccess:         true,
		ProviderStatus:    strings.ToUpper(msg.Status),
	}, nil
}

func (p *TwilioSMSProvider) errorMessage(status int, body []byte) string {
	var apiErr twilioErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Sprintf("Twilio API error: status %d, code %d, message: %s", status, apiErr.Code, apiErr.Message)
	}
	if len(body) > 0 && len(body) < 200 {
		return fmt.Sprintf("Twilio API error: status %d, raw_body: %s", status, string(body))
	}
	return fmt.Sprintf("Twilio API error: status %d", status)
}

func (p *TwilioSMSProvider) List(ctx context.Context, after, before time.Time) ([]MessageLog, error) {
	timer := prometheus.NewTimer(smsProviderRequestDurationHist.WithLabelValues(p.GetName(), "list"))
	defer timer.ObserveDuration()

	q := url.Values{}
	if !after.IsZero() {
		q.Set("DateSent>", after.UTC().Format(twilioDateLayout))
	}
	if !before.IsZero() {
		q.Set("DateSent<", before.UTC().Format(twilioDateLayout))
	}
	q.Set("PageSize", "1000")
	next := p.messagesURL() + "?" + q.Encode()

	var logs []MessageLog
	for page := 0; next != "" && page < twilioMaxPages; page++ {
		resp, err := p.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		for _, m := range resp.Messages {
			logs = append(logs, MessageLog{
				SID: m.SID, From: m.From, To: m.To, Body: m.Body, Status: m.Status,
				Direction: m.Direction, DateSent: m.DateSent, ErrorCode: m.ErrorCode, ErrorMessage: m.ErrorMessage,
			})
		}
		next = ""
		if resp.NextPageURI != "" {
			next = p.baseURL + resp.NextPageURI
		}
	}
	p.logger.DebugContext(ctx, "Listed Twilio messages", "count", len(logs))
	return logs, nil
}

func (p *TwilioSMSProvider) fetchPage(ctx context.Context, pageURL string) (*twilioListResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request for Twilio: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(p.accountSID, p.authToken)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to list Twilio messages: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading Twilio response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s", p.errorMessage(httpResp.StatusCode, body))
	}
	var out twilioListResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding Twilio message list: %w", err)
	}
	return &out, nil
}

func (p *TwilioSMSProvider) GetName() string {
	return "twilio"
}
