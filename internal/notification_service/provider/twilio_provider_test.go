package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTwilioSMSProvider_GetName(t *testing.T) {
	p := NewTwilioSMSProvider(discardLogger(), "https://api.twilio.com", "AC1", "tok", "+16175550000", nil)
	assert.Equal(t, "twilio", p.GetName())
}

func TestTwilioSMSProvider_Send_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "+14445556666", r.PostForm.Get("To"))
		assert.Equal(t, "+16175550000", r.PostForm.Get("From"))
		assert.Equal(t, "Hello Alice", r.PostForm.Get("Body"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"sid":"SM0001","status":"queued","to":"+14445556666"}`)
	}))
	defer server.Close()

	p := NewTwilioSMSProvider(discardLogger(), server.URL+"/", "AC123", "secret", "+16175550000", server.Client())
	resp, err := p.Send(context.Background(), SendRequestDetails{InternalMessageID: "n-1", Recipient: "+14445556666", Content: "Hello Alice"})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.IsSuccess)
	assert.Equal(t, "SM0001", resp.ProviderMessageID)
	assert.Equal(t, "QUEUED", resp.ProviderStatus)
}

func TestTwilioSMSProvider_Send_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code":21211,"message":"The 'To' number is not a valid phone number.","status":400}`)
	}))
	defer server.Close()

	p := NewTwilioSMSProvider(discardLogger(), server.URL, "AC123", "secret", "+16175550000", server.Client())
	resp, err := p.Send(context.Background(), SendRequestDetails{Recipient: "+10000000000", Content: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "code 21211")
	require.NotNil(t, resp)
	assert.False(t, resp.IsSuccess)
	assert.Equal(t, "FAILED_TWILIO_400", resp.ProviderStatus)
}

func TestTwilioSMSProvider_Send_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	p := NewTwilioSMSProvider(discardLogger(), url, "AC123", "secret", "+16175550000", nil)
	resp, err := p.Send(context.Background(), SendRequestDetails{Recipient: "+14445556666", Content: "x"})
	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestTwilioSMSProvider_List_FollowsPages(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("Page") {
		case "":
			assert.Equal(t, "2025-11-01", r.URL.Query().Get("DateSent>"))
			assert.Equal(t, "2025-11-18", r.URL.Query().Get("DateSent<"))
			json.NewEncoder(w).Encode(map[string]any{
				"messages":      []map[string]any{{"sid": "SM1", "to": "+14445556666", "status": "delivered", "date_sent": "Tue, 18 Nov 2025 15:00:00 +0000"}},
				"next_page_uri": "/2010-04-01/Accounts/AC123/Messages.json?Page=1&PageSize=1000",
			})
		default:
			json.NewEncoder(w).Encode(map[string]any{
				"messages":      []map[string]any{{"sid": "SM2", "to": "+14445557777", "status": "failed", "error_code": 30003}},
				"next_page_uri": nil,
			})
		}
	}))
	defer server.Close()

	p := NewTwilioSMSProvider(discardLogger(), server.URL, "AC123", "secret", "+16175550000", server.Client())
	after := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2025, 11, 18, 0, 0, 0, 0, time.UTC)

	logs, err := p.List(context.Background(), after, before)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "SM1", logs[0].SID)
	assert.Equal(t, "Tue, 18 Nov 2025 15:00:00 +0000", logs[0].DateSent)
	require.NotNil(t, logs[1].ErrorCode)
	assert.Equal(t, 30003, *logs[1].ErrorCode)
}

func TestTwilioSMSProvider_List_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"code":20003,"message":"Authenticate","status":401}`)
	}))
	defer server.Close()

	p := NewTwilioSMSProvider(discardLogger(), server.URL, "AC123", "wrong", "+16175550000", server.Client())
	_, err := p.List(context.Background(), time.Time{}, time.Time{})
	assert.ErrorContains(t, err, "status 401")
}
