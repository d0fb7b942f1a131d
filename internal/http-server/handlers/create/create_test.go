package create

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tahiry-dev-29/NestFlow/internal/http-server/response"
	"github.com/tahiry-dev-29/NestFlow/internal/models"
)

type serviceMock struct {
	mock.Mock
}

func (m *serviceMock) Create(ctx context.Context, req models.DummySubscription) (*models.Subscription, error) {
	args := m.Called(ctx, req)
	if sub, ok := args.Get(0).(*models.Subscription); ok {
		return sub, args.Error(1)
	}
	return nil, args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateHandler(t *testing.T) {
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       string
		mockSub    *models.Subscription
		mockErr    error
		wantCode   int
		wantStatus string
		wantError  string
	}{
		{
			name: "success",
			body: `{"fullname":"Hery Rakoto","email":"hery@example.com","code":"secret","subscription_type":"BASIC"}`,
			mockSub: &models.Subscription{
				ID:               "abc",
				Fullname:         "Hery Rakoto",
				SubscriptionType: models.TypeBasic,
				StartDate:        now,
				EndDate:          now.AddDate(0, 1, 0),
				Status:           models.StatusActive,
				Price:            30000,
			},
			wantCode:   http.StatusCreated,
			wantStatus: response.StatusOK,
		},
		{
			name:       "malformed json",
			body:       `{"fullname":`,
			wantCode:   http.StatusBadRequest,
			wantStatus: response.StatusError,
			wantError:  "failed to decode request",
		},
		{
			name:       "missing required fields",
			body:       `{"email":"hery@example.com"}`,
			wantCode:   http.StatusBadRequest,
			wantStatus: response.StatusError,
		},
		{
			name:       "invalid email",
			body:       `{"fullname":"Hery","email":"not-an-email","code":"secret","subscription_type":"BASIC"}`,
			wantCode:   http.StatusBadRequest,
			wantStatus: response.StatusError,
			wantError:  "field Email must be a valid email",
		},
		{
			name:       "invalid time unit",
			body:       `{"fullname":"Hery","email":"hery@example.com","code":"secret","subscription_type":"BASIC","duration":2,"time_unit":"FORTNIGHTS"}`,
			mockErr:    models.ErrInvalidTimeUnit,
			wantCode:   http.StatusBadRequest,
			wantStatus: response.StatusError,
			wantError:  "invalid time unit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(serviceMock)
			if tt.mockSub != nil || tt.mockErr != nil {
				service.On("Create", mock.Anything, mock.AnythingOfType("models.DummySubscription")).
					Return(tt.mockSub, tt.mockErr)
			}

			handler := New(discardLogger(), service)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			var resp response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			if tt.wantError != "" {
				assert.Contains(t, resp.Error, tt.wantError)
			}
		})
	}
}

func TestCreateHandler_ResponseCarriesSubscription(t *testing.T) {
	service := new(serviceMock)
	service.On("Create", mock.Anything, mock.Anything).Return(&models.Subscription{
		ID:    "abc",
		Price: 30000,
	}, nil)

	handler := New(discardLogger(), service)
	body := `{"fullname":"Hery","email":"hery@example.com","code":"secret","subscription_type":"BASIC"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Subscription models.Subscription `json:"subscription"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "abc", resp.Data.Subscription.ID)
	assert.InDelta(t, 30000, resp.Data.Subscription.Price, 0.001)
}
