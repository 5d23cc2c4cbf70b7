package dto

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateQuoteRequest_Validate(t *testing.T) {
	tests := []struct {
		name       string
		req        CreateQuoteRequest
		wantFields map[string]string
	}{
		{
			name: "valid",
			req:  CreateQuoteRequest{Text: "Stay hungry.", Category: "Motivation"},
		},
		{
			name: "missing both",
			req:  CreateQuoteRequest{},
			wantFields: map[string]string{
				"text":     "this field is required",
				"category": "this field is required",
			},
		},
		{
			name:       "whitespace text",
			req:        CreateQuoteRequest{Text: "  \t", Category: "Life"},
			wantFields: map[string]string{"text": "must not be empty"},
		},
		{
			name:       "reserved category",
			req:        CreateQuoteRequest{Text: "Be kind.", Category: "All"},
			wantFields: map[string]string{"category": `must name a category other than "all"`},
		},
		{
			name:       "category too long",
			req:        CreateQuoteRequest{Text: "Be kind.", Category: strings.Repeat("c", 101)},
			wantFields: map[string]string{"category": "must be at most 100 characters"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.req)

			if tt.wantFields == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.wantFields, ValidationErrors(err))
		})
	}
}

func TestNotificationQuery_Validate(t *testing.T) {
	assert.NoError(t, Validate(&NotificationQuery{}))
	assert.NoError(t, Validate(&NotificationQuery{Limit: 100}))

	err := Validate(&NotificationQuery{Limit: 101})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"limit": "must be at most 100"}, ValidationErrors(err))
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "valid", body: `{"text":"Begin.","category":"Life"}`},
		{name: "malformed", body: `{"text":`, wantErr: ErrBinding},
		{name: "blank category", body: `{"text":"Begin.","category":" "}`, wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req CreateQuoteRequest
			err := BindAndValidate(c, &req)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, CreateQuoteRequest{Text: "Begin.", Category: "Life"}, req)
				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBindQueryAndValidate(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=5", nil)

	var q NotificationQuery
	require.NoError(t, BindQueryAndValidate(c, &q))
	assert.Equal(t, 5, q.Limit)

	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=many", nil)
	assert.ErrorIs(t, BindQueryAndValidate(c, &NotificationQuery{}), ErrBinding)
}

func TestHandleBindError(t *testing.T) {
	t.Run("field violations", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)

		HandleBindError(c, Validate(&CreateQuoteRequest{Text: "x"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, ErrorCodeValidation, resp.Error.Code)
		assert.Contains(t, resp.Error.Details, "category")
	})

	t.Run("decode failure", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
		c.Request.Header.Set(RequestIDHeader, "req-9")

		HandleBindError(c, ErrBinding)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, ErrorCodeBadRequest, resp.Error.Code)
		assert.Equal(t, "req-9", resp.TraceID)
	})
}

func TestValidationMessage_UnknownTag(t *testing.T) {
	type odd struct {
		Name string `json:"name" validate:"alpha"`
	}

	err := Validate(&odd{Name: "123"})
	require.Error(t, err)
	assert.Equal(t, "failed validation: alpha", ValidationErrors(err)["name"])
}
