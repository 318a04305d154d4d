package utils

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	internal_errors "github.com/itchan-dev/textboard/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValidate(t *testing.T) {
	type TestStruct struct {
		Field1 string `json:"field1" validate:"required"`
		Field2 int    `json:"field2"`
	}

	tests := []struct {
		name        string
		requestBody string
		expectedErr *internal_errors.ErrorWithStatusCode
	}{
		{
			name:        "valid",
			requestBody: `{"field1": "value", "field2": 123}`,
		},
		{
			name:        "invalid json",
			requestBody: `{"field1": "value", "field2": 123`,
			expectedErr: &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400},
		},
		{
			name:        "missing required field",
			requestBody: `{"field2": 123}`,
			expectedErr: &internal_errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: 400},
		},
		{
			name:        "empty body",
			requestBody: "",
			expectedErr: &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", bytes.NewReader([]byte(tt.requestBody)))

			err := DecodeValidate(req.Body, &TestStruct{})

			if tt.expectedErr == nil {
				assert.NoError(t, err)
				return
			}
			var e *internal_errors.ErrorWithStatusCode
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tt.expectedErr.Message, e.Message)
			assert.Equal(t, tt.expectedErr.StatusCode, e.StatusCode)
		})
	}
}

func TestWriteErrorAndStatusCode(t *testing.T) {
	t.Run("wrapped status error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		err := fmt.Errorf("ctx: %w", &internal_errors.ErrorWithStatusCode{Message: "Thread not found", StatusCode: 404})
		WriteErrorAndStatusCode(rr, err)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "Thread not found")
	})

	t.Run("plain error hides details", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteErrorAndStatusCode(rr, errors.New("secret dsn"))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "secret")
	})
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 503, StatusCode(&internal_errors.ErrorWithStatusCode{StatusCode: 503}))
	assert.Equal(t, 500, StatusCode(errors.New("x")))
}

func TestGetIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
		wantErr bool
	}{
		{name: "x-real-ip", headers: map[string]string{"X-Real-IP": "10.0.0.1"}, remote: "1.1.1.1:1", want: "10.0.0.1"},
		{name: "x-forwarded-for", headers: map[string]string{"X-Forwarded-For": "bad, 10.0.0.2"}, remote: "1.1.1.1:1", want: "10.0.0.2"},
		{name: "remote addr", remote: "192.168.1.5:4040", want: "192.168.1.5"},
		{name: "garbage", remote: "nonsense", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			got, err := GetIP(req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSON(rr, http.StatusCreated, map[string]string{"id": "tech_1"})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"tech_1"}`, rr.Body.String())
}
