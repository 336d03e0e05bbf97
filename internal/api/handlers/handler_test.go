package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rohits-web03/stashbox/internal/api/services"
	"github.com/rohits-web03/stashbox/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind   error
		status int
	}{
		{services.ErrUnauthenticated, http.StatusUnauthorized},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrInvalidInput, http.StatusBadRequest},
		{services.ErrAlreadyExists, http.StatusBadRequest},
		{services.ErrQuotaExceeded, http.StatusBadRequest},
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrStorageFailure, http.StatusInternalServerError},
		{services.ErrInconsistency, http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.Error(), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &services.Error{Kind: tt.kind, Message: "m"})
			assert.Equal(t, tt.status, statusFor(err))
		})
	}
}

func TestWriteError_HidesInternalCause(t *testing.T) {
	h := New(Deps{Logger: zap.NewNop()})
	rec := httptest.NewRecorder()
	h.writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var p utils.Payload
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.False(t, p.Success)
	assert.Equal(t, "Internal server error", p.Message)
}

func TestUploadFile_RejectsOversizedContentLength(t *testing.T) {
	h := New(Deps{Logger: zap.NewNop(), MaxUploadBytes: 10})
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 100)))
	rec := httptest.NewRecorder()

	h.UploadFile(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Storage full")
}

func TestReadCredentials(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=alice&password=pw"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	in, ok := readCredentials(httptest.NewRecorder(), req)
	require.True(t, ok)
	assert.Equal(t, credentialsInput{Username: "alice", Password: "pw"}, in)

	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"bob","password":"x"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	in, ok = readCredentials(httptest.NewRecorder(), req)
	require.True(t, ok)
	assert.Equal(t, "bob", in.Username)

	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":`))
	req.Header.Set("Content-Type", "application/json")
	_, ok = readCredentials(httptest.NewRecorder(), req)
	assert.False(t, ok)
}
