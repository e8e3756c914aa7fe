package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"invalid credentials", http.StatusUnauthorized, ErrInvalidCredentials},
		{"duplicate", http.StatusConflict, ErrDuplicateID},
		{"forbidden", http.StatusForbidden, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			backend := NewBackend(server.URL)
			_, err := backend.GetClientRecord(context.Background(), "token", "cliente001")
			if err != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}

// Transient збій отримує рівно один silent retry без backoff
func TestSingleRetryOnTransientFailure(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(&models.ClientRecord{IDLuid: "cliente001"})
	}))
	defer server.Close()

	backend := NewBackend(server.URL)
	record, err := backend.GetClientRecord(context.Background(), "token", "cliente001")
	if err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if record.IDLuid != "cliente001" {
		t.Errorf("Expected cliente001, got %s", record.IDLuid)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("Expected exactly 2 calls, got %d", got)
	}
}

func TestTransientAfterRetryExhausted(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	backend := NewBackend(server.URL)
	_, err := backend.GetClientRecord(context.Background(), "token", "cliente001")
	if err != ErrTransient {
		t.Errorf("Expected ErrTransient, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("Expected exactly 2 calls (one retry), got %d", got)
	}
}

// Класифіковані помилки не ретраяться - повторювати їх немає сенсу
func TestClassifiedErrorsNotRetried(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	backend := NewBackend(server.URL)
	_, err := backend.CreateClientRecord(context.Background(), "token", &ClientRecordInput{IDLuid: "dup"})
	if err != ErrDuplicateID {
		t.Errorf("Expected ErrDuplicateID, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected exactly 1 call, got %d", got)
	}
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]*models.ClientRecord{})
	}))
	defer server.Close()

	backend := NewBackend(server.URL)
	if _, err := backend.GetAllClientRecords(context.Background(), "staff-token"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotAuth != "Bearer staff-token" {
		t.Errorf("Expected bearer token header, got %q", gotAuth)
	}
}

// Retry після transient збою що отримав класифіковану відповідь
// повертає її, а не маскує під ErrTransient
func TestRetryReturnsClassifiedError(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	backend := NewBackend(server.URL)
	_, err := backend.GetClientRecord(context.Background(), "token", "cliente001")
	if err != ErrNotFound {
		t.Errorf("Expected ErrNotFound from the retry, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("Expected exactly 2 calls, got %d", got)
	}
}
