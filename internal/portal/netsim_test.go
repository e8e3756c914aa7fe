package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

func newNetsimFixture(t *testing.T, status string) (*NetworkSimulator, func()) {
	t.Helper()

	var mu sync.Mutex
	current := status

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/client/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ClientLoginResult{
			Token:  "client-jwt",
			Record: &models.ClientRecord{IDLuid: "cliente001"},
		})
	})
	mux.HandleFunc("/api/v1/portal/network-monitoring", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"status": current})
	})

	srv := httptest.NewServer(mux)

	store, err := NewSessionStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}

	backend := NewBackend(srv.URL)
	auth := NewClientAuth(backend, store, nil)
	if err := auth.Login(context.Background(), "cliente001", "senha123", false); err != nil {
		t.Fatalf("login: %v", err)
	}

	sim := NewNetworkSimulator(backend, auth, 10*time.Millisecond)
	sim.Start()

	return sim, func() {
		sim.Stop()
		srv.Close()
	}
}

func waitForEnabled(t *testing.T, sim *NetworkSimulator, want bool) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if sim.Enabled() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("simulator Enabled() never became %v", want)
}

func TestSampleWithinExpectedBand(t *testing.T) {
	sim, cleanup := newNetsimFixture(t, "on")
	defer cleanup()

	waitForEnabled(t, sim, true)

	for i := 0; i < 20; i++ {
		sample := sim.Sample()
		if sample.Download < 0 || sample.Download > 140 {
			t.Errorf("download %v outside expected band", sample.Download)
		}
		if sample.Upload < 0 || sample.Upload > 60 {
			t.Errorf("upload %v outside expected band", sample.Upload)
		}
		if sample.Timestamp.IsZero() {
			t.Error("sample missing timestamp")
		}
	}
}

func TestDisabledSimulatorReturnsZeroSample(t *testing.T) {
	sim, cleanup := newNetsimFixture(t, "off")
	defer cleanup()

	waitForEnabled(t, sim, false)

	sample := sim.Sample()
	if sample.Download != 0 || sample.Upload != 0 {
		t.Errorf("expected zero sample when disabled, got %+v", sample)
	}
	if series := sim.Series(5, time.Second); series != nil {
		t.Errorf("expected nil series when disabled, got %d samples", len(series))
	}
}

func TestSeriesLengthAndOrdering(t *testing.T) {
	sim, cleanup := newNetsimFixture(t, "on")
	defer cleanup()

	waitForEnabled(t, sim, true)

	series := sim.Series(10, time.Second)
	if len(series) != 10 {
		t.Fatalf("expected 10 samples, got %d", len(series))
	}
	for i := 1; i < len(series); i++ {
		if !series[i].Timestamp.After(series[i-1].Timestamp) {
			t.Errorf("series not in chronological order at index %d", i)
		}
	}
}
