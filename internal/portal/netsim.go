package portal

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"
)

// SpeedSample одна точка графіка швидкості мережі, Mbps
type SpeedSample struct {
	Timestamp time.Time `json:"timestamp"`
	Download  float64   `json:"download"`
	Upload    float64   `json:"upload"`
}

// NetworkSimulator генерує симульований графік швидкості мережі для
// дешборда: синусоїда плюс шум. Жодних реальних вимірювань - чисто
// презентаційний ряд. Генерація вмикається прапорцем
// NetworkMonitoringStatus який опитується зі сховища.
type NetworkSimulator struct {
	enabled *Query[string]

	mu    sync.Mutex
	rng   *rand.Rand
	start time.Time
}

// NewNetworkSimulator створює симулятор з polling прапорця monitoring
func NewNetworkSimulator(backend *Backend, auth *ClientAuth, statusInterval time.Duration) *NetworkSimulator {
	s := &NetworkSimulator{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		start: time.Now(),
	}

	s.enabled = NewQuery("network_monitoring", statusInterval, func(ctx context.Context) (string, error) {
		token := auth.Token()
		if token == "" {
			return "", ErrNotAuthenticated
		}
		return backend.GetNetworkMonitoringStatus(ctx, token, false)
	})

	auth.BindCache(s.enabled)

	return s
}

// Start запускає polling прапорця monitoring
func (s *NetworkSimulator) Start() {
	s.enabled.Start()
}

// Stop зупиняє polling
func (s *NetworkSimulator) Stop() {
	s.enabled.Stop()
}

// Enabled чи ввімкнена симуляція графіка. До першого успішного
// poll вважається ввімкненою.
func (s *NetworkSimulator) Enabled() bool {
	status, loaded := s.enabled.Get()
	if !loaded {
		return true
	}
	return status == "on"
}

// Sample повертає наступну точку ряду. Коли симуляція вимкнена,
// повертає нульову точку.
func (s *NetworkSimulator) Sample() SpeedSample {
	now := time.Now()

	if !s.Enabled() {
		return SpeedSample{Timestamp: now}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := now.Sub(s.start).Seconds()

	// Базова синусоїда ~100 Mbps download, ~40 Mbps upload,
	// період 60 секунд, шум ±10%
	phase := 2 * math.Pi * elapsed / 60.0
	download := 100.0 + 20.0*math.Sin(phase) + s.noise(10.0)
	upload := 40.0 + 8.0*math.Sin(phase+math.Pi/3) + s.noise(4.0)

	return SpeedSample{
		Timestamp: now,
		Download:  clampNonNegative(download),
		Upload:    clampNonNegative(upload),
	}
}

// Series генерує n точок з кроком step назад у часі (для
// початкового заповнення графіка)
func (s *NetworkSimulator) Series(n int, step time.Duration) []SpeedSample {
	if !s.Enabled() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	samples := make([]SpeedSample, 0, n)

	for i := n - 1; i >= 0; i-- {
		ts := now.Add(-time.Duration(i) * step)
		elapsed := ts.Sub(s.start).Seconds()
		phase := 2 * math.Pi * elapsed / 60.0

		samples = append(samples, SpeedSample{
			Timestamp: ts,
			Download:  clampNonNegative(100.0 + 20.0*math.Sin(phase) + s.noise(10.0)),
			Upload:    clampNonNegative(40.0 + 8.0*math.Sin(phase+math.Pi/3) + s.noise(4.0)),
		})
	}

	return samples
}

func (s *NetworkSimulator) noise(amplitude float64) float64 {
	return (s.rng.Float64()*2 - 1) * amplitude
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
