package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/drivewise/vehicle-health/internal/logger"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	collectionsTotal  map[string]int64
	collectionErrors  map[string]int64
	anomaliesTotal    map[string]int64
	evaluationsTotal  map[string]map[string]int64 // vehicle -> source -> count
	predictionErrors  map[string]int64

	// Gauges
	vehicleHealthScore  map[string]float64
	vehicleHealthStatus map[string]int // 0=NORMAL .. 3=CRITICAL
	vehicleFieldCount   map[string]int
	circuitBreakerState map[string]int // 0=closed, 1=open, 2=half-open

	// Histograms (simplified - just track last values)
	collectionLatency map[string]time.Duration
	inferenceLatency  map[string]time.Duration
}

var (
	instance *Metrics
	once     sync.Once
)

func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			collectionsTotal:    make(map[string]int64),
			collectionErrors:    make(map[string]int64),
			anomaliesTotal:      make(map[string]int64),
			evaluationsTotal:    make(map[string]map[string]int64),
			predictionErrors:    make(map[string]int64),
			vehicleHealthScore:  make(map[string]float64),
			vehicleHealthStatus: make(map[string]int),
			vehicleFieldCount:   make(map[string]int),
			circuitBreakerState: make(map[string]int),
			collectionLatency:   make(map[string]time.Duration),
			inferenceLatency:    make(map[string]time.Duration),
		}
	})
	return instance
}

func (m *Metrics) IncCollections(vehicleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collectionsTotal[vehicleID]++
}

func (m *Metrics) IncCollectionErrors(vehicleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collectionErrors[vehicleID]++
}

func (m *Metrics) AddAnomalies(vehicleID string, n int) {
	if n == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anomaliesTotal[vehicleID] += int64(n)
}

func (m *Metrics) IncEvaluation(vehicleID, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.evaluationsTotal[vehicleID] == nil {
		m.evaluationsTotal[vehicleID] = make(map[string]int64)
	}
	m.evaluationsTotal[vehicleID][source]++
}

func (m *Metrics) IncPredictionErrors(vehicleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictionErrors[vehicleID]++
}

func (m *Metrics) SetHealthScore(vehicleID string, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicleHealthScore[vehicleID] = score
}

func (m *Metrics) SetHealthStatus(vehicleID string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicleHealthStatus[vehicleID] = status
}

func (m *Metrics) SetFieldCount(vehicleID string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicleFieldCount[vehicleID] = count
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.circuitBreakerState[name] = state
}

func (m *Metrics) SetCollectionLatency(vehicleID string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collectionLatency[vehicleID] = d
}

func (m *Metrics) SetInferenceLatency(vehicleID string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inferenceLatency[vehicleID] = d
}

func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		for vehicle, count := range m.collectionsTotal {
			writeMetric(w, "vehiclehealth_collections_total", map[string]string{"vehicle_id": vehicle}, float64(count))
		}

		for vehicle, count := range m.collectionErrors {
			writeMetric(w, "vehiclehealth_collection_errors_total", map[string]string{"vehicle_id": vehicle}, float64(count))
		}

		for vehicle, count := range m.anomaliesTotal {
			writeMetric(w, "vehiclehealth_field_anomalies_total", map[string]string{"vehicle_id": vehicle}, float64(count))
		}

		for vehicle, sources := range m.evaluationsTotal {
			for source, count := range sources {
				writeMetric(w, "vehiclehealth_evaluations_total", map[string]string{"vehicle_id": vehicle, "source": source}, float64(count))
			}
		}

		for vehicle, count := range m.predictionErrors {
			writeMetric(w, "vehiclehealth_prediction_errors_total", map[string]string{"vehicle_id": vehicle}, float64(count))
		}

		for vehicle, score := range m.vehicleHealthScore {
			writeMetric(w, "vehiclehealth_score", map[string]string{"vehicle_id": vehicle}, score)
		}

		for vehicle, status := range m.vehicleHealthStatus {
			writeMetric(w, "vehiclehealth_status", map[string]string{"vehicle_id": vehicle}, float64(status))
		}

		for vehicle, count := range m.vehicleFieldCount {
			writeMetric(w, "vehiclehealth_reading_fields", map[string]string{"vehicle_id": vehicle}, float64(count))
		}

		for name, state := range m.circuitBreakerState {
			writeMetric(w, "vehiclehealth_circuit_breaker_state", map[string]string{"name": name}, float64(state))
		}

		for vehicle, latency := range m.collectionLatency {
			writeMetric(w, "vehiclehealth_collection_latency_ms", map[string]string{"vehicle_id": vehicle}, float64(latency.Milliseconds()))
		}

		for vehicle, latency := range m.inferenceLatency {
			writeMetric(w, "vehiclehealth_inference_latency_ms", map[string]string{"vehicle_id": vehicle}, float64(latency.Milliseconds()))
		}
	})
}

func writeMetric(w http.ResponseWriter, name string, labels map[string]string, value float64) {
	labelStr := ""
	if len(labels) > 0 {
		labelStr = "{"
		first := true
		for k, v := range labels {
			if !first {
				labelStr += ","
			}
			labelStr += k + `="` + v + `"`
			first = false
		}
		labelStr += "}"
	}
	w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(value, 'f', -1, 64) + "\n"))
}

func StartServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Get().Handler())

	addr := ":" + strconv.Itoa(port)
	logger.Infof("Prometheus metrics server listening on %s", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Errorf("Prometheus server error: %v", err)
		}
	}()
}
