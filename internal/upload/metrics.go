package upload

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records upload activity. A nil *Metrics records nothing.
type Metrics struct {
	items         *prometheus.CounterVec
	chunks        *prometheus.CounterVec
	batches       *prometheus.CounterVec
	chunkDuration prometheus.Histogram
	bytes         prometheus.Counter
}

// NewMetrics registers the upload collectors on reg. Collectors already
// registered under the same names are reused.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "items_total",
			Help:      "Upload items by result",
		}, []string{"result"}),
		chunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "chunks_total",
			Help:      "Upload chunks by result",
		}, []string{"result"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "batches_total",
			Help:      "Upload batches by terminal state",
		}, []string{"state"}),
		chunkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "chunk_duration_seconds",
			Help:      "Time spent sending one chunk",
			Buckets:   prometheus.DefBuckets,
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "bytes_total",
			Help:      "Bytes of successfully uploaded files",
		}),
	}

	var err error
	if m.items, err = register(reg, m.items); err != nil {
		return nil, err
	}
	if m.chunks, err = register(reg, m.chunks); err != nil {
		return nil, err
	}
	if m.batches, err = register(reg, m.batches); err != nil {
		return nil, err
	}
	if m.chunkDuration, err = register(reg, m.chunkDuration); err != nil {
		return nil, err
	}
	if m.bytes, err = register(reg, m.bytes); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	if err := reg.Register(collector); err != nil {
		var exists prometheus.AlreadyRegisteredError
		if errors.As(err, &exists) {
			if existing, ok := exists.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return collector, err
	}
	return collector, nil
}

func (m *Metrics) itemsUploaded(n int, bytes int64) {
	if m == nil || n == 0 {
		return
	}
	m.items.WithLabelValues("uploaded").Add(float64(n))
	m.bytes.Add(float64(bytes))
}

func (m *Metrics) itemsFailed(n int) {
	if m == nil || n == 0 {
		return
	}
	m.items.WithLabelValues("failed").Add(float64(n))
}

func (m *Metrics) chunk(ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.chunks.WithLabelValues(result).Inc()
	m.chunkDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) batch(state State) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(string(state)).Inc()
}
