package registry

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/i18nmail/internal/domain/repository"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	storeOpsTotal   *prometheus.CounterVec
	storeOpDuration *prometheus.HistogramVec
)

// RegisterMetrics registra los collectors del registry. Es idempotente.
func RegisterMetrics(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	metricsOnce.Do(func() {
		storeOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_operations_total",
			Help: "Operaciones sobre el registry por driver, operación y resultado",
		}, []string{"driver", "op", "result"}) // result: ok|not_found|error

		storeOpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registry_operation_duration_seconds",
			Help:    "Latencia de las operaciones sobre el registry",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"driver", "op"})

		for _, c := range []prometheus.Collector{storeOpsTotal, storeOpDuration} {
			if err := reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
					continue
				}
				metricsErr = err
				return
			}
		}
	})
	return metricsErr
}

// InstrumentedStore mide latencia y resultado de cada operación del store.
// Si RegisterMetrics no se llamó, solo delega.
type InstrumentedStore struct {
	next   repository.ResourceStore
	driver string
}

// Instrument envuelve next con métricas etiquetadas con driver.
func Instrument(next repository.ResourceStore, driver string) *InstrumentedStore {
	return &InstrumentedStore{next: next, driver: driver}
}

func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	if storeOpsTotal == nil || storeOpDuration == nil {
		return
	}
	result := "ok"
	switch {
	case repository.IsNotFound(err):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	storeOpsTotal.WithLabelValues(s.driver, op, result).Inc()
	storeOpDuration.WithLabelValues(s.driver, op).Observe(time.Since(start).Seconds())
}

func (s *InstrumentedStore) Exists(ctx context.Context, key repository.ResourceKey) (bool, error) {
	start := time.Now()
	ok, err := s.next.Exists(ctx, key)
	s.observe("exists", start, err)
	return ok, err
}

func (s *InstrumentedStore) Get(ctx context.Context, key repository.ResourceKey) (*repository.Resource, error) {
	start := time.Now()
	res, err := s.next.Get(ctx, key)
	s.observe("get", start, err)
	return res, err
}

func (s *InstrumentedStore) Put(ctx context.Context, res *repository.Resource, key repository.ResourceKey) error {
	start := time.Now()
	err := s.next.Put(ctx, res, key)
	s.observe("put", start, err)
	return err
}

func (s *InstrumentedStore) Delete(ctx context.Context, key repository.ResourceKey) error {
	start := time.Now()
	err := s.next.Delete(ctx, key)
	s.observe("delete", start, err)
	return err
}
