// Package prometrics métricas Prometheus del sistema de inventario.
package prometrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry registra contadores e histogramas una sola vez por nombre.
type Registry struct {
	reg        *prometheus.Registry
	counters   sync.Map // name -> *prometheus.CounterVec
	histograms sync.Map // name -> *prometheus.HistogramVec
	namespace  string
}

// New crea un registro propio (no el global) con los collectors de proceso y runtime.
func New(namespace string) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{reg: reg, namespace: namespace}
}

// Handler expone el registro en formato de texto de Prometheus.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer acceso de lectura (tests).
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Counter devuelve el contador con ese nombre, creándolo la primera vez.
func (r *Registry) Counter(subsystem, name, help string, labelKeys ...string) *prometheus.CounterVec {
	key := subsystem + "_" + name
	if v, ok := r.counters.Load(key); ok {
		return v.(*prometheus.CounterVec)
	}
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labelKeys)
	actual, loaded := r.counters.LoadOrStore(key, cv)
	if !loaded {
		r.reg.MustRegister(cv)
	}
	return actual.(*prometheus.CounterVec)
}

// Histogram devuelve el histograma con ese nombre, creándolo la primera vez.
func (r *Registry) Histogram(subsystem, name, help string, buckets []float64, labelKeys ...string) *prometheus.HistogramVec {
	key := subsystem + "_" + name
	if v, ok := r.histograms.Load(key); ok {
		return v.(*prometheus.HistogramVec)
	}
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
	}, labelKeys)
	actual, loaded := r.histograms.LoadOrStore(key, hv)
	if !loaded {
		r.reg.MustRegister(hv)
	}
	return actual.(*prometheus.HistogramVec)
}
