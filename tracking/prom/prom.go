// Package prom exports training progress as Prometheus metrics.
package prom

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/cmhash/tracking"
)

// Collector is a tracking.Sink and a step/epoch metrics collector.
type Collector struct {
	reg *prometheus.Registry

	opLatency *prometheus.HistogramVec
	samples   prometheus.Counter
	scalars   *prometheus.GaugeVec
	epoch     prometheus.Gauge
	bestScore prometheus.Gauge
	bestEpoch prometheus.Gauge
}

var (
	_ tracking.Sink     = (*Collector)(nil)
	_ tracking.Finisher = (*Collector)(nil)
)

// NewCollector creates a Collector registered on reg.
// A nil reg creates a private registry.
func NewCollector(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Collector{
		reg: reg,
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cmhash_operation_latency_seconds",
			Help:    "Latency of training steps, epochs, validations and persistence",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cmhash_train_samples_total",
			Help: "Total training samples processed",
		}),
		scalars: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cmhash_scalar",
			Help: "Latest value of each training and validation scalar",
		}, []string{"phase", "tag"}),
		epoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cmhash_epoch",
			Help: "Last completed epoch",
		}),
		bestScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cmhash_best_average_map",
			Help: "Best average mAP so far",
		}),
		bestEpoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cmhash_best_epoch",
			Help: "Epoch of the best average mAP so far",
		}),
	}
	reg.MustRegister(c.opLatency, c.samples, c.scalars, c.epoch, c.bestScore, c.bestEpoch)
	return c
}

// Registry returns the registry the collector is registered on.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordStep records one optimization step.
func (c *Collector) RecordStep(samples int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("step", status(err)).Observe(d.Seconds())
	if err == nil {
		c.samples.Add(float64(samples))
	}
}

// RecordEpoch records a finished training epoch.
func (c *Collector) RecordEpoch(epoch int, loss float64, d time.Duration) {
	c.opLatency.WithLabelValues("epoch", "success").Observe(d.Seconds())
	c.epoch.Set(float64(epoch))
}

// RecordValidation records a validation pass.
func (c *Collector) RecordValidation(queries int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("validate", status(err)).Observe(d.Seconds())
}

// RecordPersist records a snapshot save.
func (c *Collector) RecordPersist(d time.Duration, err error) {
	c.opLatency.WithLabelValues("persist", status(err)).Observe(d.Seconds())
}

// Record implements tracking.Sink.
func (c *Collector) Record(_ context.Context, r tracking.EpochReport) error {
	for _, sc := range r.Scalars() {
		c.scalars.WithLabelValues(sc.Phase, sc.Tag).Set(sc.Value)
	}
	c.epoch.Set(float64(r.Epoch))
	if r.IsBest {
		c.bestScore.Set(r.Scores.AveragePlain)
		c.bestEpoch.Set(float64(r.Epoch))
	}
	return nil
}

// Finish implements tracking.Finisher.
func (c *Collector) Finish(_ context.Context, s tracking.Summary) error {
	c.bestScore.Set(s.BestScore)
	c.bestEpoch.Set(float64(s.BestEpoch))
	return nil
}

// Handler returns an HTTP handler exposing the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
