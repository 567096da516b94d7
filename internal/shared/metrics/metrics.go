package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cloneStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voice_clone_started_total",
		Help: "Total voice clone operations started",
	})
	cloneCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voice_clone_completed_total",
		Help: "Total voice clone operations completed",
	})
	cloneFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_clone_failed_total",
		Help: "Total voice clone operations failed, by failure kind",
	}, []string{"kind"})

	synthesisStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "synthesis_started_total",
		Help: "Total synthesis operations started",
	})
	synthesisCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "synthesis_completed_total",
		Help: "Total synthesis operations completed",
	})
	synthesisFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "synthesis_failed_total",
		Help: "Total synthesis operations failed, by failure kind",
	}, []string{"kind"})

	synthesisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "synthesis_duration_seconds",
		Help:    "Wall time of a synthesis operation end to end",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})
	synthesisAudioBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "synthesis_audio_bytes",
		Help:    "Size of synthesized audio artifacts",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})
)

// IncCloneStarted increments the clone started counter.
func IncCloneStarted() { cloneStartedTotal.Inc() }

// IncCloneCompleted increments the clone completed counter.
func IncCloneCompleted() { cloneCompletedTotal.Inc() }

// IncCloneFailed increments the clone failed counter for a failure kind.
func IncCloneFailed(kind string) { cloneFailedTotal.WithLabelValues(kind).Inc() }

// IncSynthesisStarted increments the synthesis started counter.
func IncSynthesisStarted() { synthesisStartedTotal.Inc() }

// IncSynthesisCompleted increments the synthesis completed counter.
func IncSynthesisCompleted() { synthesisCompletedTotal.Inc() }

// IncSynthesisFailed increments the synthesis failed counter for a failure kind.
func IncSynthesisFailed(kind string) { synthesisFailedTotal.WithLabelValues(kind).Inc() }

// ObserveSynthesisDuration records one synthesis duration in seconds.
func ObserveSynthesisDuration(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	synthesisDuration.Observe(seconds)
}

// ObserveSynthesisAudioBytes records the byte length of one synthesized artifact.
func ObserveSynthesisAudioBytes(n int64) {
	if n < 0 {
		return
	}
	synthesisAudioBytes.Observe(float64(n))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
