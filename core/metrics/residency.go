package metrics

import (
	"time"

	"texture-manager/core/texture"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "texman"

// ResidencyMetrics is the Prometheus implementation of texture.Metrics.
type ResidencyMetrics struct {
	uploads        *prometheus.CounterVec
	uploadDuration *prometheus.HistogramVec
	uploadBytes    prometheus.Histogram
	pending        prometheus.Gauge
	discarded      prometheus.Counter
	demotions      prometheus.Counter
	mipSkip        prometheus.Gauge
}

// NewResidencyMetrics registers the residency metrics with reg. A nil reg returns nil;
// the methods of a nil *ResidencyMetrics do nothing.
func NewResidencyMetrics(reg prometheus.Registerer) *ResidencyMetrics {
	if reg == nil {
		return nil
	}
	f := promauto.With(reg)

	return &ResidencyMetrics{
		uploads: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_total",
				Help:      "Texture uploads by mode (async, inline) and status (success, error)",
			},
			[]string{"mode", "status"},
		),
		uploadDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upload_duration_seconds",
				Help:      "Decode plus upload time of a texture",
				Buckets: []float64{
					0.001, // 1ms - placeholders
					0.005,
					0.01,
					0.05,
					0.1,
					0.5,
					1,
					5, // large sources over slow storage
				},
			},
			[]string{"mode"},
		),
		uploadBytes: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upload_bytes",
				Help:      "Video memory taken by a successful upload",
				Buckets: []float64{
					1024,     // 1KB - placeholder chains
					16384,    // 16KB
					262144,   // 256KB
					1048576,  // 1MB - 512x512 with mips
					4194304,  // 4MB
					16777216, // 16MB - 2048x2048 with mips
					67108864, // 64MB
				},
			},
		),
		pending: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_uploads",
			Help:      "Uploads queued or in flight on the worker",
		}),
		discarded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discarded_uploads_total",
			Help:      "Queued uploads dropped by synchronize, unload, release or close",
		}),
		demotions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "demotions_total",
			Help:      "Textures demoted from video memory",
		}),
		mipSkip: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mip_skip_level",
			Help:      "Number of finest mip levels skipped by new uploads",
		}),
	}
}

func (m *ResidencyMetrics) ObserveUpload(mode string, duration time.Duration, bytes uint64, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.uploads.WithLabelValues(mode, status).Inc()
	m.uploadDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if err == nil && bytes > 0 {
		m.uploadBytes.Observe(float64(bytes))
	}
}

func (m *ResidencyMetrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}

func (m *ResidencyMetrics) ObserveDiscard(n int) {
	if m == nil {
		return
	}
	m.discarded.Add(float64(n))
}

func (m *ResidencyMetrics) ObserveDemotion(n int) {
	if m == nil {
		return
	}
	m.demotions.Add(float64(n))
}

func (m *ResidencyMetrics) SetMipSkipLevel(level int) {
	if m == nil {
		return
	}
	m.mipSkip.Set(float64(level))
}

// MemorySource reports video memory telemetry.
type MemorySource interface {
	MemoryStats() texture.MemoryStats
}

// RegisterMemoryCollector exports src's budget and usage as gauges read at scrape time.
func RegisterMemoryCollector(reg prometheus.Registerer, src MemorySource) {
	if reg == nil || src == nil {
		return
	}
	f := promauto.With(reg)

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "vidmem",
		Name:      "budget_bytes",
		Help:      "Video memory budget",
	}, func() float64 { return float64(src.MemoryStats().BudgetBytes) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "vidmem",
		Name:      "used_bytes",
		Help:      "Video memory in use",
	}, func() float64 { return float64(src.MemoryStats().UsedBytes) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "vidmem",
		Name:      "textures",
		Help:      "Textures holding video memory",
	}, func() float64 { return float64(src.MemoryStats().TextureCount) })
}

var _ texture.Metrics = (*ResidencyMetrics)(nil)
