package texture

import "go.uber.org/zap"

// Config holds the residency policy settings.
type Config struct {
	// WaitForKickoff holds queued uploads until Kickoff or Synchronize is called,
	// batching uploads at frame boundaries.
	WaitForKickoff bool `mapstructure:"wait_for_kickoff" default:"false"`
	// MaxMipSkip bounds the global mip-skip level.
	MaxMipSkip int `mapstructure:"max_mip_skip" default:"4"`
	// HighWatermark is the video memory utilization above which the mip-skip level rises.
	HighWatermark float64 `mapstructure:"high_watermark" default:"0.9"`
	// LowWatermark is the utilization below which the mip-skip level falls.
	LowWatermark float64 `mapstructure:"low_watermark" default:"0.6"`
	// DemotionTarget is the utilization the default LRU policy demotes down to.
	// Zero demotes every candidate.
	DemotionTarget float64 `mapstructure:"demotion_target" default:"0.5"`
}

// Default policy values, used when a Config field is out of range.
const (
	DefaultMaxMipSkip     = 4
	DefaultHighWatermark  = 0.9
	DefaultLowWatermark   = 0.6
	DefaultDemotionTarget = 0.5
)

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		MaxMipSkip:     DefaultMaxMipSkip,
		HighWatermark:  DefaultHighWatermark,
		LowWatermark:   DefaultLowWatermark,
		DemotionTarget: DefaultDemotionTarget,
	}
}

func (c Config) normalized() Config {
	if c.MaxMipSkip < 0 {
		c.MaxMipSkip = DefaultMaxMipSkip
	}
	if c.HighWatermark <= 0 || c.HighWatermark > 1 {
		c.HighWatermark = DefaultHighWatermark
	}
	if c.LowWatermark < 0 || c.LowWatermark >= c.HighWatermark {
		c.LowWatermark = c.HighWatermark * 2 / 3
	}
	if c.DemotionTarget < 0 || c.DemotionTarget > 1 {
		c.DemotionTarget = DefaultDemotionTarget
	}
	return c
}

// Options configures a Manager.
type Options struct {
	Config Config
	// Logger receives lifecycle and failure logs. Nil disables logging.
	Logger *zap.Logger
	// Metrics observes uploads and policy changes. Nil disables metrics.
	Metrics Metrics
	// Policy selects textures for demotion. Nil uses LRUPolicy{Target: Config.DemotionTarget}.
	Policy DemotionPolicy
	// Keys issues texture keys. Nil uses a generator private to the manager.
	Keys *KeyGenerator
}
