package device

// Config holds settings for the host execution context.
type Config struct {
	// BudgetMB is the simulated video memory budget in megabytes.
	BudgetMB int `mapstructure:"budget_mb" default:"512"`
	// UploadLatencyMS delays every upload by this many milliseconds.
	UploadLatencyMS int `mapstructure:"upload_latency_ms" default:"0"`
}

// DefaultBudgetMB is used when Config.BudgetMB is not positive.
const DefaultBudgetMB = 512
