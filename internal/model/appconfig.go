package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Floor plan defaults for new sessions
	DefaultWidth  float64 `json:"default_width"`  // world units
	DefaultHeight float64 `json:"default_height"` // world units
	HitTolerance  float64 `json:"hit_tolerance"`  // eraser hit radius in world units
	MaxHistory    int     `json:"max_history"`    // 0 = unlimited undo depth

	// Signal defaults
	DefaultTxPowerDbm float64   `json:"default_tx_power_dbm"`
	DefaultBand       Band      `json:"default_band"`
	DefaultAlgorithm  Algorithm `json:"default_algorithm"`

	// Logging
	LogLevel  string `json:"log_level"`  // "debug", "info", "warn", "error"
	LogFormat string `json:"log_format"` // "console" or "json"
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultWidth:      2000,
		DefaultHeight:     2000,
		HitTolerance:      5,
		MaxHistory:        0,
		DefaultTxPowerDbm: defaults.TxPowerDbm,
		DefaultBand:       defaults.Band,
		DefaultAlgorithm:  defaults.Algorithm,
		LogLevel:          "info",
		LogFormat:         "console",
	}
}

// ApplyToSettings copies the default values from AppConfig into a Settings struct.
func (c AppConfig) ApplyToSettings(s *Settings) {
	s.TxPowerDbm = c.DefaultTxPowerDbm
	s.Band = c.DefaultBand
	if c.DefaultAlgorithm != "" {
		s.Algorithm = c.DefaultAlgorithm
	}
}
