package domain

// Evaluator maps a guideline and patient profile to a screening recommendation
type Evaluator interface {
	Evaluate(guideline Guideline, profile *PatientProfile) (*CalculationResult, error)
}

// ProfileChecker verifies that a profile carries the fields a guideline requires
type ProfileChecker interface {
	ValidateRequiredFields(guideline Guideline, profile *PatientProfile) error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetRateLimitConfig() *RateLimitConfig
	GetLoggingConfig() *LoggingConfig
	Reload() error
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}
