package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Plot     PlotConfig     `mapstructure:"plot"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// URL points at the database the user wants to ask questions about; the
// application itself owns no schema there. URL may be empty at startup,
// in which case the settings endpoint supplies it at runtime.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// LLMConfig contains all LLM integration related settings.
//
// MaxRetries is the default retry budget per generation call.
// ClientWaitSeconds and ServerWaitSeconds size the backoff for client-side
// (quota) and server-side provider failures respectively. MaxSQLAttempts
// bounds the outer regenerate-and-execute loop for SQL that fails against
// the database; it is distinct from the LLM retry budget.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"      validate:"required"`
	ModelName         string `mapstructure:"model_name"          validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	ClientWaitSeconds int    `mapstructure:"client_wait_seconds" validate:"gte=0,lte=600"`
	ServerWaitSeconds int    `mapstructure:"server_wait_seconds" validate:"gte=0,lte=600"`
	MaxSQLAttempts    int    `mapstructure:"max_sql_attempts"    validate:"gte=1,lte=5"`
}

// PlotConfig contains chart rendering settings.
type PlotConfig struct {
	OutputDir string `mapstructure:"output_dir" validate:"required"`
}
