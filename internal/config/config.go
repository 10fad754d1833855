package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"voltweb/internal/dataprocessing"
	apierrors "voltweb/internal/errors"
)

// EnvPrefix namespaces every environment variable, e.g. VOLT_SERVER_PORT
const EnvPrefix = "VOLT"

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Processing ProcessingConfig `yaml:"processing" envconfig:"PROCESSING"`
	Export     ExportConfig     `yaml:"export" envconfig:"EXPORT"`
	Render     RenderConfig     `yaml:"render" envconfig:"RENDER"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	WebSocket  WebSocketConfig  `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
	MaxFileBytes    int64         `yaml:"max_file_bytes" envconfig:"MAX_FILE_BYTES"`
	MaxFiles        int           `yaml:"max_files" envconfig:"MAX_FILES"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// ProcessingConfig selects the pipeline variant
type ProcessingConfig struct {
	DefaultScanRange       string   `yaml:"default_scan_range" envconfig:"DEFAULT_SCAN_RANGE"`
	EmitWarningOnEmptyScan bool     `yaml:"emit_warning_on_empty_scan" envconfig:"EMIT_WARNING_ON_EMPTY_SCAN"`
	FixedPlotHeight        int      `yaml:"fixed_plot_height" envconfig:"FIXED_PLOT_HEIGHT"`
	Palette                []string `yaml:"palette" envconfig:"PALETTE"`
	LoadWorkers            int      `yaml:"load_workers" envconfig:"LOAD_WORKERS"`
}

// ExportConfig controls the wide export writers
type ExportConfig struct {
	MissingValue string `yaml:"missing_value" envconfig:"MISSING_VALUE"`
	BOMPrefix    bool   `yaml:"bom_prefix" envconfig:"BOM_PREFIX"`
	Workers      int    `yaml:"workers" envconfig:"WORKERS"`
	FilePrefix   string `yaml:"file_prefix" envconfig:"FILE_PREFIX"`
}

// RenderConfig controls static plot rendering
type RenderConfig struct {
	Width  int `yaml:"width" envconfig:"WIDTH"`
	Height int `yaml:"height" envconfig:"HEIGHT"`
}

// PathsConfig contains file system paths configuration. Relative
// directories resolve against BaseDir, or the executable directory when
// BaseDir is empty.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ExportsDir string `yaml:"exports_dir" envconfig:"EXPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// Load builds the configuration from defaults, then the first config file
// found, then VOLT_* environment variables. Later sources win.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apierrors.NewConfigError("failed to load config from "+configFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apierrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, apierrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file
// keep their current values
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// ProcessingOptions converts the processing section into pipeline options
func (c *Config) ProcessingOptions() dataprocessing.ProcessingOptions {
	return dataprocessing.ProcessingOptions{
		EmitWarningOnEmptyScan: c.Processing.EmitWarningOnEmptyScan,
	}.WithFixedPlotHeight(c.Processing.FixedPlotHeight)
}

// Address returns the host:port the server listens on
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}

	if c.Server.MaxFileBytes <= 0 || c.Server.MaxFileBytes > c.Server.MaxUploadBytes {
		c.Server.MaxFileBytes = c.Server.MaxUploadBytes
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive")
	}

	if _, err := dataprocessing.ParseRangeSelector(c.Processing.DefaultScanRange); err != nil {
		return fmt.Errorf("invalid default scan range: %w", err)
	}

	for _, color := range c.Processing.Palette {
		if !isHexColor(color) {
			return fmt.Errorf("invalid palette color %q", color)
		}
	}

	if c.Processing.LoadWorkers <= 0 {
		c.Processing.LoadWorkers = DefaultWorkers
	}

	if c.Export.Workers <= 0 {
		c.Export.Workers = DefaultWorkers
	}

	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render size must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}

	c.Logging.Format = "json"

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	return strings.Trim(strings.ToLower(s[1:]), "0123456789abcdef") == ""
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
		"../../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  DefaultMaxUploadBytes,
			MaxFileBytes:    DefaultMaxFileBytes,
			MaxFiles:        DefaultMaxFiles,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Output:      "console",
			FilePath:    DefaultLogFile,
			Development: false,
		},
		Processing: ProcessingConfig{
			DefaultScanRange:       dataprocessing.AllScans,
			EmitWarningOnEmptyScan: true,
			FixedPlotHeight:        dataprocessing.DefaultPlotHeight,
			LoadWorkers:            DefaultWorkers,
		},
		Export: ExportConfig{
			MissingValue: "",
			BOMPrefix:    false,
			Workers:      DefaultWorkers,
			FilePrefix:   DefaultExportPrefix,
		},
		Render: RenderConfig{
			Width:  DefaultRenderWidth,
			Height: DefaultRenderHeight,
		},
		Paths: PathsConfig{
			DataDir:    DefaultDataDir,
			ExportsDir: DefaultExportsDir,
			LogsDir:    DefaultLogsDir,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  WebSocketReadBufferSize,
			WriteBufferSize: WebSocketWriteBufferSize,
			PingPeriod:      WebSocketPingPeriod,
			PongWait:        WebSocketPongWait,
		},
	}
}
