package config

// Config is the full stubns configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	API      APIConfig      `yaml:"api"`
	QueryLog QueryLogConfig `yaml:"query_log"`
}

// ServerConfig contains listener settings. Both transports share Port.
type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	EnableTCP bool   `yaml:"enable_tcp"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level            string `yaml:"level"`
	Structured       bool   `yaml:"structured"`
	StructuredFormat string `yaml:"structured_format"`
	IncludePID       bool   `yaml:"include_pid"`
}

// APIConfig controls the optional admin HTTP API.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	APIKey  string `yaml:"api_key"`
}

// QueryLogConfig controls the SQLite query log.
type QueryLogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}
