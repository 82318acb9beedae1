package models

// DefaultUserAgent is sent with every outbound request the engine makes
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config represents the application configuration
type Config struct {
	ServerHost        string   `json:"serverHost" yaml:"serverHost"`
	ServerPort        int      `json:"serverPort" yaml:"serverPort"`
	YtdlPath          string   `json:"ytdlPath" yaml:"ytdlPath"`
	YtdlAutoInstall   bool     `json:"ytdlAutoInstall" yaml:"ytdlAutoInstall"`
	FfmpegPath        string   `json:"ffmpegPath" yaml:"ffmpegPath"`
	OutputDir         string   `json:"outputDir" yaml:"outputDir"`
	AllowedDirs       []string `json:"allowedDirs" yaml:"allowedDirs"`
	UserAgent         string   `json:"userAgent" yaml:"userAgent"`
	JobTimeoutSeconds int      `json:"jobTimeoutSeconds" yaml:"jobTimeoutSeconds"`
	LogLevel          string   `json:"logLevel" yaml:"logLevel"`
	LogFormat         string   `json:"logFormat" yaml:"logFormat"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		ServerHost:        "127.0.0.1",
		ServerPort:        8080,
		YtdlPath:          "",
		YtdlAutoInstall:   true,
		FfmpegPath:        "ffmpeg",
		OutputDir:         "downloads",
		AllowedDirs:       []string{},
		UserAgent:         DefaultUserAgent,
		JobTimeoutSeconds: 0,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// ServableDirs returns every directory the file gateway may serve from
func (c *Config) ServableDirs() []string {
	dirs := make([]string, 0, len(c.AllowedDirs)+1)
	dirs = append(dirs, c.OutputDir)
	dirs = append(dirs, c.AllowedDirs...)
	return dirs
}
