package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all upstream HTTP requests.
const DefaultUserAgent = "subtirrent/1.0 (+https://github.com/Belphemur/Subtirrent)"

type Config struct {
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	UserAgent             string `mapstructure:"user_agent"`
	BaseURL               string `mapstructure:"base_url"` // Public URL used to build extraction links
	Server                struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	GRPC struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"grpc"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	LogLevel string `mapstructure:"log_level"`
	Debrid   struct {
		BaseURL string `mapstructure:"base_url"`
		Agent   string `mapstructure:"agent"`
		Timeout string `mapstructure:"timeout"` // Go duration string like "15s"
		APIKey  string `mapstructure:"api_key"` // Server-side fallback when the addon token carries none
	} `mapstructure:"debrid"`
	Search struct {
		BaseURL string `mapstructure:"base_url"`
		Timeout string `mapstructure:"timeout"`
	} `mapstructure:"search"`
	Cinemeta struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"cinemeta"`
	Kitsu struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"kitsu"`
	FFmpeg struct {
		FFprobePath    string `mapstructure:"ffprobe_path"`
		FFmpegPath     string `mapstructure:"ffmpeg_path"`
		ProbeTimeout   string `mapstructure:"probe_timeout"`
		ConvertTimeout string `mapstructure:"convert_timeout"`
	} `mapstructure:"ffmpeg"`
	Subtitle struct {
		Format             string   `mapstructure:"format"` // "srt" or "vtt"
		PreferredLanguages []string `mapstructure:"preferred_languages"`
	} `mapstructure:"subtitle"`
	Cache struct {
		Provider string `mapstructure:"provider"` // "memory" or "redis"
		Size     int    `mapstructure:"size"`     // Maximum number of entries in the LRU cache
		TTL      string `mapstructure:"ttl"`      // Go duration string like "30m"
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	LocatorCache struct {
		Size int    `mapstructure:"size"`
		TTL  string `mapstructure:"ttl"`
	} `mapstructure:"locator_cache"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Console writer for human-readable output, colored only on a terminal
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 7000)
	v.SetDefault("base_url", "http://localhost")
	v.SetDefault("grpc.enabled", false)
	v.SetDefault("grpc.port", 7001)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("log_level", "info")

	v.SetDefault("debrid.base_url", "https://api.alldebrid.com/v4")
	v.SetDefault("debrid.agent", "subtirrent")
	v.SetDefault("debrid.timeout", "15s")
	v.SetDefault("search.base_url", "https://torrentio.strem.fun")
	v.SetDefault("search.timeout", "15s")
	v.SetDefault("cinemeta.base_url", "https://v3-cinemeta.strem.io")
	v.SetDefault("kitsu.base_url", "https://kitsu.io/api/edge")

	v.SetDefault("ffmpeg.ffprobe_path", "ffprobe")
	v.SetDefault("ffmpeg.ffmpeg_path", "ffmpeg")
	v.SetDefault("ffmpeg.probe_timeout", "60s")
	v.SetDefault("ffmpeg.convert_timeout", "10m")

	v.SetDefault("subtitle.format", "srt")
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 100)
	v.SetDefault("cache.ttl", "30m")
	v.SetDefault("locator_cache.size", 100)
	v.SetDefault("locator_cache.ttl", "15m")
}

func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile loads the configuration from path, or searches for config.yaml in the
// working directory and ./config when path is empty.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if path != "" {
		v.SetConfigFile(path)
	}

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Add specific environment variable for log level
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	config.BaseURL = NormalizeBaseURL(config.BaseURL, config.Server.Port)

	return &config, nil
}

// NormalizeBaseURL trims trailing slashes and, for localhost URLs that do not carry the
// listening port yet, appends it so generated extraction links are reachable.
func NormalizeBaseURL(baseURL string, port int) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if port == 0 {
		return baseURL
	}
	portSuffix := fmt.Sprintf(":%d", port)
	if strings.Contains(baseURL, "localhost") && !strings.Contains(baseURL, portSuffix) {
		baseURL += portSuffix
	}
	return baseURL
}

// ParseDuration parses a Go duration string, falling back to def (with a warning) when the
// value is empty or invalid.
func ParseDuration(key, value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		logger.Warn().Err(err).Str("key", key).Str("value", value).Dur("default", def).Msg("Invalid duration, using default")
		return def
	}
	return parsed
}

func GetConfig() *Config {
	return globalConfig
}

func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}
