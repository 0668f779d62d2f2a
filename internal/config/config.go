package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`

	JWTSecret         string        `mapstructure:"jwt_secret"`
	AuthTimeout       time.Duration `mapstructure:"auth_timeout"`
	RingTimeout       time.Duration `mapstructure:"ring_timeout"`
	SendQueue         int           `mapstructure:"send_queue"`
	Backpressure      string        `mapstructure:"backpressure"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	ICEServers        []ICEServer   `mapstructure:"ice_servers"`

	DatabaseURL  string   `mapstructure:"database_url"`
	RedisAddr    string   `mapstructure:"redis_addr"`
	RedisPass    string   `mapstructure:"redis_password"`
	RedisDB      int      `mapstructure:"redis_db"`
	RedisPrefix  string   `mapstructure:"redis_prefix"`
	CallLogSinks []string `mapstructure:"call_log_sinks"`
}

// Load reads config/config.<CONFIG_ENV>.yaml, then lets CALL_* environment
// variables (optionally from a .env file) override it.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err == nil {
		log.Info().Str("module", "config").Str("file", envFile).Msg("loaded env file")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix("CALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Secret == "" {
		cfg.Secret = uuid.NewString()
		log.Warn().Str("module", "config").Msg("secret not set, client cookies will not survive a restart")
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Dur("ring_timeout", cfg.RingTimeout).Strs("call_log_sinks", cfg.CallLogSinks).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("auth_timeout", "5s")
	v.SetDefault("ring_timeout", "30s")
	v.SetDefault("send_queue", 64)
	v.SetDefault("backpressure", "kick")
	v.SetDefault("requests_per_minute", 20)
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
	v.SetDefault("database_url", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_prefix", "call")
	v.SetDefault("call_log_sinks", []string{"log"})
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if c.RingTimeout <= 0 {
		return fmt.Errorf("ring_timeout must be positive")
	}
	if c.SendQueue <= 0 {
		return fmt.Errorf("send_queue must be positive")
	}
	switch c.Backpressure {
	case "", "kick", "drop":
	default:
		return fmt.Errorf("backpressure must be kick or drop, got %q", c.Backpressure)
	}
	for _, sink := range c.CallLogSinks {
		switch sink {
		case "log":
		case "postgres":
			if c.DatabaseURL == "" {
				return fmt.Errorf("call log sink postgres needs database_url")
			}
		case "redis":
			if c.RedisAddr == "" {
				return fmt.Errorf("call log sink redis needs redis_addr")
			}
		default:
			return fmt.Errorf("unknown call log sink %q", sink)
		}
	}
	return nil
}

// PeerICEServers converts configured servers for clients.
func (c *Config) PeerICEServers() []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(c.ICEServers))
	for _, s := range c.ICEServers {
		if len(s.URLs) == 0 {
			continue
		}
		srv := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			srv.Credential = s.Credential
		}
		out = append(out, srv)
	}
	return out
}
