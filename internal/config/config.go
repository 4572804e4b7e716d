package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dkeye/lanhub/internal/protocol"
	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Mode             string        `mapstructure:"mode" validate:"oneof=debug release test"`
	Host             string        `mapstructure:"host" validate:"required,ip"`
	ControlPort      int           `mapstructure:"control_port" validate:"gte=0,lte=65535"`
	VideoPort        int           `mapstructure:"video_port" validate:"gte=0,lte=65535"`
	AudioPort        int           `mapstructure:"audio_port" validate:"gte=0,lte=65535"`
	HTTPPort         int           `mapstructure:"http_port" validate:"gte=0,lte=65535"`
	MaxFrameSize     uint32        `mapstructure:"max_frame_size" validate:"gt=0"`
	MaxFileSize      int64         `mapstructure:"max_file_size" validate:"gt=0"`
	SendQueue        int           `mapstructure:"send_queue" validate:"gt=0"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	UDPBufferSize    int           `mapstructure:"udp_buffer_size" validate:"gte=1500,lte=65535"`
	Backpressure     string        `mapstructure:"backpressure" validate:"oneof=drop kick"`
	ChatRateLimit    int           `mapstructure:"chat_rate_limit" validate:"gte=0"`
	ChatRateInterval time.Duration `mapstructure:"chat_rate_interval" validate:"gte=0"`
	LogLevel         string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`

	v *viper.Viper
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"host":         "host",
	"control-port": "control_port",
	"video-port":   "video_port",
	"audio-port":   "audio_port",
	"http-port":    "http_port",
	"backpressure": "backpressure",
	"log-level":    "log_level",
}

// RegisterFlags adds the overridable settings to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default config/config.$CONFIG_ENV.yaml)")
	fs.String("host", "0.0.0.0", "bind address for every socket")
	fs.Int("control-port", 5555, "TCP control port")
	fs.Int("video-port", 5556, "UDP video port")
	fs.Int("audio-port", 5557, "UDP audio port")
	fs.Int("http-port", 8080, "admin HTTP port, 0 disables")
	fs.String("backpressure", "drop", "slow client policy: drop or kick")
	fs.String("log-level", "info", "log level")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("control_port", 5555)
	v.SetDefault("video_port", 5556)
	v.SetDefault("audio_port", 5557)
	v.SetDefault("http_port", 8080)
	v.SetDefault("max_frame_size", 72<<20)
	v.SetDefault("max_file_size", 48<<20)
	v.SetDefault("send_queue", 256)
	v.SetDefault("write_timeout", "5s")
	v.SetDefault("udp_buffer_size", 65535)
	v.SetDefault("backpressure", "drop")
	v.SetDefault("chat_rate_limit", 0)
	v.SetDefault("chat_rate_interval", "1s")
	v.SetDefault("log_level", "info")
}

// Load resolves the configuration from defaults, the config file, LANHUB_*
// environment variables and flags, in increasing priority. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("LANHUB")
	v.AutomaticEnv()

	explicit := ""
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			explicit = f.Value.String()
		}
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	fileName := explicit
	if fileName == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(fileName)

	if err := v.ReadInConfig(); err != nil {
		if explicit != "" {
			return nil, fmt.Errorf("read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").
		Str("mode", cfg.Mode).
		Int("control_port", cfg.ControlPort).
		Int("video_port", cfg.VideoPort).
		Int("audio_port", cfg.AudioPort).
		Int("http_port", cfg.HTTPPort).
		Msg("config ready")
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.v = v
	return &cfg, nil
}

// Validate checks field ranges and that a control frame can carry an upload
// just over max_file_size, so oversize uploads are answered with a warning.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if need := protocol.UploadFrameSize(c.MaxFileSize + 1); need > int64(c.MaxFrameSize) {
		return fmt.Errorf("invalid config: max_frame_size %d is below %d needed for uploads of max_file_size %d", c.MaxFrameSize, need, c.MaxFileSize)
	}
	return nil
}

// Watch calls onChange with the re-read configuration whenever the loaded
// config file changes. Invalid edits are logged and skipped.
func (c *Config) Watch(onChange func(*Config)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}
	if _, err := os.Stat(c.v.ConfigFileUsed()); err != nil {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := decode(c.v)
		if err != nil {
			log.Warn().Str("module", "config").Err(err).Msg("ignoring config change")
			return
		}
		log.Info().Str("module", "config").Str("file", e.Name).Msg("config changed")
		onChange(next)
	})
	c.v.WatchConfig()
}
