package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	// Server
	Environment EnvironmentConfig
	HTTPServer  HTTPServerConfig
	Logger      LoggerConfig

	// Relay
	Telegram TelegramConfig
	Callback CallbackConfig
	TaskAPI  TaskAPIConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Speech   SpeechConfig
	Settings SettingsConfig
	Ngrok    NgrokConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port           int
	Mode           string
	TrustedProxies []string // proxies whose X-Forwarded-For is honoured
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

type TelegramConfig struct {
	BotToken        string
	WebhookURL      string
	WebhookSecret   string // echoed by Telegram in X-Telegram-Bot-Api-Secret-Token
	AllowedChatIDs  []int64
	AdminUserIDs    []int64 // may toggle /debug and /audio
	RateLimitPerMin int
	ProcessTimeout  time.Duration
}

type CallbackConfig struct {
	Secret     string
	PublicURL  string // base URL the task service calls back on; /callback is appended
	AllowedIPs []string
}

type TaskAPIConfig struct {
	BaseURL       string
	APIKey        string
	MaxIterations int
	Timeout       time.Duration
	Transport     string // http or kafka
	Branch        string
}

type KafkaConfig struct {
	Brokers       []string
	DispatchTopic string
	ResultTopic   string // consumed by cmd/consumer
	ClientID      string
}

// RedisConfig selects the pending store. An empty Addr keeps everything in process memory.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	KeyPrefix  string
	PendingTTL time.Duration
}

// SpeechConfig enables voice input and output when APIKey is set.
type SpeechConfig struct {
	BaseURL  string
	APIKey   string
	TTSModel string
	Voice    string
	STTModel string
}

// SettingsConfig holds the startup values of the admin flags. Live values are read
// through settings.Reader.
type SettingsConfig struct {
	DebugMode    bool
	AudioEnabled bool
}

type NgrokConfig struct {
	APIURL string
}

// Load loads configuration using Viper.
// Config file name: config.yaml, searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return build(viper.GetViper())
}

func build(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = v.GetString("environment.name")
	cfg.HTTPServer.Port = v.GetInt("http_server.port")
	cfg.HTTPServer.Mode = v.GetString("http_server.mode")
	cfg.HTTPServer.TrustedProxies = parseStringList(v.Get("http_server.trusted_proxies"))
	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Mode = v.GetString("logger.mode")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = v.GetBool("logger.color_enabled")

	// Telegram
	cfg.Telegram.BotToken = v.GetString("telegram.bot_token")
	cfg.Telegram.WebhookURL = v.GetString("telegram.webhook_url")
	cfg.Telegram.WebhookSecret = v.GetString("telegram.webhook_secret")
	cfg.Telegram.RateLimitPerMin = v.GetInt("telegram.rate_limit_per_min")
	cfg.Telegram.ProcessTimeout = v.GetDuration("telegram.process_timeout")
	chatIDs, err := parseInt64List(v.Get("telegram.allowed_chat_ids"))
	if err != nil {
		return nil, fmt.Errorf("telegram.allowed_chat_ids: %w", err)
	}
	cfg.Telegram.AllowedChatIDs = chatIDs
	adminIDs, err := parseInt64List(v.Get("telegram.admin_user_ids"))
	if err != nil {
		return nil, fmt.Errorf("telegram.admin_user_ids: %w", err)
	}
	cfg.Telegram.AdminUserIDs = adminIDs

	// Callback
	cfg.Callback.Secret = v.GetString("callback.secret")
	cfg.Callback.PublicURL = strings.TrimRight(v.GetString("callback.public_url"), "/")
	cfg.Callback.AllowedIPs = parseStringList(v.Get("callback.allowed_ips"))

	// Task API
	cfg.TaskAPI.BaseURL = v.GetString("task_api.base_url")
	cfg.TaskAPI.APIKey = v.GetString("task_api.api_key")
	cfg.TaskAPI.MaxIterations = v.GetInt("task_api.max_iterations")
	cfg.TaskAPI.Timeout = v.GetDuration("task_api.timeout")
	cfg.TaskAPI.Transport = strings.ToLower(v.GetString("task_api.transport"))
	cfg.TaskAPI.Branch = v.GetString("task_api.branch")

	// Kafka
	cfg.Kafka.Brokers = parseStringList(v.Get("kafka.brokers"))
	cfg.Kafka.DispatchTopic = v.GetString("kafka.dispatch_topic")
	cfg.Kafka.ResultTopic = v.GetString("kafka.result_topic")
	cfg.Kafka.ClientID = v.GetString("kafka.client_id")

	// Redis
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.Redis.KeyPrefix = v.GetString("redis.key_prefix")
	cfg.Redis.PendingTTL = v.GetDuration("redis.pending_ttl")

	// Speech
	cfg.Speech.BaseURL = v.GetString("speech.base_url")
	cfg.Speech.APIKey = v.GetString("speech.api_key")
	cfg.Speech.TTSModel = v.GetString("speech.tts_model")
	cfg.Speech.Voice = v.GetString("speech.voice")
	cfg.Speech.STTModel = v.GetString("speech.stt_model")

	cfg.Settings.DebugMode = v.GetBool("settings.debug_mode")
	cfg.Settings.AudioEnabled = v.GetBool("settings.audio_enabled")

	cfg.Ngrok.APIURL = v.GetString("ngrok.api_url")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	switch cfg.TaskAPI.Transport {
	case "http":
		if cfg.TaskAPI.BaseURL == "" {
			return fmt.Errorf("task_api.base_url is required for the http transport")
		}
	case "kafka":
		if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.DispatchTopic == "" {
			return fmt.Errorf("kafka.brokers and kafka.dispatch_topic are required for the kafka transport")
		}
	default:
		return fmt.Errorf("task_api.transport must be http or kafka, got %q", cfg.TaskAPI.Transport)
	}
	return nil
}

// Watch re-reads the config file whenever it changes and then calls onChange on the watcher
// goroutine. Viper must not be read from other goroutines after this; onChange is where
// live values (settings.*) get copied out. It reports false when no config file was loaded.
func Watch(onChange func(path string)) bool {
	if viper.ConfigFileUsed() == "" {
		return false
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if onChange != nil {
			onChange(e.Name)
		}
	})
	viper.WatchConfig()
	return true
}

func setDefaults() {
	viper.SetDefault("environment.name", "development")
	viper.SetDefault("http_server.port", 8080)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)

	viper.SetDefault("telegram.rate_limit_per_min", 30)
	viper.SetDefault("telegram.process_timeout", "2m")

	viper.SetDefault("task_api.max_iterations", 25)
	viper.SetDefault("task_api.timeout", "30s")
	viper.SetDefault("task_api.transport", "http")

	viper.SetDefault("kafka.client_id", "telegram-task-relay")

	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.key_prefix", "relay:pending:")
	viper.SetDefault("redis.pending_ttl", "3600s")

	viper.SetDefault("settings.debug_mode", false)
	viper.SetDefault("settings.audio_enabled", true)

	viper.SetDefault("ngrok.api_url", "http://ngrok:4040")
}

// parseStringList accepts a YAML list or a comma-separated string, since env overrides
// only carry strings.
func parseStringList(raw interface{}) []string {
	var items []string
	switch x := raw.(type) {
	case nil:
		return nil
	case string:
		items = strings.Split(x, ",")
	default:
		items = cast.ToStringSlice(x)
	}

	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseInt64List(raw interface{}) ([]int64, error) {
	var out []int64
	switch x := raw.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		for _, item := range x {
			id, err := cast.ToInt64E(item)
			if err != nil {
				return nil, fmt.Errorf("invalid id %v: %w", item, err)
			}
			out = append(out, id)
		}
	default:
		for _, item := range parseStringList(cast.ToString(x)) {
			id, err := cast.ToInt64E(item)
			if err != nil {
				return nil, fmt.Errorf("invalid id %q: %w", item, err)
			}
			out = append(out, id)
		}
	}
	return out, nil
}
