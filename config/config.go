package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Submission SubmissionConfig `yaml:"submission"`
	Parser     ParserConfig     `yaml:"parser"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Cache      CacheConfig      `yaml:"cache"`
	Worker     WorkerConfig     `yaml:"worker"`
	Debug      bool             `yaml:"debug"`
}

type HTTPConfig struct {
	Address     string   `yaml:"address"`
	SwaggerDir  string   `yaml:"swagger_dir"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type KafkaConfig struct {
	Brokers                []string `yaml:"brokers"`
	ReservationEventsTopic string   `yaml:"reservation_events_topic"`
	GroupID                string   `yaml:"group_id"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.ReservationEventsTopic != ""
}

type SubmissionConfig struct {
	URL            string  `yaml:"url"`
	Token          string  `yaml:"token"`
	Source         string  `yaml:"source"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RatePerSecond  float64 `yaml:"rate_per_second"`
}

func (s SubmissionConfig) Enabled() bool {
	return s.URL != ""
}

func (s SubmissionConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type ParserConfig struct {
	DefaultDayCount int    `yaml:"default_day_count"`
	TimeZone        string `yaml:"time_zone"`
}

// Location resolves TimeZone, falling back to the local zone when the
// zone database does not know it.
func (p ParserConfig) Location() *time.Location {
	if p.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

type ScheduleConfig struct {
	DefaultThreshold int    `yaml:"default_threshold"`
	PrintFontPath    string `yaml:"print_font_path"`
}

type CacheConfig struct {
	ParseTTLSeconds          int `yaml:"parse_ttl_seconds"`
	SubmissionLockTTLSeconds int `yaml:"submission_lock_ttl_seconds"`
}

func (c CacheConfig) ParseTTL() time.Duration {
	return time.Duration(c.ParseTTLSeconds) * time.Second
}

func (c CacheConfig) SubmissionLockTTL() time.Duration {
	return time.Duration(c.SubmissionLockTTLSeconds) * time.Second
}

type WorkerConfig struct {
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds"`
}

// LoadConfig reads an optional .env file first so CONFIG_PATH and secrets can
// live there, then the YAML file at path.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if token := os.Getenv("SUBMISSION_TOKEN"); token != "" {
		cfg.Submission.Token = token
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// PathFromEnv returns $CONFIG_PATH, loading .env first, or config.yaml.
func PathFromEnv() string {
	_ = godotenv.Load()
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "parkingblisko-worker"
	}
	if c.Submission.Source == "" {
		c.Submission.Source = "parkingblisko"
	}
	if c.Submission.TimeoutSeconds <= 0 {
		c.Submission.TimeoutSeconds = 10
	}
	if c.Submission.RatePerSecond <= 0 {
		c.Submission.RatePerSecond = 5
	}
	if c.Parser.DefaultDayCount <= 0 {
		c.Parser.DefaultDayCount = 3
	}
	if c.Parser.TimeZone == "" {
		c.Parser.TimeZone = "Europe/Warsaw"
	}
	if c.Schedule.DefaultThreshold <= 0 {
		c.Schedule.DefaultThreshold = 3
	}
	if c.Cache.ParseTTLSeconds <= 0 {
		c.Cache.ParseTTLSeconds = 3600
	}
	if c.Cache.SubmissionLockTTLSeconds <= 0 {
		c.Cache.SubmissionLockTTLSeconds = 600
	}
	if c.Worker.ShutdownTimeoutSeconds <= 0 {
		c.Worker.ShutdownTimeoutSeconds = 5
	}
}
