package configuration

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config is the fully parsed application configuration.
type Config struct {
	ServerAddress string
	DatabaseURI   string
	LogLevel      string
	LogToFile     bool
	LogFilePath   string

	Email   EmailConfig
	Desktop DesktopConfig

	UserAgents     []string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	CaptchaBackoff time.Duration
	RequestDelay   time.Duration
	JitterMax      time.Duration
	MaxPrice       float64

	Cooldown      time.Duration
	CheckInterval time.Duration

	Cache CacheConfig
}

type EmailConfig struct {
	Enabled   bool
	SMTPHost  string
	SMTPPort  int
	Sender    string
	Password  string
	Recipient string
}

type DesktopConfig struct {
	Enabled bool
}

type CacheConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type tomlConfig struct {
	ServerAddress string `toml:"server_address"`
	DatabaseURI   string `toml:"database_uri"`
	LogLevel      string `toml:"log_level"`
	LogToFile     bool   `toml:"log_to_file"`
	LogFilePath   string `toml:"log_file_path"`

	Email struct {
		Enabled   bool   `toml:"enabled"`
		SMTPHost  string `toml:"smtp_host"`
		SMTPPort  int    `toml:"smtp_port"`
		Sender    string `toml:"sender"`
		Password  string `toml:"password"`
		Recipient string `toml:"recipient"`
	} `toml:"email"`

	Desktop struct {
		Enabled bool `toml:"enabled"`
	} `toml:"desktop"`

	Scraping struct {
		UserAgents     []string `toml:"user_agents"`
		RequestTimeout string   `toml:"request_timeout"`
		MaxRetries     int      `toml:"max_retries"`
		RetryBackoff   string   `toml:"retry_backoff"`
		CaptchaBackoff string   `toml:"captcha_backoff"`
		RequestDelay   string   `toml:"request_delay"`
		JitterMax      string   `toml:"jitter_max"`
		MaxPrice       float64  `toml:"max_price"`
	} `toml:"scraping"`

	Notification struct {
		CooldownHours int `toml:"cooldown_hours"`
	} `toml:"notification"`

	Scheduler struct {
		CheckInterval string `toml:"check_interval"`
	} `toml:"scheduler"`

	Cache struct {
		Enabled  bool   `toml:"enabled"`
		Addr     string `toml:"addr"`
		Password string `toml:"password"`
		DB       int    `toml:"db"`
	} `toml:"cache"`
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
}

// GetConfig reads the TOML config at path. A missing file is not an error:
// every setting has a documented default (24h check interval, both
// notification channels disabled, local MongoDB).
func GetConfig(path string) (*Config, error) {
	var tc tomlConfig
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &tc); err != nil {
			return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "failed to stat config file with path: %s", path)
	}

	c := &Config{
		ServerAddress: tc.ServerAddress,
		DatabaseURI:   tc.DatabaseURI,
		LogLevel:      tc.LogLevel,
		LogToFile:     tc.LogToFile,
		LogFilePath:   tc.LogFilePath,
		Email: EmailConfig{
			Enabled:   tc.Email.Enabled,
			SMTPHost:  tc.Email.SMTPHost,
			SMTPPort:  tc.Email.SMTPPort,
			Sender:    tc.Email.Sender,
			Password:  tc.Email.Password,
			Recipient: tc.Email.Recipient,
		},
		Desktop:    DesktopConfig{Enabled: tc.Desktop.Enabled},
		UserAgents: tc.Scraping.UserAgents,
		MaxRetries: tc.Scraping.MaxRetries,
		MaxPrice:   tc.Scraping.MaxPrice,
		Cache: CacheConfig{
			Enabled:  tc.Cache.Enabled,
			Addr:     tc.Cache.Addr,
			Password: tc.Cache.Password,
			DB:       tc.Cache.DB,
		},
	}

	if c.ServerAddress == "" {
		c.ServerAddress = "localhost:8888"
	}
	if c.DatabaseURI == "" {
		c.DatabaseURI = "mongodb://localhost:27017"
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.LogFilePath == "" {
		c.LogFilePath = "pricewatch.log"
	}
	if len(c.UserAgents) == 0 {
		c.UserAgents = defaultUserAgents
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.MaxPrice <= 0 {
		c.MaxPrice = 1000000
	}
	if c.Cache.Addr == "" {
		c.Cache.Addr = "localhost:6379"
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}

	var err error
	if c.RequestTimeout, err = durationOrDefault(tc.Scraping.RequestTimeout, 10*time.Second); err != nil {
		return nil, errors.Wrap(err, "invalid scraping.request_timeout")
	}
	if c.RetryBackoff, err = durationOrDefault(tc.Scraping.RetryBackoff, 2*time.Second); err != nil {
		return nil, errors.Wrap(err, "invalid scraping.retry_backoff")
	}
	if c.CaptchaBackoff, err = durationOrDefault(tc.Scraping.CaptchaBackoff, 30*time.Second); err != nil {
		return nil, errors.Wrap(err, "invalid scraping.captcha_backoff")
	}
	if c.RequestDelay, err = durationOrDefault(tc.Scraping.RequestDelay, 2*time.Second); err != nil {
		return nil, errors.Wrap(err, "invalid scraping.request_delay")
	}
	if c.JitterMax, err = durationOrDefault(tc.Scraping.JitterMax, 5*time.Second); err != nil {
		return nil, errors.Wrap(err, "invalid scraping.jitter_max")
	}
	if c.CheckInterval, err = durationOrDefault(tc.Scheduler.CheckInterval, 24*time.Hour); err != nil {
		return nil, errors.Wrap(err, "invalid scheduler.check_interval")
	}
	if c.CheckInterval < 15*time.Second {
		return nil, errors.Errorf("check_interval too short (%v), minimum interval: 15s", c.CheckInterval)
	}

	if tc.Notification.CooldownHours < 0 {
		return nil, errors.Errorf("invalid notification.cooldown_hours: %d", tc.Notification.CooldownHours)
	}
	c.Cooldown = time.Duration(tc.Notification.CooldownHours) * time.Hour
	if tc.Notification.CooldownHours == 0 {
		c.Cooldown = 24 * time.Hour
	}

	if c.Email.Enabled {
		if c.Email.SMTPHost == "" || c.Email.Sender == "" || c.Email.Recipient == "" {
			return nil, errors.New("email.enabled requires smtp_host, sender and recipient")
		}
	}

	return c, nil
}

func durationOrDefault(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse duration: %s", s)
	}
	if d < 0 {
		return 0, errors.Errorf("negative duration: %s", s)
	}
	return d, nil
}
