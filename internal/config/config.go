package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConf struct {
	Env            string `mapstructure:"env"`
	Port           int    `mapstructure:"port"`
	MetricsPort    int    `mapstructure:"metrics_port"`
	BaseURL        string `mapstructure:"base_url"`
	FrontendURL    string `mapstructure:"frontend_url"`
	CrossOrigin    bool   `mapstructure:"cross_origin"`
	ShutdownSecond int    `mapstructure:"shutdown_seconds"`
}

type MongoConf struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConf struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConf struct {
	Secret     string `mapstructure:"secret"`
	ExpiryDays int    `mapstructure:"expiry_days"`
}

type AWSConf struct {
	Region     string `mapstructure:"region"`
	Bucket     string `mapstructure:"bucket"`
	Endpoint   string `mapstructure:"endpoint"`
	PublicRead bool   `mapstructure:"public_read"`
}

type UploadConf struct {
	MaxSizeMB int `mapstructure:"max_size_mb"`
}

type StreamConf struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

type MailConf struct {
	BrevoAPIKey string `mapstructure:"brevo_api_key"`
	FromEmail   string `mapstructure:"from_email"`
	FromName    string `mapstructure:"from_name"`
}

type GoogleConf struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	CallbackURL  string `mapstructure:"callback_url"`
}

type OTPConf struct {
	TTLMinutes   int `mapstructure:"ttl_minutes"`
	SendsPerHour int `mapstructure:"sends_per_hour"`
}

type StoryConf struct {
	SweepEveryMinutes int `mapstructure:"sweep_every_minutes"`
}

type Config struct {
	App    AppConf    `mapstructure:"app"`
	Mongo  MongoConf  `mapstructure:"mongodb"`
	Redis  RedisConf  `mapstructure:"redis"`
	JWT    JWTConf    `mapstructure:"jwt"`
	AWS    AWSConf    `mapstructure:"aws"`
	Upload UploadConf `mapstructure:"upload"`
	Stream StreamConf `mapstructure:"stream"`
	Mail   MailConf   `mapstructure:"mail"`
	Google GoogleConf `mapstructure:"google"`
	OTP    OTPConf    `mapstructure:"otp"`
	Story  StoryConf  `mapstructure:"stories"`

	// derived
	ShutdownTimeout time.Duration
	JWTExpiry       time.Duration
	OTPTTL          time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.App.Port == 0 {
		cfg.App.Port = 5001
	}
	if cfg.App.ShutdownSecond == 0 {
		cfg.App.ShutdownSecond = 15
	}
	if cfg.JWT.ExpiryDays == 0 {
		cfg.JWT.ExpiryDays = 7
	}
	if cfg.Upload.MaxSizeMB == 0 {
		cfg.Upload.MaxSizeMB = 50
	}
	if cfg.OTP.TTLMinutes == 0 {
		cfg.OTP.TTLMinutes = 10
	}
	if cfg.OTP.SendsPerHour == 0 {
		cfg.OTP.SendsPerHour = 5
	}
	if cfg.Story.SweepEveryMinutes == 0 {
		cfg.Story.SweepEveryMinutes = 10
	}
	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSecond) * time.Second
	cfg.JWTExpiry = time.Duration(cfg.JWT.ExpiryDays) * 24 * time.Hour
	cfg.OTPTTL = time.Duration(cfg.OTP.TTLMinutes) * time.Minute
	return &cfg, nil
}
