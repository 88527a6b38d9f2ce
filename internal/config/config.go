package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ProgressBackendPostgres = "postgres"
	ProgressBackendRedis    = "redis"
)

type Config struct {
	Env        string     `yaml:"env" env-default:"local"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Postgres   Postgres   `yaml:"postgres"`
	JWT        JWT        `yaml:"jwt"`
	ES         ES         `yaml:"elasticsearch"`
	Minio      Minio      `yaml:"minio"`
	Redis      Redis      `yaml:"redis"`
	Upload     Upload     `yaml:"upload"`
	Playback   Playback   `yaml:"playback"`
}

type Minio struct {
	Endpoint  string                  `yaml:"endpoint" env-default:"minio:9000"`
	AccessKey string                  `yaml:"access_key"`
	SecretKey string                  `yaml:"secret_key"`
	UseSSL    bool                    `yaml:"use_ssl"`
	Buckets   map[string]BucketConfig `yaml:"buckets"`
}

type BucketConfig struct {
	Name       string        `yaml:"name"`
	PresignTTL time.Duration `yaml:"presign_ttl"`
}

type ES struct {
	Hosts    []string `yaml:"hosts"`
	Index    string   `yaml:"index" env-default:"presentations"`
	Password string   `yaml:"password"`
}

// JWT holds the key shared with the identity service that issues tokens.
type JWT struct {
	SecretKey string `yaml:"secret_key" env:"JWT_SECRET_KEY"`
	Issuer    string `yaml:"issuer"`
}

type Postgres struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type Redis struct {
	Addr     string        `yaml:"addr" env-default:"localhost:6379"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix" env-default:"liqlearns:progress"`
	TTL      time.Duration `yaml:"ttl"`
}

type Upload struct {
	MaxBytes     int64 `yaml:"max_bytes" env-default:"104857600"`
	ParseWorkers int   `yaml:"parse_workers" env-default:"4"`
}

type Playback struct {
	AutoplayInterval time.Duration `yaml:"autoplay_interval" env-default:"5s"`
	ProgressBackend  string        `yaml:"progress_backend" env-default:"postgres"`
	FlushTimeout     time.Duration `yaml:"flush_timeout" env-default:"5s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" env-default:"3s"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8081"`
	Timeout     time.Duration `yaml:"timeout" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	CORSOrigins []string      `yaml:"cors_origins"`
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file not exist: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Can not read config file %s", err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
