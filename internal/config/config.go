package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // минуты
	} `yaml:"jwt"`

	WS struct {
		HandshakeTimeout int `yaml:"handshake_timeout"` // секунды; 0 = 10s
		SendBuffer       int `yaml:"send_buffer"`       // размер канала Send клиента; 0 = 256
	} `yaml:"ws"`
}

var AppConfig *Config

// LoadConfig загружает конфигурацию: config.yaml + .env,
// переменные окружения имеют приоритет над файлом.
func LoadConfig() {
	var cfg Config

	// .env опционален (dev-окружение)
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	if f, err := os.Open(configPath); err == nil {
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			f.Close()
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}
		f.Close()
	}

	// Переменные окружения перекрывают файл
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Port, _ = strconv.Atoi(v)
	}
	if v := os.Getenv("SERVER_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_TTL"); v != "" {
		cfg.JWT.TTL, _ = strconv.Atoi(v)
	}

	// Дефолты
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 60 * 24
	}
	if cfg.WS.HandshakeTimeout == 0 {
		cfg.WS.HandshakeTimeout = 10
	}
	if cfg.WS.SendBuffer == 0 {
		cfg.WS.SendBuffer = 256
	}

	if cfg.JWT.Secret == "" {
		log.Fatal("JWT secret is not configured (config.yaml jwt.secret or JWT_SECRET)")
	}

	AppConfig = &cfg
}
