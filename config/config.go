// Package config loads application settings from an optional YAML file,
// a .env file and the process environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"PrescriptionPad/storage"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     int    `yaml:"port"`
	GinMode  string `yaml:"ginMode"`
	LogLevel string `yaml:"logLevel"`

	Storage StorageConfig `yaml:"storage"`

	UsersCSV       string   `yaml:"usersCsv"`
	BackupSchedule string   `yaml:"backupSchedule"`
	BackupDir      string   `yaml:"backupDir"`
	CORSOrigins    []string `yaml:"corsOrigins"`

	// EnvFileErr is why .env could not be loaded; the caller logs it and carries on
	EnvFileErr error `yaml:"-"`
}

type StorageConfig struct {
	Driver          string `yaml:"driver"`
	LevelDBPath     string `yaml:"leveldbPath"`
	MongoURI        string `yaml:"mongoUri"`
	MongoDatabase   string `yaml:"mongoDatabase"`
	MongoCollection string `yaml:"mongoCollection"`
	RedisAddr       string `yaml:"redisAddr"`
	RedisPassword   string `yaml:"redisPassword"`
	RedisDB         int    `yaml:"redisDb"`
}

func Default() Config {
	return Config{
		Port:     8080,
		GinMode:  "release",
		LogLevel: "info",
		Storage: StorageConfig{
			Driver:          storage.DriverLevelDB,
			LevelDBPath:     "data/prescriptions",
			MongoDatabase:   "prescriptionpad",
			MongoCollection: "KEY_VALUE",
		},
		UsersCSV:    "users.csv",
		BackupDir:   "backups",
		CORSOrigins: []string{"*"},
	}
}

/*
* Start from the defaults, overlay the YAML file when a path is given
* Then overlay the environment, .env included
 */
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	cfg.EnvFileErr = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString("GIN_MODE", &cfg.GinMode)
	setString("LOG_LEVEL", &cfg.LogLevel)
	setString("STORAGE_DRIVER", &cfg.Storage.Driver)
	setString("LEVELDB_PATH", &cfg.Storage.LevelDBPath)
	setString("MONGO_URI", &cfg.Storage.MongoURI)
	setString("MONGO_DATABASE", &cfg.Storage.MongoDatabase)
	setString("MONGO_COLLECTION", &cfg.Storage.MongoCollection)
	setString("REDIS_ADDR", &cfg.Storage.RedisAddr)
	setString("REDIS_PASSWORD", &cfg.Storage.RedisPassword)
	setString("USERS_CSV", &cfg.UsersCSV)
	setString("BACKUP_SCHEDULE", &cfg.BackupSchedule)
	setString("BACKUP_DIR", &cfg.BackupDir)
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if err := setInt("PORT", &cfg.Port); err != nil {
		return err
	}
	return setInt("REDIS_DB", &cfg.Storage.RedisDB)
}

func (c Config) validate() error {
	switch c.Storage.Driver {
	case storage.DriverLevelDB, storage.DriverMongo, storage.DriverRedis, storage.DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown gin mode %q", c.GinMode)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if len(c.CORSOrigins) == 0 {
		return errors.New("at least one CORS origin required")
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:          c.Storage.Driver,
		LevelDBPath:     c.Storage.LevelDBPath,
		MongoURI:        c.Storage.MongoURI,
		MongoDatabase:   c.Storage.MongoDatabase,
		MongoCollection: c.Storage.MongoCollection,
		RedisAddr:       c.Storage.RedisAddr,
		RedisPassword:   c.Storage.RedisPassword,
		RedisDB:         c.Storage.RedisDB,
	}
}

func setString(key string, target *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*target = v
	}
}

func setInt(key string, target *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be a number: %w", key, err)
	}
	*target = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
