package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ErrTimeStepRequiresDatastore is returned when the time step is enabled without the async datastore
var ErrTimeStepRequiresDatastore = errors.New("to support the time step, you must enable UPLOAD_ASYNC_IMPORT")

// ErrNATSRequired is returned when async imports are enabled without a NATS url
var ErrNATSRequired = errors.New("NATS_URL is required when UPLOAD_ASYNC_IMPORT is enabled")

type Config struct {
	Env      Env
	Minio    MinioConfig
	Upload   FileUploadConfig
	Importer ImporterConfig
	Session  SessionConfig
	NATS     NATSConfig
	Database DatabaseConfig
	Server   ServerConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host           string        `envconfig:"SERVER_HOST" default:"localhost"`
	Port           string        `envconfig:"SERVER_PORT" default:"8080"`
	// RequestTimeout bounds a request, including imports run inline
	RequestTimeout time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"15m"`
}

type MinioConfig struct {
	Endpoint                  string        `envconfig:"MINIO_ENDPOINT" required:"true"`
	BucketName                string        `envconfig:"MINIO_BUCKET_NAME" required:"true"`
	AccessKey                 string        `envconfig:"MINIO_ACCESS_KEY" required:"true"`
	SecretKey                 string        `envconfig:"MINIO_SECRET_KEY" required:"true"`
	DownloadSignedURLDuration time.Duration `envconfig:"MINIO_DOWNLOAD_SIGNED_URL_DURATION" default:"1h"`
	UseSSL                    bool          `envconfig:"MINIO_USE_SSL" default:"false"`
}

type FileUploadConfig struct {
	MaxUploadSize    int64         `envconfig:"UPLOAD_MAX_SIZE" default:"536870912"` // 512MB
	MaxMemory        int64         `envconfig:"UPLOAD_MAX_MEMORY" default:"33554432"` // 32MB
	MinFreeMB        uint64        `envconfig:"UPLOAD_MIN_FREE_MB" default:"64"`
	AllowTimeStep    bool          `envconfig:"UPLOAD_SHOW_TIME_STEP" default:"false"`
	AsyncImport      bool          `envconfig:"UPLOAD_ASYNC_IMPORT" default:"false"`
	ProgressInterval time.Duration `envconfig:"UPLOAD_PROGRESS_INTERVAL" default:"1s"`
	AbandonAfter     time.Duration `envconfig:"UPLOAD_ABANDON_AFTER" default:"72h"`
	CleanupEvery     time.Duration `envconfig:"UPLOAD_CLEANUP_EVERY" default:"1h"`
}

type ImporterConfig struct {
	BaseURL   string        `envconfig:"IMPORTER_URL" required:"true"`
	Workspace string        `envconfig:"IMPORTER_WORKSPACE" default:"geonode"`
	Username  string        `envconfig:"IMPORTER_USER" default:"admin"`
	Password  string        `envconfig:"IMPORTER_PASSWORD" default:"geoserver"`
	Timeout   time.Duration `envconfig:"IMPORTER_TIMEOUT" default:"10m"`
}

type SessionConfig struct {
	Backend       string        `envconfig:"SESSION_BACKEND" default:"bolt"`
	BoltPath      string        `envconfig:"SESSION_BOLT_PATH" default:"upload-sessions.db"`
	RedisAddr     string        `envconfig:"SESSION_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"SESSION_REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"SESSION_REDIS_DB" default:"0"`
	TTL           time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	CookieName    string        `envconfig:"SESSION_COOKIE_NAME" default:"upload_session"`
}

type NATSConfig struct {
	URL          string `envconfig:"NATS_URL"`
	StreamName   string `envconfig:"NATS_STREAM_NAME" default:"IMPORTS"`
	ConsumerName string `envconfig:"NATS_CONSUMER_NAME" default:"import-worker"`
	Subject      string `envconfig:"NATS_SUBJECT" default:"imports.run"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that depend on each other
func (c *Config) Validate() error {
	// the time transforms run against the datastore
	if c.Upload.AllowTimeStep && !c.Upload.AsyncImport {
		return ErrTimeStepRequiresDatastore
	}
	if c.Upload.AsyncImport && c.NATS.URL == "" {
		return ErrNATSRequired
	}
	return nil
}
