package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env              string // DEV (local; default), TEST, QA, PROD
		Debug            bool
		TestMode         bool
		AppName          string
		Build            string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		PasswordResetTimeoutDelta time.Duration
		RollbarToken              string
		SendgridApiKey            string

		Server   ServerConfig
		Login    LoginConfig
		Database DatabaseConfig
		Uploads  UploadsConfig
		Redis    RedisConfig
		Nats     NatsConfig
		Cache    CacheConfig
	}

	ServerConfig struct {
		Address                   string
		DebugAddress              string
		Host                      string
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		ShutdownTimeout           time.Duration
		CORSOrigins               []string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	LoginConfig struct {
		MaxAttempts  int64
		LockoutDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite file
	}

	UploadsConfig struct {
		Dir   string
		MaxMB int64
	}

	RedisConfig struct {
		Address  string
		Password string
		DB       int
	}

	NatsConfig struct {
		URL string
	}

	CacheConfig struct {
		PublicTTL time.Duration
	}
)

func (dbc DatabaseConfig) Address() string {
	if dbc.Port == "" {
		return dbc.Host
	}
	return dbc.Host + ":" + dbc.Port
}

func (dbc DatabaseConfig) IsSQLite() bool {
	return dbc.Engine == "sqlite"
}

// MaxUploadBytes is the largest accepted upload body.
func (uc UploadsConfig) MaxUploadBytes() int64 {
	return uc.MaxMB * 1024 * 1024
}

// NewConfig reads the configuration for the environment named by ENV.
// Variables are looked up with the env name as prefix, e.g. PROD_SECRET_KEY or PROD_DATABASE_HOST.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", env != "PROD")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("appName", "Chikoro")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "k2v!p9-rtc6#w+0s3@h4mz1)qx8^d5e_a7u(jy$lfgnb")
	v.SetDefault("frontendBaseURL", "http://localhost:5173")
	v.SetDefault("defaultFromEmail", "Chikoro <noreply@localhost>")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("rollbar.token", "")
	v.SetDefault("sendgrid.apiKey", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.corsOrigins", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("jwt.expirationDelta", 60*time.Minute)
	v.SetDefault("jwt.refreshExpirationDelta", 4*time.Hour)

	v.SetDefault("login.maxAttempts", int64(5))
	v.SetDefault("login.lockoutDelta", 15*time.Minute)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "chikoro")
	v.SetDefault("database.user", "chikoro")
	v.SetDefault("database.password", "chikoro")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", env != "PROD")
	v.SetDefault("database.path", "chikoro.db")

	v.SetDefault("uploads.dir", "./uploads")
	v.SetDefault("uploads.maxMB", int64(10))

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("nats.url", "")
	v.SetDefault("cache.publicTTL", 5*time.Minute)

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if wd, err := os.Getwd(); err == nil {
		dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	v.AutomaticEnv()

	fromEmail, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatal(fmt.Errorf("config.defaultFromEmail: %v", err))
	}

	return &Config{
		Env:                       env,
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		AppName:                   v.GetString("appName"),
		Build:                     v.GetString("build"),
		SecretKey:                 v.GetString("secretKey"),
		FrontendBaseURL:           strings.TrimSuffix(v.GetString("frontendBaseURL"), "/"),
		DefaultFromEmail:          *fromEmail,
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		RollbarToken:              v.GetString("rollbar.token"),
		SendgridApiKey:            v.GetString("sendgrid.apiKey"),
		Server: ServerConfig{
			Address:                   v.GetString("server.address"),
			DebugAddress:              v.GetString("server.debugAddress"),
			Host:                      v.GetString("server.host"),
			ReadTimeout:               v.GetDuration("server.readTimeout"),
			WriteTimeout:              v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			CORSOrigins:               splitList(v.GetString("server.corsOrigins")),
			JWTExpirationDelta:        v.GetDuration("jwt.expirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwt.refreshExpirationDelta"),
		},
		Login: LoginConfig{
			MaxAttempts:  v.GetInt64("login.maxAttempts"),
			LockoutDelta: v.GetDuration("login.lockoutDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			Path:          v.GetString("database.path"),
		},
		Uploads: UploadsConfig{
			Dir:   v.GetString("uploads.dir"),
			MaxMB: v.GetInt64("uploads.maxMB"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Nats:  NatsConfig{URL: v.GetString("nats.url")},
		Cache: CacheConfig{PublicTTL: v.GetDuration("cache.publicTTL")},
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
