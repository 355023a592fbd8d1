// Package config carga la configuración desde variables de entorno PETS_*
// (y .env si existe) y la valida antes de arrancar.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Autoload: si hay un .env se carga en el entorno antes de leerlo.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PETS_"

type Config struct {
	Env      string         `koanf:"env" validate:"required,oneof=local development staging production test"`
	Log      LogConfig      `koanf:"log" validate:"required"`
	Database DatabaseConfig `koanf:"database"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"required,oneof=debug info warn warning error"`
	Format string `koanf:"format" validate:"required,oneof=text json"`
}

// DatabaseConfig: DSN vacío => storage en memoria.
type DatabaseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `koanf:"max_idle_conns" validate:"gte=0"`
	// Trace loguea cada query de pgx con el logger de la app.
	Trace bool `koanf:"trace"`
}

func Default() Config {
	return Config{
		Env: "local",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
	}
}

// Load lee PETS_* sobre los defaults. El primer "_" después del prefijo
// separa la sección: PETS_DATABASE_MAX_OPEN_CONNS -> database.max_open_conns.
func Load() (Config, error) {
	return load(env.Provider(envPrefix, ".", envKey))
}

func load(p koanf.Provider) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(p, nil); err != nil {
		return Config{}, fmt.Errorf("config: load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	cfg.Database.DSN = strings.TrimSpace(cfg.Database.DSN)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// UsesPostgres indica si hay DSN configurado.
func (c Config) UsesPostgres() bool {
	return c.Database.DSN != ""
}
