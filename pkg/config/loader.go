package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// Load reads the process environment into v according to its `env` tags.
// The first call loads a .env file from the working directory, if present;
// values already set in the environment win over the file.
//
//	type appConfig struct {
//		Env       string        `env:"APP_ENV" envDefault:"development"`
//		PlansFile string        `env:"PLANS_FILE"`
//		LockTTL   time.Duration `env:"MUTATION_LOCK_TTL" envDefault:"30s"`
//	}
//
//	var cfg appConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
	return parse(v, env.Options{})
}

// LoadFrom reads configuration from the given variables only, ignoring the
// process environment. Useful in tests.
func LoadFrom[T any](v *T, environ map[string]string) error {
	return parse(v, env.Options{Environment: environ})
}

// LoadFile reads configuration from a dotenv file, ignoring the process environment.
func LoadFile[T any](v *T, path string) error {
	environ, err := godotenv.Read(path)
	if err != nil {
		return errors.Join(ErrReadingEnvFile, err)
	}
	return LoadFrom(v, environ)
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

func parse[T any](v *T, opts env.Options) error {
	if v == nil {
		return ErrNilPointer
	}
	if err := env.ParseWithOptions(v, opts); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}
