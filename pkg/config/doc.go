// Package config loads typed configuration structs from environment
// variables using github.com/caarlos0/env, with optional .env files read by
// github.com/joho/godotenv.
//
// Each component owns its struct (pg.Config, redis.Config,
// httpserver.Config) and the binary loads them one by one:
//
//	var pgCfg pg.Config
//	if err := config.Load(&pgCfg); err != nil {
//	    return err
//	}
//
// LoadFrom and LoadFile parse from an explicit set of variables, which keeps
// tests independent of the process environment.
package config
