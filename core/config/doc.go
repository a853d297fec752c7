// Package config loads environment variables into typed structs.
//
// A .env file in the working directory is read once on first use, then the
// caarlos0/env library fills struct fields from `env` and `envDefault` tags.
// Each struct type is parsed once and cached:
//
//	type ServerConfig struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	config.MustLoad(&cfg)
//
// Variables already present in the environment win over the .env file.
package config
