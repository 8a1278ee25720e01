// Copyright © 2021 Gridfinity, LLC. <admin@gridfinity.com>.
//
// All rights reserved.
//
// All use of this code is governed by the MIT license.
// The complete license is available in the LICENSE file.

package gfdrbg // import "github.com/johnsonjh/gfdrbg"

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config selects the generator built by Factory.CreateFromConfig
type Config struct {
	Spec                string `env:"GFDRBG_SPEC" envDefault:"CTR-AES-256"`
	PredictionResistant bool   `env:"GFDRBG_PREDICTION_RESISTANT" envDefault:"false"`
	Personalization     string `env:"GFDRBG_PERSONALIZATION"`
	HealthCheck         bool   `env:"GFDRBG_HEALTH_CHECK" envDefault:"true"`
	SelfSeed            bool   `env:"GFDRBG_SELF_SEED" envDefault:"true"`
}

// LoadConfig reads the environment, after loading any of files that
// exist (".env" when none are given).
func LoadConfig(
	files ...string,
) (
	*Config,
	error,
) {
	err := godotenv.Load(
		files...,
	)
	if err != nil && !errors.Is(
		err,
		os.ErrNotExist,
	) {
		return nil, errors.Wrap(
			err,
			"load env file",
		)
	}
	cfg := &Config{}
	err = env.Parse(
		cfg,
	)
	if err != nil {
		return nil, errors.Wrap(
			err,
			"parse env",
		)
	}
	return cfg, nil
}

// NewFactoryFromConfig returns a Factory honoring cfg, self-seeded when
// cfg.SelfSeed is set.
func NewFactoryFromConfig(
	cfg *Config,
	opts ...FactoryOption,
) (
	*Factory,
	error,
) {
	base := []FactoryOption{
		WithHealthCheck(
			cfg.HealthCheck,
		),
	}
	if cfg.Personalization != "" {
		base = append(
			base,
			WithPersonalization([]byte(cfg.Personalization)),
		)
	}
	f := NewFactory(
		append(base, opts...)...,
	)
	if cfg.SelfSeed {
		err := f.SelfSeed()
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}
