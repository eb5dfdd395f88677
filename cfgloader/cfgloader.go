// Package cfgloader provides a simple way to load and validate configuration at the start of an application.
package cfgloader

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvProduction = "production"
	EnvStaging    = "staging"
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvTest       = "test"
)

// Load loads and validates configuration from a YAML file based on the
// ENVIRONMENT variable. The files must be named ${ENVIRONMENT}.yaml and live
// in the config directory at the root of the project.
//
// The configuration struct should use `yaml` struct tags to map fields to the
// YAML file structure. Environment variable references in the file are
// expanded before unmarshalling. Default values can be set with the `default`
// struct tag; they are applied before validation when the corresponding
// fields are not defined in the file. Validations use the
// go-playground/validator package.
//
// Example:
//
//	type Config struct {
//	    Logger  logger.Config  `yaml:"logger"`
//	    Tracing tracing.Config `yaml:"tracing"`
//	    Port    int            `yaml:"port" default:"8080"`
//	}
func Load[T any]() (T, error) {
	var config T

	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	if !slices.Contains([]string{EnvProduction, EnvStaging, EnvDev, EnvLocal, EnvTest}, env) {
		return config, errx.New(
			"ENVIRONMENT env variable is not set or invalid. Choices are: production, staging, dev, local, test",
		)
	}

	configPath := fmt.Sprintf("./config/%s.yaml", env)

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return config, errx.New(fmt.Sprintf(
			"config file not found in the path %s - make sure the yaml file exists for each environment",
			configPath,
		))
	}
	if err != nil {
		return config, errx.Wrap(err)
	}

	// expand ${VAR} references before unmarshalling
	data = []byte(os.ExpandEnv(string(data)))

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errx.Wrap(err)
	}

	if err := defaults.Set(&config); err != nil {
		return config, errx.Wrap(err)
	}

	if err := validate(&config, env); err != nil {
		return config, err
	}

	return config, nil
}

// MustLoad is like Load but logs the failure and exits the process,
// matching the fail-fast expectation at application startup.
func MustLoad[T any]() T {
	config, err := Load[T]()
	if err != nil {
		slog.Error(fmt.Sprintf("[cfgloader]: %v", err))
		os.Exit(1)
	}
	return config
}

func validate(config any, env string) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(config)

	failedFields := make([]string, 0)
	if errs, ok := err.(validator.ValidationErrors); ok { //nolint:errorlint // validator errors handling
		for _, err := range errs {
			tagErr := err.Tag()
			if err.Param() != "" {
				tagErr += fmt.Sprintf("=%s", err.Param())
			}
			failedFields = append(failedFields, fmt.Sprintf("%s: %s", err.Namespace(), tagErr))
		}
	}

	if len(failedFields) > 0 {
		return errx.New(fmt.Sprintf(
			"invalid fields in %s config -> %s", env, strings.Join(failedFields, ",  "),
		))
	}

	return nil
}
