package cli

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/toyz/apimod/internal/errors"
	"github.com/toyz/apimod/internal/utils"
)

// ConfigFileName is the project configuration file looked up in the working directory
const ConfigFileName = "apimod.yaml"

// Config holds the configuration for the CLI generator
type Config struct {
	// Paths is the list of directories to scan for .apimod files.
	// Supports Go-style patterns like ./...
	Paths []string `mapstructure:"-"`

	// Verbose enables detailed output
	Verbose bool `mapstructure:"verbose"`
	// Quiet only shows errors and final results
	Quiet bool `mapstructure:"quiet"`
	// Debug installs a development zap logger for the pipeline
	Debug bool `mapstructure:"debug"`
	// Strict turns consistency warnings into errors
	Strict bool `mapstructure:"strict"`

	// Runtime overrides the import path of the support library
	Runtime string `mapstructure:"runtime"`

	// Report is the file the YAML generation report is written to
	Report string `mapstructure:"report"`

	Watch WatchConfig `mapstructure:"watch"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// SetDefaults registers the default value of every configuration key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("debug", false)
	v.SetDefault("strict", false)
	v.SetDefault("runtime", "")
	v.SetDefault("report", "")
	v.SetDefault("watch.debounce", 300*time.Millisecond)
}

// NewViper creates the configuration source. An explicit configFile must
// exist; otherwise apimod.yaml in the working directory is read when present.
// Environment variables use the APIMOD_ prefix (APIMOD_WATCH_DEBOUNCE).
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix("APIMOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(strings.TrimSuffix(ConfigFileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, errors.WrapConfigurationError(ConfigFileName, "read", err).
			WithContext("file", configFile)
	}

	return v, nil
}

// LoadConfig decodes and validates the configuration held by v
func LoadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfigurationError(ConfigFileName, "decode", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	runtime := utils.NewValidatorChain(utils.Optional(utils.IsImportPath("runtime")))
	if err := runtime.Validate(c.Runtime); err != nil {
		return errors.WrapConfigurationError("runtime", "validate", err).
			WithSuggestion("Set runtime to the import path of the apimod support package, e.g. github.com/toyz/apimod/pkg/apimod")
	}

	if c.Verbose && c.Quiet {
		return errors.New(errors.ConfigurationErrorCode, "verbose and quiet cannot both be set")
	}

	if c.Report != "" {
		format := utils.IsOneOf("report", ".yaml", ".yml")
		if err := format(filepath.Ext(c.Report)); err != nil {
			return errors.WrapConfigurationError("report", "validate", err).
				WithSuggestion("The generation report is written as YAML; name it report.yaml")
		}
	}

	debounce := utils.Custom("watch.debounce", "must be positive", func(d time.Duration) bool { return d > 0 })
	if err := debounce(c.Watch.Debounce); err != nil {
		return errors.WrapConfigurationError("watch.debounce", "validate", err)
	}

	return nil
}

// DiagnosticLevel maps the output flags to a diagnostic level
func (c *Config) DiagnosticLevel() utils.DiagnosticLevel {
	switch {
	case c.Quiet:
		return utils.DiagnosticError
	case c.Debug:
		return utils.DiagnosticDebug
	case c.Verbose:
		return utils.DiagnosticVerbose
	default:
		return utils.DiagnosticInfo
	}
}
