// Package config defines the uninstall scheduler's configuration surface
// (spec §6) and the viper/cobra/ghodss-yaml bootstrap that populates it,
// in the idiom of determined-ai/determined's cmd/determined-master/root.go.
package config

import (
	"encoding/json"
	"os"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// StoreType selects the persistent Store implementation.
type StoreType string

// Recognized store backends.
const (
	StoreMemory   StoreType = "memory"
	StorePostgres StoreType = "postgres"
)

// SecretsClientType selects the secrets.Client implementation. An empty
// value means no secrets client is configured, which per spec §6 omits the
// TLS-cleanup phase entirely.
type SecretsClientType string

// Recognized secrets client backends.
const (
	SecretsClientNone       SecretsClientType = ""
	SecretsClientKubernetes SecretsClientType = "kubernetes"
)

// Config is the uninstall scheduler's full configuration surface.
type Config struct {
	ConfigFile string `json:"config_file"`

	Service struct {
		// Name is the namespace under which all persisted state lives, and
		// the secrets namespace (spec §6).
		Name string `json:"name"`
	} `json:"service"`

	Uninstall struct {
		// Enabled gates this scheduler variant at all (spec §6).
		Enabled bool `json:"enabled"`
	} `json:"uninstall"`

	Secrets struct {
		Client SecretsClientType `json:"client"`
	} `json:"secrets"`

	Store struct {
		Type     StoreType `json:"type"`
		Postgres struct {
			URL           string `json:"url"`
			MigrationsDir string `json:"migrations_dir"`
		} `json:"postgres"`
	} `json:"store"`

	HTTP struct {
		ListenAddress string `json:"listen_address"`
	} `json:"http"`

	Log struct {
		Level string `json:"level"`
	} `json:"log"`
}

// DefaultConfig returns the configuration used when no file, flag, or
// environment variable overrides a given field.
func DefaultConfig() *Config {
	c := &Config{}
	c.Store.Type = StoreMemory
	c.Store.Postgres.MigrationsDir = "internal/store/migrations"
	c.HTTP.ListenAddress = ":8080"
	c.Log.Level = "info"
	return c
}

// Printable renders the config as indented JSON for startup logging.
func (c *Config) Printable() (string, error) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshal config for logging")
	}
	return string(b), nil
}

// Load reads configuration from the viper instance v (already populated by
// cobra flags and environment variables), merges in the config file it
// names if any, and returns the fully resolved Config. Grounded on the
// teacher's initializeConfig/readConfigFile/mergeConfigBytesIntoViper
// sequence: fetch once to find ConfigFile, merge the file into viper, fetch
// again for the final settings.
func Load(v *viper.Viper) (*Config, error) {
	initial, err := fromSettings(v.AllSettings())
	if err != nil {
		return nil, err
	}

	bs, err := readConfigFile(initial.ConfigFile)
	if err != nil {
		return nil, err
	}
	if len(bs) > 0 {
		var configMap map[string]interface{}
		if err := yaml.Unmarshal(bs, &configMap); err != nil {
			return nil, errors.Wrap(err, "unmarshal yaml configuration file")
		}
		if err := v.MergeConfigMap(configMap); err != nil {
			return nil, errors.Wrap(err, "merge configuration file into viper")
		}
	}

	return fromSettings(v.AllSettings())
}

func readConfigFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			log.Warnf("no configuration file at %s, skipping", path)
			return nil, nil
		}
		return nil, errors.Wrap(err, "find configuration file")
	}
	bs, err := os.ReadFile(path) // #nosec G304 -- operator-provided path
	if err != nil {
		return nil, errors.Wrap(err, "read configuration file")
	}
	return bs, nil
}

func fromSettings(settings map[string]interface{}) (*Config, error) {
	config := DefaultConfig()
	bs, err := json.Marshal(settings)
	if err != nil {
		return nil, errors.Wrap(err, "marshal viper settings to json")
	}
	if err := yaml.Unmarshal(bs, config); err != nil {
		return nil, errors.Wrap(err, "unmarshal configuration")
	}
	return config, nil
}
