package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/contextref/internal/logging"
	"github.com/mesh-intelligence/contextref/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "CONTEXTREF"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyMongoURI      = "mongo_uri"
	cfgKeyMongoDatabase = "mongo_database"
	cfgKeyLogLevel      = "log_level"
	cfgKeyLogFormat     = "log_format"

	defaultBackend   = types.BackendSQLite
	defaultLogLevel  = "warn"
	defaultLogFormat = string(logging.FormatConsole)
)

// fileConfig is the shape of config.yaml.
type fileConfig struct {
	Backend       string        `yaml:"backend" mapstructure:"backend"`
	DataDir       string        `yaml:"data_dir,omitempty" mapstructure:"data_dir"`
	MongoURI      string        `yaml:"mongo_uri,omitempty" mapstructure:"mongo_uri"`
	MongoDatabase string        `yaml:"mongo_database,omitempty" mapstructure:"mongo_database"`
	LogLevel      string        `yaml:"log_level" mapstructure:"log_level"`
	LogFormat     string        `yaml:"log_format" mapstructure:"log_format"`
	Models        []modelConfig `yaml:"models" mapstructure:"models"`
}

// modelConfig declares one model. A model with a context block is a child
// that can point at a parent.
type modelConfig struct {
	Name    string         `yaml:"name" mapstructure:"name"`
	Fields  []string       `yaml:"fields,omitempty" mapstructure:"fields"`
	Context *types.Options `yaml:"context,omitempty" mapstructure:"context"`
}

// defaultModels seeds a fresh config.yaml.
func defaultModels() []modelConfig {
	return []modelConfig{
		{Name: "Post", Fields: []string{"title"}},
		{Name: "Article", Fields: []string{"title"}},
		{Name: "Comment", Fields: []string{"body"}, Context: &types.Options{ContextTypes: []string{"Post", "Article"}}},
	}
}

// loadConfig reads config.yaml from configDir with viper. It creates the
// directory and a default config.yaml on first run. Environment variables
// prefixed CONTEXTREF_ override scalar keys.
func loadConfig(configDir string) (fileConfig, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fileConfig{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt), ""); err != nil {
		return fileConfig{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyMongoURI, "")
	v.SetDefault(cfgKeyMongoDatabase, types.DefaultMongoDatabase)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyLogFormat, defaultLogFormat)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fileConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg fileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return fileConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. An existing file is left alone.
func writeConfigIfMissing(path, dataDir string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	cfg := fileConfig{
		Backend:   defaultBackend,
		DataDir:   dataDir,
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
		Models:    defaultModels(),
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
