package types

import "errors"

// Config holds backend selection and parameters for opening a Store.
type Config struct {
	Backend       string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir       string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	MongoURI      string `json:"mongo_uri,omitempty" yaml:"mongo_uri,omitempty" mapstructure:"mongo_uri"`
	MongoDatabase string `json:"mongo_database,omitempty" yaml:"mongo_database,omitempty" mapstructure:"mongo_database"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// DefaultMongoDatabase is used when Config.MongoDatabase is empty.
const DefaultMongoDatabase = "contextref"

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrMongoURIEmpty  = errors.New("mongo backend requires mongo_uri")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
	BackendMongo:  true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendMongo && c.MongoURI == "" {
		return ErrMongoURIEmpty
	}
	return nil
}

// Database returns the configured Mongo database name or the default.
func (c Config) Database() string {
	if c.MongoDatabase == "" {
		return DefaultMongoDatabase
	}
	return c.MongoDatabase
}
