package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:   "valid sqlite config",
			config: Config{Backend: "sqlite", DataDir: "/tmp/data"},
		},
		{
			name:   "sqlite with empty DataDir is valid at config level",
			config: Config{Backend: "sqlite", DataDir: ""},
		},
		{
			name:   "memory needs nothing else",
			config: Config{Backend: "memory"},
		},
		{
			name:    "mongo without uri",
			config:  Config{Backend: "mongo"},
			wantErr: ErrMongoURIEmpty,
		},
		{
			name:   "mongo with uri",
			config: Config{Backend: "mongo", MongoURI: "mongodb://localhost:27017"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfigDatabase(t *testing.T) {
	assert.Equal(t, DefaultMongoDatabase, Config{}.Database())
	assert.Equal(t, "blog", Config{MongoDatabase: "blog"}.Database())
}
