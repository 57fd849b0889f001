package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "http://localhost:11434/v1", config.Host)
	assert.Equal(t, "nomic-embed-text", config.Model)
	assert.Equal(t, 30*time.Second, config.Timeout)
	require.NoError(t, config.Validate())
}

func TestNewConfig_Options(t *testing.T) {
	config := NewConfig(
		WithHost("http://embeddings.internal:8080/v1"),
		WithModel("text-embedding-3-small"),
		WithTimeout(5*time.Second),
	)

	assert.Equal(t, "http://embeddings.internal:8080/v1", config.Host)
	assert.Equal(t, "text-embedding-3-small", config.Model)
	assert.Equal(t, 5*time.Second, config.Timeout)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  ConfigOption
		wantErr string
	}{
		{name: "missing host", mutate: WithHost("  "), wantErr: "embedding host required"},
		{name: "missing model", mutate: WithModel(""), wantErr: "embedding model required"},
		{name: "zero timeout", mutate: WithTimeout(0), wantErr: "timeout must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewConfig(tt.mutate)
			err := config.Validate()
			require.Error(t, err)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
