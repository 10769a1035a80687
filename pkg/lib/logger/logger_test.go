package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		wantErr bool
	}{
		{name: "local", env: "local"},
		{name: "dev", env: "dev"},
		{name: "prod", env: "prod"},
		{name: "unknown env", env: "staging", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := setupLogger(tt.env, &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, log)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestSetupLogger_ProdSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	log, err := setupLogger("prod", &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	assert.Zero(t, buf.Len())

	log.With("op", "test").Info("shown", "count", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "test", rec["op"])
	assert.EqualValues(t, 3, rec["count"])
}

func TestSetupLogger_LocalWritesPrettyLine(t *testing.T) {
	var buf bytes.Buffer
	log, err := setupLogger("local", &buf)
	require.NoError(t, err)

	log.With("op", "test").Warn("cart reset")

	assert.Contains(t, buf.String(), "cart reset")
	assert.Contains(t, buf.String(), `"op": "test"`)
}
