package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		environment string
		debug       bool
		info        bool
	}{
		{name: "debug development", level: "debug", environment: "development", debug: true, info: true},
		{name: "warn production", level: "WARN", environment: "production", debug: false, info: false},
		{name: "empty level defaults to info", level: "", environment: "", debug: false, info: true},
		{name: "garbage level defaults to info", level: "loud", environment: "", debug: false, info: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.level, tt.environment)
			require.NoError(t, err)
			core := log.Desugar().Core()
			assert.Equal(t, tt.debug, core.Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.info, core.Enabled(zapcore.InfoLevel))
		})
	}
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "*****", Mask("short"))
	assert.Equal(t, "sk-a...wxyz", Mask("sk-abcdefghijklmnopqrstuvwxyz"))
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() { log.Infow("discarded", "k", "v") })
}
