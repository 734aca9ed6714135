package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	l := New("debug", "")
	require.NotNil(t, l)
	l.Debug().Str("case", "console").Msg("console logger ready")

	dir := filepath.Join(t.TempDir(), "logs")
	l = New("", filepath.Join(dir, "trendscope.log"))
	require.NotNil(t, l)
	l.Info().Msg("file logger ready")
	assert.DirExists(t, dir)
}
