package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamedRequiresInit(t *testing.T) {
	saved := Log
	Log = nil
	defer func() { Log = saved }()

	_, err := Named("session")
	assert.Error(t, err)
}

func TestInitLogsToFile(t *testing.T) {
	saved := Log
	defer func() { Log = saved }()

	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Init(Config{Debug: true, LogToFile: true, LogsDir: dir}))

	l, err := Named("export")
	require.NoError(t, err)
	assert.Equal(t, "export", l.Name)
	l.Warnw("export failed", "file", "qr_code")
	_ = l.Sync()

	files, err := filepath.Glob(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	f, err := os.Open(files[0])
	require.NoError(t, err)
	defer f.Close()

	var entry map[string]interface{}
	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
	assert.Equal(t, "export failed", entry["message"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "main.export", entry["logger"])
	assert.Equal(t, "qr_code", entry["file"])
}

func TestInitWithoutFile(t *testing.T) {
	saved := Log
	defer func() { Log = saved }()

	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Init(Config{LogsDir: dir}))
	assert.NoDirExists(t, dir)

	Log.Debug("below info level")
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Infow("dropped", "k", "v") })
}
