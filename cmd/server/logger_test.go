package main

import (
	"metagen/internal/config"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerWritesFile(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
	})

	path := filepath.Join(t.TempDir(), "logs", "metagen.log")
	closeLog, err := setupLogger(config.Config{
		LogLevel:      "debug",
		LogFile:       path,
		LogMaxSizeMB:  1,
		LogMaxBackups: 1,
		LogMaxAgeDays: 1,
	})
	require.NoError(t, err)

	logrus.WithField("task_id", "t-1").Debug("task_file_done")
	closeLog()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"task_file_done"`)
	assert.Contains(t, string(raw), `"task_id":"t-1"`)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}

func TestSetupLoggerRejectsLevel(t *testing.T) {
	_, err := setupLogger(config.Config{LogLevel: "loud"})
	assert.Error(t, err)
}
