package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// New builds the process logger: console output plus an optional log file.
func New(level, file string) arbor.ILogger {
	logger := arbor.NewLogger().WithConsoleWriter(models.WriterConfiguration{
		Type:       models.LogWriterTypeConsole,
		TimeFormat: "15:04:05",
		OutputType: models.OutputFormatLogfmt,
	})

	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to create log directory: %v\n", err)
		} else {
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   file,
				TimeFormat: "15:04:05",
				MaxSize:    50 * 1024 * 1024,
				MaxBackups: 3,
				OutputType: models.OutputFormatLogfmt,
			})
		}
	}

	if level == "" {
		level = "info"
	}
	return logger.WithLevelFromString(level)
}
