package ocr

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"
	"unicode/utf8"
)

// maxLoggedStderr bounds how much of a failing tool's stderr reaches the log.
const maxLoggedStderr = 8 << 10

// Runner executes an external tool. Engine only uses it for pdftoppm and tesseract.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

// NewExecRunner runs commands with os/exec.
func NewExecRunner(logger *slog.Logger) Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return execRunner{logger: logger}
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	start := time.Now()
	err := cmd.Run()
	attrs := []any{
		"tool", filepath.Base(name),
		"args", args,
		"elapsed_ms", time.Since(start).Milliseconds(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		r.logger.Debug("ocr.exec.ok", append(attrs, "stdout_bytes", stdout.Len())...)
	case errors.As(err, &exitErr):
		r.logger.Error("ocr.exec.failed", append(attrs,
			"exit_code", exitErr.ExitCode(),
			"stderr", clip(stderr.Bytes(), maxLoggedStderr))...)
	default:
		// binary missing or killed by ctx
		r.logger.Error("ocr.exec.failed", append(attrs, "error", err)...)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// clip returns at most n bytes of b as a string without splitting a UTF-8 sequence.
func clip(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	b = b[:n]
	for len(b) > 0 && !utf8.Valid(b) {
		b = b[:len(b)-1]
	}
	return string(b) + "...(truncated)"
}
