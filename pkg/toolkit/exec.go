package toolkit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// maxStderr bounds how much of a failing program's stderr ends up in an error.
const maxStderr = 2048

// runCommand runs name with args, feeding stdin, and returns stdout.
func runCommand(ctx context.Context, logger *slog.Logger, stdin io.Reader, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	loggerOrDefault(logger).Debug("running external program",
		slog.String("command", name),
		slog.String("args", strings.Join(args, " ")),
	)

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("%s: %w%s", name, err, stderrSuffix(stderr.Bytes()))
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

func stderrSuffix(stderr []byte) string {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return ""
	}
	if len(msg) > maxStderr {
		msg = msg[len(msg)-maxStderr:]
	}
	return ": " + msg
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
