package media

import (
	"log/slog"
	"strings"
	"sync"

	ffmpeg "github.com/linuxmatters/ffmpeg-statigo"

	"hush/internal/logging"
)

var bridgeMu sync.Mutex

// BridgeLogs routes libav* log output into the provided slog logger so
// library diagnostics land in the same stream as pipeline logs. Warnings and
// errors keep their severity; informational chatter is demoted to debug.
func BridgeLogs(logger *slog.Logger) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithComponent(logger, "libav")

	bridgeMu.Lock()
	defer bridgeMu.Unlock()

	ffmpeg.AVLogSetLevel(ffmpeg.AVLogWarning)
	ffmpeg.AVLogSetCallback(func(_ *ffmpeg.LogCtx, level int, msg string) {
		msg = strings.TrimRight(msg, "\n")
		if msg == "" {
			return
		}
		switch {
		case level <= ffmpeg.AVLogError:
			logger.Error(msg)
		case level <= ffmpeg.AVLogWarning:
			logger.Warn(msg)
		default:
			logger.Debug(msg)
		}
	})
}

// ResetLogs restores the default libav* logging behavior.
func ResetLogs() {
	bridgeMu.Lock()
	defer bridgeMu.Unlock()
	ffmpeg.AVLogSetCallback(nil)
}
