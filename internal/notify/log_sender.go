package notify

import (
	"context"

	"github.com/papertrade/api/internal/logging"
)

// LogSender writes the code to the application log instead of delivering it.
// Used in development and tests where no mail provider is configured.
type LogSender struct {
	logger *logging.Logger
}

func NewLogSender(logger *logging.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendCode(ctx context.Context, email, code string) error {
	s.logger.Info("one-time code issued", "email", email, "code", code)
	return nil
}
