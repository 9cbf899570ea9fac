package notify

import (
	"context"
	"log/slog"

	"github.com/healthmate/server/pkg/slogx"
)

// LogNotifier writes the OTP to the log instead of sending it. Only meant
// for local development and the end-to-end suite.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) SendOTP(ctx context.Context, email, otp string) error {
	l := n.Logger
	if l == nil {
		l = slogx.FromContext(ctx)
	}
	l.InfoContext(ctx, "otp issued", slog.String("email", email), slog.String("otp", otp))
	return nil
}
