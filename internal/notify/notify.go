// Package notify delivers best-effort operational notifications over SMTP.
// Delivery failures are logged and never surfaced to the caller's request.
package notify

import (
	"fmt"
	"time"

	"github.com/dropDatabas3/qrcall/internal/observability/logger"
)

// Sender sends a single email message.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// Noop discards every message. Used when SMTP is not configured.
type Noop struct{}

func (Noop) Send(string, string, string, string) error { return nil }

// ClaimNotifier emails the operations address whenever a code is claimed.
type ClaimNotifier struct {
	sender Sender
	to     string
}

func NewClaimNotifier(sender Sender, to string) *ClaimNotifier {
	if sender == nil {
		sender = Noop{}
	}
	return &ClaimNotifier{sender: sender, to: to}
}

// CodeClaimed fires the notification in the background. Errors are logged.
func (n *ClaimNotifier) CodeClaimed(qrID, userID string, at time.Time) {
	if n == nil || n.to == "" {
		return
	}
	go func() {
		subject := "QR code claimed"
		text := fmt.Sprintf("QR code %s was claimed by user %s at %s.", qrID, userID, at.UTC().Format(time.RFC3339))
		html := fmt.Sprintf("<p>QR code <b>%s</b> was claimed by user <b>%s</b> at %s.</p>", qrID, userID, at.UTC().Format(time.RFC3339))
		if err := n.sender.Send(n.to, subject, html, text); err != nil {
			logger.L().Warn("claim notification failed",
				logger.Component("ClaimNotifier"),
				logger.QRID(qrID),
				logger.Err(err),
			)
		}
	}()
}
