package referral

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/wolfman30/referral-service/internal/notify"
	"github.com/wolfman30/referral-service/pkg/logging"
	"go.opentelemetry.io/otel/trace"
)

// Local part, "@", domain, and a TLD of at least two characters.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// ValidEmail reports whether addr looks like a deliverable address.
func ValidEmail(addr string) bool {
	return emailPattern.MatchString(addr)
}

// Dispatcher sends referral emails and converts every transport failure into
// a (sent, detail) outcome, so one recipient's failure never aborts the
// other's send and nothing propagates past this boundary.
type Dispatcher struct {
	sender notify.EmailSender
	logger *logging.Logger
}

// NewDispatcher creates a dispatcher over the given sender.
func NewDispatcher(sender notify.EmailSender, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{sender: sender, logger: logger}
}

// Dispatch attempts a single send. It never returns an error: failures come
// back as (false, reason) with the reason categorized as an authentication,
// connection, or unclassified transport problem.
func (d *Dispatcher) Dispatch(ctx context.Context, msg notify.EmailMessage) (bool, string) {
	if d.sender == nil {
		return false, "email transport not configured"
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		detail := classifySendFailure(err)
		d.logger.Warn("referral email send failed", "to", msg.To, "detail", detail)
		trace.SpanFromContext(ctx).RecordError(err)
		return false, detail
	}
	return true, "sent"
}

func classifySendFailure(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Sprintf("connection failure: %v", err)
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "credential") || strings.Contains(s, "authent") ||
		strings.Contains(s, "authoriz") || strings.Contains(s, "access denied") ||
		strings.Contains(s, "401") || strings.Contains(s, "403"):
		return fmt.Sprintf("authentication failure: %v", err)
	case strings.Contains(s, "connection") || strings.Contains(s, "dial") ||
		strings.Contains(s, "timeout") || strings.Contains(s, "no such host"):
		return fmt.Sprintf("connection failure: %v", err)
	default:
		return fmt.Sprintf("send failure: %v", err)
	}
}
