package referral

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wolfman30/referral-service/internal/notify"
	"github.com/wolfman30/referral-service/pkg/logging"
)

type fakeSender struct {
	sent []notify.EmailMessage
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg notify.EmailMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeNetError struct{}

func (fakeNetError) Error() string   { return "dial tcp: i/o timeout" }
func (fakeNetError) Timeout() bool   { return true }
func (fakeNetError) Temporary() bool { return true }

func TestValidEmail(t *testing.T) {
	tests := []struct {
		addr  string
		valid bool
	}{
		{"specialist@clinic.example.com", true},
		{"first.last+tag@example.co", true},
		{"no-at-sign.example.com", false},
		{"missing@tld", false},
		{"@example.com", false},
		{"user@example.c", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidEmail(tt.addr); got != tt.valid {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.addr, got, tt.valid)
		}
	}
}

func TestDispatch_Success(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, logging.Default())

	sent, detail := d.Dispatch(context.Background(), notify.EmailMessage{To: "specialist@example.com"})
	if !sent {
		t.Fatalf("expected success, got detail %q", detail)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sender.sent))
	}
}

func TestDispatch_NeverReturnsError(t *testing.T) {
	d := NewDispatcher(&fakeSender{err: errors.New("boom")}, logging.Default())

	sent, detail := d.Dispatch(context.Background(), notify.EmailMessage{To: "specialist@example.com"})
	if sent {
		t.Fatal("expected failure tuple")
	}
	if detail == "" {
		t.Fatal("expected a descriptive reason")
	}
}

func TestDispatch_ClassifiesFailures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantClass string
	}{
		{"credentials", errors.New("notify: sendgrid rejected credentials (status 401)"), "authentication failure"},
		{"access denied", errors.New("AccessDenied: not authorized to perform ses:SendEmail"), "authentication failure"},
		{"net error", fakeNetError{}, "connection failure"},
		{"connection refused", errors.New("dial tcp 10.0.0.1:443: connection refused"), "connection failure"},
		{"other", errors.New("message rejected: body too large"), "send failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(&fakeSender{err: tt.err}, logging.Default())
			sent, detail := d.Dispatch(context.Background(), notify.EmailMessage{To: "x@example.com"})
			if sent {
				t.Fatal("expected failure")
			}
			if !strings.HasPrefix(detail, tt.wantClass) {
				t.Fatalf("expected %q classification, got %q", tt.wantClass, detail)
			}
		})
	}
}

func TestDispatch_NilSenderReportsMissingTransport(t *testing.T) {
	d := NewDispatcher(nil, logging.Default())

	sent, detail := d.Dispatch(context.Background(), notify.EmailMessage{To: "x@example.com"})
	if sent {
		t.Fatal("expected failure without a transport")
	}
	if !strings.Contains(detail, "not configured") {
		t.Fatalf("expected missing-transport detail, got %q", detail)
	}
}
