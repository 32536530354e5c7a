// verifier/verifier.go
package verifier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Probe status values.
const (
	StatusDeliverable   = "deliverable"
	StatusUndeliverable = "undeliverable"
	StatusUnknown       = "unknown"
)

// Default tunables. All of them can be overridden through config.
const (
	DefaultHeloDomain     = "verify.mailprobe.local"
	DefaultFromEmail      = "verify@mailprobe.local"
	DefaultPort           = "25"
	DefaultConnectTimeout = 10 * time.Second
	DefaultSessionTimeout = 15 * time.Second
	DefaultDNSTimeout     = 5 * time.Second
)

// ErrInvalidAddress is returned for addresses that cannot be split into a
// local part and a domain. It is the only error Verify surfaces; every
// network or protocol failure is folded into an "unknown" result instead.
var ErrInvalidAddress = errors.New("invalid email address")

// Result is the outcome of a single probe.
type Result struct {
	Email   string `json:"email"`
	Status  string `json:"status"` // deliverable, undeliverable, unknown
	Code    int    `json:"code,omitempty"`
	Details string `json:"details"`
}

// Resolver supplies MX records for a domain.
type Resolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// Dialer opens the TCP connection used for the SMTP session.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type Verifier struct {
	Resolver       Resolver
	Dialer         Dialer
	HeloDomain     string
	FromEmail      string
	Port           string
	SessionTimeout time.Duration
	Logger         *logrus.Logger
}

// New returns a Verifier wired to the real resolver and dialer with the
// default tunables.
func New() *Verifier {
	return &Verifier{
		Resolver:       NewCachingResolver(DefaultDNSTimeout),
		Dialer:         &net.Dialer{Timeout: DefaultConnectTimeout},
		HeloDomain:     DefaultHeloDomain,
		FromEmail:      DefaultFromEmail,
		Port:           DefaultPort,
		SessionTimeout: DefaultSessionTimeout,
	}
}

// SplitAddress splits an email address into its local part and domain.
// Both parts must be non-empty and the address must contain exactly one @.
func SplitAddress(email string) (local, domain string, err error) {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidAddress, email)
	}
	return parts[0], parts[1], nil
}

// Verify probes a single address: resolve the domain's MX, connect to the
// most-preferred host on the SMTP port and walk the dialogue up to RCPT TO
// without sending a message. The classification is taken strictly from the
// RCPT TO reply code: 2xx is deliverable, 5xx is undeliverable, anything
// else (including timeouts, refused connections and malformed replies) is
// unknown. One MX, one attempt, no retries.
func (v *Verifier) Verify(ctx context.Context, email string) (*Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	// 1. Split into local part and domain before any network activity
	_, domain, err := SplitAddress(email)
	if err != nil {
		return nil, err
	}

	result := &Result{Email: email, Status: StatusUnknown}

	// 2. Resolve MX records; no records means no server to ask
	records, err := v.Resolver.LookupMX(ctx, domain)
	if err != nil {
		result.Details = "MX lookup failed: " + err.Error()
		return result, nil
	}
	if len(records) == 0 {
		result.Details = "domain has no MX records"
		return result, nil
	}

	// 3. Lowest preference value wins
	host := preferredHost(records)
	addr := net.JoinHostPort(host, v.Port)
	v.logf("probing %s via %s", email, addr)

	// 4. Single-use connection, closed on every exit path
	conn, err := v.Dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		result.Details = "connect failed: " + err.Error()
		return result, nil
	}
	defer conn.Close()

	// Deadline covers the whole dialogue, greeting included
	if err := conn.SetDeadline(time.Now().Add(v.SessionTimeout)); err != nil {
		result.Details = "deadline failed: " + err.Error()
		return result, nil
	}

	// 5. Greeting
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		result.Code = replyCode(err)
		result.Details = "greeting failed: " + err.Error()
		return result, nil
	}
	defer client.Close()

	// 6. HELO
	if err := client.Hello(v.HeloDomain); err != nil {
		result.Code = replyCode(err)
		result.Details = "HELO failed: " + err.Error()
		return result, nil
	}

	// 7. MAIL FROM
	if err := client.Mail(v.FromEmail); err != nil {
		result.Code = replyCode(err)
		result.Details = "MAIL FROM failed: " + err.Error()
		return result, nil
	}

	// 8. RCPT TO is the actual reachability test
	err = client.Rcpt(email)
	if err == nil {
		result.Status = StatusDeliverable
		result.Details = "recipient accepted"
		return result, nil
	}

	// 9. Classify on the reply code
	code := replyCode(err)
	result.Code = code
	switch {
	case code >= 200 && code < 300:
		// 2xx outside the 25x family net/smtp accepts on its own
		result.Status = StatusDeliverable
		result.Details = "recipient accepted"
	case code >= 500 && code < 600:
		result.Status = StatusUndeliverable
		result.Details = "recipient rejected: " + err.Error()
	default:
		result.Details = "RCPT TO failed: " + err.Error()
	}
	return result, nil
}

// preferredHost picks the record with the lowest preference value.
func preferredHost(records []*net.MX) string {
	host := records[0].Host
	pref := records[0].Pref
	for _, record := range records[1:] {
		if record.Pref < pref {
			pref = record.Pref
			host = record.Host
		}
	}
	return strings.TrimSuffix(host, ".")
}

// replyCode extracts the SMTP reply code from an error, 0 if there is none.
func replyCode(err error) int {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return tpErr.Code
	}
	return 0
}

func (v *Verifier) logf(format string, args ...interface{}) {
	if v.Logger != nil {
		v.Logger.Debugf(format, args...)
	}
}
