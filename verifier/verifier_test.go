package verifier

import (
	"context"
	"io"
	"net"
	"net/textproto"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	records []*net.MX
	err     error
	calls   int32
}

func (r *stubResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	atomic.AddInt32(&r.calls, 1)
	return r.records, r.err
}

type countingDialer struct {
	dialer net.Dialer
	calls  int32
}

func (d *countingDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	atomic.AddInt32(&d.calls, 1)
	return d.dialer.DialContext(ctx, network, address)
}

// fakeSMTPServer accepts connections on a loopback port and answers the
// probe dialogue with canned replies. With silent set it accepts the
// connection and never writes a byte.
type fakeSMTPServer struct {
	ln        net.Listener
	rcptReply string
	silent    bool
	done      chan struct{}
}

func startFakeSMTPServer(t *testing.T, rcptReply string, silent bool) *fakeSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &fakeSMTPServer{ln: ln, rcptReply: rcptReply, silent: silent, done: make(chan struct{})}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *fakeSMTPServer) port() string {
	_, port, _ := net.SplitHostPort(s.ln.Addr().String())
	return port
}

func (s *fakeSMTPServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *fakeSMTPServer) handle(conn net.Conn) {
	defer conn.Close()
	if s.silent {
		// Stall until the client gives up and closes its end.
		io.Copy(io.Discard, conn)
		close(s.done)
		return
	}
	tc := textproto.NewConn(conn)
	defer tc.Close()
	if tc.PrintfLine("220 mail.test ESMTP") != nil {
		return
	}
	for {
		line, err := tc.ReadLine()
		if err != nil {
			return
		}
		verb := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(verb, "EHLO"), strings.HasPrefix(verb, "HELO"):
			tc.PrintfLine("250 mail.test")
		case strings.HasPrefix(verb, "MAIL"):
			tc.PrintfLine("250 sender ok")
		case strings.HasPrefix(verb, "RCPT"):
			tc.PrintfLine("%s", s.rcptReply)
		case strings.HasPrefix(verb, "QUIT"):
			tc.PrintfLine("221 bye")
			return
		default:
			tc.PrintfLine("502 command not implemented")
		}
	}
}

func newTestVerifier(resolver Resolver, port string) (*Verifier, *countingDialer) {
	dialer := &countingDialer{dialer: net.Dialer{Timeout: time.Second}}
	return &Verifier{
		Resolver:       resolver,
		Dialer:         dialer,
		HeloDomain:     "probe.test",
		FromEmail:      "verify@probe.test",
		Port:           port,
		SessionTimeout: time.Second,
	}, dialer
}

func loopbackMX() []*net.MX {
	return []*net.MX{{Host: "127.0.0.1", Pref: 10}}
}

func TestVerifyInvalidAddress(t *testing.T) {
	resolver := &stubResolver{}
	v, dialer := newTestVerifier(resolver, "25")

	for _, email := range []string{"", "no-at-sign", "@nodomain.test", "nolocal@", "two@ats@example.test"} {
		result, err := v.Verify(context.Background(), email)
		assert.ErrorIs(t, err, ErrInvalidAddress, "email %q", email)
		assert.Nil(t, result, "email %q", email)
	}

	assert.Zero(t, atomic.LoadInt32(&resolver.calls), "resolver must not be hit")
	assert.Zero(t, atomic.LoadInt32(&dialer.calls), "dialer must not be hit")
}

func TestVerifyNoMXRecords(t *testing.T) {
	v, dialer := newTestVerifier(&stubResolver{}, "25")

	result, err := v.Verify(context.Background(), "user@example.test")
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, result.Status)
	assert.Zero(t, atomic.LoadInt32(&dialer.calls))
}

func TestVerifyResolutionFailure(t *testing.T) {
	resolver := &stubResolver{err: &net.DNSError{Err: "no such host", Name: "example.test", IsNotFound: true}}
	v, dialer := newTestVerifier(resolver, "25")

	result, err := v.Verify(context.Background(), "user@example.test")
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, result.Status)
	assert.Zero(t, atomic.LoadInt32(&dialer.calls))
}

func TestVerifyDeliverable(t *testing.T) {
	server := startFakeSMTPServer(t, "250 recipient ok", false)
	v, _ := newTestVerifier(&stubResolver{records: loopbackMX()}, server.port())

	result, err := v.Verify(context.Background(), "user@example.test")
	require.NoError(t, err)
	assert.Equal(t, StatusDeliverable, result.Status)
}

func TestVerifyUndeliverable(t *testing.T) {
	server := startFakeSMTPServer(t, "550 no such user", false)
	v, _ := newTestVerifier(&stubResolver{records: loopbackMX()}, server.port())

	result, err := v.Verify(context.Background(), "user@example.test")
	require.NoError(t, err)
	assert.Equal(t, StatusUndeliverable, result.Status)
	assert.Equal(t, 550, result.Code)
}

func TestVerifyTemporaryFailureIsUnknown(t *testing.T) {
	server := startFakeSMTPServer(t, "450 try again later", false)
	v, _ := newTestVerifier(&stubResolver{records: loopbackMX()}, server.port())

	result, err := v.Verify(context.Background(), "user@example.test")
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, result.Status)
	assert.Equal(t, 450, result.Code)
}

func TestVerifySilentServerTimesOut(t *testing.T) {
	server := startFakeSMTPServer(t, "", true)
	v, _ := newTestVerifier(&stubResolver{records: loopbackMX()}, server.port())
	v.SessionTimeout = 200 * time.Millisecond

	result, err := v.Verify(context.Background(), "user@example.test")
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, result.Status)

	// The caller must have closed its end of the connection.
	select {
	case <-server.done:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was left open after the probe timed out")
	}
}

func TestVerifyConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	v, _ := newTestVerifier(&stubResolver{records: loopbackMX()}, port)

	result, err := v.Verify(context.Background(), "user@example.test")
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, result.Status)
}

func TestVerifyIdempotent(t *testing.T) {
	server := startFakeSMTPServer(t, "550 no such user", false)
	v, _ := newTestVerifier(&stubResolver{records: loopbackMX()}, server.port())

	first, err := v.Verify(context.Background(), "user@example.test")
	require.NoError(t, err)
	second, err := v.Verify(context.Background(), "user@example.test")
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Code, second.Code)
}

func TestVerifyPicksMostPreferredMX(t *testing.T) {
	server := startFakeSMTPServer(t, "250 recipient ok", false)
	records := []*net.MX{
		{Host: "backup.invalid.", Pref: 20},
		{Host: "127.0.0.1", Pref: 5},
		{Host: "fallback.invalid.", Pref: 10},
	}
	v, dialer := newTestVerifier(&stubResolver{records: records}, server.port())

	result, err := v.Verify(context.Background(), "user@example.test")
	require.NoError(t, err)
	assert.Equal(t, StatusDeliverable, result.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&dialer.calls), "only the preferred MX may be dialed")
}

func TestSplitAddress(t *testing.T) {
	local, domain, err := SplitAddress("user@example.test")
	require.NoError(t, err)
	assert.Equal(t, "user", local)
	assert.Equal(t, "example.test", domain)

	_, _, err = SplitAddress("userexample.test")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestPreferredHost(t *testing.T) {
	records := []*net.MX{
		{Host: "mx2.example.test.", Pref: 20},
		{Host: "mx1.example.test.", Pref: 10},
	}
	assert.Equal(t, "mx1.example.test", preferredHost(records))
}
