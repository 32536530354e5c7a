// checks/dns.go
package checks

import (
	"context"
	"fmt"
	"net"
	"strings"

	"mailprobe/verifier"
)

// MX reports the domain's mail-exchange records through the verifier's
// resolver so the subsequent SMTP probe hits the MX cache.
type MX struct {
	Resolver verifier.Resolver
}

func (MX) Name() string { return "DNS MX Records" }

func (c MX) Run(ctx context.Context, email string) Outcome {
	_, domain, err := verifier.SplitAddress(email)
	if err != nil {
		return failed("invalid email format")
	}
	records, err := c.Resolver.LookupMX(ctx, domain)
	if err != nil {
		return failed("MX lookup failed: " + err.Error())
	}
	if len(records) == 0 {
		return failed("no MX records found")
	}
	hosts := make([]string, 0, len(records))
	for _, record := range records {
		hosts = append(hosts, strings.TrimSuffix(record.Host, "."))
		if len(hosts) == 3 {
			break
		}
	}
	return passed(fmt.Sprintf("found %d MX record(s): %s", len(records), strings.Join(hosts, ", ")))
}

// ARecord reports the domain's A records. Informational only; the SMTP
// probe never falls back to the bare domain address.
type ARecord struct {
	// LookupHost is swappable for tests; nil means the system resolver.
	LookupHost func(ctx context.Context, host string) ([]string, error)
}

func (ARecord) Name() string { return "DNS A Records" }

func (c ARecord) Run(ctx context.Context, email string) Outcome {
	_, domain, err := verifier.SplitAddress(email)
	if err != nil {
		return failed("invalid email format")
	}
	lookup := c.LookupHost
	if lookup == nil {
		lookup = net.DefaultResolver.LookupHost
	}
	addrs, err := lookup(ctx, domain)
	if err != nil || len(addrs) == 0 {
		return failed("no A records found")
	}
	if len(addrs) > 3 {
		addrs = addrs[:3]
	}
	return passed(fmt.Sprintf("found A record(s): %s", strings.Join(addrs, ", ")))
}
