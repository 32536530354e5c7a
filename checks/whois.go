// checks/whois.go
package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/likexian/whois"

	"mailprobe/verifier"
)

// Whois reports whether the domain has a WHOIS registration. Best effort:
// an unreachable WHOIS server skips the check instead of failing the run.
type Whois struct {
	// Lookup is swappable for tests; nil means the real WHOIS client.
	Lookup func(domain string) (string, error)
}

func (Whois) Name() string { return "WHOIS" }

func (c Whois) Run(ctx context.Context, email string) Outcome {
	_, domain, err := verifier.SplitAddress(email)
	if err != nil {
		return failed("invalid email format")
	}
	lookup := c.Lookup
	if lookup == nil {
		lookup = func(domain string) (string, error) { return whois.Whois(domain) }
	}
	raw, err := lookup(domain)
	if err != nil {
		return skipped("WHOIS lookup failed: " + err.Error())
	}
	if strings.Contains(strings.ToLower(raw), "no match") {
		return failed("domain is not registered")
	}
	return passed(fmt.Sprintf("domain is registered (%d bytes of WHOIS data)", len(raw)))
}
