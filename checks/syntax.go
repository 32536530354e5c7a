// checks/syntax.go
package checks

import (
	"context"
	"fmt"
	"regexp"

	"github.com/badoux/checkmail"

	"mailprobe/verifier"
)

var rfc5322Regex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// Common domain typos and their likely intended spelling.
var commonTypos = map[string]string{
	"gmai.com":   "gmail.com",
	"gmal.com":   "gmail.com",
	"gmial.com":  "gmail.com",
	"gmail.co":   "gmail.com",
	"yaho.com":   "yahoo.com",
	"hotmai.com": "hotmail.com",
	"outlok.com": "outlook.com",
}

// Syntax validates the address shape with checkmail.
type Syntax struct{}

func (Syntax) Name() string { return "Syntax" }

func (Syntax) Run(ctx context.Context, email string) Outcome {
	if err := checkmail.ValidateFormat(email); err != nil {
		return failed("invalid format: " + err.Error())
	}
	return passed("valid format")
}

// RFC5322 checks the address against the RFC 5322 addr-spec grammar.
type RFC5322 struct{}

func (RFC5322) Name() string { return "RFC 5322" }

func (RFC5322) Run(ctx context.Context, email string) Outcome {
	if !rfc5322Regex.MatchString(email) {
		return failed("not RFC 5322 compliant")
	}
	return passed("RFC 5322 compliant")
}

// Typo flags domains that are one keystroke away from a major provider.
type Typo struct{}

func (Typo) Name() string { return "Typo" }

func (Typo) Run(ctx context.Context, email string) Outcome {
	local, domain, err := verifier.SplitAddress(email)
	if err != nil {
		return failed("invalid email format")
	}
	if suggested, ok := commonTypos[domain]; ok {
		return failed(fmt.Sprintf("possible typo, did you mean %s@%s?", local, suggested))
	}
	return passed("no known typo")
}
