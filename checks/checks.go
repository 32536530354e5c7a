// checks/checks.go
package checks

import (
	"context"

	"mailprobe/verifier"
)

// Status of a single check.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Outcome is what a single check reports back.
type Outcome struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Check is one named validation step run against an email address.
type Check interface {
	Name() string
	Run(ctx context.Context, email string) Outcome
}

// Default returns the standard battery in report order. The verifier is
// shared so the SMTP check reuses the same resolver (and its MX cache) as
// the MX check.
func Default(v *verifier.Verifier, skipWhois bool) []Check {
	battery := []Check{
		Syntax{},
		RFC5322{},
		Typo{},
		Disposable{},
		MX{Resolver: v.Resolver},
		ARecord{},
	}
	if !skipWhois {
		battery = append(battery, Whois{})
	}
	return append(battery, SMTP{Verifier: v})
}

func passed(message string) Outcome {
	return Outcome{Status: StatusPassed, Message: message}
}

func failed(message string) Outcome {
	return Outcome{Status: StatusFailed, Message: message}
}

func skipped(message string) Outcome {
	return Outcome{Status: StatusSkipped, Message: message}
}
