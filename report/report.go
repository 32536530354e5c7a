// report/report.go
package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"mailprobe/checks"
)

// Verdict values for the whole report.
const (
	VerdictValid         = "valid"
	VerdictMixed         = "mixed"
	VerdictLikelyInvalid = "likely invalid"
)

// Entry is one check's outcome plus how long it took.
type Entry struct {
	Name    string         `json:"name"`
	Outcome checks.Outcome `json:"outcome"`
	Elapsed time.Duration  `json:"elapsed"`
}

type Report struct {
	Email   string  `json:"email"`
	Entries []Entry `json:"entries"`
}

// Run executes the checks sequentially, timing each one. Checks never abort
// the run; a hostile or unreachable server shows up as a failed or skipped
// entry, not as a crash.
func Run(ctx context.Context, email string, battery []checks.Check) *Report {
	r := &Report{Email: email}
	for _, check := range battery {
		start := time.Now()
		outcome := check.Run(ctx, email)
		r.Entries = append(r.Entries, Entry{
			Name:    check.Name(),
			Outcome: outcome,
			Elapsed: time.Since(start),
		})
	}
	return r
}

// Counts tallies the entries per status.
func (r *Report) Counts() (passed, failed, skipped int) {
	for _, entry := range r.Entries {
		switch entry.Outcome.Status {
		case checks.StatusPassed:
			passed++
		case checks.StatusFailed:
			failed++
		default:
			skipped++
		}
	}
	return passed, failed, skipped
}

// Verdict condenses the counts into an overall answer.
func (r *Report) Verdict() string {
	passed, failed, _ := r.Counts()
	switch {
	case passed >= 4 && failed == 0:
		return VerdictValid
	case passed >= 2 && failed <= 2:
		return VerdictMixed
	default:
		return VerdictLikelyInvalid
	}
}

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

// Print renders the report the way a human wants to read it: one section
// per check, then the summary with the overall verdict.
func (r *Report) Print(w io.Writer) {
	rule := strings.Repeat("=", 70)

	fmt.Fprintln(w, rule)
	cyan.Fprintln(w, "EMAIL DELIVERABILITY REPORT")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Email Address: %s\n", r.Email)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	for _, entry := range r.Entries {
		fmt.Fprintf(w, "[%s]\n", entry.Name)
		switch entry.Outcome.Status {
		case checks.StatusPassed:
			green.Fprintln(w, "  Status: PASSED")
		case checks.StatusFailed:
			red.Fprintln(w, "  Status: FAILED")
		default:
			yellow.Fprintln(w, "  Status: SKIPPED")
		}
		fmt.Fprintf(w, "  Result: %s\n", entry.Outcome.Message)
		fmt.Fprintf(w, "  Time:   %.3fs\n", entry.Elapsed.Seconds())
		fmt.Fprintln(w)
	}

	passed, failed, skipped := r.Counts()
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "SUMMARY")
	fmt.Fprintln(w, rule)
	green.Fprintf(w, "Checks Passed:  %d\n", passed)
	red.Fprintf(w, "Checks Failed:  %d\n", failed)
	yellow.Fprintf(w, "Checks Skipped: %d\n", skipped)
	fmt.Fprintf(w, "Total Checks:   %d\n", len(r.Entries))
	fmt.Fprintln(w)

	switch verdict := r.Verdict(); verdict {
	case VerdictValid:
		green.Fprintln(w, "Overall Verdict: EMAIL IS VALID")
	case VerdictMixed:
		yellow.Fprintln(w, "Overall Verdict: EMAIL MAY BE VALID (mixed results)")
	default:
		red.Fprintln(w, "Overall Verdict: EMAIL IS LIKELY INVALID")
	}
	fmt.Fprintln(w, rule)
}
