// checks/smtp.go
package checks

import (
	"context"
	"fmt"

	"mailprobe/verifier"
)

// SMTP runs the actual deliverability probe and maps its three-way
// classification onto the report: deliverable passes, undeliverable fails
// and unknown is skipped (the server would not give a definitive answer).
type SMTP struct {
	Verifier *verifier.Verifier
}

func (SMTP) Name() string { return "SMTP Verification" }

func (c SMTP) Run(ctx context.Context, email string) Outcome {
	result, err := c.Verifier.Verify(ctx, email)
	if err != nil {
		return failed(err.Error())
	}
	detail := result.Details
	if result.Code != 0 {
		detail = fmt.Sprintf("%s (code %d)", result.Details, result.Code)
	}
	switch result.Status {
	case verifier.StatusDeliverable:
		return passed(detail)
	case verifier.StatusUndeliverable:
		return failed(detail)
	default:
		return skipped(detail)
	}
}
