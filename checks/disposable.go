// checks/disposable.go
package checks

import (
	"context"
	"strings"

	"mailprobe/verifier"
)

// Disposable flags throwaway-mail domains.
type Disposable struct{}

func (Disposable) Name() string { return "Disposable" }

func (Disposable) Run(ctx context.Context, email string) Outcome {
	_, domain, err := verifier.SplitAddress(email)
	if err != nil {
		return failed("invalid email format")
	}
	if disposableDomains[domain] {
		return failed("disposable email domain")
	}
	return passed("not a disposable domain")
}

var disposableDomains = loadDisposableDomains()

func loadDisposableDomains() map[string]bool {
	domains := make(map[string]bool)
	for _, d := range strings.Split(disposableDomainList, "\n") {
		d = strings.TrimSpace(d)
		if d != "" {
			domains[d] = true
		}
	}
	return domains
}

const disposableDomainList = `
10minutemail.com
20minutemail.com
33mail.com
anonbox.net
bugmenot.com
deadaddress.com
discard.email
dispostable.com
dodgeit.com
fakeinbox.com
getairmail.com
guerrillamail.com
guerrillamail.net
guerrillamail.org
harakirimail.com
jetable.org
mail-temp.com
maildrop.cc
mailcatch.com
mailinator.com
mailinator.net
mailnesia.com
mailsac.com
meltmail.com
mintemail.com
mytemp.email
nospam4.us
sharklasers.com
spam4.me
spamgourmet.com
spamhole.com
temp-mail.io
temp-mail.org
tempail.com
tempinbox.com
tempmail.org
tempmailaddress.com
throwawaymail.com
trash-mail.com
trashmail.com
trashmail.net
yopmail.com
yopmail.fr
`
