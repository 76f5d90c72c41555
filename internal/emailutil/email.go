package emailutil

import (
	"strings"
	"unicode/utf8"
)

// Redact keeps the first character of the local part and the domain so
// log lines can be correlated without carrying the full address.
func Redact(email string) string {
	email = strings.TrimSpace(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		if email == "" {
			return ""
		}
		return "***"
	}
	_, size := utf8.DecodeRuneInString(local)
	return local[:size] + "***@" + domain
}
