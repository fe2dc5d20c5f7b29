package contact

import (
	"net/mail"
	"strings"
)

// PhonePolicy controls how raw phone strings are reduced to a comparable key.
// Country-code handling varies per deployment, so the strippable prefixes are
// configuration rather than code.
type PhonePolicy struct {
	MinDigits     int      `yaml:"min_digits"`
	StripPrefixes []string `yaml:"strip_prefixes"`
}

func DefaultPhonePolicy() PhonePolicy {
	return PhonePolicy{MinDigits: 7}
}

// NormalizeEmail returns the canonical dedup key for an email address:
// trimmed and lower-cased. Empty or unparseable input yields "".
func NormalizeEmail(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return ""
	}
	return strings.ToLower(trimmed)
}

// NormalizePhone strips everything but digits, then applies the policy's
// prefix stripping. Returns "" when fewer than MinDigits digits remain.
func NormalizePhone(raw string, policy PhonePolicy) string {
	if policy.MinDigits <= 0 {
		policy.MinDigits = DefaultPhonePolicy().MinDigits
	}

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	for _, prefix := range policy.StripPrefixes {
		if prefix == "" {
			continue
		}
		if strings.HasPrefix(digits, prefix) && len(digits)-len(prefix) >= policy.MinDigits {
			digits = digits[len(prefix):]
			break
		}
	}

	if len(digits) < policy.MinDigits {
		return ""
	}
	return digits
}

// DomainFromEmail returns the lower-cased part after "@", or "" when the
// input has no usable domain part.
func DomainFromEmail(email string) string {
	trimmed := strings.TrimSpace(email)
	at := strings.LastIndex(trimmed, "@")
	if at < 0 || at == len(trimmed)-1 {
		return ""
	}
	return strings.ToLower(trimmed[at+1:])
}
