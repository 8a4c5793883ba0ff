package envfile

import (
	"regexp"
)

// PlainRule recognizes values that are safe to show even under a secret
// looking key.
type PlainRule interface {
	IsPlain(key, value string) bool
}

var sensitiveKeyPattern = regexp.MustCompile(`(?i)(SECRET|PASSWORD|PASSWD|TOKEN|PRIVATE|CREDENTIAL|AUTH|API_?KEY|ACCESS_?KEY|_KEY$|^KEY$|DSN|SALT)`)

type SensitiveDetector struct {
	rules []PlainRule
}

func NewSensitiveDetector() *SensitiveDetector {
	return &SensitiveDetector{
		rules: defaultPlainRules(),
	}
}

// IsSensitive reports whether key/value should be masked when displayed. An
// empty value is never sensitive.
func (d *SensitiveDetector) IsSensitive(key, value string) bool {
	if value == "" {
		return false
	}
	if !SensitiveKey(key) {
		return urlHasCredentials(value)
	}
	for _, rule := range d.rules {
		if rule.IsPlain(key, value) {
			return false
		}
	}
	return true
}

// SensitiveKey reports whether a key name suggests a secret.
func SensitiveKey(key string) bool {
	return sensitiveKeyPattern.MatchString(key)
}

var defaultDetector = NewSensitiveDetector()

func IsSensitive(key, value string) bool {
	return defaultDetector.IsSensitive(key, value)
}

// Mask hides all but the last four characters of value.
func Mask(value string) string {
	r := []rune(value)
	if len(r) <= 4 {
		return "****"
	}
	return "****" + string(r[len(r)-4:])
}
