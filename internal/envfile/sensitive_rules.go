package envfile

import (
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

func defaultPlainRules() []PlainRule {
	return []PlainRule{
		&PlainURLRule{},
		&PlainHostnameRule{},
		&PlainBooleanRule{},
		&PlainNumberRule{},
		&PlainWellKnownRule{},
	}
}

type PlainURLRule struct{}

func (r *PlainURLRule) IsPlain(key, value string) bool {
	if !strings.Contains(value, "://") {
		return false
	}
	if _, err := url.Parse(value); err != nil {
		return false
	}
	return !urlHasCredentials(value)
}

func urlHasCredentials(value string) bool {
	if !strings.Contains(value, "://") {
		return false
	}
	u, err := url.Parse(value)
	if err != nil || u.User == nil {
		return false
	}
	_, hasPassword := u.User.Password()
	return u.User.Username() != "" || hasPassword
}

type PlainHostnameRule struct{}

var localhostPattern = regexp.MustCompile(`(?i)^(localhost|127\.0\.0\.1|::1)$`)

func (r *PlainHostnameRule) IsPlain(key, value string) bool {
	return localhostPattern.MatchString(value)
}

type PlainBooleanRule struct{}

func (r *PlainBooleanRule) IsPlain(key, value string) bool {
	switch strings.ToLower(value) {
	case "true", "false", "yes", "no", "on", "off":
		return true
	}
	return false
}

type PlainNumberRule struct{}

func (r *PlainNumberRule) IsPlain(key, value string) bool {
	if _, err := strconv.Atoi(value); err == nil {
		return true
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

type PlainWellKnownRule struct{}

var wellKnownValues = map[string][]string{
	"NODE_ENV":  {"development", "production", "test"},
	"LOG_LEVEL": {"debug", "info", "warn", "error", "verbose"},
	"HOST":      {"localhost", "127.0.0.1", "::1", "0.0.0.0"},
}

func (r *PlainWellKnownRule) IsPlain(key, value string) bool {
	allowed, ok := wellKnownValues[strings.ToUpper(key)]
	if !ok {
		return false
	}
	return slices.Contains(allowed, strings.ToLower(strings.TrimSpace(value)))
}
