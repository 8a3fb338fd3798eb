package webhook

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var (
	ErrSecretMismatch = errors.New("webhook secret mismatch")
	ErrIPNotAllowed   = errors.New("source IP not whitelisted")
)

// SecurityValidator validates webhook requests
type SecurityValidator struct {
	config SecurityConfig
}

func NewSecurityValidator(config SecurityConfig) *SecurityValidator {
	return &SecurityValidator{config: config}
}

// Open reports whether no secret is configured.
func (v *SecurityValidator) Open() bool {
	return v.config.Secret == ""
}

// ValidateSecret accepts the request when no secret is configured, or when any of the
// presented values matches it.
func (v *SecurityValidator) ValidateSecret(presented ...string) error {
	if v.Open() {
		return nil
	}

	expected := []byte(v.config.Secret)
	for _, p := range presented {
		if p == "" {
			continue
		}
		// Constant-time comparison
		if subtle.ConstantTimeCompare([]byte(p), expected) == 1 {
			return nil
		}
	}
	return ErrSecretMismatch
}

// ValidateRequest checks the secret from the standard header, the alternate header, or the
// query string.
func (v *SecurityValidator) ValidateRequest(r *http.Request) error {
	return v.ValidateSecret(
		r.Header.Get(HeaderWebhookSecret),
		r.Header.Get(HeaderCallbackSecret),
		r.URL.Query().Get(QuerySecret),
	)
}

// ValidateIP checks the client IP against the whitelist. ip must come from a source that
// only trusts forwarding headers set by known proxies, such as gin's Context.ClientIP with
// SetTrustedProxies.
func (v *SecurityValidator) ValidateIP(ip string) error {
	if len(v.config.AllowedIPs) == 0 {
		return nil // No IP restriction
	}

	parsed := net.ParseIP(ip)

	for _, allowedIP := range v.config.AllowedIPs {
		if ip == allowedIP {
			return nil
		}

		// Check CIDR range
		if strings.Contains(allowedIP, "/") && parsed != nil {
			_, ipNet, err := net.ParseCIDR(allowedIP)
			if err != nil {
				continue
			}
			if ipNet.Contains(parsed) {
				return nil
			}
		}
	}

	return fmt.Errorf("%w: %s", ErrIPNotAllowed, ip)
}
