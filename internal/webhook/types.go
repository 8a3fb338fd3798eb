package webhook

// SecurityConfig holds webhook security settings
type SecurityConfig struct {
	Secret     string   // Shared secret; empty disables the check
	AllowedIPs []string // IP whitelist (optional)
}

// Secret sources accepted on inbound callbacks.
const (
	HeaderWebhookSecret  = "X-Webhook-Secret"
	HeaderCallbackSecret = "X-Callback-Secret"
	QuerySecret          = "secret"
)
