// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (TAKEANDEAT_*), configuration
// files, or command-line flags, loaded in LoadConfig. WAFFLE's CoreConfig
// covers the framework-level settings (ports, TLS, logging, CORS, body
// limits); everything specific to Take & Eat lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: takeandeat-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// CSRFKey signs form tokens. Blank derives it from SessionKey.
	CSRFKey string

	// Email/SMTP configuration. A blank host logs emails instead of sending.
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string // From email address (e.g., noreply@takeandeat.org)
	MailFromName string // From display name (e.g., Take & Eat)

	// Base URL for email links and the Google callback
	BaseURL string // e.g., "https://takeandeat.org" or "http://localhost:3000"

	// Verification and reset lifetimes
	EmailVerifyExpiry time.Duration
	PhoneCodeExpiry   time.Duration
	ResetTokenExpiry  time.Duration

	// Google OAuth. Both blank disables the Google button.
	GoogleClientID     string
	GoogleClientSecret string

	// Context deadlines (see system/timeouts)
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutMail   time.Duration

	// Rate limits for form posts that write or send mail, per client IP
	FormRateLimit  int
	FormRateWindow time.Duration

	// AuditLogAuth selects where auth events go: all, db, log, or off.
	AuditLogAuth string

	// MetricsEnabled mounts /metrics and records request metrics.
	MetricsEnabled bool

	// TrustProxyHeaders takes the client IP from X-Forwarded-For/X-Real-IP.
	// Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}
