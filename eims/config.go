package eims

import "time"

// TokenCachePolicy controls how the access token obtained from the login
// endpoint is reused across submissions.
type TokenCachePolicy int

const (
	// TokenPerSubmission fetches a fresh token for every submission attempt.
	// This is the safe default: a rejected token can never poison later
	// submissions.
	TokenPerSubmission TokenCachePolicy = iota
	// TokenCached keeps the token until shortly before its validity window
	// ends. Safe for concurrent submissions, the cache is mutex guarded.
	TokenCached
)

// Config carries everything one submission pipeline needs. It is an explicit
// value handed to constructors, never process-wide state, so concurrent
// pipelines with different credentials (multi-tenant hosts) can coexist.
type Config struct {
	Environment Environment

	// LoginURL and SubmitURL override the environment defaults when set.
	LoginURL  string
	SubmitURL string

	// Login credentials issued by MoR for the integrating system.
	ClientID     string
	ClientSecret string
	APIKey       string
	TIN          string

	// SourceSystem identification carried inside every payload.
	SystemType     string
	SystemNumber   string
	InvoiceCounter int64

	// Payload signing material (PEM). KeyPassword is only needed for
	// ENCRYPTED PRIVATE KEY blocks.
	PrivateKeyPath  string
	CertificatePath string
	KeyPassword     string

	// Mutual-TLS client keypair for the submission endpoint. May point at the
	// same files as the signing material.
	TLSCertPath string
	TLSKeyPath  string

	// Seller timezone offset used for document dates, e.g. "+03:00".
	TimezoneOffset string

	AuthTimeout   time.Duration
	SubmitTimeout time.Duration

	MaxAttempts  int
	RetryBackoff time.Duration

	TokenCache TokenCachePolicy
	// TokenTTL is the assumed validity of an access token when the login
	// response does not carry one. Only consulted in TokenCached mode.
	TokenTTL time.Duration

	// InsecureSkipVerify disables server certificate verification. Test
	// environments only.
	InsecureSkipVerify bool
}

const (
	DefaultAuthTimeout    = 30 * time.Second
	DefaultSubmitTimeout  = 60 * time.Second
	DefaultMaxAttempts    = 3
	DefaultRetryBackoff   = 2 * time.Second
	DefaultTokenTTL       = 15 * time.Minute
	DefaultTimezoneOffset = "+03:00"
	DefaultSystemType     = "POS"
)

// WithDefaults returns a copy with every zero-valued tunable replaced by its
// default. URLs fall back to the environment endpoints.
func (c Config) WithDefaults() Config {
	if c.LoginURL == "" {
		c.LoginURL = c.Environment.LoginURL()
	}
	if c.SubmitURL == "" {
		c.SubmitURL = c.Environment.SubmitURL()
	}
	if c.SystemType == "" {
		c.SystemType = DefaultSystemType
	}
	if c.TimezoneOffset == "" {
		c.TimezoneOffset = DefaultTimezoneOffset
	}
	if c.AuthTimeout <= 0 {
		c.AuthTimeout = DefaultAuthTimeout
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = DefaultSubmitTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = DefaultTokenTTL
	}
	return c
}
