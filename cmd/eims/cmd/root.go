package cmd

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/addissoft/go-eims-client/eims"
	"github.com/addissoft/go-eims-client/eims/util"
)

var rootCmd = &cobra.Command{
	Use:   "eims",
	Short: "Submit invoices to the EIMS electronic invoicing service",
	Long: `eims drives the MoR electronic invoicing pipeline from the command
line: sign and submit invoice snapshots, inspect signing certificates and
render IRN verification codes.

Credentials and endpoints are read from EIMS_* environment variables,
optionally loaded from a .env file in the working directory.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()

		log.SetFormatter(&log.TextFormatter{
			FullTimestamp: true,
		})
		if util.DebugEnabled() {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configFromEnv assembles the pipeline configuration the way the host ERP
// would; only the CLI touches the environment, the library takes values.
func configFromEnv() eims.Config {
	var env eims.Environment
	_ = env.UnmarshalText([]byte(util.GetEnvOrDefault("EIMS_ENV", "test")))

	cfg := eims.Config{
		Environment:     env,
		LoginURL:        os.Getenv("EIMS_LOGIN_URL"),
		SubmitURL:       os.Getenv("EIMS_SUBMIT_URL"),
		ClientID:        util.GetEnvOrFailed("EIMS_CLIENT_ID"),
		ClientSecret:    util.GetEnvOrFailed("EIMS_CLIENT_SECRET"),
		APIKey:          util.GetEnvOrFailed("EIMS_API_KEY"),
		TIN:             util.GetEnvOrFailed("EIMS_TIN"),
		SystemType:      os.Getenv("EIMS_SYSTEM_TYPE"),
		SystemNumber:    util.GetEnvOrFailed("EIMS_SYSTEM_NUMBER"),
		PrivateKeyPath:  util.GetEnvOrFailed("EIMS_PRIVATE_KEY_PATH"),
		CertificatePath: util.GetEnvOrFailed("EIMS_CERTIFICATE_PATH"),
		KeyPassword:     os.Getenv("EIMS_KEY_PASSWORD"),
		TLSCertPath:     util.GetEnvOrDefault("EIMS_TLS_CERT_PATH", os.Getenv("EIMS_CERTIFICATE_PATH")),
		TLSKeyPath:      util.GetEnvOrDefault("EIMS_TLS_KEY_PATH", os.Getenv("EIMS_PRIVATE_KEY_PATH")),
		TimezoneOffset:  os.Getenv("EIMS_TZ_OFFSET"),
	}

	if v := os.Getenv("EIMS_AUTH_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.AuthTimeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("EIMS_SUBMIT_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.SubmitTimeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("EIMS_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxAttempts = n
		}
	}
	if b, err := strconv.ParseBool(os.Getenv("EIMS_CACHE_TOKEN")); err == nil && b {
		cfg.TokenCache = eims.TokenCached
	}

	return cfg
}
