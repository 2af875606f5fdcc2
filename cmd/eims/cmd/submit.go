package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/addissoft/go-eims-client/eims/model"
	"github.com/addissoft/go-eims-client/eims/submit"
)

var (
	snapshotPath  string
	submitTimeout time.Duration
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Sign and submit one invoice snapshot",
	Long: `Reads an InvoiceSnapshot from a JSON file, runs the full pipeline
(build, sign, authenticate, submit) and prints the outcome. The process exit
code is 0 for Sent and Pending, 1 for Error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(snapshotPath)
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}

		var snap model.InvoiceSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("parse snapshot: %w", err)
		}

		svc, err := submit.New(configFromEnv())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		result, err := svc.Submit(ctx, &snap)
		if err != nil {
			log.WithError(err).Error("submission failed before reaching EIMS")
		}

		fmt.Printf("document: %s\nstatus:   %s\n", snap.DocumentNumber, result)
		if result.Status == model.StatusError {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", "path to the invoice snapshot JSON (required)")
	submitCmd.Flags().DurationVar(&submitTimeout, "timeout", 5*time.Minute, "overall deadline for the submission including retries")
	_ = submitCmd.MarkFlagRequired("snapshot")
	rootCmd.AddCommand(submitCmd)
}
