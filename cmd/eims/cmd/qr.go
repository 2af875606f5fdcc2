package cmd

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/addissoft/go-eims-client/eims/qr"
)

var (
	qrIRN    string
	qrTIN    string
	qrDocNo  string
	qrDate   string
	qrTotal  string
	qrOutput string
)

var qrCmd = &cobra.Command{
	Use:   "qr",
	Short: "Render the verification QR code for a registered invoice",
	RunE: func(cmd *cobra.Command, args []string) error {
		issued, err := time.Parse("2006-01-02", qrDate)
		if err != nil {
			return fmt.Errorf("parse --date: %w", err)
		}
		total, err := decimal.NewFromString(qrTotal)
		if err != nil {
			return fmt.Errorf("parse --total: %w", err)
		}

		content := qr.VerificationText(qrIRN, qrTIN, qrDocNo, issued, total)
		if err := qr.WriteFile(content, qrOutput); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", qrOutput)
		return nil
	},
}

func init() {
	qrCmd.Flags().StringVar(&qrIRN, "irn", "", "invoice reference number (required)")
	qrCmd.Flags().StringVar(&qrTIN, "tin", "", "seller TIN (required)")
	qrCmd.Flags().StringVar(&qrDocNo, "document", "", "document number (required)")
	qrCmd.Flags().StringVar(&qrDate, "date", "", "issue date, YYYY-MM-DD (required)")
	qrCmd.Flags().StringVar(&qrTotal, "total", "", "invoice total (required)")
	qrCmd.Flags().StringVarP(&qrOutput, "out", "o", "qr.png", "output PNG path")
	for _, f := range []string{"irn", "tin", "document", "date", "total"} {
		_ = qrCmd.MarkFlagRequired(f)
	}
	rootCmd.AddCommand(qrCmd)
}
