package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/addissoft/go-eims-client/eims/keys"
)

var certPath string

var checkCertCmd = &cobra.Command{
	Use:   "check-cert",
	Short: "Inspect a signing certificate's validity window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cert, err := keys.LoadCertificateFromFile(certPath)
		if err != nil {
			return err
		}

		info := keys.Inspect(cert, time.Now())
		fmt.Printf("subject:        %s\n", info.Subject)
		fmt.Printf("serial:         %s\n", info.Serial)
		fmt.Printf("not before:     %s\n", info.NotBefore.Format(time.RFC3339))
		fmt.Printf("not after:      %s\n", info.NotAfter.Format(time.RFC3339))
		fmt.Printf("days to expiry: %d\n", info.DaysToExpiry)

		switch {
		case info.Expired:
			fmt.Println("status:         EXPIRED, submissions will be rejected")
		case info.ExpiringSoon:
			fmt.Println("status:         expiring within 30 days")
		default:
			fmt.Println("status:         valid")
		}
		return nil
	},
}

func init() {
	checkCertCmd.Flags().StringVarP(&certPath, "cert", "c", "", "path to the PEM certificate (required)")
	_ = checkCertCmd.MarkFlagRequired("cert")
	rootCmd.AddCommand(checkCertCmd)
}
