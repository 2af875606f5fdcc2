// Package qr renders the verification code printed on a registered invoice:
// the IRN and the key document facts, encoded as a 300px PNG.
package qr

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

// VerificationText builds the pipe-separated content encoded into the code.
// Field order is fixed; verifiers parse positionally.
func VerificationText(irn, sellerTIN, documentNumber string, issued time.Time, total decimal.Decimal) string {
	fields := []string{
		irn,
		sellerTIN,
		documentNumber,
		issued.Format("2006-01-02"),
		total.StringFixed(2),
	}
	return strings.Join(fields, "|")
}

func Encode(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("empty qr content")
	}
	return qrcode.Encode(content, qrcode.Medium, 300)
}

func WriteFile(content, path string) error {
	png, err := Encode(content)
	if err != nil {
		return err
	}
	return os.WriteFile(path, png, 0644)
}
