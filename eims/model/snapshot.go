package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceSnapshot is the read-only view of one invoice at submission time.
// It is owned by the host system; the pipeline never mutates it. All totals
// and taxes arrive already computed.
type InvoiceSnapshot struct {
	DocumentNumber  string
	IssuedAt        time.Time
	DocumentType    string // INV, CRE, DEB, INT, FIN
	TransactionType string // B2B, B2C, B2G, G2C

	Seller Party
	Buyer  Party

	Lines []LineItem

	Currency     string
	ExchangeRate decimal.Decimal
	TotalValue   decimal.Decimal
	TaxValue     decimal.Decimal

	PaymentTerm string
	PaymentMode string

	// Reason and RelatedDocument are required for credit/debit style
	// documents (CRE, DEB, INT, FIN).
	Reason          string
	RelatedDocument string
}

// Party holds the address and identification block shared by seller and
// buyer. The buyer TIN is omitted from the wire for B2C and G2C transactions.
type Party struct {
	TIN       string
	LegalName string
	TradeName string
	City      string
	Region    string
	Wereda    string
	Zone      string
	SubCity   string
	Kebele    string
	Locality  string
	HouseNo   string
	Country   string
	Email     string
	Phone     string
	VATNumber string
}

// LineItem is one invoice line with pre-computed values.
type LineItem struct {
	Description  string
	ItemCode     string
	NatureOfSupp string
	Quantity     decimal.Decimal
	Unit         string
	UnitPrice    decimal.Decimal
	PreTaxValue  decimal.Decimal
	TaxAmount    decimal.Decimal
	LineTotal    decimal.Decimal
	TaxCode      string
	Discount     decimal.Decimal
	HSCode       string
}
