// Package builder maps an InvoiceSnapshot into the canonical EIMS request.
// The mapping is a pure function of snapshot and options: no I/O, no clock,
// so building twice yields byte-identical signing input.
package builder

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/addissoft/go-eims-client/eims"
	"github.com/addissoft/go-eims-client/eims/master"
	"github.com/addissoft/go-eims-client/eims/model"
)

const (
	defaultRegion         = "11"
	defaultWereda         = "01"
	defaultNatureOfSupply = "GOODS"
	defaultTaxCode        = "VAT"
	defaultPaymentTerm    = "IMMEDIATE"
	defaultPaymentMode    = "Cash"
	defaultUnit           = "PCS"
	localCurrency         = "ETB"
)

// Options carry the per-tenant constants that end up inside the request.
type Options struct {
	SystemType     string
	SystemNumber   string
	InvoiceCounter int64
	// TimezoneOffset is the seller's configured offset, e.g. "+03:00".
	TimezoneOffset string
}

// FromConfig derives builder options from the pipeline configuration.
func FromConfig(cfg eims.Config) Options {
	return Options{
		SystemType:     cfg.SystemType,
		SystemNumber:   cfg.SystemNumber,
		InvoiceCounter: cfg.InvoiceCounter,
		TimezoneOffset: cfg.TimezoneOffset,
	}
}

// Build produces an unsigned payload. It returns *eims.ValidationError for
// data that could never pass remote validation, so the failure is caught
// before any network call.
func Build(snap *model.InvoiceSnapshot, opts Options) (*model.Payload, error) {
	if err := validate(snap); err != nil {
		return nil, err
	}

	if opts.TimezoneOffset == "" {
		opts.TimezoneOffset = eims.DefaultTimezoneOffset
	}
	if opts.SystemType == "" {
		opts.SystemType = eims.DefaultSystemType
	}
	if opts.InvoiceCounter <= 0 {
		opts.InvoiceCounter = 1
	}

	docType := snap.DocumentType
	if docType == "" {
		docType = "INV"
	}
	txType := snap.TransactionType
	if txType == "" {
		txType = "B2B"
	}

	date, err := formatDate(snap.IssuedAt, opts.TimezoneOffset)
	if err != nil {
		return nil, err
	}

	req := model.Request{
		TransactionType: txType,
		DocumentDetails: model.DocumentDetails{
			DocumentNumber: snap.DocumentNumber,
			Date:           date,
			Type:           docType,
		},
		SourceSystem: model.SourceSystem{
			SystemType:     opts.SystemType,
			SystemNumber:   opts.SystemNumber,
			InvoiceCounter: opts.InvoiceCounter,
		},
		SellerDetails:  sellerDetails(snap.Seller),
		BuyerDetails:   buyerDetails(snap.Buyer, txType),
		ItemList:       itemList(snap.Lines),
		PaymentDetails: paymentDetails(snap),
		ValueDetails:   valueDetails(snap),
	}

	if master.RequiresReason(docType) {
		req.DocumentDetails.Reason = snap.Reason
		req.ReferenceDetails = &model.ReferenceDetails{RelatedDocument: snap.RelatedDocument}
	}

	return &model.Payload{Request: req}, nil
}

func validate(snap *model.InvoiceSnapshot) error {
	if snap == nil {
		return &eims.ValidationError{Message: "nil snapshot"}
	}
	if snap.DocumentNumber == "" {
		return &eims.ValidationError{Field: "DocumentNumber", Message: "required"}
	}
	if snap.Seller.TIN == "" {
		return &eims.ValidationError{Field: "Seller.TIN", Message: "required"}
	}
	if len(snap.Lines) == 0 {
		return &eims.ValidationError{Field: "Lines", Message: "at least one line item is required"}
	}
	if snap.IssuedAt.IsZero() {
		return &eims.ValidationError{Field: "IssuedAt", Message: "required"}
	}
	if snap.DocumentType != "" && !master.Valid(master.DocumentType, snap.DocumentType) {
		return &eims.ValidationError{Field: "DocumentType", Message: fmt.Sprintf("unknown code %q", snap.DocumentType)}
	}
	if snap.TransactionType != "" && !master.Valid(master.TransactionType, snap.TransactionType) {
		return &eims.ValidationError{Field: "TransactionType", Message: fmt.Sprintf("unknown code %q", snap.TransactionType)}
	}
	if snap.Seller.Region != "" && !master.Valid(master.Region, snap.Seller.Region) {
		return &eims.ValidationError{Field: "Seller.Region", Message: fmt.Sprintf("unknown code %q", snap.Seller.Region)}
	}
	if snap.Buyer.Region != "" && !master.Valid(master.Region, snap.Buyer.Region) {
		return &eims.ValidationError{Field: "Buyer.Region", Message: fmt.Sprintf("unknown code %q", snap.Buyer.Region)}
	}
	if master.RequiresReason(snap.DocumentType) {
		if snap.Reason == "" {
			return &eims.ValidationError{Field: "Reason", Message: fmt.Sprintf("required for document type %s", snap.DocumentType)}
		}
		if snap.RelatedDocument == "" {
			return &eims.ValidationError{Field: "RelatedDocument", Message: fmt.Sprintf("required for document type %s", snap.DocumentType)}
		}
	}
	return nil
}

// formatDate renders the issue time in the seller's offset without zone
// lookup: "2006-01-02T15:04:05" plus the literal offset.
func formatDate(t time.Time, offset string) (string, error) {
	loc, err := parseOffset(offset)
	if err != nil {
		return "", &eims.ValidationError{Field: "TimezoneOffset", Message: err.Error()}
	}
	return t.In(loc).Format("2006-01-02T15:04:05") + offset, nil
}

func parseOffset(offset string) (*time.Location, error) {
	if len(offset) != 6 || (offset[0] != '+' && offset[0] != '-') || offset[3] != ':' {
		return nil, fmt.Errorf("malformed offset %q (want e.g. +03:00)", offset)
	}
	hours, err := strconv.Atoi(offset[1:3])
	if err != nil {
		return nil, fmt.Errorf("malformed offset %q", offset)
	}
	mins, err := strconv.Atoi(offset[4:6])
	if err != nil {
		return nil, fmt.Errorf("malformed offset %q", offset)
	}
	secs := hours*3600 + mins*60
	if offset[0] == '-' {
		secs = -secs
	}
	return time.FixedZone("UTC"+offset, secs), nil
}

func sellerDetails(p model.Party) model.SellerDetails {
	return model.SellerDetails{
		TIN:         p.TIN,
		LegalName:   p.LegalName,
		TradeName:   p.TradeName,
		City:        p.City,
		Region:      orDefault(p.Region, defaultRegion),
		Wereda:      orDefault(p.Wereda, defaultWereda),
		Zone:        p.Zone,
		SubCity:     p.SubCity,
		Kebele:      p.Kebele,
		Locality:    p.Locality,
		HouseNumber: p.HouseNo,
		Country:     p.Country,
		Email:       p.Email,
		Phone:       p.Phone,
		VATNumber:   p.VATNumber,
	}
}

func buyerDetails(p model.Party, txType string) model.BuyerDetails {
	d := model.BuyerDetails{
		TIN:         p.TIN,
		LegalName:   p.LegalName,
		TradeName:   p.TradeName,
		City:        p.City,
		Region:      orDefault(p.Region, defaultRegion),
		Wereda:      orDefault(p.Wereda, defaultWereda),
		Zone:        p.Zone,
		SubCity:     p.SubCity,
		Kebele:      p.Kebele,
		Locality:    p.Locality,
		HouseNumber: p.HouseNo,
		Country:     p.Country,
		Email:       p.Email,
		Phone:       p.Phone,
		VATNumber:   p.VATNumber,
	}
	// Consumer transactions carry no buyer TIN.
	if txType == "B2C" || txType == "G2C" {
		d.TIN = ""
		d.VATNumber = ""
	}
	return d
}

func itemList(lines []model.LineItem) []model.Item {
	items := make([]model.Item, 0, len(lines))
	for i, line := range lines {
		items = append(items, model.Item{
			LineNumber:         i + 1,
			NatureOfSupplies:   orDefault(line.NatureOfSupp, defaultNatureOfSupply),
			ProductDescription: line.Description,
			ItemCode:           line.ItemCode,
			UnitPrice:          model.NewAmount(line.UnitPrice),
			Quantity:           model.NewAmount(line.Quantity),
			Unit:               orDefault(line.Unit, defaultUnit),
			PreTaxValue:        model.NewAmount(line.PreTaxValue),
			TaxAmount:          model.NewAmount(line.TaxAmount),
			TotalLineAmount:    model.NewAmount(line.LineTotal),
			TaxCode:            orDefault(line.TaxCode, defaultTaxCode),
			Discount:           model.NewAmount(line.Discount),
			HarmonizationCode:  line.HSCode,
		})
	}
	return items
}

func paymentDetails(snap *model.InvoiceSnapshot) model.PaymentDetails {
	return model.PaymentDetails{
		PaymentTerm: orDefault(snap.PaymentTerm, defaultPaymentTerm),
		Mode:        orDefault(snap.PaymentMode, defaultPaymentMode),
	}
}

func valueDetails(snap *model.InvoiceSnapshot) model.ValueDetails {
	currency := orDefault(snap.Currency, localCurrency)
	d := model.ValueDetails{
		TotalValue:      model.NewAmount(snap.TotalValue),
		TaxValue:        model.NewAmount(snap.TaxValue),
		InvoiceCurrency: currency,
	}
	if currency != localCurrency {
		rate := snap.ExchangeRate
		if rate.IsZero() {
			rate = decimal.NewFromInt(1)
		}
		a := model.NewAmount(rate)
		d.ExchangeRate = &a
	}
	return d
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
