package model

// Payload is the full submission envelope: business request plus detached
// signature and signing certificate, both base64. The request half is frozen
// once signed; re-signing goes back to the InvoiceSnapshot.
type Payload struct {
	Request     Request `json:"request"`
	Signature   string  `json:"signature"`
	Certificate string  `json:"certificate"`
}

// Signed reports whether the envelope carries a signature.
func (p *Payload) Signed() bool {
	return p != nil && p.Signature != "" && p.Certificate != ""
}

// Request is the canonical EIMS invoice document.
type Request struct {
	TransactionType  string            `json:"TransactionType"`
	DocumentDetails  DocumentDetails   `json:"DocumentDetails"`
	SourceSystem     SourceSystem      `json:"SourceSystem"`
	SellerDetails    SellerDetails     `json:"SellerDetails"`
	BuyerDetails     BuyerDetails      `json:"BuyerDetails"`
	ItemList         []Item            `json:"ItemList"`
	PaymentDetails   PaymentDetails    `json:"PaymentDetails"`
	ValueDetails     ValueDetails      `json:"ValueDetails"`
	ReferenceDetails *ReferenceDetails `json:"ReferenceDetails,omitempty"`
}

type DocumentDetails struct {
	DocumentNumber string `json:"DocumentNumber"`
	Date           string `json:"Date"`
	Type           string `json:"Type"`
	Reason         string `json:"Reason,omitempty"`
}

type SourceSystem struct {
	SystemType     string `json:"SystemType"`
	SystemNumber   string `json:"SystemNumber"`
	InvoiceCounter int64  `json:"InvoiceCounter"`
}

type SellerDetails struct {
	TIN         string `json:"Tin"`
	LegalName   string `json:"LegalName"`
	TradeName   string `json:"TradeName,omitempty"`
	City        string `json:"City,omitempty"`
	Region      string `json:"Region"`
	Wereda      string `json:"Wereda"`
	Zone        string `json:"Zone,omitempty"`
	SubCity     string `json:"SubCity,omitempty"`
	Kebele      string `json:"Kebele,omitempty"`
	Locality    string `json:"Locality,omitempty"`
	HouseNumber string `json:"HouseNumber,omitempty"`
	Country     string `json:"Country,omitempty"`
	Email       string `json:"Email,omitempty"`
	Phone       string `json:"Phone,omitempty"`
	VATNumber   string `json:"VatNumber,omitempty"`
}

type BuyerDetails struct {
	TIN         string `json:"Tin,omitempty"`
	LegalName   string `json:"LegalName"`
	TradeName   string `json:"TradeName,omitempty"`
	City        string `json:"City,omitempty"`
	Region      string `json:"Region"`
	Wereda      string `json:"Wereda"`
	Zone        string `json:"Zone,omitempty"`
	SubCity     string `json:"SubCity,omitempty"`
	Kebele      string `json:"Kebele,omitempty"`
	Locality    string `json:"Locality,omitempty"`
	HouseNumber string `json:"HouseNumber,omitempty"`
	Country     string `json:"Country,omitempty"`
	Email       string `json:"Email,omitempty"`
	Phone       string `json:"Phone,omitempty"`
	VATNumber   string `json:"VatNumber,omitempty"`
}

type Item struct {
	LineNumber         int    `json:"LineNumber"`
	NatureOfSupplies   string `json:"NatureOfSupplies"`
	ProductDescription string `json:"ProductDescription"`
	ItemCode           string `json:"ItemCode,omitempty"`
	UnitPrice          Amount `json:"UnitPrice"`
	Quantity           Amount `json:"Quantity"`
	Unit               string `json:"Unit"`
	PreTaxValue        Amount `json:"PreTaxValue"`
	TaxAmount          Amount `json:"TaxAmount"`
	TotalLineAmount    Amount `json:"TotalLineAmount"`
	TaxCode            string `json:"TaxCode"`
	Discount           Amount `json:"Discount"`
	HarmonizationCode  string `json:"HarmonizationCode,omitempty"`
}

type PaymentDetails struct {
	PaymentTerm string `json:"PaymentTerm"`
	Mode        string `json:"Mode"`
}

type ValueDetails struct {
	TotalValue      Amount  `json:"TotalValue"`
	TaxValue        Amount  `json:"TaxValue"`
	InvoiceCurrency string  `json:"InvoiceCurrency"`
	ExchangeRate    *Amount `json:"ExchangeRate,omitempty"`
}

type ReferenceDetails struct {
	RelatedDocument string `json:"RelatedDocument"`
}
