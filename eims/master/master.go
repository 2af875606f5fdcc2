// Package master holds the EIMS reference code tables the payload builder
// validates against: regions, document and transaction types, tax codes,
// payment modes and terms.
package master

type Kind string

const (
	Region          Kind = "region"
	DocumentType    Kind = "document_type"
	TransactionType Kind = "transaction_type"
	TaxCode         Kind = "tax_code"
	PaymentMode     Kind = "payment_mode"
	PaymentTerm     Kind = "payment_term"
	NatureOfSupply  Kind = "nature_of_supply"
	Unit            Kind = "uom"
)

var tables = map[Kind]map[string]string{
	Region: {
		"11": "Addis Ababa",
		"12": "Dire Dawa",
		"13": "Harari",
		"14": "Oromia",
		"15": "Amhara",
		"16": "Tigray",
		"17": "SNNPR",
		"18": "Afar",
		"19": "Somali",
	},
	DocumentType: {
		"INV": "Invoice",
		"CRE": "Credit Note",
		"DEB": "Debit Note",
		"INT": "Interim Invoice",
		"FIN": "Final Invoice",
	},
	TransactionType: {
		"B2B": "Business to Business",
		"B2C": "Business to Consumer",
		"B2G": "Business to Government",
		"G2C": "Government to Consumer",
	},
	TaxCode: {
		"VAT":    "Value Added Tax",
		"TOT":    "Turnover Tax",
		"EXEMPT": "Exempted",
		"ZERO":   "Zero Rated",
	},
	PaymentMode: {
		"Cash":     "Cash",
		"Bank":     "Bank Transfer",
		"Cheque":   "Cheque",
		"CPO":      "Cash Payment Order",
		"Credit":   "Credit",
		"Mobile":   "Mobile Money",
	},
	PaymentTerm: {
		"IMMEDIATE": "Immediate",
		"CREDIT":    "Credit",
	},
	NatureOfSupply: {
		"GOODS":    "Goods",
		"SERVICES": "Services",
		"MIXED":    "Mixed Supply",
	},
	Unit: {
		"PCS": "Pieces",
		"KG":  "Kilogram",
		"L":   "Litre",
		"M":   "Metre",
		"HR":  "Hour",
		"SVC": "Service",
	},
}

// Valid reports whether code is a known entry of the given kind.
func Valid(kind Kind, code string) bool {
	table, ok := tables[kind]
	if !ok {
		return false
	}
	_, ok = table[code]
	return ok
}

// Name returns the descriptive name for a code, or "" when unknown.
func Name(kind Kind, code string) string {
	return tables[kind][code]
}

// Codes returns all known codes of a kind. The order is unspecified.
func Codes(kind Kind) []string {
	table := tables[kind]
	out := make([]string, 0, len(table))
	for code := range table {
		out = append(out, code)
	}
	return out
}

// RequiresReason reports whether a document type needs a reason and a
// related document reference on the wire.
func RequiresReason(documentType string) bool {
	switch documentType {
	case "CRE", "DEB", "INT", "FIN":
		return true
	}
	return false
}
