// Package keys loads the RSA signing material: a PEM private key (plain or
// password-protected PKCS#8) and the X.509 certificate registered with EIMS.
// Material is parsed once and held behind a read-only struct; files are never
// re-read during the process lifetime.
package keys

import (
	"crypto"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/youmark/pkcs8"
)

// Material is the parsed, immutable signing material.
type Material struct {
	Signer      crypto.Signer
	Certificate *x509.Certificate
	// CertPEM is the raw PEM block as uploaded to EIMS; the envelope carries
	// it base64-encoded verbatim.
	CertPEM []byte
}

// Load reads and parses key and certificate files. The password is only
// consulted for ENCRYPTED PRIVATE KEY blocks.
func Load(keyPath, certPath string, password []byte) (*Material, error) {
	keyBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, errors.Wrap(err, "read key file")
	}
	signer, err := LoadSignerFromPEM(keyBytes, password)
	if err != nil {
		return nil, err
	}

	certBytes, err := os.ReadFile(certPath)
	if err != nil {
		return nil, errors.Wrap(err, "read cert file")
	}
	cert, err := LoadCertificate(certBytes)
	if err != nil {
		return nil, err
	}

	return &Material{Signer: signer, Certificate: cert, CertPEM: certBytes}, nil
}

// LoadSignerFromPEM parses the first usable private key block. Supported
// block types: PRIVATE KEY (PKCS#8), RSA PRIVATE KEY (PKCS#1) and
// ENCRYPTED PRIVATE KEY (PKCS#8, needs password).
func LoadSignerFromPEM(pemBytes, password []byte) (crypto.Signer, error) {
	for len(pemBytes) > 0 {
		var block *pem.Block
		block, pemBytes = pem.Decode(pemBytes)
		if block == nil {
			break
		}

		switch block.Type {
		case "PRIVATE KEY":
			keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, errors.Wrap(err, "parse PKCS#8 private key")
			}
			return asSigner(keyAny)

		case "RSA PRIVATE KEY":
			key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, errors.Wrap(err, "parse PKCS#1 private key")
			}
			return key, nil

		case "ENCRYPTED PRIVATE KEY":
			if len(password) == 0 {
				return nil, errors.New("password is required for ENCRYPTED PRIVATE KEY")
			}
			keyAny, err := pkcs8.ParsePKCS8PrivateKey(block.Bytes, password)
			if err != nil {
				return nil, errors.Wrap(err, "decrypt PKCS#8 encrypted private key")
			}
			return asSigner(keyAny)
		}
	}

	return nil, errors.New("no private key block found in PEM")
}

func asSigner(keyAny any) (crypto.Signer, error) {
	key, ok := keyAny.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.Errorf("unsupported key type %T (EIMS requires RSA)", keyAny)
	}
	return key, nil
}

// LoadCertificate parses a certificate from PEM or raw DER bytes.
func LoadCertificate(certBytes []byte) (*x509.Certificate, error) {
	der := certBytes
	if block, _ := pem.Decode(certBytes); block != nil {
		if block.Type != "CERTIFICATE" {
			return nil, errors.Errorf("unexpected PEM block: %s", block.Type)
		}
		der = block.Bytes
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, errors.Wrap(err, "parse x509 certificate")
	}
	return cert, nil
}

func LoadCertificateFromFile(path string) (*x509.Certificate, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read cert file")
	}
	return LoadCertificate(b)
}

// CertificateInfo summarises validity for operator reporting.
type CertificateInfo struct {
	Subject      string
	Serial       string
	NotBefore    time.Time
	NotAfter     time.Time
	DaysToExpiry int
	Expired      bool
	ExpiringSoon bool
}

// Inspect computes validity information relative to now. ExpiringSoon means
// within 30 days.
func Inspect(cert *x509.Certificate, now time.Time) CertificateInfo {
	days := int(cert.NotAfter.Sub(now).Hours() / 24)
	return CertificateInfo{
		Subject:      cert.Subject.String(),
		Serial:       cert.SerialNumber.String(),
		NotBefore:    cert.NotBefore,
		NotAfter:     cert.NotAfter,
		DaysToExpiry: days,
		Expired:      now.After(cert.NotAfter),
		ExpiringSoon: days >= 0 && days <= 30,
	}
}
