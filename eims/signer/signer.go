// Package signer produces the detached RSA signature EIMS verifies on every
// envelope: SHA-512 over the canonical JSON of the request object, PKCS#1
// v1.5 padding, base64 output. The signing certificate rides along in the
// envelope as base64 of its PEM form.
package signer

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"encoding/base64"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/addissoft/go-eims-client/eims"
	"github.com/addissoft/go-eims-client/eims/keys"
	"github.com/addissoft/go-eims-client/eims/model"
)

var logger = logrus.WithField("component", "eims.signer")

type Signer struct {
	key     *rsa.PrivateKey
	certB64 string
}

// New builds a Signer from already-parsed material. The key must be RSA.
func New(key crypto.Signer, certPEM []byte) (*Signer, error) {
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, &eims.SigningError{Err: errors.Errorf("unsupported key type %T (EIMS requires RSA)", key)}
	}
	if len(certPEM) == 0 {
		return nil, &eims.SigningError{Err: errors.New("empty certificate")}
	}
	return &Signer{
		key:     rsaKey,
		certB64: base64.StdEncoding.EncodeToString(certPEM),
	}, nil
}

// NewFromMaterial wraps keys.Material loaded from disk.
func NewFromMaterial(m *keys.Material) (*Signer, error) {
	return New(m.Signer, m.CertPEM)
}

// Sign returns a copy of the payload with signature and certificate filled
// in. Only the request object is covered by the signature.
func (s *Signer) Sign(p *model.Payload) (*model.Payload, error) {
	sig, err := s.SignRequest(p.Request)
	if err != nil {
		return nil, err
	}

	signed := *p
	signed.Signature = sig
	signed.Certificate = s.certB64

	logger.Debug("payload signed")
	return &signed, nil
}

// SignRequest signs the canonical JSON of an arbitrary request object. The
// login exchange uses this directly with its credential block.
func (s *Signer) SignRequest(req any) (string, error) {
	canonical, err := Canonicalize(req)
	if err != nil {
		return "", &eims.SigningError{Err: err}
	}

	digest := sha512.Sum512(canonical)
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA512, digest[:])
	if err != nil {
		return "", &eims.SigningError{Err: errors.Wrap(err, "rsa sign")}
	}

	return base64.StdEncoding.EncodeToString(sig), nil
}

// CertificateBase64 exposes the encoded certificate carried in envelopes.
func (s *Signer) CertificateBase64() string {
	return s.certB64
}
