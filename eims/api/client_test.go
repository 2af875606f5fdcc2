package api_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addissoft/go-eims-client/eims/api"
)

// writeKeyPair writes a fresh self-signed keypair as PEM files and returns
// their paths.
func writeKeyPair(t *testing.T) (certPath, keyPath string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "client test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	dir := t.TempDir()
	certPath = filepath.Join(dir, "client.crt")
	keyPath = filepath.Join(dir, "client.key")
	require.NoError(t, os.WriteFile(certPath,
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600))
	require.NoError(t, os.WriteFile(keyPath,
		pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}), 0600))
	return certPath, keyPath
}

func TestNew_ClientCertSurvivesInsecureSkipVerify(t *testing.T) {
	var peerCerts int
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		peerCerts = len(r.TLS.PeerCertificates)
		_, _ = w.Write([]byte(`{}`))
	}))
	srv.TLS = &tls.Config{ClientAuth: tls.RequireAnyClientCert}
	srv.StartTLS()
	defer srv.Close()

	certPath, keyPath := writeKeyPair(t)
	client, err := api.New(api.Options{
		TLSCertFile:        certPath,
		TLSKeyFile:         keyPath,
		InsecureSkipVerify: true,
	})
	require.NoError(t, err)

	resp, err := client.PostJSON(context.Background(), srv.URL, map[string]string{"ping": "pong"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, 1, peerCerts, "server must see the mutual-TLS client certificate")
}

func TestNew_UnreadableKeyPair(t *testing.T) {
	_, err := api.New(api.Options{
		TLSCertFile: "does-not-exist.crt",
		TLSKeyFile:  "does-not-exist.key",
	})
	assert.Error(t, err)
}
