package submit

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addissoft/go-eims-client/eims"
	"github.com/addissoft/go-eims-client/eims/api"
	"github.com/addissoft/go-eims-client/eims/audit"
	"github.com/addissoft/go-eims-client/eims/model"
	"github.com/addissoft/go-eims-client/eims/signer"
)

type fakeTokens struct {
	token       string
	err         error
	calls       int
	invalidated int
}

func (f *fakeTokens) Token(ctx context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

func (f *fakeTokens) Invalidate() { f.invalidated++ }

// fakeSubmission replays a scripted sequence of responses, repeating the
// last entry once the script runs out.
type fakeSubmission struct {
	responses []*api.Response
	err       error
	calls     int
	tokens    []string
}

func (f *fakeSubmission) Submit(ctx context.Context, payload *model.Payload, token string) (*api.Response, error) {
	f.calls++
	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func testSigner(t *testing.T) *signer.Signer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "submit test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	s, err := signer.New(key, certPEM)
	require.NoError(t, err)
	return s
}

func testSnapshot() *model.InvoiceSnapshot {
	return &model.InvoiceSnapshot{
		DocumentNumber: "INV/2025/00007",
		IssuedAt:       time.Date(2025, 7, 15, 9, 30, 0, 0, time.UTC),
		Seller:         model.Party{TIN: "123456789", LegalName: "Addis Soft PLC"},
		Buyer:          model.Party{TIN: "987654321", LegalName: "Buyer PLC"},
		Lines: []model.LineItem{{
			Description: "Consulting",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.NewFromInt(500),
			PreTaxValue: decimal.NewFromInt(1000),
			TaxAmount:   decimal.NewFromInt(150),
			LineTotal:   decimal.NewFromInt(1150),
		}},
		TotalValue: decimal.NewFromInt(1150),
		TaxValue:   decimal.NewFromInt(150),
	}
}

func testService(t *testing.T, sub api.SubmissionService, tokens *fakeTokens, opts ...Option) *Service {
	t.Helper()
	cfg := eims.Config{
		SystemNumber: "GO1",
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
	}
	all := append([]Option{
		WithSigner(testSigner(t)),
		WithSubmissionService(sub),
		WithTokenProvider(tokens),
	}, opts...)
	svc, err := New(cfg, all...)
	require.NoError(t, err)
	return svc
}

func TestSubmit_AcceptedWithIRN(t *testing.T) {
	sub := &fakeSubmission{responses: []*api.Response{
		{StatusCode: 200, Body: []byte(`{"irn": "IRN-XYZ"}`)},
	}}
	tokens := &fakeTokens{token: "tok-1"}
	svc := testService(t, sub, tokens)

	result, err := svc.Submit(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, result.Status)
	assert.Equal(t, "IRN-XYZ", result.IRN)
	assert.Equal(t, 1, sub.calls)
	assert.Equal(t, []string{"tok-1"}, sub.tokens)
}

func TestSubmit_TransientFailureExhaustsAttempts(t *testing.T) {
	sub := &fakeSubmission{responses: []*api.Response{
		{StatusCode: 500, Body: []byte(`{"message": "internal error"}`)},
	}}
	tokens := &fakeTokens{token: "tok-1"}
	rec := audit.NewMemoryRecorder()
	svc := testService(t, sub, tokens, WithRecorder(rec))

	result, err := svc.Submit(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, result.Status)
	assert.Equal(t, model.KindTransient, result.Kind)
	assert.Equal(t, 3, sub.calls)
	assert.Len(t, rec.Attempts(), 3)
	for i, a := range rec.Attempts() {
		assert.Equal(t, i+1, a.AttemptNumber)
		assert.Equal(t, audit.StateFailed, a.State)
		assert.Equal(t, 500, a.HTTPStatus)
		assert.Contains(t, a.RequestJSON, `"signature"`)
		assert.Contains(t, a.RequestJSON, "INV/2025/00007")
	}
}

func TestSubmit_RecoversOnRetry(t *testing.T) {
	sub := &fakeSubmission{responses: []*api.Response{
		{StatusCode: 503, Body: []byte(`unavailable`)},
		{StatusCode: 200, Body: []byte(`{"irn": "IRN-2"}`)},
	}}
	tokens := &fakeTokens{token: "tok-1"}
	svc := testService(t, sub, tokens)

	result, err := svc.Submit(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, result.Status)
	assert.Equal(t, "IRN-2", result.IRN)
	assert.Equal(t, 2, sub.calls)
}

func TestSubmit_PermanentFailureNoRetry(t *testing.T) {
	sub := &fakeSubmission{responses: []*api.Response{
		{StatusCode: 400, Body: []byte(`{"message": "invalid TIN"}`)},
	}}
	tokens := &fakeTokens{token: "tok-1"}
	svc := testService(t, sub, tokens)

	result, err := svc.Submit(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, result.Status)
	assert.Equal(t, model.KindPermanent, result.Kind)
	assert.Equal(t, 1, sub.calls)
}

func TestSubmit_PendingStopsAfterOneAttempt(t *testing.T) {
	sub := &fakeSubmission{responses: []*api.Response{
		{StatusCode: 202, Body: []byte(`{"message": "queued"}`)},
	}}
	tokens := &fakeTokens{token: "tok-1"}
	svc := testService(t, sub, tokens)

	result, err := svc.Submit(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, result.Status)
	assert.Equal(t, 1, sub.calls)
}

func TestSubmit_RejectedTokenInvalidatesCache(t *testing.T) {
	sub := &fakeSubmission{responses: []*api.Response{
		{StatusCode: 401, Body: []byte(`{"error": "expired"}`)},
	}}
	tokens := &fakeTokens{token: "tok-stale"}
	svc := testService(t, sub, tokens)

	result, err := svc.Submit(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, result.Status)
	assert.Equal(t, 1, tokens.invalidated)
}

func TestSubmit_ValidationFailureNeverHitsNetwork(t *testing.T) {
	sub := &fakeSubmission{}
	tokens := &fakeTokens{token: "tok-1"}
	svc := testService(t, sub, tokens)

	snap := testSnapshot()
	snap.Lines = nil

	result, err := svc.Submit(context.Background(), snap)
	var vErr *eims.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, model.StatusError, result.Status)
	assert.Equal(t, model.KindPermanent, result.Kind)
	assert.Zero(t, sub.calls)
	assert.Zero(t, tokens.calls)
}

func TestSubmit_CancelledDuringBackoff(t *testing.T) {
	sub := &fakeSubmission{responses: []*api.Response{
		{StatusCode: 500, Body: []byte(`oops`)},
	}}
	tokens := &fakeTokens{token: "tok-1"}

	cfg := eims.Config{
		SystemNumber: "GO1",
		MaxAttempts:  3,
		RetryBackoff: 500 * time.Millisecond,
	}
	svc, err := New(cfg,
		WithSigner(testSigner(t)),
		WithSubmissionService(sub),
		WithTokenProvider(tokens),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	result, err := svc.Submit(ctx, testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, result.Status)
	assert.Equal(t, model.KindCancelled, result.Kind)
	assert.Equal(t, 1, sub.calls)
}

func TestSubmit_AuthFailureRetriedWhenTransient(t *testing.T) {
	sub := &fakeSubmission{}
	tokens := &fakeTokens{err: &eims.AuthError{Status: 503, Body: "gateway busy"}}
	svc := testService(t, sub, tokens)

	result, err := svc.Submit(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, result.Status)
	assert.Equal(t, model.KindTransient, result.Kind)
	assert.Equal(t, 3, tokens.calls)
	assert.Zero(t, sub.calls)
}

func TestSubmit_TransportErrorIsTransient(t *testing.T) {
	sub := &fakeSubmission{err: errors.New("connection refused")}
	tokens := &fakeTokens{token: "tok-1"}
	svc := testService(t, sub, tokens)

	result, err := svc.Submit(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, result.Status)
	assert.Equal(t, model.KindTransient, result.Kind)
	assert.Equal(t, 3, sub.calls)
}
