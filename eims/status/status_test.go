package status

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/addissoft/go-eims-client/eims"
	"github.com/addissoft/go-eims-client/eims/api"
	"github.com/addissoft/go-eims-client/eims/model"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus model.Status
		wantIRN    string
		wantKind   model.ErrorKind
	}{
		{"200 with top-level irn", 200, `{"irn": "IRN-XYZ"}`, model.StatusSent, "IRN-XYZ", ""},
		{"200 with body.irn", 200, `{"body": {"irn": "IRN-123"}}`, model.StatusSent, "IRN-123", ""},
		{"200 with data.irn", 200, `{"data": {"irn": "IRN-456"}}`, model.StatusSent, "IRN-456", ""},
		{"200 without irn", 200, `{"message": "queued for processing"}`, model.StatusPending, "", ""},
		{"202 accepted", 202, `{}`, model.StatusPending, "", ""},
		{"400 rejection", 400, `{"error": "invalid TIN"}`, model.StatusError, "", model.KindPermanent},
		{"401 unauthorized", 401, `{}`, model.StatusError, "", model.KindPermanent},
		{"500 server error", 500, `{}`, model.StatusError, "", model.KindTransient},
		{"503 unavailable", 503, "service unavailable", model.StatusError, "", model.KindTransient},
		{"malformed body on 200", 200, "not json", model.StatusError, "", model.KindPermanent},
		{"empty body on 200", 200, "", model.StatusError, "", model.KindPermanent},
		{"html body on 200", 200, "<html>gateway</html>", model.StatusError, "", model.KindPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Interpret(&api.Response{StatusCode: tt.status, Body: []byte(tt.body)})
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantIRN, result.IRN)
			if tt.wantStatus == model.StatusError {
				assert.Equal(t, tt.wantKind, result.Kind)
				assert.Equal(t, tt.status, result.HTTPStatus)
			}
		})
	}
}

func TestInterpret_Pure(t *testing.T) {
	resp := &api.Response{StatusCode: 200, Body: []byte(`{"irn": "IRN-XYZ"}`)}
	first := Interpret(resp)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Interpret(resp))
	}
}

func TestInterpret_MalformedSuccessBodyIsError(t *testing.T) {
	result := Interpret(&api.Response{StatusCode: 200, Body: []byte("<html>upstream error</html>")})
	assert.Equal(t, model.StatusError, result.Status)
	assert.Equal(t, model.KindPermanent, result.Kind)
	assert.Equal(t, 200, result.HTTPStatus)
	assert.Contains(t, result.Message, "<html>upstream error</html>")
	assert.Empty(t, result.IRN)
}

func TestInterpret_ErrorCarriesRemoteBody(t *testing.T) {
	result := Interpret(&api.Response{StatusCode: 400, Body: []byte(`{"error": "invalid TIN"}`)})
	assert.Equal(t, "invalid TIN", result.Message)
	assert.Equal(t, 400, result.HTTPStatus)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, model.KindPermanent, Classify(400))
	assert.Equal(t, model.KindPermanent, Classify(422))
	assert.Equal(t, model.KindTransient, Classify(500))
	assert.Equal(t, model.KindTransient, Classify(502))
	assert.Equal(t, model.KindTransient, Classify(0))
}

func TestInterpretErr_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := InterpretErr(ctx, context.Canceled)
	assert.Equal(t, model.StatusError, result.Status)
	assert.Equal(t, model.KindCancelled, result.Kind)
}

func TestInterpretErr_Timeout(t *testing.T) {
	result := InterpretErr(context.Background(), context.DeadlineExceeded)
	assert.Equal(t, model.KindTransient, result.Kind)
}

func TestInterpretErr_AuthError(t *testing.T) {
	rejected := InterpretErr(context.Background(), &eims.AuthError{Status: 401, Body: "bad credentials"})
	assert.Equal(t, model.KindPermanent, rejected.Kind)
	assert.Equal(t, 401, rejected.HTTPStatus)

	flaky := InterpretErr(context.Background(), &eims.AuthError{Status: 503, Body: "maintenance"})
	assert.Equal(t, model.KindTransient, flaky.Kind)
}

func TestInterpretErr_ConnectionFailure(t *testing.T) {
	result := InterpretErr(context.Background(), errors.New("connection reset by peer"))
	assert.Equal(t, model.KindTransient, result.Kind)
}
