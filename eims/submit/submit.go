// Package submit orchestrates one invoice submission end to end:
// build, sign, authenticate, submit, interpret. Retries for transient
// failures are contained here and invisible to the caller except as latency.
package submit

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/addissoft/go-eims-client/eims"
	"github.com/addissoft/go-eims-client/eims/api"
	"github.com/addissoft/go-eims-client/eims/audit"
	"github.com/addissoft/go-eims-client/eims/auth"
	"github.com/addissoft/go-eims-client/eims/builder"
	"github.com/addissoft/go-eims-client/eims/keys"
	"github.com/addissoft/go-eims-client/eims/model"
	"github.com/addissoft/go-eims-client/eims/signer"
	"github.com/addissoft/go-eims-client/eims/status"
)

var logger = log.WithField("component", "eims.submit")

type state int

const (
	stateIdle state = iota
	stateBuilding
	stateSigning
	stateAuthenticating
	stateSubmitting
	stateInterpreting
	stateDone
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateBuilding:
		return "building"
	case stateSigning:
		return "signing"
	case stateAuthenticating:
		return "authenticating"
	case stateSubmitting:
		return "submitting"
	case stateInterpreting:
		return "interpreting"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// Service runs submissions for one pipeline configuration. Safe for
// concurrent use; each Submit call is an independent unit of work.
type Service struct {
	cfg      eims.Config
	signer   *signer.Signer
	tokens   auth.Provider
	client   api.SubmissionService
	recorder audit.Recorder
}

// Option overrides one collaborator, mainly for tests and hosts that bring
// their own transport or audit sink.
type Option func(*Service)

func WithSigner(s *signer.Signer) Option {
	return func(svc *Service) { svc.signer = s }
}

func WithTokenProvider(p auth.Provider) Option {
	return func(svc *Service) { svc.tokens = p }
}

func WithSubmissionService(c api.SubmissionService) Option {
	return func(svc *Service) { svc.client = c }
}

func WithRecorder(r audit.Recorder) Option {
	return func(svc *Service) { svc.recorder = r }
}

// New wires the full pipeline from configuration. Key material is loaded
// and parsed once, here; nothing re-reads files per submission.
func New(cfg eims.Config, opts ...Option) (*Service, error) {
	svc := &Service{cfg: cfg.WithDefaults()}
	for _, opt := range opts {
		opt(svc)
	}

	if svc.signer == nil {
		material, err := keys.Load(cfg.PrivateKeyPath, cfg.CertificatePath, []byte(cfg.KeyPassword))
		if err != nil {
			return nil, &eims.SigningError{Err: err}
		}
		svc.signer, err = signer.NewFromMaterial(material)
		if err != nil {
			return nil, err
		}
	}

	if svc.client == nil || svc.tokens == nil {
		httpClient, err := api.New(api.Options{
			TLSCertFile:        svc.cfg.TLSCertPath,
			TLSKeyFile:         svc.cfg.TLSKeyPath,
			InsecureSkipVerify: svc.cfg.InsecureSkipVerify,
		})
		if err != nil {
			return nil, err
		}
		if svc.client == nil {
			svc.client = api.NewSubmissionService(httpClient, svc.cfg)
		}
		if svc.tokens == nil {
			login := api.NewLoginService(httpClient, svc.signer, svc.cfg)
			svc.tokens = auth.NewProvider(login, svc.cfg.TokenCache, svc.cfg.TokenTTL)
		}
	}

	if svc.recorder == nil {
		svc.recorder = audit.NopRecorder{}
	}

	return svc, nil
}

// Submit runs the pipeline for one invoice and returns exactly one result.
// Fatal failures (bad data, broken key material) surface immediately;
// transient auth/submission failures are retried up to cfg.MaxAttempts with
// exponential backoff. Cancellation through ctx aborts without retry.
func (s *Service) Submit(ctx context.Context, snap *model.InvoiceSnapshot) (model.SubmissionResult, error) {
	l := logger.WithField("document", documentNumber(snap))

	l.WithField("state", stateBuilding).Debug("state transition")
	payload, err := builder.Build(snap, builder.FromConfig(s.cfg))
	if err != nil {
		l.WithError(err).Error("payload build failed")
		return model.Failed(model.KindPermanent, err.Error(), 0), err
	}

	l.WithField("state", stateSigning).Debug("state transition")
	signed, err := s.signer.Sign(payload)
	if err != nil {
		l.WithError(err).Error("payload signing failed")
		return model.Failed(model.KindPermanent, err.Error(), 0), err
	}

	requestJSON, err := json.Marshal(signed)
	if err != nil {
		l.WithError(err).Error("payload serialization failed")
		return model.Failed(model.KindPermanent, err.Error(), 0), err
	}

	var result model.SubmissionResult
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		result = s.attempt(ctx, l, signed, string(requestJSON), attempt)

		if result.Status != model.StatusError || result.Kind != model.KindTransient {
			break
		}
		if attempt == s.cfg.MaxAttempts {
			break
		}

		backoff := s.cfg.RetryBackoff << (attempt - 1)
		l.WithFields(log.Fields{"attempt": attempt, "backoff": backoff}).
			Warn("transient failure, retrying")
		if err := sleep(ctx, backoff); err != nil {
			result = model.Failed(model.KindCancelled, "submission aborted during backoff", 0)
			break
		}
	}

	final := stateDone
	if result.Status == model.StatusError {
		final = stateFailed
	}
	l.WithFields(log.Fields{"state": final, "result": result.Status}).Info("submission finished")
	return result, nil
}

// attempt runs one authenticate+submit+interpret cycle and records it.
func (s *Service) attempt(ctx context.Context, l *log.Entry, payload *model.Payload, requestJSON string, n int) model.SubmissionResult {
	rec := audit.NewAttempt(payload.Request.DocumentDetails.DocumentNumber, n)
	rec.RequestJSON = requestJSON
	rec.State = audit.StateSent
	defer func() { s.recorder.Record(rec) }()

	l.WithFields(log.Fields{"state": stateAuthenticating, "attempt": n}).Debug("state transition")
	token, err := s.tokens.Token(ctx)
	if err != nil {
		result := status.InterpretErr(ctx, err)
		rec.State = audit.StateFailed
		rec.Error = result.Message
		return result
	}

	l.WithFields(log.Fields{"state": stateSubmitting, "attempt": n}).Debug("state transition")
	start := time.Now()
	resp, err := s.client.Submit(ctx, payload, token)
	rec.Elapsed = time.Since(start)
	if err != nil {
		result := status.InterpretErr(ctx, err)
		rec.State = audit.StateFailed
		rec.Error = result.Message
		return result
	}

	l.WithField("state", stateInterpreting).Debug("state transition")
	result := status.Interpret(resp)

	rec.HTTPStatus = resp.StatusCode
	rec.ResponseJSON = string(resp.Body)
	rec.Elapsed = resp.Elapsed
	switch result.Status {
	case model.StatusSent:
		rec.State = audit.StateOK
		rec.IRN = result.IRN
	case model.StatusPending:
		rec.State = audit.StateSent
	default:
		rec.State = audit.StateFailed
		rec.Error = result.Message
	}

	// A rejected token must not poison later attempts from the cache.
	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		s.tokens.Invalidate()
	}

	return result
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func documentNumber(snap *model.InvoiceSnapshot) string {
	if snap == nil {
		return ""
	}
	return snap.DocumentNumber
}
