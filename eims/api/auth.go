package api

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/addissoft/go-eims-client/eims"
	"github.com/addissoft/go-eims-client/eims/model"
	"github.com/addissoft/go-eims-client/eims/signer"
)

var logger = log.WithField("component", "eims.api")

// LoginService obtains a bearer credential from the EIMS login endpoint.
// The login request is itself a signed envelope, same scheme as a
// submission.
type LoginService interface {
	Login(ctx context.Context) (model.Credential, error)
}

type loginRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	APIKey       string `json:"apikey"`
	TIN          string `json:"tin"`
}

type loginEnvelope struct {
	Request     loginRequest `json:"request"`
	Signature   string       `json:"signature"`
	Certificate string       `json:"certificate"`
}

type loginResponse struct {
	Data struct {
		AccessToken string `json:"accessToken"`
		ExpiresIn   int64  `json:"expiresIn"`
	} `json:"data"`
}

type loginService struct {
	client Client
	signer *signer.Signer
	cfg    eims.Config
}

func NewLoginService(client Client, s *signer.Signer, cfg eims.Config) LoginService {
	return &loginService{client: client, signer: s, cfg: cfg.WithDefaults()}
}

func (s *loginService) Login(ctx context.Context) (model.Credential, error) {
	req := loginRequest{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		APIKey:       s.cfg.APIKey,
		TIN:          s.cfg.TIN,
	}

	sig, err := s.signer.SignRequest(req)
	if err != nil {
		return model.Credential{}, err
	}

	envelope := loginEnvelope{
		Request:     req,
		Signature:   sig,
		Certificate: s.signer.CertificateBase64(),
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.AuthTimeout)
	defer cancel()

	resp, err := s.client.PostJSON(ctx, s.cfg.LoginURL, envelope)
	if err != nil {
		// Transport failure: no status code, message holds no secrets.
		logger.WithError(err).Warn("login request failed")
		return model.Credential{}, err
	}

	if resp.IsError() {
		logger.WithField("status", resp.StatusCode()).Warn("login rejected")
		return model.Credential{}, &eims.AuthError{Status: resp.StatusCode(), Body: resp.String()}
	}

	var body loginResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil || body.Data.AccessToken == "" {
		logger.WithField("status", resp.StatusCode()).Warn("login response missing data.accessToken")
		return model.Credential{}, &eims.AuthError{Status: resp.StatusCode(), Body: "response missing data.accessToken"}
	}

	cred := model.Credential{Token: body.Data.AccessToken}
	if body.Data.ExpiresIn > 0 {
		cred.ExpiresAt = time.Now().UTC().Add(time.Duration(body.Data.ExpiresIn) * time.Second)
	}

	logger.WithField("status", resp.StatusCode()).Info("login successful")
	return cred, nil
}
