package api

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/addissoft/go-eims-client/eims/util"
)

// Client is the thin HTTP layer shared by the auth and submission services.
// It owns the TLS session (including the mutual-TLS client keypair) and
// nothing else: timeouts, retries and response interpretation live above it.
type Client interface {
	PostJSON(ctx context.Context, url string, body any) (*resty.Response, error)
	PostJSONAuth(ctx context.Context, url, token string, body any) (*resty.Response, error)
}

// Options configure the underlying transport.
type Options struct {
	// TLSCertFile and TLSKeyFile hold the mutual-TLS client keypair required
	// by the submission endpoint. Both empty disables client authentication.
	TLSCertFile string
	TLSKeyFile  string

	InsecureSkipVerify bool
}

type client struct {
	rest *resty.Client
}

func New(opts Options) (Client, error) {
	restyClient := resty.New()
	restyClient.SetHeader("Accept", "application/json")

	// SetTLSClientConfig replaces the whole transport config, so it must run
	// before SetCertificates or the client keypair is lost.
	if opts.InsecureSkipVerify {
		restyClient.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	if opts.TLSCertFile != "" || opts.TLSKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(opts.TLSCertFile, opts.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("load TLS client keypair: %w", err)
		}
		restyClient.SetCertificates(cert)
	}

	return &client{rest: restyClient}, nil
}

func (c *client) PostJSON(ctx context.Context, url string, body any) (*resty.Response, error) {
	r := c.rest.R()
	if util.HttpTraceEnabled() {
		r.EnableTrace()
	}

	resp, err := r.
		SetContext(ctx).
		SetBody(body).
		SetHeader("Content-Type", "application/json").
		Post(url)

	printTraceInfo(url, err, resp)
	return resp, err
}

func (c *client) PostJSONAuth(ctx context.Context, url, token string, body any) (*resty.Response, error) {
	r := c.rest.R()
	if util.HttpTraceEnabled() {
		r.EnableTrace()
	}

	resp, err := r.
		SetContext(ctx).
		SetBody(body).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(token).
		Post(url)

	printTraceInfo(url, err, resp)
	return resp, err
}

func printTraceInfo(url string, err error, resp *resty.Response) {
	if !util.HttpTraceEnabled() || resp == nil {
		return
	}

	ti := resp.Request.TraceInfo()
	log.WithFields(log.Fields{
		"url":          url,
		"status":       resp.StatusCode(),
		"err":          err,
		"dns_lookup":   ti.DNSLookup,
		"conn_time":    ti.ConnTime,
		"tls":          ti.TLSHandshake,
		"server_time":  ti.ServerTime,
		"total_time":   ti.TotalTime,
		"conn_reused":  ti.IsConnReused,
		"remote_addr":  ti.RemoteAddr,
	}).Debug("http trace")
}
