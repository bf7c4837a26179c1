package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	folioerrors "github.com/conneroisu/folio/internal/errors"
)

// DefaultEndpoint receives submissions when no endpoint is configured.
const DefaultEndpoint = "https://formspree.io/f/mkooonjo"

// maxDrain bounds how much of a response body is read before closing.
const maxDrain = 64 << 10

// Sender delivers one set of fields to the remote endpoint. It returns nil
// on success, a ServerRejected error for a non-2xx response and a
// TransportFailure error when the exchange could not complete.
type Sender interface {
	Send(ctx context.Context, fields Fields) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, fields Fields) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, fields Fields) error {
	return f(ctx, fields)
}

// HTTPSender posts fields as JSON.
type HTTPSender struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSender creates a sender for endpoint. A nil client means a client
// without a timeout; the request lives as long as ctx.
func NewHTTPSender(endpoint string, client *http.Client) *HTTPSender {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPSender{endpoint: endpoint, client: client}
}

// Endpoint returns the target URL.
func (s *HTTPSender) Endpoint() string {
	return s.endpoint
}

// Send implements Sender. The response body is never interpreted.
func (s *HTTPSender) Send(ctx context.Context, fields Fields) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return folioerrors.NewInternalError(folioerrors.ErrCodeInternalError, "encode submission", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return folioerrors.NewTransportFailureError(err).WithContext("endpoint", s.endpoint)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return folioerrors.NewTransportFailureError(err).WithContext("endpoint", s.endpoint)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return folioerrors.NewServerRejectedError(resp.StatusCode).WithContext("endpoint", s.endpoint)
	}
	return nil
}
