package contact

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	folioerrors "github.com/conneroisu/folio/internal/errors"
)

func TestHTTPSenderPostsJSON(t *testing.T) {
	var gotMethod, gotType string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s := NewHTTPSender(srv.URL, srv.Client())
	err := s.Send(context.Background(), Fields{Name: " Ada ", Email: "ada@example.com", Message: "Hi"})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, map[string]string{"name": " Ada ", "email": "ada@example.com", "message": "Hi"}, gotBody)
}

func TestHTTPSenderStatusMapping(t *testing.T) {
	tests := []struct {
		status   int
		rejected bool
	}{
		{http.StatusOK, false},
		{http.StatusCreated, false},
		{http.StatusNoContent, false},
		{http.StatusMovedPermanently, true},
		{http.StatusBadRequest, true},
		{http.StatusUnprocessableEntity, true},
		{http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status >= 300 && tt.status < 400 {
					w.Header().Set("Location", "/elsewhere")
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := srv.Client()
			client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

			err := NewHTTPSender(srv.URL, client).Send(context.Background(), adaFields)
			if !tt.rejected {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, folioerrors.IsServerRejected(err))
			assert.Equal(t, tt.status, folioerrors.GetErrorContext(err)["status"])
		})
	}
}

func TestHTTPSenderTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewHTTPSender(url, nil).Send(context.Background(), adaFields)

	require.Error(t, err)
	assert.True(t, folioerrors.IsTransportFailure(err))
	assert.False(t, folioerrors.IsServerRejected(err))
}

func TestHTTPSenderCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewHTTPSender(srv.URL, srv.Client()).Send(ctx, adaFields)
	assert.True(t, folioerrors.IsTransportFailure(err))
}

func TestNewHTTPSenderDefaults(t *testing.T) {
	s := NewHTTPSender("", nil)
	assert.Equal(t, DefaultEndpoint, s.Endpoint())
	assert.Zero(t, s.client.Timeout)
}

func TestControllerWithHTTPSender(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ui := newRecordingUI(adaFields)
	c, sched := newTestController(ui, NewHTTPSender(srv.URL, srv.Client()))

	out := c.Submit(context.Background(), adaFields)
	assert.Equal(t, StatusFailed, out.Status)
	assert.True(t, folioerrors.IsServerRejected(out.Err))

	sched.fireAll()
	assert.Equal(t, adaFields, ui.currentFields())
}
