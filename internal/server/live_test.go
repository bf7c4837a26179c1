package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/folio/internal/contact"
	folioerrors "github.com/conneroisu/folio/internal/errors"
	"github.com/conneroisu/folio/internal/htmlsurface"
	"github.com/conneroisu/folio/internal/live"
)

type liveClient struct {
	t    *testing.T
	ctx  context.Context
	conn *websocket.Conn
}

func dialLive(t *testing.T, s *PreviewServer) *liveClient {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+livePath, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"http://localhost:8080"}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })

	return &liveClient{t: t, ctx: ctx, conn: conn}
}

func (c *liveClient) submit(fields contact.Fields) {
	c.t.Helper()
	require.NoError(c.t, wsjson.Write(c.ctx, c.conn, live.Request{Type: live.MsgSubmit, Fields: fields}))
}

func (c *liveClient) next() live.Message {
	c.t.Helper()
	var op live.Message
	require.NoError(c.t, wsjson.Read(c.ctx, c.conn, &op))
	return op
}

// until reads ops up to and including the first one named op.
func (c *liveClient) until(op string) []live.Message {
	c.t.Helper()
	var ops []live.Message
	for {
		o := c.next()
		ops = append(ops, o)
		if o.Op == op {
			return ops
		}
	}
}

func controlStates(ops []live.Message) []live.Message {
	var out []live.Message
	for _, o := range ops {
		if o.Op == live.OpControlState {
			out = append(out, o)
		}
	}
	return out
}

var validFields = contact.Fields{Name: "Ada", Email: "ada@example.com", Message: "Hello"}

func TestLiveSubmitSuccess(t *testing.T) {
	s, sched := newTestServer(t, testConfig(t), okSender())
	c := dialLive(t, s)

	c.submit(validFields)
	ops := c.until(live.OpOutcome)

	require.Len(t, ops, 6)
	for _, o := range ops[:3] {
		assert.Equal(t, live.OpFieldError, o.Op)
		assert.Empty(t, o.Message)
	}
	states := controlStates(ops)
	require.Len(t, states, 2)
	assert.Equal(t, "Sending...", states[0].Label)
	assert.False(t, *states[0].Enabled)
	assert.Equal(t, "✓ Message Sent!", states[1].Label)
	assert.Equal(t, string(contact.ColorSuccess), states[1].Color)
	assert.Equal(t, contact.SuccessColor, states[1].Background)
	assert.Equal(t, "succeeded", ops[5].Status)
	assert.NotEmpty(t, ops[5].AttemptID)

	require.Equal(t, 1, sched.pending())
	assert.Equal(t, []time.Duration{contact.ResetDelay}, sched.delays)
	sched.fireAll()

	after := c.until(live.OpReset)
	require.Len(t, after, 3)
	assert.Equal(t, live.OpControlState, after[0].Op)
	assert.Equal(t, "Send Message", after[0].Label)
	assert.True(t, *after[0].Enabled)
	assert.Empty(t, after[0].Color)
	assert.Equal(t, live.OpClearFields, after[1].Op)
	assert.Equal(t, "succeeded", after[2].Status)
}

func TestLiveSubmitFailureKeepsFields(t *testing.T) {
	sender := contact.SenderFunc(func(context.Context, contact.Fields) error {
		return folioerrors.NewTransportFailureError(context.DeadlineExceeded)
	})
	s, sched := newTestServer(t, testConfig(t), sender)
	c := dialLive(t, s)

	c.submit(validFields)
	ops := c.until(live.OpOutcome)

	states := controlStates(ops)
	require.Len(t, states, 2)
	assert.Equal(t, "Error Sending", states[1].Label)
	assert.Equal(t, contact.ErrorColor, states[1].Background)
	assert.Equal(t, "failed", ops[len(ops)-1].Status)
	assert.NotEmpty(t, ops[len(ops)-1].Error)

	sched.fireAll()
	after := c.until(live.OpReset)
	for _, o := range after {
		assert.NotEqual(t, live.OpClearFields, o.Op)
	}
	assert.Equal(t, "failed", after[len(after)-1].Status)
}

func TestLiveValidationErrors(t *testing.T) {
	s, sched := newTestServer(t, testConfig(t), okSender())
	c := dialLive(t, s)

	c.submit(contact.Fields{Name: "  ", Email: "", Message: "\t"})
	ops := c.until(live.OpOutcome)

	shown := map[string]string{}
	for _, o := range ops {
		if o.Op == live.OpFieldError && o.Message != "" {
			shown[o.Field] = o.Message
		}
	}
	assert.Equal(t, map[string]string{
		"name":    contact.MsgNameRequired,
		"email":   contact.MsgEmailRequired,
		"message": contact.MsgMessageRequired,
	}, shown)
	assert.Empty(t, controlStates(ops))
	assert.Equal(t, "idle", ops[len(ops)-1].Status)
	assert.Zero(t, sched.pending())
}

func TestLiveValidateMessage(t *testing.T) {
	s, _ := newTestServer(t, testConfig(t), okSender())
	c := dialLive(t, s)

	require.NoError(t, wsjson.Write(c.ctx, c.conn, live.Request{
		Type:   live.MsgValidate,
		Fields: contact.Fields{Name: "Ada", Email: "not-an-email", Message: "Hi"},
	}))

	var ops []live.Message
	for i := 0; i < 4; i++ {
		ops = append(ops, c.next())
	}
	assert.Equal(t, live.Message{Op: live.OpFieldError, Field: "email", Message: contact.MsgEmailInvalid}, ops[3])
}

func TestLiveSubmitWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	sender := contact.SenderFunc(func(ctx context.Context, _ contact.Fields) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return folioerrors.NewTransportFailureError(ctx.Err())
		}
	})
	s, _ := newTestServer(t, testConfig(t), sender)
	c := dialLive(t, s)

	c.submit(validFields)
	states := controlStates(c.until(live.OpControlState))
	require.Equal(t, "Sending...", states[0].Label)

	c.submit(validFields)
	rejected := c.next()
	assert.Equal(t, live.OpOutcome, rejected.Op)
	assert.Equal(t, "submitting", rejected.Status)
	assert.Equal(t, contact.ErrSubmitInFlight.Error(), rejected.Error)

	close(release)
	ops := c.until(live.OpOutcome)
	assert.Equal(t, "succeeded", ops[len(ops)-1].Status)
}

func TestLiveRejectsUnknownMessages(t *testing.T) {
	s, _ := newTestServer(t, testConfig(t), okSender())
	c := dialLive(t, s)

	require.NoError(t, c.conn.Write(c.ctx, websocket.MessageText, []byte(`{"type":"dance"}`)))
	assert.Equal(t, live.OpError, c.next().Op)

	require.NoError(t, c.conn.Write(c.ctx, websocket.MessageText, []byte(`not json`)))
	assert.Equal(t, live.Message{Op: live.OpError, Error: "malformed message"}, c.next())
}

func TestLiveRejectsForeignOrigin(t *testing.T) {
	s, _ := newTestServer(t, testConfig(t), okSender())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+livePath, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"http://evil.example"}},
	})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLiveThemeBroadcast(t *testing.T) {
	s, _ := newTestServer(t, testConfig(t), okSender())
	c := dialLive(t, s)

	require.Eventually(t, func() bool { return s.live.ConnectedClients() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, s.live.Broadcast(live.Message{Op: live.OpTheme, Theme: "dark"}))

	assert.Equal(t, live.Message{Op: live.OpTheme, Theme: "dark"}, c.next())
}

func TestLiveClientDrivesRenderedPage(t *testing.T) {
	s, sched := newTestServer(t, testConfig(t), okSender())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	page := httptest.NewRecorder()
	s.Handler().ServeHTTP(page, httptest.NewRequest(http.MethodGet, "/", nil))
	doc, err := htmlsurface.Parse(page.Body)
	require.NoError(t, err)
	doc.SetFields(validFields)

	target, err := live.ResolveURL(ts.URL+"/", livePath)
	require.NoError(t, err)
	client, err := live.Dial(ctx, target, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"http://localhost:8080"}},
	}, nil)
	require.NoError(t, err)

	outcomes := make(chan live.Message, 2)
	resets := make(chan live.Message, 1)
	runDone := make(chan error, 1)
	go func() {
		runDone <- client.Run(ctx, func(m live.Message) {
			if live.Apply(doc, m) {
				return
			}
			switch m.Op {
			case live.OpOutcome:
				outcomes <- m
			case live.OpReset:
				resets <- m
			}
		})
	}()

	require.NoError(t, client.Submit(ctx, doc.Fields()))
	out := <-outcomes
	assert.Equal(t, "succeeded", out.Status)

	label, enabled, bg := doc.Control()
	assert.Equal(t, "✓ Message Sent!", label)
	assert.False(t, enabled)
	assert.Equal(t, contact.SuccessColor, bg)
	assert.Equal(t, validFields, doc.Fields())

	sched.fireAll()
	<-resets

	label, enabled, bg = doc.Control()
	assert.Equal(t, "Send Message", label)
	assert.True(t, enabled)
	assert.Empty(t, bg)
	assert.Equal(t, contact.Fields{}, doc.Fields())

	_ = client.Close()
	select {
	case <-runDone:
	case <-ctx.Done():
		t.Fatal("Run did not return after Close")
	}
}
