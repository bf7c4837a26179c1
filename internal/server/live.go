package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/live"
	"github.com/conneroisu/folio/internal/logging"
	hub "github.com/conneroisu/folio/internal/websocket"
)

// liveSession is the contact.UI of one connected browser. Each operation
// the controller performs is pushed to the page as it happens, including
// the delayed reset.
type liveSession struct {
	client *hub.Client
	ctrl   *contact.Controller
	logger logging.Logger

	// attempts tracks Submit calls still running.
	attempts sync.WaitGroup
}

var _ contact.UI = (*liveSession)(nil)

func (s *PreviewServer) newLiveSession(_ context.Context, client *hub.Client) hub.Session {
	ls := &liveSession{
		client: client,
		logger: s.logger.With("client_id", client.ID()),
	}
	ls.ctrl = contact.NewController(ls, s.sender,
		contact.WithLogger(ls.logger),
		contact.WithLabels(s.labels()),
		contact.WithScheduler(s.scheduler),
		contact.WithResetHook(func(from contact.Status) {
			ls.push(live.Message{Op: live.OpReset, Status: from.String()})
		}),
	)
	return ls
}

// HandleMessage implements websocket.Session. Submissions run on their own
// goroutine so that an intent arriving mid-flight reaches the controller.
func (ls *liveSession) HandleMessage(ctx context.Context, data []byte) {
	var req live.Request
	if err := json.Unmarshal(data, &req); err != nil {
		ls.push(live.Message{Op: live.OpError, Error: "malformed message"})
		return
	}

	switch req.Type {
	case live.MsgSubmit:
		ls.attempts.Add(1)
		go func() {
			defer ls.attempts.Done()
			ls.push(live.Outcome(ls.ctrl.Submit(ctx, req.Fields)))
		}()
	case live.MsgValidate:
		ls.ctrl.Validate(req.Fields)
	default:
		ls.push(live.Message{Op: live.OpError, Error: "unknown message type " + req.Type})
	}
}

// Close implements websocket.Session. It waits for running attempts, whose
// context is already cancelled, then drops the pending reset.
func (ls *liveSession) Close() {
	ls.attempts.Wait()
	ls.ctrl.Close()
}

func (ls *liveSession) SetFieldError(field contact.Field, message string) {
	ls.push(live.FieldError(field, message))
}

func (ls *liveSession) SetControlState(label string, enabled bool, color contact.ColorTag) {
	ls.push(live.ControlState(label, enabled, color))
}

func (ls *liveSession) ClearFields() {
	ls.push(live.ClearFields())
}

func (ls *liveSession) push(op live.Message) {
	if err := ls.client.Send(op); err != nil {
		ls.logger.Debug(context.Background(), "Dropped live operation", "op", op.Op, "error", err.Error())
	}
}
