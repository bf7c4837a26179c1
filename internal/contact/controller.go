package contact

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	folioerrors "github.com/conneroisu/folio/internal/errors"
	"github.com/conneroisu/folio/internal/logging"
)

// ErrSubmitInFlight is returned when a submit intent arrives while another
// attempt is still waiting on the network.
var ErrSubmitInFlight = &folioerrors.FolioError{
	Type:        folioerrors.ErrorTypeValidation,
	Code:        folioerrors.ErrCodeSubmitInFlight,
	Message:     "a submission is already in flight",
	Recoverable: true,
}

// Outcome is the result of one attempt at the moment Submit returns.
type Outcome struct {
	AttemptID string
	Status    Status
	Errors    ValidationErrors
	Err       error
}

// Controller owns the lifecycle of submission attempts against one form.
// It is safe for use from multiple goroutines; UI calls are serialized.
type Controller struct {
	ui        UI
	sender    Sender
	scheduler Scheduler
	logger    logging.Logger
	labels    Labels
	delay     time.Duration
	onReset   func(Status)

	mu      sync.Mutex
	status  Status
	pending Task
	// epoch invalidates reset callbacks that were stopped too late.
	epoch uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler replaces the timer used for the reset to idle.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithLabels replaces the control texts. Empty entries keep the defaults.
func WithLabels(l Labels) Option {
	return func(c *Controller) {
		if l.Idle != "" {
			c.labels.Idle = l.Idle
		}
		if l.Sending != "" {
			c.labels.Sending = l.Sending
		}
		if l.Sent != "" {
			c.labels.Sent = l.Sent
		}
		if l.Failed != "" {
			c.labels.Failed = l.Failed
		}
	}
}

// WithResetHook registers f to run after the control returns to idle. It
// receives the terminal status that was reset.
func WithResetHook(f func(Status)) Option {
	return func(c *Controller) { c.onReset = f }
}

// NewController creates a controller in the idle state.
func NewController(ui UI, sender Sender, opts ...Option) *Controller {
	c := &Controller{
		ui:        ui,
		sender:    sender,
		scheduler: TimerScheduler{},
		logger:    logging.Nop(),
		labels:    DefaultLabels(),
		delay:     ResetDelay,
		status:    StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("contact")
	return c
}

// Status returns the current lifecycle state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Labels returns the control texts in use.
func (c *Controller) Labels() Labels {
	return c.labels
}

// Validate checks fields and mirrors the result on the UI. Errors from a
// previous pass are cleared first.
func (c *Controller) Validate(fields Fields) ValidationErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked(fields)
}

func (c *Controller) validateLocked(fields Fields) ValidationErrors {
	errs := Validate(fields)
	for _, f := range AllFields {
		c.ui.SetFieldError(f, "")
	}
	for _, f := range AllFields {
		if msg, ok := errs[f]; ok {
			c.ui.SetFieldError(f, msg)
		}
	}
	return errs
}

// Submit runs one attempt. It validates, sends when valid, shows the result
// on the control and schedules the reset to idle. Submit blocks until the
// network call resolves; the reset happens later on the scheduler.
//
// A submit intent while a result is still displayed cancels the pending
// reset and restores the control before the new attempt starts. A submit
// intent while another attempt is in flight is ignored and reported as
// ErrSubmitInFlight.
func (c *Controller) Submit(ctx context.Context, fields Fields) Outcome {
	attemptID := uuid.NewString()
	log := c.logger.With("attempt_id", attemptID)

	c.mu.Lock()
	if c.status == StatusSubmitting {
		c.mu.Unlock()
		log.Warn(ctx, ErrSubmitInFlight, "Ignoring submit intent")
		return Outcome{AttemptID: attemptID, Status: StatusSubmitting, Err: ErrSubmitInFlight}
	}
	c.cancelPendingLocked()

	c.status = StatusValidating
	errs := c.validateLocked(fields)
	if !errs.Valid() {
		c.status = StatusIdle
		c.mu.Unlock()
		err := folioerrors.NewValidationError(folioerrors.ErrCodeValidationFailed, "contact fields are invalid").
			WithContext("invalid_fields", len(errs))
		log.Debug(ctx, "Validation failed", "invalid_fields", len(errs))
		return Outcome{AttemptID: attemptID, Status: StatusIdle, Errors: errs, Err: err}
	}

	c.status = StatusSubmitting
	c.ui.SetControlState(c.labels.Sending, false, ColorNone)
	c.mu.Unlock()

	perf := logging.StartOperation(log, "submit")
	sendErr := c.sender.Send(ctx, fields)

	c.mu.Lock()
	defer c.mu.Unlock()

	var terminal Status
	if sendErr != nil {
		terminal = StatusFailed
		c.ui.SetControlState(c.labels.Failed, false, ColorError)
		perf.EndWithError(ctx, sendErr, failureFields(terminal, sendErr)...)
	} else {
		terminal = StatusSucceeded
		c.ui.SetControlState(c.labels.Sent, false, ColorSuccess)
		perf.End(ctx, "status", terminal.String(),
			"name_len", len(fields.Name), "email_len", len(fields.Email), "message_len", len(fields.Message))
	}
	c.status = terminal

	c.epoch++
	epoch := c.epoch
	c.pending = c.scheduler.AfterFunc(c.delay, func() {
		c.reset(epoch, terminal)
	})

	return Outcome{AttemptID: attemptID, Status: terminal, Err: sendErr}
}

// failureFields describes a failed exchange for the submit log. The
// response status is included when the server answered.
func failureFields(status Status, err error) []interface{} {
	errCtx := folioerrors.GetErrorContext(err)
	fields := []interface{}{
		"status", status.String(),
		"error_type", errCtx["type"],
		"transport", folioerrors.IsTransportFailure(err),
	}
	if code, ok := errCtx["status"]; ok {
		fields = append(fields, "http_status", code)
	}
	return fields
}

// reset returns the control to idle. Fields are cleared only after success.
func (c *Controller) reset(epoch uint64, from Status) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.restoreControlLocked()
	if from == StatusSucceeded {
		c.ui.ClearFields()
	}
	c.status = StatusIdle
	hook := c.onReset
	c.mu.Unlock()

	if hook != nil {
		hook(from)
	}
}

// cancelPendingLocked stops a scheduled reset and restores the control
// without clearing fields.
func (c *Controller) cancelPendingLocked() {
	if c.pending == nil {
		return
	}
	c.pending.Stop()
	c.pending = nil
	c.epoch++
	c.restoreControlLocked()
	c.status = StatusIdle
}

func (c *Controller) restoreControlLocked() {
	c.ui.SetControlState(c.labels.Idle, true, ColorNone)
}

// Close cancels any pending reset without touching the UI.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.epoch++
}
