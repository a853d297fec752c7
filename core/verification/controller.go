package verification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/authscreens/core/logger"
	"github.com/dmitrymomot/authscreens/pkg/async"
	"github.com/dmitrymomot/authscreens/pkg/timers"
)

// Verifier is the backend collaborator for codes.
// Both calls return the backend's success message.
type Verifier interface {
	Verify(ctx context.Context, email, code string) (string, error)
	Resend(ctx context.Context, email string) (string, error)
}

// Message is a transient status line.
type Message struct {
	Success bool
	Text    string
}

// Snapshot is a consistent view of the controller for rendering.
type Snapshot struct {
	Email      string
	State      State
	Slots      [CodeLength]string
	Focus      int
	Remaining  int
	Countdown  string
	Message    Message
	HasMessage bool
	CanSubmit  bool
	CanResend  bool
}

// Controller runs one verification flow. Safe for concurrent use.
type Controller struct {
	email    string
	verifier Verifier
	opts     options
	scope    *timers.Scope
	log      *slog.Logger
	message  *timers.Transient[Message]

	// ctx is cancelled on Close and bounds every verifier call.
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	code      Code
	countdown Countdown
	ticker    timers.Handle
	closed    bool
}

// New creates a controller for email in the Entering state and starts the
// countdown.
func New(email string, verifier Verifier, opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	scope := timers.NewScope(o.clock)
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		email:     email,
		verifier:  verifier,
		opts:      o,
		scope:     scope,
		log:       o.logger.With(logger.Component("verification")),
		message:   timers.NewTransient[Message](scope),
		ctx:       ctx,
		cancel:    cancel,
		state:     Entering,
		countdown: NewCountdown(o.duration),
	}
	c.ticker = scope.Every(time.Second, c.tick)
	return c
}

// Email returns the address the flow verifies.
func (c *Controller) Email() string {
	return c.email
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Input sets slot i. See Code.Input.
func (c *Controller) Input(i int, v string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.editableLocked() {
		return false
	}
	return c.code.Input(i, v)
}

// Backspace handles backspace in slot i. See Code.Backspace.
func (c *Controller) Backspace(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editableLocked() {
		c.code.Backspace(i)
	}
}

// Paste fills the slots from clipboard text. See Code.Paste.
func (c *Controller) Paste(s string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.editableLocked() {
		return false
	}
	return c.code.Paste(s)
}

// SetCode replaces all slots with code, as submitted by a form post.
// Characters beyond CodeLength are ignored; invalid characters leave their
// slot empty.
func (c *Controller) SetCode(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.editableLocked() {
		return
	}
	c.code.Clear()
	for i, r := range []rune(code) {
		if i >= CodeLength {
			break
		}
		c.code.Input(i, string(r))
	}
}

// Submit verifies the entered code with the backend. An incomplete code or
// an expired countdown is rejected without a backend call.
func (c *Controller) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if err := c.guardLocked(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	if c.state == Expired {
		c.showLocked(false, ExpiredCodeMessage)
		c.mu.Unlock()
		return "", ErrCodeExpired
	}
	if !c.code.Complete() {
		c.showLocked(false, IncompleteCodeMessage)
		c.mu.Unlock()
		return "", ErrIncompleteCode
	}
	code := c.code.String()
	c.state = Submitting
	c.message.Clear()
	c.mu.Unlock()

	log := c.log.With(logger.Action("verify"))
	msg, err := c.call(ctx, func(ctx context.Context) (string, error) {
		return c.verifier.Verify(ctx, c.email, code)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", ErrClosed
	}

	if err != nil {
		c.state = c.settledLocked()
		c.showLocked(false, displayMessage(err, DefaultVerifyFailure))
		log.Debug("code rejected", logger.Error(err), logger.Result(c.state.String()))
		return "", err
	}

	c.state = Verified
	c.countdown.Stop()
	c.ticker.Stop()
	if msg == "" {
		msg = DefaultVerifiedMessage
	}
	c.showLocked(true, msg)
	log.Info("code verified", logger.Result(c.state.String()))

	if fn := c.opts.onVerified; fn != nil {
		email := c.email
		c.scope.After(c.opts.navDelay, func() { fn(email) })
	}
	return msg, nil
}

// Resend asks the backend for a new code. On success the slots are cleared
// and the countdown restarts at full duration. On failure the previous state
// and countdown are kept.
func (c *Controller) Resend(ctx context.Context) (string, error) {
	c.mu.Lock()
	if err := c.guardLocked(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	prior := c.state
	c.state = ResendInProgress
	c.message.Clear()
	c.mu.Unlock()

	log := c.log.With(logger.Action("resend"))
	msg, err := c.call(ctx, func(ctx context.Context) (string, error) {
		return c.verifier.Resend(ctx, c.email)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", ErrClosed
	}

	if err != nil {
		c.state = prior
		if prior == Entering {
			c.state = c.settledLocked()
		}
		c.showLocked(false, displayMessage(err, DefaultResendFailure))
		log.Debug("resend failed", logger.Error(err))
		return "", err
	}

	c.code.Clear()
	c.countdown.Reset()
	if !c.ticker.Active() {
		c.ticker = c.scope.Every(time.Second, c.tick)
	}
	c.state = Entering
	if msg == "" {
		msg = DefaultResentMessage
	}
	c.showLocked(true, msg)
	log.Info("code resent", logger.Count("remaining_seconds", c.countdown.Remaining()))
	return msg, nil
}

// SubmitAsync runs Submit on its own goroutine.
func (c *Controller) SubmitAsync(ctx context.Context) *async.Future[string] {
	return async.Async(ctx, c, func(ctx context.Context, c *Controller) (string, error) {
		return c.Submit(ctx)
	})
}

// ResendAsync runs Resend on its own goroutine.
func (c *Controller) ResendAsync(ctx context.Context) *async.Future[string] {
	return async.Async(ctx, c, func(ctx context.Context, c *Controller) (string, error) {
		return c.Resend(ctx)
	})
}

// Message returns the visible message, if any.
func (c *Controller) Message() (Message, bool) {
	return c.message.Get()
}

// Snapshot returns the current state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	s := Snapshot{
		Email:     c.email,
		State:     c.state,
		Slots:     c.code.Slots(),
		Focus:     c.code.Focus(),
		Remaining: c.countdown.Remaining(),
		Countdown: c.countdown.String(),
		CanSubmit: c.state.CanSubmit() && !c.closed,
		CanResend: c.state.CanResend() && !c.closed,
	}
	c.mu.Unlock()

	s.Message, s.HasMessage = c.message.Get()
	return s
}

// Close stops the countdown and pending callbacks and cancels in-flight
// requests. Results that arrive later are dropped. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.scope.Close()
}

// Closed reports whether Close was called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.countdown.Tick() {
		c.ticker.Stop()
		if c.state == Entering {
			c.state = Expired
		}
		c.log.Debug("code expired", logger.Result(c.state.String()))
	}
}

// call runs fn bounded by the caller's context, the request timeout and
// the controller's lifetime.
func (c *Controller) call(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	if c.opts.requestTimeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, c.opts.requestTimeout)
		defer cancelTimeout()
	}

	msg, err := fn(ctx)
	if err != nil && errors.Is(err, context.Canceled) && c.ctx.Err() != nil {
		return "", ErrClosed
	}
	return msg, err
}

func (c *Controller) guardLocked() error {
	switch {
	case c.closed:
		return ErrClosed
	case c.state.InFlight():
		return ErrRequestInFlight
	case c.state == Verified:
		return ErrAlreadyVerified
	}
	return nil
}

func (c *Controller) editableLocked() bool {
	return !c.closed && !c.state.InFlight() && c.state != Verified
}

// settledLocked is the resting state after a failed request: Expired when
// the countdown ran out meanwhile, Entering otherwise.
func (c *Controller) settledLocked() State {
	if c.countdown.Expired() {
		return Expired
	}
	return Entering
}

func (c *Controller) showLocked(success bool, text string) {
	c.message.Set(Message{Success: success, Text: text}, c.opts.messageTTL)
}
