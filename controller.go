package designgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultPrompt is the prompt a new designer session starts with.
const DefaultPrompt = `A bold and modern T-shirt design featuring the phrase “TURN THE VOLUME UP” in large, distressed sans-serif typography. The text is centered with “TURN THE” on top and “VOLUME UP” below. Under the words, a clean blue rectangle with white stars and red stripes adds patriotic energy. Add subtle 3D shading, slight metallic texture, and warm gradient lighting for a premium finish. Keep it powerful, minimal, and perfectly balanced on a solid dark grey background, high contrast, no watermarks, ready for print-on-demand shirts.`

// Observer receives a View after every state change, in the order the
// changes happened. Observers run outside the controller's lock and may
// call back into the controller.
type Observer func(View)

type subscription struct {
	id int
	fn Observer
}

// Controller owns the prompt text and the generation state of one designer
// session and runs at most one provider call at a time.
//
// Every transition happens under mu, so no two transitions interleave. The
// provider call is the only point where the controller waits, and it waits
// in its own goroutine: Generate never blocks on the provider.
type Controller struct {
	provider ImageProvider
	logger   *slog.Logger
	timeout  time.Duration
	newID    func() string

	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	prompt string
	state  State
	seq    uint64 // bumped on every accepted Generate
	genID  string
	idle   chan struct{}
	closed bool

	subs       []subscription
	nextSubID  int
	pending    []View
	delivering bool

	inflight sync.WaitGroup
}

// NewController creates a Controller in the Idle state that calls provider
// once per accepted Generate. The initial prompt is DefaultPrompt unless
// WithPrompt says otherwise.
func NewController(provider ImageProvider, opts ...ControllerOption) *Controller {
	idle := make(chan struct{})
	close(idle)

	c := &Controller{
		provider: provider,
		logger:   slog.Default(),
		newID:    uuid.NewString,
		prompt:   DefaultPrompt,
		state:    Idle(),
		idle:     idle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseCtx, c.cancel = context.WithCancel(context.Background())

	return c
}

// Generate starts a generation with the current prompt. It returns false,
// and changes nothing, when the prompt is empty, a generation is already in
// flight, or the controller is closed.
//
// An accepted call flips the state to Generating, dropping any previous
// image or error, before the provider is invoked.
func (c *Controller) Generate() bool {
	c.mu.Lock()
	if reason := c.rejectReasonLocked(); reason != "" {
		c.mu.Unlock()
		c.logger.Debug("generate ignored", "reason", reason)
		return false
	}

	c.seq++
	seq := c.seq
	c.genID = c.newID()
	id := c.genID
	prompt := c.prompt
	idle := make(chan struct{})
	c.idle = idle
	c.state = Generating()
	c.inflight.Add(1)
	c.enqueueLocked()
	c.mu.Unlock()

	c.publish()

	c.logger.Info("generation started",
		"generation_id", id,
		"prompt_length", len(prompt),
	)

	go c.run(seq, id, prompt, idle)
	return true
}

func (c *Controller) rejectReasonLocked() string {
	switch {
	case c.closed:
		return "closed"
	case c.prompt == "":
		return "empty prompt"
	case c.state.IsLoading():
		return "generation in flight"
	}
	return ""
}

func (c *Controller) run(seq uint64, id, prompt string, idle chan struct{}) {
	defer c.inflight.Done()

	start := time.Now()
	ref, err := c.request(prompt)
	c.resolve(seq, id, ref, err, time.Since(start), idle)
}

// request performs the provider call. Panics and context expiry are turned
// into errors here so that every outcome reaches resolve. The call runs in
// its own goroutine so that expiry resolves the generation even when the
// provider ignores ctx; a result arriving later is dropped.
func (c *Controller) request(prompt string) (ImageRef, error) {
	if c.provider == nil {
		return "", &ProviderError{Err: errors.New("no image provider configured")}
	}

	ctx := c.baseCtx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	done := make(chan providerOutcome, 1)
	go func() {
		done <- c.call(ctx, prompt)
	}()

	var out providerOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		select {
		case out = <-done:
		default:
			return "", contextFailure(ctx.Err(), nil)
		}
	}

	if out.err != nil && ctx.Err() != nil {
		return "", contextFailure(ctx.Err(), out.err)
	}
	if out.err == nil && out.ref.IsZero() {
		return "", NewProviderError(ErrNoImage.Error(), ErrNoImage)
	}
	return out.ref, out.err
}

type providerOutcome struct {
	ref ImageRef
	err error
}

func (c *Controller) call(ctx context.Context, prompt string) (out providerOutcome) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("image provider panicked", "panic", fmt.Sprint(r))
			out = providerOutcome{err: &ProviderError{Err: fmt.Errorf("provider panic: %v", r)}}
		}
	}()

	ref, err := c.provider.RequestImage(ctx, prompt)
	return providerOutcome{ref: ref, err: err}
}

// contextFailure maps an expired call context to the timeout or
// cancellation failure. cause is the provider's own error, if any.
func contextFailure(ctxErr, cause error) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return NewProviderError(ErrGenerationTimeout.Error(), errors.Join(ErrGenerationTimeout, ctxErr, cause))
	}
	return NewProviderError(ErrGenerationCancelled.Error(), errors.Join(ErrGenerationCancelled, ctxErr, cause))
}

func (c *Controller) resolve(seq uint64, id string, ref ImageRef, err error, duration time.Duration, idle chan struct{}) {
	c.mu.Lock()
	defer close(idle)

	if seq != c.seq {
		c.mu.Unlock()
		c.logger.Warn("discarding stale generation result", "generation_id", id)
		return
	}

	if err != nil {
		c.state = Failed(ErrorMessage(err))
	} else {
		c.state = Succeeded(ref)
	}
	c.enqueueLocked()
	c.mu.Unlock()

	c.publish()

	if err != nil {
		c.logger.Error("generation failed",
			"generation_id", id,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	c.logger.Info("generation completed",
		"generation_id", id,
		"duration_ms", duration.Milliseconds(),
		"mime_type", ref.MIMEType(),
	)
}

// SetPrompt replaces the prompt text. It is allowed while a generation is
// in flight; the running request keeps the prompt it started with.
func (c *Controller) SetPrompt(prompt string) {
	c.mu.Lock()
	if c.prompt == prompt {
		c.mu.Unlock()
		return
	}
	c.prompt = prompt
	c.enqueueLocked()
	c.mu.Unlock()

	c.publish()
}

// Prompt returns the current prompt text.
func (c *Controller) Prompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompt
}

// State returns the current generation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a consistent view of prompt and state.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Display returns the input of the mockup preview.
func (c *Controller) Display() Display {
	return c.Snapshot().Display()
}

// CanGenerate reports whether Generate would currently start a generation.
func (c *Controller) CanGenerate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rejectReasonLocked() == ""
}

// CanExport reports whether a finished design is available.
func (c *Controller) CanExport() bool {
	return c.Snapshot().CanExport()
}

// Export saves the current design to storage under name (extension added).
// It returns ErrNothingToExport unless the last generation succeeded.
func (c *Controller) Export(ctx context.Context, storage Storage, name string) (*ExportResult, error) {
	view := c.Snapshot()
	if !view.CanExport() {
		return nil, ErrNothingToExport
	}

	result, err := ExportImage(ctx, storage, view.ImageRef, name)
	if err != nil {
		c.logger.Error("export failed", "generation_id", view.GenerationID, "error", err.Error())
		return nil, err
	}

	c.logger.Info("design exported",
		"generation_id", view.GenerationID,
		"path", result.Path,
		"size", result.Size,
	)
	return result, nil
}

// Subscribe registers an observer and returns a function that removes it.
func (c *Controller) Subscribe(fn Observer) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSubID++
	id := c.nextSubID
	c.subs = append(c.subs, subscription{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Wait blocks until no generation is in flight or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels any in-flight provider call, waits for the generation to
// resolve as Failed and rejects further generations. It does not wait for
// a provider that ignores cancellation to return, so it is the way to
// abandon a provider call that never returns.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.inflight.Wait()
	return nil
}

func (c *Controller) viewLocked() View {
	v := View{
		Phase:        c.state.Phase(),
		Prompt:       c.prompt,
		IsLoading:    c.state.IsLoading(),
		ErrorMessage: c.state.ErrorMessage(),
		ImageRef:     c.state.ImageRef(),
	}
	if c.seq > 0 {
		v.GenerationID = c.genID
	}
	return v
}

func (c *Controller) enqueueLocked() {
	if len(c.subs) == 0 {
		return
	}
	c.pending = append(c.pending, c.viewLocked())
}

// publish delivers queued views. Only one goroutine delivers at a time;
// views queued meanwhile (including by observers calling back in) are
// picked up by the delivering goroutine, which keeps them in order.
func (c *Controller) publish() {
	c.mu.Lock()
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true

	for len(c.pending) > 0 {
		views := c.pending
		c.pending = nil
		subs := append([]subscription(nil), c.subs...)
		c.mu.Unlock()

		for _, v := range views {
			for _, s := range subs {
				s.fn(v)
			}
		}

		c.mu.Lock()
	}

	c.delivering = false
	c.mu.Unlock()
}
