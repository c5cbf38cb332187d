package generation

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"styleshot/internal/domain"
	"styleshot/internal/infra"
)

const dataURIPrefix = "data:image/jpeg;base64,"

// Generator is the single-variant call the orchestrator drives. Satisfied by
// *Client; tests swap in a scripted fake.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Input is the user-supplied source for a batch. Exactly one of Prompt or
// ImageBase64 must be non-empty.
type Input struct {
	Prompt      string
	ImageBase64 string
}

// ImageMode reports whether the batch restyles an uploaded photo.
func (in Input) ImageMode() bool {
	return in.ImageBase64 != ""
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Prompt) == "" && in.ImageBase64 == "" {
		return domain.ErrInvalidInput
	}
	if strings.TrimSpace(in.Prompt) != "" && in.ImageBase64 != "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// Update is a snapshot emitted after every slot transition. Results holds the
// full per-slot state so observers can render the grid without tracking
// deltas themselves.
type Update struct {
	Slot    int
	Ready   int
	Results []domain.GenerationResult
}

// Orchestrator runs a batch of sequential generation calls, one per slot.
// Slots run strictly in order; a failed slot is recorded and the batch moves
// on to the next one.
type Orchestrator struct {
	client Generator
	slots  int
	logger infra.Logger
}

// NewOrchestrator wires a batch runner over the given single-variant client.
// slots values below one fall back to the standard batch of four.
func NewOrchestrator(client Generator, slots int, logger *infra.Logger) *Orchestrator {
	if slots < 1 {
		slots = 4
	}
	var l infra.Logger
	if logger != nil {
		l = *logger
	} else {
		l = infra.Logger(zerolog.New(io.Discard))
	}
	return &Orchestrator{client: client, slots: slots, logger: l}
}

// Slots returns the batch size.
func (o *Orchestrator) Slots() int {
	return o.slots
}

// Run executes the batch at the configured size. onUpdate, when non-nil,
// receives a snapshot after each slot transition. Cancellation aborts the
// in-flight call, marks it failed, leaves the remaining slots pending, and
// returns the context error alongside the partial results. Per-slot failures
// are reflected in the results only; Run itself returns a non-nil error just
// for invalid input or cancellation.
func (o *Orchestrator) Run(ctx context.Context, input Input, style string, onUpdate func(Update)) ([]domain.GenerationResult, error) {
	return o.RunSlots(ctx, o.slots, input, style, onUpdate)
}

// RunSlots is Run with an explicit batch size, clamped to the configured
// maximum.
func (o *Orchestrator) RunSlots(ctx context.Context, slots int, input Input, style string, onUpdate func(Update)) ([]domain.GenerationResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(style) == "" {
		return nil, domain.ErrInvalidInput
	}
	if slots < 1 || slots > o.slots {
		slots = o.slots
	}

	results := make([]domain.GenerationResult, slots)
	for i := range results {
		results[i] = domain.GenerationResult{Slot: i, Status: domain.SlotPending}
	}

	emit := func(slot int) {
		if onUpdate == nil {
			return
		}
		snapshot := make([]domain.GenerationResult, len(results))
		copy(snapshot, results)
		onUpdate(Update{Slot: slot, Ready: countReady(results), Results: snapshot})
	}

	prompt := strings.TrimSpace(input.Prompt)
	for i := 0; i < slots; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		results[i].Status = domain.SlotInFlight
		emit(i)

		req := Request{Style: style, Slot: i}
		if input.ImageMode() {
			// The photo is resent as-is for every slot; variation comes
			// from the model, not the payload.
			req.ImageBase64 = input.ImageBase64
		} else {
			req.Prompt = slotPrompt(prompt, i)
		}

		b64, err := o.client.Generate(ctx, req)
		if err != nil {
			results[i].Status = domain.SlotFailed
			results[i].ErrorMessage = failureMessage(err)
			o.logger.Warn().Err(err).Int("slot", i).Str("style", style).Msg("generation: slot failed")
			emit(i)
			var callErr *CallError
			if errors.As(err, &callErr) && callErr.Kind == KindCanceled {
				return results, context.Canceled
			}
			if err := ctx.Err(); err != nil {
				return results, err
			}
			continue
		}

		results[i].Status = domain.SlotSucceeded
		results[i].ImageDataURI = dataURIPrefix + b64
		emit(i)
	}

	return results, nil
}

func countReady(results []domain.GenerationResult) int {
	n := 0
	for _, r := range results {
		if r.Status == domain.SlotSucceeded {
			n++
		}
	}
	return n
}

// failureMessage strips internal detail down to the user-visible line.
func failureMessage(err error) string {
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr.Message
	}
	return "generation failed"
}
