// Package studio ties the gates and the batch runner into the single
// user-facing generation action shared by the HTTP API and the CLI.
package studio

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"styleshot/internal/catalog"
	"styleshot/internal/domain"
	"styleshot/internal/entitlement"
	"styleshot/internal/generation"
	"styleshot/internal/infra"
	"styleshot/internal/quota"
)

// GenerateParams is one generation action. Exactly one of Prompt, ImagePath,
// or ImageBase64 must be set; ImagePath is read and encoded here so callers
// off the filesystem (the CLI) and callers off the wire (the API) share the
// same entry point.
type GenerateParams struct {
	Subject     string
	Prompt      string
	ImagePath   string
	ImageBase64 string
	StyleID     int
	// Slots overrides the batch size when between 1 and the configured
	// maximum; zero means the default.
	Slots    int
	OnUpdate func(generation.Update)
}

// Outcome is the terminal state of an allowed generation action.
type Outcome struct {
	Style    domain.StyleDescriptor
	Results  []domain.GenerationResult
	Ready    int
	Quota    domain.QuotaState
	Entitled bool
	// LastFree mirrors the quota decision: this action consumed the final
	// free unit.
	LastFree bool
}

// StyleView is a catalog entry annotated for one caller.
type StyleView struct {
	domain.StyleDescriptor
	Locked bool `json:"locked"`
}

// QuotaView is the quota snapshot shown to one caller.
type QuotaView struct {
	Used      int  `json:"used"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`
	Entitled  bool `json:"entitled"`
}

// Service runs generation actions end to end: entitlement query, style gate,
// quota spend, then the batch.
type Service struct {
	catalog      *catalog.Catalog
	styleGate    *catalog.Gate
	quotaGate    *quota.Gate
	entitlements entitlement.Service
	orchestrator *generation.Orchestrator
	logger       infra.Logger
}

// NewService wires the action service. All dependencies are required except
// the logger.
func NewService(cat *catalog.Catalog, styleGate *catalog.Gate, quotaGate *quota.Gate, ent entitlement.Service, orc *generation.Orchestrator, logger *infra.Logger) (*Service, error) {
	if cat == nil || styleGate == nil || quotaGate == nil || ent == nil || orc == nil {
		return nil, errors.New("studio: missing dependency")
	}
	s := &Service{
		catalog:      cat,
		styleGate:    styleGate,
		quotaGate:    quotaGate,
		entitlements: ent,
		orchestrator: orc,
	}
	if logger != nil {
		s.logger = *logger
	} else {
		s.logger = infra.Logger(zerolog.New(io.Discard))
	}
	return s, nil
}

// Generate runs one action. Order matters: validation, entitlement, style
// gate, and the quota spend all happen before the first generation call, so
// a rejected action costs zero network traffic. A blocked quota or locked
// style also registers a paywall presentation before returning.
func (s *Service) Generate(ctx context.Context, p GenerateParams) (Outcome, error) {
	subject := strings.TrimSpace(p.Subject)
	if subject == "" {
		return Outcome{}, fmt.Errorf("studio: subject is required: %w", domain.ErrInvalidInput)
	}
	input, err := s.resolveInput(p)
	if err != nil {
		return Outcome{}, err
	}
	style, err := s.catalog.ByID(p.StyleID)
	if err != nil {
		return Outcome{}, err
	}

	entitled := s.subscribed(ctx, subject)

	if err := s.styleGate.Check(style, entitled); err != nil {
		s.presentUpgrade(ctx, subject, entitlement.TriggerFeatureUnlock)
		return Outcome{}, fmt.Errorf("studio: style %q requires a subscription: %w", style.DisplayName, err)
	}

	decision, err := s.quotaGate.CheckAndConsume(ctx, subject, entitled)
	if err != nil {
		return Outcome{}, err
	}
	if !decision.Allowed {
		s.presentUpgrade(ctx, subject, entitlement.TriggerQuotaExceeded)
		return Outcome{}, fmt.Errorf("studio: free generations used up: %w", domain.ErrQuotaBlocked)
	}

	slots := p.Slots
	if slots <= 0 {
		slots = s.orchestrator.Slots()
	}
	results, runErr := s.orchestrator.RunSlots(ctx, slots, input, style.InternalName, p.OnUpdate)
	outcome := Outcome{
		Style:    style,
		Results:  results,
		Ready:    countReady(results),
		Quota:    decision.State,
		Entitled: entitled,
		LastFree: decision.LastFree,
	}
	if runErr != nil {
		// Partial results still belong to the caller; the quota unit stays
		// spent.
		return outcome, runErr
	}
	s.logger.Info().
		Str("subject", subject).
		Str("style", style.InternalName).
		Int("ready", outcome.Ready).
		Msg("studio: generation finished")
	return outcome, nil
}

// Styles returns the catalog annotated with the caller's lock state.
func (s *Service) Styles(ctx context.Context, subject string) []StyleView {
	entitled := s.subscribed(ctx, subject)
	styles := s.catalog.Styles()
	out := make([]StyleView, 0, len(styles))
	for _, style := range styles {
		out = append(out, StyleView{
			StyleDescriptor: style,
			Locked:          s.styleGate.Check(style, entitled) != nil,
		})
	}
	return out
}

// Quota returns the caller's quota snapshot.
func (s *Service) Quota(ctx context.Context, subject string) (QuotaView, error) {
	state, err := s.quotaGate.State(ctx, subject)
	if err != nil {
		return QuotaView{}, err
	}
	return QuotaView{
		Used:      state.Used,
		Limit:     state.Limit,
		Remaining: state.Remaining(),
		Entitled:  s.subscribed(ctx, subject),
	}, nil
}

// Slots returns the configured batch size.
func (s *Service) Slots() int {
	return s.orchestrator.Slots()
}

func (s *Service) resolveInput(p GenerateParams) (generation.Input, error) {
	sources := 0
	if strings.TrimSpace(p.Prompt) != "" {
		sources++
	}
	if p.ImagePath != "" {
		sources++
	}
	if p.ImageBase64 != "" {
		sources++
	}
	if sources != 1 {
		return generation.Input{}, fmt.Errorf("studio: exactly one of prompt or image is required: %w", domain.ErrInvalidInput)
	}

	if p.ImagePath != "" {
		data, err := os.ReadFile(p.ImagePath)
		if err != nil {
			return generation.Input{}, fmt.Errorf("studio: read image %s: %w", p.ImagePath, err)
		}
		return generation.Input{ImageBase64: base64.StdEncoding.EncodeToString(data)}, nil
	}
	if p.ImageBase64 != "" {
		if _, err := base64.StdEncoding.DecodeString(p.ImageBase64); err != nil {
			return generation.Input{}, fmt.Errorf("studio: image payload is not valid base64: %w", domain.ErrInvalidInput)
		}
		return generation.Input{ImageBase64: p.ImageBase64}, nil
	}
	return generation.Input{Prompt: strings.TrimSpace(p.Prompt)}, nil
}

// subscribed degrades to false on provider errors so a flaky entitlement
// backend never takes the free tier down with it.
func (s *Service) subscribed(ctx context.Context, subject string) bool {
	entitled, err := s.entitlements.IsSubscribed(ctx, subject)
	if err != nil {
		s.logger.Warn().Err(err).Str("subject", subject).Msg("studio: entitlement check failed")
		return false
	}
	return entitled
}

func (s *Service) presentUpgrade(ctx context.Context, subject, trigger string) {
	if err := s.entitlements.PresentUpgrade(ctx, subject, trigger); err != nil {
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("studio: paywall presentation failed")
	}
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
