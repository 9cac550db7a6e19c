package verification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pulpai/pulp/internal/domain/eligibility"
)

// ErrNoFixtures is returned when the service was built without a fixture
// table.
var ErrNoFixtures = errors.New("verification: fixture table not loaded")

// Service is the verification orchestrator. The provider and sink are
// optional: a nil value means the collaborator is not configured.
type Service struct {
	fixtures   *eligibility.FixtureTable
	provider   Provider
	sink       OutcomeSink
	practiceID string
	logger     zerolog.Logger
	pending    sync.WaitGroup
}

func NewService(fixtures *eligibility.FixtureTable, provider Provider, sink OutcomeSink, practiceID string, logger zerolog.Logger) *Service {
	return &Service{
		fixtures:   fixtures,
		provider:   provider,
		sink:       sink,
		practiceID: practiceID,
		logger:     logger.With().Str("component", "verification").Logger(),
	}
}

// Verify runs one verification. Provider failures never surface here: they
// degrade to fixture data. The only error is a service that cannot serve
// fixtures at all.
func (s *Service) Verify(ctx context.Context, req Request) (*Response, error) {
	if s.fixtures == nil {
		return nil, ErrNoFixtures
	}

	attempted := false
	if payerID, ok := s.canUseLiveProvider(req); ok {
		attempted = true
		resp, err := s.fromProvider(ctx, req, payerID)
		if err == nil {
			return resp, nil
		}
		s.logger.Warn().
			Err(err).
			Str("payer_id", payerID).
			Msg("live eligibility check failed, falling back to fixture data")
	}

	return s.fromFixture(req, attempted), nil
}

// canUseLiveProvider is evaluated once per request. It returns the resolved
// payer id when a live check should be attempted.
func (s *Service) canUseLiveProvider(req Request) (string, bool) {
	if s.provider == nil || !s.provider.HasCredential() {
		return "", false
	}
	if req.MemberID == "" {
		return "", false
	}
	return s.provider.ResolvePayerID(req.InsuranceName, req.PayerID)
}

func (s *Service) fromProvider(ctx context.Context, req Request, payerID string) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()

	// The provider call runs to completion once started; its own HTTP
	// timeout bounds it.
	res, err := s.provider.CheckEligibility(context.WithoutCancel(ctx), eligibility.ProviderRequest{
		MemberID:      req.MemberID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		DateOfBirth:   req.DateOfBirth,
		PayerID:       payerID,
		InsuranceName: req.InsuranceName,
	})
	if err != nil {
		return nil, err
	}
	if res == nil || res.Normalized == nil {
		return nil, errors.New("provider returned no result")
	}

	s.persist(ctx, req, payerID, res)
	return &Response{Result: res.Normalized, Source: SourceStedi}, nil
}

func (s *Service) fromFixture(req Request, attempted bool) *Response {
	if doc, ok := s.fixtures.Lookup(req.PatientID); ok {
		source := SourceFixture
		if attempted {
			source = SourceFallbackFixture
		}
		return &Response{Result: eligibility.Normalize(doc), Source: source}
	}

	res := eligibility.Normalize(s.fixtures.Generic())
	overlayIdentity(res, req)
	return &Response{Result: res, Source: SourceGeneric}
}

// overlayIdentity puts the caller's identity onto a generic result. Fields
// the caller did not send keep the generic placeholders.
func overlayIdentity(res *eligibility.Result, req Request) {
	if req.MemberID != "" {
		res.Subscriber.MemberID = strPtr(req.MemberID)
	}
	if req.FirstName != "" {
		res.Subscriber.FirstName = strPtr(req.FirstName)
	}
	if req.LastName != "" {
		res.Subscriber.LastName = strPtr(req.LastName)
	}
}

// persist hands the outcome to the sink on a separate goroutine. Errors are
// logged at debug level and dropped.
func (s *Service) persist(ctx context.Context, req Request, payerID string, res *eligibility.ProviderResult) {
	if s.sink == nil {
		return
	}

	out := &Outcome{
		ID:                 uuid.New(),
		PracticeID:         s.practiceID,
		MemberIDUsed:       req.MemberID,
		PayerIDUsed:        payerID,
		Trigger:            req.Trigger,
		VerificationStatus: res.Normalized.VerificationStatus,
		PlanStatus:         res.Normalized.PlanStatus,
		Source:             SourceStedi,
		RawResponse:        res.Raw,
		NormalizedResult:   res.Normalized,
		DurationMs:         res.DurationMs,
		CreatedAt:          time.Now().UTC(),
	}
	if out.Trigger == "" {
		out.Trigger = DefaultTrigger
	}
	if res.Normalized.PayerName != nil {
		out.PayerName = *res.Normalized.PayerName
	}

	sinkCtx := context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Warn().Str("panic", fmt.Sprintf("%v", r)).Msg("outcome sink panicked")
			}
		}()
		if err := s.sink.Save(sinkCtx, out); err != nil {
			s.logger.Debug().Err(err).Str("outcome_id", out.ID.String()).Msg("verification outcome not persisted")
		}
	}()
}

// Wait blocks until every pending outcome write has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func strPtr(s string) *string { return &s }
