// Package stedi is the live eligibility provider: it sends real-time 270
// requests to Stedi and maps the 271 response into an eligibility document.
package stedi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pulpai/pulp/internal/domain/eligibility"
)

const (
	DefaultBaseURL  = "https://healthcare.us.stedi.com/2024-04-01"
	eligibilityPath = "/change/medicalnetwork/eligibility/v3"

	// dentalServiceType is X12 service type 35, dental care.
	dentalServiceType = "35"

	// patientNamespace seeds the deterministic external patient id.
	patientNamespace = "6ba7b810-98ed-11da-adc0-2cd803534e97"

	maxResponseBytes = 4 << 20
)

var (
	// ErrNoCredential is returned when no API key is configured.
	ErrNoCredential = errors.New("stedi: no api key configured")
	// ErrUpstream wraps any non-success answer from the clearinghouse.
	ErrUpstream = errors.New("stedi: upstream error")
)

// Config holds the provider settings.
type Config struct {
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
	ProviderNPI  string
	ProviderName string
}

// Client calls the Stedi real-time eligibility API.
type Client struct {
	apiKey       string
	url          string
	providerNPI  string
	providerName string
	http         *http.Client
	logger       zerolog.Logger
}

// NewClient builds a client. The HTTP timeout bounds every provider call.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiKey:       cfg.APIKey,
		url:          base + eligibilityPath,
		providerNPI:  cfg.ProviderNPI,
		providerName: cfg.ProviderName,
		http:         &http.Client{Timeout: timeout},
		logger:       logger.With().Str("component", "stedi").Logger(),
	}
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return c != nil && c.apiKey != ""
}

// ResolvePayerID resolves the trading partner id for a request.
func (c *Client) ResolvePayerID(insuranceName, payerID string) (string, bool) {
	return ResolvePayerID(insuranceName, payerID)
}

// CheckEligibility runs one real-time eligibility check and returns the
// normalized result together with the raw 271 body.
func (c *Client) CheckEligibility(ctx context.Context, req eligibility.ProviderRequest) (*eligibility.ProviderResult, error) {
	if !c.HasCredential() {
		return nil, ErrNoCredential
	}
	start := time.Now()

	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("stedi: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("stedi: create request: %w", err)
	}
	httpReq.Header.Set("Authorization", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("stedi: call eligibility: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("stedi: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var parsed eligibilityResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("stedi: decode response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		e := parsed.Errors[0]
		return nil, fmt.Errorf("%w: payer rejected request (code %s: %s)", ErrUpstream, e.Code, e.Description)
	}

	doc := mapResponse(&parsed, req.PayerID)
	elapsed := time.Since(start).Milliseconds()
	c.logger.Debug().
		Str("payer_id", req.PayerID).
		Int64("duration_ms", elapsed).
		Msg("eligibility response received")

	return &eligibility.ProviderResult{
		Normalized: eligibility.Normalize(doc),
		Raw:        raw,
		DurationMs: elapsed,
	}, nil
}

func (c *Client) buildRequest(req eligibility.ProviderRequest) eligibilityRequest {
	dob := strings.ReplaceAll(strings.TrimSpace(req.DateOfBirth), "-", "")
	patientKey := fmt.Sprintf("%s-%s-%s", req.FirstName, req.LastName, dob)
	externalID := uuid.NewSHA1(uuid.MustParse(patientNamespace), []byte(patientKey))

	return eligibilityRequest{
		ControlNumber:           controlNumber(),
		TradingPartnerServiceID: req.PayerID,
		ExternalPatientID:       externalID.String(),
		Encounter:               requestEncounter{ServiceTypeCodes: []string{dentalServiceType}},
		Provider: requestProvider{
			NPI:              c.providerNPI,
			OrganizationName: c.providerName,
		},
		Subscriber: requestSubscriber{
			MemberID:    req.MemberID,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			DateOfBirth: dob,
		},
	}
}

// controlNumber is the nine digit interchange control number.
func controlNumber() string {
	return fmt.Sprintf("%09d", uuid.New().ID()%1000000000)
}
