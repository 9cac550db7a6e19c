package verification

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pulpai/pulp/internal/platform/apierror"
	"github.com/pulpai/pulp/internal/platform/hipaa"
	"github.com/pulpai/pulp/internal/platform/middleware"
	"github.com/pulpai/pulp/pkg/pagination"
)

const (
	msgPatientIDRequired  = "patient_id is required."
	msgVerificationFailed = "Verification failed."
)

type Handler struct {
	svc      *Service
	outcomes OutcomeRepository
	logger   zerolog.Logger
}

// NewHandler builds the HTTP handler. outcomes may be nil when no database
// is configured; the listing route is then not mounted.
func NewHandler(svc *Service, outcomes OutcomeRepository, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, outcomes: outcomes, logger: logger}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/verify", h.Verify)
	if h.outcomes != nil {
		g.GET("/verifications", h.ListVerifications)
	}
}

// Verify handles POST /verify. A panic anywhere in the request is answered
// with the same redacted 500 body as any other failure.
func (h *Handler) Verify(c echo.Context) (err error) {
	var req Request
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if r == http.ErrAbortHandler {
			panic(r)
		}
		err = h.fail(c, req, fmt.Errorf("verification panic: %v", r))
	}()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return h.fail(c, Request{}, fmt.Errorf("read request body: %w", err))
	}

	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return h.fail(c, Request{}, fmt.Errorf("decode request body: %w", err))
		}
	}
	if req.PatientID == "" {
		return apierror.Write(c, http.StatusBadRequest, apierror.New(msgPatientIDRequired))
	}
	if req.Trigger == "" {
		req.Trigger = DefaultTrigger
	}

	resp, err := h.svc.Verify(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, req, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// fail writes the 500 body. The detail string is scrubbed of any identity
// the caller sent.
func (h *Handler) fail(c echo.Context, req Request, err error) error {
	redactor := hipaa.NewRedactor(map[hipaa.PHIField]string{
		hipaa.PHIMemberID:    req.MemberID,
		hipaa.PHIFirstName:   req.FirstName,
		hipaa.PHILastName:    req.LastName,
		hipaa.PHIDateOfBirth: req.DateOfBirth,
	})
	detail := redactor.Redact(err.Error())

	rid, _ := c.Get(middleware.RequestIDKey).(string)
	h.logger.Error().Str("request_id", rid).Str("detail", detail).Msg("verification failed")

	return apierror.Write(c, http.StatusInternalServerError, apierror.WithDetail(msgVerificationFailed, detail))
}

func (h *Handler) ListVerifications(c echo.Context) error {
	p := pagination.FromContext(c)
	items, total, err := h.outcomes.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list verifications failed")
	}
	if items == nil {
		items = []*OutcomeSummary{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}
