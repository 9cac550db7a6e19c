package mtc

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pulpai/pulp/internal/domain/eligibility"
	"github.com/pulpai/pulp/internal/platform/apierror"
)

// Request is the POST /mtc-risk body. When patient_id names a reference
// patient the plan facts come from that patient's verification result;
// explicit fields override them.
type Request struct {
	PatientID      string        `json:"patient_id"`
	PlannedCodes   []string      `json:"planned_codes"`
	MTCPresence    string        `json:"mtc_presence"`
	CoverageBegin  string        `json:"coverage_begin"`
	ExtractionDate string        `json:"extraction_date"`
	ToothHistory   []ToothRecord `json:"tooth_history"`
}

type Handler struct {
	fixtures *eligibility.FixtureTable
	logger   zerolog.Logger
}

func NewHandler(fixtures *eligibility.FixtureTable, logger zerolog.Logger) *Handler {
	return &Handler{
		fixtures: fixtures,
		logger:   logger.With().Str("component", "mtc").Logger(),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/mtc-risk", h.EvaluateRisk)
	g.GET("/mtc-risk/procedures", h.ListProcedures)
}

func (h *Handler) EvaluateRisk(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return he
		}
		return apierror.Write(c, http.StatusBadRequest, apierror.New("invalid request body"))
	}
	if len(req.PlannedCodes) == 0 {
		return apierror.Write(c, http.StatusBadRequest, apierror.New("planned_codes is required"))
	}

	in := Input{
		PlannedCodes: req.PlannedCodes,
		Presence:     PresenceUnknown,
		ToothHistory: req.ToothHistory,
	}
	if req.PatientID != "" {
		doc, ok := h.fixtures.Lookup(req.PatientID)
		if !ok {
			return apierror.Write(c, http.StatusNotFound, apierror.New("unknown patient_id"))
		}
		in = resultInput(eligibility.Normalize(doc), in)
	}
	if req.MTCPresence != "" {
		in.Presence = ParsePresence(req.MTCPresence)
	}
	if req.CoverageBegin != "" {
		in.CoverageBegin = req.CoverageBegin
	}
	if req.ExtractionDate != "" {
		in.ExtractionDate = req.ExtractionDate
	}

	a := Evaluate(in)
	if a.Flag != nil {
		h.logger.Warn().
			Str("flag", string(*a.Flag)).
			Str("severity", string(*a.Severity)).
			Strs("codes", a.AffectedCodes).
			Msg("missing tooth clause risk")
	}
	return c.JSON(http.StatusOK, a)
}

// ListProcedures returns {"procedures": [...]}.
func (h *Handler) ListProcedures(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"procedures": Procedures()})
}
