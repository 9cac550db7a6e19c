package oon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func postEstimate(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(newTestService())
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/oon-estimate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Estimate(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rec
}

func TestHandler_Estimate(t *testing.T) {
	rec := postEstimate(t, `{"patient_id":"p7","procedure_code":"D2750","office_fee_cents":145000,"payer_id":"HUMANA","remaining_deductible_cents":10000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var est Estimate
	if err := json.Unmarshal(rec.Body.Bytes(), &est); err != nil {
		t.Fatal(err)
	}
	if est.PatientResponsibilityCents != 101000 || est.CoveragePct != 50 {
		t.Errorf("unexpected estimate %+v", est)
	}

	var raw map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &raw)
	if v, ok := raw["contracted_rate_cents"]; !ok || v != nil {
		t.Errorf("contracted_rate_cents should be null, got %v", v)
	}
}

func TestHandler_Estimate_BadRequest(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"office_fee_cents":1000}`, "procedure_code is required"},
		{`{"procedure_code":"D1110"}`, "office_fee_cents must be greater than 0"},
		{`{"procedure_code":"D1110","office_fee_cents":"lots"}`, "invalid request body"},
		{`{"procedure_code":`, "invalid request body"},
	}
	for _, tt := range tests {
		rec := postEstimate(t, tt.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tt.body, rec.Code)
			continue
		}
		var body map[string]string
		json.Unmarshal(rec.Body.Bytes(), &body)
		if body["error"] != tt.want {
			t.Errorf("%s: error = %q, want %q", tt.body, body["error"], tt.want)
		}
	}
}
