package adjustment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestCodes_Complete(t *testing.T) {
	want := []int{1, 2, 3, 4, 5, 16, 18, 22, 27, 29, 45, 96, 97, 109, 119, 131, 197, 252}
	got := Codes()
	if len(got) != len(want) {
		t.Errorf("expected %d codes, got %d", len(want), len(got))
	}
	for _, c := range want {
		e, ok := got[c]
		if !ok {
			t.Errorf("code %d missing", c)
			continue
		}
		if e.Label == "" || e.Action == "" {
			t.Errorf("code %d has empty text", c)
		}
		switch e.Severity {
		case SeverityInfo, SeverityWarning, SeverityCritical:
		default:
			t.Errorf("code %d has severity %q", c, e.Severity)
		}
	}
}

func TestCodes_ReturnsCopy(t *testing.T) {
	m := Codes()
	delete(m, 5)
	if _, ok := Lookup(5); !ok {
		t.Error("mutating Codes() result changed the dictionary")
	}
}

func TestResolve(t *testing.T) {
	got := Resolve([]int{119, 0, 5, 119, 999})
	if len(got) != 3 {
		t.Fatalf("expected 3 resolved codes, got %d: %+v", len(got), got)
	}
	if got[0].Code != 119 || got[0].Severity != SeverityWarning {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Code != 5 || got[1].Severity != SeverityCritical {
		t.Errorf("second = %+v", got[1])
	}
	unknown := got[2]
	if unknown.Code != 999 || unknown.Severity != SeverityInfo ||
		unknown.Label != "Adjustment Code 999" || unknown.Action != "Review carrier documentation for code 999." {
		t.Errorf("unknown = %+v", unknown)
	}
}

func TestResolve_Empty(t *testing.T) {
	if got := Resolve(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestHandler_ListCodes(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/hipaa-codes", nil), rec)

	if err := NewHandler().ListCodes(c); err != nil {
		t.Fatal(err)
	}
	var body struct {
		Codes map[string]Entry `json:"codes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Codes["197"].Severity != SeverityCritical {
		t.Errorf("code 197 = %+v", body.Codes["197"])
	}
}

func TestHandler_ResolveCodes(t *testing.T) {
	e := echo.New()
	NewHandler().RegisterRoutes(e.Group(""))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hipaa-codes/resolve?codes=16,%2027,16", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Codes []Resolved `json:"codes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Codes) != 2 || body.Codes[0].Code != 16 || body.Codes[1].Code != 27 {
		t.Errorf("unexpected codes %+v", body.Codes)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hipaa-codes/resolve?codes=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
