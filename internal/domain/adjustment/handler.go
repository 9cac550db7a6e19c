package adjustment

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pulpai/pulp/internal/platform/apierror"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/hipaa-codes", h.ListCodes)
	g.GET("/hipaa-codes/resolve", h.ResolveCodes)
}

// ListCodes returns {"codes": {code: entry}}.
func (h *Handler) ListCodes(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"codes": Codes()})
}

// ResolveCodes enriches ?codes=5,16,119.
func (h *Handler) ResolveCodes(c echo.Context) error {
	raw := c.QueryParam("codes")
	var in []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return apierror.Write(c, http.StatusBadRequest, apierror.New("codes must be a comma-separated list of integers"))
		}
		in = append(in, n)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"codes": Resolve(in)})
}
