package oon

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulpai/pulp/internal/platform/apierror"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/oon-estimate", h.Estimate)
}

func (h *Handler) Estimate(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return he
		}
		return apierror.Write(c, http.StatusBadRequest, apierror.New("invalid request body"))
	}

	est, err := h.svc.Estimate(req)
	if err != nil {
		return apierror.Write(c, http.StatusBadRequest, apierror.New(err.Error()))
	}
	return c.JSON(http.StatusOK, est)
}
