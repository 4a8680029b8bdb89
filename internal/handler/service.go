package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ArmaniKE/clinic-back/internal/model"
	"github.com/ArmaniKE/clinic-back/internal/repository"
)

// ServiceHandler serves the price list and its admin CRUD.
type ServiceHandler struct {
	Services *repository.ServiceRepo
}

func serviceResp(s model.Service) echo.Map {
	return echo.Map{"id": s.ID, "name": s.Name, "price": s.Price}
}

// List is the public price list, no auth required.
func (h *ServiceHandler) List(c echo.Context) error {
	svcs, err := h.Services.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list services"})
	}
	out := make([]echo.Map, 0, len(svcs))
	for _, s := range svcs {
		out = append(out, serviceResp(s))
	}
	return c.JSON(http.StatusOK, out)
}

type serviceRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (h *ServiceHandler) Create(c echo.Context) error {
	var req serviceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Price <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a positive price are required"})
	}
	s, err := h.Services.Create(c.Request().Context(), req.Name, req.Price)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create service"})
	}
	return c.JSON(http.StatusCreated, serviceResp(s))
}

func (h *ServiceHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req serviceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Price <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a positive price are required"})
	}
	s, err := h.Services.Update(c.Request().Context(), id, req.Name, req.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update service"})
	}
	return c.JSON(http.StatusOK, serviceResp(s))
}

// Delete removes a service unless appointments reference it.
func (h *ServiceHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Services.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "service has appointments"})
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete service"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
