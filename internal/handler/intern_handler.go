package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/service"
	"github.com/Sanjit42/naming-service/internal/service/serviceutils"
	"github.com/Sanjit42/naming-service/pkg/rosterexcel"
)

const exportFileName = "interns.xlsx"

type InternHandler struct {
	svc    *service.RosterService
	layout *rosterexcel.Layout
}

func NewInternHandler(svc *service.RosterService, layout *rosterexcel.Layout) *InternHandler {
	return &InternHandler{svc: svc, layout: layout}
}

func parseID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// notFoundOr picks 404 for missing records and fallback otherwise.
func notFoundOr(err error, fallback int) int {
	if errors.Is(err, domain.ErrNotFound) {
		return http.StatusNotFound
	}
	return fallback
}

func (h *InternHandler) ListHandler(c echo.Context) error {
	interns, err := h.svc.List(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to list interns", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Interns listed successfully", interns)
}

func (h *InternHandler) NewHandler(c echo.Context) error {
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Intern template built", h.svc.NewTemplate())
}

func (h *InternHandler) CreateHandler(c echo.Context) error {
	req := InternPayload{}
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	in, msgs, err := h.svc.CreateRow(c.Request().Context(), req.Row())
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to create intern", err)
	}
	if len(msgs) > 0 {
		return serviceutils.ResponseError(c, http.StatusUnprocessableEntity, "Intern is invalid", nil, msgs)
	}

	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Intern created successfully", in)
}

func (h *InternHandler) GetHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid intern ID", err)
	}

	in, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return serviceutils.ResponseError(c, notFoundOr(err, http.StatusInternalServerError), "Failed to get intern", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Intern retrieved successfully", in)
}

func (h *InternHandler) UpdateHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid intern ID", err)
	}

	req := InternPayload{}
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	// the path parameter is bound into the payload too
	delete(req, "id")

	in, msgs, err := h.svc.UpdateRow(c.Request().Context(), id, req.Row())
	if err != nil {
		return serviceutils.ResponseError(c, notFoundOr(err, http.StatusInternalServerError), "Failed to update intern", err)
	}
	if len(msgs) > 0 {
		return serviceutils.ResponseError(c, http.StatusUnprocessableEntity, "Intern is invalid", nil, msgs)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Intern updated successfully", in)
}

func (h *InternHandler) DeleteHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid intern ID", err)
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return serviceutils.ResponseError(c, notFoundOr(err, http.StatusInternalServerError), "Failed to delete intern", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Intern deleted successfully", nil)
}

func (h *InternHandler) SearchHandler(c echo.Context) error {
	term, filters := splitSearchParams(c.QueryParams())

	interns, err := h.svc.Search(c.Request().Context(), term, filters)
	if errors.Is(err, domain.ErrUnknownFilter) {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid search filter", err)
	}
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to search interns", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Interns searched successfully", SearchResponse{
		Term:    term,
		Filters: filters,
		Count:   len(interns),
		Interns: interns,
	})
}

// ExportHandler writes the interns matching the search parameters as xlsx.
// Without parameters every intern is exported.
func (h *InternHandler) ExportHandler(c echo.Context) error {
	term, filters := splitSearchParams(c.QueryParams())

	interns, err := h.svc.Search(c.Request().Context(), term, filters)
	if errors.Is(err, domain.ErrUnknownFilter) {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid search filter", err)
	}
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to search interns", err)
	}

	exporter := rosterexcel.NewExporter(h.layout).Bind(rosterexcel.SectionInterns, rosterexcel.InternRecords(interns))
	if err := exporter.StreamToResponse(c.Response(), exportFileName); err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to generate excel file", err)
	}
	return nil
}
