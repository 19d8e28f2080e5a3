package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sanjit42/naming-service/internal/service"
	"github.com/Sanjit42/naming-service/internal/service/serviceutils"
)

type BatchHandler struct {
	svc *service.RosterService
}

func NewBatchHandler(svc *service.RosterService) *BatchHandler {
	return &BatchHandler{svc: svc}
}

func (h *BatchHandler) CreateHandler(c echo.Context) error {
	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	b := req.Batch()
	msgs, err := h.svc.CreateBatch(c.Request().Context(), b)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to create batch", err)
	}
	if len(msgs) > 0 {
		return serviceutils.ResponseError(c, http.StatusUnprocessableEntity, "Batch is invalid", nil, msgs)
	}

	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Batch created successfully", b)
}

func (h *BatchHandler) GetHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid batch ID", err)
	}

	b, err := h.svc.GetBatch(c.Request().Context(), id)
	if err != nil {
		return serviceutils.ResponseError(c, notFoundOr(err, http.StatusInternalServerError), "Failed to get batch", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Batch retrieved successfully", b)
}

func (h *BatchHandler) ListHandler(c echo.Context) error {
	batches, err := h.svc.ListBatches(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to list batches", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Batches listed successfully", batches)
}

func (h *BatchHandler) UpdateHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid batch ID", err)
	}

	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	b := req.Batch()
	b.ID = id

	msgs, err := h.svc.UpdateBatch(c.Request().Context(), b)
	if err != nil {
		return serviceutils.ResponseError(c, notFoundOr(err, http.StatusInternalServerError), "Failed to update batch", err)
	}
	if len(msgs) > 0 {
		return serviceutils.ResponseError(c, http.StatusUnprocessableEntity, "Batch is invalid", nil, msgs)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Batch updated successfully", b)
}

func (h *BatchHandler) DeleteHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid batch ID", err)
	}

	if err := h.svc.DeleteBatch(c.Request().Context(), id); err != nil {
		return serviceutils.ResponseError(c, notFoundOr(err, http.StatusInternalServerError), "Failed to delete batch", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Batch deleted successfully", nil)
}
