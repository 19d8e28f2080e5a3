package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/service"
	"github.com/Sanjit42/naming-service/internal/service/serviceutils"
	"github.com/Sanjit42/naming-service/pkg/rosterexcel"
)

const (
	importFileField  = "file"
	reportFileName   = "import_report.xlsx"
	defaultRunsLimit = 20
)

type ImportHandler struct {
	svc    *service.ImportService
	layout *rosterexcel.Layout
}

func NewImportHandler(svc *service.ImportService, layout *rosterexcel.Layout) *ImportHandler {
	return &ImportHandler{svc: svc, layout: layout}
}

// runImport imports the uploaded file when there is one, else the pasted
// csv_data text.
func (h *ImportHandler) runImport(c echo.Context) (*service.ImportOutcome, error) {
	ctx := c.Request().Context()

	if fh, err := c.FormFile(importFileField); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open uploaded file: %w", err)
		}
		defer f.Close()
		return h.svc.ImportFile(ctx, fh.Filename, f)
	}

	var req ImportTextRequest
	if err := c.Bind(&req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.CSVData) == "" {
		return nil, fmt.Errorf("no csv file or csv data given: %w", domain.ErrEmptyInput)
	}
	return h.svc.ImportText(ctx, req.CSVData)
}

func importStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// ImportHandler runs a bulk import and returns its result. A rejected header
// is answered with 422 and the list of unknown columns.
func (h *ImportHandler) ImportHandler(c echo.Context) error {
	outcome, err := h.runImport(c)
	if err != nil && (outcome == nil || outcome.Result == nil) {
		return serviceutils.ResponseError(c, importStatus(err), "Failed to import interns", err)
	}
	if err != nil {
		return serviceutils.ResponseError(c, importStatus(err), "Import interrupted", err, outcome.Result)
	}

	if !outcome.Result.HeaderAccepted {
		return serviceutils.ResponseError(c, http.StatusUnprocessableEntity, "Invalid header", nil, outcome.Result)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Import completed", outcome.Result)
}

// ReportHandler runs a bulk import and answers with an xlsx report of the
// rows that failed.
func (h *ImportHandler) ReportHandler(c echo.Context) error {
	outcome, err := h.runImport(c)
	if err != nil {
		return serviceutils.ResponseError(c, importStatus(err), "Failed to import interns", err)
	}
	if !outcome.Result.HeaderAccepted {
		return serviceutils.ResponseError(c, http.StatusUnprocessableEntity, "Invalid header", nil, outcome.Result)
	}

	exporter := rosterexcel.NewExporter(h.layout).
		Bind(rosterexcel.SectionImportSummary, rosterexcel.SummaryRecords(outcome.Result)).
		Bind(rosterexcel.SectionFailedRows, rosterexcel.FailedRowRecords(outcome.Result.FailedRows))
	if err := exporter.StreamToResponse(c.Response(), reportFileName); err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to generate excel file", err)
	}
	return nil
}

// RunsHandler lists recorded import runs, newest first.
func (h *ImportHandler) RunsHandler(c echo.Context) error {
	limit := defaultRunsLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid limit", fmt.Errorf("limit %q", v))
		}
		limit = n
	}

	runs, err := h.svc.ListRuns(c.Request().Context(), limit)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to list import runs", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Import runs listed successfully", runs)
}

// RunHandler returns one recorded import run.
func (h *ImportHandler) RunHandler(c echo.Context) error {
	run, err := h.svc.GetRun(c.Request().Context(), c.Param("run_id"))
	if err != nil {
		return serviceutils.ResponseError(c, notFoundOr(err, http.StatusInternalServerError), "Failed to get import run", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Import run retrieved successfully", run)
}
