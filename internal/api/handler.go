// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	cerrors "geoquery-resolver/internal/common/errors"
	"geoquery-resolver/internal/common/logger"
	"geoquery-resolver/internal/common/observability"
	"geoquery-resolver/internal/models"
	"geoquery-resolver/internal/resolver"
)

// resolveRequest is the wire shape of POST /v1/queries/resolve. Entities
// arrive raw so they can be schema-checked before unmarshaling.
type resolveRequest struct {
	Query      string          `json:"query"`
	Entities   json.RawMessage `json:"entities"`
	Comparison bool            `json:"comparison,omitempty"`
}

type errorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// QueryHandler exposes the resolution pipeline over HTTP. It binds,
// validates, and maps the error taxonomy onto status codes; all resolution
// logic lives in the service.
type QueryHandler struct {
	service *resolver.Service
	obs     *observability.Observability
	logger  logger.Logger
}

func NewQueryHandler(service *resolver.Service, obs *observability.Observability, log logger.Logger) *QueryHandler {
	return &QueryHandler{
		service: service,
		obs:     obs,
		logger:  log.WithFields(map[string]interface{}{"component": "query-handler"}),
	}
}

// Resolve handles POST /v1/queries/resolve.
func (h *QueryHandler) Resolve(c echo.Context) error {
	start := time.Now()
	var req resolveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "INVALID_REQUEST",
			Message: "request body could not be parsed",
		})
	}
	if req.Query == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "INVALID_REQUEST",
			Message: "query text is required",
		})
	}

	var entities models.ExtractedEntities
	if len(req.Entities) > 0 {
		if err := validateEntities(req.Entities); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{
				Code:    string(cerrors.ErrCodeInvalidEntities),
				Message: err.Error(),
			})
		}
		if err := json.Unmarshal(req.Entities, &entities); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{
				Code:    string(cerrors.ErrCodeInvalidEntities),
				Message: "entities could not be decoded",
			})
		}
	}

	result, err := h.service.Resolve(c.Request().Context(), resolver.Request{
		QueryText:  req.Query,
		Entities:   entities,
		Comparison: req.Comparison,
	})
	if err != nil {
		h.obs.RecordQueryResolved(c.Request().Context(), "failed")
		return h.mapError(c, err)
	}

	outcome := "resolved"
	if result.Completeness.NeedsClarification {
		outcome = "needs_clarification"
	}
	h.obs.RecordQueryResolved(c.Request().Context(), outcome)
	h.obs.RecordResolutionDuration(c.Request().Context(), time.Since(start), outcome)

	// A query that needs clarification is semantically incomplete: the
	// full report still goes back so the client can render the questions.
	if result.Completeness.NeedsClarification {
		return c.JSON(http.StatusUnprocessableEntity, result)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *QueryHandler) mapError(c echo.Context, err error) error {
	var serr *cerrors.StandardError
	if !errors.As(err, &serr) {
		h.logger.WithError(err).Error("unexpected resolution failure", nil)
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Code:    "INTERNAL",
			Message: "query resolution failed",
		})
	}

	resp := errorResponse{
		Code:    string(serr.Code),
		Message: serr.Message,
		Details: serr.Metadata,
	}

	switch {
	case errors.Is(err, cerrors.ErrNotFound):
		resp.Message = "The location could not be resolved; please provide a more specific place name."
		return c.JSON(http.StatusNotFound, resp)
	case errors.Is(err, cerrors.ErrPartialFailure):
		return c.JSON(http.StatusUnprocessableEntity, resp)
	case errors.Is(err, cerrors.ErrMalformedInput):
		return c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, cerrors.ErrUpstreamUnavailable):
		return c.JSON(http.StatusBadGateway, resp)
	}
	return c.JSON(http.StatusInternalServerError, resp)
}

// Healthz handles GET /healthz.
func (h *QueryHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
