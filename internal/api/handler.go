package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/spimexpulse/internal/domain/dto"
	"github.com/guttosm/spimexpulse/internal/domain/models"
	"github.com/guttosm/spimexpulse/internal/middleware"
	"github.com/guttosm/spimexpulse/internal/service"
)

const (
	defaultDatesLimit = 30
	maxDatesLimit     = 365
)

// Handler provides HTTP handlers for the persisted bulletin data.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Call the results service (cache-aside over the repository)
//   - Translate domain records into response DTOs
type Handler struct {
	svc service.ResultsService
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.ResultsService) *Handler {
	return &Handler{svc: svc}
}

// GetTradingResults handles GET /api/v1/trading-results requests.
//
// Query Parameters:
//   - date (string, required): trade date in YYYY-MM-DD format.
//
// Responses:
//   - 200 OK: every record ingested for the date, in bulletin order.
//   - 400 Bad Request: missing or malformed date.
//   - 404 Not Found: nothing ingested for that date.
//   - 500 Internal Server Error: storage failure.
//
// GetTradingResults godoc
// @Summary      Get trading results by date
// @Description  Returns every bulletin row persisted for the given trade date
// @Tags         trading
// @Accept       json
// @Produce      json
// @Param        date  query     string  true  "Trade date in YYYY-MM-DD" example(2024-01-10)
// @Success      200   {object}  dto.TradingResultsResponse  "Success"
// @Failure      400   {object}  dto.ErrorResponse           "Bad Request"
// @Failure      404   {object}  dto.ErrorResponse           "Not Found"
// @Failure      500   {object}  dto.ErrorResponse           "Internal Error"
// @Router       /api/v1/trading-results [get]
func (h *Handler) GetTradingResults(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, "date is required", nil)
		return
	}
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD", err)
		return
	}

	recs, err := h.svc.GetTradingResults(c.Request.Context(), date)
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to fetch trading results", err)
		return
	}
	if len(recs) == 0 {
		middleware.AbortWithError(c, http.StatusNotFound, "no trading results for "+raw, nil)
		return
	}

	c.JSON(http.StatusOK, dto.NewTradingResultsResponse(date, recs))
}

// GetTradingDates handles GET /api/v1/trading-dates requests.
//
// Query Parameters:
//   - limit (int, optional): number of dates to return, 1..365 (default 30).
//
// GetTradingDates godoc
// @Summary      List ingested trade dates
// @Description  Returns per-date row counts and totals, newest first
// @Tags         trading
// @Produce      json
// @Param        limit  query     int  false  "Number of dates (1-365)" example(30)
// @Success      200    {object}  dto.TradingDatesResponse  "Success"
// @Failure      400    {object}  dto.ErrorResponse         "Bad Request"
// @Failure      500    {object}  dto.ErrorResponse         "Internal Error"
// @Router       /api/v1/trading-dates [get]
func (h *Handler) GetTradingDates(c *gin.Context) {
	limit := defaultDatesLimit
	if s := strings.TrimSpace(c.Query("limit")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxDatesLimit {
			middleware.AbortWithError(c, http.StatusBadRequest, "limit must be an integer between 1 and 365", err)
			return
		}
		limit = n
	}

	dates, err := h.svc.GetTradingDates(c.Request.Context(), limit)
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to fetch trading dates", err)
		return
	}
	if dates == nil {
		dates = []models.TradeDateSummary{}
	}

	c.JSON(http.StatusOK, dto.TradingDatesResponse{Dates: dates})
}
