package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	portssvc "github.com/SscSPs/fx_rates_service/internal/core/ports/services"
	"github.com/SscSPs/fx_rates_service/internal/dto"
	"github.com/SscSPs/fx_rates_service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
	}
}

// registerExchangeRateRoutes registers routes related to exchange rates and providers.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	rg.GET("/rates", h.getRate)

	providers := rg.Group("/providers")
	{
		providers.GET("", h.listProviders)
		providers.POST("/:source/refresh", h.refreshProvider)
	}
}

// getRate godoc
// @Summary Get an exchange rate
// @Description Returns how many units of the target currency one unit of the source currency buys on a date, as published by a provider
// @Tags rates
// @Produce json
// @Param from query string true "Currency to convert from (ISO 4217)"
// @Param to query string true "Currency to convert to (ISO 4217)"
// @Param date query string true "Rate date (YYYY-MM-DD)"
// @Param source query string true "Rate provider, e.g. ECB"
// @Param frequency query string false "Publication frequency" default(Daily)
// @Success 200 {object} dto.RateResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 404 {object} dto.ErrorResponse "No rate found"
// @Failure 502 {object} dto.ErrorResponse "Rate source unavailable"
// @Failure 504 {object} dto.ErrorResponse "Query timed out"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Router /rates [get]
func (h *exchangeRateHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.GetRateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Invalid rate query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query: " + err.Error()})
		return
	}

	source, err := domain.ParseSource(req.Source)
	if err != nil {
		respondError(c, logger, "Invalid rate query", err)
		return
	}
	frequency := req.FrequencyOrDefault()

	logger = logger.With(
		slog.String("from", req.From),
		slog.String("to", req.To),
		slog.String("date", req.Date),
		slog.String("source", string(source)),
		slog.String("frequency", string(frequency)))

	rate, err := h.exchangeRateService.GetRate(c.Request.Context(), req.From, req.To, req.ParsedDate(), source, frequency)
	if err != nil {
		respondError(c, logger, "Failed to resolve rate", err)
		return
	}

	logger.Debug("Rate resolved", slog.String("rate", rate.String()))
	c.JSON(http.StatusOK, dto.ToRateResponse(req, source, frequency, rate))
}

// listProviders godoc
// @Summary List rate providers
// @Description Lists the registered providers with their base currency, quote convention and frequencies
// @Tags providers
// @Produce json
// @Success 200 {object} dto.ListProvidersResponse
// @Router /providers [get]
func (h *exchangeRateHandler) listProviders(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToListProvidersResponse(h.exchangeRateService.ListProviders()))
}

// refreshProvider godoc
// @Summary Refresh a provider
// @Description Pulls the latest rates of a provider and reports how many quotes were new or changed
// @Tags providers
// @Produce json
// @Param source path string true "Rate provider, e.g. ECB"
// @Success 200 {object} dto.RefreshResponse
// @Failure 400 {object} dto.ErrorResponse "Unknown source"
// @Failure 502 {object} dto.ErrorResponse "Rate source unavailable"
// @Router /providers/{source}/refresh [post]
func (h *exchangeRateHandler) refreshProvider(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	source, err := domain.ParseSource(c.Param("source"))
	if err != nil {
		respondError(c, logger, "Invalid refresh request", err)
		return
	}

	changed, err := h.exchangeRateService.RefreshLatest(c.Request.Context(), source)
	if err != nil {
		respondError(c, logger.With(slog.String("source", string(source))), "Failed to refresh provider", err)
		return
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{Source: string(source), Changed: changed})
}
