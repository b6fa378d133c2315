package handlers

import (
	"fmt"

	portssvc "github.com/SscSPs/fx_rates_service/internal/core/ports/services"
	"github.com/SscSPs/fx_rates_service/internal/dto"
	"github.com/SscSPs/fx_rates_service/internal/middleware"
	"github.com/SscSPs/fx_rates_service/internal/platform/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes sets up all application routes.
// gatherer backs /metrics; pass nil to leave the endpoint out.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	gatherer prometheus.Gatherer,
) error {
	if err := dto.RegisterValidations(); err != nil {
		return err
	}

	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			corsCfg.AllowAllOrigins = true
		} else {
			corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
		}
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, middleware.RequestIDHeader)
		corsCfg.ExposeHeaders = []string{middleware.RequestIDHeader}
		r.Use(cors.New(corsCfg))
	}

	r.GET("/health", getHealth)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the rate-limited /api/v1 group.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	v1 := r.Group("/api/v1")
	if cfg.RateLimit != "" {
		lim, err := middleware.NewLimiter(cfg.RateLimit)
		if err != nil {
			return fmt.Errorf("configure rate limit: %w", err)
		}
		v1.Use(middleware.RateLimit(lim))
	}

	registerExchangeRateRoutes(v1, services.ExchangeRate)
	return nil
}
