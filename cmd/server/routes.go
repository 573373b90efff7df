// Package main provides the NochGPT server entry point.
package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nochlab/nochgpt/internal/bot"
	"github.com/nochlab/nochgpt/internal/buildinfo"
	"github.com/nochlab/nochgpt/internal/cache"
	"github.com/nochlab/nochgpt/internal/config"
	"github.com/nochlab/nochgpt/internal/i18n"
	"github.com/nochlab/nochgpt/internal/store"
	"github.com/nochlab/nochgpt/internal/ticket"
	"github.com/nochlab/nochgpt/internal/webhook"
)

// chatRequest is the direct question endpoint payload. Field names match
// the dashboard client.
type chatRequest struct {
	Question string `json:"pregunta" binding:"required"`
	Lang     string `json:"idioma"`
}

// setupRoutes configures all HTTP routes.
func setupRoutes(
	router *gin.Engine,
	webhookHandler *webhook.Handler,
	processor *bot.Processor,
	tickets *ticket.Service,
	db *store.DB,
	responseCache *cache.Cache,
	registry *prometheus.Registry,
	cfg *config.Config,
) {
	rootHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "nochgpt",
			"status":  "ok",
			"version": buildinfo.Version,
		})
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Liveness probe: only that the process is up, never dependencies.
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)
	router.GET("/health", healthHandler)

	// Configuration sanity: which integrations are wired, no secrets.
	router.GET("/_debug/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"whatsapp_configured": cfg.WhatsAppToken != "" && cfg.WhatsAppPhoneID != "",
			"openai_configured":   cfg.OpenAIAPIKey != "",
			"signature_check":     cfg.AppSecret != "",
			"sheet_mirror":        cfg.SheetWebhookURL != "",
			"archive":             cfg.ArchiveEnabled(),
			"sentry":              cfg.SentryDSN != "",
			"model":               cfg.OpenAIModel,
		})
	})

	// Readiness probe: database reachable plus basic state counts.
	readyHandler := func(c *gin.Context) {
		if err := db.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
			"cache":    gin.H{"entries": responseCache.Len()},
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Meta Cloud API webhook: GET for the subscription handshake, POST for
	// message notifications.
	router.GET("/webhook", webhookHandler.Verify)
	router.POST("/webhook", webhookHandler.Receive)

	// Direct question endpoint used by the website chat widget.
	router.POST("/chat", func(c *gin.Context) {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "pregunta is required"})
			return
		}

		lang := i18n.Normalize(req.Lang)
		if req.Lang == "" {
			lang = i18n.Detect(req.Question)
		}

		answer, err := processor.Answer(c.Request.Context(), req.Question, lang)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"respuesta": i18n.UserFacing(err, lang)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"respuesta": answer})
	})

	// Handoff tickets as JSON, newest first. /handoff is the legacy alias
	// the dashboard still calls.
	listTickets := func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
		list, err := tickets.List(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tickets"})
			return
		}
		c.JSON(http.StatusOK, list)
	}
	router.GET("/tickets", listTickets)
	router.GET("/handoff", listTickets)

	// Minimal HTML dashboard for the front desk.
	router.GET("/panel", func(c *gin.Context) {
		list, err := tickets.List(c.Request.Context(), 0)
		if err != nil {
			c.String(http.StatusInternalServerError, "failed to list tickets")
			return
		}
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		_ = ticket.RenderPanel(c.Writer, list)
	})

	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if cfg.MetricsPassword != "" {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}
}
