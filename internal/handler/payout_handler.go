package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"newsdash/internal/model"
	"newsdash/internal/payout"
	"newsdash/pkg/news"
)

type PayoutHandler struct {
	rates  payout.RateStore
	loader *articleLoader
	now    func() time.Time
}

func NewPayoutHandler(rates payout.RateStore, agg ArticleAggregator, cache ArticleCache, timeout time.Duration) *PayoutHandler {
	return &PayoutHandler{
		rates:  rates,
		loader: &articleLoader{aggregator: agg, cache: cache, timeout: timeout},
		now:    time.Now,
	}
}

func toRateResponses(rates []model.PayoutRate) []RateResponse {
	res := make([]RateResponse, 0, len(rates))
	for _, r := range rates {
		res = append(res, RateResponse{Type: string(r.Type), Amount: r.Amount})
	}
	return res
}

func (h *PayoutHandler) GetRates(c *gin.Context) {
	rates, err := h.rates.LoadRates(c.Request.Context())
	if err != nil {
		slog.Error("error loading payout rates", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, toRateResponses(rates))
}

func (h *PayoutHandler) PutRate(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid payout rate body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	rate := model.PayoutRate{
		Type:   news.SourceType(strings.ToLower(req.Type)),
		Amount: *req.Amount,
	}

	err := h.rates.SaveRate(c.Request.Context(), rate)
	if errors.Is(err, payout.ErrUnknownType) || errors.Is(err, payout.ErrNegativeAmount) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("error saving payout rate", "error", err, "type", rate.Type)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	slog.Info("payout rate updated", "type", rate.Type, "amount", rate.Amount)
	h.GetRates(c)
}

func (h *PayoutHandler) ResetRates(c *gin.Context) {
	if err := h.rates.ResetRates(c.Request.Context()); err != nil {
		slog.Error("error resetting payout rates", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	h.GetRates(c)
}

func (h *PayoutHandler) GetReport(c *gin.Context) {
	params := parseQueryParameters(c)

	articles, err := h.loader.load(c.Request.Context(), params)
	if err != nil {
		slog.Error("error aggregating articles", "error", err, "query", params.Query)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch articles"})
		return
	}

	rates, err := h.rates.LoadRates(c.Request.Context())
	if err != nil {
		slog.Error("error loading payout rates", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	report := payout.Calculate(articles, rates, h.now())

	rows := make([]PayoutRowResponse, 0, len(report.Rows))
	for _, r := range report.Rows {
		rows = append(rows, PayoutRowResponse{
			Title:  r.Title,
			Author: r.Author,
			Type:   string(r.Type),
			Date:   r.Date,
			Payout: r.Payout,
		})
	}

	counts := make(map[string]int, len(report.Counts))
	for t, n := range report.Counts {
		counts[string(t)] = n
	}

	c.JSON(http.StatusOK, PayoutReportResponse{
		ID:          report.ID,
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Rows:        rows,
		Counts:      counts,
		Total:       report.Total,
	})
}

func (h *PayoutHandler) GetHealth(c *gin.Context) {
	_, err := h.rates.LoadRates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}
