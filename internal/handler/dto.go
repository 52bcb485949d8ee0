package handler

import "newsdash/pkg/news"

type NewsResponse struct {
	Articles []news.Article `json:"articles"`
}

type AnalyticsResponse struct {
	Authors map[string]int `json:"authors"`
	Types   map[string]int `json:"types"`
	Total   int            `json:"total"`
}

type RateResponse struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

type RateRequest struct {
	Type   string   `json:"type" binding:"required"`
	Amount *float64 `json:"amount" binding:"required"`
}

type PayoutRowResponse struct {
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Type   string  `json:"type"`
	Date   string  `json:"date"`
	Payout float64 `json:"payout"`
}

type PayoutReportResponse struct {
	ID          string              `json:"id"`
	GeneratedAt string              `json:"generated_at"`
	Rows        []PayoutRowResponse `json:"rows"`
	Counts      map[string]int      `json:"counts"`
	Total       float64             `json:"total"`
}
