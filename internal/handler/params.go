package handler

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"newsdash/internal/model"
	"newsdash/pkg/news"
)

// parseQueryParameters reads the news request surface. Bad numbers fall back
// to their defaults and unparsable dates are treated as absent bounds.
func parseQueryParameters(c *gin.Context) model.QueryParameters {
	params := model.DefaultQueryParameters()

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		params.Query = q
	}

	params.Page = getQueryPositiveInt("page", model.DefaultPage, c)

	params.PageSize = getQueryPositiveInt("pageSize", model.DefaultPageSize, c)
	if params.PageSize > model.MaxPageSize {
		slog.Warn("query parameter exceeds max, clamping", "param", "pageSize", "value", params.PageSize, "max", model.MaxPageSize)
		params.PageSize = model.MaxPageSize
	}

	if t := c.Query("type"); t != "" {
		params.Type = model.TypeSelector(strings.ToLower(t))
	}

	params.Author = c.Query("author")
	params.StartDate = getQueryDate("startDate", c)
	params.EndDate = getQueryDate("endDate", c)

	return params
}

func getQueryInt(name string, defaultValue int, c *gin.Context) int {
	paramValue := c.Query(name)

	if paramValue == "" {
		return defaultValue
	}

	parsedValue, err := strconv.Atoi(paramValue)
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", name, "value", paramValue, "error", err)
		return defaultValue
	}

	return parsedValue
}

func getQueryPositiveInt(name string, defaultValue int, c *gin.Context) int {
	value := getQueryInt(name, defaultValue, c)
	if value < 1 {
		slog.Warn("invalid query parameter, using default", "param", name, "value", value, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getQueryDate(name string, c *gin.Context) *time.Time {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}

	t, ok := news.ParseTimestamp(raw)
	if !ok {
		slog.Warn("invalid date parameter, ignoring bound", "param", name, "value", raw)
		return nil
	}

	return &t
}
