package devserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/filter"
	"github.com/pders01/newsdesk/internal/index"
	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/validation"
)

const (
	statusSuccess = "success"
	statusError   = "error"
	maxPageSize   = 100
)

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
	Skip  int    `json:"skip"`
	filter.Criteria
}

type trackResult struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	Count  int    `json:"count"`
}

func fail(ctx *gin.Context, code int, msg string) {
	ctx.JSON(code, gin.H{"status": statusError, "error": msg})
}

func (s *Server) handleSuggestions(ctx *gin.Context) {
	q := validation.SanitizeQuery(ctx.Query("q"))
	if q == "" {
		ctx.JSON(http.StatusOK, gin.H{"data": []string{}})
		return
	}
	titles, err := s.index.Suggest(q, 8)
	if err != nil {
		debuglog.Errorf("suggest %q: %v", q, err)
		fail(ctx, http.StatusInternalServerError, "suggestions unavailable")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": titles})
}

func (s *Server) handleTrending(ctx *gin.Context) {
	limit := s.cfg.API.TrendingLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			fail(ctx, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxTrendingLimit)
	}
	articles, err := s.index.Trending(limit)
	if err != nil {
		debuglog.Errorf("trending: %v", err)
		fail(ctx, http.StatusInternalServerError, "trending unavailable")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": articles})
}

func (s *Server) handleSearch(ctx *gin.Context) {
	var req searchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fail(ctx, http.StatusBadRequest, "invalid search request")
		return
	}
	if req.Limit <= 0 {
		req.Limit = s.cfg.API.PageSize
	}
	req.Limit = min(req.Limit, maxPageSize)
	req.Skip = max(req.Skip, 0)

	results, total, err := s.index.Search(index.Query{
		Text:     validation.SanitizeQuery(req.Query),
		Criteria: req.Criteria,
		Limit:    req.Limit,
		Skip:     req.Skip,
	})
	if err != nil {
		debuglog.Errorf("search %q: %v", req.Query, err)
		fail(ctx, http.StatusOK, "Search failed")
		return
	}

	trending, err := s.index.Trending(s.cfg.API.TrendingLimit)
	if err != nil {
		debuglog.Warnf("trending alongside search: %v", err)
		trending = []news.ArticleSummary{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status": statusSuccess,
		"data": news.SearchResultPage{
			Results:  results,
			Total:    total,
			Trending: trending,
		},
	})
}

func (s *Server) handleArticle(ctx *gin.Context) {
	a, err := s.index.Get(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, index.ErrNotFound) {
			fail(ctx, http.StatusNotFound, "article not found")
			return
		}
		fail(ctx, http.StatusInternalServerError, "article unavailable")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": statusSuccess, "data": a})
}

func (s *Server) handleTrack(ctx *gin.Context) {
	id, action := ctx.Param("id"), ctx.Param("action")
	counter, ok := index.CounterFor(action)
	if !ok {
		fail(ctx, http.StatusNotFound, "unknown action")
		return
	}
	n, err := s.index.Increment(id, counter)
	if err != nil {
		if errors.Is(err, index.ErrNotFound) {
			fail(ctx, http.StatusNotFound, "article not found")
			return
		}
		debuglog.Errorf("track %s %s: %v", action, id, err)
		fail(ctx, http.StatusInternalServerError, "tracking failed")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"status": statusSuccess,
		"data":   trackResult{ID: id, Action: action, Count: n},
	})
}
