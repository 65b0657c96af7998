package api

import (
	"net/http"

	"trade-journal/internal/analytics"
	"trade-journal/internal/models"
)

// windowHandler adapts an analytics query over an optional window.
func (s *Server) windowHandler(w http.ResponseWriter, r *http.Request, query func(userID string, window *models.DateRange) (any, error)) {
	window, err := parseWindow(r.URL.Query(), s.deps.Analytics.Location())
	if err != nil {
		respondError(w, r, err)
		return
	}
	result, err := query(UserIDFromContext(r.Context()), window)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleSummary returns the window's metrics with deltas against the preceding window.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.windowHandler(w, r, func(userID string, window *models.DateRange) (any, error) {
		return s.deps.Analytics.Compare(r.Context(), userID, window)
	})
}

func (s *Server) handleEquity(w http.ResponseWriter, r *http.Request) {
	s.windowHandler(w, r, func(userID string, window *models.DateRange) (any, error) {
		return s.deps.Analytics.EquityCurve(r.Context(), userID, window)
	})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	s.windowHandler(w, r, func(userID string, window *models.DateRange) (any, error) {
		return s.deps.Analytics.MonthlyTrend(r.Context(), userID, window)
	})
}

func (s *Server) handleStrategyRows(w http.ResponseWriter, r *http.Request) {
	s.windowHandler(w, r, func(userID string, window *models.DateRange) (any, error) {
		return s.deps.Analytics.StrategyPerformance(r.Context(), userID, window)
	})
}

func (s *Server) handlePsychology(w http.ResponseWriter, r *http.Request) {
	s.windowHandler(w, r, func(userID string, window *models.DateRange) (any, error) {
		return s.deps.Analytics.Psychology(r.Context(), userID, window)
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.windowHandler(w, r, func(userID string, window *models.DateRange) (any, error) {
		return s.deps.Analytics.Dashboard(r.Context(), userID, window)
	})
}

// handleHeatmap returns days with trades, or every day of the month with fill=true.
func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := s.deps.Analytics.Location()

	year, month, err := parseMonth(q, s.now(), loc)
	if err != nil {
		respondError(w, r, err)
		return
	}
	cells, err := s.deps.Analytics.Heatmap(r.Context(), UserIDFromContext(r.Context()), year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if q.Get("fill") == "true" {
		cells = analytics.FillHeatmap(year, month, loc, cells)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"year":  year,
		"month": int(month),
		"cells": cells,
	})
}
