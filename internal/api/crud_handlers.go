package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"trade-journal/internal/journal"
	"trade-journal/internal/strategy"
	"trade-journal/internal/trades"
)

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// Trades

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTradeFilter(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	list, err := s.deps.Trades.List(r.Context(), UserIDFromContext(r.Context()), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var in trades.Input
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	t, err := s.deps.Trades.Create(r.Context(), UserIDFromContext(r.Context()), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	t, err := s.deps.Trades.Get(r.Context(), UserIDFromContext(r.Context()), pathID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	var patch trades.Patch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, r, err)
		return
	}
	t, err := s.deps.Trades.Update(r.Context(), UserIDFromContext(r.Context()), pathID(r), patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Trades.Delete(r.Context(), UserIDFromContext(r.Context()), pathID(r)); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Strategies

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Strategies.List(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateStrategy(w http.ResponseWriter, r *http.Request) {
	var in strategy.Input
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	st, err := s.deps.Strategies.Create(r.Context(), UserIDFromContext(r.Context()), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, st)
}

func (s *Server) handleGetStrategy(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Strategies.Get(r.Context(), UserIDFromContext(r.Context()), pathID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleUpdateStrategy(w http.ResponseWriter, r *http.Request) {
	var patch strategy.Patch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, r, err)
		return
	}
	st, err := s.deps.Strategies.Update(r.Context(), UserIDFromContext(r.Context()), pathID(r), patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteStrategy(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Strategies.Delete(r.Context(), UserIDFromContext(r.Context()), pathID(r)); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Strategies.Recompute(r.Context(), UserIDFromContext(r.Context()), pathID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRecomputeAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Strategies.RecomputeAll(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"recomputed": n})
}

// Journal

func (s *Server) handleListJournal(w http.ResponseWriter, r *http.Request) {
	filter, err := parseJournalFilter(r.URL.Query(), s.deps.Analytics.Location())
	if err != nil {
		respondError(w, r, err)
		return
	}
	list, err := s.deps.Journal.List(r.Context(), UserIDFromContext(r.Context()), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateJournal(w http.ResponseWriter, r *http.Request) {
	var in journal.Input
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	e, err := s.deps.Journal.Create(r.Context(), UserIDFromContext(r.Context()), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

func (s *Server) handleGetJournal(w http.ResponseWriter, r *http.Request) {
	e, err := s.deps.Journal.Get(r.Context(), UserIDFromContext(r.Context()), pathID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateJournal(w http.ResponseWriter, r *http.Request) {
	var patch journal.Patch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, r, err)
		return
	}
	e, err := s.deps.Journal.Update(r.Context(), UserIDFromContext(r.Context()), pathID(r), patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteJournal(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Journal.Delete(r.Context(), UserIDFromContext(r.Context()), pathID(r)); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
