package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/service"
)

// LadderServer is the JSON surface over the engine. It parses parameters,
// calls services and renders their plain results; no logic of its own.
type LadderServer struct {
	ranks    *service.RankService
	boards   *service.LeaderboardService
	matchups *service.MatchupService
	archive  *service.ArchiveService
	logger   zerolog.Logger
}

func NewLadderServer(
	ranks *service.RankService,
	boards *service.LeaderboardService,
	matchups *service.MatchupService,
	archive *service.ArchiveService,
	logger zerolog.Logger,
) *LadderServer {
	return &LadderServer{ranks: ranks, boards: boards, matchups: matchups, archive: archive, logger: logger}
}

func (s *LadderServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/rank/{pid}", s.handleRank)
	mux.HandleFunc("GET /api/ladder", s.handleLadder)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /api/leaderboard/{league}", s.handleLeague)
	mux.HandleFunc("POST /api/quality", s.handleQuality)
	mux.HandleFunc("GET /api/forecast", s.handleForecast)
	mux.HandleFunc("GET /api/tournaments", s.handleTournaments)
	mux.HandleFunc("GET /api/patches", s.handlePatches)
}

type rankedPlayerJSON struct {
	PID         int64   `json:"pid"`
	Name        string  `json:"name"`
	Rank        int     `json:"rank"`
	RatingValue float64 `json:"rating_value"`
	Mu          float64 `json:"mu"`
	Sigma       float64 `json:"sigma"`
	UpdatedAt   string  `json:"updated_at"`
	UberID      *int64  `json:"uber_id,omitempty"`
}

func toRankedPlayerJSON(rp domain.RankedPlayer) rankedPlayerJSON {
	return rankedPlayerJSON{
		PID:         rp.Player.PID,
		Name:        rp.Player.Name,
		Rank:        rp.Rank,
		RatingValue: rp.Player.RatingValue,
		Mu:          rp.Player.Mu,
		Sigma:       rp.Player.Sigma,
		UpdatedAt:   rp.Player.UpdatedAt.UTC().Format(time.RFC3339),
		UberID:      rp.UberID,
	}
}

func (s *LadderServer) handleRank(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.ParseInt(r.PathValue("pid"), 10, 64)
	if err != nil {
		s.writeError(w, r, domain.ErrInvalidRequest)
		return
	}

	ranked, err := s.ranks.RankOf(r.Context(), pid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRankedPlayerJSON(*ranked))
}

func (s *LadderServer) handleLadder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// 0 or absent means unlimited / unfiltered, never "zero results".
	limit, err := queryInt(q.Get("limit"))
	if err != nil {
		s.writeError(w, r, domain.ErrInvalidRequest)
		return
	}
	activeDays, err := queryInt(q.Get("active"))
	if err != nil {
		s.writeError(w, r, domain.ErrInvalidRequest)
		return
	}

	// Presence-based flag: the value is never inspected.
	includeIDs := q.Has("ids")

	ranked, err := s.ranks.Ladder(r.Context(), limit, activeDays, includeIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	players := make([]rankedPlayerJSON, len(ranked))
	for i, rp := range ranked {
		players[i] = toRankedPlayerJSON(rp)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"players": players})
}

type standingJSON struct {
	Rank      int    `json:"rank"`
	UberID    int64  `json:"uber_id"`
	PID       *int64 `json:"pid"`
	Name      string `json:"name"`
	LastMatch string `json:"last_match"`
}

// leaderboardJSON keeps the five league keys in display order; a struct
// rather than a map so the emitted order is fixed.
type leaderboardJSON struct {
	Uber     []standingJSON `json:"uber"`
	Platinum []standingJSON `json:"platinum"`
	Gold     []standingJSON `json:"gold"`
	Silver   []standingJSON `json:"silver"`
	Bronze   []standingJSON `json:"bronze"`
}

func toStandingsJSON(standings []domain.Standing) []standingJSON {
	out := make([]standingJSON, len(standings))
	for i, st := range standings {
		out[i] = standingJSON{
			Rank:      st.Rank,
			UberID:    st.UberID,
			PID:       st.PID,
			Name:      st.Name,
			LastMatch: st.LastMatch.UTC().Format(time.RFC3339),
		}
	}
	return out
}

func (s *LadderServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	grouped, err := s.boards.Aggregate(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, leaderboardJSON{
		Uber:     toStandingsJSON(grouped["uber"]),
		Platinum: toStandingsJSON(grouped["platinum"]),
		Gold:     toStandingsJSON(grouped["gold"]),
		Silver:   toStandingsJSON(grouped["silver"]),
		Bronze:   toStandingsJSON(grouped["bronze"]),
	})
}

func (s *LadderServer) handleLeague(w http.ResponseWriter, r *http.Request) {
	standings, err := s.boards.League(r.Context(), r.PathValue("league"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"entries": toStandingsJSON(standings)})
}

type qualityRequest struct {
	Teams [][]int64 `json:"teams"`
}

func (s *LadderServer) handleQuality(w http.ResponseWriter, r *http.Request) {
	var req qualityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, domain.ErrInvalidRequest)
		return
	}

	quality, err := s.matchups.Quality(r.Context(), req.Teams)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]float64{"quality": quality})
}

type forecastJSON struct {
	PlayerA   rankedPlayerJSON `json:"player_a"`
	PlayerB   rankedPlayerJSON `json:"player_b"`
	Quality   float64          `json:"quality"`
	Favourite *int64           `json:"favourite"`
}

func (s *LadderServer) handleForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, errA := strconv.ParseInt(q.Get("a"), 10, 64)
	b, errB := strconv.ParseInt(q.Get("b"), 10, 64)
	if errA != nil || errB != nil {
		s.writeError(w, r, domain.ErrInvalidRequest)
		return
	}

	forecast, err := s.matchups.Forecast(r.Context(), a, b)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, forecastJSON{
		PlayerA:   toRankedPlayerJSON(domain.RankedPlayer{Player: forecast.PlayerA}),
		PlayerB:   toRankedPlayerJSON(domain.RankedPlayer{Player: forecast.PlayerB}),
		Quality:   forecast.Quality,
		Favourite: forecast.Favourite,
	})
}

func (s *LadderServer) handleTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := s.archive.Tournaments(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	type tournamentJSON struct {
		Title  string `json:"title"`
		Date   string `json:"date"`
		Winner string `json:"winner"`
		Mode   string `json:"mode"`
		URL    string `json:"url"`
	}
	out := make([]tournamentJSON, len(tournaments))
	for i, t := range tournaments {
		out[i] = tournamentJSON{
			Title:  t.Title,
			Date:   t.Date.UTC().Format(time.RFC3339),
			Winner: t.Winner,
			Mode:   t.Mode,
			URL:    t.URL,
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tournaments": out})
}

func (s *LadderServer) handlePatches(w http.ResponseWriter, r *http.Request) {
	patches, err := s.archive.Patches(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	type patchJSON struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Version     string `json:"version"`
		Updated     string `json:"updated"`
	}
	out := make([]patchJSON, len(patches))
	for i, p := range patches {
		out[i] = patchJSON{
			Name:        p.Name,
			Description: p.Description,
			Version:     p.Version,
			Updated:     p.Updated.UTC().Format(time.RFC3339),
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"patches": out})
}

func (s *LadderServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *LadderServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// queryInt parses an optional numeric parameter; empty means zero, which
// callers treat as "disabled".
func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
