package domain

import (
	"strings"
	"time"
)

// Player is a ladder participant. Rows are written by the ingestion side;
// this service only reads them. RatingValue is the conservative ordering
// scalar (mu - 3*sigma) kept in sync with Mu/Sigma by whoever writes the row.
type Player struct {
	PID         int64
	Name        string
	Mu          float64
	Sigma       float64
	RatingValue float64
	UpdatedAt   time.Time
}

// UberAccount links an upstream UberNet account to a local player.
// PID is nil for accounts that never played a tracked match.
type UberAccount struct {
	UberID      int64
	PID         *int64
	DisplayName string
}

// LeaderBoardEntry is one row of the official league standings, pre-ranked
// upstream. Rank is never recomputed here.
type LeaderBoardEntry struct {
	League    string
	Rank      int
	UberID    int64
	LastMatch time.Time
}

// Standing is a LeaderBoardEntry joined with its UberAccount, the shape the
// aggregator works on. PID is nil and Name empty when the account is unmapped.
type Standing struct {
	League    string
	Rank      int
	UberID    int64
	PID       *int64
	Name      string
	LastMatch time.Time
}

// RankedPlayer is a ladder listing row: a player plus the ordinal rank among
// all known players. UberID is attached only when the caller asked for it.
type RankedPlayer struct {
	Player Player
	Rank   int
	UberID *int64
}

// Forecast is the two-player matchup estimate. Favourite is the pid of the
// player with the strictly higher rating value, nil on an exact tie.
type Forecast struct {
	PlayerA   Player
	PlayerB   Player
	Quality   float64
	Favourite *int64
}

type Tournament struct {
	ID     int64
	Title  string
	Date   time.Time
	Winner string
	Mode   string
	URL    string
}

type Patch struct {
	ID          int64
	Name        string
	Description string
	Version     string
	Updated     time.Time
}

// Leagues is the fixed set of official tiers in display order. Keys emitted
// to callers are these lower-case labels.
var Leagues = []string{"uber", "platinum", "gold", "silver", "bronze"}

// ValidLeague reports whether name is one of the five tiers, ignoring case.
func ValidLeague(name string) bool {
	name = strings.ToLower(name)
	for _, l := range Leagues {
		if l == name {
			return true
		}
	}
	return false
}
