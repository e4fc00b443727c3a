package model

import "time"

// Show represents a scheduled screening of a movie on a screen.  The
// booking core treats shows as read-only catalog data: they are looked
// up for pricing and schedule validation at intent-creation time and
// never modified here.
//
// Fields:
//  ID         – primary key identifier.
//  MovieTitle – display name of the movie.
//  CinemaName – display name of the cinema.
//  ScreenName – display name of the screen inside the cinema.
//  StartsAt   – when the show begins (UTC).
//  PriceCents – flat per-seat price in cents.
type Show struct {
	ID         uint64    // shows.id
	MovieTitle string    // shows.movie_title
	CinemaName string    // shows.cinema_name
	ScreenName string    // shows.screen_name
	StartsAt   time.Time // shows.starts_at
	PriceCents uint32    // shows.price_cents
}

// ShowSnapshot is the display-only view of a show returned with a
// payment intent.  It is never re-validated at finalize time beyond
// price and seat set.
type ShowSnapshot struct {
	ShowID     uint64 `json:"show_id"`
	MovieTitle string `json:"movie_title"`
	CinemaName string `json:"cinema_name"`
	ScreenName string `json:"screen_name"`
	StartsAt   string `json:"starts_at"`
}

// Snapshot builds the display snapshot for a show.
func (s *Show) Snapshot() ShowSnapshot {
	return ShowSnapshot{
		ShowID:     s.ID,
		MovieTitle: s.MovieTitle,
		CinemaName: s.CinemaName,
		ScreenName: s.ScreenName,
		StartsAt:   s.StartsAt.UTC().Format(time.RFC3339),
	}
}
