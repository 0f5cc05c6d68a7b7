// Package tmdb provides a client for The Movie Database API and its payload types.
package tmdb

import "strconv"

// Movie represents TMDB movie metadata with appended credits, videos and keywords.
type Movie struct {
	ID               int64       `json:"id"`
	IMDBID           string      `json:"imdb_id,omitempty"` // e.g., "tt0133093"
	Title            string      `json:"title"`
	OriginalTitle    string      `json:"original_title"`
	OriginalLanguage string      `json:"original_language"`
	Overview         string      `json:"overview"`
	Tagline          string      `json:"tagline"`
	Status           string      `json:"status"`
	ReleaseDate      string      `json:"release_date"` // "2024-03-01"
	PosterPath       string      `json:"poster_path"`  // "/abc123.jpg"
	BackdropPath     string      `json:"backdrop_path"`
	Popularity       float64     `json:"popularity"`
	VoteAverage      float64     `json:"vote_average"`
	VoteCount        int         `json:"vote_count"`
	Runtime          int         `json:"runtime"` // minutes
	Adult            bool        `json:"adult"`
	Genres           []Genre     `json:"genres"`
	Credits          Credits     `json:"credits"`
	Videos           VideoList   `json:"videos"`
	Keywords         KeywordList `json:"keywords"`
}

// Tv represents TMDB show metadata with appended credits, videos and keywords.
type Tv struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	OriginalName     string          `json:"original_name"`
	OriginalLanguage string          `json:"original_language"`
	Overview         string          `json:"overview"`
	Status           string          `json:"status"`
	FirstAirDate     string          `json:"first_air_date"`
	PosterPath       string          `json:"poster_path"`
	BackdropPath     string          `json:"backdrop_path"`
	Popularity       float64         `json:"popularity"`
	VoteAverage      float64         `json:"vote_average"`
	VoteCount        int             `json:"vote_count"`
	InProduction     bool            `json:"in_production"`
	NumberOfEpisodes int             `json:"number_of_episodes"`
	NumberOfSeasons  int             `json:"number_of_seasons"`
	EpisodeRunTime   []int           `json:"episode_run_time"`
	Genres           []Genre         `json:"genres"`
	Seasons          []SeasonSummary `json:"seasons"`
	CreatedBy        []Creator       `json:"created_by"`
	Credits          Credits         `json:"credits"`
	Videos           VideoList       `json:"videos"`
	Keywords         KeywordList     `json:"keywords"`
}

// SeasonSummary is a season entry inside a Tv payload.
type SeasonSummary struct {
	ID           int64  `json:"id"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	AirDate      string `json:"air_date"`
}

// Creator is a created_by entry of a Tv payload.
type Creator struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path"`
}

// Episode represents TMDB episode metadata with appended credits.
type Episode struct {
	ID            int64   `json:"id"`
	SeasonNumber  int     `json:"season_number"`
	EpisodeNumber int     `json:"episode_number"`
	AirDate       string  `json:"air_date"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	StillPath     string  `json:"still_path"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	Credits       Credits `json:"credits"`
}

// Person represents TMDB person metadata.
type Person struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Birthday           string  `json:"birthday"`
	Deathday           string  `json:"deathday"`
	KnownForDepartment string  `json:"known_for_department"`
	Gender             int     `json:"gender"`
	Biography          string  `json:"biography"`
	Popularity         float64 `json:"popularity"`
	PlaceOfBirth       string  `json:"place_of_birth"`
	ProfilePath        string  `json:"profile_path"`
}

// Genre represents a movie or show genre.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Credits holds cast and crew.
type Credits struct {
	Cast []CastCredit `json:"cast"`
	Crew []CrewCredit `json:"crew"`
}

// CastCredit is one acting credit.
type CastCredit struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	Order       int    `json:"order"`
	ProfilePath string `json:"profile_path"`
}

// CrewCredit is one crew credit.
type CrewCredit struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path"`
}

// VideoList is the appended videos block.
type VideoList struct {
	Results []Video `json:"results"`
}

// Video is a trailer or clip hosted on a third-party site.
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"` // "YouTube", "Vimeo"
	Type string `json:"type"`
}

// KeywordList is the appended keywords block.
// Movies use "keywords" and shows use "results" for the same list.
type KeywordList struct {
	Keywords []Keyword `json:"keywords"`
	Results  []Keyword `json:"results"`
}

// All returns the keywords regardless of which key carried them.
func (k KeywordList) All() []Keyword {
	if len(k.Keywords) > 0 {
		return k.Keywords
	}
	return k.Results
}

// Keyword is a TMDB keyword.
type Keyword struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Year extracts the year from ReleaseDate.
func (m *Movie) Year() int {
	return year(m.ReleaseDate)
}

// Year extracts the year from FirstAirDate.
func (t *Tv) Year() int {
	return year(t.FirstAirDate)
}

// RunTime returns the first listed episode run time in minutes.
func (t *Tv) RunTime() int {
	if len(t.EpisodeRunTime) == 0 {
		return 0
	}
	return t.EpisodeRunTime[0]
}

func year(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
