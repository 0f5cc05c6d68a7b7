// Package library manages the media catalog: videos, movies, shows, people and collections.
package library

import (
	"time"
)

// MediaType says what kind of record a Video is attached to.
type MediaType int

const (
	MediaMovie MediaType = iota
	MediaEpisode
	MediaUnassigned
)

func (m MediaType) String() string {
	switch m {
	case MediaMovie:
		return "movie"
	case MediaEpisode:
		return "episode"
	case MediaUnassigned:
		return "unassigned"
	default:
		return "unknown"
	}
}

// ParseMediaType parses the String form of a MediaType.
func ParseMediaType(s string) (MediaType, error) {
	switch s {
	case "movie":
		return MediaMovie, nil
	case "episode":
		return MediaEpisode, nil
	case "unassigned", "":
		return MediaUnassigned, nil
	default:
		return 0, ErrInvalidQuery
	}
}

// Video is a media file on disk with its probed stream metadata.
type Video struct {
	ID        int64
	Path      string
	MediaType MediaType
	MediaID   *int64 // nil when unassigned
	Duration  int64  // seconds
	BitRate   int64
	Codec     string
	Width     int
	Height    int
	Size      int64
	Added     time.Time
	Subtitles []string
	Audios    []string

	// Per-user state, filled by reads.
	WatchTime int64
	LastWatch *time.Time
}

// VideoResult is a search row for a Video with a summary of what it is attached to.
type VideoResult struct {
	ID        int64
	Path      string
	MediaType MediaType
	MediaID   *int64
	Duration  int64
	Codec     string
	Size      int64
	Added     time.Time
	Subtitles []string
	Audios    []string
	LastWatch *time.Time
	Info      MediaInfo
}

// MediaInfo describes the record a Video is attached to. Both fields nil means unknown.
type MediaInfo struct {
	Movie   *MovieSummary
	Episode *EpisodeSummary
}

// MovieSummary is the movie side of MediaInfo.
type MovieSummary struct {
	ID          int64
	Title       string
	ReleaseDate string
}

// EpisodeSummary is the episode side of MediaInfo.
type EpisodeSummary struct {
	TvID    int64
	TvTitle string
	Season  int
	Episode int
}

// Movie is a full movie record as seen by one user.
type Movie struct {
	ID               int64
	OriginalTitle    string
	OriginalLanguage string
	Title            string
	ReleaseDate      string
	Overview         string
	Popularity       float64
	PosterPath       string
	BackdropPath     string
	VoteAverage      float64
	VoteCount        int
	Tagline          string
	Status           string
	Adult            bool
	Genres           []string
	Added            time.Time
	Updated          time.Time
	Watched          int64
}

// MovieResult is a movie search row.
type MovieResult struct {
	ID           int64
	Title        string
	ReleaseDate  string
	PosterPath   string
	BackdropPath string
	VoteAverage  float64
	Genres       []string
	Added        time.Time
	Watched      int64
}

// Tv is a full show record as seen by one user.
// Watched is the minimum watched count across its episodes.
type Tv struct {
	ID               int64
	OriginalTitle    string
	OriginalLanguage string
	Title            string
	ReleaseDate      string
	Overview         string
	Popularity       float64
	PosterPath       string
	BackdropPath     string
	Status           string
	VoteAverage      float64
	VoteCount        int
	InProduction     bool
	NumberOfEpisodes int
	NumberOfSeasons  int
	EpisodeRunTime   int
	Genres           []string
	Added            time.Time
	Updated          time.Time
	Watched          int64
}

// TvResult is a show search row.
type TvResult struct {
	ID           int64
	Title        string
	ReleaseDate  string
	PosterPath   string
	BackdropPath string
	VoteAverage  float64
	Genres       []string
	Added        time.Time
	Watched      int64
}

// Season of a show. Watched is the minimum across its episodes.
type Season struct {
	ID           int64
	TvID         int64
	SeasonNumber int
	EpisodeCount int
	Title        string
	Overview     string
	PosterPath   string
	ReleaseDate  string
	Added        time.Time
	Updated      time.Time
	Watched      int64
}

// Episode of a show.
type Episode struct {
	ID            int64
	SeasonID      int64
	TvID          int64
	SeasonNumber  int
	EpisodeNumber int
	ReleaseDate   string
	Title         string
	Overview      string
	StillPath     string
	VoteAverage   float64
	VoteCount     int
	Updated       time.Time
	Watched       int64
	TvTitle       string
	TvPosterPath  string
}

// Person is a cast or crew member.
type Person struct {
	ID                 int64
	Name               string
	Birthday           string
	Deathday           string
	KnownForDepartment string
	Gender             int
	Biography          string
	Popularity         float64
	PlaceOfBirth       string
	ProfilePath        string
	Updated            time.Time
}

// PersonResult is a person search row.
type PersonResult struct {
	ID                 int64
	Name               string
	KnownForDepartment string
	ProfilePath        string
}

// Cast is an acting credit joined with the person.
type Cast struct {
	PersonID    int64
	Name        string
	Character   string
	Order       int
	ProfilePath string
}

// Crew is a crew credit joined with the person.
type Crew struct {
	PersonID    int64
	Name        string
	Job         string
	ProfilePath string
}

// Genre is a provider genre shared by movies and shows.
type Genre struct {
	ID   int64
	Name string
}

// Keyword is a provider keyword.
type Keyword struct {
	ID   int64
	Name string
}

// Trailer is a YouTube video attached to a movie or show.
type Trailer struct {
	Name      string
	YouTubeID string
}

// Collection is a user-curated list of movies and shows.
type Collection struct {
	ID          int64
	Name        string
	Description string
	Creator     string
	Created     time.Time
	PosterPath  string
}

// UpsertResult lists what an upsert referenced but did not store itself:
// people to fetch and relative asset paths to download.
type UpsertResult struct {
	PersonIDs []int64
	Assets    []string
}

func (r *UpsertResult) addPerson(id int64) {
	for _, p := range r.PersonIDs {
		if p == id {
			return
		}
	}
	r.PersonIDs = append(r.PersonIDs, id)
}

func (r *UpsertResult) addAsset(path string) {
	if path == "" {
		return
	}
	r.Assets = append(r.Assets, path)
}

// crewJobs are the crew jobs kept on upsert.
var crewJobs = map[string]bool{
	"Director":   true,
	"Producer":   true,
	"Screenplay": true,
}

// CreatorJob is the crew job recorded for a show's creators.
const CreatorJob = "Creator"

const trailerSite = "YouTube"
