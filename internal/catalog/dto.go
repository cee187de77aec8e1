package catalog

import (
	"encoding/json"
)

type APIPagination struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Items   int `json:"items"`
}

type APIArtist struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
	ANV  string      `json:"anv"`
	Join string      `json:"join"`
	Role string      `json:"role"`
}

type APILabelRelease struct {
	ID     json.Number `json:"id"`
	Title  string      `json:"title"`
	Artist string      `json:"artist"`
	CatNo  string      `json:"catno"`
	Thumb  string      `json:"thumb"`
	Year   int         `json:"year"`
}

type APILabelReleasesResponse struct {
	Pagination APIPagination     `json:"pagination"`
	Releases   []APILabelRelease `json:"releases"`
}

type APITrack struct {
	Position     string      `json:"position"`
	Type         string      `json:"type_"`
	Title        string      `json:"title"`
	Duration     string      `json:"duration"`
	Artists      []APIArtist `json:"artists"`
	ExtraArtists []APIArtist `json:"extraartists"`
	SubTracks    []APITrack  `json:"sub_tracks"`
}

type APIVideo struct {
	URI         string `json:"uri"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Embed       bool   `json:"embed"`
}

type APIImage struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

type APIReleaseLabel struct {
	ID    json.Number `json:"id"`
	Name  string      `json:"name"`
	CatNo string      `json:"catno"`
}

type APIReleaseResponse struct {
	ID           json.Number       `json:"id"`
	Title        string            `json:"title"`
	Artists      []APIArtist       `json:"artists"`
	ExtraArtists []APIArtist       `json:"extraartists"`
	Labels       []APIReleaseLabel `json:"labels"`
	Tracklist    []APITrack        `json:"tracklist"`
	Videos       []APIVideo        `json:"videos"`
	Images       []APIImage        `json:"images"`
	Genres       []string          `json:"genres"`
	Styles       []string          `json:"styles"`
	Thumb        string            `json:"thumb"`
	Year         int               `json:"year"`
}

type APIIdentityResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type APIWant struct {
	ID               json.Number `json:"id"`
	BasicInformation struct {
		ID      json.Number `json:"id"`
		Title   string      `json:"title"`
		Year    int         `json:"year"`
		Artists []APIArtist `json:"artists"`
	} `json:"basic_information"`
}

type APIWantlistResponse struct {
	Pagination APIPagination `json:"pagination"`
	Wants      []APIWant     `json:"wants"`
}
