package catalog

import (
	"regexp"
	"strings"

	"github.com/cesargomez89/cratedigger/internal/domain"
	"github.com/cesargomez89/cratedigger/internal/video"
)

func (r APILabelReleasesResponse) ToDomain() *domain.LabelPage {
	page := &domain.LabelPage{
		Page:  r.Pagination.Page,
		Pages: r.Pagination.Pages,
	}
	for _, item := range r.Releases {
		id := item.ID.String()
		if id == "" {
			continue
		}
		page.Releases = append(page.Releases, domain.ReleaseSummary{
			ID:            id,
			Title:         strings.TrimSpace(item.Title),
			Artist:        cleanName(item.Artist),
			CatalogNumber: strings.TrimSpace(item.CatNo),
			ArtworkURL:    item.Thumb,
			Year:          item.Year,
		})
	}
	return page
}

func (r APIReleaseResponse) ToDomain() *domain.ReleaseDetail {
	detail := &domain.ReleaseDetail{
		ID:     r.ID.String(),
		Title:  strings.TrimSpace(r.Title),
		Artist: joinArtists(r.Artists),
		Year:   r.Year,
		Genres: domain.NewTagSet(r.Genres...),
		Styles: domain.NewTagSet(r.Styles...),
	}

	if len(r.Labels) > 0 {
		detail.LabelName = cleanName(r.Labels[0].Name)
		detail.CatalogNumber = strings.TrimSpace(r.Labels[0].CatNo)
	}

	detail.ArtworkURL = r.Thumb
	for _, img := range r.Images {
		if img.Type == "primary" {
			detail.ArtworkURL = img.URI
			break
		}
	}
	if detail.ArtworkURL == "" && len(r.Images) > 0 {
		detail.ArtworkURL = r.Images[0].URI
	}

	for _, a := range r.ExtraArtists {
		detail.Contributors.Add(cleanName(a.Name))
	}

	detail.Tracks = flattenTracks(r.Tracklist)
	for _, t := range r.Tracklist {
		for _, a := range t.ExtraArtists {
			detail.Contributors.Add(cleanName(a.Name))
		}
	}

	for _, v := range r.Videos {
		id := video.ExtractVideoID(v.URI)
		if id == "" {
			continue
		}
		detail.Videos = append(detail.Videos, domain.EmbeddedVideo{
			URL:         v.URI,
			VideoID:     id,
			Title:       strings.TrimSpace(v.Title),
			Description: v.Description,
			Embeddable:  v.Embed,
		})
	}

	return detail
}

// flattenTracks drops headings and expands index tracks into their
// sub-tracks.
func flattenTracks(in []APITrack) []domain.TrackListing {
	var out []domain.TrackListing
	for _, t := range in {
		switch t.Type {
		case "heading":
			continue
		case "index":
			out = append(out, flattenTracks(t.SubTracks)...)
			continue
		}
		out = append(out, domain.TrackListing{
			Position: strings.TrimSpace(t.Position),
			Title:    strings.TrimSpace(t.Title),
			Duration: strings.TrimSpace(t.Duration),
			Artist:   joinArtists(t.Artists),
		})
	}
	return out
}

func (r APIIdentityResponse) ToDomain() *domain.Identity {
	return &domain.Identity{ID: r.ID, Username: r.Username}
}

func (r APIWantlistResponse) ToDomain() *domain.WantlistPage {
	page := &domain.WantlistPage{
		Page:  r.Pagination.Page,
		Pages: r.Pagination.Pages,
	}
	for _, w := range r.Wants {
		id := w.BasicInformation.ID.String()
		if id == "" {
			id = w.ID.String()
		}
		page.Items = append(page.Items, domain.WantlistItem{
			ReleaseID: id,
			Title:     w.BasicInformation.Title,
			Artist:    joinArtists(w.BasicInformation.Artists),
			Year:      w.BasicInformation.Year,
		})
	}
	return page
}

var disambiguation = regexp.MustCompile(`\s+\(\d+\)$`)

// cleanName strips the catalog's numeric disambiguation suffix ("Name (2)").
func cleanName(name string) string {
	return disambiguation.ReplaceAllString(strings.TrimSpace(name), "")
}

func joinArtists(artists []APIArtist) string {
	var b strings.Builder
	for i, a := range artists {
		name := a.ANV
		if name == "" {
			name = a.Name
		}
		b.WriteString(cleanName(name))
		if i < len(artists)-1 {
			join := strings.TrimSpace(a.Join)
			switch join {
			case "", ",":
				b.WriteString(join + " ")
			default:
				b.WriteString(" " + join + " ")
			}
		}
	}
	return strings.TrimSpace(b.String())
}
