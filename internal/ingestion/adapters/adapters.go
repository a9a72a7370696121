// Package adapters holds one SourceAdapter implementation per upstream site.
// Adapters share no mutable state; each carries its own Fetcher and its own
// venue metadata.
package adapters

import (
	"regexp"
	"strings"
	"time"

	"github.com/familyscout/familyscout/internal/ingestion"
)

// All returns every known source adapter. timeoutFor supplies the fetch
// timeout per adapter name, so slow upstreams can carry a longer budget than
// the rest.
func All(timeoutFor func(name string) time.Duration) []ingestion.SourceAdapter {
	fetcher := func(name string) *ingestion.Fetcher {
		return ingestion.NewFetcher(timeoutFor(name))
	}
	return []ingestion.SourceAdapter{
		NewLibrary(fetcher("denver_library")),
		NewZoo(fetcher("denver_zoo")),
		NewChildrensMuseum(fetcher("childrens_museum")),
		NewCinema(fetcher("cinemark_movies")),
		NewCityEvents(fetcher("denver_events")),
		NewRecreation(fetcher("denver_recreation")),
		NewTrails(fetcher("denver_trails")),
		NewKidsOutAbout(fetcher("kids_out_about")),
		NewMacaroniKid(fetcher("macaroni_kid")),
		NewColoradoParent(fetcher("colorado_parent")),
	}
}

var (
	tagRe       = regexp.MustCompile(`<[^>]+>`)
	brRe        = regexp.MustCompile(`(?i)<br\s*/?>|</p>`)
	entityables = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'", "&nbsp;", " ")
)

// stripTags removes HTML markup and decodes the handful of entities the
// upstream sites actually emit.
func stripTags(html string) string {
	html = brRe.ReplaceAllString(html, "\n")
	html = tagRe.ReplaceAllString(html, "")
	return strings.TrimSpace(entityables.Replace(html))
}

// absoluteURL resolves href against base when the upstream emits a relative
// link.
func absoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return strings.TrimSuffix(base, "/") + href
	default:
		return strings.TrimSuffix(base, "/") + "/" + href
	}
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// slugify turns a title into a URL-safe fragment.
func slugify(s string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func floatPtr(f float64) *float64 { return &f }
