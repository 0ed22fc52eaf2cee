package analyzer

import (
	"strings"

	"github.com/pursewatch-dev/pursewatch/internal/model"
	"github.com/pursewatch-dev/pursewatch/internal/page"
)

var titleSeparators = []string{" | ", " – ", " — ", " - ", " · ", " :: "}

// Identify derives the site identity from page metadata and title heuristics.
// Category starts as Other and is refined when an analysis result assigns
// one.
func Identify(snap *page.Snapshot) model.SiteIdentity {
	name := snap.MetaContent("og:site_name")
	if name == "" {
		name = firstTitleSegment(snap.Title())
	}
	if name == "" {
		name = humanizeHostname(snap.Hostname())
	}

	return model.SiteIdentity{
		Name:     name,
		Hostname: snap.Hostname(),
		Category: CategoryOther,
		IconURL:  snap.IconURL(),
	}
}

// firstTitleSegment takes the leading segment of a separator-joined title,
// which is usually the brand or product name.
func firstTitleSegment(title string) string {
	for _, sep := range titleSeparators {
		if idx := strings.Index(title, sep); idx > 0 {
			return strings.TrimSpace(title[:idx])
		}
	}
	return strings.TrimSpace(title)
}

// humanizeHostname turns "www.example.co.uk" into "Example".
func humanizeHostname(hostname string) string {
	host := strings.TrimPrefix(hostname, "www.")
	if host == "" {
		return ""
	}
	if idx := strings.Index(host, "."); idx > 0 {
		host = host[:idx]
	}
	if host == "" {
		return ""
	}
	return strings.ToUpper(host[:1]) + host[1:]
}
