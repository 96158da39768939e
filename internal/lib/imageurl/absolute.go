package imageurl

import (
	"net/url"
	"regexp"
	"strings"
)

// Already-absolute references pass through untouched: http(s), data, blob
// and protocol-relative URLs.
var (
	absoluteRe = regexp.MustCompile(`(?i)^(https?:)?//`)
	inlineRe   = regexp.MustCompile(`(?i)^(data:|blob:)`)
)

// Composer turns possibly-relative stored photo paths into absolute URLs.
// When the API base endpoint is itself absolute its origin is reused; when
// it is a relative path the API origin and the static-asset origin differ,
// and a separately configured media origin takes over.
type Composer struct {
	apiBaseURL  string
	mediaOrigin string
}

func NewComposer(apiBaseURL, mediaOrigin string) Composer {
	return Composer{
		apiBaseURL:  apiBaseURL,
		mediaOrigin: mediaOrigin,
	}
}

// Absolute resolves ref against the media origin. Absolute inputs are
// returned unchanged, so the function is idempotent.
func (c Composer) Absolute(ref string) string {
	if ref == "" {
		return ""
	}
	if absoluteRe.MatchString(ref) || inlineRe.MatchString(ref) {
		return ref
	}

	origin := c.mediaOrigin
	if strings.HasPrefix(c.apiBaseURL, "http") {
		if u, err := url.Parse(c.apiBaseURL); err == nil && u.Host != "" {
			origin = u.Scheme + "://" + u.Host
		}
	}

	base, err := url.Parse(origin)
	if err != nil {
		return ref
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(rel).String()
}
