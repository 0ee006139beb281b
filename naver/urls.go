// Package naver talks to the external mapping platform: endpoint URL
// composition, the HTTP query surface, multi-shape response extraction,
// and the tiered detail resolver.
//
// None of the response shapes here are contractually stable. The platform
// exposes the same logical data under several field paths depending on
// endpoint version, so every extractor is an ordered probe chain that is
// expected to grow new entries over time.
package naver

import "net/url"

const (
	apiBase    = "https://map.naver.com/p/api"
	placeMBase = "https://m.place.naver.com"
)

// apiHosts are the origins whose responses the interceptor considers
// structured platform traffic.
var apiHosts = map[string]bool{
	"map.naver.com":             true,
	"m.place.naver.com":         true,
	"pcmap-api.place.naver.com": true,
	"api.place.naver.com":       true,
}

// assetHostSuffixes identify the platform's image CDNs.
var assetHostSuffixes = []string{".pstatic.net", ".naver.net"}

// PhotoPageURL composes the rendered photo gallery page for a place ID.
func PhotoPageURL(externalID string) string {
	return placeMBase + "/restaurant/" + url.PathEscape(externalID) + "/photo"
}

// MenuPageURL composes the rendered menu list page for a place ID.
func MenuPageURL(externalID string) string {
	return placeMBase + "/restaurant/" + url.PathEscape(externalID) + "/menu/list"
}

// SearchPageURL composes the rendered map search page for a free-text query.
func SearchPageURL(query string) string {
	return "https://map.naver.com/p/search/" + url.PathEscape(query)
}

// IsAPIHost reports whether rawURL points at one of the platform's API
// origins. Malformed URLs are not API traffic.
func IsAPIHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return apiHosts[u.Hostname()]
}

// IsAssetHost reports whether rawURL points at one of the platform's image
// CDNs.
func IsAssetHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	for _, suf := range assetHostSuffixes {
		if host == suf[1:] || len(host) > len(suf) && host[len(host)-len(suf):] == suf {
			return true
		}
	}
	return false
}
