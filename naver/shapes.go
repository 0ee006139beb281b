package naver

import (
	"encoding/json"
	"strings"

	"github.com/plateful/placepipe/place"
)

// The platform serves the same logical data under different field paths
// depending on which endpoint version answered. Each extractor below is an
// ordered chain of probe functions; the first probe that finds anything in
// a given object wins for that object. Adding a new response shape means
// appending a probe, never editing an existing one.

// imageProbes extract photo URL lists from one decoded object.
var imageProbes = []func(obj map[string]any) []string{
	func(obj map[string]any) []string { return urlList(digSlice(obj, "images"), "url", "imageUrl") },
	func(obj map[string]any) []string {
		return urlList(digSlice(obj, "photos"), "originalUrl", "url")
	},
	func(obj map[string]any) []string {
		return urlList(digSlice(obj, "photoList"), "imageUrl", "url")
	},
	func(obj map[string]any) []string {
		return urlList(digSlice(obj, "data", "photoViewer", "photos"), "originalUrl", "viewerUrl")
	},
	func(obj map[string]any) []string { return stringList(digSlice(obj, "thumUrls")) },
}

// menuProbes extract menu item lists from one decoded object.
var menuProbes = []func(obj map[string]any) []place.MenuItem{
	func(obj map[string]any) []place.MenuItem { return menuList(digSlice(obj, "menus")) },
	func(obj map[string]any) []place.MenuItem { return menuList(digSlice(obj, "menuList")) },
	func(obj map[string]any) []place.MenuItem {
		return menuList(digSlice(obj, "menuInfo", "menuList"))
	},
	func(obj map[string]any) []place.MenuItem {
		return menuList(digSlice(obj, "data", "restaurant", "menus"))
	},
}

// candidateProbes extract search result lists from one decoded object.
var candidateProbes = []func(obj map[string]any) []map[string]any{
	func(obj map[string]any) []map[string]any { return objList(digSlice(obj, "result", "place", "list")) },
	func(obj map[string]any) []map[string]any { return objList(digSlice(obj, "place", "list")) },
	func(obj map[string]any) []map[string]any { return objList(digSlice(obj, "result", "site", "list")) },
	func(obj map[string]any) []map[string]any { return objList(digSlice(obj, "items")) },
	func(obj map[string]any) []map[string]any { return objList(digSlice(obj, "searchedList")) },
}

// ExtractImages pulls photo URLs out of one raw response payload. The
// payload may be a single object or an array of objects; anything that
// fails to parse yields nil — a later response may still succeed.
func ExtractImages(raw []byte) []string {
	var out []string
	for _, obj := range decodeObjects(raw) {
		for _, probe := range imageProbes {
			if urls := probe(obj); len(urls) > 0 {
				out = append(out, urls...)
				break
			}
		}
	}
	return out
}

// ExtractMenu pulls menu items out of one raw response payload.
func ExtractMenu(raw []byte) []place.MenuItem {
	var out []place.MenuItem
	for _, obj := range decodeObjects(raw) {
		for _, probe := range menuProbes {
			if items := probe(obj); len(items) > 0 {
				out = append(out, items...)
				break
			}
		}
	}
	return out
}

// ExtractCandidates pulls search candidates out of one raw response payload.
func ExtractCandidates(raw []byte) []place.Candidate {
	var out []place.Candidate
	for _, entry := range extractResultObjects(raw) {
		c := candidateFromObject(entry)
		if c.ExternalID != "" && c.Name != "" {
			out = append(out, c)
		}
	}
	return out
}

// ExtractSearchResults is the detail-rich variant of ExtractCandidates used
// by the resolver's search tier, which needs more than id/name/address.
func ExtractSearchResults(raw []byte) []SearchResult {
	var out []SearchResult
	for _, entry := range extractResultObjects(raw) {
		r := searchResultFromObject(entry)
		if r.ID != "" && r.Name != "" {
			out = append(out, r)
		}
	}
	return out
}

func extractResultObjects(raw []byte) []map[string]any {
	var out []map[string]any
	for _, obj := range decodeObjects(raw) {
		for _, probe := range candidateProbes {
			if entries := probe(obj); len(entries) > 0 {
				out = append(out, entries...)
				break
			}
		}
	}
	return out
}

func candidateFromObject(entry map[string]any) place.Candidate {
	return place.Candidate{
		ExternalID: digString(entry, "id", "placeId", "sid"),
		Name:       digString(entry, "name", "title"),
		Address:    digString(entry, "address", "roadAddress", "addr"),
	}
}

func searchResultFromObject(entry map[string]any) SearchResult {
	return SearchResult{
		ID:          digString(entry, "id", "placeId", "sid"),
		Name:        digString(entry, "name", "title"),
		Category:    digString(entry, "category", "bizhourInfo", "businessCategory"),
		Address:     digString(entry, "address", "addr"),
		RoadAddress: digString(entry, "roadAddress", "roadAddr"),
		Phone:       digString(entry, "tel", "phone", "telDisplay"),
		X:           digString(entry, "x", "longitude"),
		Y:           digString(entry, "y", "latitude"),
		Thumbs:      stringList(digSlice(entry, "thumUrls")),
	}
}

// decodeObjects parses a payload as either one JSON object or an array of
// objects. Parse failures are swallowed: a mismatched response simply
// contributes nothing.
func decodeObjects(raw []byte) []map[string]any {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil
	}

	switch trimmed[0] {
	case '{':
		var obj map[string]any
		if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
			return nil
		}
		return []map[string]any{obj}
	case '[':
		var arr []any
		if err := json.Unmarshal([]byte(trimmed), &arr); err != nil {
			return nil
		}
		return objList(arr)
	default:
		return nil
	}
}

// digSlice walks nested maps along keys and returns the terminal value as a
// slice, or nil when any hop is missing or mistyped.
func digSlice(obj map[string]any, keys ...string) []any {
	cur := obj
	for i, k := range keys {
		v, ok := cur[k]
		if !ok {
			return nil
		}
		if i == len(keys)-1 {
			s, _ := v.([]any)
			return s
		}
		cur, ok = v.(map[string]any)
		if !ok {
			return nil
		}
	}
	return nil
}

// digString returns the first non-empty string value among keys.
func digString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func objList(vals []any) []map[string]any {
	var out []map[string]any
	for _, v := range vals {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func stringList(vals []any) []string {
	var out []string
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// urlList extracts URLs from a slice whose entries are either plain strings
// or objects carrying the URL under one of urlKeys.
func urlList(vals []any, urlKeys ...string) []string {
	var out []string
	for _, v := range vals {
		switch e := v.(type) {
		case string:
			if e != "" {
				out = append(out, e)
			}
		case map[string]any:
			if u := digString(e, urlKeys...); u != "" {
				out = append(out, u)
			}
		}
	}
	return out
}

func menuList(vals []any) []place.MenuItem {
	var out []place.MenuItem
	for _, v := range vals {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		item := menuFromObject(entry)
		if item.Name == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func menuFromObject(entry map[string]any) place.MenuItem {
	item := place.MenuItem{
		Name:        digString(entry, "name", "menuName", "title"),
		Description: digString(entry, "description", "desc"),
		Images:      urlList(digSlice(entry, "images"), "url", "imageUrl"),
		Priority:    digPriority(entry),
	}
	if img := digString(entry, "imgUrl", "imageUrl"); img != "" {
		item.Images = append(item.Images, img)
	}

	// Price arrives as a string on some endpoints, a number on others.
	for _, k := range []string{"price", "menuPrice"} {
		if v, ok := entry[k]; ok && v != nil {
			item.Price = place.DisplayPrice(v)
			break
		}
	}

	// Multiple boolean-ish "recommended" signals, folded with OR.
	for _, k := range []string{"recommend", "isRecommended", "representative", "isBest"} {
		if truthy(entry[k]) {
			item.Recommended = true
			break
		}
	}

	return item
}

// digPriority reads a display order field, returning -1 when absent so the
// normalizer can substitute the source position.
func digPriority(entry map[string]any) int {
	for _, k := range []string{"priority", "order", "displayOrder"} {
		if f, ok := entry[k].(float64); ok {
			return int(f)
		}
	}
	return -1
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "Y" || t == "y" || t == "1"
	case float64:
		return t != 0
	default:
		return false
	}
}
