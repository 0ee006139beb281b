package place

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxImages caps a venue's stored image list. The platform pages routinely
// expose hundreds of photos; the host app only renders a short gallery.
const MaxImages = 10

// DedupeImages removes exact-URL duplicates preserving first-seen order and
// caps the result at MaxImages.
func DedupeImages(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
		if len(out) >= MaxImages {
			break
		}
	}
	return out
}

// NormalizeMenu fills in missing display priorities with the item's position
// in the source list and dedupes item image lists. Extractors mark a missing
// priority with a negative value. Order is preserved: the source order is
// the platform's display order.
func NormalizeMenu(items []MenuItem) []MenuItem {
	out := make([]MenuItem, 0, len(items))
	for i, it := range items {
		if it.Name == "" {
			continue
		}
		if it.Priority < 0 {
			it.Priority = i
		}
		it.Images = DedupeImages(it.Images)
		out = append(out, it)
	}
	return out
}

// DisplayPrice coerces a nullable string-or-number price field into a single
// display representation. No currency math: strings keep their separators,
// integral floats drop the decimal point, nil becomes the empty string.
func DisplayPrice(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}
