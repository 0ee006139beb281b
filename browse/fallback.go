package browse

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/plateful/placepipe/naver"
	"github.com/plateful/placepipe/place"
)

// DOM fallback extraction, used only when a session's collector comes up
// empty after the page has settled. The platform obfuscates and churns its
// class names across deployments, so nothing here depends on them: images
// are recognised by their CDN host, menu rows by a price-shaped text line.

// priceRe matches a Korean price occurring anywhere in a row's text.
var priceRe = regexp.MustCompile(`[0-9]{1,3}(?:,[0-9]{3})*원`)

// priceLineRe matches a line that is exactly a price (optionally with a
// leading "변동" / trailing qualifiers stripped by trimming beforehand).
var priceLineRe = regexp.MustCompile(`^[0-9]{1,3}(?:,[0-9]{3})*원$`)

// recommendMarkers is the small fixed vocabulary the platform renders on
// highlighted menu rows.
var recommendMarkers = map[string]bool{
	"대표":   true,
	"추천":   true,
	"인기":   true,
	"BEST": true,
	"베스트":  true,
}

// iconHints flag image filenames that are icons, logos or map sprites
// rather than venue photos.
var iconHints = []string{"icon", "logo", "sprite", "marker", "btn_", "blank.gif", ".svg"}

// maxMenuRowLen bounds the text length of something that can plausibly be
// a single menu row.
const maxMenuRowLen = 120

// ImagesFromHTML scans rendered image elements whose source is one of the
// platform's asset CDNs, excluding icon-looking filenames. Document order,
// no dedup — the caller normalizes.
func ImagesFromHTML(pageHTML string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil
	}

	var out []string
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || src == "" {
			src, _ = sel.Attr("data-src")
		}
		if src == "" || !naver.IsAssetHost(src) || looksLikeIcon(src) {
			return
		}
		out = append(out, src)
	})
	return out
}

// MenuFromHTML scans list-like elements for rows containing a price-shaped
// text line. Lines within a row are classified as price, recommendation
// marker, or — for the first unclassified line — the item name; later
// unclassified lines become the description. Rows that produce no name are
// discarded. Priority is zero-based document order.
func MenuFromHTML(pageHTML string) []place.MenuItem {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil
	}

	var items []place.MenuItem
	doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" || !priceRe.MatchString(text) {
			return
		}
		if len([]rune(text)) > maxMenuRowLen {
			return
		}
		// Nested list rows are handled when their own <li> is visited.
		if sel.Find("li").Length() > 0 {
			return
		}

		item, ok := menuRowFromLines(textLines(sel))
		if !ok {
			return
		}
		item.Images = rowImages(sel)
		item.Priority = len(items)
		items = append(items, item)
	})
	return items
}

func menuRowFromLines(lines []string) (place.MenuItem, bool) {
	var item place.MenuItem
	var extra []string

	for _, line := range lines {
		switch {
		case priceLineRe.MatchString(line):
			if item.Price == "" {
				item.Price = line
			}
		case recommendMarkers[line]:
			item.Recommended = true
		case item.Name == "":
			item.Name = line
		default:
			extra = append(extra, line)
		}
	}

	if item.Name == "" {
		return place.MenuItem{}, false
	}
	item.Description = strings.Join(extra, " ")
	return item, true
}

func rowImages(sel *goquery.Selection) []string {
	var out []string
	sel.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if src != "" && naver.IsAssetHost(src) && !looksLikeIcon(src) {
			out = append(out, src)
		}
	})
	return out
}

// textLines collects the trimmed text nodes of a row in document order.
// goquery's Text() concatenates without separators, which would glue the
// name to the price; walking the nodes keeps the visual line structure.
func textLines(sel *goquery.Selection) []string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if line := strings.TrimSpace(n.Data); line != "" {
				lines = append(lines, line)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return lines
}

func looksLikeIcon(src string) bool {
	lower := strings.ToLower(src)
	for _, hint := range iconHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
