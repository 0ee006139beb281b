package naver

import (
	"reflect"
	"testing"
)

func TestExtractImagesShapes(t *testing.T) {
	// WHAT: Each known field path yields the same logical photo list.
	// WHY: The platform serves photos under different keys per endpoint
	// version; the chain must probe them all.
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"images/url", `{"images":[{"url":"https://a.pstatic.net/1.jpg"}]}`,
			[]string{"https://a.pstatic.net/1.jpg"}},
		{"photos/originalUrl", `{"photos":[{"originalUrl":"https://a.pstatic.net/2.jpg"}]}`,
			[]string{"https://a.pstatic.net/2.jpg"}},
		{"photoList/imageUrl", `{"photoList":[{"imageUrl":"https://a.pstatic.net/3.jpg"}]}`,
			[]string{"https://a.pstatic.net/3.jpg"}},
		{"nested photoViewer", `{"data":{"photoViewer":{"photos":[{"originalUrl":"https://a.pstatic.net/4.jpg"}]}}}`,
			[]string{"https://a.pstatic.net/4.jpg"}},
		{"plain string thumbs", `{"thumUrls":["https://a.pstatic.net/5.jpg"]}`,
			[]string{"https://a.pstatic.net/5.jpg"}},
		{"array payload", `[{"images":[{"url":"https://a.pstatic.net/6.jpg"}]},{"images":[{"url":"https://a.pstatic.net/7.jpg"}]}]`,
			[]string{"https://a.pstatic.net/6.jpg", "https://a.pstatic.net/7.jpg"}},
		{"unknown shape", `{"somethingElse":true}`, nil},
		{"broken json", `{"images":[`, nil},
		{"empty", ``, nil},
		{"non-json", `<html></html>`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractImages([]byte(tt.raw))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractMenuShapes(t *testing.T) {
	// WHAT: Menu items normalize across field spellings: price as string
	// or number, several recommended flags, optional priority.
	raw := `{"menus":[
		{"name":"김치찌개","price":"8,000원","recommend":true},
		{"menuName":"된장찌개","menuPrice":9000,"isRecommended":"Y","displayOrder":2},
		{"name":"공기밥","price":null}
	]}`
	items := ExtractMenu([]byte(raw))
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}

	if items[0].Name != "김치찌개" || items[0].Price != "8,000원" || !items[0].Recommended {
		t.Errorf("item 0 = %+v", items[0])
	}
	if items[0].Priority != -1 {
		t.Errorf("missing priority should be -1, got %d", items[0].Priority)
	}
	if items[1].Price != "9000" {
		t.Errorf("numeric price = %q, want 9000", items[1].Price)
	}
	if !items[1].Recommended {
		t.Error("string Y flag should mark recommended")
	}
	if items[1].Priority != 2 {
		t.Errorf("priority = %d, want 2", items[1].Priority)
	}
	if items[2].Price != "" || items[2].Recommended {
		t.Errorf("null price item = %+v", items[2])
	}
}

func TestExtractMenuNamelessDropped(t *testing.T) {
	items := ExtractMenu([]byte(`{"menus":[{"price":"1,000원"}]}`))
	if len(items) != 0 {
		t.Errorf("nameless item survived: %v", items)
	}
}

func TestExtractCandidatesShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"result.place.list", `{"result":{"place":{"list":[{"id":"11","name":"식당","address":"서울"}]}}}`},
		{"place.list", `{"place":{"list":[{"id":"11","name":"식당","roadAddress":"서울"}]}}`},
		{"items", `{"items":[{"placeId":"11","title":"식당","addr":"서울"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCandidates([]byte(tt.raw))
			if len(got) != 1 {
				t.Fatalf("len = %d, want 1", len(got))
			}
			if got[0].ExternalID != "11" || got[0].Name != "식당" || got[0].Address != "서울" {
				t.Errorf("candidate = %+v", got[0])
			}
		})
	}
}

func TestExtractCandidatesRequiresIDAndName(t *testing.T) {
	got := ExtractCandidates([]byte(`{"items":[{"id":"1"},{"name":"x"},{"id":"2","name":"y"}]}`))
	if len(got) != 1 || got[0].ExternalID != "2" {
		t.Errorf("got %v, want only the complete entry", got)
	}
}

func TestSearchResultConversions(t *testing.T) {
	r := SearchResult{
		ID: "77", Name: "식당", Category: "한식",
		Address: "서울 강남구", RoadAddress: "강남대로 1",
		Phone: "02-123", X: "127.036", Y: "37.500",
		Thumbs: []string{"https://a.pstatic.net/t.jpg"},
	}

	c := r.Candidate()
	if c.ExternalID != "77" || c.Address != "서울 강남구" {
		t.Errorf("candidate = %+v", c)
	}

	d := r.Detail()
	if d.Lat != 37.5 || d.Lng != 127.036 {
		t.Errorf("coords = %v,%v", d.Lat, d.Lng)
	}
	if len(d.Menu) != 0 {
		t.Error("search-derived detail must carry an empty menu")
	}
}

func TestURLComposition(t *testing.T) {
	if got := PhotoPageURL("123"); got != "https://m.place.naver.com/restaurant/123/photo" {
		t.Errorf("photo url = %s", got)
	}
	if got := MenuPageURL("123"); got != "https://m.place.naver.com/restaurant/123/menu/list" {
		t.Errorf("menu url = %s", got)
	}
}

func TestHostPredicates(t *testing.T) {
	if !IsAPIHost("https://map.naver.com/p/api/search?q=x") {
		t.Error("map.naver.com should be an API host")
	}
	if IsAPIHost("https://evil.example.com/api") {
		t.Error("foreign host accepted")
	}
	if !IsAssetHost("https://ldb-phinf.pstatic.net/x.jpg") {
		t.Error("pstatic CDN should be an asset host")
	}
	if IsAssetHost("https://cdn.example.com/x.jpg") {
		t.Error("foreign CDN accepted")
	}
}
