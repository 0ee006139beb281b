package store

import (
	"context"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/plateful/placepipe/dbopen"
	"github.com/plateful/placepipe/place"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	return New(db)
}

func TestVenueRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	v := &place.Venue{
		Name:       "스타벅스 역삼역점",
		Address:    "서울 강남구 역삼동 123",
		ExternalID: "11111",
		Images:     []string{"https://a.pstatic.net/1.jpg"},
		Category:   "카페",
		Lat:        37.5,
		Lng:        127.03,
	}
	if err := s.InsertVenue(ctx, v); err != nil {
		t.Fatal(err)
	}
	if v.ID == "" {
		t.Fatal("insert did not assign an ID")
	}

	got, err := s.GetVenue(ctx, v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("venue not found after insert")
	}
	if got.Name != v.Name || got.ExternalID != v.ExternalID || got.Lat != v.Lat {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Images) != 1 || got.Images[0] != v.Images[0] {
		t.Errorf("images = %v", got.Images)
	}
}

func TestGetVenueAbsent(t *testing.T) {
	s := testStore(t)
	got, err := s.GetVenue(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got %+v for missing id", got)
	}
}

func TestVenueFilters(t *testing.T) {
	// WHAT: The three incremental candidate sets partition correctly:
	// unresolved venues, resolved-but-imageless, resolved-but-menuless.
	ctx := context.Background()
	s := testStore(t)

	unresolved := &place.Venue{Name: "미등록집", CreatedAt: 1}
	imageless := &place.Venue{Name: "사진없는집", ExternalID: "100", CreatedAt: 2}
	complete := &place.Venue{
		Name: "다있는집", ExternalID: "200",
		Images: []string{"https://a.pstatic.net/x.jpg"}, CreatedAt: 3,
	}
	for _, v := range []*place.Venue{unresolved, imageless, complete} {
		if err := s.InsertVenue(ctx, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.ReplaceMenu(ctx, complete.ID, []place.MenuItem{{Name: "김치찌개"}}); err != nil {
		t.Fatal(err)
	}

	missing, err := s.VenuesMissingExternalID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(missing) != 1 || missing[0].ID != unresolved.ID {
		t.Errorf("missing-id set = %v", ids(missing))
	}

	noImages, err := s.VenuesMissingImages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(noImages) != 1 || noImages[0].ID != imageless.ID {
		t.Errorf("missing-images set = %v", ids(noImages))
	}

	noMenu, err := s.VenuesMissingMenu(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(noMenu) != 1 || noMenu[0].ID != imageless.ID {
		t.Errorf("missing-menu set = %v", ids(noMenu))
	}

	resolved, err := s.VenuesWithExternalID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(resolved) != 2 {
		t.Errorf("resolved set = %v", ids(resolved))
	}
}

func TestUpdateVenueExternalIDNoOverwrite(t *testing.T) {
	// WHAT: A stored identifier is stable. Plain updates only fill empty
	// slots; force overwrites.
	ctx := context.Background()
	s := testStore(t)

	v := &place.Venue{Name: "식당"}
	if err := s.InsertVenue(ctx, v); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateVenueExternalID(ctx, v.ID, "first", false); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateVenueExternalID(ctx, v.ID, "second", false); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetVenue(ctx, v.ID)
	if got.ExternalID != "first" {
		t.Errorf("external id overwritten without force: %q", got.ExternalID)
	}

	if err := s.UpdateVenueExternalID(ctx, v.ID, "third", true); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetVenue(ctx, v.ID)
	if got.ExternalID != "third" {
		t.Errorf("force update did not apply: %q", got.ExternalID)
	}
}

func TestUpdateVenueLocationGuards(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	v := &place.Venue{Name: "식당", Lat: 37.5, Lng: 127.0, Category: "한식"}
	if err := s.InsertVenue(ctx, v); err != nil {
		t.Fatal(err)
	}

	// Zero coordinates leave stored values alone; category updates apply.
	if err := s.UpdateVenueLocation(ctx, v.ID, 0, 0, "일식"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetVenue(ctx, v.ID)
	if got.Lat != 37.5 || got.Lng != 127.0 {
		t.Errorf("coords clobbered: %v,%v", got.Lat, got.Lng)
	}
	if got.Category != "일식" {
		t.Errorf("category = %q", got.Category)
	}

	if err := s.UpdateVenueLocation(ctx, v.ID, 35.1, 129.0, ""); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetVenue(ctx, v.ID)
	if got.Lat != 35.1 || got.Lng != 129.0 || got.Category != "일식" {
		t.Errorf("after coord update: %+v", got)
	}
}

func TestReplaceMenuLeavesNoStaleRows(t *testing.T) {
	// WHAT: Replace is a full swap; rows from the previous run never
	// survive alongside the new set.
	ctx := context.Background()
	s := testStore(t)

	v := &place.Venue{Name: "식당"}
	if err := s.InsertVenue(ctx, v); err != nil {
		t.Fatal(err)
	}

	first := []place.MenuItem{
		{Name: "김치찌개", Price: "8,000원", Priority: 0},
		{Name: "된장찌개", Price: "9,000원", Priority: 1},
	}
	if err := s.ReplaceMenu(ctx, v.ID, first); err != nil {
		t.Fatal(err)
	}

	second := []place.MenuItem{
		{Name: "비빔밥", Price: "10,000원", Recommended: true, Priority: 0},
	}
	if err := s.ReplaceMenu(ctx, v.ID, second); err != nil {
		t.Fatal(err)
	}

	items, err := s.MenuForVenue(ctx, v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1 (stale rows survived)", len(items))
	}
	if items[0].Name != "비빔밥" || !items[0].Recommended {
		t.Errorf("item = %+v", items[0])
	}
}

func TestMenuForVenueOrder(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	v := &place.Venue{Name: "식당"}
	if err := s.InsertVenue(ctx, v); err != nil {
		t.Fatal(err)
	}
	in := []place.MenuItem{
		{Name: "둘째", Priority: 1},
		{Name: "첫째", Priority: 0},
		{Name: "셋째", Priority: 2},
	}
	if err := s.ReplaceMenu(ctx, v.ID, in); err != nil {
		t.Fatal(err)
	}

	items, err := s.MenuForVenue(ctx, v.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"첫째", "둘째", "셋째"}
	for i, name := range want {
		if items[i].Name != name {
			t.Errorf("pos %d = %q, want %q", i, items[i].Name, name)
		}
	}
}

func TestMenuCascadeOnVenueDelete(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	v := &place.Venue{Name: "식당"}
	if err := s.InsertVenue(ctx, v); err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceMenu(ctx, v.ID, []place.MenuItem{{Name: "김치찌개"}}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, v.ID); err != nil {
		t.Fatal(err)
	}
	items, err := s.MenuForVenue(ctx, v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("menu rows survived venue delete: %v", items)
	}
}

func ids(vs []*place.Venue) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.ID+"/"+v.Name)
	}
	return out
}
