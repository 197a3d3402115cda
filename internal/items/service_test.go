package items

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cloudcatalog/itemsvc/internal/apperr"
	"github.com/cloudcatalog/itemsvc/internal/docstore"
	"github.com/cloudcatalog/itemsvc/internal/model"
	"github.com/cloudcatalog/itemsvc/internal/obs"
)

func setupService(t *testing.T) (*Service, *docstore.Memory) {
	t.Helper()
	obs.InitLogger()
	store := docstore.NewMemory()
	return NewService(store), store
}

func ptr[T any](v T) *T { return &v }

func mustCreate(t *testing.T, svc *Service, name string, price float64) string {
	t.Helper()
	id, err := svc.Create(context.Background(), model.ItemCreate{Name: name, Price: &price})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestCreateAndGet(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	id, err := svc.Create(ctx, model.ItemCreate{
		Name:        "Widget",
		Description: ptr("a small widget"),
		Price:       ptr(9.99),
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	want := model.Item{ID: id, Name: "Widget", Description: "a small widget", Price: 9.99}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("item mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	cases := []model.ItemCreate{
		{Price: ptr(1.0)},
		{Name: "   ", Price: ptr(1.0)},
		{Name: "Widget"},
		{Name: "Widget", Price: ptr(math.NaN())},
		{Name: "Widget", Price: ptr(math.Inf(1))},
	}
	for i, c := range cases {
		if _, err := svc.Create(ctx, c); apperr.KindOf(err) != apperr.InvalidPayload {
			t.Fatalf("case %d: expected InvalidPayload, got %v", i, err)
		}
	}
}

func TestGetMissing(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.Get(context.Background(), "missing-key")
	if apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, "Widget", 9.99)
	if err := svc.Update(ctx, id, model.ItemUpdate{Description: ptr("now described")}); err != nil {
		t.Fatal(err)
	}
	got, _ := svc.Get(ctx, id)
	want := model.Item{ID: id, Name: "Widget", Description: "now described", Price: 9.99}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("item mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateMissing(t *testing.T) {
	svc, _ := setupService(t)
	err := svc.Update(context.Background(), "missing-key", model.ItemUpdate{Price: ptr(1.0)})
	if apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUpdateEmptyPayloadChecksExistence(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, "Widget", 9.99)
	if err := svc.Update(ctx, id, model.ItemUpdate{}); err != nil {
		t.Fatalf("empty update on existing item: %v", err)
	}
	if err := svc.Update(ctx, "missing-key", model.ItemUpdate{}); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected NotFound for empty update on missing item")
	}
}

func TestDelete(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, "Widget", 9.99)
	if err := svc.Delete(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, id); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected NotFound after delete")
	}
	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("delete is idempotent: %v", err)
	}
}

func TestListPagination(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	for _, name := range []string{"delta", "alpha", "charlie", "bravo"} {
		mustCreate(t, svc, name, 1.0)
	}
	page, err := svc.List(ctx, 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].Name != "alpha" || page[1].Name != "bravo" {
		t.Fatalf("unexpected first page: %+v", page)
	}
	page, err = svc.List(ctx, 2, "bravo")
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].Name != "charlie" || page[1].Name != "delta" {
		t.Fatalf("unexpected second page: %+v", page)
	}
}

func TestListLimitClamped(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		mustCreate(t, svc, string(rune('a'+i)), 1.0)
	}
	page, err := svc.List(ctx, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != defaultListLimit {
		t.Fatalf("expected default limit %d, got %d", defaultListLimit, len(page))
	}
	page, err = svc.List(ctx, 10_000, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 15 {
		t.Fatalf("expected all 15 items, got %d", len(page))
	}
}

func TestUpdatePriceScenario(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, "Widget", 9.99)

	newPrice, err := svc.UpdatePrice(ctx, id, 12.5)
	if err != nil {
		t.Fatal(err)
	}
	if newPrice != 12.5 {
		t.Fatalf("expected 12.5, got %v", newPrice)
	}
	got, _ := svc.Get(ctx, id)
	want := model.Item{ID: id, Name: "Widget", Price: 12.5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("only price must change (-want +got):\n%s", diff)
	}
}

func TestUpdatePriceIdempotent(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, "Widget", 9.99)
	if _, err := svc.UpdatePrice(ctx, id, 12.5); err != nil {
		t.Fatal(err)
	}
	first, _ := svc.Get(ctx, id)
	if _, err := svc.UpdatePrice(ctx, id, 12.5); err != nil {
		t.Fatal(err)
	}
	second, _ := svc.Get(ctx, id)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("applying the same update twice must not change state:\n%s", diff)
	}
}

func TestUpdatePriceMissingKey(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	_, err := svc.UpdatePrice(ctx, "missing-key", 5.0)
	if apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
	docs, _ := store.List(ctx, "items", docstore.Query{})
	if len(docs) != 0 {
		t.Fatalf("no document must be created, got %d", len(docs))
	}
}

func TestUpdatePriceValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, "Widget", 9.99)
	for _, p := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1} {
		if _, err := svc.UpdatePrice(ctx, id, p); apperr.KindOf(err) != apperr.InvalidPayload {
			t.Fatalf("price %v: expected InvalidPayload, got %v", p, err)
		}
	}
	got, _ := svc.Get(ctx, id)
	if got.Price != 9.99 {
		t.Fatalf("rejected updates must not write, got price %v", got.Price)
	}
}
