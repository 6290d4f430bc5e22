package takefood

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/metrics"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

type fakeSearcher struct {
	results []models.Listing
	err     error
	calls   int
}

func (f *fakeSearcher) Search(_ context.Context, country, city string) ([]models.Listing, error) {
	f.calls++
	return f.results, f.err
}

func newTestHandler(s Searcher) (*Handler, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	h := NewHandler(s, uierrors.NewErrorLogger(zap.NewNop()), metrics.NewCollector(reg), zap.NewNop())
	return h, reg
}

func runSearch(h *Handler, target string) searchVM {
	req := httptest.NewRequest("GET", target, nil)
	vm := searchVM{}
	h.search(req, &vm, req.URL.Query().Get("country"), req.URL.Query().Get("city"))
	return vm
}

func TestSearch_RequiresBothValues(t *testing.T) {
	s := &fakeSearcher{}
	h, _ := newTestHandler(s)

	for _, target := range []string{
		"/take-food?search=1",
		"/take-food?search=1&country=France",
		"/take-food?search=1&city=Paris",
	} {
		vm := runSearch(h, target)
		if vm.Error != msgSelectBoth {
			t.Errorf("%s: Error = %q, want %q", target, vm.Error, msgSelectBoth)
		}
	}
	if s.calls != 0 {
		t.Errorf("store called %d times, want 0", s.calls)
	}
}

func TestSearch_EmptyIsInfoNotError(t *testing.T) {
	h, _ := newTestHandler(&fakeSearcher{})
	vm := runSearch(h, "/take-food?search=1&country=France&city=Paris")

	if vm.Error != "" {
		t.Errorf("Error = %q, want none", vm.Error)
	}
	if vm.Info != msgNoneFound {
		t.Errorf("Info = %q, want %q", vm.Info, msgNoneFound)
	}
}

func TestSearch_KeepsStoreOrder(t *testing.T) {
	s := &fakeSearcher{results: []models.Listing{
		{FoodType: "Bread", Country: "France", City: "Paris"},
		{FoodType: "Soup", Country: "France", City: "Paris"},
		{FoodType: "Apples", Country: "France", City: "Paris"},
	}}
	h, reg := newTestHandler(s)
	vm := runSearch(h, "/take-food?search=1&country=France&city=Paris")

	if len(vm.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(vm.Results))
	}
	for i, want := range []string{"Bread", "Soup", "Apples"} {
		if vm.Results[i].FoodType != want {
			t.Errorf("result %d = %q, want %q", i, vm.Results[i].FoodType, want)
		}
	}
	n, err := testutil.GatherAndCount(reg, "takeandeat_searches_total")
	if err != nil || n != 1 {
		t.Errorf("search counter series = %d (err %v), want 1", n, err)
	}
}

func TestSearch_StoreFailure(t *testing.T) {
	h, _ := newTestHandler(&fakeSearcher{err: apperr.Transient("search listings", errors.New("timeout"))})
	vm := runSearch(h, "/take-food?search=1&country=France&city=Paris")

	if vm.Error != msgSearchFailed {
		t.Errorf("Error = %q, want %q", vm.Error, msgSearchFailed)
	}
}

func TestSearch_ClientGone(t *testing.T) {
	h, _ := newTestHandler(&fakeSearcher{err: apperr.Transient("search listings", context.Canceled)})

	req := httptest.NewRequest("GET", "/take-food?search=1&country=France&city=Paris", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	vm := searchVM{}
	if h.search(req.WithContext(ctx), &vm, "France", "Paris") {
		t.Error("search should report the client as gone")
	}
}
