package route_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	entity "endpoint.GO/model/entity"
	"endpoint.GO/model/dbtest"
	routeRepo "endpoint.GO/model/repository/route"
)

func record(key, path, group string, active bool) *entity.EndpointRoute {
	rec := &entity.EndpointRoute{
		Key:           key,
		Name:          key,
		Route:         path,
		RouteType:     "http",
		AuthType:      "public",
		RequestMethod: "GET",
		Options:       datatypes.JSON(`{"handler":{"module_path":"m","symbol_name":"S","method_name":"M"}}`),
		Routing:       datatypes.JSON(`{"type":"http","auth":"public","methods":["GET"],"routes":["` + path + `"],"csrf":false}`),
		EndpointHash:  "h",
		Active:        active,
	}
	if group != "" {
		rec.RouteGroup = &group
	}
	return rec
}

func newRepo(t *testing.T) *routeRepo.RouteRepository {
	t.Helper()
	db, _ := dbtest.Open(t)
	return routeRepo.NewRouteRepository(db)
}

func TestCurrentVersion_IncreasesOnEveryWrite(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	v0, err := repo.CurrentVersion(ctx)
	if err != nil {
		t.Fatal(err)
	}

	rec := record("k", "/x", "", true)
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatal(err)
	}
	v1, _ := repo.CurrentVersion(ctx)
	if v1 <= v0 {
		t.Fatalf("insert: version %d -> %d", v0, v1)
	}

	rec.Name = "renamed"
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}
	v2, _ := repo.CurrentVersion(ctx)
	if v2 <= v1 {
		t.Fatalf("update: version %d -> %d", v1, v2)
	}

	if _, err := repo.Delete(ctx, rec.ID); err != nil {
		t.Fatal(err)
	}
	v3, _ := repo.CurrentVersion(ctx)
	if v3 <= v2 {
		t.Fatalf("delete: version %d -> %d", v2, v3)
	}
}

func TestFindActive(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	for _, rec := range []*entity.EndpointRoute{
		record("b", "/b", "g", true),
		record("a", "/a", "g", true),
		record("c", "/c", "g", false),
		record("d", "/d", "other", true),
	} {
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	all, err := repo.FindActive(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("FindActive(\"\") = %d records, want 3", len(all))
	}

	grouped, _ := repo.FindActive(ctx, "g")
	var routes []string
	for _, r := range grouped {
		routes = append(routes, r.Route)
	}
	if diff := cmp.Diff([]string{"/a", "/b"}, routes); diff != "" {
		t.Errorf("group routes (-want +got):\n%s", diff)
	}

	if _, err := repo.FindByKey(ctx, "c", true); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("inactive FindByKey = %v", err)
	}
	if rec, err := repo.FindByKey(ctx, "c", false); err != nil || rec.Route != "/c" {
		t.Errorf("FindByKey(activeOnly=false) = %v, %v", rec, err)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	if err := repo.Create(ctx, record("k", "/x", "", true)); err != nil {
		t.Fatal(err)
	}
	err := repo.Create(ctx, record("k2", "/x", "", true))
	if !routeRepo.IsDuplicate(err) {
		t.Errorf("duplicate route: %v", err)
	}
	err = repo.Create(ctx, record("k", "/y", "", true))
	if !routeRepo.IsDuplicate(err) {
		t.Errorf("duplicate key: %v", err)
	}
	exists, err := repo.Exists(ctx, "route", "/x", 0)
	if err != nil || !exists {
		t.Errorf("Exists(route,/x) = %v, %v", exists, err)
	}
}

func TestMarkSynced(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	a := record("a", "/a", "", true)
	b := record("b", "/b", "", false)
	repo.Create(ctx, a)
	repo.Create(ctx, b)

	ids, _ := repo.FindUnsyncedIDs(ctx)
	if diff := cmp.Diff([]uint{a.ID}, ids); diff != "" {
		t.Errorf("unsynced (-want +got):\n%s", diff)
	}
	n, err := repo.MarkSynced(ctx, []uint{a.ID, b.ID, 999})
	if err != nil || n != 1 {
		t.Errorf("MarkSynced = %d, %v", n, err)
	}
	got, _ := repo.FindByID(ctx, a.ID)
	if !got.RegistrySync {
		t.Error("a not marked synced")
	}
	got, _ = repo.FindByID(ctx, b.ID)
	if got.RegistrySync {
		t.Error("inactive b marked synced")
	}
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	repo.Create(ctx, record("a", "/a", "", true))
	repo.Create(ctx, record("b", "/b", "", false))
	total, active, err := repo.Counts(ctx)
	if err != nil || total != 2 || active != 1 {
		t.Errorf("Counts = %d, %d, %v", total, active, err)
	}
}

func TestFindByConsumer(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	rec := record("app:1", "/app", "", true)
	rec.ConsumerModel, rec.ConsumerRef = "app", 1
	repo.Create(ctx, rec)
	repo.Create(ctx, record("x", "/x", "", true))
	got, err := repo.FindByConsumer(ctx, "app", 1)
	if err != nil || len(got) != 1 || got[0].Key != "app:1" {
		t.Errorf("FindByConsumer = %+v, %v", got, err)
	}
}
