package explorer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/auth"
	"github.com/rohits-web03/otadash/internal/models"
	"github.com/rohits-web03/otadash/internal/views"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

type users []models.User

func (u users) List(context.Context) ([]models.User, error) { return u, nil }

type products []models.Product

func (p products) List(context.Context) ([]models.Product, error) { return p, nil }

type countingProducts struct {
	products
	fetches int
}

func (c *countingProducts) List(ctx context.Context) ([]models.Product, error) {
	c.fetches++
	return c.products.List(ctx)
}

type devices []models.Device

func (d devices) List(context.Context) ([]models.Device, error) { return d, nil }

type sessions []models.OtaSession

func (s sessions) ListAll(context.Context, bool) ([]models.OtaSession, error) { return s, nil }

func sampleUsers() users {
	return users{
		{UID: "u1", Name: "Ann", Email: "ann@example.com", Role: models.RoleAdmin, LastLogin: ago(time.Hour)},
		{UID: "u2", Name: "Bob", Email: "bob@example.com", Role: models.RoleManager, LastLogin: ago(60 * 24 * time.Hour)},
		{UID: "u3", Name: "Cy", Email: "cy@example.com", Role: models.RoleUnauthorized},
	}
}

func sampleProducts(n int) products {
	out := make(products, n)
	for i := range out {
		out[i] = models.Product{
			ID:        fmt.Sprintf("p%d", i),
			Name:      fmt.Sprintf("Product %d", i),
			Category:  []string{"sensor", "gateway"}[i%2],
			Price:     10,
			Stock:     i * 5,
			CreatedAt: now.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

func newExplorer(n int) *Explorer {
	e := New(sampleUsers(), sampleProducts(n), devices{
		{Name: "dev-1", LastSeen: ago(time.Minute)},
		{Name: "dev-2", LastSeen: ago(10 * time.Minute)},
		{Name: "dev-3", LastSeen: ago(time.Hour)},
		{Name: "dev-4"},
	})
	e.now = func() time.Time { return now }
	return e
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("products")
	require.NoError(t, err)
	assert.Equal(t, KindProducts, k)

	_, err = ParseKind("orders")
	assert.True(t, apperr.Is(err, apperr.ErrorTypeNotFound))
}

func TestUserRecordStatus(t *testing.T) {
	recs := UserRecords(sampleUsers(), now)
	require.Len(t, recs, 3)
	assert.Equal(t, "active", recs[0].Status)
	assert.Equal(t, "inactive", recs[1].Status)
	assert.Equal(t, "inactive", recs[2].Status)
}

func TestDeviceRecordStatus(t *testing.T) {
	recs, err := newExplorer(0).Devices(context.Background())
	require.NoError(t, err)
	got := map[string]string{}
	for _, r := range recs {
		got[r.ID] = r.Status
	}
	assert.Equal(t, map[string]string{"dev-1": "online", "dev-2": "away", "dev-3": "offline", "dev-4": "offline"}, got)
}

func TestProductPageDefaults(t *testing.T) {
	out, err := newExplorer(6).Page(context.Background(), KindProducts, views.Query{})
	require.NoError(t, err)
	page := out.(views.Page[models.Product])

	assert.Equal(t, 6, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, PageSize)
	assert.Equal(t, "p5", page.Items[0].ID)
	assert.Equal(t, "createdAt", page.SortKey)
	assert.Equal(t, views.Desc, page.Order)
	assert.Equal(t, "Showing page 1 of 2", page.Label)
}

func TestUserPageNullLastLoginSortsLast(t *testing.T) {
	out, err := newExplorer(0).Page(context.Background(), KindUsers, views.Query{SortKey: "lastLogin", Order: views.Asc})
	require.NoError(t, err)
	page := out.(views.Page[UserRecord])
	require.Len(t, page.Items, 3)
	assert.Equal(t, []string{"u2", "u1", "u3"}, []string{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID})
}

func TestDigest(t *testing.T) {
	e := newExplorer(4)

	req, err := e.Digest(context.Background(), KindProducts)
	require.NoError(t, err)
	assert.Equal(t, "products", req.Collection)
	assert.Equal(t, 4, req.Count)
	assert.Contains(t, req.Facts, "category gateway: 2")
	assert.Contains(t, req.Facts, "total stock: 30")
	assert.Contains(t, req.Facts, "products with fewer than 10 in stock: 2")

	req, err = e.Digest(context.Background(), KindUsers)
	require.NoError(t, err)
	assert.Contains(t, req.Facts, "role admin: 1")
	assert.Contains(t, req.Facts, "status inactive: 2")

	_, err = e.Digest(context.Background(), Kind("orders"))
	assert.True(t, apperr.Is(err, apperr.ErrorTypeNotFound))
}

func TestCollectionsKeepFilterPerKind(t *testing.T) {
	ctx := context.Background()
	c := NewCollections(newExplorer(6))

	out, err := c.Dispatch(ctx, views.Action{Type: views.ActionRefresh})
	require.NoError(t, err)
	assert.Equal(t, KindUsers, out.(CollectionSnapshot).Collection)

	_, err = c.Dispatch(ctx, views.Action{Type: views.ActionFilter, Value: "ann"})
	require.NoError(t, err)

	out, err = c.Dispatch(ctx, views.Action{Type: views.ActionCollection, Value: "products"})
	require.NoError(t, err)
	snap := out.(CollectionSnapshot)
	assert.Equal(t, KindProducts, snap.Collection)
	prodSnap := snap.Table.(views.Snapshot[models.Product])
	assert.True(t, prodSnap.Loaded)
	assert.Equal(t, 6, prodSnap.Total)

	out, err = c.Dispatch(ctx, views.Action{Type: views.ActionCollection, Value: "users"})
	require.NoError(t, err)
	userSnap := out.(CollectionSnapshot).Table.(views.Snapshot[UserRecord])
	assert.Equal(t, "ann", userSnap.Filter)
	assert.Equal(t, 1, userSnap.Total)

	_, err = c.Dispatch(ctx, views.Action{Type: views.ActionCollection, Value: "orders"})
	assert.Error(t, err)
}

func TestCollectionSwitchRefetchesAndResetsPage(t *testing.T) {
	ctx := context.Background()
	prods := &countingProducts{products: sampleProducts(12)}
	c := NewCollections(New(sampleUsers(), prods, devices{}))

	_, err := c.Dispatch(ctx, views.Action{Type: views.ActionRefresh})
	require.NoError(t, err)

	_, err = c.Dispatch(ctx, views.Action{Type: views.ActionCollection, Value: "products"})
	require.NoError(t, err)
	out, err := c.Dispatch(ctx, views.Action{Type: views.ActionNext})
	require.NoError(t, err)
	assert.Equal(t, 2, out.(CollectionSnapshot).Table.(views.Snapshot[models.Product]).Page.Page)

	_, err = c.Dispatch(ctx, views.Action{Type: views.ActionCollection, Value: "users"})
	require.NoError(t, err)
	out, err = c.Dispatch(ctx, views.Action{Type: views.ActionCollection, Value: "products"})
	require.NoError(t, err)

	snap := out.(CollectionSnapshot).Table.(views.Snapshot[models.Product])
	assert.Equal(t, 1, snap.Page.Page)
	assert.Equal(t, 12, snap.Total)
	assert.Equal(t, 2, prods.fetches)
}

func TestSessionListFiltersHiddenColumns(t *testing.T) {
	rows := SessionRows([]models.OtaSession{
		{ID: "s1", DeviceName: "dev-1", Status: models.StatusFailed, SourcePath: "OTA/ver1.0.0/", StartedAt: now,
			Events: []models.OtaEvent{{Type: models.EventDownload}}},
		{ID: "s2", DeviceName: "dev-2", Status: models.StatusCompleted, SourcePath: "OTA/ver2.0.0/", StartedAt: now.Add(time.Hour)},
	})
	assert.Nil(t, rows[0].Events)
	assert.Equal(t, "destructive", rows[0].Indicator.Badge)

	page, err := views.Apply(SessionListSpec, rows, views.Query{Filter: "ver1.0"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "s1", page.Items[0].ID)
	assert.Len(t, page.Columns, 6)

	page, err = views.Apply(SessionListSpec, rows, views.Query{})
	require.NoError(t, err)
	assert.Equal(t, "s2", page.Items[0].ID)
}

func TestDeviceListFiltersByNameOnly(t *testing.T) {
	seen := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	list := []models.Device{{Name: "alpha", LastSeen: &seen}, {Name: "beta-2024"}}
	page, err := views.Apply(DeviceListSpec, list, views.Query{Filter: "2024"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "beta-2024", page.Items[0].Name)
}

func TestBoardMarksViewerRow(t *testing.T) {
	factory := BoardFactory(Sources{
		Users:    sampleUsers(),
		Products: sampleProducts(1),
		Devices:  devices{},
		Sessions: sessions{},
	})
	board := factory()
	assert.Equal(t, []string{"devices", "explorer", "sessions", "users"}, board.Names())

	ctx := auth.WithSession(context.Background(), auth.NewSession("sid", "u1", now.Add(time.Hour)))
	out, err := board.Render(ctx, ViewUsers)
	require.NoError(t, err)
	snap := out.(views.Snapshot[UserRow])
	require.Len(t, snap.Items, 3)
	for _, r := range snap.Items {
		assert.Equal(t, r.UID != "u1", r.RoleEditable, r.UID)
	}

	assert.NotSame(t, board, factory())
}

func TestViewAction(t *testing.T) {
	a, ok := ViewAction(ViewUsers)
	require.True(t, ok)
	assert.Equal(t, auth.ManageUsers, a)
	_, ok = ViewAction("nope")
	assert.False(t, ok)
}
