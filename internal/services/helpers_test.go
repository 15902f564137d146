package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"catalogsync/internal/clock"
	"catalogsync/internal/credential"
	"catalogsync/internal/domain"
	"catalogsync/internal/platforms"
	"catalogsync/internal/ratelimit"
	"catalogsync/internal/repos"
	"catalogsync/internal/services"
)

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	clk     *clock.Fake
	store   repos.ProductStore
	limiter *ratelimit.Window
	creds   *credential.Store
	catalog *services.CatalogService
	sync    *services.SyncService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := repos.NewFileStore(afero.NewMemMapFs(), "/products.json")
	require.NoError(t, err)
	return newFixtureWith(t, store)
}

func newFixtureWith(t *testing.T, store repos.ProductStore) *fixture {
	t.Helper()
	clk := clock.NewFake(t0)
	limiter := ratelimit.NewWindow(3, time.Minute, clk)
	creds := credential.NewStore(time.Minute, clk)
	return &fixture{
		clk:     clk,
		store:   store,
		limiter: limiter,
		creds:   creds,
		catalog: services.NewCatalogService(store, clk),
		sync:    services.NewSyncService(store, platforms.NewSet(limiter, creds, 0), clk),
	}
}

func (f *fixture) product(t *testing.T, name string) domain.Product {
	t.Helper()
	p, err := f.catalog.Create(services.NewProduct{
		Name:        name,
		Price:       domain.NumericPrice(12.5),
		Description: name + " description",
		Category:    "Test",
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) run(t *testing.T, productID string, platform domain.Platform, token string) services.SyncResult {
	t.Helper()
	res, err := f.sync.Sync(context.Background(), productID, string(platform), platforms.Request{Token: token})
	require.NoError(t, err)
	return res
}
