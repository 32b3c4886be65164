package order

import (
	"context"
	"testing"

	"github.com/example/ec-checkout/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository() (*DocumentRepository, *mocks.MockDocumentStore) {
	docs := mocks.NewMockDocumentStore()
	return NewDocumentRepository(docs), docs
}

func TestDocumentRepository_CreateGetSave(t *testing.T) {
	repo, docs := newTestRepository()
	ctx := context.Background()

	o := newTestOrder()
	o.LineItems = []*LineItem{NewLineItem("var-1", 1, d("22.25"), "USD")}
	require.NoError(t, repo.Create(ctx, o))
	assert.Equal(t, []string{"orders/R000000001"}, docs.CreateCalls)

	loaded, err := repo.Get(ctx, o.Number)
	require.NoError(t, err)
	assert.Equal(t, StateCart, loaded.State)
	require.Len(t, loaded.LineItems, 1)
	assert.True(t, d("22.25").Equal(loaded.LineItems[0].Price))

	loaded.Email = "buyer@example.com"
	require.NoError(t, repo.Save(ctx, loaded))

	again, err := repo.Get(ctx, o.Number)
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", again.Email)
}

func TestDocumentRepository_CreateDuplicate(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestOrder()))
	assert.ErrorIs(t, repo.Create(ctx, newTestOrder()), ErrDuplicateNumber)
}

func TestDocumentRepository_NotFound(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, "R999999999")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "R999999999"), ErrNotFound)
}

func TestDocumentRepository_LoadedOrderHasNoRateMemo(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	o := newTestOrder()
	o.CacheRates([]ShippingRate{{MethodID: "ups", Cost: d("5")}})
	require.NoError(t, repo.Create(ctx, o))

	loaded, err := repo.Get(ctx, o.Number)
	require.NoError(t, err)
	_, cached := loaded.CachedRates()
	assert.False(t, cached)
}

func TestListByState(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	a := New("R000000002", "USD", fixedNow)
	b := New("R000000001", "USD", fixedNow)
	b.State = StateComplete
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	complete, err := ListByState(ctx, repo, StateComplete)
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, "R000000001", complete[0].Number)
}
