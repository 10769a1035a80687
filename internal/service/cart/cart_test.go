package cartservice_test

import (
	databaseerrors "cartwidget/internal/database"
	"cartwidget/internal/database/memory"
	"cartwidget/internal/database/scoped"
	"cartwidget/internal/dom"
	"cartwidget/internal/models"
	serviceerrors "cartwidget/internal/service"
	cartservice "cartwidget/internal/service/cart"
	"cartwidget/internal/service/cart/mocks"
	"cartwidget/pkg/lib/logger/slogdiscard"

	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var widget = models.LineItem{Id: "p1", Name: "Widget", Price: 9.99, Image: "img.png", Quantity: 1}

type fixture struct {
	store   *cartservice.CartStore
	storage *scoped.Storage
	doc     *dom.MemDocument
	display *dom.MemElement
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	backend := memory.New(slogdiscard.NewDiscardLogger())
	storage := scoped.New(backend, "test")
	doc := dom.NewMemDocument()
	display := doc.Add(dom.DisplayID, nil)

	store := cartservice.New(slogdiscard.NewDiscardLogger(), storage, doc)
	require.NoError(t, store.Reload(context.Background()))

	return fixture{store: store, storage: storage, doc: doc, display: display}
}

func TestScenarios(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A: empty store
	assert.Empty(t, f.store.Items())
	assert.Equal(t, "0", f.display.Text())

	// B: first add
	require.NoError(t, f.store.AddItem(ctx, widget))
	assert.Equal(t, models.Cart{"p1": widget}, f.store.Items())
	assert.Equal(t, "1", f.display.Text())

	// C: same id again
	require.NoError(t, f.store.AddItem(ctx, widget))
	assert.Equal(t, 2, f.store.Items()["p1"].Quantity)
	assert.Equal(t, "2", f.display.Text())

	// D: second product
	gadget := models.LineItem{Id: "p2", Name: "Gadget", Price: 3, Image: "g.png", Quantity: 1}
	require.NoError(t, f.store.AddItem(ctx, gadget))
	items := f.store.Items()
	assert.Len(t, items, 2)
	assert.Equal(t, 2, items["p1"].Quantity)
	assert.Equal(t, 1, items["p2"].Quantity)
	assert.Equal(t, "3", f.display.Text())
}

func TestAddItem_CountPreservingPerID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := models.LineItem{Id: "p2", Name: "Other", Price: 1, Image: "o.png", Quantity: 1}
	require.NoError(t, f.store.AddItem(ctx, other))

	const n = 7
	for i := 0; i < n; i++ {
		require.NoError(t, f.store.AddItem(ctx, widget))
	}

	items := f.store.Items()
	assert.Equal(t, n, items["p1"].Quantity)
	assert.Equal(t, other, items["p2"])
	assert.Equal(t, n+1, f.store.TotalUnits())
}

func TestAddItem_ExistingEntryKeepsOriginalFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.AddItem(ctx, widget))

	repriced := widget
	repriced.Price = 19.99
	repriced.Name = "Widget v2"
	require.NoError(t, f.store.AddItem(ctx, repriced))

	got := f.store.Items()["p1"]
	assert.Equal(t, 9.99, got.Price)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, 2, got.Quantity)
}

func TestAddItem_PersistsEveryChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.AddItem(ctx, widget))
	require.NoError(t, f.store.AddItem(ctx, widget))

	raw, err := f.storage.GetItem(ctx, cartservice.StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"p1":{"id":"p1","name":"Widget","price":9.99,"image":"img.png","quantity":2}}`, raw)
}

func TestAddItem_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		item models.LineItem
	}{
		{name: "empty id", item: models.LineItem{Name: "x", Quantity: 1}},
		{name: "zero quantity", item: models.LineItem{Id: "p1", Quantity: 0}},
		{name: "negative quantity", item: models.LineItem{Id: "p1", Quantity: -2}},
		{name: "NaN price", item: models.LineItem{Id: "p1", Price: math.NaN(), Quantity: 1}},
		{name: "infinite price", item: models.LineItem{Id: "p1", Price: math.Inf(1), Quantity: 1}},
		{name: "negative infinite price", item: models.LineItem{Id: "p1", Price: math.Inf(-1), Quantity: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := new(mocks.Storage)
			doc := dom.NewMemDocument()
			display := doc.Add(dom.DisplayID, nil)
			store := cartservice.New(slogdiscard.NewDiscardLogger(), storage, doc)

			err := store.AddItem(context.Background(), tt.item)
			assert.ErrorIs(t, err, serviceerrors.ErrInvalidInput)
			assert.Empty(t, store.Items())
			assert.Empty(t, display.Text())

			storage.AssertExpectations(t)
		})
	}
}

func TestAddItem_PersistFailureKeepsMutation(t *testing.T) {
	storage := new(mocks.Storage)
	storage.On("SetItem", mock.Anything, cartservice.StorageKey, mock.Anything).
		Return(databaseerrors.ErrQuotaExceeded)

	doc := dom.NewMemDocument()
	display := doc.Add(dom.DisplayID, nil)
	store := cartservice.New(slogdiscard.NewDiscardLogger(), storage, doc)

	err := store.AddItem(context.Background(), widget)
	assert.ErrorIs(t, err, serviceerrors.ErrPersistenceWrite)
	assert.ErrorIs(t, err, databaseerrors.ErrQuotaExceeded)

	assert.Equal(t, 1, store.Items()["p1"].Quantity)
	assert.Equal(t, "1", display.Text())
	storage.AssertExpectations(t)
}

func TestAddItem_QuotaOnRealBackend(t *testing.T) {
	backend := memory.New(slogdiscard.NewDiscardLogger(), memory.WithQuota(120))
	doc := dom.NewMemDocument()
	display := doc.Add(dom.DisplayID, nil)
	store := cartservice.New(slogdiscard.NewDiscardLogger(), scoped.New(backend, "s"), doc)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, widget))

	big := models.LineItem{Id: "p2", Name: string(make([]byte, 200)), Quantity: 1}
	err := store.AddItem(ctx, big)
	assert.ErrorIs(t, err, databaseerrors.ErrQuotaExceeded)
	assert.Equal(t, "2", display.Text())

	// the persisted value is still the last one that fit
	reloaded := cartservice.New(slogdiscard.NewDiscardLogger(), scoped.New(backend, "s"), nil)
	require.NoError(t, reloaded.Reload(ctx))
	assert.Equal(t, models.Cart{"p1": widget}, reloaded.Items())
}

func TestAddItem_ContextCanceled(t *testing.T) {
	storage := new(mocks.Storage)
	store := cartservice.New(slogdiscard.NewDiscardLogger(), storage, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.AddItem(ctx, widget)
	assert.ErrorIs(t, err, serviceerrors.ErrContextCanceled)
	assert.Empty(t, store.Items())
	storage.AssertExpectations(t)
}

func TestRefreshDisplay(t *testing.T) {
	t.Run("empty cart shows zero", func(t *testing.T) {
		doc := dom.NewMemDocument()
		display := doc.Add(dom.DisplayID, nil)
		store := cartservice.New(slogdiscard.NewDiscardLogger(), new(mocks.Storage), doc)

		assert.Equal(t, 0, store.RefreshDisplay())
		assert.Equal(t, "0", display.Text())
	})

	t.Run("missing display element is a no-op", func(t *testing.T) {
		storage := new(mocks.Storage)
		storage.On("SetItem", mock.Anything, cartservice.StorageKey, mock.Anything).Return(nil)
		doc := dom.NewMemDocument()
		store := cartservice.New(slogdiscard.NewDiscardLogger(), storage, doc)

		require.NoError(t, store.AddItem(context.Background(), widget))
		assert.Equal(t, 1, store.RefreshDisplay())
	})

	t.Run("display appearing later gets the total", func(t *testing.T) {
		storage := new(mocks.Storage)
		storage.On("SetItem", mock.Anything, cartservice.StorageKey, mock.Anything).Return(nil)
		doc := dom.NewMemDocument()
		store := cartservice.New(slogdiscard.NewDiscardLogger(), storage, doc)
		require.NoError(t, store.AddItem(context.Background(), widget))

		display := doc.Add(dom.DisplayID, nil)
		store.RefreshDisplay()
		assert.Equal(t, "1", display.Text())
	})
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(s *mocks.Storage)
		wantCart models.Cart
		wantErr  bool
		errType  error
	}{
		{
			name: "absent value",
			setup: func(s *mocks.Storage) {
				s.On("GetItem", mock.Anything, cartservice.StorageKey).Return("", databaseerrors.ErrNotFound)
			},
			wantCart: models.Cart{},
		},
		{
			name: "valid value",
			setup: func(s *mocks.Storage) {
				s.On("GetItem", mock.Anything, cartservice.StorageKey).
					Return(`{"p1":{"id":"p1","name":"Widget","price":9.99,"image":"img.png","quantity":3}}`, nil)
			},
			wantCart: models.Cart{"p1": {Id: "p1", Name: "Widget", Price: 9.99, Image: "img.png", Quantity: 3}},
		},
		{
			name: "malformed value",
			setup: func(s *mocks.Storage) {
				s.On("GetItem", mock.Anything, cartservice.StorageKey).Return("{oops", nil)
			},
			wantCart: models.Cart{},
		},
		{
			name: "value with wrong types",
			setup: func(s *mocks.Storage) {
				s.On("GetItem", mock.Anything, cartservice.StorageKey).
					Return(`{"p1":{"id":"p1","name":"W","price":"free","image":"i","quantity":1}}`, nil)
			},
			wantCart: models.Cart{},
		},
		{
			name: "read failure",
			setup: func(s *mocks.Storage) {
				s.On("GetItem", mock.Anything, cartservice.StorageKey).Return("", errors.New("connection reset"))
			},
			wantErr: true,
		},
		{
			name: "storage deadline",
			setup: func(s *mocks.Storage) {
				s.On("GetItem", mock.Anything, cartservice.StorageKey).Return("", context.DeadlineExceeded)
			},
			wantErr: true,
			errType: serviceerrors.ErrDeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := new(mocks.Storage)
			tt.setup(storage)
			store := cartservice.New(slogdiscard.NewDiscardLogger(), storage, nil)

			got, err := store.Load(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errType != nil {
					assert.ErrorIs(t, err, tt.errType)
				}
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantCart, got)
			}
			storage.AssertExpectations(t)
		})
	}
}

func TestLoad_ContextDone(t *testing.T) {
	t.Run("canceled", func(t *testing.T) {
		storage := new(mocks.Storage)
		store := cartservice.New(slogdiscard.NewDiscardLogger(), storage, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, serviceerrors.ErrContextCanceled)
		storage.AssertExpectations(t)
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		storage := new(mocks.Storage)
		store := cartservice.New(slogdiscard.NewDiscardLogger(), storage, nil)
		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*10)
		defer cancel()
		time.Sleep(time.Millisecond * 15)

		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, serviceerrors.ErrDeadlineExceeded)
		storage.AssertExpectations(t)
	})
}

func TestPersistLoad_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.AddItem(ctx, widget))
	require.NoError(t, f.store.AddItem(ctx, widget))
	require.NoError(t, f.store.AddItem(ctx, models.LineItem{Id: "p2", Name: "Gadget", Price: 0.5, Image: "%20.png", Quantity: 1}))
	require.NoError(t, f.store.Persist(ctx))

	loaded, err := f.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.store.Items(), loaded)
}

func TestLoad_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.AddItem(ctx, widget))

	first, err := f.store.Load(ctx)
	require.NoError(t, err)
	second, err := f.store.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLoad_DoesNotTouchState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.AddItem(ctx, widget))

	require.NoError(t, f.storage.SetItem(ctx, cartservice.StorageKey, "{}"))
	_, err := f.store.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, f.store.TotalUnits())
	assert.Equal(t, "1", f.display.Text())
}

func TestReload(t *testing.T) {
	t.Run("picks up writes from another page", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.store.AddItem(ctx, widget))

		other := cartservice.New(slogdiscard.NewDiscardLogger(), f.storage, nil)
		require.NoError(t, other.Reload(ctx))
		require.NoError(t, other.AddItem(ctx, widget))
		require.NoError(t, other.AddItem(ctx, widget))

		require.NoError(t, f.store.Reload(ctx))
		assert.Equal(t, 3, f.store.Items()["p1"].Quantity)
		assert.Equal(t, "3", f.display.Text())
	})

	t.Run("malformed value resets to empty", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.store.AddItem(ctx, widget))
		require.NoError(t, f.storage.SetItem(ctx, cartservice.StorageKey, "not json"))

		require.NoError(t, f.store.Reload(ctx))
		assert.Empty(t, f.store.Items())
		assert.Equal(t, "0", f.display.Text())
	})

	t.Run("read failure keeps current cart", func(t *testing.T) {
		storage := new(mocks.Storage)
		storage.On("SetItem", mock.Anything, cartservice.StorageKey, mock.Anything).Return(nil)
		storage.On("GetItem", mock.Anything, cartservice.StorageKey).Return("", errors.New("unavailable"))
		doc := dom.NewMemDocument()
		display := doc.Add(dom.DisplayID, nil)
		store := cartservice.New(slogdiscard.NewDiscardLogger(), storage, doc)
		require.NoError(t, store.AddItem(context.Background(), widget))

		err := store.Reload(context.Background())
		assert.Error(t, err)
		assert.Equal(t, 1, store.TotalUnits())
		assert.Equal(t, "1", display.Text())
		storage.AssertExpectations(t)
	})
}

func TestItems_ReturnsCopy(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddItem(context.Background(), widget))

	items := f.store.Items()
	delete(items, "p1")

	assert.Equal(t, 1, f.store.TotalUnits())
}

func TestPersistReload_NonASCIIImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item := models.LineItem{Id: "p3", Name: "Crème", Price: 4.2, Image: "café.png", Quantity: 1}
	require.NoError(t, f.store.AddItem(ctx, item))
	before := f.store.Items()

	require.NoError(t, f.store.Reload(ctx))
	assert.Equal(t, before, f.store.Items())
	assert.Equal(t, "café.png", f.store.Items()["p3"].Image)
}

func TestAddItem_NonFinitePriceKeepsCartPersistable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.store.AddItem(ctx, models.LineItem{Id: "bad", Price: math.NaN(), Quantity: 1})
	require.ErrorIs(t, err, serviceerrors.ErrInvalidInput)

	require.NoError(t, f.store.AddItem(ctx, widget))
	loaded, err := f.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Cart{"p1": widget}, loaded)
}
