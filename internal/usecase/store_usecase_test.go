package usecase

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store_service/internal/domain"
	"store_service/internal/repository"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestStore() StoreUseCase {
	return NewStoreUseCase(domain.NewIDAllocator(), testLogger())
}

func TestStoreScenario(t *testing.T) {
	store := newTestStore()

	category, err := store.AddCategory("Electronics")
	require.NoError(t, err)
	assert.Equal(t, 1, category.ID)

	laptop, err := store.AddProduct(category.ID, "Laptop", "A powerful laptop", 1000.0, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, laptop.ID)

	customer, err := store.RegisterCustomer("John Doe", "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, customer.ID)

	order, err := store.CreateOrder(customer.ID)
	require.NoError(t, err)

	t.Run("add item debits stock", func(t *testing.T) {
		require.NoError(t, store.AddItemToOrder(order.ID, laptop.ID, 2))
		assert.Equal(t, 3, laptop.Stock)
		assert.Equal(t, 2000.0, order.CalculateTotal())
	})

	t.Run("insufficient stock leaves the order unchanged", func(t *testing.T) {
		err := store.AddItemToOrder(order.ID, laptop.ID, 10)
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
		assert.Equal(t, 3, laptop.Stock)
		assert.Len(t, order.Items, 1)
		assert.Equal(t, 2000.0, order.CalculateTotal())
	})

	t.Run("inactive coupon is rejected", func(t *testing.T) {
		coupon, err := store.IssueCoupon(10)
		require.NoError(t, err)
		assert.Len(t, coupon.Code, 8)

		coupon.Active = false
		_, err = store.ApplyCoupon(coupon.Code, order.ID)
		require.ErrorIs(t, err, domain.ErrCouponInactive)
		assert.Equal(t, 2000.0, order.CalculateTotal())
	})

	t.Run("active coupon discounts", func(t *testing.T) {
		coupon, err := store.IssueCoupon(25)
		require.NoError(t, err)
		discounted, err := store.ApplyCoupon(coupon.Code, order.ID)
		require.NoError(t, err)
		assert.InDelta(t, 1500.0, discounted, 1e-9)
	})

	t.Run("order history", func(t *testing.T) {
		orders, err := store.ListOrders(customer.ID)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Same(t, order, orders[0])
	})

	t.Run("wishlist and feedback", func(t *testing.T) {
		wishlist, err := store.CreateWishlist(customer.ID)
		require.NoError(t, err)
		require.NoError(t, store.AddToWishlist(wishlist.ID, laptop.ID))
		assert.Len(t, wishlist.Products, 1)

		feedback, err := store.LeaveFeedback(customer.ID, laptop.ID, 5, "Fast and quiet")
		require.NoError(t, err)
		assert.Equal(t, 5, feedback.Rating)

		_, err = store.LeaveFeedback(customer.ID, laptop.ID, 9, "Off the scale")
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})
}

func TestStoreValidation(t *testing.T) {
	store := newTestStore()

	_, err := store.AddCategory("  ")
	assert.Error(t, err)

	category, err := store.AddCategory("Electronics")
	require.NoError(t, err)

	_, err = store.AddProduct(category.ID, "", "", 10, 1)
	assert.Error(t, err)
	_, err = store.AddProduct(category.ID, "Laptop", "", -1, 1)
	assert.Error(t, err)
	_, err = store.AddProduct(category.ID, "Laptop", "", 10, -1)
	assert.Error(t, err)
	_, err = store.AddProduct(99, "Laptop", "", 10, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.RegisterCustomer("John", "not-an-email")
	assert.Error(t, err)
	_, err = store.CreateOrder(99)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.IssueCoupon(0)
	assert.Error(t, err)
	_, err = store.IssueCoupon(101)
	assert.Error(t, err)
	_, err = store.ApplyCoupon("NOPE", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveIsNoOpWhenAbsent(t *testing.T) {
	store := newTestStore()
	category, err := store.AddCategory("Electronics")
	require.NoError(t, err)
	_, err = store.AddProduct(category.ID, "Laptop", "", 1000, 5)
	require.NoError(t, err)

	store.RemoveCategory(99)
	assert.Len(t, store.Catalog().Categories, 1)

	require.NoError(t, store.RemoveProduct(category.ID, 99))
	assert.Len(t, category.Products, 1)

	require.NoError(t, store.RemoveProduct(category.ID, 1))
	assert.Empty(t, category.Products)
	assert.Nil(t, store.Inventory().GetProduct(1))

	store.RemoveCategory(category.ID)
	assert.Empty(t, store.Catalog().Categories)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, format := range []string{"json", "xml"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "store_data."+format)
			var fileStore domain.Store
			if format == "json" {
				fileStore = repository.NewJSONStore(path, testLogger())
			} else {
				fileStore = repository.NewXMLStore(path, testLogger())
			}

			store := newTestStore()
			category, err := store.AddCategory("Electronics")
			require.NoError(t, err)
			laptop, err := store.AddProduct(category.ID, "Laptop", "A powerful laptop", 1000.0, 5)
			require.NoError(t, err)
			customer, err := store.RegisterCustomer("John Doe", "john@example.com")
			require.NoError(t, err)
			order, err := store.CreateOrder(customer.ID)
			require.NoError(t, err)
			require.NoError(t, store.AddItemToOrder(order.ID, laptop.ID, 2))

			require.NoError(t, store.SaveTo(fileStore))

			reloaded := newTestStore()
			reloaded.LoadFrom(fileStore)

			catalog := reloaded.Catalog()
			require.Len(t, catalog.Categories, 1)
			require.Len(t, catalog.Customers, 1)
			require.Len(t, catalog.Customers[0].Orders, 1)
			loadedOrder := catalog.Customers[0].Orders[0]
			require.Len(t, loadedOrder.Items, 1)
			assert.Equal(t, "Laptop", loadedOrder.Items[0].Product.Name)
			assert.Equal(t, 2, loadedOrder.Items[0].Quantity)
			assert.Equal(t, 2000.0, loadedOrder.CalculateTotal())

			// Loaded ids are reserved: new entities continue above them.
			next, err := reloaded.AddCategory("Books")
			require.NoError(t, err)
			assert.Equal(t, 2, next.ID)

			// The rebuilt index serves new orders against loaded stock.
			loadedCustomer := catalog.Customers[0]
			second, err := reloaded.CreateOrder(loadedCustomer.ID)
			require.NoError(t, err)
			assert.Equal(t, 2, second.ID)
			require.NoError(t, reloaded.AddItemToOrder(second.ID, 1, 3))
			err = reloaded.AddItemToOrder(second.ID, 1, 1)
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		})
	}
}

func TestLoadFromMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")
	store := newTestStore()
	store.LoadFrom(repository.NewJSONStore(path, testLogger()))
	assert.Empty(t, store.Catalog().Categories)
	assert.Empty(t, store.Catalog().Customers)
}

func TestAdminUseCase(t *testing.T) {
	admins := NewAdminUseCase(domain.NewIDAllocator(), testLogger())

	admin, err := admins.RegisterAdmin("admin1", "admin@example.com", "changeme123")
	require.NoError(t, err)
	assert.Equal(t, 1, admin.ID)
	assert.NotEqual(t, "changeme123", admin.PasswordHash)

	t.Run("authenticates with the right password", func(t *testing.T) {
		ok, err := admins.Authenticate("admin1", "changeme123")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		ok, err := admins.Authenticate("admin1", "wrong")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown admin", func(t *testing.T) {
		_, err := admins.Authenticate("ghost", "changeme123")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("rejects duplicates and weak passwords", func(t *testing.T) {
		_, err := admins.RegisterAdmin("admin1", "", "changeme123")
		assert.Error(t, err)
		_, err = admins.RegisterAdmin("admin2", "", "short")
		assert.Error(t, err)
		_, err = admins.RegisterAdmin("", "", "changeme123")
		assert.Error(t, err)
	})
}
