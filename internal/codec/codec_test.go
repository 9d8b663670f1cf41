package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store_service/internal/domain"
)

// sampleGraph builds the reference web: Electronics > Laptop, John Doe
// with one pending order of two laptops.
func sampleGraph(t *testing.T) (*domain.Category, *domain.Product, *domain.Customer, *domain.Order) {
	t.Helper()
	category := &domain.Category{ID: 1, Name: "Electronics"}
	laptop := &domain.Product{ID: 1, Name: "Laptop", Description: "A powerful laptop", Price: 1000, Stock: 5}
	category.AddProduct(laptop)

	customer := &domain.Customer{ID: 1, Name: "John Doe", Email: "john@example.com"}
	order := domain.NewOrder(1, customer)
	require.NoError(t, order.AddItem(laptop, 2))
	customer.PlaceOrder(order)
	return category, laptop, customer, order
}

func assertLaptop(t *testing.T, p *domain.Product) {
	t.Helper()
	assert.Equal(t, 1, p.ID)
	assert.Equal(t, "Laptop", p.Name)
	assert.Equal(t, "A powerful laptop", p.Description)
	assert.Equal(t, 1000.0, p.Price)
	assert.Equal(t, 3, p.Stock)
}

func assertOrderOfTwoLaptops(t *testing.T, o *domain.Order) {
	t.Helper()
	assert.Equal(t, 1, o.ID)
	assert.Equal(t, domain.StatusPending, o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "Laptop", o.Items[0].Product.Name)
	assert.Equal(t, 2000.0, o.CalculateTotal())
}

// roundTrip pushes an entity through one of the two codecs and returns the
// fresh instance.
func roundTrip(t *testing.T, format string, e domain.Entity) domain.Entity {
	t.Helper()
	switch format {
	case "json":
		raw, err := EncodeJSON(e)
		require.NoError(t, err)
		decoded, err := DecodeJSON(raw)
		require.NoError(t, err)
		return decoded
	case "xml":
		data, err := EncodeXML(e)
		require.NoError(t, err)
		decoded, err := DecodeXML(data)
		require.NoError(t, err)
		return decoded
	default:
		t.Fatalf("unknown format %q", format)
		return nil
	}
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []string{"json", "xml"} {
		t.Run(format, func(t *testing.T) {
			category, laptop, customer, order := sampleGraph(t)

			t.Run("category", func(t *testing.T) {
				decoded := roundTrip(t, format, category).(*domain.Category)
				assert.NotSame(t, category, decoded)
				assert.Equal(t, category.ID, decoded.ID)
				assert.Equal(t, "Electronics", decoded.Name)
				require.Len(t, decoded.Products, 1)
				assertLaptop(t, decoded.Products[0])
				// The owned product points back at the fresh category.
				assert.Same(t, decoded, decoded.Products[0].Category)
			})

			t.Run("product embeds its category reference", func(t *testing.T) {
				decoded := roundTrip(t, format, laptop).(*domain.Product)
				assertLaptop(t, decoded)
				require.NotNil(t, decoded.Category)
				assert.Equal(t, "Electronics", decoded.Category.Name)
			})

			t.Run("customer with order history", func(t *testing.T) {
				decoded := roundTrip(t, format, customer).(*domain.Customer)
				assert.Equal(t, "John Doe", decoded.Name)
				assert.Equal(t, "john@example.com", decoded.Email)
				require.Len(t, decoded.Orders, 1)
				assertOrderOfTwoLaptops(t, decoded.Orders[0])
				// Nested orders resolve to the enclosing customer.
				assert.Same(t, decoded, decoded.Orders[0].Customer)
			})

			t.Run("order embeds its customer", func(t *testing.T) {
				decoded := roundTrip(t, format, order).(*domain.Order)
				assertOrderOfTwoLaptops(t, decoded)
				require.NotNil(t, decoded.Customer)
				assert.Equal(t, "John Doe", decoded.Customer.Name)
				// The embedded customer snapshot carries no history.
				assert.Empty(t, decoded.Customer.Orders)
			})

			t.Run("admin", func(t *testing.T) {
				admin := &domain.Admin{ID: 1, Username: "admin1", Email: "admin@example.com"}
				decoded := roundTrip(t, format, admin).(*domain.Admin)
				assert.Equal(t, *admin, *decoded)
			})

			t.Run("feedback", func(t *testing.T) {
				f, err := domain.NewFeedback(1, customer, laptop, 4, "Solid")
				require.NoError(t, err)
				decoded := roundTrip(t, format, f).(*domain.Feedback)
				assert.Equal(t, 4, decoded.Rating)
				assert.Equal(t, "Solid", decoded.Comment)
				assert.Equal(t, "John Doe", decoded.Customer.Name)
				assertLaptop(t, decoded.Product)
			})

			t.Run("feedback without rating", func(t *testing.T) {
				f, err := domain.NewFeedback(2, customer, laptop, 0, "No stars")
				require.NoError(t, err)
				decoded := roundTrip(t, format, f).(*domain.Feedback)
				assert.Equal(t, 0, decoded.Rating)
			})

			t.Run("coupon", func(t *testing.T) {
				coupon := &domain.Coupon{ID: 1, Code: "SAVE10", DiscountPercentage: 10, Active: true}
				decoded := roundTrip(t, format, coupon).(*domain.Coupon)
				assert.Equal(t, *coupon, *decoded)
			})

			t.Run("wishlist", func(t *testing.T) {
				w := &domain.Wishlist{ID: 1, Customer: customer}
				w.AddProduct(laptop)
				decoded := roundTrip(t, format, w).(*domain.Wishlist)
				assert.Equal(t, 1, decoded.ID)
				assert.Equal(t, "John Doe", decoded.Customer.Name)
				require.Len(t, decoded.Products, 1)
				assertLaptop(t, decoded.Products[0])
			})

			t.Run("inventory", func(t *testing.T) {
				inv := domain.NewInventory()
				inv.AddProduct(laptop)
				inv.AddProduct(&domain.Product{ID: 2, Name: "Phone", Price: 500, Stock: 10})
				decoded := roundTrip(t, format, inv).(*domain.Inventory)
				require.Len(t, decoded.Products, 2)
				assertLaptop(t, decoded.Products[1])
				assert.Equal(t, "Phone", decoded.Products[2].Name)
			})
		})
	}
}

func TestMarshalEntitiesPreservesMixedOrder(t *testing.T) {
	category, _, customer, _ := sampleGraph(t)
	coupon := &domain.Coupon{ID: 1, Code: "SAVE10", DiscountPercentage: 10, Active: true}
	entities := []domain.Entity{category, coupon, customer}

	t.Run("json", func(t *testing.T) {
		data, err := MarshalEntities(entities)
		require.NoError(t, err)
		loaded, err := UnmarshalEntities(data)
		require.NoError(t, err)
		require.Len(t, loaded, 3)
		assert.IsType(t, &domain.Category{}, loaded[0])
		assert.IsType(t, &domain.Coupon{}, loaded[1])
		assert.IsType(t, &domain.Customer{}, loaded[2])
	})

	t.Run("xml", func(t *testing.T) {
		data, err := MarshalDocument(entities)
		require.NoError(t, err)
		loaded, err := UnmarshalDocument(data)
		require.NoError(t, err)
		require.Len(t, loaded, 3)
		assert.IsType(t, &domain.Category{}, loaded[0])
		assert.IsType(t, &domain.Coupon{}, loaded[1])
		assert.IsType(t, &domain.Customer{}, loaded[2])
	})
}

func TestDecodeJSONErrors(t *testing.T) {
	t.Run("missing required key", func(t *testing.T) {
		raw := json.RawMessage(`{"kind":"product","id":1,"name":"Laptop","stock":3}`)
		_, err := DecodeJSON(raw)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("unknown kind", func(t *testing.T) {
		raw := json.RawMessage(`{"kind":"unicorn","id":1}`)
		_, err := DecodeJSON(raw)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("missing kind", func(t *testing.T) {
		raw := json.RawMessage(`{"id":1,"status":"Pending"}`)
		_, err := DecodeJSON(raw)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("type mismatch", func(t *testing.T) {
		raw := json.RawMessage(`{"kind":"product","id":1,"name":"Laptop","price":"cheap","stock":3}`)
		_, err := DecodeJSON(raw)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("top-level order without customer", func(t *testing.T) {
		raw := json.RawMessage(`{"kind":"order","id":1,"items":[],"status":"Pending"}`)
		_, err := DecodeJSON(raw)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("array that is not json", func(t *testing.T) {
		_, err := UnmarshalEntities([]byte("definitely not json"))
		assert.ErrorIs(t, err, domain.ErrParse)
	})
}

func TestDecodeXMLErrors(t *testing.T) {
	t.Run("non-numeric price", func(t *testing.T) {
		data := []byte(`<Product><Id>1</Id><Name>Laptop</Name><Price>cheap</Price><Stock>3</Stock></Product>`)
		_, err := DecodeXML(data)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("missing required element", func(t *testing.T) {
		data := []byte(`<Product><Id>1</Id><Name>Laptop</Name><Stock>3</Stock></Product>`)
		_, err := DecodeXML(data)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("unknown element", func(t *testing.T) {
		data := []byte(`<Root><Unicorn/></Root>`)
		_, err := UnmarshalDocument(data)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("wrong container element", func(t *testing.T) {
		data := []byte(`<Store><Coupon><Id>1</Id><Code>X</Code><Discount>5</Discount><Active>true</Active></Coupon></Store>`)
		_, err := UnmarshalDocument(data)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("not xml at all", func(t *testing.T) {
		_, err := UnmarshalDocument([]byte("definitely not xml"))
		assert.ErrorIs(t, err, domain.ErrParse)
	})
}
