package domain

import (
	"fmt"
	"strconv"
)

// Entity kind names. They double as the discriminator written into
// serialized top-level records.
const (
	KindCategory  = "category"
	KindProduct   = "product"
	KindAdmin     = "admin"
	KindCustomer  = "customer"
	KindOrder     = "order"
	KindFeedback  = "feedback"
	KindCoupon    = "coupon"
	KindWishlist  = "wishlist"
	KindInventory = "inventory"
)

// Entity is implemented by every persistable kind. Key identifies an
// entity within its kind for file-level update/delete operations.
type Entity interface {
	Kind() string
	Key() string
}

type Category struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Products []*Product `json:"products,omitempty"`
}

func (c *Category) Kind() string { return KindCategory }
func (c *Category) Key() string  { return strconv.Itoa(c.ID) }

func (c *Category) AddProduct(p *Product) {
	p.Category = c
	c.Products = append(c.Products, p)
}

// RemoveProduct filters by id. An absent id is a no-op.
func (c *Category) RemoveProduct(productID int) {
	kept := c.Products[:0]
	for _, p := range c.Products {
		if p.ID != productID {
			kept = append(kept, p)
		}
	}
	c.Products = kept
}

type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Category    *Category `json:"category,omitempty"`
}

func (p *Product) Kind() string { return KindProduct }
func (p *Product) Key() string  { return strconv.Itoa(p.ID) }

// UpdateStock applies a signed delta. A decrement larger than the current
// stock fails with ErrInsufficientStock and leaves the stock unchanged.
func (p *Product) UpdateStock(delta int) error {
	if delta < 0 && -delta > p.Stock {
		return fmt.Errorf("product %q (stock %d, delta %d): %w", p.Name, p.Stock, delta, ErrInsufficientStock)
	}
	p.Stock += delta
	return nil
}

type Admin struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"`
}

func (a *Admin) Kind() string { return KindAdmin }
func (a *Admin) Key() string  { return strconv.Itoa(a.ID) }

type Customer struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Orders []*Order `json:"orders,omitempty"`
}

func (c *Customer) Kind() string { return KindCustomer }
func (c *Customer) Key() string  { return strconv.Itoa(c.ID) }

func (c *Customer) PlaceOrder(o *Order) {
	c.Orders = append(c.Orders, o)
}

// OrderItem snapshots the line total at construction time. Later price
// changes on the product do not alter existing items.
type OrderItem struct {
	Product    *Product `json:"product"`
	Quantity   int      `json:"quantity"`
	TotalPrice float64  `json:"total_price"`
}

func NewOrderItem(product *Product, quantity int) (OrderItem, error) {
	if quantity <= 0 {
		return OrderItem{}, fmt.Errorf("order item for %q (quantity %d): %w", product.Name, quantity, ErrInvalidQuantity)
	}
	return OrderItem{
		Product:    product,
		Quantity:   quantity,
		TotalPrice: product.Price * float64(quantity),
	}, nil
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

type Order struct {
	ID       int         `json:"id"`
	Customer *Customer   `json:"customer"`
	Items    []OrderItem `json:"items"`
	Status   OrderStatus `json:"status"`
}

func NewOrder(id int, customer *Customer) *Order {
	return &Order{ID: id, Customer: customer, Status: StatusPending}
}

func (o *Order) Kind() string { return KindOrder }
func (o *Order) Key() string  { return strconv.Itoa(o.ID) }

// AddItem debits the product stock and appends the item. The two effects
// happen together or not at all: validation runs before any mutation.
func (o *Order) AddItem(product *Product, quantity int) error {
	item, err := NewOrderItem(product, quantity)
	if err != nil {
		return err
	}
	if product.Stock < quantity {
		return fmt.Errorf("product %q (stock %d, requested %d): %w", product.Name, product.Stock, quantity, ErrInsufficientStock)
	}
	if err := product.UpdateStock(-quantity); err != nil {
		return err
	}
	o.Items = append(o.Items, item)
	return nil
}

// CalculateTotal sums the item snapshots. An empty order totals zero.
func (o *Order) CalculateTotal() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.TotalPrice
	}
	return total
}

type Feedback struct {
	ID       int       `json:"id"`
	Customer *Customer `json:"customer"`
	Product  *Product  `json:"product"`
	Rating   int       `json:"rating,omitempty"`
	Comment  string    `json:"comment"`
}

// NewFeedback accepts rating 0 as "no rating"; anything else must fall
// in 1..5.
func NewFeedback(id int, customer *Customer, product *Product, rating int, comment string) (*Feedback, error) {
	if rating != 0 && (rating < 1 || rating > 5) {
		return nil, fmt.Errorf("rating %d is outside 1..5: %w", rating, ErrMalformedRecord)
	}
	return &Feedback{ID: id, Customer: customer, Product: product, Rating: rating, Comment: comment}, nil
}

func (f *Feedback) Kind() string { return KindFeedback }
func (f *Feedback) Key() string  { return strconv.Itoa(f.ID) }

type Coupon struct {
	ID                 int     `json:"id"`
	Code               string  `json:"code"`
	DiscountPercentage float64 `json:"discount_percentage"`
	Active             bool    `json:"active"`
}

func (c *Coupon) Kind() string { return KindCoupon }
func (c *Coupon) Key() string  { return strconv.Itoa(c.ID) }

// Apply returns the discounted order total. It has no side effect on the
// order or the coupon.
func (c *Coupon) Apply(order *Order) (float64, error) {
	if !c.Active {
		return 0, fmt.Errorf("coupon %q: %w", c.Code, ErrCouponInactive)
	}
	total := order.CalculateTotal()
	return total * (1 - c.DiscountPercentage/100), nil
}

type Wishlist struct {
	ID       int        `json:"id"`
	Customer *Customer  `json:"customer"`
	Products []*Product `json:"products"`
}

func (w *Wishlist) Kind() string { return KindWishlist }
func (w *Wishlist) Key() string  { return strconv.Itoa(w.ID) }

func (w *Wishlist) AddProduct(p *Product) {
	w.Products = append(w.Products, p)
}

func (w *Wishlist) RemoveProduct(productID int) {
	kept := w.Products[:0]
	for _, p := range w.Products {
		if p.ID != productID {
			kept = append(kept, p)
		}
	}
	w.Products = kept
}

// Inventory indexes products by id. It is a lookup structure; products
// still belong to their category.
type Inventory struct {
	Products map[int]*Product `json:"products"`
}

func NewInventory() *Inventory {
	return &Inventory{Products: make(map[int]*Product)}
}

func (inv *Inventory) Kind() string { return KindInventory }
func (inv *Inventory) Key() string  { return KindInventory }

func (inv *Inventory) AddProduct(p *Product) {
	inv.Products[p.ID] = p
}

func (inv *Inventory) GetProduct(productID int) *Product {
	return inv.Products[productID]
}

// UpdateProduct adjusts the stock of a known product. An unknown id
// returns false rather than an error.
func (inv *Inventory) UpdateProduct(productID, delta int) (bool, error) {
	p, ok := inv.Products[productID]
	if !ok {
		return false, nil
	}
	if err := p.UpdateStock(delta); err != nil {
		return true, err
	}
	return true, nil
}

// Catalog is the whole persisted store graph: categories with their
// products, customers with their order history.
type Catalog struct {
	Categories []*Category
	Customers  []*Customer
}
