// Package codec converts the domain graph to and from its two wire
// formats. Encode/decode pairs live here, not on the entities, so adding
// a format never touches the model.
//
// Referenced entities are always embedded as full sub-records. Loading
// never resolves references by position or index. The wire tree stays
// acyclic by trimming back-references: a product nested under its category
// carries no category record, an order nested under its customer carries
// no customer record, and an embedded customer carries no order history.
// Decoding restores those links from the enclosing record.
package codec

import (
	"encoding/json"
	"fmt"
	"sort"

	"store_service/internal/domain"
)

// Required fields are pointer-typed so a missing key is distinguishable
// from a zero value and fails with domain.ErrMalformedRecord.

type categoryJSON struct {
	Kind     string         `json:"kind,omitempty"`
	ID       *int           `json:"id"`
	Name     *string        `json:"name"`
	Products []*productJSON `json:"products,omitempty"`
}

type productJSON struct {
	Kind        string        `json:"kind,omitempty"`
	ID          *int          `json:"id"`
	Name        *string       `json:"name"`
	Description string        `json:"description,omitempty"`
	Price       *float64      `json:"price"`
	Stock       *int          `json:"stock"`
	Category    *categoryJSON `json:"category,omitempty"`
}

type adminJSON struct {
	Kind         string  `json:"kind,omitempty"`
	ID           *int    `json:"id"`
	Username     *string `json:"username"`
	Email        string  `json:"email,omitempty"`
	PasswordHash string  `json:"password_hash,omitempty"`
}

type customerJSON struct {
	Kind   string       `json:"kind,omitempty"`
	ID     *int         `json:"id"`
	Name   *string      `json:"name"`
	Email  *string      `json:"email"`
	Orders []*orderJSON `json:"orders,omitempty"`
}

type orderItemJSON struct {
	Product    *productJSON `json:"product"`
	Quantity   *int         `json:"quantity"`
	TotalPrice *float64     `json:"total_price,omitempty"`
}

type orderJSON struct {
	Kind       string          `json:"kind,omitempty"`
	ID         *int            `json:"id"`
	Customer   *customerJSON   `json:"customer,omitempty"`
	Items      []orderItemJSON `json:"items"`
	Status     *string         `json:"status"`
	TotalPrice float64         `json:"total_price"`
}

type feedbackJSON struct {
	Kind     string        `json:"kind,omitempty"`
	ID       *int          `json:"id"`
	Customer *customerJSON `json:"customer"`
	Product  *productJSON  `json:"product"`
	Rating   int           `json:"rating,omitempty"`
	Comment  *string       `json:"comment"`
}

type couponJSON struct {
	Kind               string   `json:"kind,omitempty"`
	ID                 *int     `json:"id"`
	Code               *string  `json:"code"`
	DiscountPercentage *float64 `json:"discount_percentage"`
	Active             *bool    `json:"active"`
}

type wishlistJSON struct {
	Kind     string         `json:"kind,omitempty"`
	ID       *int           `json:"id"`
	Customer *customerJSON  `json:"customer"`
	Products []*productJSON `json:"products"`
}

type inventoryJSON struct {
	Kind     string         `json:"kind,omitempty"`
	Products []*productJSON `json:"products"`
}

// EncodeJSON renders a single top-level entity, kind discriminator
// included.
func EncodeJSON(e domain.Entity) (json.RawMessage, error) {
	rec, err := jsonRecord(e)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("could not encode %s record: %w", e.Kind(), err)
	}
	return data, nil
}

// DecodeJSON is the inverse of EncodeJSON. The record must carry a known
// "kind" discriminator.
func DecodeJSON(raw json.RawMessage) (domain.Entity, error) {
	var envelope struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	decode := func(rec any) error {
		if err := json.Unmarshal(raw, rec); err != nil {
			return fmt.Errorf("%w: %s record: %v", domain.ErrMalformedRecord, envelope.Kind, err)
		}
		return nil
	}

	switch envelope.Kind {
	case domain.KindCategory:
		var rec categoryJSON
		if err := decode(&rec); err != nil {
			return nil, err
		}
		return decodeCategoryJSON(&rec)
	case domain.KindProduct:
		var rec productJSON
		if err := decode(&rec); err != nil {
			return nil, err
		}
		return decodeProductJSON(&rec, nil)
	case domain.KindAdmin:
		var rec adminJSON
		if err := decode(&rec); err != nil {
			return nil, err
		}
		return decodeAdminJSON(&rec)
	case domain.KindCustomer:
		var rec customerJSON
		if err := decode(&rec); err != nil {
			return nil, err
		}
		return decodeCustomerJSON(&rec)
	case domain.KindOrder:
		var rec orderJSON
		if err := decode(&rec); err != nil {
			return nil, err
		}
		return decodeOrderJSON(&rec, nil)
	case domain.KindFeedback:
		var rec feedbackJSON
		if err := decode(&rec); err != nil {
			return nil, err
		}
		return decodeFeedbackJSON(&rec)
	case domain.KindCoupon:
		var rec couponJSON
		if err := decode(&rec); err != nil {
			return nil, err
		}
		return decodeCouponJSON(&rec)
	case domain.KindWishlist:
		var rec wishlistJSON
		if err := decode(&rec); err != nil {
			return nil, err
		}
		return decodeWishlistJSON(&rec)
	case domain.KindInventory:
		var rec inventoryJSON
		if err := decode(&rec); err != nil {
			return nil, err
		}
		return decodeInventoryJSON(&rec)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrMalformedRecord, envelope.Kind)
	}
}

// MarshalEntities renders the full ordered sequence as one JSON array.
func MarshalEntities(entities []domain.Entity) ([]byte, error) {
	records := make([]json.RawMessage, 0, len(entities))
	for _, e := range entities {
		raw, err := EncodeJSON(e)
		if err != nil {
			return nil, err
		}
		records = append(records, raw)
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("could not marshal entity sequence: %w", err)
	}
	return data, nil
}

// UnmarshalEntities parses a JSON array of tagged records, preserving
// order.
func UnmarshalEntities(data []byte) ([]domain.Entity, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	entities := make([]domain.Entity, 0, len(records))
	for i, raw := range records {
		e, err := DecodeJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func jsonRecord(e domain.Entity) (any, error) {
	switch v := e.(type) {
	case *domain.Category:
		rec := encodeCategoryJSON(v, true)
		rec.Kind = domain.KindCategory
		return rec, nil
	case *domain.Product:
		rec := encodeProductJSON(v, true)
		rec.Kind = domain.KindProduct
		return rec, nil
	case *domain.Admin:
		rec := encodeAdminJSON(v)
		rec.Kind = domain.KindAdmin
		return rec, nil
	case *domain.Customer:
		rec := encodeCustomerJSON(v, true)
		rec.Kind = domain.KindCustomer
		return rec, nil
	case *domain.Order:
		rec := encodeOrderJSON(v, true)
		rec.Kind = domain.KindOrder
		return rec, nil
	case *domain.Feedback:
		rec := encodeFeedbackJSON(v)
		rec.Kind = domain.KindFeedback
		return rec, nil
	case *domain.Coupon:
		rec := encodeCouponJSON(v)
		rec.Kind = domain.KindCoupon
		return rec, nil
	case *domain.Wishlist:
		rec := encodeWishlistJSON(v)
		rec.Kind = domain.KindWishlist
		return rec, nil
	case *domain.Inventory:
		rec := encodeInventoryJSON(v)
		rec.Kind = domain.KindInventory
		return rec, nil
	default:
		return nil, fmt.Errorf("%w: unsupported entity type %T", domain.ErrMalformedRecord, e)
	}
}

// withProducts controls whether the category's product list is written.
// References to a category from a product never include it.
func encodeCategoryJSON(c *domain.Category, withProducts bool) *categoryJSON {
	rec := &categoryJSON{ID: intPtr(c.ID), Name: strPtr(c.Name)}
	if withProducts {
		for _, p := range c.Products {
			prec := encodeProductJSON(p, false)
			prec.Category = nil // owned by the enclosing category
			rec.Products = append(rec.Products, prec)
		}
	}
	return rec
}

func decodeCategoryJSON(rec *categoryJSON) (*domain.Category, error) {
	if rec.ID == nil || rec.Name == nil {
		return nil, fmt.Errorf("%w: category record missing id or name", domain.ErrMalformedRecord)
	}
	c := &domain.Category{ID: *rec.ID, Name: *rec.Name}
	for i, prec := range rec.Products {
		p, err := decodeProductJSON(prec, c)
		if err != nil {
			return nil, fmt.Errorf("category %d, product %d: %w", c.ID, i, err)
		}
		c.Products = append(c.Products, p)
	}
	return c, nil
}

func encodeProductJSON(p *domain.Product, withCategory bool) *productJSON {
	rec := &productJSON{
		ID:          intPtr(p.ID),
		Name:        strPtr(p.Name),
		Description: p.Description,
		Price:       floatPtr(p.Price),
		Stock:       intPtr(p.Stock),
	}
	if withCategory && p.Category != nil {
		rec.Category = encodeCategoryJSON(p.Category, false)
	}
	return rec
}

// owner, when non-nil, is the category the product record was nested
// under; the record then carries no category of its own.
func decodeProductJSON(rec *productJSON, owner *domain.Category) (*domain.Product, error) {
	if rec.ID == nil || rec.Name == nil || rec.Price == nil || rec.Stock == nil {
		return nil, fmt.Errorf("%w: product record missing id, name, price or stock", domain.ErrMalformedRecord)
	}
	if *rec.Price < 0 {
		return nil, fmt.Errorf("%w: product %d has negative price", domain.ErrMalformedRecord, *rec.ID)
	}
	if *rec.Stock < 0 {
		return nil, fmt.Errorf("%w: product %d has negative stock", domain.ErrMalformedRecord, *rec.ID)
	}
	p := &domain.Product{
		ID:          *rec.ID,
		Name:        *rec.Name,
		Description: rec.Description,
		Price:       *rec.Price,
		Stock:       *rec.Stock,
		Category:    owner,
	}
	if owner == nil && rec.Category != nil {
		c, err := decodeCategoryJSON(rec.Category)
		if err != nil {
			return nil, err
		}
		p.Category = c
	}
	return p, nil
}

func encodeAdminJSON(a *domain.Admin) *adminJSON {
	return &adminJSON{
		ID:           intPtr(a.ID),
		Username:     strPtr(a.Username),
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
	}
}

func decodeAdminJSON(rec *adminJSON) (*domain.Admin, error) {
	if rec.ID == nil || rec.Username == nil {
		return nil, fmt.Errorf("%w: admin record missing id or username", domain.ErrMalformedRecord)
	}
	return &domain.Admin{ID: *rec.ID, Username: *rec.Username, Email: rec.Email, PasswordHash: rec.PasswordHash}, nil
}

func encodeCustomerJSON(c *domain.Customer, withOrders bool) *customerJSON {
	rec := &customerJSON{ID: intPtr(c.ID), Name: strPtr(c.Name), Email: strPtr(c.Email)}
	if withOrders {
		for _, o := range c.Orders {
			orec := encodeOrderJSON(o, false)
			rec.Orders = append(rec.Orders, orec)
		}
	}
	return rec
}

func decodeCustomerJSON(rec *customerJSON) (*domain.Customer, error) {
	if rec.ID == nil || rec.Name == nil || rec.Email == nil {
		return nil, fmt.Errorf("%w: customer record missing id, name or email", domain.ErrMalformedRecord)
	}
	c := &domain.Customer{ID: *rec.ID, Name: *rec.Name, Email: *rec.Email}
	for i, orec := range rec.Orders {
		o, err := decodeOrderJSON(orec, c)
		if err != nil {
			return nil, fmt.Errorf("customer %d, order %d: %w", c.ID, i, err)
		}
		c.Orders = append(c.Orders, o)
	}
	return c, nil
}

func encodeOrderJSON(o *domain.Order, withCustomer bool) *orderJSON {
	rec := &orderJSON{
		ID:         intPtr(o.ID),
		Items:      make([]orderItemJSON, 0, len(o.Items)),
		Status:     strPtr(string(o.Status)),
		TotalPrice: o.CalculateTotal(),
	}
	if withCustomer && o.Customer != nil {
		rec.Customer = encodeCustomerJSON(o.Customer, false)
	}
	for _, item := range o.Items {
		rec.Items = append(rec.Items, orderItemJSON{
			Product:    encodeProductJSON(item.Product, true),
			Quantity:   intPtr(item.Quantity),
			TotalPrice: floatPtr(item.TotalPrice),
		})
	}
	return rec
}

// owner, when non-nil, is the customer the order record was nested under.
// A top-level order record must embed its customer.
func decodeOrderJSON(rec *orderJSON, owner *domain.Customer) (*domain.Order, error) {
	if rec.ID == nil || rec.Status == nil {
		return nil, fmt.Errorf("%w: order record missing id or status", domain.ErrMalformedRecord)
	}
	customer := owner
	if customer == nil {
		if rec.Customer == nil {
			return nil, fmt.Errorf("%w: order %d record missing customer", domain.ErrMalformedRecord, *rec.ID)
		}
		c, err := decodeCustomerJSON(rec.Customer)
		if err != nil {
			return nil, err
		}
		customer = c
	}
	o := &domain.Order{ID: *rec.ID, Customer: customer, Status: domain.OrderStatus(*rec.Status)}
	for i, irec := range rec.Items {
		item, err := decodeOrderItemJSON(&irec)
		if err != nil {
			return nil, fmt.Errorf("order %d, item %d: %w", o.ID, i, err)
		}
		o.Items = append(o.Items, item)
	}
	return o, nil
}

func decodeOrderItemJSON(rec *orderItemJSON) (domain.OrderItem, error) {
	if rec.Product == nil || rec.Quantity == nil {
		return domain.OrderItem{}, fmt.Errorf("%w: order item record missing product or quantity", domain.ErrMalformedRecord)
	}
	if *rec.Quantity <= 0 {
		return domain.OrderItem{}, fmt.Errorf("%w: order item quantity %d", domain.ErrInvalidQuantity, *rec.Quantity)
	}
	p, err := decodeProductJSON(rec.Product, nil)
	if err != nil {
		return domain.OrderItem{}, err
	}
	item := domain.OrderItem{Product: p, Quantity: *rec.Quantity}
	if rec.TotalPrice != nil {
		item.TotalPrice = *rec.TotalPrice
	} else {
		item.TotalPrice = p.Price * float64(*rec.Quantity)
	}
	return item, nil
}

func encodeFeedbackJSON(f *domain.Feedback) *feedbackJSON {
	return &feedbackJSON{
		ID:       intPtr(f.ID),
		Customer: encodeCustomerJSON(f.Customer, false),
		Product:  encodeProductJSON(f.Product, true),
		Rating:   f.Rating,
		Comment:  strPtr(f.Comment),
	}
}

func decodeFeedbackJSON(rec *feedbackJSON) (*domain.Feedback, error) {
	if rec.ID == nil || rec.Customer == nil || rec.Product == nil || rec.Comment == nil {
		return nil, fmt.Errorf("%w: feedback record missing id, customer, product or comment", domain.ErrMalformedRecord)
	}
	customer, err := decodeCustomerJSON(rec.Customer)
	if err != nil {
		return nil, err
	}
	product, err := decodeProductJSON(rec.Product, nil)
	if err != nil {
		return nil, err
	}
	return domain.NewFeedback(*rec.ID, customer, product, rec.Rating, *rec.Comment)
}

func encodeCouponJSON(c *domain.Coupon) *couponJSON {
	return &couponJSON{
		ID:                 intPtr(c.ID),
		Code:               strPtr(c.Code),
		DiscountPercentage: floatPtr(c.DiscountPercentage),
		Active:             boolPtr(c.Active),
	}
}

func decodeCouponJSON(rec *couponJSON) (*domain.Coupon, error) {
	if rec.ID == nil || rec.Code == nil || rec.DiscountPercentage == nil || rec.Active == nil {
		return nil, fmt.Errorf("%w: coupon record missing id, code, discount_percentage or active", domain.ErrMalformedRecord)
	}
	return &domain.Coupon{ID: *rec.ID, Code: *rec.Code, DiscountPercentage: *rec.DiscountPercentage, Active: *rec.Active}, nil
}

func encodeWishlistJSON(w *domain.Wishlist) *wishlistJSON {
	rec := &wishlistJSON{
		ID:       intPtr(w.ID),
		Customer: encodeCustomerJSON(w.Customer, false),
		Products: make([]*productJSON, 0, len(w.Products)),
	}
	for _, p := range w.Products {
		rec.Products = append(rec.Products, encodeProductJSON(p, true))
	}
	return rec
}

func decodeWishlistJSON(rec *wishlistJSON) (*domain.Wishlist, error) {
	if rec.ID == nil || rec.Customer == nil {
		return nil, fmt.Errorf("%w: wishlist record missing id or customer", domain.ErrMalformedRecord)
	}
	customer, err := decodeCustomerJSON(rec.Customer)
	if err != nil {
		return nil, err
	}
	w := &domain.Wishlist{ID: *rec.ID, Customer: customer}
	for i, prec := range rec.Products {
		p, err := decodeProductJSON(prec, nil)
		if err != nil {
			return nil, fmt.Errorf("wishlist %d, product %d: %w", w.ID, i, err)
		}
		w.Products = append(w.Products, p)
	}
	return w, nil
}

func encodeInventoryJSON(inv *domain.Inventory) *inventoryJSON {
	rec := &inventoryJSON{Products: make([]*productJSON, 0, len(inv.Products))}
	for _, p := range sortedProducts(inv) {
		rec.Products = append(rec.Products, encodeProductJSON(p, true))
	}
	return rec
}

func decodeInventoryJSON(rec *inventoryJSON) (*domain.Inventory, error) {
	inv := domain.NewInventory()
	for i, prec := range rec.Products {
		p, err := decodeProductJSON(prec, nil)
		if err != nil {
			return nil, fmt.Errorf("inventory product %d: %w", i, err)
		}
		inv.AddProduct(p)
	}
	return inv, nil
}

// sortedProducts fixes the serialization order of the inventory map.
func sortedProducts(inv *domain.Inventory) []*domain.Product {
	products := make([]*domain.Product, 0, len(inv.Products))
	for _, p := range inv.Products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
