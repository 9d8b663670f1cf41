package codec

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"store_service/internal/domain"
)

// Every field is a child element, never an attribute. Sequences sit under
// wrapper elements (Items, Products, Orders). Required fields are
// pointer-typed, same contract as the JSON records.

type categoryXML struct {
	XMLName  xml.Name      `xml:"Category"`
	ID       *int          `xml:"Id"`
	Name     *string       `xml:"Name"`
	Products []*productXML `xml:"Products>Product"`
}

type productXML struct {
	XMLName     xml.Name     `xml:"Product"`
	ID          *int         `xml:"Id"`
	Name        *string      `xml:"Name"`
	Description string       `xml:"Description,omitempty"`
	Price       *float64     `xml:"Price"`
	Stock       *int         `xml:"Stock"`
	Category    *categoryXML `xml:"Category,omitempty"`
}

type adminXML struct {
	XMLName      xml.Name `xml:"Admin"`
	ID           *int     `xml:"Id"`
	Username     *string  `xml:"Username"`
	Email        string   `xml:"Email,omitempty"`
	PasswordHash string   `xml:"PasswordHash,omitempty"`
}

type customerXML struct {
	XMLName xml.Name    `xml:"Customer"`
	ID      *int        `xml:"Id"`
	Name    *string     `xml:"Name"`
	Email   *string     `xml:"Email"`
	Orders  []*orderXML `xml:"Orders>Order"`
}

type orderItemXML struct {
	XMLName    xml.Name    `xml:"OrderItem"`
	Product    *productXML `xml:"Product"`
	Quantity   *int        `xml:"Quantity"`
	TotalPrice *float64    `xml:"TotalPrice,omitempty"`
}

type orderXML struct {
	XMLName    xml.Name       `xml:"Order"`
	ID         *int           `xml:"Id"`
	Customer   *customerXML   `xml:"Customer,omitempty"`
	Items      []orderItemXML `xml:"Items>OrderItem"`
	TotalPrice float64        `xml:"TotalPrice"`
	Status     *string        `xml:"Status"`
}

type feedbackXML struct {
	XMLName  xml.Name     `xml:"Feedback"`
	ID       *int         `xml:"Id"`
	Customer *customerXML `xml:"Customer"`
	Product  *productXML  `xml:"Product"`
	Rating   *int         `xml:"Rating,omitempty"`
	Comment  *string      `xml:"Comment"`
}

type couponXML struct {
	XMLName  xml.Name `xml:"Coupon"`
	ID       *int     `xml:"Id"`
	Code     *string  `xml:"Code"`
	Discount *float64 `xml:"Discount"`
	Active   *bool    `xml:"Active"`
}

type wishlistXML struct {
	XMLName  xml.Name      `xml:"Wishlist"`
	ID       *int          `xml:"Id"`
	Customer *customerXML  `xml:"Customer"`
	Products []*productXML `xml:"Products>Product"`
}

type inventoryXML struct {
	XMLName  xml.Name      `xml:"Inventory"`
	Products []*productXML `xml:"Products>Product"`
}

// EncodeXML renders a single entity as one element tagged with its kind.
func EncodeXML(e domain.Entity) ([]byte, error) {
	rec, err := xmlRecord(e)
	if err != nil {
		return nil, err
	}
	data, err := xml.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not encode %s element: %w", e.Kind(), err)
	}
	return data, nil
}

// DecodeXML is the inverse of EncodeXML: it decodes the first element in
// data into the entity its tag names.
func DecodeXML(data []byte) (domain.Entity, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: no element found", domain.ErrParse)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return decodeXMLElement(decoder, start)
		}
	}
}

// MarshalDocument wraps the ordered entity sequence in a Root container.
func MarshalDocument(entities []domain.Entity) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<Root>\n")
	for _, e := range entities {
		rec, err := xmlRecord(e)
		if err != nil {
			return nil, err
		}
		data, err := xml.MarshalIndent(rec, "  ", "  ")
		if err != nil {
			return nil, fmt.Errorf("could not encode %s element: %w", e.Kind(), err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	buf.WriteString("</Root>\n")
	return buf.Bytes(), nil
}

// UnmarshalDocument parses a Root container back into the ordered entity
// sequence. Mixed kinds are distinguished by element tag.
func UnmarshalDocument(data []byte) ([]domain.Entity, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var entities []domain.Entity
	inRoot := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !inRoot {
			if start.Name.Local != "Root" {
				return nil, fmt.Errorf("%w: unexpected root element %q", domain.ErrMalformedRecord, start.Name.Local)
			}
			inRoot = true
			continue
		}
		e, err := decodeXMLElement(decoder, start)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", len(entities), err)
		}
		entities = append(entities, e)
	}
	if !inRoot {
		return nil, fmt.Errorf("%w: missing Root element", domain.ErrParse)
	}
	return entities, nil
}

func xmlRecord(e domain.Entity) (any, error) {
	switch v := e.(type) {
	case *domain.Category:
		return encodeCategoryXML(v, true), nil
	case *domain.Product:
		return encodeProductXML(v, true), nil
	case *domain.Admin:
		return encodeAdminXML(v), nil
	case *domain.Customer:
		return encodeCustomerXML(v, true), nil
	case *domain.Order:
		return encodeOrderXML(v, true), nil
	case *domain.Feedback:
		return encodeFeedbackXML(v), nil
	case *domain.Coupon:
		return encodeCouponXML(v), nil
	case *domain.Wishlist:
		return encodeWishlistXML(v), nil
	case *domain.Inventory:
		return encodeInventoryXML(v), nil
	default:
		return nil, fmt.Errorf("%w: unsupported entity type %T", domain.ErrMalformedRecord, e)
	}
}

func decodeXMLElement(decoder *xml.Decoder, start xml.StartElement) (domain.Entity, error) {
	malformed := func(err error) error {
		return fmt.Errorf("%w: %s element: %v", domain.ErrMalformedRecord, start.Name.Local, err)
	}
	switch start.Name.Local {
	case "Category":
		var rec categoryXML
		if err := decoder.DecodeElement(&rec, &start); err != nil {
			return nil, malformed(err)
		}
		return decodeCategoryXML(&rec)
	case "Product":
		var rec productXML
		if err := decoder.DecodeElement(&rec, &start); err != nil {
			return nil, malformed(err)
		}
		return decodeProductXML(&rec, nil)
	case "Admin":
		var rec adminXML
		if err := decoder.DecodeElement(&rec, &start); err != nil {
			return nil, malformed(err)
		}
		return decodeAdminXML(&rec)
	case "Customer":
		var rec customerXML
		if err := decoder.DecodeElement(&rec, &start); err != nil {
			return nil, malformed(err)
		}
		return decodeCustomerXML(&rec)
	case "Order":
		var rec orderXML
		if err := decoder.DecodeElement(&rec, &start); err != nil {
			return nil, malformed(err)
		}
		return decodeOrderXML(&rec, nil)
	case "Feedback":
		var rec feedbackXML
		if err := decoder.DecodeElement(&rec, &start); err != nil {
			return nil, malformed(err)
		}
		return decodeFeedbackXML(&rec)
	case "Coupon":
		var rec couponXML
		if err := decoder.DecodeElement(&rec, &start); err != nil {
			return nil, malformed(err)
		}
		return decodeCouponXML(&rec)
	case "Wishlist":
		var rec wishlistXML
		if err := decoder.DecodeElement(&rec, &start); err != nil {
			return nil, malformed(err)
		}
		return decodeWishlistXML(&rec)
	case "Inventory":
		var rec inventoryXML
		if err := decoder.DecodeElement(&rec, &start); err != nil {
			return nil, malformed(err)
		}
		return decodeInventoryXML(&rec)
	default:
		return nil, fmt.Errorf("%w: unknown element %q", domain.ErrMalformedRecord, start.Name.Local)
	}
}

func encodeCategoryXML(c *domain.Category, withProducts bool) *categoryXML {
	rec := &categoryXML{ID: intPtr(c.ID), Name: strPtr(c.Name)}
	if withProducts {
		for _, p := range c.Products {
			prec := encodeProductXML(p, false)
			prec.Category = nil
			rec.Products = append(rec.Products, prec)
		}
	}
	return rec
}

func decodeCategoryXML(rec *categoryXML) (*domain.Category, error) {
	if rec.ID == nil || rec.Name == nil {
		return nil, fmt.Errorf("%w: Category element missing Id or Name", domain.ErrMalformedRecord)
	}
	c := &domain.Category{ID: *rec.ID, Name: *rec.Name}
	for i, prec := range rec.Products {
		p, err := decodeProductXML(prec, c)
		if err != nil {
			return nil, fmt.Errorf("category %d, product %d: %w", c.ID, i, err)
		}
		c.Products = append(c.Products, p)
	}
	return c, nil
}

func encodeProductXML(p *domain.Product, withCategory bool) *productXML {
	rec := &productXML{
		ID:          intPtr(p.ID),
		Name:        strPtr(p.Name),
		Description: p.Description,
		Price:       floatPtr(p.Price),
		Stock:       intPtr(p.Stock),
	}
	if withCategory && p.Category != nil {
		rec.Category = encodeCategoryXML(p.Category, false)
	}
	return rec
}

func decodeProductXML(rec *productXML, owner *domain.Category) (*domain.Product, error) {
	if rec.ID == nil || rec.Name == nil || rec.Price == nil || rec.Stock == nil {
		return nil, fmt.Errorf("%w: Product element missing Id, Name, Price or Stock", domain.ErrMalformedRecord)
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
		c, err := decodeCategoryXML(rec.Category)
		if err != nil {
			return nil, err
		}
		p.Category = c
	}
	return p, nil
}

func encodeAdminXML(a *domain.Admin) *adminXML {
	return &adminXML{
		ID:           intPtr(a.ID),
		Username:     strPtr(a.Username),
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
	}
}

func decodeAdminXML(rec *adminXML) (*domain.Admin, error) {
	if rec.ID == nil || rec.Username == nil {
		return nil, fmt.Errorf("%w: Admin element missing Id or Username", domain.ErrMalformedRecord)
	}
	return &domain.Admin{ID: *rec.ID, Username: *rec.Username, Email: rec.Email, PasswordHash: rec.PasswordHash}, nil
}

func encodeCustomerXML(c *domain.Customer, withOrders bool) *customerXML {
	rec := &customerXML{ID: intPtr(c.ID), Name: strPtr(c.Name), Email: strPtr(c.Email)}
	if withOrders {
		for _, o := range c.Orders {
			rec.Orders = append(rec.Orders, encodeOrderXML(o, false))
		}
	}
	return rec
}

func decodeCustomerXML(rec *customerXML) (*domain.Customer, error) {
	if rec.ID == nil || rec.Name == nil || rec.Email == nil {
		return nil, fmt.Errorf("%w: Customer element missing Id, Name or Email", domain.ErrMalformedRecord)
	}
	c := &domain.Customer{ID: *rec.ID, Name: *rec.Name, Email: *rec.Email}
	for i, orec := range rec.Orders {
		o, err := decodeOrderXML(orec, c)
		if err != nil {
			return nil, fmt.Errorf("customer %d, order %d: %w", c.ID, i, err)
		}
		c.Orders = append(c.Orders, o)
	}
	return c, nil
}

func encodeOrderXML(o *domain.Order, withCustomer bool) *orderXML {
	rec := &orderXML{
		ID:         intPtr(o.ID),
		Items:      make([]orderItemXML, 0, len(o.Items)),
		TotalPrice: o.CalculateTotal(),
		Status:     strPtr(string(o.Status)),
	}
	if withCustomer && o.Customer != nil {
		rec.Customer = encodeCustomerXML(o.Customer, false)
	}
	for _, item := range o.Items {
		rec.Items = append(rec.Items, orderItemXML{
			Product:    encodeProductXML(item.Product, true),
			Quantity:   intPtr(item.Quantity),
			TotalPrice: floatPtr(item.TotalPrice),
		})
	}
	return rec
}

func decodeOrderXML(rec *orderXML, owner *domain.Customer) (*domain.Order, error) {
	if rec.ID == nil || rec.Status == nil {
		return nil, fmt.Errorf("%w: Order element missing Id or Status", domain.ErrMalformedRecord)
	}
	customer := owner
	if customer == nil {
		if rec.Customer == nil {
			return nil, fmt.Errorf("%w: Order element %d missing Customer", domain.ErrMalformedRecord, *rec.ID)
		}
		c, err := decodeCustomerXML(rec.Customer)
		if err != nil {
			return nil, err
		}
		customer = c
	}
	o := &domain.Order{ID: *rec.ID, Customer: customer, Status: domain.OrderStatus(*rec.Status)}
	for i, irec := range rec.Items {
		item, err := decodeOrderItemXML(&irec)
		if err != nil {
			return nil, fmt.Errorf("order %d, item %d: %w", o.ID, i, err)
		}
		o.Items = append(o.Items, item)
	}
	return o, nil
}

func decodeOrderItemXML(rec *orderItemXML) (domain.OrderItem, error) {
	if rec.Product == nil || rec.Quantity == nil {
		return domain.OrderItem{}, fmt.Errorf("%w: OrderItem element missing Product or Quantity", domain.ErrMalformedRecord)
	}
	if *rec.Quantity <= 0 {
		return domain.OrderItem{}, fmt.Errorf("%w: order item quantity %d", domain.ErrInvalidQuantity, *rec.Quantity)
	}
	p, err := decodeProductXML(rec.Product, nil)
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

func encodeFeedbackXML(f *domain.Feedback) *feedbackXML {
	rec := &feedbackXML{
		ID:       intPtr(f.ID),
		Customer: encodeCustomerXML(f.Customer, false),
		Product:  encodeProductXML(f.Product, true),
		Comment:  strPtr(f.Comment),
	}
	if f.Rating != 0 {
		rec.Rating = intPtr(f.Rating)
	}
	return rec
}

func decodeFeedbackXML(rec *feedbackXML) (*domain.Feedback, error) {
	if rec.ID == nil || rec.Customer == nil || rec.Product == nil || rec.Comment == nil {
		return nil, fmt.Errorf("%w: Feedback element missing Id, Customer, Product or Comment", domain.ErrMalformedRecord)
	}
	customer, err := decodeCustomerXML(rec.Customer)
	if err != nil {
		return nil, err
	}
	product, err := decodeProductXML(rec.Product, nil)
	if err != nil {
		return nil, err
	}
	rating := 0
	if rec.Rating != nil {
		rating = *rec.Rating
	}
	return domain.NewFeedback(*rec.ID, customer, product, rating, *rec.Comment)
}

func encodeCouponXML(c *domain.Coupon) *couponXML {
	return &couponXML{
		ID:       intPtr(c.ID),
		Code:     strPtr(c.Code),
		Discount: floatPtr(c.DiscountPercentage),
		Active:   boolPtr(c.Active),
	}
}

func decodeCouponXML(rec *couponXML) (*domain.Coupon, error) {
	if rec.ID == nil || rec.Code == nil || rec.Discount == nil || rec.Active == nil {
		return nil, fmt.Errorf("%w: Coupon element missing Id, Code, Discount or Active", domain.ErrMalformedRecord)
	}
	return &domain.Coupon{ID: *rec.ID, Code: *rec.Code, DiscountPercentage: *rec.Discount, Active: *rec.Active}, nil
}

func encodeWishlistXML(w *domain.Wishlist) *wishlistXML {
	rec := &wishlistXML{
		ID:       intPtr(w.ID),
		Customer: encodeCustomerXML(w.Customer, false),
	}
	for _, p := range w.Products {
		rec.Products = append(rec.Products, encodeProductXML(p, true))
	}
	return rec
}

func decodeWishlistXML(rec *wishlistXML) (*domain.Wishlist, error) {
	if rec.ID == nil || rec.Customer == nil {
		return nil, fmt.Errorf("%w: Wishlist element missing Id or Customer", domain.ErrMalformedRecord)
	}
	customer, err := decodeCustomerXML(rec.Customer)
	if err != nil {
		return nil, err
	}
	w := &domain.Wishlist{ID: *rec.ID, Customer: customer}
	for i, prec := range rec.Products {
		p, err := decodeProductXML(prec, nil)
		if err != nil {
			return nil, fmt.Errorf("wishlist %d, product %d: %w", w.ID, i, err)
		}
		w.Products = append(w.Products, p)
	}
	return w, nil
}

func encodeInventoryXML(inv *domain.Inventory) *inventoryXML {
	rec := &inventoryXML{}
	for _, p := range sortedProducts(inv) {
		rec.Products = append(rec.Products, encodeProductXML(p, true))
	}
	return rec
}

func decodeInventoryXML(rec *inventoryXML) (*domain.Inventory, error) {
	inv := domain.NewInventory()
	for i, prec := range rec.Products {
		p, err := decodeProductXML(prec, nil)
		if err != nil {
			return nil, fmt.Errorf("inventory product %d: %w", i, err)
		}
		inv.AddProduct(p)
	}
	return inv, nil
}
