package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"store_service/internal/domain"
)

// StoreUseCase drives the in-memory store graph: admin catalog edits,
// customer orders, coupons, wishlists, feedback, and persistence through
// a CatalogStore.
type StoreUseCase interface {
	AddCategory(name string) (*domain.Category, error)
	RemoveCategory(categoryID int)
	AddProduct(categoryID int, name, description string, price float64, stock int) (*domain.Product, error)
	RemoveProduct(categoryID, productID int) error

	RegisterCustomer(name, email string) (*domain.Customer, error)
	CreateOrder(customerID int) (*domain.Order, error)
	AddItemToOrder(orderID, productID, quantity int) error
	ListOrders(customerID int) ([]*domain.Order, error)

	IssueCoupon(discountPercentage float64) (*domain.Coupon, error)
	ApplyCoupon(code string, orderID int) (float64, error)

	CreateWishlist(customerID int) (*domain.Wishlist, error)
	AddToWishlist(wishlistID, productID int) error
	LeaveFeedback(customerID, productID, rating int, comment string) (*domain.Feedback, error)

	Inventory() *domain.Inventory
	Catalog() *domain.Catalog
	SaveTo(store domain.CatalogStore) error
	LoadFrom(store domain.CatalogStore)
}

type storeUseCase struct {
	catalog   *domain.Catalog
	inventory *domain.Inventory
	orders    map[int]*domain.Order
	coupons   map[string]*domain.Coupon
	wishlists map[int]*domain.Wishlist
	feedback  []*domain.Feedback
	alloc     *domain.IDAllocator
	log       *logrus.Logger
}

var _ StoreUseCase = (*storeUseCase)(nil)

func NewStoreUseCase(alloc *domain.IDAllocator, logger *logrus.Logger) StoreUseCase {
	return &storeUseCase{
		catalog:   &domain.Catalog{},
		inventory: domain.NewInventory(),
		orders:    make(map[int]*domain.Order),
		coupons:   make(map[string]*domain.Coupon),
		wishlists: make(map[int]*domain.Wishlist),
		alloc:     alloc,
		log:       logger,
	}
}

func (uc *storeUseCase) AddCategory(name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		uc.log.Warn("Use Case: Attempted to create category with empty name")
		return nil, errors.New("category name cannot be empty")
	}
	category := &domain.Category{ID: uc.alloc.Next(domain.KindCategory), Name: name}
	uc.catalog.Categories = append(uc.catalog.Categories, category)
	uc.log.Infof("Use Case: Category %q created with ID %d", name, category.ID)
	return category, nil
}

// RemoveCategory filters by id; an absent id is a no-op. Orders keep any
// references into the removed subtree.
func (uc *storeUseCase) RemoveCategory(categoryID int) {
	kept := uc.catalog.Categories[:0]
	for _, c := range uc.catalog.Categories {
		if c.ID != categoryID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(uc.catalog.Categories) {
		uc.log.Warnf("Use Case: No category with ID %d to remove", categoryID)
	} else {
		uc.log.Infof("Use Case: Category %d removed", categoryID)
	}
	uc.catalog.Categories = kept
}

func (uc *storeUseCase) AddProduct(categoryID int, name, description string, price float64, stock int) (*domain.Product, error) {
	if name == "" {
		uc.log.Warn("Use Case: Attempted to create product with empty name")
		return nil, errors.New("product name cannot be empty")
	}
	if price < 0 {
		uc.log.Warnf("Use Case: Attempted to create product %q with negative price: %f", name, price)
		return nil, errors.New("product price cannot be negative")
	}
	if stock < 0 {
		uc.log.Warnf("Use Case: Attempted to create product %q with negative stock: %d", name, stock)
		return nil, errors.New("product stock cannot be negative")
	}
	category := uc.findCategory(categoryID)
	if category == nil {
		uc.log.Warnf("Use Case: Category ID %d not found during product creation", categoryID)
		return nil, fmt.Errorf("category with id %d: %w", categoryID, domain.ErrNotFound)
	}

	product := &domain.Product{
		ID:          uc.alloc.Next(domain.KindProduct),
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
	}
	category.AddProduct(product)
	uc.inventory.AddProduct(product)
	uc.log.Infof("Use Case: Product %q created with ID %d in category %d", name, product.ID, categoryID)
	return product, nil
}

// RemoveProduct detaches the product from its category and the inventory
// index. Existing order items keep their snapshot of it.
func (uc *storeUseCase) RemoveProduct(categoryID, productID int) error {
	category := uc.findCategory(categoryID)
	if category == nil {
		return fmt.Errorf("category with id %d: %w", categoryID, domain.ErrNotFound)
	}
	category.RemoveProduct(productID)
	delete(uc.inventory.Products, productID)
	uc.log.Infof("Use Case: Product %d removed from category %d", productID, categoryID)
	return nil
}

func (uc *storeUseCase) RegisterCustomer(name, email string) (*domain.Customer, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		uc.log.Warn("Use Case: Registration failed - empty name")
		return nil, errors.New("customer name cannot be empty")
	}
	if !strings.Contains(email, "@") {
		uc.log.Warnf("Use Case: Registration failed - invalid email format: %s", email)
		return nil, errors.New("invalid email format")
	}
	customer := &domain.Customer{ID: uc.alloc.Next(domain.KindCustomer), Name: name, Email: email}
	uc.catalog.Customers = append(uc.catalog.Customers, customer)
	uc.log.Infof("Use Case: Customer %q registered with ID %d", name, customer.ID)
	return customer, nil
}

func (uc *storeUseCase) CreateOrder(customerID int) (*domain.Order, error) {
	customer := uc.findCustomer(customerID)
	if customer == nil {
		uc.log.Warnf("Use Case: Customer ID %d not found during order creation", customerID)
		return nil, fmt.Errorf("customer with id %d: %w", customerID, domain.ErrNotFound)
	}
	order := domain.NewOrder(uc.alloc.Next(domain.KindOrder), customer)
	customer.PlaceOrder(order)
	uc.orders[order.ID] = order
	uc.log.Infof("Use Case: Order %d created for customer %d", order.ID, customerID)
	return order, nil
}

func (uc *storeUseCase) AddItemToOrder(orderID, productID, quantity int) error {
	order, ok := uc.orders[orderID]
	if !ok {
		return fmt.Errorf("order with id %d: %w", orderID, domain.ErrNotFound)
	}
	product := uc.inventory.GetProduct(productID)
	if product == nil {
		return fmt.Errorf("product with id %d: %w", productID, domain.ErrNotFound)
	}
	if err := order.AddItem(product, quantity); err != nil {
		uc.log.Warnf("Use Case: Could not add product %d x%d to order %d: %v", productID, quantity, orderID, err)
		return err
	}
	uc.log.Infof("Use Case: Added product %d x%d to order %d (total now %.2f, stock now %d)",
		productID, quantity, orderID, order.CalculateTotal(), product.Stock)
	return nil
}

func (uc *storeUseCase) ListOrders(customerID int) ([]*domain.Order, error) {
	customer := uc.findCustomer(customerID)
	if customer == nil {
		return nil, fmt.Errorf("customer with id %d: %w", customerID, domain.ErrNotFound)
	}
	return customer.Orders, nil
}

func (uc *storeUseCase) IssueCoupon(discountPercentage float64) (*domain.Coupon, error) {
	if discountPercentage <= 0 || discountPercentage > 100 {
		uc.log.Warnf("Use Case: Invalid coupon discount: %f", discountPercentage)
		return nil, errors.New("discount percentage must be in (0, 100]")
	}
	coupon := &domain.Coupon{
		ID:                 uc.alloc.Next(domain.KindCoupon),
		Code:               strings.ToUpper(uuid.NewString()[:8]),
		DiscountPercentage: discountPercentage,
		Active:             true,
	}
	uc.coupons[coupon.Code] = coupon
	uc.log.Infof("Use Case: Coupon %q issued with %.1f%% discount", coupon.Code, discountPercentage)
	return coupon, nil
}

func (uc *storeUseCase) ApplyCoupon(code string, orderID int) (float64, error) {
	coupon, ok := uc.coupons[code]
	if !ok {
		return 0, fmt.Errorf("coupon %q: %w", code, domain.ErrNotFound)
	}
	order, ok := uc.orders[orderID]
	if !ok {
		return 0, fmt.Errorf("order with id %d: %w", orderID, domain.ErrNotFound)
	}
	discounted, err := coupon.Apply(order)
	if err != nil {
		uc.log.Warnf("Use Case: Coupon %q rejected for order %d: %v", code, orderID, err)
		return 0, err
	}
	uc.log.Infof("Use Case: Coupon %q applied to order %d: %.2f -> %.2f", code, orderID, order.CalculateTotal(), discounted)
	return discounted, nil
}

func (uc *storeUseCase) CreateWishlist(customerID int) (*domain.Wishlist, error) {
	customer := uc.findCustomer(customerID)
	if customer == nil {
		return nil, fmt.Errorf("customer with id %d: %w", customerID, domain.ErrNotFound)
	}
	wishlist := &domain.Wishlist{ID: uc.alloc.Next(domain.KindWishlist), Customer: customer}
	uc.wishlists[wishlist.ID] = wishlist
	uc.log.Infof("Use Case: Wishlist %d created for customer %d", wishlist.ID, customerID)
	return wishlist, nil
}

func (uc *storeUseCase) AddToWishlist(wishlistID, productID int) error {
	wishlist, ok := uc.wishlists[wishlistID]
	if !ok {
		return fmt.Errorf("wishlist with id %d: %w", wishlistID, domain.ErrNotFound)
	}
	product := uc.inventory.GetProduct(productID)
	if product == nil {
		return fmt.Errorf("product with id %d: %w", productID, domain.ErrNotFound)
	}
	wishlist.AddProduct(product)
	uc.log.Infof("Use Case: Product %d added to wishlist %d", productID, wishlistID)
	return nil
}

func (uc *storeUseCase) LeaveFeedback(customerID, productID, rating int, comment string) (*domain.Feedback, error) {
	customer := uc.findCustomer(customerID)
	if customer == nil {
		return nil, fmt.Errorf("customer with id %d: %w", customerID, domain.ErrNotFound)
	}
	product := uc.inventory.GetProduct(productID)
	if product == nil {
		return nil, fmt.Errorf("product with id %d: %w", productID, domain.ErrNotFound)
	}
	feedback, err := domain.NewFeedback(uc.alloc.Next(domain.KindFeedback), customer, product, rating, comment)
	if err != nil {
		uc.log.Warnf("Use Case: Rejected feedback from customer %d: %v", customerID, err)
		return nil, err
	}
	uc.feedback = append(uc.feedback, feedback)
	uc.log.Infof("Use Case: Feedback %d recorded for product %d", feedback.ID, productID)
	return feedback, nil
}

func (uc *storeUseCase) Inventory() *domain.Inventory { return uc.inventory }
func (uc *storeUseCase) Catalog() *domain.Catalog     { return uc.catalog }

func (uc *storeUseCase) SaveTo(store domain.CatalogStore) error {
	if err := store.SaveCatalog(uc.catalog); err != nil {
		uc.log.Errorf("Use Case: Failed to save catalog: %v", err)
		return err
	}
	uc.log.Infof("Use Case: Catalog saved (%d categories, %d customers)",
		len(uc.catalog.Categories), len(uc.catalog.Customers))
	return nil
}

// LoadFrom replaces the in-memory graph with the persisted one. A missing
// or unreadable file degrades to an empty catalog; the concrete error is
// logged, not swallowed silently.
func (uc *storeUseCase) LoadFrom(store domain.CatalogStore) {
	catalog, err := store.LoadCatalog()
	if err != nil {
		uc.log.Warnf("Use Case: Could not load catalog, starting empty: %v", err)
		catalog = &domain.Catalog{}
	}
	uc.catalog = catalog
	uc.reindex()
	uc.log.Infof("Use Case: Catalog loaded (%d categories, %d customers)",
		len(catalog.Categories), len(catalog.Customers))
}

// reindex rebuilds the lookup structures and reserves the loaded ids so
// new allocations never collide.
func (uc *storeUseCase) reindex() {
	uc.inventory = domain.NewInventory()
	uc.orders = make(map[int]*domain.Order)
	for _, category := range uc.catalog.Categories {
		uc.alloc.Reserve(domain.KindCategory, category.ID)
		for _, product := range category.Products {
			uc.alloc.Reserve(domain.KindProduct, product.ID)
			uc.inventory.AddProduct(product)
		}
	}
	for _, customer := range uc.catalog.Customers {
		uc.alloc.Reserve(domain.KindCustomer, customer.ID)
		for _, order := range customer.Orders {
			uc.alloc.Reserve(domain.KindOrder, order.ID)
			uc.orders[order.ID] = order
		}
	}
}

func (uc *storeUseCase) findCategory(categoryID int) *domain.Category {
	for _, c := range uc.catalog.Categories {
		if c.ID == categoryID {
			return c
		}
	}
	return nil
}

func (uc *storeUseCase) findCustomer(customerID int) *domain.Customer {
	for _, c := range uc.catalog.Customers {
		if c.ID == customerID {
			return c
		}
	}
	return nil
}
