package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"store_service/config"
	"store_service/internal/domain"
	"store_service/internal/repository"
	"store_service/internal/usecase"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	cfg := config.LoadConfig(logger)

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger.Info("Starting Store Service...")

	// --- Dependency Injection ---
	jsonStore := repository.NewJSONStore(cfg.JSONPath, logger)
	xmlStore := repository.NewXMLStore(cfg.XMLPath, logger)
	logger.Info("Repositories initialized.")

	alloc := domain.NewIDAllocator()
	store := usecase.NewStoreUseCase(alloc, logger)
	admins := usecase.NewAdminUseCase(alloc, logger)
	logger.Info("Use cases initialized.")

	// Pick up whatever the last run persisted; a missing file means a
	// fresh catalog.
	store.LoadFrom(jsonStore)

	if _, err := admins.RegisterAdmin("admin1", "admin@example.com", "changeme123"); err != nil {
		logger.Fatalf("Failed to register admin: %v", err)
	}

	if err := runSeedScenario(store, logger); err != nil {
		logger.Fatalf("Seed scenario failed: %v", err)
	}

	if err := store.SaveTo(jsonStore); err != nil {
		logger.Fatalf("Failed to save JSON catalog: %v", err)
	}
	if err := store.SaveTo(xmlStore); err != nil {
		logger.Fatalf("Failed to save XML catalog: %v", err)
	}

	// Reload from both files to confirm the round trip.
	verify := usecase.NewStoreUseCase(domain.NewIDAllocator(), logger)
	verify.LoadFrom(jsonStore)
	logger.Infof("JSON reload: %d categories, %d customers",
		len(verify.Catalog().Categories), len(verify.Catalog().Customers))

	verify = usecase.NewStoreUseCase(domain.NewIDAllocator(), logger)
	verify.LoadFrom(xmlStore)
	logger.Infof("XML reload: %d categories, %d customers",
		len(verify.Catalog().Categories), len(verify.Catalog().Customers))

	logger.Info("Store Service finished.")
}

// runSeedScenario builds the demonstration catalog: one category, one
// product, one customer with an order, a coupon and a wishlist.
func runSeedScenario(store usecase.StoreUseCase, logger *logrus.Logger) error {
	category, err := store.AddCategory("Electronics")
	if err != nil {
		return err
	}
	laptop, err := store.AddProduct(category.ID, "Laptop", "A powerful laptop", 1000.0, 5)
	if err != nil {
		return err
	}
	customer, err := store.RegisterCustomer("John Doe", "john@example.com")
	if err != nil {
		return err
	}
	order, err := store.CreateOrder(customer.ID)
	if err != nil {
		return err
	}
	if err := store.AddItemToOrder(order.ID, laptop.ID, 2); err != nil {
		return err
	}

	coupon, err := store.IssueCoupon(10)
	if err != nil {
		return err
	}
	discounted, err := store.ApplyCoupon(coupon.Code, order.ID)
	if err != nil {
		return err
	}
	logger.Infof("Order %d totals %.2f (%.2f with coupon %s)",
		order.ID, order.CalculateTotal(), discounted, coupon.Code)

	wishlist, err := store.CreateWishlist(customer.ID)
	if err != nil {
		return err
	}
	if err := store.AddToWishlist(wishlist.ID, laptop.ID); err != nil {
		return err
	}
	if _, err := store.LeaveFeedback(customer.ID, laptop.ID, 5, "Fast and quiet"); err != nil {
		return err
	}
	return nil
}
