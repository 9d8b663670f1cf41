package repository

import "store_service/internal/domain"

// catalogEntities flattens the store graph into the persisted top-level
// sequence: categories first, then customers with their order history.
func catalogEntities(catalog *domain.Catalog) []domain.Entity {
	entities := make([]domain.Entity, 0, len(catalog.Categories)+len(catalog.Customers))
	for _, c := range catalog.Categories {
		entities = append(entities, c)
	}
	for _, c := range catalog.Customers {
		entities = append(entities, c)
	}
	return entities
}

// partitionCatalog rebuilds the graph from a loaded sequence. Entities of
// other kinds are counted and left out; the caller decides whether that is
// worth a warning.
func partitionCatalog(entities []domain.Entity) (*domain.Catalog, int) {
	catalog := &domain.Catalog{}
	skipped := 0
	for _, e := range entities {
		switch v := e.(type) {
		case *domain.Category:
			catalog.Categories = append(catalog.Categories, v)
		case *domain.Customer:
			catalog.Customers = append(catalog.Customers, v)
		default:
			skipped++
		}
	}
	return catalog, skipped
}
