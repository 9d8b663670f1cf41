package domain

// ObjectStore persists an ordered sequence of mixed-kind entities to a
// single file. Every save is a full overwrite; there is no merge or append
// at the file level.
type ObjectStore interface {
	SaveObjects(entities []Entity) error
	LoadObjects() ([]Entity, error)
	// LoadObjectsOrEmpty logs the underlying error and falls back to an
	// empty sequence when the file is missing or unreadable.
	LoadObjectsOrEmpty() []Entity
	CreateObject(e Entity) error
	UpdateObject(key string, e Entity) (bool, error)
	DeleteObject(key string) error
}

// CatalogStore persists the whole store graph.
type CatalogStore interface {
	SaveCatalog(catalog *Catalog) error
	LoadCatalog() (*Catalog, error)
}

// Store is what a file-backed format implementation provides.
type Store interface {
	ObjectStore
	CatalogStore
}
