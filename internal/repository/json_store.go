package repository

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"store_service/internal/codec"
	"store_service/internal/domain"
)

type jsonStore struct {
	path string
	log  *logrus.Logger
}

var _ domain.Store = (*jsonStore)(nil)

// NewJSONStore persists entity sequences to a single JSON file. Every
// save overwrites the file in full.
func NewJSONStore(path string, logger *logrus.Logger) domain.Store {
	return &jsonStore{path: path, log: logger}
}

func (s *jsonStore) SaveObjects(entities []domain.Entity) error {
	data, err := codec.MarshalEntities(entities)
	if err != nil {
		s.log.Errorf("Failed to encode %d entities for %s: %v", len(entities), s.path, err)
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.log.Errorf("Failed to write %s: %v", s.path, err)
		return fmt.Errorf("could not write %s: %w", s.path, err)
	}
	s.log.Infof("Saved %d entities to %s", len(entities), s.path)
	return nil
}

func (s *jsonStore) LoadObjects() ([]domain.Entity, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file %s: %w", s.path, domain.ErrNotFound)
		}
		s.log.Errorf("Failed to read %s: %v", s.path, err)
		return nil, fmt.Errorf("could not read %s: %w", s.path, err)
	}
	entities, err := codec.UnmarshalEntities(data)
	if err != nil {
		s.log.Errorf("Failed to decode %s: %v", s.path, err)
		return nil, fmt.Errorf("could not decode %s: %w", s.path, err)
	}
	s.log.Infof("Loaded %d entities from %s", len(entities), s.path)
	return entities, nil
}

func (s *jsonStore) LoadObjectsOrEmpty() []domain.Entity {
	entities, err := s.LoadObjects()
	if err != nil {
		s.log.Warnf("Falling back to empty collection for %s: %v", s.path, err)
		return []domain.Entity{}
	}
	return entities
}

// CreateObject appends one entity to the file. A missing file starts an
// empty collection; any other load failure aborts the append.
func (s *jsonStore) CreateObject(e domain.Entity) error {
	entities, err := s.LoadObjects()
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	entities = append(entities, e)
	return s.SaveObjects(entities)
}

// UpdateObject replaces the entity with the given key. An absent key
// returns false and leaves the file untouched.
func (s *jsonStore) UpdateObject(key string, e domain.Entity) (bool, error) {
	entities := s.LoadObjectsOrEmpty()
	for i, existing := range entities {
		if existing.Kind() == e.Kind() && existing.Key() == key {
			entities[i] = e
			if err := s.SaveObjects(entities); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	s.log.Warnf("No %s with key %q in %s to update", e.Kind(), key, s.path)
	return false, nil
}

// DeleteObject filters by key. An absent key is a no-op.
func (s *jsonStore) DeleteObject(key string) error {
	entities := s.LoadObjectsOrEmpty()
	kept := entities[:0]
	for _, e := range entities {
		if e.Key() != key {
			kept = append(kept, e)
		}
	}
	return s.SaveObjects(kept)
}

func (s *jsonStore) SaveCatalog(catalog *domain.Catalog) error {
	return s.SaveObjects(catalogEntities(catalog))
}

func (s *jsonStore) LoadCatalog() (*domain.Catalog, error) {
	entities, err := s.LoadObjects()
	if err != nil {
		return nil, err
	}
	catalog, skipped := partitionCatalog(entities)
	if skipped > 0 {
		s.log.Warnf("Ignored %d non-catalog entities in %s", skipped, s.path)
	}
	return catalog, nil
}
