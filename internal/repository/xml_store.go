package repository

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"store_service/internal/codec"
	"store_service/internal/domain"
)

type xmlStore struct {
	path string
	log  *logrus.Logger
}

var _ domain.Store = (*xmlStore)(nil)

// NewXMLStore persists entity sequences to a single XML file under a Root
// container. Every save overwrites the file in full.
func NewXMLStore(path string, logger *logrus.Logger) domain.Store {
	return &xmlStore{path: path, log: logger}
}

func (s *xmlStore) SaveObjects(entities []domain.Entity) error {
	data, err := codec.MarshalDocument(entities)
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

func (s *xmlStore) LoadObjects() ([]domain.Entity, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file %s: %w", s.path, domain.ErrNotFound)
		}
		s.log.Errorf("Failed to read %s: %v", s.path, err)
		return nil, fmt.Errorf("could not read %s: %w", s.path, err)
	}
	entities, err := codec.UnmarshalDocument(data)
	if err != nil {
		s.log.Errorf("Failed to decode %s: %v", s.path, err)
		return nil, fmt.Errorf("could not decode %s: %w", s.path, err)
	}
	s.log.Infof("Loaded %d entities from %s", len(entities), s.path)
	return entities, nil
}

func (s *xmlStore) LoadObjectsOrEmpty() []domain.Entity {
	entities, err := s.LoadObjects()
	if err != nil {
		s.log.Warnf("Falling back to empty collection for %s: %v", s.path, err)
		return []domain.Entity{}
	}
	return entities
}

func (s *xmlStore) CreateObject(e domain.Entity) error {
	entities, err := s.LoadObjects()
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	entities = append(entities, e)
	return s.SaveObjects(entities)
}

func (s *xmlStore) UpdateObject(key string, e domain.Entity) (bool, error) {
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

func (s *xmlStore) DeleteObject(key string) error {
	entities := s.LoadObjectsOrEmpty()
	kept := entities[:0]
	for _, e := range entities {
		if e.Key() != key {
			kept = append(kept, e)
		}
	}
	return s.SaveObjects(kept)
}

func (s *xmlStore) SaveCatalog(catalog *domain.Catalog) error {
	return s.SaveObjects(catalogEntities(catalog))
}

func (s *xmlStore) LoadCatalog() (*domain.Catalog, error) {
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
