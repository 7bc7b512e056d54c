package memory

import (
	"fmt"
	"time"

	"github.com/cybercercher/openioc-db/pkg/store"
)

// integrity check
var _ store.Store = (*Store)(nil)

// Store is an in-memory object store, primarily useful in tests.
type Store struct {
	id      *store.ID
	objects map[string][]*store.InfoObject
}

func NewStore() *Store {
	return &Store{
		objects: make(map[string][]*store.InfoObject),
	}
}

func key(namespaceURI, uid string) string {
	return namespaceURI + "|" + uid
}

func (s *Store) GetID() (*store.ID, error) {
	return s.id, nil
}

func (s *Store) SetID(id store.ID) error {
	s.id = &id
	return nil
}

func (s *Store) GetInfoObject(namespaceURI, uid string) ([]store.InfoObject, error) {
	var out []store.InfoObject
	for _, obj := range s.objects[key(namespaceURI, uid)] {
		out = append(out, *obj)
	}
	return out, nil
}

func (s *Store) CountInfoObjects() (int64, error) {
	var count int64
	for _, revisions := range s.objects {
		count += int64(len(revisions))
	}
	return count, nil
}

func (s *Store) AddInfoObject(objs ...*store.InfoObject) error {
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		k := key(obj.IdentifierNamespaceURI, obj.UID)
		if existing := s.find(k, obj.Timestamp); existing != nil {
			if !existing.Placeholder {
				return fmt.Errorf("object already exists: %s", obj)
			}
			*existing = *obj
			continue
		}
		stored := *obj
		s.objects[k] = append(s.objects[k], &stored)
	}
	return nil
}

func (s *Store) GetOrCreatePlaceholder(namespaceURI, uid string, timestamp time.Time) (*store.InfoObject, bool, error) {
	k := key(namespaceURI, uid)
	if existing := s.find(k, timestamp); existing != nil {
		obj := *existing
		return &obj, true, nil
	}

	placeholder := &store.InfoObject{
		UID:                    uid,
		IdentifierNamespaceURI: namespaceURI,
		Timestamp:              timestamp.UTC(),
		CreateTimestamp:        time.Now().UTC(),
		Placeholder:            true,
	}
	s.objects[k] = append(s.objects[k], placeholder)

	obj := *placeholder
	return &obj, false, nil
}

func (s *Store) find(k string, timestamp time.Time) *store.InfoObject {
	for _, obj := range s.objects[k] {
		if obj.Timestamp.Equal(timestamp) {
			return obj
		}
	}
	return nil
}

// All returns every stored object grouped by identifier key, for test assertions.
func (s *Store) All() map[string][]*store.InfoObject {
	return s.objects
}
