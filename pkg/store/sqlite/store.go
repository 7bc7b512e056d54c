package sqlite

import (
	"fmt"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cybercercher/openioc-db/pkg/store"
)

// integrity check
var _ store.Store = (*Store)(nil)

// Store holds an instance of the database connection.
type Store struct {
	db *gorm.DB
}

// CleanupFn is a callback for closing a DB connection.
type CleanupFn func() error

// NewStore opens (or creates) the sqlite object store at the given file path.
func NewStore(dbFilePath string, overwrite bool) (*Store, CleanupFn, error) {
	if overwrite {
		os.Remove(dbFilePath)
	}

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?cache=shared", dbFilePath)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open object store at %q: %w", dbFilePath, err)
	}

	if err := db.AutoMigrate(&idModel{}, &infoObjectModel{}); err != nil {
		return nil, nil, fmt.Errorf("unable to migrate object store: %w", err)
	}

	cleanupFn := func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return &Store{
		db: db,
	}, cleanupFn, nil
}

// GetID fetches metadata about the store's schema version and build time.
func (s *Store) GetID() (*store.ID, error) {
	var models []idModel
	result := s.db.Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	switch {
	case len(models) > 1:
		return nil, fmt.Errorf("found multiple store IDs")
	case len(models) == 1:
		id, err := models[0].Inflate()
		if err != nil {
			return nil, err
		}
		return &id, nil
	}

	return nil, nil
}

// SetID stores the schema version and build time, replacing any existing record.
func (s *Store) SetID(id store.ID) error {
	var ids []idModel

	s.db.Find(&ids).Delete(&ids)

	m := newIDModel(id)
	result := s.db.Create(&m)

	if result.RowsAffected != 1 {
		return fmt.Errorf("unable to add id (%d rows affected)", result.RowsAffected)
	}

	return result.Error
}

// GetInfoObject retrieves all revisions of the object with the given identifier.
func (s *Store) GetInfoObject(namespaceURI, uid string) ([]store.InfoObject, error) {
	var models []infoObjectModel

	result := s.db.Where("namespace_uri = ? AND uid = ?", namespaceURI, uid).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	objects := make([]store.InfoObject, len(models))
	for idx, m := range models {
		obj, err := m.Inflate()
		if err != nil {
			return nil, err
		}
		objects[idx] = obj
	}

	return objects, nil
}

func (s *Store) CountInfoObjects() (int64, error) {
	var count int64
	result := s.db.Model(&infoObjectModel{}).Count(&count)
	return count, result.Error
}

// AddInfoObject saves one or more information objects. When a placeholder revision already
// exists for the same identifier and timestamp, it is filled in instead of duplicated.
func (s *Store) AddInfoObject(objs ...*store.InfoObject) error {
	for _, obj := range objs {
		if obj == nil {
			continue
		}

		m, err := newInfoObjectModel(*obj)
		if err != nil {
			return err
		}

		var existing []infoObjectModel
		result := s.db.Where("namespace_uri = ? AND uid = ? AND timestamp = ?", m.NamespaceURI, m.UID, m.Timestamp).Find(&existing)
		if result.Error != nil {
			return fmt.Errorf("failed to check for existing entry: %w", result.Error)
		}

		switch {
		case len(existing) > 1:
			return fmt.Errorf("found multiple objects for uid=%q namespace=%q timestamp=%q", m.UID, m.NamespaceURI, m.Timestamp)
		case len(existing) == 1:
			if !existing[0].Placeholder {
				return fmt.Errorf("object already exists: uid=%q namespace=%q timestamp=%q", m.UID, m.NamespaceURI, m.Timestamp)
			}
			m.PK = existing[0].PK
			result = s.db.Save(&m)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected != 1 {
				return fmt.Errorf("unable to fill placeholder object (%d rows affected)", result.RowsAffected)
			}
		default:
			result = s.db.Create(&m)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected != 1 {
				return fmt.Errorf("unable to add object (%d rows affected)", result.RowsAffected)
			}
		}
	}
	return nil
}

// GetOrCreatePlaceholder resolves the object with the given identifier and timestamp,
// creating a placeholder stub when no matching revision exists.
func (s *Store) GetOrCreatePlaceholder(namespaceURI, uid string, timestamp time.Time) (*store.InfoObject, bool, error) {
	ts := timestamp.UTC().Format(time.RFC3339Nano)

	var models []infoObjectModel
	result := s.db.Where("namespace_uri = ? AND uid = ? AND timestamp = ?", namespaceURI, uid, ts).Find(&models)
	if result.Error != nil {
		return nil, false, result.Error
	}

	if len(models) > 0 {
		obj, err := models[0].Inflate()
		if err != nil {
			return nil, false, err
		}
		return &obj, true, nil
	}

	placeholder := store.InfoObject{
		UID:                    uid,
		IdentifierNamespaceURI: namespaceURI,
		Timestamp:              timestamp.UTC(),
		CreateTimestamp:        time.Now().UTC(),
		Placeholder:            true,
	}

	m, err := newInfoObjectModel(placeholder)
	if err != nil {
		return nil, false, err
	}

	result = s.db.Create(&m)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected != 1 {
		return nil, false, fmt.Errorf("unable to add placeholder object (%d rows affected)", result.RowsAffected)
	}

	return &placeholder, false, nil
}
