package store

import (
	"fmt"
	"time"
)

const StoreFileName = "openioc.db"

// SchemaVersion of the object store layout produced by this release.
const SchemaVersion = 1

// ID describes the store itself: when it was created and with which schema.
type ID struct {
	BuildTimestamp time.Time
	SchemaVersion  int
}

func NewID(buildTimestamp time.Time) ID {
	return ID{
		BuildTimestamp: buildTimestamp.UTC(),
		SchemaVersion:  SchemaVersion,
	}
}

// Fact is a single persisted attribute/value record attached to an InfoObject.
type Fact struct {
	NodeID    string `json:"node_id"`
	Term      string `json:"term"`
	Attribute string `json:"attribute,omitempty"`
	Value     string `json:"value,omitempty"`

	DataTypeName         string `json:"data_type_name,omitempty"`
	DataTypeNamespaceURI string `json:"data_type_namespace_uri,omitempty"`
	DataTypeKind         string `json:"data_type_kind,omitempty"`

	// RefNamespaceURI/RefUID point at another object's identifier for reference facts.
	RefNamespaceURI string `json:"ref_namespace_uri,omitempty"`
	RefUID          string `json:"ref_uid,omitempty"`
}

// InfoObject is one imported information object: an identifier, a revision timestamp, family
// and type classification, and the facts extracted from its dictionary representation.
// A placeholder object is a stub created when a referenced object is not yet present.
type InfoObject struct {
	UID                    string
	IdentifierNamespaceURI string
	Timestamp              time.Time
	CreateTimestamp        time.Time

	FamilyName     string
	FamilyRevision string

	TypeName         string
	TypeNamespaceURI string
	TypeRevision     string

	Placeholder bool
	Markings    []string
	Facts       []Fact
}

func (o InfoObject) String() string {
	return fmt.Sprintf("InfoObject(uid=%q ns=%q type=%q facts=%d)", o.UID, o.IdentifierNamespaceURI, o.TypeName, len(o.Facts))
}

type Store interface {
	Reader
	Writer
}

type Reader interface {
	GetID() (*ID, error)

	// GetInfoObject retrieves all revisions of the object with the given identifier.
	GetInfoObject(namespaceURI, uid string) ([]InfoObject, error)

	CountInfoObjects() (int64, error)
}

type Writer interface {
	SetID(ID) error

	// AddInfoObject inserts new records, filling in a matching placeholder revision when one
	// exists for the same identifier and timestamp.
	AddInfoObject(objs ...*InfoObject) error

	// GetOrCreatePlaceholder resolves the object with the given identifier and timestamp,
	// creating a placeholder stub when it does not exist. The second return value reports
	// whether the object already existed.
	GetOrCreatePlaceholder(namespaceURI, uid string, timestamp time.Time) (*InfoObject, bool, error)
}
