package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cybercercher/openioc-db/pkg/store"
)

type idModel struct {
	BuildTimestamp string `gorm:"column:build_timestamp"`
	SchemaVersion  int    `gorm:"column:schema_version"`
}

func (idModel) TableName() string {
	return "id"
}

func newIDModel(id store.ID) idModel {
	return idModel{
		BuildTimestamp: id.BuildTimestamp.UTC().Format(time.RFC3339Nano),
		SchemaVersion:  id.SchemaVersion,
	}
}

func (m idModel) Inflate() (store.ID, error) {
	buildTime, err := time.Parse(time.RFC3339Nano, m.BuildTimestamp)
	if err != nil {
		return store.ID{}, fmt.Errorf("unable to parse build timestamp %q: %w", m.BuildTimestamp, err)
	}
	return store.ID{
		BuildTimestamp: buildTime,
		SchemaVersion:  m.SchemaVersion,
	}, nil
}

type infoObjectModel struct {
	PK uint `gorm:"column:pk;primaryKey"`

	UID             string `gorm:"column:uid;index:object_identity_index"`
	NamespaceURI    string `gorm:"column:namespace_uri;index:object_identity_index"`
	Timestamp       string `gorm:"column:timestamp;index:object_identity_index"`
	CreateTimestamp string `gorm:"column:create_timestamp"`

	FamilyName     string `gorm:"column:family_name"`
	FamilyRevision string `gorm:"column:family_revision"`

	TypeName         string `gorm:"column:type_name"`
	TypeNamespaceURI string `gorm:"column:type_namespace_uri"`
	TypeRevision     string `gorm:"column:type_revision"`

	Placeholder bool   `gorm:"column:placeholder"`
	Markings    string `gorm:"column:markings"`
	Facts       string `gorm:"column:facts"`
}

func (infoObjectModel) TableName() string {
	return "info_object"
}

func newInfoObjectModel(obj store.InfoObject) (infoObjectModel, error) {
	markings, err := json.Marshal(obj.Markings)
	if err != nil {
		return infoObjectModel{}, fmt.Errorf("unable to encode markings: %w", err)
	}

	facts, err := json.Marshal(obj.Facts)
	if err != nil {
		return infoObjectModel{}, fmt.Errorf("unable to encode facts: %w", err)
	}

	return infoObjectModel{
		UID:              obj.UID,
		NamespaceURI:     obj.IdentifierNamespaceURI,
		Timestamp:        obj.Timestamp.UTC().Format(time.RFC3339Nano),
		CreateTimestamp:  obj.CreateTimestamp.UTC().Format(time.RFC3339Nano),
		FamilyName:       obj.FamilyName,
		FamilyRevision:   obj.FamilyRevision,
		TypeName:         obj.TypeName,
		TypeNamespaceURI: obj.TypeNamespaceURI,
		TypeRevision:     obj.TypeRevision,
		Placeholder:      obj.Placeholder,
		Markings:         string(markings),
		Facts:            string(facts),
	}, nil
}

func (m infoObjectModel) Inflate() (store.InfoObject, error) {
	timestamp, err := time.Parse(time.RFC3339Nano, m.Timestamp)
	if err != nil {
		return store.InfoObject{}, fmt.Errorf("unable to parse object timestamp %q: %w", m.Timestamp, err)
	}

	createTimestamp, err := time.Parse(time.RFC3339Nano, m.CreateTimestamp)
	if err != nil {
		return store.InfoObject{}, fmt.Errorf("unable to parse object create timestamp %q: %w", m.CreateTimestamp, err)
	}

	var markings []string
	if err := json.Unmarshal([]byte(m.Markings), &markings); err != nil {
		return store.InfoObject{}, fmt.Errorf("unable to decode markings: %w", err)
	}

	var facts []store.Fact
	if err := json.Unmarshal([]byte(m.Facts), &facts); err != nil {
		return store.InfoObject{}, fmt.Errorf("unable to decode facts: %w", err)
	}

	return store.InfoObject{
		UID:                    m.UID,
		IdentifierNamespaceURI: m.NamespaceURI,
		Timestamp:              timestamp,
		CreateTimestamp:        createTimestamp,
		FamilyName:             m.FamilyName,
		FamilyRevision:         m.FamilyRevision,
		TypeName:               m.TypeName,
		TypeNamespaceURI:       m.TypeNamespaceURI,
		TypeRevision:           m.TypeRevision,
		Placeholder:            m.Placeholder,
		Markings:               markings,
		Facts:                  facts,
	}, nil
}
