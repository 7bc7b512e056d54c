package data

import "time"

// Identity is the id/revision record extracted once per top-level element and once per
// embedded element. A nil timestamp means the source carried no revision information.
type Identity struct {
	ID        string
	Timestamp *time.Time
}

// DataTypeKind describes how the data type of a fact is to be interpreted.
type DataTypeKind int

const (
	KindNoVocab DataTypeKind = iota
	KindVocabSingle
	KindReference
)

func (k DataTypeKind) String() string {
	switch k {
	case KindVocabSingle:
		return "vocab-single"
	case KindReference:
		return "reference"
	default:
		return "no-vocab"
	}
}

// Fact is a single attribute/value record derived from one node of a dictionary
// representation, before persistence.
type Fact struct {
	// NodeID is the hierarchical position of the node (e.g. "N001:L000:N000:A000").
	NodeID string

	// Term is the slash-delimited element path (e.g. "PEInfo/Sections/Section/Name").
	Term string

	// Attribute is the attribute name for attribute-facts, or empty for node value facts.
	Attribute string

	Value string
}

// FactArgs is the mutable fact-construction record handed to the hooks consulted while a fact
// is being created. Hooks may rewrite it in place to change what is ultimately stored;
// ownership is transient and the record is consumed immediately after the hooks run.
type FactArgs struct {
	DataTypeName         string
	DataTypeNamespaceURI string
	DataTypeKind         DataTypeKind

	TermName      string
	TermAttribute string
	Values        []string
	NodeID        string

	// ReferenceNamespaceURI/ReferenceUID, when set, make the fact a reference to another
	// object's identifier instead of a literal value.
	ReferenceNamespaceURI string
	ReferenceUID          string
}
