package data

import "github.com/cybercercher/openioc-db/pkg/document"

// Transformer rewrites a converted element before it is inserted into its parent dictionary.
// It may change the effective element name. Returning the inputs unchanged is the common case.
type Transformer func(name string, contents *Dict) (string, *Dict, error)

// IdentityExtractor pulls an id/revision record out of an element's attributes.
type IdentityExtractor func(elt *document.Element) (Identity, error)

// Embedding is the verdict of an EmbeddingClassifier: not embedded, embedded with a known
// type name, or embedded with the type unknown (Embedded true, TypeName empty).
type Embedding struct {
	Embedded bool
	TypeName string
}

// EmbeddingClassifier decides whether a child element represents embedded content that should
// be lifted out as a separate object during import.
type EmbeddingClassifier func(parent, child *document.Element, nsMap map[string]string) Embedding

// AttrIgnorePredicate is consulted for each fact that would be generated from an XML
// attribute; returning true suppresses creation of that fact.
type AttrIgnorePredicate func(fact Fact) bool

// DatatypeExtractor determines the data type of a fact, mutating args when type information
// is found and reporting whether it was.
type DatatypeExtractor func(fact Fact, attrs map[string]string, nsMap map[string]string, args *FactArgs) (bool, error)

// FactHandler may mutate the fact-construction args; returning false suppresses creation of
// the fact entirely.
type FactHandler func(fact Fact, attrs map[string]string, args *FactArgs) (bool, error)

// FactRule pairs a match predicate with a handler. Rules are evaluated in order and the first
// match wins; remaining rules are not consulted.
type FactRule struct {
	Name   string
	Match  func(fact Fact, attrs map[string]string) bool
	Handle FactHandler
}

// Hooks is the full customization surface consulted by the generic import engine.
type Hooks struct {
	IdentityExtractor   IdentityExtractor
	EmbeddingClassifier EmbeddingClassifier
	Transformer         Transformer
	FactRules           []FactRule
	AttrIgnore          AttrIgnorePredicate
	DatatypeExtractor   DatatypeExtractor

	// KeepReferenceAttrs controls whether the original attributes of an embedded element are
	// retained on the reference node generated in its place.
	KeepReferenceAttrs bool
}
