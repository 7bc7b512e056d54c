package openioc

import (
	"regexp"
	"time"
)

// Element and attribute names of the OpenIOC schema consulted by the hooks.
const (
	indicatorItemTag = "IndicatorItem"
	contextTag       = "Context"
	contentTag       = "Content"

	idAttr           = "id"
	lastModifiedAttr = "last-modified"
	conditionAttr    = "condition"
	searchAttr       = "search"
	documentAttr     = "document"
	valueTypeAttr    = "value_type"
	contentTypeAttr  = "type"
)

const (
	// DefaultFamilyName is used when the document namespace does not encode a family.
	DefaultFamilyName = "ioc"

	// DefaultNamespaceURI is assumed for elements written without a namespace prefix.
	DefaultNamespaceURI = "http://schemas.mandiant.com/2010/ioc"

	// DefaultIdentifierNamespaceURI identifies the owner of imported objects when the caller
	// does not name one. Pick a namespace for the actual publisher of the imported documents
	// (e.g. "mandiant.com") and use it consistently across imports.
	DefaultIdentifierNamespaceURI = "openioc-db.invalid"

	// unknownFamilyNamespaceURI stands in when the root element's namespace prefix is not
	// declared anywhere in the document.
	unknownFamilyNamespaceURI = "http://schemas.mandiant.com/unknown/ioc"
)

// familyPattern recognizes mandiant schema URIs of the form
// http://schemas.mandiant.com/<revision>/<family>.
var familyPattern = regexp.MustCompile(`http://schemas\.mandiant\.com/([0-9]+)/([^/]+)`)

// Config is the per-import configuration, threaded through each call rather than held as
// mutable importer state.
type Config struct {
	// IdentifierNamespaceURI names the owner namespace for the identifiers of all objects
	// generated by the import.
	IdentifierNamespaceURI string

	// Markings are provenance strings attached to every generated object.
	Markings []string

	// Now is the clock used for creation timestamps (defaults to time.Now).
	Now func() time.Time
}

func DefaultConfig() Config {
	return Config{
		IdentifierNamespaceURI: DefaultIdentifierNamespaceURI,
		Now:                    time.Now,
	}
}
