package openioc

import (
	"fmt"
	"strings"
	"time"

	"github.com/scylladb/go-set/strset"

	"github.com/cybercercher/openioc-db/internal/log"
	"github.com/cybercercher/openioc-db/pkg/data"
	"github.com/cybercercher/openioc-db/pkg/store"
)

// consumedAttrs are attributes whose information is already captured elsewhere during
// import: the id becomes the object identifier, value_type becomes the fact data type, and
// idref becomes a reference fact.
var consumedAttrs = strset.New(data.RefAttr, idAttr, valueTypeAttr)

// IgnoreAttr suppresses attribute-facts for internally generated marker attributes and for
// attributes consumed upstream. Everything else is kept.
func IgnoreAttr(fact data.Fact) bool {
	if strings.Contains(fact.Attribute, data.AttrPrefix) {
		return true
	}
	return consumedAttrs.Has(fact.Attribute)
}

// ExtractDatatype derives a fact's data type. References to embedded objects take the type
// recorded by the import engine on the reference node (kind reference); leaf indicator
// values take the OpenIOC value_type attribute directly. Anything else carries no type
// information.
func ExtractDatatype(_ data.Fact, attrs map[string]string, nsMap map[string]string, args *data.FactArgs) (bool, error) {
	if _, ok := attrs[data.RefAttr]; ok {
		if typeName := attrs[data.EmbeddedTypeMarker]; typeName != "" {
			args.DataTypeName = typeName
			args.DataTypeNamespaceURI = defaultNamespace(nsMap)
			args.DataTypeKind = data.KindReference
		}
		return true, nil
	}

	if valueType, ok := attrs[valueTypeAttr]; ok {
		args.DataTypeName = valueType
		args.DataTypeNamespaceURI = defaultNamespace(nsMap)
		return true, nil
	}

	return false, nil
}

// ReferenceRule produces the fact rule that turns idref-carrying nodes into reference facts.
// The referenced object is resolved against the store, creating a placeholder revision when
// it is not present yet; the timestamp key is always available because the reference itself
// was generated during import. Reference facts are always created, never suppressed.
func ReferenceRule(w store.Writer, identifierNsURI string) data.FactRule {
	return data.FactRule{
		Name: "reference",
		Match: func(_ data.Fact, attrs map[string]string) bool {
			_, ok := attrs[data.RefAttr]
			return ok
		},
		Handle: func(_ data.Fact, attrs map[string]string, args *data.FactArgs) (bool, error) {
			uid := attrs[data.RefAttr]

			raw, ok := attrs[data.TimestampMarker]
			if !ok {
				return false, fmt.Errorf("reference to %q carries no timestamp", uid)
			}
			ts, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				return false, fmt.Errorf("unable to parse reference timestamp %q: %w", raw, err)
			}

			obj, existed, err := w.GetOrCreatePlaceholder(identifierNsURI, uid, ts)
			if err != nil {
				return false, fmt.Errorf("unable to resolve reference to %q: %w", uid, err)
			}
			log.WithFields("uid", uid, "existed", existed).Trace("resolved object reference")

			args.ReferenceNamespaceURI = obj.IdentifierNamespaceURI
			args.ReferenceUID = obj.UID
			args.Values = nil

			return true, nil
		},
	}
}

func defaultNamespace(nsMap map[string]string) string {
	if uri, ok := nsMap[""]; ok {
		return uri
	}
	return DefaultNamespaceURI
}
