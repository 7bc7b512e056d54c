package process

import (
	"time"

	"github.com/google/uuid"

	"github.com/cybercercher/openioc-db/internal/log"
	"github.com/cybercercher/openioc-db/pkg/data"
	"github.com/cybercercher/openioc-db/pkg/document"
)

// Result is the uniform outcome of importing one element tree: the extracted id/revision
// record, the (possibly transformer-rewritten) element name, the dictionary representation,
// and any embedded objects discovered below it.
type Result struct {
	Identity data.Identity
	Name     string
	Dict     *data.Dict
	Embedded []Result
}

// Importer converts element trees into dictionary representations, customized by the
// injected hook set. Embedded children recognized by the classifier are lifted out as
// separate results and replaced in the parent dictionary by a generated reference node.
type Importer struct {
	hooks data.Hooks
	nsMap map[string]string
	now   func() time.Time

	embedded []Result
}

func NewImporter(hooks data.Hooks, nsMap map[string]string) *Importer {
	if nsMap == nil {
		nsMap = make(map[string]string)
	}
	return &Importer{
		hooks: hooks,
		nsMap: nsMap,
		now:   time.Now,
	}
}

// SetClock replaces the clock used for reference timestamps, so that all timestamps
// generated within one import round agree.
func (i *Importer) SetClock(now func() time.Time) {
	i.now = now
}

// Import converts the document into a Result. The namespace declarations found in the
// document are merged into the importer's namespace map, so later prefix lookups (e.g. by
// the datatype extractor) observe the document's own namespaces.
func (i *Importer) Import(doc *document.Document) (*Result, error) {
	for prefix, uri := range doc.Namespaces {
		i.nsMap[prefix] = uri
	}
	i.embedded = nil

	identity, err := i.extractIdentity(doc.Root)
	if err != nil {
		return nil, err
	}

	name, dict, err := i.convert(doc.Root)
	if err != nil {
		return nil, err
	}

	log.WithFields("name", name, "embedded", len(i.embedded)).Debug("converted document")

	return &Result{
		Identity: identity,
		Name:     name,
		Dict:     dict,
		Embedded: i.embedded,
	}, nil
}

func (i *Importer) extractIdentity(elt *document.Element) (data.Identity, error) {
	if i.hooks.IdentityExtractor == nil {
		return data.Identity{}, nil
	}
	return i.hooks.IdentityExtractor(elt)
}

// convert turns one element (and its subtree) into a dictionary, applying the transformer as
// its final step. The returned name is the effective element name after transformation.
func (i *Importer) convert(elt *document.Element) (string, *data.Dict, error) {
	dict := data.NewDict()

	if elt.Prefix != "" {
		dict.Set(data.NamespaceKey, elt.Prefix)
	}

	for _, attr := range elt.Attrs {
		dict.Set(data.AttrPrefix+attr.Name, attr.Value)
	}

	for _, child := range elt.Children {
		if i.hooks.EmbeddingClassifier != nil {
			if emb := i.hooks.EmbeddingClassifier(elt, child, i.nsMap); emb.Embedded {
				ref, err := i.liftEmbedded(child, emb)
				if err != nil {
					return "", nil, err
				}
				insert(dict, child.Name, ref)
				continue
			}
		}

		name, converted, err := i.convert(child)
		if err != nil {
			return "", nil, err
		}
		insert(dict, name, converted)
	}

	if elt.Text != "" {
		dict.Set(data.TextKey, elt.Text)
	}

	if i.hooks.Transformer != nil {
		return i.hooks.Transformer(elt.Name, dict)
	}

	return elt.Name, dict, nil
}

// liftEmbedded imports the child as a separate result and returns the reference node that
// takes its place in the parent dictionary. References always carry a timestamp so that
// later resolution against the store is well-defined.
func (i *Importer) liftEmbedded(child *document.Element, emb data.Embedding) (*data.Dict, error) {
	identity, err := i.extractIdentity(child)
	if err != nil {
		return nil, err
	}
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}

	// the timestamp recorded on the reference node must match the timestamp the embedded
	// object is later stored under, otherwise the reference can never be resolved
	ts := i.now().UTC()
	if identity.Timestamp != nil {
		ts = *identity.Timestamp
	} else {
		identity.Timestamp = &ts
	}

	name, converted, err := i.convert(child)
	if err != nil {
		return nil, err
	}

	i.embedded = append(i.embedded, Result{
		Identity: identity,
		Name:     name,
		Dict:     converted,
	})

	ref := data.NewDict()
	if i.hooks.KeepReferenceAttrs {
		for _, attr := range child.Attrs {
			ref.Set(data.AttrPrefix+attr.Name, attr.Value)
		}
	}
	ref.Set(data.AttrPrefix+data.RefAttr, identity.ID)
	ref.Set(data.AttrPrefix+data.TimestampMarker, ts.Format(time.RFC3339Nano))
	if emb.TypeName != "" {
		ref.Set(data.AttrPrefix+data.EmbeddedTypeMarker, emb.TypeName)
	}

	log.WithFields("uid", identity.ID, "type", emb.TypeName).Trace("lifted embedded element")

	return ref, nil
}

// insert adds a converted child under its name, collapsing repeated names into a list.
func insert(parent *data.Dict, name string, child *data.Dict) {
	existing, ok := parent.Get(name)
	if !ok {
		parent.Set(name, child)
		return
	}

	switch v := existing.(type) {
	case *data.Dict:
		parent.Set(name, []*data.Dict{v, child})
	case []*data.Dict:
		parent.Set(name, append(v, child))
	default:
		// an attribute or text collision should not occur for well-formed input
		parent.Set(name, child)
	}
}
