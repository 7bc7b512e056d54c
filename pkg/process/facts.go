package process

import (
	"fmt"
	"strings"
	"time"

	"github.com/cybercercher/openioc-db/internal/log"
	"github.com/cybercercher/openioc-db/pkg/data"
	"github.com/cybercercher/openioc-db/pkg/store"
)

// ObjectSpec carries everything needed to persist one dictionary representation as an
// information object.
type ObjectSpec struct {
	UID                    string
	IdentifierNamespaceURI string
	Timestamp              time.Time
	CreateTimestamp        time.Time

	FamilyName     string
	FamilyRevision string

	TypeName         string
	TypeNamespaceURI string
	TypeRevision     string

	Markings []string
}

// WriteObject flattens the dictionary into facts (consulting the fact-side hooks) and writes
// the resulting object through the store.
func WriteObject(w store.Writer, spec ObjectSpec, dict *data.Dict, hooks data.Hooks, nsMap map[string]string) (*store.InfoObject, error) {
	facts, err := Facts(dict, hooks, nsMap)
	if err != nil {
		return nil, fmt.Errorf("unable to generate facts for %q: %w", spec.UID, err)
	}

	obj := &store.InfoObject{
		UID:                    spec.UID,
		IdentifierNamespaceURI: spec.IdentifierNamespaceURI,
		Timestamp:              spec.Timestamp.UTC(),
		CreateTimestamp:        spec.CreateTimestamp.UTC(),
		FamilyName:             spec.FamilyName,
		FamilyRevision:         spec.FamilyRevision,
		TypeName:               spec.TypeName,
		TypeNamespaceURI:       spec.TypeNamespaceURI,
		TypeRevision:           spec.TypeRevision,
		Markings:               spec.Markings,
		Facts:                  facts,
	}

	log.WithFields("uid", spec.UID, "type", spec.TypeName, "facts", len(facts)).Debug("writing object")

	if err := w.AddInfoObject(obj); err != nil {
		return nil, fmt.Errorf("unable to write object %q: %w", spec.UID, err)
	}

	return obj, nil
}

// Facts flattens a dictionary representation into persistable facts. Each node with a value
// (or a reference attribute) produces one node fact; each node attribute produces one
// attribute fact unless the suppression predicate vetoes it. Node ids encode the position in
// the dictionary ("N" element, "L" list entry, "A" attribute segments).
func Facts(dict *data.Dict, hooks data.Hooks, nsMap map[string]string) ([]store.Fact, error) {
	w := factWalker{
		hooks: hooks,
		nsMap: nsMap,
	}
	if err := w.walk(dict, nil, nil); err != nil {
		return nil, err
	}
	return w.facts, nil
}

type factWalker struct {
	hooks data.Hooks
	nsMap map[string]string
	facts []store.Fact
}

func (w *factWalker) walk(dict *data.Dict, term, nodeID []string) error {
	attrs := make(map[string]string)
	attrKeys := make([]string, 0)
	var text string
	var hasText bool

	for _, key := range dict.Keys() {
		switch {
		case key == data.TextKey:
			text, _ = dict.GetString(key)
			hasText = true
		case strings.HasPrefix(key, data.AttrPrefix):
			name := strings.TrimPrefix(key, data.AttrPrefix)
			value, _ := dict.GetString(key)
			attrs[name] = value
			attrKeys = append(attrKeys, name)
		}
	}

	_, isRef := attrs[data.RefAttr]
	if hasText || isRef {
		if err := w.nodeFact(term, nodeID, text, attrs); err != nil {
			return err
		}
	}

	for idx, name := range attrKeys {
		w.attrFact(term, nodeID, idx, name, attrs)
	}

	childIdx := 0
	for _, key := range dict.Keys() {
		if key == data.TextKey || strings.HasPrefix(key, data.AttrPrefix) {
			continue
		}
		value, _ := dict.Get(key)
		childTerm := append(append([]string{}, term...), key)
		childID := append(append([]string{}, nodeID...), fmt.Sprintf("N%03d", childIdx))

		switch child := value.(type) {
		case *data.Dict:
			if err := w.walk(child, childTerm, childID); err != nil {
				return err
			}
		case []*data.Dict:
			for listIdx, item := range child {
				itemID := append(append([]string{}, childID...), fmt.Sprintf("L%03d", listIdx))
				if err := w.walk(item, childTerm, itemID); err != nil {
					return err
				}
			}
		}
		childIdx++
	}

	return nil
}

func (w *factWalker) nodeFact(term, nodeID []string, value string, attrs map[string]string) error {
	fact := data.Fact{
		NodeID: strings.Join(nodeID, ":"),
		Term:   strings.Join(term, "/"),
		Value:  value,
	}

	args := data.FactArgs{
		TermName: fact.Term,
		NodeID:   fact.NodeID,
	}
	if value != "" {
		args.Values = []string{value}
	}

	if w.hooks.DatatypeExtractor != nil {
		if _, err := w.hooks.DatatypeExtractor(fact, attrs, w.nsMap, &args); err != nil {
			return err
		}
	}

	for _, rule := range w.hooks.FactRules {
		if rule.Match == nil || !rule.Match(fact, attrs) {
			continue
		}
		create, err := rule.Handle(fact, attrs, &args)
		if err != nil {
			return fmt.Errorf("fact rule %q failed: %w", rule.Name, err)
		}
		if !create {
			return nil
		}
		break
	}

	w.facts = append(w.facts, newStoreFact(args, ""))
	return nil
}

func (w *factWalker) attrFact(term, nodeID []string, idx int, name string, attrs map[string]string) {
	fact := data.Fact{
		NodeID:    strings.Join(append(append([]string{}, nodeID...), fmt.Sprintf("A%03d", idx)), ":"),
		Term:      strings.Join(term, "/"),
		Attribute: name,
		Value:     attrs[name],
	}

	if w.hooks.AttrIgnore != nil && w.hooks.AttrIgnore(fact) {
		return
	}

	args := data.FactArgs{
		TermName:      fact.Term,
		TermAttribute: name,
		NodeID:        fact.NodeID,
		Values:        []string{fact.Value},
	}

	if w.hooks.DatatypeExtractor != nil {
		// attribute facts never fail datatype extraction in practice; a failure here would
		// have already surfaced on the owning node fact
		_, _ = w.hooks.DatatypeExtractor(fact, attrs, w.nsMap, &args)
	}

	w.facts = append(w.facts, newStoreFact(args, name))
}

func newStoreFact(args data.FactArgs, attribute string) store.Fact {
	f := store.Fact{
		NodeID:               args.NodeID,
		Term:                 args.TermName,
		Attribute:            attribute,
		DataTypeName:         args.DataTypeName,
		DataTypeNamespaceURI: args.DataTypeNamespaceURI,
		RefNamespaceURI:      args.ReferenceNamespaceURI,
		RefUID:               args.ReferenceUID,
	}
	if len(args.Values) > 0 {
		f.Value = args.Values[0]
	}
	if args.DataTypeName != "" || args.ReferenceUID != "" {
		f.DataTypeKind = args.DataTypeKind.String()
	}
	return f
}
