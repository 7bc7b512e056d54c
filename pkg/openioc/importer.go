package openioc

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/wagoodman/go-partybus"

	"github.com/cybercercher/openioc-db/internal/bus"
	"github.com/cybercercher/openioc-db/internal/event"
	"github.com/cybercercher/openioc-db/internal/file"
	"github.com/cybercercher/openioc-db/internal/log"
	"github.com/cybercercher/openioc-db/pkg/data"
	"github.com/cybercercher/openioc-db/pkg/document"
	"github.com/cybercercher/openioc-db/pkg/process"
	"github.com/cybercercher/openioc-db/pkg/store"
)

// Importer turns OpenIOC indicator documents into stored information objects. It customizes
// the generic import engine with the OpenIOC hook set and persists the top-level object plus
// every embedded object the engine lifts out.
type Importer struct {
	store store.Store
	cfg   Config
}

func NewImporter(s store.Store, cfg Config) *Importer {
	if cfg.IdentifierNamespaceURI == "" {
		cfg.IdentifierNamespaceURI = DefaultIdentifierNamespaceURI
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Importer{
		store: s,
		cfg:   cfg,
	}
}

// ImportFile imports the OpenIOC document at the given path. A digest of the file content is
// recorded as an additional provenance marking on every generated object.
func (i *Importer) ImportFile(path string) (event.ImportSummary, error) {
	digest, err := file.ContentDigest(afero.NewOsFs(), path)
	if err != nil {
		return event.ImportSummary{}, fmt.Errorf("unable to digest %q: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return event.ImportSummary{}, fmt.Errorf("unable to open %q: %w", path, err)
	}
	defer f.Close()

	return i.importReader(f, path, digest)
}

// Import imports an OpenIOC document from the reader; source is recorded for reporting only.
func (i *Importer) Import(r io.Reader, source string) (event.ImportSummary, error) {
	return i.importReader(r, source, "")
}

func (i *Importer) importReader(r io.Reader, source, digest string) (event.ImportSummary, error) {
	doc, err := document.Parse(r)
	if err != nil {
		return event.ImportSummary{}, fmt.Errorf("unable to parse %q: %w", source, err)
	}

	// elements without a prefix belong to the OpenIOC default namespace unless the document
	// declares its own default
	nsMap := map[string]string{
		"": DefaultNamespaceURI,
	}

	hooks := data.Hooks{
		IdentityExtractor:   ExtractIdentity,
		EmbeddingClassifier: ClassifyEmbedding,
		Transformer:         TransformIndicatorItem,
		AttrIgnore:          IgnoreAttr,
		DatatypeExtractor:   ExtractDatatype,
		FactRules: []data.FactRule{
			ReferenceRule(i.store, i.cfg.IdentifierNamespaceURI),
		},
	}

	createTimestamp := i.cfg.Now().UTC()

	engine := process.NewImporter(hooks, nsMap)
	engine.SetClock(func() time.Time { return createTimestamp })

	result, err := engine.Import(doc)
	if err != nil {
		return event.ImportSummary{}, fmt.Errorf("unable to import %q: %w", source, err)
	}

	familyName, familyRevision := classifyFamily(result.Dict, nsMap)

	markings := append([]string{}, i.cfg.Markings...)
	if digest != "" {
		markings = append(markings, digest)
	}

	pending := append([]process.Result{*result}, result.Embedded...)

	summary := event.ImportSummary{
		Source:  source,
		Objects: len(pending),
	}

	for _, res := range pending {
		uid := res.Identity.ID
		if uid == "" {
			uid = uuid.NewString()
		}

		// each object is stored under its own revision timestamp, which for embedded
		// objects is exactly the timestamp recorded on the reference node pointing at it
		objTimestamp := createTimestamp
		if res.Identity.Timestamp != nil {
			objTimestamp = *res.Identity.Timestamp
		}

		obj, err := process.WriteObject(i.store, process.ObjectSpec{
			UID:                    uid,
			IdentifierNamespaceURI: i.cfg.IdentifierNamespaceURI,
			Timestamp:              objTimestamp,
			CreateTimestamp:        createTimestamp,
			FamilyName:             familyName,
			FamilyRevision:         familyRevision,
			TypeName:               res.Name,
			TypeNamespaceURI:       typeNamespace(res.Dict, nsMap),
			Markings:               markings,
		}, res.Dict, hooks, nsMap)
		if err != nil {
			return summary, err
		}
		summary.Facts += len(obj.Facts)
	}

	log.WithFields("source", source, "objects", summary.Objects, "facts", summary.Facts).Info("import finished")

	bus.Publish(partybus.Event{
		Type:  event.ImportFinished,
		Value: summary,
	})

	return summary, nil
}

// classifyFamily derives the object family from the root element's namespace URI. Mandiant
// schema URIs encode revision and family; anything else falls back to the generic family.
func classifyFamily(dict *data.Dict, nsMap map[string]string) (name, revision string) {
	prefix, _ := dict.GetString(data.NamespaceKey)
	uri, ok := nsMap[prefix]
	if !ok {
		uri = unknownFamilyNamespaceURI
	}

	if m := familyPattern.FindStringSubmatch(uri); m != nil {
		return m[2], m[1]
	}
	return DefaultFamilyName, ""
}

func typeNamespace(dict *data.Dict, nsMap map[string]string) string {
	prefix, _ := dict.GetString(data.NamespaceKey)
	if uri, ok := nsMap[prefix]; ok {
		return uri
	}
	return DefaultNamespaceURI
}
