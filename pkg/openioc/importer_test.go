package openioc

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybercercher/openioc-db/pkg/store"
	"github.com/cybercercher/openioc-db/pkg/store/memory"
)

const fixture = "test-fixtures/apt1-sample.ioc"

func testConfig() Config {
	return Config{
		IdentifierNamespaceURI: "mandiant.com",
		Markings:               []string{"apt1-report"},
		Now: func() time.Time {
			return time.Date(2013, 3, 1, 12, 0, 0, 0, time.UTC)
		},
	}
}

func TestImportDocument(t *testing.T) {
	s := memory.NewStore()
	cfg := testConfig()

	f, err := os.Open(fixture)
	require.NoError(t, err)
	defer f.Close()

	summary, err := NewImporter(s, cfg).Import(f, fixture)
	require.NoError(t, err)

	assert.Equal(t, fixture, summary.Source)
	assert.Equal(t, 3, summary.Objects)
	assert.NotZero(t, summary.Facts)

	count, err := s.CountInfoObjects()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	// no dangling placeholders: every reference was resolved to an imported object
	for _, revisions := range s.All() {
		for _, obj := range revisions {
			assert.False(t, obj.Placeholder, "unexpected placeholder: %s", obj)
		}
	}

	top := getObject(t, s, "mandiant.com", "ea3cab0c-72ad-40cc-abbf-90846fa4afec")
	assert.Equal(t, "ioc", top.TypeName)
	assert.Equal(t, "ioc", top.FamilyName)
	assert.Equal(t, "2010", top.FamilyRevision)
	assert.Equal(t, "http://schemas.mandiant.com/2010/ioc", top.TypeNamespaceURI)
	assert.Equal(t, []string{"apt1-report"}, top.Markings)
	// the revision timestamp comes from the last-modified attribute, interpreted as UTC
	assert.True(t, top.Timestamp.Equal(time.Date(2013, 2, 19, 9, 28, 53, 0, time.UTC)))
	assert.True(t, top.CreateTimestamp.Equal(cfg.Now()))

	fileItem := getObject(t, s, "mandiant.com", "5be9b5a6-1c3b-4a43-ab31-51ba6b45f44e")
	assert.Equal(t, "FileItem", fileItem.TypeName)
	assert.Equal(t, "ioc", fileItem.FamilyName)
	// embedded objects carry no timestamp of their own and fall back to the shared clock
	assert.True(t, fileItem.Timestamp.Equal(cfg.Now()))

	processItem := getObject(t, s, "mandiant.com", "3b0c4bd5-c4f4-4a2e-9be6-8ff2f3fcf44b")
	assert.Equal(t, "ProcessItem", processItem.TypeName)
}

func TestImportTopLevelFacts(t *testing.T) {
	s := memory.NewStore()

	f, err := os.Open(fixture)
	require.NoError(t, err)
	defer f.Close()

	_, err = NewImporter(s, testConfig()).Import(f, fixture)
	require.NoError(t, err)

	top := getObject(t, s, "mandiant.com", "ea3cab0c-72ad-40cc-abbf-90846fa4afec")

	desc := getFact(t, top, "short_description", "")
	assert.Equal(t, "Sample malware indicator", desc.Value)
	assert.Equal(t, "N000", desc.NodeID)

	lastModified := getFact(t, top, "", "last-modified")
	assert.Equal(t, "2013-02-19T09:28:53", lastModified.Value)

	operator := getFact(t, top, "definition/Indicator", "operator")
	assert.Equal(t, "OR", operator.Value)

	// both indicator items were replaced by references to the lifted objects
	var refs []store.Fact
	for _, fact := range top.Facts {
		if fact.RefUID != "" {
			refs = append(refs, fact)
		}
	}
	require.Len(t, refs, 2)

	assert.Equal(t, "5be9b5a6-1c3b-4a43-ab31-51ba6b45f44e", refs[0].RefUID)
	assert.Equal(t, "mandiant.com", refs[0].RefNamespaceURI)
	assert.Equal(t, "definition/Indicator/IndicatorItem", refs[0].Term)
	assert.Equal(t, "N002:N000:N000:L000", refs[0].NodeID)
	assert.Equal(t, "FileItem", refs[0].DataTypeName)
	assert.Equal(t, "reference", refs[0].DataTypeKind)
	assert.Empty(t, refs[0].Value)

	assert.Equal(t, "3b0c4bd5-c4f4-4a2e-9be6-8ff2f3fcf44b", refs[1].RefUID)
	assert.Equal(t, "ProcessItem", refs[1].DataTypeName)
	assert.Equal(t, "N002:N000:N000:L001", refs[1].NodeID)
}

func TestImportEmbeddedFacts(t *testing.T) {
	s := memory.NewStore()

	f, err := os.Open(fixture)
	require.NoError(t, err)
	defer f.Close()

	_, err = NewImporter(s, testConfig()).Import(f, fixture)
	require.NoError(t, err)

	fileItem := getObject(t, s, "mandiant.com", "5be9b5a6-1c3b-4a43-ab31-51ba6b45f44e")

	name := getFact(t, fileItem, "PEInfo/Sections/Section/Name", "")
	assert.Equal(t, ".stub", name.Value)
	assert.Equal(t, "string", name.DataTypeName)
	assert.Equal(t, "no-vocab", name.DataTypeKind)
	assert.Equal(t, "N000:N000:N000:N000", name.NodeID)

	condition := getFact(t, fileItem, "PEInfo/Sections/Section/Name", "condition")
	assert.Equal(t, "contains", condition.Value)

	// id and value_type attributes are consumed upstream and produce no facts
	for _, fact := range fileItem.Facts {
		assert.NotEqual(t, "id", fact.Attribute)
		assert.NotEqual(t, "value_type", fact.Attribute)
	}

	processItem := getObject(t, s, "mandiant.com", "3b0c4bd5-c4f4-4a2e-9be6-8ff2f3fcf44b")
	procName := getFact(t, processItem, "name", "")
	assert.Equal(t, "svchost.exe", procName.Value)
}

func TestImportFileRecordsDigestMarking(t *testing.T) {
	s := memory.NewStore()

	summary, err := NewImporter(s, testConfig()).ImportFile(fixture)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Objects)

	top := getObject(t, s, "mandiant.com", "ea3cab0c-72ad-40cc-abbf-90846fa4afec")
	require.Len(t, top.Markings, 2)
	assert.Equal(t, "apt1-report", top.Markings[0])
	assert.True(t, strings.HasPrefix(top.Markings[1], "xxh64:"), "unexpected marking: %q", top.Markings[1])
}

func TestImportMalformedDocument(t *testing.T) {
	s := memory.NewStore()

	_, err := NewImporter(s, testConfig()).Import(strings.NewReader("<ioc><definition></ioc>"), "inline")
	assert.Error(t, err)
}

func getObject(t *testing.T, s *memory.Store, namespaceURI, uid string) store.InfoObject {
	t.Helper()
	objs, err := s.GetInfoObject(namespaceURI, uid)
	require.NoError(t, err)
	require.Len(t, objs, 1, "expected exactly one revision for %q", uid)
	return objs[0]
}

func getFact(t *testing.T, obj store.InfoObject, term, attribute string) store.Fact {
	t.Helper()
	for _, fact := range obj.Facts {
		if fact.Term == term && fact.Attribute == attribute {
			return fact
		}
	}
	require.Failf(t, "fact not found", "term=%q attribute=%q in %s", term, attribute, obj)
	return store.Fact{}
}
