package process

import (
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybercercher/openioc-db/pkg/data"
	"github.com/cybercercher/openioc-db/pkg/store"
	"github.com/cybercercher/openioc-db/pkg/store/memory"
)

func TestFactsNodeIDScheme(t *testing.T) {
	item := func(value string) *data.Dict {
		d := data.NewDict()
		d.Set("@kind", "k")
		d.Set(data.TextKey, value)
		return d
	}

	inner := data.NewDict()
	inner.Set("Item", []*data.Dict{item("one"), item("two")})

	d := data.NewDict()
	d.Set("@top", "t")
	d.Set("Single", item("solo"))
	d.Set("List", inner)

	facts, err := Facts(d, data.Hooks{}, nil)
	require.NoError(t, err)

	expected := []store.Fact{
		{NodeID: "A000", Term: "", Attribute: "top", Value: "t"},
		{NodeID: "N000", Term: "Single", Value: "solo"},
		{NodeID: "N000:A000", Term: "Single", Attribute: "kind", Value: "k"},
		{NodeID: "N001:N000:L000", Term: "List/Item", Value: "one"},
		{NodeID: "N001:N000:L000:A000", Term: "List/Item", Attribute: "kind", Value: "k"},
		{NodeID: "N001:N000:L001", Term: "List/Item", Value: "two"},
		{NodeID: "N001:N000:L001:A000", Term: "List/Item", Attribute: "kind", Value: "k"},
	}

	if diff := deep.Equal(expected, facts); diff != nil {
		for _, d := range diff {
			t.Error(d)
		}
	}
}

func TestFactsAttrSuppression(t *testing.T) {
	d := data.NewDict()
	d.Set("@keep", "1")
	d.Set("@drop", "2")
	d.Set(data.TextKey, "v")

	hooks := data.Hooks{
		AttrIgnore: func(fact data.Fact) bool {
			return fact.Attribute == "drop"
		},
	}

	facts, err := Facts(d, hooks, nil)
	require.NoError(t, err)

	require.Len(t, facts, 2)
	assert.Equal(t, "", facts[0].Attribute)
	assert.Equal(t, "keep", facts[1].Attribute)
	// the attribute index reflects the position among all attributes, including suppressed ones
	assert.Equal(t, "A000", facts[1].NodeID)
}

func TestFactsDatatypeExtractor(t *testing.T) {
	leaf := data.NewDict()
	leaf.Set("@value_type", "md5")
	leaf.Set(data.TextKey, "d41d8cd98f00b204e9800998ecf8427e")

	d := data.NewDict()
	d.Set("Hash", leaf)

	hooks := data.Hooks{
		DatatypeExtractor: func(_ data.Fact, attrs map[string]string, _ map[string]string, args *data.FactArgs) (bool, error) {
			if vt, ok := attrs["value_type"]; ok {
				args.DataTypeName = vt
				args.DataTypeNamespaceURI = "http://example.com/types"
				return true, nil
			}
			return false, nil
		},
		AttrIgnore: func(fact data.Fact) bool {
			return fact.Attribute == "value_type"
		},
	}

	facts, err := Facts(d, hooks, nil)
	require.NoError(t, err)

	require.Len(t, facts, 1)
	assert.Equal(t, "Hash", facts[0].Term)
	assert.Equal(t, "md5", facts[0].DataTypeName)
	assert.Equal(t, "http://example.com/types", facts[0].DataTypeNamespaceURI)
	assert.Equal(t, "no-vocab", facts[0].DataTypeKind)
}

func TestFactsRuleOrder(t *testing.T) {
	d := data.NewDict()
	d.Set("@flag", "x")
	d.Set(data.TextKey, "v")

	var applied []string
	rule := func(name string, create bool) data.FactRule {
		return data.FactRule{
			Name: name,
			Match: func(_ data.Fact, attrs map[string]string) bool {
				_, ok := attrs["flag"]
				return ok
			},
			Handle: func(_ data.Fact, _ map[string]string, _ *data.FactArgs) (bool, error) {
				applied = append(applied, name)
				return create, nil
			},
		}
	}

	hooks := data.Hooks{
		AttrIgnore: func(data.Fact) bool { return true },
		FactRules: []data.FactRule{
			rule("first", true),
			rule("second", true),
		},
	}

	facts, err := Facts(d, hooks, nil)
	require.NoError(t, err)

	// first match wins, remaining rules are not consulted
	assert.Equal(t, []string{"first"}, applied)
	assert.Len(t, facts, 1)
}

func TestFactsRuleSuppressesCreation(t *testing.T) {
	d := data.NewDict()
	d.Set("@flag", "x")
	d.Set(data.TextKey, "v")

	hooks := data.Hooks{
		AttrIgnore: func(data.Fact) bool { return true },
		FactRules: []data.FactRule{
			{
				Name: "suppress",
				Match: func(_ data.Fact, attrs map[string]string) bool {
					_, ok := attrs["flag"]
					return ok
				},
				Handle: func(_ data.Fact, _ map[string]string, _ *data.FactArgs) (bool, error) {
					return false, nil
				},
			},
		},
	}

	facts, err := Facts(d, hooks, nil)
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestWriteObject(t *testing.T) {
	s := memory.NewStore()

	d := data.NewDict()
	d.Set(data.TextKey, "v")

	ts := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	spec := ObjectSpec{
		UID:                    "obj-1",
		IdentifierNamespaceURI: "example.com",
		Timestamp:              ts,
		CreateTimestamp:        ts,
		FamilyName:             "ioc",
		FamilyRevision:         "2010",
		TypeName:               "FileItem",
		TypeNamespaceURI:       "http://example.com/ns",
		Markings:               []string{"m1"},
	}

	obj, err := WriteObject(s, spec, d, data.Hooks{}, nil)
	require.NoError(t, err)
	require.Len(t, obj.Facts, 1)

	stored, err := s.GetInfoObject("example.com", "obj-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)

	if diff := deep.Equal(*obj, stored[0]); diff != nil {
		for _, d := range diff {
			t.Error(d)
		}
	}
}

func TestWriteObjectFillsPlaceholder(t *testing.T) {
	s := memory.NewStore()
	ts := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

	_, existed, err := s.GetOrCreatePlaceholder("example.com", "obj-1", ts)
	require.NoError(t, err)
	assert.False(t, existed)

	d := data.NewDict()
	d.Set(data.TextKey, "v")

	_, err = WriteObject(s, ObjectSpec{
		UID:                    "obj-1",
		IdentifierNamespaceURI: "example.com",
		Timestamp:              ts,
		CreateTimestamp:        ts,
		TypeName:               "FileItem",
	}, d, data.Hooks{}, nil)
	require.NoError(t, err)

	stored, err := s.GetInfoObject("example.com", "obj-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.False(t, stored[0].Placeholder)
	assert.Equal(t, "FileItem", stored[0].TypeName)
}
