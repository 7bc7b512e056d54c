package document

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := `<?xml version="1.0" encoding="us-ascii"?>
<ioc xmlns="http://schemas.mandiant.com/2010/ioc" id="top" last-modified="2013-02-19T09:28:53">
  <short_description>Sample</short_description>
  <definition>
    <Indicator operator="OR" id="i1">
      <IndicatorItem id="a" condition="contains">
        <Context document="FileItem" search="FileItem/PEInfo/Sections/Section/Name" type="mir"/>
        <Content type="string">.stub</Content>
      </IndicatorItem>
    </Indicator>
  </definition>
</ioc>`

	doc, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "http://schemas.mandiant.com/2010/ioc", doc.Namespaces[""])

	root := doc.Root
	require.NotNil(t, root)
	assert.Equal(t, "ioc", root.Name)

	id, ok := root.Attr("id")
	require.True(t, ok)
	assert.Equal(t, "top", id)

	desc := root.FirstChild("short_description")
	require.NotNil(t, desc)
	assert.Equal(t, "Sample", desc.Text)

	indicator := root.FirstChild("definition").FirstChild("Indicator")
	require.NotNil(t, indicator)
	require.Len(t, indicator.Children, 1)

	item := indicator.Children[0]
	assert.Equal(t, "IndicatorItem", item.Name)

	content := item.FirstChild("Content")
	require.NotNil(t, content)
	assert.Equal(t, ".stub", content.Text)

	ctx := item.FirstChild("Context")
	require.NotNil(t, ctx)
	search, ok := ctx.Attr("search")
	require.True(t, ok)
	assert.Equal(t, "FileItem/PEInfo/Sections/Section/Name", search)
}

func TestParsePrefixedNamespaces(t *testing.T) {
	input := `<root xmlns:openioc="http://schemas.mandiant.com/2010/ioc">
  <openioc:child openioc:attr="v">text</openioc:child>
</root>`

	doc, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "http://schemas.mandiant.com/2010/ioc", doc.Namespaces["openioc"])

	child := doc.Root.FirstChild("child")
	require.NotNil(t, child)
	assert.Equal(t, "openioc", child.Prefix)
	assert.Equal(t, "text", child.Text)

	v, ok := child.Attr("attr")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "empty input",
			input: "",
		},
		{
			name:  "unbalanced element",
			input: "<a><b></a>",
		},
		{
			name:  "multiple roots",
			input: "<a></a><b></b>",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(test.input))
			assert.Error(t, err)
		})
	}
}

func TestExtractAttributes(t *testing.T) {
	e := &Element{
		Name: "IndicatorItem",
		Attrs: []Attr{
			{Name: "id", Value: "a"},
			{Name: "condition", Value: "is"},
		},
	}

	expected := map[string]string{
		"@id":        "a",
		"@condition": "is",
	}
	if diff := cmp.Diff(expected, ExtractAttributes(e, "@")); diff != "" {
		t.Errorf("unexpected attributes (-want +got):\n%s", diff)
	}
}
