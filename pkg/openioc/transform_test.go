package openioc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybercercher/openioc-db/pkg/data"
)

func indicatorItemDict(id, condition, search, contentType, value string) *data.Dict {
	ctx := data.NewDict()
	ctx.Set("@document", "FileItem")
	ctx.Set("@search", search)
	ctx.Set("@type", "mir")

	content := data.NewDict()
	content.Set("@type", contentType)
	content.Set(data.TextKey, value)

	d := data.NewDict()
	d.Set("@id", id)
	d.Set("@condition", condition)
	d.Set("Context", ctx)
	d.Set("Content", content)
	return d
}

func renderJSON(t *testing.T, d *data.Dict) string {
	t.Helper()
	out, err := json.Marshal(d)
	require.NoError(t, err)
	return string(out)
}

func TestTransformIndicatorItem(t *testing.T) {
	d := indicatorItemDict("X", "contains", "FileItem/PEInfo/Sections/Section/Name", "string", ".stub")

	name, result, err := TransformIndicatorItem("IndicatorItem", d)
	require.NoError(t, err)

	assert.Equal(t, "FileItem", name)
	assert.Equal(t,
		`{"@id":"X","PEInfo":{"Sections":{"Section":{"Name":{"@value_type":"string","@condition":"contains","_value":".stub"}}}}}`,
		renderJSON(t, result),
	)
}

func TestTransformIndicatorItemShortPath(t *testing.T) {
	d := indicatorItemDict("X", "is", "ProcessItem/name", "string", "svchost.exe")

	name, result, err := TransformIndicatorItem("IndicatorItem", d)
	require.NoError(t, err)

	assert.Equal(t, "ProcessItem", name)
	assert.Equal(t,
		`{"@id":"X","name":{"@value_type":"string","@condition":"is","_value":"svchost.exe"}}`,
		renderJSON(t, result),
	)
}

func TestTransformPassthrough(t *testing.T) {
	d := data.NewDict()
	d.Set(data.TextKey, "anything")

	name, result, err := TransformIndicatorItem("Indicator", d)
	require.NoError(t, err)

	assert.Equal(t, "Indicator", name)
	assert.Same(t, d, result)
}

func TestTransformMalformedItems(t *testing.T) {
	base := func() *data.Dict {
		return indicatorItemDict("X", "contains", "FileItem/PEInfo/Name", "string", ".stub")
	}

	tests := []struct {
		name   string
		mangle func(d *data.Dict) *data.Dict
	}{
		{
			name: "missing Context",
			mangle: func(d *data.Dict) *data.Dict {
				out := data.NewDict()
				for _, k := range d.Keys() {
					if k == "Context" {
						continue
					}
					v, _ := d.Get(k)
					out.Set(k, v)
				}
				return out
			},
		},
		{
			name: "missing Content",
			mangle: func(d *data.Dict) *data.Dict {
				out := data.NewDict()
				for _, k := range d.Keys() {
					if k == "Content" {
						continue
					}
					v, _ := d.Get(k)
					out.Set(k, v)
				}
				return out
			},
		},
		{
			name: "missing search attribute",
			mangle: func(d *data.Dict) *data.Dict {
				ctx := data.NewDict()
				ctx.Set("@document", "FileItem")
				d.Set("Context", ctx)
				return d
			},
		},
		{
			name: "missing content value",
			mangle: func(d *data.Dict) *data.Dict {
				content := data.NewDict()
				content.Set("@type", "string")
				d.Set("Content", content)
				return d
			},
		},
		{
			name: "missing condition attribute",
			mangle: func(d *data.Dict) *data.Dict {
				out := data.NewDict()
				for _, k := range d.Keys() {
					if k == "@condition" {
						continue
					}
					v, _ := d.Get(k)
					out.Set(k, v)
				}
				return out
			},
		},
		{
			name: "single segment search path",
			mangle: func(d *data.Dict) *data.Dict {
				ctx, _ := d.GetDict("Context")
				ctx.Set("@search", "FileItem")
				return d
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := TransformIndicatorItem("IndicatorItem", test.mangle(base()))
			assert.Error(t, err)
		})
	}
}
