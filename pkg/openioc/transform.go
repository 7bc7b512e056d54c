package openioc

import (
	"fmt"
	"strings"

	"github.com/cybercercher/openioc-db/pkg/data"
)

// TransformIndicatorItem rewrites an IndicatorItem element into a path-structured record.
// The Context search path (e.g. "FileItem/PEInfo/Sections/Section/Name") names the parent
// document type in its first segment; the remaining segments become the nested path under
// which a leaf record {value_type, condition, value} is inserted. The effective element name
// becomes the document type. All other elements pass through unchanged.
//
// The transform assumes well-formed OpenIOC input: a missing Context, Content, or any of
// their expected attributes is an error that aborts the import.
func TransformIndicatorItem(name string, contents *data.Dict) (string, *data.Dict, error) {
	if name != indicatorItemTag {
		return name, contents, nil
	}

	ctx, ok := contents.GetDict(contextTag)
	if !ok {
		return "", nil, fmt.Errorf("%s has no %s element", indicatorItemTag, contextTag)
	}
	search, ok := ctx.GetString(data.AttrPrefix + searchAttr)
	if !ok {
		return "", nil, fmt.Errorf("%s %s has no %s attribute", indicatorItemTag, contextTag, searchAttr)
	}

	content, ok := contents.GetDict(contentTag)
	if !ok {
		return "", nil, fmt.Errorf("%s has no %s element", indicatorItemTag, contentTag)
	}
	value, ok := content.GetString(data.TextKey)
	if !ok {
		return "", nil, fmt.Errorf("%s %s has no value", indicatorItemTag, contentTag)
	}
	valueType, ok := content.GetString(data.AttrPrefix + contentTypeAttr)
	if !ok {
		return "", nil, fmt.Errorf("%s %s has no %s attribute", indicatorItemTag, contentTag, contentTypeAttr)
	}

	condition, ok := contents.GetString(data.AttrPrefix + conditionAttr)
	if !ok {
		return "", nil, fmt.Errorf("%s has no %s attribute", indicatorItemTag, conditionAttr)
	}
	id, ok := contents.GetString(data.AttrPrefix + idAttr)
	if !ok {
		return "", nil, fmt.Errorf("%s has no %s attribute", indicatorItemTag, idAttr)
	}

	segments := strings.Split(search, "/")
	if len(segments) < 2 {
		return "", nil, fmt.Errorf("%s search path %q has no item segments", indicatorItemTag, search)
	}

	leaf := data.NewDict()
	leaf.Set(data.AttrPrefix+valueTypeAttr, valueType)
	leaf.Set(data.AttrPrefix+conditionAttr, condition)
	leaf.Set(data.TextKey, value)

	result := data.NewDict()
	result.Set(data.AttrPrefix+idAttr, id)
	result.SetPath(leaf, segments[1:]...)

	return segments[0], result, nil
}
