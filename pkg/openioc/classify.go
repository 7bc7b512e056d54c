package openioc

import (
	"github.com/cybercercher/openioc-db/pkg/data"
	"github.com/cybercercher/openioc-db/pkg/document"
)

// ClassifyEmbedding decides whether a child element is embedded observable content that
// should be lifted out as its own object. Only IndicatorItem elements carrying an id
// attribute qualify. The embedded type name is taken from the "document" attribute of the
// item's first Context child when present; otherwise the item is embedded with its type
// unknown.
func ClassifyEmbedding(_, child *document.Element, _ map[string]string) data.Embedding {
	if child.Name != indicatorItemTag {
		return data.Embedding{}
	}
	if _, ok := child.Attr(idAttr); !ok {
		return data.Embedding{}
	}

	emb := data.Embedding{Embedded: true}
	if ctx := child.FirstChild(contextTag); ctx != nil {
		if doc, ok := ctx.Attr(documentAttr); ok {
			emb.TypeName = doc
		}
	}
	return emb
}
