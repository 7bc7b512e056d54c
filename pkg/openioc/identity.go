package openioc

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"

	"github.com/cybercercher/openioc-db/pkg/data"
	"github.com/cybercercher/openioc-db/pkg/document"
)

// ExtractIdentity pulls the id/revision record out of an element. In OpenIOC the identifier
// is the "id" attribute; the top-level "ioc" element additionally carries a revision
// timestamp in "last-modified". Missing attributes leave the corresponding field empty;
// a malformed timestamp is an error.
func ExtractIdentity(elt *document.Element) (data.Identity, error) {
	var identity data.Identity

	if id, ok := elt.Attr(idAttr); ok {
		identity.ID = id
	}

	if raw, ok := elt.Attr(lastModifiedAttr); ok {
		// timestamps without timezone information are interpreted as UTC, so that revision
		// ordering stays well-defined as long as one producer sticks to one timezone
		ts, err := dateparse.ParseIn(raw, time.UTC)
		if err != nil {
			return identity, fmt.Errorf("unable to parse %s timestamp %q: %w", lastModifiedAttr, raw, err)
		}
		ts = ts.UTC()
		identity.Timestamp = &ts
	}

	return identity, nil
}
