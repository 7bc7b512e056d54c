package event

import "github.com/wagoodman/go-partybus"

const (
	prefix = "openioc-db"

	// Exit is the final event, signaling the event loop to stop.
	Exit partybus.EventType = prefix + "-exit"

	// ImportFinished carries an ImportSummary value for a single processed document.
	ImportFinished partybus.EventType = prefix + "-import-finished"
)

// ImportSummary is the value attached to an ImportFinished event.
type ImportSummary struct {
	Source  string
	Objects int
	Facts   int
}
