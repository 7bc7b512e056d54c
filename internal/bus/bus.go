package bus

import (
	"github.com/wagoodman/go-partybus"

	"github.com/cybercercher/openioc-db/internal/event"
)

var publisher partybus.Publisher
var active bool

func SetPublisher(p partybus.Publisher) {
	publisher = p
	if p != nil {
		active = true
	}
}

func Publish(e partybus.Event) {
	if active {
		publisher.Publish(e)
	}
}

// Exit signals the application event loop to stop consuming events.
func Exit() {
	Publish(partybus.Event{
		Type: event.Exit,
	})
}
