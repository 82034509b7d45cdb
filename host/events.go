package host

import "fmt"

// EventKind is what happened.
type EventKind int

const (
	// EventMetadataResolved - vault metadata changed, index must be rebuilt.
	EventMetadataResolved EventKind = iota
	// EventActiveViewChanged - view shows another document.
	EventActiveViewChanged
	// EventLayoutChanged - views must re-resolve their documents.
	EventLayoutChanged
	// EventResized - toolbar container of a view got new width.
	EventResized
	// EventRetry - scheduled attempt to lay out deferred toolbar.
	EventRetry
	// EventClosed - view is gone.
	EventClosed
)

var eventKindNames = []string{
	"metadata-resolved",
	"active-view-changed",
	"layout-changed",
	"resized",
	"retry",
	"closed",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventKindNames[k]
}

// Event is a single host input.
type Event struct {
	Kind EventKind
	View string
	// Document path for EventActiveViewChanged.
	Path string
	// Container width for EventResized.
	Width float64

	seq uint64
}

func MetadataResolved() Event { return Event{Kind: EventMetadataResolved} }
func LayoutChanged() Event    { return Event{Kind: EventLayoutChanged} }

func ActiveViewChanged(view, path string) Event {
	return Event{Kind: EventActiveViewChanged, View: view, Path: path}
}

func Resized(view string, width float64) Event {
	return Event{Kind: EventResized, View: view, Width: width}
}

func Closed(view string) Event {
	return Event{Kind: EventClosed, View: view}
}
