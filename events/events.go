package events

const (
	TypeServerInfo   = "server.info"
	TypeTrashChanged = "trash.changed"
	TypeInvoked      = "method.invoked"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// TrashState is the payload of TypeTrashChanged.
type TrashState struct {
	Full bool `json:"full"`
}

// Invocation is the payload of TypeInvoked, emitted by the stub service for
// every method call it receives.
type Invocation struct {
	Interface string `json:"interface"`
	Method    string `json:"method"`
	Args      []any  `json:"args"`
}

// FilterTypes returns a predicate passing only the listed event types, or nil
// (pass everything) when types is empty.
func FilterTypes(types []string) func(Event) bool {
	if len(types) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	return func(e Event) bool {
		_, ok := allowed[e.Type]
		return ok
	}
}
