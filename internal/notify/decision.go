package notify

import "github.com/pingsantohq/statusnotify/pkg/types"

// ShouldNotify gates the builder and the transport.
func ShouldNotify(tr types.Transition, notifyOnEveryCheck bool) bool {
	return tr.Changed || notifyOnEveryCheck
}

// KindOf picks the message variant for a transition: recovery, then outage, then any other
// change, then routine. The second result is false when nothing should be sent.
func KindOf(tr types.Transition, notifyOnEveryCheck bool) (types.MessageKind, bool) {
	switch {
	case tr.IsRecovery:
		return types.KindRecovery, true
	case tr.IsOutage:
		return types.KindOutage, true
	case tr.Changed:
		return types.KindChange, true
	case notifyOnEveryCheck:
		return types.KindRoutine, true
	default:
		return "", false
	}
}
