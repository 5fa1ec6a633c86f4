package widget

import "errors"

var (
	// ErrPrivacyRequired blocks sends while the privacy gate is closed.
	ErrPrivacyRequired = errors.New("privacy notice must be agreed to before chatting")
	// ErrBusy rejects a send while another send is in flight.
	ErrBusy = errors.New("a message is already in flight")
	// ErrReactionPending rejects a reaction toggle while the previous
	// save for the same message has not resolved.
	ErrReactionPending = errors.New("reaction save already in flight for this message")
	// ErrDestroyed marks calls on a widget after Destroy.
	ErrDestroyed = errors.New("widget instance destroyed")
)
