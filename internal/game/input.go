package game

// Sink receives tokens that passed the controller's filter.
type Sink interface {
	AddInput(token string) Event
}

// Controller filters raw tokens from any source and forwards valid ones
// unchanged. It holds no game state.
type Controller struct {
	sink Sink
}

// NewController returns a Controller forwarding to sink.
func NewController(sink Sink) *Controller {
	return &Controller{sink: sink}
}

// ValidToken reports whether token is a digit, one of + - * /, Enter or Delete.
func ValidToken(token string) bool {
	switch token {
	case TokenEnter, TokenDelete, "+", "-", "*", "/":
		return true
	}
	return len(token) == 1 && token[0] >= '0' && token[0] <= '9'
}

// Submit forwards token when valid and reports whether it did.
// Anything else is dropped without error.
func (c *Controller) Submit(token string) (Event, bool) {
	if !ValidToken(token) {
		return Event{}, false
	}
	return c.sink.AddInput(token), true
}
