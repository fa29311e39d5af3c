package refresh

import "github.com/sig-0/poerates/storage/types"

// Session carries the state that crosses refresh cycles:
// the deals of the last successful refresh, used for trends.
// A session should only be used by one refresh at a time
type Session struct {
	previous []*types.Deal
}

// NewSession creates a new session, with no previous refresh
func NewSession() *Session {
	return &Session{}
}

// Previous returns the deals of the last successful refresh
func (s *Session) Previous() []*types.Deal {
	return s.previous
}

func (s *Session) update(deals []*types.Deal) {
	s.previous = deals
}
