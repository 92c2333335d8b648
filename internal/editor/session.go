package editor

// Session is the editor's modal state machine: Closed, or Open with an
// optional editing target. A session with no editing ID creates a new site
// on save; one with an ID updates it.
type Session struct {
	open      bool
	editingID string
}

// OpenFor transitions to Open. id is the site being edited, or empty for a
// new site.
func (s *Session) OpenFor(id string) {
	s.open = true
	s.editingID = id
}

// Close transitions to Closed and forgets the editing target.
func (s *Session) Close() {
	s.open = false
	s.editingID = ""
}

func (s Session) IsOpen() bool {
	return s.open
}

// EditingID returns the site being edited, empty when the session is
// creating a new site or closed.
func (s Session) EditingID() string {
	return s.editingID
}
