// Package session carries user state between screens: the postal code
// entered on the first screen and the flyer chosen after it.
package session

import (
	"strings"

	"github.com/google/uuid"
)

// Session is the state passed through navigation
type Session struct {
	ID         uuid.UUID
	PostalCode string
}

// New creates a session starting from postalCode
func New(postalCode string) *Session {
	return &Session{ID: uuid.New(), PostalCode: postalCode}
}

// Screen identifies where the user goes next
type Screen string

// Screens reachable from postal code entry
const (
	ScreenStoreSelector Screen = "store_selector"
	ScreenFlyer         Screen = "flyer"
)

// Next describes a navigation out of postal code entry
type Next struct {
	Screen     Screen
	FlyerID    int64
	PostalCode string
}

// Entry is the postal code entry screen
type Entry struct {
	session        *Session
	defaultFlyerID int64
}

// NewEntry creates the entry screen for a session
func NewEntry(s *Session, defaultFlyerID int64) *Entry {
	return &Entry{session: s, defaultFlyerID: defaultFlyerID}
}

// Submit stores the trimmed input as the session's postal code and moves on
// to store selection. Input is not validated.
func (e *Entry) Submit(input string) Next {
	e.session.PostalCode = strings.TrimSpace(input)
	return Next{Screen: ScreenStoreSelector, PostalCode: e.session.PostalCode}
}

// DefaultFlyer skips store selection and opens the default flyer
func (e *Entry) DefaultFlyer() Next {
	return Next{Screen: ScreenFlyer, FlyerID: e.defaultFlyerID, PostalCode: e.session.PostalCode}
}
