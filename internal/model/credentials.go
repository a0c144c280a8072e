package model

import (
	"fmt"
	"strconv"
)

// Credentials is the session pair held by the browser. UserID is only
// displayed and echoed into purchase requests; authorization is carried
// solely by Token.
type Credentials struct {
	UserID string
	Token  string
}

// Present reports whether a session token exists.
func (c Credentials) Present() bool {
	return c.Token != ""
}

// NumericUserID parses UserID.
func (c Credentials) NumericUserID() (int64, error) {
	id, err := strconv.ParseInt(c.UserID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q: %w", c.UserID, err)
	}
	return id, nil
}
