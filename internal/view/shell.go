package view

import "github.com/erazemk/trznica/internal/model"

// Screen is what the top-level page shows.
type Screen int

// Screens.
const (
	ScreenSignIn Screen = iota
	ScreenCatalog
)

// Select chooses the catalog when a session token is present and the
// sign-up/sign-in alternative otherwise. It holds no state and is
// recomputed on every request.
func Select(creds model.Credentials) Screen {
	if creds.Present() {
		return ScreenCatalog
	}
	return ScreenSignIn
}
