package view

// NavState is one of the two navigation drawer states.
type NavState string

const (
	// NavClosed is the resting state with the drawer hidden.
	NavClosed NavState = "closed"
	// NavOpen shows the drawer with the page overlay behind it.
	NavOpen NavState = "open"
)

// NavController models the mobile navigation drawer as a two-state machine.
// The overlay element is created lazily on the first open and reused after
// that; scroll locking follows the drawer state. All transitions are
// idempotent.
type NavController struct {
	state          NavState
	overlayCreated bool
}

// NewNavController starts in the closed state with no overlay yet.
func NewNavController() *NavController {
	return &NavController{state: NavClosed}
}

// State reports the current drawer state.
func (c *NavController) State() NavState {
	if c == nil || c.state == "" {
		return NavClosed
	}
	return c.state
}

// OverlayCreated reports whether the overlay element exists yet.
func (c *NavController) OverlayCreated() bool {
	return c != nil && c.overlayCreated
}

// ScrollLocked reports whether page scrolling is suppressed.
func (c *NavController) ScrollLocked() bool {
	return c.State() == NavOpen
}

// Toggle flips between open and closed.
func (c *NavController) Toggle() NavState {
	if c.State() == NavOpen {
		return c.close()
	}
	return c.open()
}

// LinkClicked closes the drawer after a navigation link is followed.
func (c *NavController) LinkClicked() NavState {
	return c.close()
}

// OverlayClicked closes the drawer when the backdrop is tapped.
func (c *NavController) OverlayClicked() NavState {
	return c.close()
}

func (c *NavController) open() NavState {
	if c.state == NavOpen {
		return c.state
	}
	c.overlayCreated = true
	c.state = NavOpen
	return c.state
}

func (c *NavController) close() NavState {
	c.state = NavClosed
	return c.state
}
