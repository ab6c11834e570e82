package engine

// ScrollMode controls whether the event grid follows the newest visible
// event. "smart" and "on" both auto-follow; "off" leaves the viewport
// where the operator put it.
type ScrollMode string

const (
	ScrollSmart ScrollMode = "smart"
	ScrollOn    ScrollMode = "on"
	ScrollOff   ScrollMode = "off"
)

// Cycle returns the next mode in the rotation smart -> on -> off -> smart.
func (m ScrollMode) Cycle() ScrollMode {
	switch m {
	case ScrollSmart:
		return ScrollOn
	case ScrollOn:
		return ScrollOff
	default:
		return ScrollSmart
	}
}

// Follows reports whether the mode requests auto-follow when a new
// event becomes visible.
func (m ScrollMode) Follows() bool {
	return m == ScrollSmart || m == ScrollOn
}

// ParseScrollMode returns the mode named by s, falling back to
// ScrollSmart for anything unrecognized (e.g. a stale preference value).
func ParseScrollMode(s string) ScrollMode {
	switch ScrollMode(s) {
	case ScrollOn:
		return ScrollOn
	case ScrollOff:
		return ScrollOff
	default:
		return ScrollSmart
	}
}
