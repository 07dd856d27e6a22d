package patch

// Enumerations carried in load-entry records. Values are wire values: the
// loader sees them as raw integers in the load-entries region.

// Kind says whether the loader must resolve the entry's symbol.
type Kind uint32

const (
	// KindMandatory entries abort the load when the symbol cannot be
	// resolved.
	KindMandatory Kind = iota

	// KindOptional entries tolerate an unresolved symbol; their slot stays
	// unbound and the plugin must not call through it.
	KindOptional
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindMandatory:
		return "mandatory"
	case KindOptional:
		return "optional"
	default:
		return "unknown"
	}
}

// Library identifies the system library owning an intercepted function.
type Library uint32

// System libraries.
const (
	LibraryCoreinit Library = iota
	LibraryGX2
	LibraryVPAD
	LibraryPadscore
	LibraryNSysNet
	LibraryProcUI
	LibrarySndcore2
	LibrarySysApp
)

// String returns the library's link name.
func (l Library) String() string {
	switch l {
	case LibraryCoreinit:
		return "coreinit"
	case LibraryGX2:
		return "gx2"
	case LibraryVPAD:
		return "vpad"
	case LibraryPadscore:
		return "padscore"
	case LibraryNSysNet:
		return "nsysnet"
	case LibraryProcUI:
		return "procui"
	case LibrarySndcore2:
		return "sndcore2"
	case LibrarySysApp:
		return "sysapp"
	default:
		return "unknown"
	}
}

// Process selects which processes the interception applies to.
type Process uint32

// Target process scopes.
const (
	ProcessAll Process = iota
	ProcessGameOnly
	ProcessGameAndMenu
)

// String returns a string representation of the scope.
func (p Process) String() string {
	switch p {
	case ProcessAll:
		return "all"
	case ProcessGameOnly:
		return "game"
	case ProcessGameAndMenu:
		return "game+menu"
	default:
		return "unknown"
	}
}

// State represents the lifecycle state of an interception entry.
type State int

// Entry states.
const (
	// StateUnbound - the original slot is empty.
	StateUnbound State = iota

	// StateLoaderFilled - the loader has written the real function into the
	// slot, but plugin initialization has not completed.
	StateLoaderFilled

	// StateActive - plugin initialization has completed.
	StateActive
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateLoaderFilled:
		return "loader-filled"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}
