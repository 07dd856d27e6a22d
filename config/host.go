package config

// CategoryHandle is an opaque token identifying a node in the host's settings
// tree. It carries no plugin-visible structure and is only ever passed back
// into the Host API.
type CategoryHandle uint64

// OpenCallback is invoked by the host with a fresh root handle whenever the
// user opens the settings screen. It returns a callback result code.
type OpenCallback func(root CategoryHandle) int32

// CloseCallback is invoked by the host when the user leaves the settings
// screen.
type CloseCallback func()

// InitOptions names the plugin's top-level settings entry.
type InitOptions struct {
	Name string
}

// ToggleItem is the host-side state of a boolean item. The host passes the
// same structure back into the change callback, which is how a bare callback
// recovers the item identity: through the Identifier field, not through any
// captured environment.
type ToggleItem struct {
	Identifier  string
	DisplayText string
	Default     bool
	Current     bool
	TrueText    string
	FalseText   string
}

// RangeItem is the host-side state of an integer-range item.
type RangeItem struct {
	Identifier  string
	DisplayText string
	Default     int32
	Current     int32
	Min         int32
	Max         int32
}

// SelectItem is the host-side state of a multiple-values item. Current and
// Default are indices into Options.
type SelectItem struct {
	Identifier  string
	DisplayText string
	Default     uint32
	Current     uint32
	Options     []string
}

// ToggleCallback is the bare change callback for a boolean item.
type ToggleCallback func(item *ToggleItem, value bool)

// RangeCallback is the bare change callback for an integer-range item.
type RangeCallback func(item *RangeItem, value int32)

// SelectCallback is the bare change callback for a multiple-values item. The
// host reports the newly selected index.
type SelectCallback func(item *SelectItem, index uint32)

// Host is the external config UI collaborator. All calls return host status
// codes; this layer maps them through errFromStatus.
type Host interface {
	// Init registers the plugin's settings entry and its open/close
	// callbacks.
	Init(opts InitOptions, onOpen OpenCallback, onClose CloseCallback) int32

	// CreateCategory mints a new, unattached category handle.
	CreateCategory(name string) (CategoryHandle, int32)

	// AddCategory attaches child under parent.
	AddCategory(parent, child CategoryHandle) int32

	// AddLabel attaches a non-interactive text node.
	AddLabel(cat CategoryHandle, text string) int32

	// AddToggle attaches a boolean item with its change callback.
	AddToggle(cat CategoryHandle, item *ToggleItem, changed ToggleCallback) int32

	// AddRange attaches an integer-range item with its change callback.
	AddRange(cat CategoryHandle, item *RangeItem, changed RangeCallback) int32

	// AddSelect attaches a multiple-values item with its change callback.
	AddSelect(cat CategoryHandle, item *SelectItem, changed SelectCallback) int32
}
