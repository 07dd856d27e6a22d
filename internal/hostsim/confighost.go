package hostsim

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/halcyonic/pluginkit/config"
)

// MenuCategory is the host-side materialization of one attached category:
// what the settings screen would render.
type MenuCategory struct {
	Name    string
	Labels  []string
	Subs    []*MenuCategory
	toggles []*attachedToggle
	ranges  []*attachedRange
	selects []*attachedSelect
}

type attachedToggle struct {
	item    *config.ToggleItem
	changed config.ToggleCallback
}

type attachedRange struct {
	item    *config.RangeItem
	changed config.RangeCallback
}

type attachedSelect struct {
	item    *config.SelectItem
	changed config.SelectCallback
}

// ConfigHost is a recording implementation of config.Host. It mints opaque
// category handles, captures the tree the plugin attaches on each open event,
// and lets tests simulate user edits by invoking the registered change
// callbacks the way the real UI would: as bare functions handed back the
// host-side item structure.
type ConfigHost struct {
	log *zap.Logger

	mu      sync.Mutex
	name    string
	onOpen  config.OpenCallback
	onClose config.CloseCallback

	next config.CategoryHandle
	cats map[config.CategoryHandle]*MenuCategory
	root *MenuCategory
	open bool
}

// NewConfigHost creates an unopened config host.
func NewConfigHost(log *zap.Logger) *ConfigHost {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConfigHost{
		log:  log,
		cats: make(map[config.CategoryHandle]*MenuCategory),
	}
}

// Init implements config.Host.
func (h *ConfigHost) Init(opts config.InitOptions, onOpen config.OpenCallback, onClose config.CloseCallback) int32 {
	if opts.Name == "" || onOpen == nil {
		return config.StatusMissingCallback
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.onOpen != nil {
		return config.StatusInvalidArgument
	}
	h.name = opts.Name
	h.onOpen = onOpen
	h.onClose = onClose
	h.log.Debug("config entry registered", zap.String("name", opts.Name))
	return config.StatusOK
}

// CreateCategory implements config.Host.
func (h *ConfigHost) CreateCategory(name string) (config.CategoryHandle, int32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mint(&MenuCategory{Name: name}), config.StatusOK
}

// AddCategory implements config.Host.
func (h *ConfigHost) AddCategory(parent, child config.CategoryHandle) int32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.cats[parent]
	c, ok2 := h.cats[child]
	if !ok || !ok2 {
		return config.StatusNotFound
	}
	p.Subs = append(p.Subs, c)
	return config.StatusOK
}

// AddLabel implements config.Host.
func (h *ConfigHost) AddLabel(cat config.CategoryHandle, text string) int32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.cats[cat]
	if !ok {
		return config.StatusNotFound
	}
	c.Labels = append(c.Labels, text)
	return config.StatusOK
}

// AddToggle implements config.Host.
func (h *ConfigHost) AddToggle(cat config.CategoryHandle, item *config.ToggleItem, changed config.ToggleCallback) int32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.cats[cat]
	if !ok {
		return config.StatusNotFound
	}
	c.toggles = append(c.toggles, &attachedToggle{item: item, changed: changed})
	return config.StatusOK
}

// AddRange implements config.Host.
func (h *ConfigHost) AddRange(cat config.CategoryHandle, item *config.RangeItem, changed config.RangeCallback) int32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.cats[cat]
	if !ok {
		return config.StatusNotFound
	}
	c.ranges = append(c.ranges, &attachedRange{item: item, changed: changed})
	return config.StatusOK
}

// AddSelect implements config.Host.
func (h *ConfigHost) AddSelect(cat config.CategoryHandle, item *config.SelectItem, changed config.SelectCallback) int32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.cats[cat]
	if !ok {
		return config.StatusNotFound
	}
	c.selects = append(c.selects, &attachedSelect{item: item, changed: changed})
	return config.StatusOK
}

// Open simulates the user opening the settings screen: a fresh root handle is
// minted and the plugin's open callback rebuilds and attaches its tree.
func (h *ConfigHost) Open() error {
	h.mu.Lock()
	if h.onOpen == nil {
		h.mu.Unlock()
		return fmt.Errorf("hostsim: no config entry registered")
	}
	if h.open {
		h.mu.Unlock()
		return fmt.Errorf("hostsim: menu already open")
	}
	h.cats = make(map[config.CategoryHandle]*MenuCategory)
	h.root = &MenuCategory{Name: h.name}
	root := h.mint(h.root)
	onOpen := h.onOpen
	h.open = true
	h.mu.Unlock()

	if status := onOpen(root); status != config.CallbackResultSuccess {
		h.mu.Lock()
		h.open = false
		h.mu.Unlock()
		return fmt.Errorf("hostsim: open callback failed with status %d", status)
	}
	h.log.Debug("menu opened", zap.String("name", h.name))
	return nil
}

// Close simulates the user leaving the settings screen.
func (h *ConfigHost) Close() {
	h.mu.Lock()
	onClose := h.onClose
	wasOpen := h.open
	h.open = false
	h.mu.Unlock()

	if wasOpen && onClose != nil {
		onClose()
	}
}

// Root returns the tree captured by the most recent open event.
func (h *ConfigHost) Root() *MenuCategory {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.root
}

// Toggle returns the attached boolean item with the given identifier.
func (h *ConfigHost) Toggle(id string) (*config.ToggleItem, bool) {
	if t := h.findToggle(id); t != nil {
		return t.item, true
	}
	return nil, false
}

// Range returns the attached integer-range item with the given identifier.
func (h *ConfigHost) Range(id string) (*config.RangeItem, bool) {
	if r := h.findRange(id); r != nil {
		return r.item, true
	}
	return nil, false
}

// Select returns the attached multiple-values item with the given
// identifier.
func (h *ConfigHost) Select(id string) (*config.SelectItem, bool) {
	if s := h.findSelect(id); s != nil {
		return s.item, true
	}
	return nil, false
}

// SetToggle simulates the user changing a boolean item. The change callback
// is invoked exactly as the UI would: with the host-side item structure and
// the new value, and with nowhere for a failure to go.
func (h *ConfigHost) SetToggle(id string, value bool) error {
	t := h.findToggle(id)
	if t == nil {
		return fmt.Errorf("hostsim: no toggle %q", id)
	}
	t.item.Current = value
	if t.changed != nil {
		t.changed(t.item, value)
	}
	return nil
}

// SetRange simulates the user changing an integer-range item.
func (h *ConfigHost) SetRange(id string, value int32) error {
	r := h.findRange(id)
	if r == nil {
		return fmt.Errorf("hostsim: no range %q", id)
	}
	if value < r.item.Min || value > r.item.Max {
		return fmt.Errorf("hostsim: value %d outside [%d,%d]", value, r.item.Min, r.item.Max)
	}
	r.item.Current = value
	if r.changed != nil {
		r.changed(r.item, value)
	}
	return nil
}

// SetSelect simulates the user changing a multiple-values item.
func (h *ConfigHost) SetSelect(id string, index uint32) error {
	s := h.findSelect(id)
	if s == nil {
		return fmt.Errorf("hostsim: no select %q", id)
	}
	if int(index) >= len(s.item.Options) {
		return fmt.Errorf("hostsim: index %d out of %d options", index, len(s.item.Options))
	}
	s.item.Current = index
	if s.changed != nil {
		s.changed(s.item, index)
	}
	return nil
}

// mint issues the next opaque handle. Caller holds h.mu.
func (h *ConfigHost) mint(c *MenuCategory) config.CategoryHandle {
	h.next++
	h.cats[h.next] = c
	return h.next
}

func (h *ConfigHost) findToggle(id string) *attachedToggle {
	h.mu.Lock()
	defer h.mu.Unlock()
	var found *attachedToggle
	walk(h.root, func(c *MenuCategory) {
		for _, t := range c.toggles {
			if t.item.Identifier == id {
				found = t
			}
		}
	})
	return found
}

func (h *ConfigHost) findRange(id string) *attachedRange {
	h.mu.Lock()
	defer h.mu.Unlock()
	var found *attachedRange
	walk(h.root, func(c *MenuCategory) {
		for _, r := range c.ranges {
			if r.item.Identifier == id {
				found = r
			}
		}
	})
	return found
}

func (h *ConfigHost) findSelect(id string) *attachedSelect {
	h.mu.Lock()
	defer h.mu.Unlock()
	var found *attachedSelect
	walk(h.root, func(c *MenuCategory) {
		for _, s := range c.selects {
			if s.item.Identifier == id {
				found = s
			}
		}
	})
	return found
}

func walk(c *MenuCategory, visit func(*MenuCategory)) {
	if c == nil {
		return
	}
	visit(c)
	for _, sub := range c.Subs {
		walk(sub, visit)
	}
}
