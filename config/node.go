package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/halcyonic/pluginkit/storage"
)

// Node is one element of a settings tree. A tree is built fresh on every
// open event, attached to the host, and discarded on close.
type Node interface {
	// attach adds the node (and, for categories, its subtree) to the host
	// category identified by cat.
	attach(h Host, cat CategoryHandle) error
}

// Category groups child nodes under a named sub-menu.
type Category struct {
	Title    string
	Children []Node
}

// Label is a non-interactive line of text. It has no storage interaction.
type Label struct {
	Text string
}

// Toggle is a boolean item persisted under ID.
type Toggle struct {
	ID        string
	Text      string
	Default   bool
	TrueText  string
	FalseText string
}

// Range is an integer item persisted under ID, valid within [Min, Max].
type Range struct {
	ID      string
	Text    string
	Default int32
	Min     int32
	Max     int32
}

// Select is a choice item persisted under ID as an index into Options.
type Select struct {
	ID      string
	Text    string
	Default uint32
	Options []string
}

func (c Category) attach(h Host, cat CategoryHandle) error {
	if err := checkText(c.Title); err != nil {
		return err
	}
	sub, status := h.CreateCategory(c.Title)
	if err := errFromStatus(status); err != nil {
		return fmt.Errorf("create category %q: %w", c.Title, err)
	}
	for _, child := range c.Children {
		if err := child.attach(h, sub); err != nil {
			return err
		}
	}
	return errFromStatus(h.AddCategory(cat, sub))
}

func (l Label) attach(h Host, cat CategoryHandle) error {
	if err := checkText(l.Text); err != nil {
		return err
	}
	return errFromStatus(h.AddLabel(cat, l.Text))
}

func (t Toggle) attach(h Host, cat CategoryHandle) error {
	if err := checkItemText(t.ID, t.Text, t.TrueText, t.FalseText); err != nil {
		return err
	}

	current, err := storage.Load[bool](t.ID)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		if err := storage.Store(t.ID, t.Default); err != nil {
			return fmt.Errorf("toggle %q: %w", t.ID, err)
		}
		current = t.Default
	default:
		return fmt.Errorf("toggle %q: %w", t.ID, err)
	}

	item := &ToggleItem{
		Identifier:  t.ID,
		DisplayText: t.Text,
		Default:     t.Default,
		Current:     current,
		TrueText:    t.TrueText,
		FalseText:   t.FalseText,
	}
	return errFromStatus(h.AddToggle(cat, item, toggleChanged))
}

func (r Range) attach(h Host, cat CategoryHandle) error {
	if err := checkItemText(r.ID, r.Text); err != nil {
		return err
	}
	if r.Min > r.Max || r.Default < r.Min || r.Default > r.Max {
		return fmt.Errorf("%w: range %q default %d outside [%d,%d]",
			ErrInvalidArgument, r.ID, r.Default, r.Min, r.Max)
	}

	current, err := storage.Load[int32](r.ID)
	switch {
	case err == nil:
		// A stored value outside the domain is substituted silently; it is
		// stale configuration, not an error the user can act on.
		if current < r.Min || current > r.Max {
			current = r.Default
		}
	case errors.Is(err, storage.ErrNotFound):
		if err := storage.Store(r.ID, r.Default); err != nil {
			return fmt.Errorf("range %q: %w", r.ID, err)
		}
		current = r.Default
	default:
		return fmt.Errorf("range %q: %w", r.ID, err)
	}

	item := &RangeItem{
		Identifier:  r.ID,
		DisplayText: r.Text,
		Default:     r.Default,
		Current:     current,
		Min:         r.Min,
		Max:         r.Max,
	}
	return errFromStatus(h.AddRange(cat, item, rangeChanged))
}

func (s Select) attach(h Host, cat CategoryHandle) error {
	if err := checkItemText(append([]string{s.ID, s.Text}, s.Options...)...); err != nil {
		return err
	}
	if len(s.Options) == 0 || int(s.Default) >= len(s.Options) {
		return fmt.Errorf("%w: select %q default index %d with %d options",
			ErrInvalidArgument, s.ID, s.Default, len(s.Options))
	}

	current, err := storage.Load[uint32](s.ID)
	switch {
	case err == nil:
		if int(current) >= len(s.Options) {
			current = s.Default
		}
	case errors.Is(err, storage.ErrNotFound):
		if err := storage.Store(s.ID, s.Default); err != nil {
			return fmt.Errorf("select %q: %w", s.ID, err)
		}
		current = s.Default
	default:
		return fmt.Errorf("select %q: %w", s.ID, err)
	}

	item := &SelectItem{
		Identifier:  s.ID,
		DisplayText: s.Text,
		Default:     s.Default,
		Current:     current,
		Options:     s.Options,
	}
	return errFromStatus(h.AddSelect(cat, item, selectChanged))
}

// Change callbacks. The host invokes these as bare function references; the
// item identity comes from the structure the host passes back, never from a
// captured environment. Storage failures are swallowed: the host offers no
// channel to report them, so the write is fire-and-forget. That is a
// documented trade-off of the callback protocol.

func toggleChanged(item *ToggleItem, value bool) {
	_ = storage.Store(item.Identifier, value)
}

func rangeChanged(item *RangeItem, value int32) {
	_ = storage.Store(item.Identifier, value)
}

func selectChanged(item *SelectItem, index uint32) {
	_ = storage.Store(item.Identifier, index)
}

func checkText(texts ...string) error {
	for _, s := range texts {
		if strings.ContainsRune(s, 0) {
			return fmt.Errorf("%w: %q", ErrNulByte, s)
		}
	}
	return nil
}

func checkItemText(texts ...string) error {
	if len(texts) == 0 || texts[0] == "" {
		return fmt.Errorf("%w: item identifier is empty", ErrInvalidArgument)
	}
	return checkText(texts...)
}
