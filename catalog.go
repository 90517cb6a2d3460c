package foam

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// PulseSlicer models a begin:end:step slice with open ends, applied against
// the pulse axis of a train.
type PulseSlicer struct {
	Begin *int
	End *int
	Step int
}

// NewPulseSlicer builds a slicer defaulting Step to 1 when unset.
func NewPulseSlicer(begin, end *int, step int) PulseSlicer {
	if step == 0 {
		step = 1
	}
	return PulseSlicer{Begin: begin, End: end, Step: step}
}

// Indices resolves the slicer against a concrete pulse count, returning the
// surviving pulse indices in order.
func (p PulseSlicer) Indices(n int) []int {
	begin := 0
	if p.Begin != nil {
		begin = *p.Begin
		if begin < 0 {
			begin += n
		}
	}
	end := n
	if p.End != nil {
		end = *p.End
		if end < 0 {
			end += n
		}
	}
	step := p.Step
	if step == 0 {
		step = 1
	}

	out := make([]int, 0, n)
	if step > 0 {
		for i := begin; i < end && i < n; i += step {
			if i >= 0 {
				out = append(out, i)
			}
		}
	} else {
		for i := begin; i > end && i >= 0; i += step {
			if i < n {
				out = append(out, i)
			}
		}
	}
	return out
}

// AcceptanceRange is the (low, high) numeric range used by downstream
// filters to validate a scalar reading.
type AcceptanceRange struct {
	Low float64
	High float64
}

func (a AcceptanceRange) Contains(v float64) bool {
	return v >= a.Low && v <= a.High
}

// SourceDescriptor describes one logical source entry in the catalog.
//
// Invariant: if Device contains a wildcard, Modules is non-empty; otherwise
// it is empty.
type SourceDescriptor struct {
	Key string
	Device string
	// Modules holds the module indices expanded over a wildcard device
	// name; empty for a non-modular source.
	Modules []int
	// Property is the property path resolved on the device's values map.
	Property string
	// PropertySuffixRetry documents the retry order used when resolving
	// Property against the raw values map, since the source mixes two
	// lookup conventions and the order is data on the descriptor rather
	// than implicit control flow. Default: try the bare property, then
	// the property suffixed with ".value".
	PropertySuffixRetry []string
	Slicer PulseSlicer
	Acceptance AcceptanceRange
}

// IsModular reports whether the device name carries a wildcard.
func (d *SourceDescriptor) IsModular() bool {
	return strings.Contains(d.Device, "*")
}

// Validate enforces the invariant that a modular (wildcard) device carries
// at least one module index, and a non-modular device carries none.
func (d *SourceDescriptor) Validate() error {
	if d.IsModular() && len(d.Modules) == 0 {
		return fmt.Errorf("%w: %s", ErrCatalogModuleEmpty, d.Key)
	}
	if !d.IsModular() && len(d.Modules) != 0 {
		return fmt.Errorf("%w: %s carries modules but is not a wildcard device", ErrCatalogModuleEmpty, d.Key)
	}
	if len(d.PropertySuffixRetry) == 0 {
		d.PropertySuffixRetry = []string{"", ".value"}
	}
	return nil
}

// ExpandModule substitutes a module index into a "PREFIX*SUFFIX" wildcard
// device name, producing the concrete per-module device name.
func (d *SourceDescriptor) ExpandModule(idx int) string {
	return strings.Replace(d.Device, "*", fmt.Sprintf("%d", idx), 1)
}

// Catalog is the static (per run) ordered mapping from source key to
// descriptor, modeled as an ordered map so iteration order stays stable
// across a run.
type Catalog struct {
	order []string
	entries map[string]*SourceDescriptor
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]*SourceDescriptor)}
}

// Add inserts or replaces a descriptor, validating its invariants and
// appending to the stable iteration order on first insertion.
func (c *Catalog) Add(d *SourceDescriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, exists := c.entries[d.Key]; !exists {
		c.order = append(c.order, d.Key)
	}
	c.entries[d.Key] = d
	return nil
}

// Keys returns the catalog's source keys in stable insertion order.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.order...)
}

// Get looks up a descriptor by source key.
func (c *Catalog) Get(key string) (*SourceDescriptor, bool) {
	d, ok := c.entries[key]
	return d, ok
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Snapshot returns a shallow copy of the catalog, used when stamping a
// correlated bundle.
func (c *Catalog) Snapshot() *Catalog {
	cp := &Catalog{
		order: append([]string(nil), c.order...),
		entries: make(map[string]*SourceDescriptor, len(c.entries)),
	}
	for k, v := range c.entries {
		d := *v
		cp.entries[k] = &d
	}
	return cp
}

// AllModuleIndices returns the catalog-wide set of distinct module indices
// in use, useful for pre-sizing per-module scratch buffers.
func (c *Catalog) AllModuleIndices() []int {
	var all []int
	for _, key := range c.order {
		all = append(all, c.entries[key].Modules...)
	}
	return lo.Uniq(all)
}
