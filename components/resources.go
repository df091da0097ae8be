package components

import "sort"

// Resource is one inventory entry on a device.
type Resource struct {
	Amount    float64
	MaxAmount float64
}

// PartResources is the inventory of a single device.
// Copies share the same entries, so the value stored in the ECS and the one
// handed to the generator stay in sync.
type PartResources struct {
	entries map[string]*Resource
}

// NewPartResources creates an empty inventory.
func NewPartResources() PartResources {
	return PartResources{entries: make(map[string]*Resource)}
}

// Has reports whether the inventory holds an entry for name.
func (p PartResources) Has(name string) bool {
	_, ok := p.entries[name]
	return ok
}

// Remove deletes the entry for name if present.
func (p PartResources) Remove(name string) {
	delete(p.entries, name)
}

// Add creates or replaces the entry for name. The amount is clamped to [0, maxAmount].
func (p PartResources) Add(name string, maxAmount, amount float64) {
	p.entries[name] = &Resource{Amount: clamp(amount, maxAmount), MaxAmount: maxAmount}
}

// Amount returns the stored amount for name, or 0 without an entry.
func (p PartResources) Amount(name string) float64 {
	if r, ok := p.entries[name]; ok {
		return r.Amount
	}
	return 0
}

// SetAmount updates an existing entry. It is a no-op without one.
func (p PartResources) SetAmount(name string, amount float64) {
	if r, ok := p.entries[name]; ok {
		r.Amount = clamp(amount, r.MaxAmount)
	}
}

// Get returns a copy of the entry for name.
func (p PartResources) Get(name string) (Resource, bool) {
	r, ok := p.entries[name]
	if !ok {
		return Resource{}, false
	}
	return *r, true
}

// Names returns the entry names in sorted order.
func (p PartResources) Names() []string {
	names := make([]string, 0, len(p.entries))
	for name := range p.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func clamp(v, limit float64) float64 {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
