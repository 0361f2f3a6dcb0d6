// Package actors holds headless collaborators for the world core: a scripted
// observer, simple hostile instances, pickup crates and authored pickup maps.
// The CLI runner and the package tests drive the core with them.
package actors

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/skyrun/internal/core/models"
)

// Observer is a scripted observer flying along +Z.
type Observer struct {
	pos mgl64.Vec3
}

func NewObserver(start mgl64.Vec3) *Observer {
	return &Observer{pos: start}
}

func (o *Observer) Position() mgl64.Vec3 { return o.pos }

// MoveTo teleports the observer.
func (o *Observer) MoveTo(pos mgl64.Vec3) { o.pos = pos }

// Fly moves the observer forward by dz.
func (o *Observer) Fly(dz float64) { o.pos[2] += dz }

// Drone is a minimal hostile instance. It holds the descriptor it was
// initialized with and can be killed from outside.
type Drone struct {
	Prototype string
	Desc      *models.EntityDescriptor
	Inits     int

	pos       mgl64.Vec3
	active    bool
	destroyed bool
}

var _ models.Spawnable = (*Drone)(nil)

func (d *Drone) SetActive(active bool) { d.active = active }

func (d *Drone) Initialize(desc *models.EntityDescriptor, position mgl64.Vec3) error {
	if desc == nil {
		return fmt.Errorf("drone %s: nil descriptor", d.Prototype)
	}
	d.Desc = desc
	d.pos = position
	d.destroyed = false
	d.Inits++
	return nil
}

func (d *Drone) Position() mgl64.Vec3 { return d.pos }
func (d *Drone) Destroyed() bool      { return d.destroyed }
func (d *Drone) Active() bool         { return d.active }

// Kill marks the drone as destroyed in combat.
func (d *Drone) Kill() { d.destroyed = true }

// MoveTo relocates the drone.
func (d *Drone) MoveTo(pos mgl64.Vec3) { d.pos = pos }

// Husk is a poolable object without the spawn capability, e.g. a decoration
// prefab wrongly wired to a hostile prototype.
type Husk struct {
	active bool
}

func (h *Husk) SetActive(active bool) { h.active = active }

// Registry constructs instances per prototype id.
type Registry struct {
	ctors map[string]func() models.Poolable
	Built map[string]int
}

var _ models.Factory = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		ctors: make(map[string]func() models.Poolable),
		Built: make(map[string]int),
	}
}

// Register binds a prototype id to a constructor.
func (r *Registry) Register(prototype string, ctor func() models.Poolable) *Registry {
	r.ctors[prototype] = ctor
	return r
}

// RegisterDrones binds each prototype to a Drone constructor.
func (r *Registry) RegisterDrones(prototypes ...string) *Registry {
	for _, p := range prototypes {
		p := p
		r.Register(p, func() models.Poolable { return &Drone{Prototype: p} })
	}
	return r
}

func (r *Registry) Has(prototype string) bool {
	_, ok := r.ctors[prototype]
	return ok
}

func (r *Registry) New(prototype string) (models.Poolable, error) {
	ctor, ok := r.ctors[prototype]
	if !ok {
		return nil, fmt.Errorf("unknown prototype %q", prototype)
	}
	r.Built[prototype]++
	return ctor(), nil
}

// ContentSet resolves terrain content references.
type ContentSet map[string]bool

func (c ContentSet) Has(ref string) bool { return c[ref] }

// ContentOf collects the content references of variants.
func ContentOf(variants []models.Variant) ContentSet {
	set := make(ContentSet, len(variants))
	for _, v := range variants {
		set[v.Content] = true
	}
	return set
}

// Crate is a placed pickup object.
type Crate struct {
	Pos       mgl64.Vec3
	removed   bool
	destroyed bool
}

func (c *Crate) Destroyed() bool { return c.destroyed || c.removed }
func (c *Crate) Remove()         { c.removed = true }
func (c *Crate) Removed() bool   { return c.removed }

// Collect marks the crate as picked up by the player.
func (c *Crate) Collect() { c.destroyed = true }

// Crates creates Crate objects and remembers them.
type Crates struct {
	Placed []*Crate
}

var _ models.PickupFactory = (*Crates)(nil)

func (f *Crates) Place(position mgl64.Vec3) (models.PickupObject, error) {
	c := &Crate{Pos: position}
	f.Placed = append(f.Placed, c)
	return c, nil
}

// AuthoredMap is a fixed set of hand-placed pickup positions.
type AuthoredMap struct {
	positions []mgl64.Vec3
}

var _ models.AuthoredPickups = (*AuthoredMap)(nil)

func NewAuthoredMap(positions ...mgl64.Vec3) *AuthoredMap {
	sorted := append([]mgl64.Vec3(nil), positions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Z() < sorted[j].Z() })
	return &AuthoredMap{positions: sorted}
}

func (m *AuthoredMap) Scan(minZ, maxZ float64) []mgl64.Vec3 {
	lo := sort.Search(len(m.positions), func(i int) bool { return m.positions[i].Z() >= minZ })
	var out []mgl64.Vec3
	for i := lo; i < len(m.positions) && m.positions[i].Z() < maxZ; i++ {
		out = append(out, m.positions[i])
	}
	return out
}
