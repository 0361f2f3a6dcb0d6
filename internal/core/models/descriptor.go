package models

// Weapon is one weapon mount of a descriptor.
type Weapon struct {
	Name         string  `yaml:"name"`
	Enabled      bool    `yaml:"enabled"`
	Damage       float64 `yaml:"damage" validate:"gte=0"`
	FireInterval float64 `yaml:"fire_interval" validate:"gte=0"`
	Range        float64 `yaml:"range" validate:"gte=0"`
	// AmmoCap of zero means unlimited.
	AmmoCap int `yaml:"ammo_cap,omitempty" validate:"gte=0"`
}

type Movement struct {
	Speed             float64 `yaml:"speed" validate:"gte=0"`
	TurnRate          float64 `yaml:"turn_rate" validate:"gte=0"`
	PreferredAltitude float64 `yaml:"preferred_altitude"`
}

// EntityDescriptor is the immutable template of a spawnable hostile. Spawned
// instances of one type share the same *EntityDescriptor.
type EntityDescriptor struct {
	Name                  string   `yaml:"name" validate:"required"`
	Prototype             string   `yaml:"prototype" validate:"required"`
	Health                float64  `yaml:"health"`
	Armor                 float64  `yaml:"armor" validate:"gte=0"`
	Movement              Movement `yaml:"movement"`
	Weapons               []Weapon `yaml:"weapons" validate:"dive"`
	DetectionRange        float64  `yaml:"detection_range" validate:"gte=0"`
	RetreatHealthFraction float64  `yaml:"retreat_health_fraction" validate:"gte=0,lte=1"`
	Aggression            float64  `yaml:"aggression" validate:"gte=0"`
	SpawnWeight           float64  `yaml:"spawn_weight"`
	MaxSimultaneous       int      `yaml:"max_simultaneous" validate:"gte=1"`
	Tier                  int      `yaml:"tier" validate:"gte=1"`
}

// HasEnabledWeapon reports whether at least one weapon can fire.
func (d *EntityDescriptor) HasEnabledWeapon() bool {
	for _, w := range d.Weapons {
		if w.Enabled {
			return true
		}
	}
	return false
}

// ScaledDescriptor is a tier-adjusted copy of a descriptor, owned by the
// instance it was created for.
type ScaledDescriptor struct {
	EntityDescriptor
	Base *EntityDescriptor
	Tier int
}

// Descriptor returns the adjusted stats as a plain descriptor.
func (s *ScaledDescriptor) Descriptor() *EntityDescriptor {
	return &s.EntityDescriptor
}
