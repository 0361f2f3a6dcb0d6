package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/skyrun/internal/core/fault"
	"github.com/zeusync/skyrun/internal/core/models"
)

type set map[string]bool

func (s set) Has(ref string) bool { return s[ref] }

func TestDefaultCatalogValidates(t *testing.T) {
	c := Default()
	require.Len(t, c.Variants, 5)
	assert.True(t, c.Variants[0].Start)

	report, err := c.Validate(nil, nil)
	require.NoError(t, err)
	require.Len(t, report.Valid, 4)
	assert.Equal(t, c.Variants, report.Variants)
	assert.Equal(t, "scout", report.Valid[0].Name, "declaration order is kept")
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "balloon_mine")

	gunship, ok := c.Descriptor("gunship")
	require.True(t, ok)
	assert.Equal(t, 8, gunship.Weapons[1].AmmoCap)
	assert.Same(t, gunship, report.Valid[1])
}

func TestValidateDropsBrokenDescriptors(t *testing.T) {
	src := `
variants:
  - { name: a, content: terrain/a }
descriptors:
  - { name: ok, prototype: drone, health: 10, spawn_weight: 1, max_simultaneous: 1, tier: 1, weapons: [{name: w, enabled: true}] }
  - { name: dead, prototype: drone, health: 0, spawn_weight: 1, max_simultaneous: 1, tier: 1 }
  - { name: ghost, prototype: missing, health: 10, spawn_weight: 1, max_simultaneous: 1, tier: 1 }
  - { name: ok, prototype: drone, health: 10, spawn_weight: 1, max_simultaneous: 1, tier: 1 }
  - { name: lazy, prototype: drone, health: 10, spawn_weight: 0, max_simultaneous: 1, tier: 1 }
`
	c, err := Decode(strings.NewReader(src))
	require.NoError(t, err)

	report, err := c.Validate(set{"drone": true}, set{"terrain/a": true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrConfiguration))
	assert.True(t, errors.Is(err, fault.ErrUnknownContent))
	assert.Contains(t, err.Error(), "health must be positive")
	assert.Contains(t, err.Error(), "duplicate name")
	assert.Contains(t, err.Error(), "spawn weight")

	require.Len(t, report.Valid, 1)
	assert.Equal(t, "ok", report.Valid[0].Name)
}

func TestValidateUnknownVariantContent(t *testing.T) {
	c := &Catalog{}
	c.Variants = append(c.Variants, Default().Variants[1])
	report, err := c.Validate(nil, set{})
	assert.True(t, errors.Is(err, fault.ErrUnknownContent))
	assert.Empty(t, report.Variants)
}

func TestValidateKeepsOnlyResolvableVariants(t *testing.T) {
	c := &Catalog{Variants: []models.Variant{
		{Name: "launch", Content: "terrain/launch", Start: true},
		{Name: "broken", Content: "terrain/missing"},
		{Name: "nameless", Content: ""},
		{Name: "canyon", Content: "terrain/canyon"},
	}}

	report, err := c.Validate(nil, set{"terrain/launch": true, "terrain/canyon": true})
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrUnknownContent)
	assert.Contains(t, err.Error(), `variant "broken"`)

	require.Len(t, report.Variants, 2)
	assert.Equal(t, "launch", report.Variants[0].Name)
	assert.Equal(t, "canyon", report.Variants[1].Name)

	report, err = c.Validate(nil, nil)
	require.Error(t, err, "structural checks still apply without a resolver")
	assert.Len(t, report.Variants, 3)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("monsters: []\n"))
	assert.True(t, errors.Is(err, fault.ErrConfiguration))
}
