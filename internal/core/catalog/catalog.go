// Package catalog loads and validates the prototype catalog: terrain variants
// for the chunk streamer and entity descriptors for the spawn scheduler.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/skyrun/internal/core/fault"
	"github.com/zeusync/skyrun/internal/core/models"
)

// Resolver tells whether a prototype or content reference can be constructed.
type Resolver interface {
	Has(ref string) bool
}

// Catalog is ordered and immutable once loaded. Declaration order is the
// order used by weighted selection.
type Catalog struct {
	Variants    []models.Variant          `yaml:"variants"`
	Descriptors []models.EntityDescriptor `yaml:"descriptors"`
}

// Report is the outcome of Validate.
type Report struct {
	// Valid holds pointers into the catalog for descriptors that passed, in declaration order.
	Valid []*models.EntityDescriptor
	// Variants holds the variants that passed, in declaration order.
	Variants []models.Variant
	Warnings []string
}

func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Configuration("catalog.Load", err, "open %s", path)
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fault.Configuration("catalog.Decode", err, "decode yaml")
	}
	return &c, nil
}

// Descriptor returns the descriptor with the given name.
func (c *Catalog) Descriptor(name string) (*models.EntityDescriptor, bool) {
	for i := range c.Descriptors {
		if c.Descriptors[i].Name == name {
			return &c.Descriptors[i], true
		}
	}
	return nil, false
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every descriptor and variant. Broken entries are left out of
// Report.Valid and Report.Variants and reported in the joined error; a
// descriptor without an enabled weapon is only a warning. A nil resolver skips
// reference checks.
func (c *Catalog) Validate(prototypes, content Resolver) (Report, error) {
	var (
		report Report
		errs   error
		seen   = make(map[string]bool, len(c.Descriptors))
	)

	for i, v := range c.Variants {
		if err := validate.Struct(v); err != nil {
			errs = errors.Join(errs, fmt.Errorf("variant %d: %w", i, err))
			continue
		}
		if content != nil && !content.Has(v.Content) {
			errs = errors.Join(errs, fmt.Errorf("variant %q: content %q: %w", v.Name, v.Content, fault.ErrUnknownContent))
			continue
		}
		report.Variants = append(report.Variants, v)
	}

	for i := range c.Descriptors {
		d := &c.Descriptors[i]
		if err := c.checkDescriptor(d, prototypes, seen); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if !d.HasEnabledWeapon() {
			report.Warnings = append(report.Warnings, fmt.Sprintf("descriptor %q has no enabled weapon", d.Name))
		}
		report.Valid = append(report.Valid, d)
	}

	if errs != nil {
		return report, fault.Configuration("catalog.Validate", errs, "invalid catalog")
	}
	return report, nil
}

func (c *Catalog) checkDescriptor(d *models.EntityDescriptor, prototypes Resolver, seen map[string]bool) error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("descriptor %q: %w", d.Name, err)
	}
	if seen[d.Name] {
		return fmt.Errorf("descriptor %q: duplicate name", d.Name)
	}
	seen[d.Name] = true
	if d.Health <= 0 {
		return fmt.Errorf("descriptor %q: health must be positive, got %v", d.Name, d.Health)
	}
	if d.SpawnWeight <= 0 {
		return fmt.Errorf("descriptor %q: spawn weight must be positive, got %v", d.Name, d.SpawnWeight)
	}
	if prototypes != nil && !prototypes.Has(d.Prototype) {
		return fmt.Errorf("descriptor %q: prototype %q: %w", d.Name, d.Prototype, fault.ErrUnknownContent)
	}
	return nil
}
