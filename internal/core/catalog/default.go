package catalog

import (
	"bytes"
	_ "embed"
)

//go:embed default.yaml
var defaultCatalog []byte

// Default returns a fresh copy of the built-in catalog.
func Default() *Catalog {
	c, err := Decode(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic("catalog: built-in catalog is broken: " + err.Error())
	}
	return c
}
