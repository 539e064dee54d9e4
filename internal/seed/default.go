package seed

import (
	_ "embed"
	"fmt"

	"github.com/pitabwire/assetattr/model"
)

//go:embed fixtures/default.yaml
var defaultYAML []byte

// Default returns the built-in catalog used when no seed directories are
// configured.
func Default() model.CatalogDefinition {
	def, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("seed: embedded default catalog is invalid: %v", err))
	}
	def.SourceFile = "embedded:fixtures/default.yaml"
	return def
}

// Load returns the merged contents of the given directories, or the default
// catalog when none are given. The result is validated.
func Load(directories []string) (model.CatalogDefinition, error) {
	var def model.CatalogDefinition
	if len(directories) == 0 {
		def = Default()
	} else {
		defs, err := NewLoader().LoadAll(directories)
		if err != nil {
			return model.CatalogDefinition{}, err
		}
		if len(defs) == 0 {
			return model.CatalogDefinition{}, fmt.Errorf("no seed files found in %v", directories)
		}
		def = Merge(defs...)
	}

	if errs := NewValidator().Validate(def); len(errs) > 0 {
		return model.CatalogDefinition{}, &ValidationErrors{Errors: errs}
	}
	return def, nil
}
