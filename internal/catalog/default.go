package catalog

import (
	_ "embed"
	"log/slog"
)

//go:embed missions.yaml
var defaultCatalog []byte

// Default loads the catalog shipped with the binary.
func Default(logger *slog.Logger) (*Catalog, error) {
	return Load(defaultCatalog, logger)
}
