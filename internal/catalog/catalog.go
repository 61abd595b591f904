// Package catalog holds the static mission definitions and answers
// unlock queries against a player's completed-set. The catalog is
// read-only after Load; all methods are safe for concurrent use.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/datagamesbr/dpohero/internal/dpohero"
)

var (
	// ErrCycle is returned when the prerequisite graph contains a cycle.
	ErrCycle = errors.New("catalog: prerequisite cycle")
	// ErrDuplicateID is returned when two missions share an id.
	ErrDuplicateID = errors.New("catalog: duplicate mission id")
)

type catalogFile struct {
	Missions []dpohero.MissionDefinition `yaml:"missions"`
}

// Catalog is the validated set of mission definitions.
type Catalog struct {
	defs  map[dpohero.MissionID]dpohero.MissionDefinition
	order []dpohero.MissionID
}

// Load parses and validates a catalog from YAML bytes.
func Load(data []byte, logger *slog.Logger) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{defs: make(map[dpohero.MissionID]dpohero.MissionDefinition, len(file.Missions))}
	for _, def := range file.Missions {
		if def.ID == "" {
			return nil, errors.New("catalog: mission with empty id")
		}
		if _, ok := c.defs[def.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, def.ID)
		}
		if def.Points < 0 {
			return nil, fmt.Errorf("catalog: mission %s has negative points", def.ID)
		}
		switch def.Kind {
		case dpohero.MissionKindQuiz, dpohero.MissionKindField:
		default:
			return nil, fmt.Errorf("catalog: mission %s has unknown kind %q", def.ID, def.Kind)
		}
		for i, item := range def.Items {
			if item.Points < 0 {
				return nil, fmt.Errorf("catalog: mission %s item %d has negative points", def.ID, i)
			}
			if item.Answer < 0 || item.Answer >= len(item.Choices) {
				return nil, fmt.Errorf("catalog: mission %s item %d answer index out of range", def.ID, i)
			}
		}
		c.defs[def.ID] = def
		c.order = append(c.order, def.ID)
	}

	if err := c.checkAcyclic(); err != nil {
		return nil, err
	}

	// A prerequisite pointing at a mission that doesn't exist can never
	// be satisfied. The mission stays permanently locked rather than
	// failing the whole catalog.
	for _, id := range c.order {
		for _, req := range c.defs[id].Requires {
			if _, ok := c.defs[req]; !ok {
				logger.Warn("mission requires unknown mission, it will never unlock",
					"mission", id, "requires", req)
			}
		}
	}

	return c, nil
}

// LoadFile reads and validates a catalog from a YAML file on disk.
func LoadFile(path string, logger *slog.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Load(data, logger)
}

// checkAcyclic validates the prerequisite graph via depth-first
// three-color traversal. Unknown prerequisite ids are skipped here;
// they are reported separately and simply never unlock.
func (c *Catalog) checkAcyclic() error {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current path
		black = 2 // fully explored
	)
	color := make(map[dpohero.MissionID]int, len(c.defs))

	var visit func(id dpohero.MissionID) error
	visit = func(id dpohero.MissionID) error {
		switch color[id] {
		case gray:
			return fmt.Errorf("%w involving %s", ErrCycle, id)
		case black:
			return nil
		}
		color[id] = gray
		for _, req := range c.defs[id].Requires {
			if _, ok := c.defs[req]; !ok {
				continue
			}
			if err := visit(req); err != nil {
				return err
			}
		}
		color[id] = black
		return nil
	}

	for _, id := range c.order {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the definition for id. The second return value is
// false when the id is not in the catalog.
func (c *Catalog) Lookup(id dpohero.MissionID) (dpohero.MissionDefinition, bool) {
	def, ok := c.defs[id]
	return def, ok
}

// Missions returns all definitions in declaration order.
func (c *Catalog) Missions() []dpohero.MissionDefinition {
	out := make([]dpohero.MissionDefinition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.defs[id])
	}
	return out
}

// Len returns the number of missions in the catalog.
func (c *Catalog) Len() int { return len(c.defs) }

// IsUnlocked reports whether every prerequisite of def is in the
// completed-set. Pure function; a prerequisite missing from the
// catalog is simply never satisfied.
func IsUnlocked(def dpohero.MissionDefinition, completed map[dpohero.MissionID]bool) bool {
	for _, req := range def.Requires {
		if !completed[req] {
			return false
		}
	}
	return true
}
