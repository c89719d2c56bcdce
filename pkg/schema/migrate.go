package schema

import (
	"log/slog"

	"github.com/leapstack-labs/erd/pkg/diagram"
)

// step upgrades a payload from one version to the next.
type step struct {
	from    int
	migrate func(payload any, gen diagram.Generator) any
}

// renormalize is the upgrade every generation so far has needed: the
// normalizer's guarantees are a superset of each earlier version's.
func renormalize(payload any, gen diagram.Generator) any {
	return Normalize(payload, gen)
}

// steps is the migration chain. A new generation appends one entry.
var steps = []step{
	{from: 0, migrate: renormalize}, // bare diagram to first envelope
	{from: 1, migrate: renormalize}, // memos required
	{from: 2, migrate: renormalize}, // export targets and relation hints
	{from: 3, migrate: renormalize}, // column appSheet and dummy values
}

func stepFrom(version int) (step, bool) {
	for _, s := range steps {
		if s.from == version {
			return s, true
		}
	}
	return step{}, false
}

// migrate walks the chain from version to CurrentVersion and returns the
// normalized diagram.
func migrate(version int, payload any, cfg codecConfig) diagram.ERDiagram {
	for version < CurrentVersion {
		s, ok := stepFrom(version)
		if !ok {
			break
		}
		cfg.logger.Debug("migrating diagram",
			slog.Int("from", s.from), slog.Int("to", s.from+1))
		payload = s.migrate(payload, cfg.gen)
		version = s.from + 1
	}
	return Normalize(payload, cfg.gen)
}

// Versions lists every version the chain can start from, oldest first.
func Versions() []int {
	out := make([]int, 0, len(steps)+1)
	for _, s := range steps {
		out = append(out, s.from)
	}
	return append(out, CurrentVersion)
}
