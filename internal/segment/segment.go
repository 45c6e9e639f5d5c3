package segment

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	prefix   = "axe_"
	idSlice  = 12
	timeSize = 10 // encoded length of the ULID timestamp
)

// Generator produces AXE include segments: an opaque identifier handed to
// ad-serving systems in place of the tactic id. Not cryptographically
// secure, only collision resistant.
type Generator struct {
	now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Generate builds a segment from the current time and a slice of the
// tactic id. Ids shorter than the slice are used whole.
func (g *Generator) Generate(tacticID string) string {
	id := ulid.MustNew(ulid.Timestamp(g.now()), ulid.DefaultEntropy())
	ts := strings.ToLower(id.String()[:timeSize])

	clean := strings.ToLower(strings.ReplaceAll(tacticID, "-", ""))
	if len(clean) > idSlice {
		clean = clean[:idSlice]
	}
	return prefix + ts + "_" + clean
}
