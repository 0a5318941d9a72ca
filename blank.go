package n3

import (
	"strconv"

	"github.com/google/uuid"
)

// blankFactory mints fresh, mutually disjoint blank node labels: for paths
// (`!`/`^` chaining), collections, `[...]` property lists, and `{...}`
// formula graph names. Every parse instance gets its own random label
// prefix (grounded in the teacher's bnodeN counter in ttl.go, which is
// only disjoint from user labels within a single decode and collides
// across concurrent decodes of inputs that happen to share labels); a
// UUID-derived prefix makes labels minted by one parser instance disjoint
// from labels minted by any other, and from any label a document could
// plausibly write by hand.
type blankFactory struct {
	prefix string
	n      int
}

func newBlankFactory() *blankFactory {
	return &blankFactory{prefix: "n3b" + uuid.New().String()[:8]}
}

func (f *blankFactory) fresh() Blank {
	f.n++
	return Blank{Label: f.prefix + strconv.Itoa(f.n)}
}
