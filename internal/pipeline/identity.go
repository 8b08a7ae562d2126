package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"shelfsort/internal"
	apperrors "shelfsort/internal/errors"
)

// IDSource supplies book ids for records that arrive without one.
type IDSource interface {
	NextID(rec internal.RawRecord) string
}

// RandomIDs issues UUIDv4 strings. Ids are only stable within a run.
type RandomIDs struct{}

func (RandomIDs) NextID(internal.RawRecord) string {
	return uuid.NewString()
}

// NanoIDs issues prefixed NanoIDs, e.g. "book-V1StGXR8_Z5jdHi6B-myT".
type NanoIDs struct {
	Prefix string
}

func (s NanoIDs) NextID(internal.RawRecord) string {
	id, err := gonanoid.New()
	if err != nil {
		// Entropy failure; a UUID is still unique.
		id = uuid.NewString()
	}
	if s.Prefix == "" {
		return id
	}
	return s.Prefix + "-" + id
}

// HashIDs derives the id from the record content, so the same export
// always yields the same ids. Identical records share an id.
type HashIDs struct {
	Prefix string
}

func (s HashIDs) NextID(rec internal.RawRecord) string {
	// encoding/json sorts map keys, which makes this canonical.
	blob, err := json.Marshal(rec)
	if err != nil {
		blob = []byte(fmt.Sprintf("%v", map[string]any(rec)))
	}
	sum := sha256.Sum256(blob)
	return s.Prefix + hex.EncodeToString(sum[:8])
}

// SequenceIDs counts up from Next, zero-padded to Width digits.
type SequenceIDs struct {
	Prefix string
	Next   int
	Width  int
}

func (s *SequenceIDs) NextID(internal.RawRecord) string {
	width := s.Width
	if width <= 0 {
		width = 5
	}
	id := fmt.Sprintf("%s%0*d", s.Prefix, width, s.Next)
	s.Next++
	return id
}

// NewIDSource builds the strategy named by SHELFSORT_ID_STRATEGY.
func NewIDSource(strategy, prefix string, start int) (IDSource, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", "uuid":
		return RandomIDs{}, nil
	case "nanoid":
		if prefix == "" {
			prefix = "book"
		}
		return NanoIDs{Prefix: prefix}, nil
	case "hash":
		return HashIDs{Prefix: prefix}, nil
	case "sequence":
		return &SequenceIDs{Prefix: prefix, Next: start}, nil
	default:
		return nil, apperrors.InvalidConfig(fmt.Errorf("unknown id strategy %q", strategy))
	}
}
