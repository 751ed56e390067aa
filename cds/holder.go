package cds

import (
	"errors"

	"github.com/chazu/cdshare/resolve"
)

// HolderGenerator is the code-generation capability: given an ordered
// batch of validated resolution lines, it synthesizes the holder
// classes those lines describe. The returned map has one entry per
// generated class; the byte slices are immutable once produced.
type HolderGenerator interface {
	GenerateHolderClasses(lines []string) (map[string][]byte, error)
}

// GeneratedClass is one (class name, class bytes) pair produced by the
// generator, flattened for return to the VM caller.
type GeneratedClass struct {
	Name  string
	Bytes []byte
}

// ErrNoLines is returned when the request builder is handed a nil
// batch.
var ErrNoLines = errors.New("cds: no resolution lines")

// GenerateLambdaFormHolderClasses validates the resolution batch and
// asks gen to synthesize the corresponding holder classes. Validation
// happens strictly before generation: a malformed line means gen is
// never called. Generator failures propagate unwrapped.
//
// The result may hold fewer entries than there are input lines; several
// lines can resolve into the same holder class.
func GenerateLambdaFormHolderClasses(gen HolderGenerator, lines []string) ([]GeneratedClass, error) {
	if lines == nil {
		return nil, ErrNoLines
	}
	if err := resolve.ValidateLines(lines); err != nil {
		return nil, err
	}

	result, err := gen.GenerateHolderClasses(lines)
	if err != nil {
		return nil, err
	}

	flat := make([]GeneratedClass, 0, len(result))
	for name, bytes := range result {
		flat = append(flat, GeneratedClass{Name: name, Bytes: bytes})
	}
	return flat, nil
}
