// Package resolve validates and parses method-handle resolution lines
// logged during class-list dumping. Each line describes a lambda form
// invoker or a species type that was resolved at runtime; validated
// batches are later replayed to pre-generate the matching holder
// classes, so nothing malformed may pass through here.
package resolve

import (
	"fmt"
	"strings"
)

// Kind discriminates the two resolution record types. A line belongs to
// exactly one kind, determined solely by its literal prefix token.
type Kind int

const (
	// KindLambdaForm is a "[LF_RESOLVE]" record: holder class, method
	// name and basic-type method descriptor.
	KindLambdaForm Kind = iota

	// KindSpecies is a "[SPECIES_RESOLVE]" record: a single species
	// class name token.
	KindSpecies
)

// Line prefixes, matched literally.
const (
	LambdaFormPrefix = "[LF_RESOLVE]"
	SpeciesPrefix    = "[SPECIES_RESOLVE]"
)

// The four holder classes that may host generated lambda form code.
// Any other holder name in an LF_RESOLVE record is rejected.
const (
	DirectHolderClassName     = "java.lang.invoke.DirectMethodHandle$Holder"
	DelegatingHolderClassName = "java.lang.invoke.DelegatingMethodHandle$Holder"
	BasicFormsHolderClassName = "java.lang.invoke.LambdaForm$Holder"
	InvokersHolderClassName   = "java.lang.invoke.Invokers$Holder"
)

// Line is one parsed resolution record. MethodName and MethodType are
// only set for KindLambdaForm; Species only for KindSpecies.
type Line struct {
	Kind       Kind
	Holder     string
	MethodName string
	MethodType string
	Species    string
}

// FormatError reports the first malformed line in a batch, with the
// offending line text and the reason it was rejected.
type FormatError struct {
	Line   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid resolution line: %s: %q", e.Reason, e.Line)
}

// IsValidHolderName reports whether name is one of the four known
// holder class names.
func IsValidHolderName(name string) bool {
	return name == DirectHolderClassName ||
		name == DelegatingHolderClassName ||
		name == BasicFormsHolderClassName ||
		name == InvokersHolderClassName
}

// isBasicTypeChar reports whether c is one of the six basic-type
// characters used in method type descriptors.
func isBasicTypeChar(c byte) bool {
	return strings.IndexByte("LIJFDV", c) >= 0
}

// IsValidMethodType reports whether typ is a well-formed basic-type
// method descriptor: a non-empty parameter part and a single-character
// return part, separated by one underscore. The return character and
// the first parameter character must be basic-type characters; the
// remaining parameter characters may also be decimal arity digits.
func IsValidMethodType(typ string) bool {
	parts := strings.Split(typ, "_")
	if len(parts) != 2 {
		return false
	}
	ret := parts[1]
	if len(ret) != 1 || !isBasicTypeChar(ret[0]) {
		return false
	}
	params := parts[0]
	if len(params) == 0 || !isBasicTypeChar(params[0]) {
		return false
	}
	for i := 1; i < len(params); i++ {
		c := params[i]
		if !isBasicTypeChar(c) && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// ParseLine validates a single resolution line and returns its parsed
// record. The checks mirror ValidateLines exactly.
func ParseLine(s string) (Line, error) {
	isLF := strings.HasPrefix(s, LambdaFormPrefix)
	if !isLF && !strings.HasPrefix(s, SpeciesPrefix) {
		return Line{}, &FormatError{Line: s, Reason: "wrong prefix"}
	}

	parts := strings.Split(s, " ")
	if isLF {
		if len(parts) != 4 {
			return Line{}, &FormatError{Line: s, Reason: fmt.Sprintf("incorrect number of items: %d", len(parts))}
		}
		if !IsValidHolderName(parts[1]) {
			return Line{}, &FormatError{Line: s, Reason: fmt.Sprintf("invalid holder class name: %s", parts[1])}
		}
		if !IsValidMethodType(parts[3]) {
			return Line{}, &FormatError{Line: s, Reason: fmt.Sprintf("invalid method type: %s", parts[3])}
		}
		return Line{
			Kind:       KindLambdaForm,
			Holder:     parts[1],
			MethodName: parts[2],
			MethodType: parts[3],
		}, nil
	}

	if len(parts) != 2 {
		return Line{}, &FormatError{Line: s, Reason: fmt.Sprintf("incorrect number of items: %d", len(parts))}
	}
	return Line{Kind: KindSpecies, Species: parts[1]}, nil
}

// ValidateLines checks every line in the batch, in input order. The
// first malformed line aborts the whole batch with a *FormatError;
// nothing is partially accepted.
func ValidateLines(lines []string) error {
	for _, s := range lines {
		if _, err := ParseLine(s); err != nil {
			return err
		}
	}
	return nil
}
