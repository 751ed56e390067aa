package resolve

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateLinesAccepted(t *testing.T) {
	lines := []string{
		"[LF_RESOLVE] java.lang.invoke.Invokers$Holder invoke LL_L",
		"[LF_RESOLVE] java.lang.invoke.DirectMethodHandle$Holder invokeStatic L3I_V",
		"[LF_RESOLVE] java.lang.invoke.DelegatingMethodHandle$Holder reinvoke_L L_L",
		"[LF_RESOLVE] java.lang.invoke.LambdaForm$Holder identity_J J_J",
		"[SPECIES_RESOLVE] java.lang.invoke.BoundMethodHandle$Species_LL",
	}
	if err := ValidateLines(lines); err != nil {
		t.Fatalf("expected batch to validate, got: %v", err)
	}
}

func TestValidateLinesRejected(t *testing.T) {
	cases := []struct {
		name   string
		line   string
		reason string
	}{
		{"wrong prefix", "[BOGUS] java.lang.invoke.Invokers$Holder invoke LL_L", "wrong prefix"},
		{"empty line", "", "wrong prefix"},
		{"lf too few items", "[LF_RESOLVE] java.lang.invoke.Invokers$Holder invoke", "incorrect number of items"},
		{"lf too many items", "[LF_RESOLVE] java.lang.invoke.Invokers$Holder invoke LL_L extra", "incorrect number of items"},
		{"unknown holder", "[LF_RESOLVE] com.example.Foo invoke LL_L", "invalid holder class name"},
		{"bad return type", "[LF_RESOLVE] java.lang.invoke.Invokers$Holder invoke LL_X", "invalid method type"},
		{"multi-char return", "[LF_RESOLVE] java.lang.invoke.Invokers$Holder invoke LL_LL", "invalid method type"},
		{"empty param part", "[LF_RESOLVE] java.lang.invoke.Invokers$Holder invoke _L", "invalid method type"},
		{"digit first param", "[LF_RESOLVE] java.lang.invoke.Invokers$Holder invoke 3L_L", "invalid method type"},
		{"no underscore", "[LF_RESOLVE] java.lang.invoke.Invokers$Holder invoke LLL", "invalid method type"},
		{"two underscores", "[LF_RESOLVE] java.lang.invoke.Invokers$Holder invoke L_L_L", "invalid method type"},
		{"species too many items", "[SPECIES_RESOLVE] Species_L Species_J", "incorrect number of items"},
		{"species bare prefix", "[SPECIES_RESOLVE]", "incorrect number of items"},
	}

	for _, tc := range cases {
		err := ValidateLines([]string{tc.line})
		if err == nil {
			t.Errorf("%s: expected rejection of %q", tc.name, tc.line)
			continue
		}
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("%s: expected *FormatError, got %T", tc.name, err)
			continue
		}
		if !strings.Contains(fe.Reason, tc.reason) {
			t.Errorf("%s: reason %q does not mention %q", tc.name, fe.Reason, tc.reason)
		}
		if fe.Line != tc.line {
			t.Errorf("%s: error carries line %q, want %q", tc.name, fe.Line, tc.line)
		}
	}
}

func TestValidateLinesReportsFirstViolation(t *testing.T) {
	lines := []string{
		"[LF_RESOLVE] java.lang.invoke.Invokers$Holder invoke LL_L",
		"[LF_RESOLVE] com.example.Foo invoke LL_L",
		"[BOGUS] also broken",
	}
	err := ValidateLines(lines)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError, got %v", err)
	}
	if fe.Line != lines[1] {
		t.Errorf("expected first violation (line 2) reported, got %q", fe.Line)
	}
	if !strings.Contains(fe.Reason, "invalid holder class name") {
		t.Errorf("unexpected reason: %s", fe.Reason)
	}
}

func TestValidateLinesIdempotent(t *testing.T) {
	lines := []string{
		"[LF_RESOLVE] java.lang.invoke.LambdaForm$Holder zero L_V",
		"[SPECIES_RESOLVE] L4",
	}
	for i := 0; i < 3; i++ {
		if err := ValidateLines(lines); err != nil {
			t.Fatalf("pass %d: revalidation of a valid batch failed: %v", i, err)
		}
	}
}

func TestValidateLinesEmptyBatch(t *testing.T) {
	if err := ValidateLines(nil); err != nil {
		t.Fatalf("empty batch should validate: %v", err)
	}
}

func TestParseLine(t *testing.T) {
	ln, err := ParseLine("[LF_RESOLVE] java.lang.invoke.Invokers$Holder invokeExact_MT LLL_V")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ln.Kind != KindLambdaForm {
		t.Errorf("kind = %v, want KindLambdaForm", ln.Kind)
	}
	if ln.Holder != InvokersHolderClassName {
		t.Errorf("holder = %q", ln.Holder)
	}
	if ln.MethodName != "invokeExact_MT" || ln.MethodType != "LLL_V" {
		t.Errorf("method = %q type = %q", ln.MethodName, ln.MethodType)
	}

	ln, err = ParseLine("[SPECIES_RESOLVE] java.lang.invoke.BoundMethodHandle$Species_LLI")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ln.Kind != KindSpecies || ln.Species != "java.lang.invoke.BoundMethodHandle$Species_LLI" {
		t.Errorf("unexpected species record: %+v", ln)
	}
}

func TestIsValidMethodType(t *testing.T) {
	valid := []string{"L_L", "LL_L", "L3I_V", "D_D", "J9_I", "V_V"}
	for _, typ := range valid {
		if !IsValidMethodType(typ) {
			t.Errorf("expected %q to be valid", typ)
		}
	}
	invalid := []string{"", "_", "_L", "L_", "X_L", "L_X", "L_LL", "LxL_L", "L_L_", "3_L"}
	for _, typ := range invalid {
		if IsValidMethodType(typ) {
			t.Errorf("expected %q to be invalid", typ)
		}
	}
}
