package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodeTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		phase    string
		category string
	}{
		{"SYN001", SYN001, "parse", "syntax"},
		{"SYN005", SYN005, "parse", "indentation"},
		{"UNS001", UNS001, "parse", "feature"},
		{"ANN001", ANN001, "infer", "annotation"},
		{"AMB001", AMB001, "infer", "unification"},
		{"HET001", HET001, "sirbuild", "container"},
		{"BKD001", BKD001, "backend", "preferences"},
		{"IRP001", IRP001, "optimize", "parse"},
		{"OPT001", OPT001, "optimize", "config"},
		{"CFG001", CFG001, "config", "preferences"},
		{"CFG002", CFG002, "config", "fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, exists := GetErrorInfo(tt.code)
			if !exists {
				t.Errorf("Error code %s not found in registry", tt.code)
				return
			}

			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, tt.phase, info.Phase)
			assert.Equal(t, tt.category, info.Category)
		})
	}
}

func TestErrorTypeCheckers(t *testing.T) {
	tests := []struct {
		name          string
		code          string
		isSyntax      bool
		isUnsupported bool
		isInference   bool
		isBackend     bool
		isOptimizer   bool
	}{
		{"Syntax error", SYN001, true, false, false, false, false},
		{"Unsupported feature", UNS001, false, true, false, false, false},
		{"Missing annotation", ANN001, false, false, true, false, false},
		{"Ambiguous inference", AMB001, false, false, true, false, false},
		{"Backend error", BKD001, false, false, false, true, false},
		{"IR parse error", IRP001, false, false, false, false, true},
		{"Invalid optimization level", OPT001, false, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSyntaxError(tt.code); got != tt.isSyntax {
				t.Errorf("IsSyntaxError(%s) = %v, want %v", tt.code, got, tt.isSyntax)
			}
			if got := IsUnsupportedFeature(tt.code); got != tt.isUnsupported {
				t.Errorf("IsUnsupportedFeature(%s) = %v, want %v", tt.code, got, tt.isUnsupported)
			}
			if got := IsInferenceError(tt.code); got != tt.isInference {
				t.Errorf("IsInferenceError(%s) = %v, want %v", tt.code, got, tt.isInference)
			}
			if got := IsBackendError(tt.code); got != tt.isBackend {
				t.Errorf("IsBackendError(%s) = %v, want %v", tt.code, got, tt.isBackend)
			}
			if got := IsOptimizerError(tt.code); got != tt.isOptimizer {
				t.Errorf("IsOptimizerError(%s) = %v, want %v", tt.code, got, tt.isOptimizer)
			}
		})
	}
}

func TestAllErrorCodesInRegistry(t *testing.T) {
	allCodes := []string{
		SYN001, SYN002, SYN003, SYN004, SYN005, SYN006, SYN007,
		UNS001, UNS002, UNS003,
		ANN001, ANN002,
		AMB001, AMB002,
		HET001, HET002,
		BKD001, BKD002,
		IRP001, IRP002,
		OPT001, OPT002,
		CFG001, CFG002,
	}

	for _, code := range allCodes {
		t.Run(code, func(t *testing.T) {
			_, exists := GetErrorInfo(code)
			if !exists {
				t.Errorf("Error code %s is defined but not in registry", code)
			}
		})
	}

	assert.Len(t, ErrorRegistry, len(allCodes))
}

func TestErrorInfoConsistency(t *testing.T) {
	validPhases := map[string]bool{
		"parse": true, "infer": true, "sirbuild": true,
		"backend": true, "optimize": true, "config": true,
	}

	for code, info := range ErrorRegistry {
		if info.Code != code {
			t.Errorf("Code mismatch in registry: key=%s, info.Code=%s", code, info.Code)
		}

		if len(code) < 6 || len(code) > 6 {
			t.Errorf("Invalid code format: %s", code)
		}

		if !validPhases[info.Phase] {
			t.Errorf("Invalid phase for %s: %s", code, info.Phase)
		}

		if info.Description == "" {
			t.Errorf("Empty description for %s", code)
		}
	}
}
