// Package errors provides centralized structured error reporting for the
// compiler. Every diagnostic the pipeline raises is a Report carrying a
// stable code, so tooling and tests can match on taxonomy rather than
// message text.
package errors

// Error code constants, one family per error kind the pipeline can raise.
// Codes are stable across releases; never renumber an existing one.
const (
	// ============================================================================
	// SyntaxError (SYN###) — lexer and parser
	// ============================================================================

	// SYN001 indicates an unexpected token was encountered during parsing.
	SYN001 = "SYN001"

	// SYN002 indicates a missing closing delimiter (paren, bracket, brace).
	SYN002 = "SYN002"

	// SYN003 indicates invalid function definition syntax.
	SYN003 = "SYN003"

	// SYN004 indicates invalid class definition syntax.
	SYN004 = "SYN004"

	// SYN005 indicates an inconsistent indentation (dedent with no matching level).
	SYN005 = "SYN005"

	// SYN006 indicates invalid import statement syntax.
	SYN006 = "SYN006"

	// SYN007 indicates invalid type annotation syntax.
	SYN007 = "SYN007"

	// ============================================================================
	// UnsupportedFeature (UNS###) — parser and SIR lowering
	// ============================================================================

	// UNS001 indicates a language construct outside the supported subset (e.g. decorators, generators, try/except).
	UNS001 = "UNS001"

	// UNS002 indicates multiple inheritance, which the subset disallows.
	UNS002 = "UNS002"

	// UNS003 indicates a starred or keyword argument, which the subset disallows.
	UNS003 = "UNS003"

	// ============================================================================
	// MissingAnnotation (ANN###) — Stage A signature collection
	// ============================================================================

	// ANN001 indicates a function parameter with no type annotation and no inferable default.
	ANN001 = "ANN001"

	// ANN002 indicates a class field with no type annotation.
	ANN002 = "ANN002"

	// ============================================================================
	// AmbiguousInference (AMB###) — Stage B dataflow
	// ============================================================================

	// AMB001 indicates a join of incompatible concrete types with no widening rule.
	AMB001 = "AMB001"

	// AMB002 indicates a variable whose confidence never rises above the ambiguity floor.
	AMB002 = "AMB002"

	// ============================================================================
	// HeterogeneousContainer (HET###) — SIR build
	// ============================================================================

	// HET001 indicates a container literal whose elements don't share a joinable type.
	HET001 = "HET001"

	// HET002 indicates a comprehension whose source and filter types disagree.
	HET002 = "HET002"

	// ============================================================================
	// UnsupportedByBackend (BKD###) — backend emission
	// ============================================================================

	// BKD001 indicates a SIR operation the target backend's preferences mark unsupported.
	BKD001 = "BKD001"

	// BKD002 indicates a container operation requested against a backend with containers feature-gated off.
	BKD002 = "BKD002"

	// ============================================================================
	// IRParseError (IRP###) — optimizer front door
	// ============================================================================

	// IRP001 indicates malformed LLVM IR text rejected by the parser.
	IRP001 = "IRP001"

	// IRP002 indicates an IR module that parsed but failed verification.
	IRP002 = "IRP002"

	// ============================================================================
	// InvalidOptimizationLevel (OPT###) — optimizer configuration
	// ============================================================================

	// OPT001 indicates an optimization level outside O0-O3.
	OPT001 = "OPT001"

	// OPT002 indicates conflicting optimizer preferences supplied together.
	OPT002 = "OPT002"

	// ============================================================================
	// ConfigError (CFG###) — compilation config loading, outside the core
	// ============================================================================

	// CFG001 indicates a preference key the target backends do not recognize.
	CFG001 = "CFG001"

	// CFG002 indicates a malformed or missing required field in a compilation config file.
	CFG002 = "CFG002"
)

// ErrorInfo provides structured information about an error code.
type ErrorInfo struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// ErrorRegistry maps error codes to their information.
var ErrorRegistry = map[string]ErrorInfo{
	SYN001: {SYN001, "parse", "syntax", "Unexpected token"},
	SYN002: {SYN002, "parse", "syntax", "Missing closing delimiter"},
	SYN003: {SYN003, "parse", "syntax", "Invalid function definition"},
	SYN004: {SYN004, "parse", "syntax", "Invalid class definition"},
	SYN005: {SYN005, "parse", "indentation", "Inconsistent dedent"},
	SYN006: {SYN006, "parse", "syntax", "Invalid import statement"},
	SYN007: {SYN007, "parse", "syntax", "Invalid type annotation"},

	UNS001: {UNS001, "parse", "feature", "Construct outside the supported subset"},
	UNS002: {UNS002, "parse", "feature", "Multiple inheritance not supported"},
	UNS003: {UNS003, "parse", "feature", "Starred or keyword argument not supported"},

	ANN001: {ANN001, "infer", "annotation", "Missing parameter annotation"},
	ANN002: {ANN002, "infer", "annotation", "Missing field annotation"},

	AMB001: {AMB001, "infer", "unification", "Incompatible join with no widening rule"},
	AMB002: {AMB002, "infer", "confidence", "Confidence never resolved above the ambiguity floor"},

	HET001: {HET001, "sirbuild", "container", "Container literal elements do not share a joinable type"},
	HET002: {HET002, "sirbuild", "container", "Comprehension source and filter types disagree"},

	BKD001: {BKD001, "backend", "preferences", "Operation unsupported by target backend"},
	BKD002: {BKD002, "backend", "preferences", "Container operation unsupported by target backend"},

	IRP001: {IRP001, "optimize", "parse", "Malformed IR text"},
	IRP002: {IRP002, "optimize", "verify", "IR module failed verification"},

	OPT001: {OPT001, "optimize", "config", "Optimization level outside O0-O3"},
	OPT002: {OPT002, "optimize", "config", "Conflicting optimizer preferences"},

	CFG001: {CFG001, "config", "preferences", "Unrecognized preference key"},
	CFG002: {CFG002, "config", "fields", "Malformed or missing config field"},
}

// GetErrorInfo returns information about an error code.
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, exists := ErrorRegistry[code]
	return info, exists
}

// IsSyntaxError checks if the error code is a syntax error.
func IsSyntaxError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "parse" && info.Category != "feature"
}

// IsUnsupportedFeature checks if the error code reports an unsupported language feature.
func IsUnsupportedFeature(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Category == "feature"
}

// IsInferenceError checks if the error code comes from the two-stage inference engine.
func IsInferenceError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "infer"
}

// IsBackendError checks if the error code comes from backend emission.
func IsBackendError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "backend"
}

// IsOptimizerError checks if the error code comes from the optimizer.
func IsOptimizerError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "optimize"
}
