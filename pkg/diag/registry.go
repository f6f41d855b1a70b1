package diag

// Template defines a registered diagnostic.
type Template struct {
	Category Category
	Severity Severity
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://jsxc.vango.dev/docs/errors/"

// registry maps codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Recoverable (J001-J099)
	// ============================================

	"J001": {
		Category: CategoryCompile,
		Severity: Recoverable,
		Message:  "Unsupported expression in JSX slot",
		Detail:   "The slot holds something that is not an expression. A non-functional placeholder was emitted in its place.",
		DocURL:   docBase + "J001",
	},

	// ============================================
	// Structural (J101-J199)
	// ============================================

	"J101": {
		Category: CategoryCompile,
		Severity: Structural,
		Message:  "Duplicate attribute",
		Detail:   "The attribute appears more than once on the same element. The last occurrence wins.",
		DocURL:   docBase + "J101",
	},
	"J102": {
		Category: CategoryCompile,
		Severity: Structural,
		Message:  "Malformed namespaced attribute",
		Detail:   "Namespaced attributes take the form namespace:name with both parts present.",
		DocURL:   docBase + "J102",
	},
	"J103": {
		Category: CategoryCompile,
		Severity: Structural,
		Message:  "Invalid spread target",
		Detail:   "Only objects can be spread into attributes. The spread was dropped.",
		DocURL:   docBase + "J103",
	},
	"J104": {
		Category: CategoryCompile,
		Severity: Structural,
		Message:  "List component expects a callback child",
		Detail:   "List built-ins render their children once per item and need a function child such as (item, index) => <li>{item}</li>.",
		DocURL:   docBase + "J104",
	},
	"J105": {
		Category: CategoryCompile,
		Severity: Structural,
		Message:  "Unknown built-in component",
		Detail:   "The name was configured as a built-in but no shaping rule exists for it. It is compiled as a regular component.",
		DocURL:   docBase + "J105",
	},
	"J106": {
		Category: CategoryCompile,
		Severity: Structural,
		Message:  "ref requires an expression",
		Detail:   "ref must be a variable, a property, or a callback. String refs are ignored.",
		DocURL:   docBase + "J106",
	},

	// ============================================
	// Fatal (J900-J999)
	// ============================================

	"J900": {
		Category: CategoryCompile,
		Severity: Fatal,
		Message:  "Template slots do not match bindings",
		Detail:   "The template skeleton recorded a different set of slots than the classifier produced bindings. This is an internal compiler error.",
		DocURL:   docBase + "J900",
	},
	"J901": {
		Category: CategoryCompile,
		Severity: Fatal,
		Message:  "Slot path does not resolve",
		Detail:   "Replaying a slot path against the parsed template did not reach the node that produced it. This is an internal compiler error.",
		DocURL:   docBase + "J901",
	},
	"J902": {
		Category: CategoryCompile,
		Severity: Fatal,
		Message:  "Hydration key order diverged",
		Detail:   "A generator claimed hydration keys in a different order than planned. Server and client output would not line up.",
		DocURL:   docBase + "J902",
	},
	"J903": {
		Category: CategoryCompile,
		Severity: Fatal,
		Message:  "Invalid syntax tree",
		Detail:   "The AST supplied by the parser violates its structural guarantees.",
		DocURL:   docBase + "J903",
	},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Severity: Fatal,
		Message:  "Invalid configuration",
		Detail:   "The jsxc.json file contains invalid values.",
		DocURL:   docBase + "E120",
	},
	"E121": {
		Category: CategoryConfig,
		Severity: Fatal,
		Message:  "Configuration file not found",
		Detail:   "No jsxc.json was found in this directory or any parent directory.",
		DocURL:   docBase + "E121",
	},
	"E122": {
		Category: CategoryConfig,
		Severity: Fatal,
		Message:  "Invalid generate mode",
		Detail:   "compiler.generate must be \"dom\" or \"ssr\".",
		DocURL:   docBase + "E122",
	},

	// ============================================
	// CLI and Build Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Severity: Fatal,
		Message:  "Input file not found",
		Detail:   "The AST file passed to jsxc could not be opened.",
		DocURL:   docBase + "E140",
	},
	"E141": {
		Category: CategoryConfig,
		Severity: Fatal,
		Message:  "Failed to parse jsxc.json",
		Detail:   "The configuration file is not valid JSON.",
		DocURL:   docBase + "E141",
	},
	"E142": {
		Category: CategoryBuild,
		Severity: Fatal,
		Message:  "Failed to decode AST",
		Detail:   "The input is not a valid JSX syntax tree in the jsxc JSON format.",
		DocURL:   docBase + "E142",
	},
	"E143": {
		Category: CategoryBuild,
		Severity: Fatal,
		Message:  "Failed to write output",
		Detail:   "The compiled module could not be written or published.",
		DocURL:   docBase + "E143",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
