package solver

import (
	"sort"
	"strings"
)

// Scope says whether a named option must be applied to the environment
// before it starts, or to the per-solve model.
type Scope int

const (
	// ScopeModel options are applied to each model handle before solving.
	ScopeModel Scope = iota

	// ScopeEnvironment options must be staged on the environment before it
	// transitions to started. Applying one afterwards is an invalid-state
	// error.
	ScopeEnvironment
)

// String returns the scope name.
func (s Scope) String() string {
	if s == ScopeEnvironment {
		return "environment"
	}
	return "model"
}

// envParams is the fixed classification registry for environment-scoped
// option names. Connection and license-scoped settings have to be in place
// before the environment starts; everything else rides on the model.
// Lookup is case-insensitive, values are the canonical spellings.
var envParams = map[string]string{
	"computeserver":  "ComputeServer",
	"serverpassword": "ServerPassword",
	"servertimeout":  "ServerTimeout",
	"tokenserver":    "TokenServer",
	"licenseid":      "LicenseID",
	"csrouter":       "CSRouter",
	"cloudaccessid":  "CloudAccessID",
	"cloudsecretkey": "CloudSecretKey",
	"memlimit":       "MemLimit",
	"logfile":        "LogFile",
}

// modelParams enumerates the known model-scoped option names. Unknown names
// also classify as model-scoped; this table only canonicalizes spelling.
var modelParams = map[string]string{
	"timelimit":      "TimeLimit",
	"threads":        "Threads",
	"mipgap":         "MIPGap",
	"mipgapabs":      "MIPGapAbs",
	"outputflag":     "OutputFlag",
	"presolve":       "Presolve",
	"seed":           "Seed",
	"iterationlimit": "IterationLimit",
	"nodelimit":      "NodeLimit",
	"method":         "Method",
}

// Classify returns the scope of an option name. Names are matched
// case-insensitively; names absent from both tables default to ScopeModel.
func Classify(name string) Scope {
	if _, ok := envParams[strings.ToLower(name)]; ok {
		return ScopeEnvironment
	}
	return ScopeModel
}

// CanonicalName returns the canonical spelling of a known option name, or
// the input unchanged when the name is not in either registry.
func CanonicalName(name string) string {
	key := strings.ToLower(name)
	if canonical, ok := envParams[key]; ok {
		return canonical
	}
	if canonical, ok := modelParams[key]; ok {
		return canonical
	}
	return name
}

// Param is a single named option value. Merged option maps are flattened
// into ordered Param lists so each setting is routed exactly once.
type Param struct {
	Name  string
	Value interface{}
}

// mergeOptions combines constructor-time options with per-call overrides.
// Call-time values win on conflict; conflicts are detected on the
// canonical name so "TimeLimit" and "timelimit" collide as expected.
func mergeOptions(base, overrides map[string]interface{}) []Param {
	merged := make(map[string]interface{}, len(base)+len(overrides))
	order := make([]string, 0, len(base)+len(overrides))
	for name, value := range base {
		key := CanonicalName(name)
		if _, seen := merged[key]; !seen {
			order = append(order, key)
		}
		merged[key] = value
	}
	for name, value := range overrides {
		key := CanonicalName(name)
		if _, seen := merged[key]; !seen {
			order = append(order, key)
		}
		merged[key] = value
	}
	// Lexicographic order keeps parameter application reproducible.
	sort.Strings(order)
	params := make([]Param, 0, len(order))
	for _, name := range order {
		params = append(params, Param{Name: name, Value: merged[name]})
	}
	return params
}
