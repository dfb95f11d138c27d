package handler

import (
	"fmt"
	"strings"
)

// Ref is a declarative pointer to a handler method, resolved when a routing map is built.
type Ref struct {
	ModulePath    string                 `json:"module_path" mapstructure:"module_path" msgpack:"module_path"`
	SymbolName    string                 `json:"symbol_name,omitempty" mapstructure:"symbol_name" msgpack:"symbol_name"`
	MethodName    string                 `json:"method_name" mapstructure:"method_name" msgpack:"method_name"`
	DefaultPargs  []interface{}          `json:"default_pargs,omitempty" mapstructure:"default_pargs" msgpack:"default_pargs"`
	DefaultKwargs map[string]interface{} `json:"default_kwargs,omitempty" mapstructure:"default_kwargs" msgpack:"default_kwargs"`
}

// Target returns the module and symbol the reference points to. A dotted module path
// without an explicit symbol carries the symbol as its last element.
func (r Ref) Target() (module, symbol string) {
	if r.SymbolName != "" {
		return r.ModulePath, r.SymbolName
	}
	if i := strings.LastIndex(r.ModulePath, "."); i > 0 {
		return r.ModulePath[:i], r.ModulePath[i+1:]
	}
	return r.ModulePath, ""
}

// MissingKeys lists the mandatory keys the reference lacks.
func (r Ref) MissingKeys() []string {
	var missing []string
	if strings.TrimSpace(r.ModulePath) == "" {
		missing = append(missing, "module_path")
	}
	if strings.TrimSpace(r.MethodName) == "" {
		missing = append(missing, "method_name")
	}
	return missing
}

func (r Ref) String() string {
	module, symbol := r.Target()
	return module + "." + symbol + "." + r.MethodName
}

func (r Ref) cacheKey() string {
	// fmt prints maps with sorted keys
	return fmt.Sprintf("%s|%v|%v", r.String(), r.DefaultPargs, r.DefaultKwargs)
}

// Args carries the default arguments a reference binds into its method.
type Args struct {
	Positional []interface{}
	Keyword    map[string]interface{}
}

func (r Ref) args() Args {
	a := Args{Keyword: make(map[string]interface{}, len(r.DefaultKwargs))}
	if len(r.DefaultPargs) > 0 {
		a.Positional = append([]interface{}(nil), r.DefaultPargs...)
	}
	for k, v := range r.DefaultKwargs {
		a.Keyword[k] = v
	}
	return a
}
