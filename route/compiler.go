package route

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/mitchellh/mapstructure"
	"github.com/vmihailenco/msgpack/v5"

	"endpoint.GO/handler"
)

// Compiler normalizes, validates and compiles route records under a shared prefix and blacklist.
type Compiler struct {
	Prefix    string
	Blacklist []string
}

func NewCompiler(prefix string, blacklist []string) *Compiler {
	if blacklist == nil {
		blacklist = DefaultBlacklist
	}
	return &Compiler{Prefix: prefix, Blacklist: blacklist}
}

func (c *Compiler) Normalize(raw string) string {
	return Normalize(raw, c.Prefix)
}

// Normalize trims raw, ensures a leading slash and prepends prefix unless already present.
func Normalize(raw, prefix string) string {
	r := strings.TrimSpace(raw)
	if !strings.HasPrefix(r, "/") {
		r = "/" + r
	}
	p := strings.TrimRight(strings.TrimSpace(prefix), "/")
	if p == "" {
		return r
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasPrefix(r, p) {
		r = p + r
	}
	return r
}

// Validate checks f against the blacklist, the enums and the content-type rule.
// f.Route is expected to be normalized.
func (c *Compiler) Validate(f Fields) error {
	return Validate(f, c.Blacklist)
}

func Validate(f Fields, blacklist []string) error {
	if contains(blacklist, f.Route) || reserved(f.Route) {
		return &ValidationError{Kind: KindRouteConflict, Field: "route", Value: f.Route}
	}
	if !contains(routeTypes, f.RouteType) {
		return &ValidationError{Kind: KindEnum, Field: "route_type", Value: f.RouteType}
	}
	if !validAuthType(f.AuthType) {
		return &ValidationError{Kind: KindEnum, Field: "auth_type", Value: f.AuthType}
	}
	if !contains(methods, f.RequestMethod) {
		return &ValidationError{Kind: KindEnum, Field: "request_method", Value: f.RequestMethod}
	}
	if !contains(contentTypes, f.RequestContentType) {
		return &ValidationError{Kind: KindEnum, Field: "request_content_type", Value: f.RequestContentType}
	}
	if RequiresContentType(f.RequestMethod) && f.RequestContentType == "" {
		return &ValidationError{Kind: KindContentType, Field: "request_content_type", Value: f.RequestMethod}
	}
	return ValidateOptions(f.Options)
}

func reserved(r string) bool {
	for _, p := range ReservedPrefixes {
		if r == p || strings.HasPrefix(r, p+"/") {
			return true
		}
	}
	return false
}

// ValidateOptions requires the handler reference keys.
func ValidateOptions(o Options) error {
	if missing := o.Handler.MissingKeys(); len(missing) > 0 {
		return &ValidationError{Kind: KindMissingKey, Field: "options.handler", Keys: missing}
	}
	return nil
}

// Compile derives the routing payload. It does not validate.
func Compile(f Fields) Routing {
	return Routing{
		Type:    f.RouteType,
		Auth:    f.AuthType,
		Methods: []string{f.RequestMethod},
		Routes:  []string{f.Route},
		CSRF:    f.CSRF,
	}
}

// Hash fingerprints the dispatch-relevant tuple (route, auth_type, request_method, options, csrf).
func Hash(f Fields) (string, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	tuple := []interface{}{f.Route, f.AuthType, f.RequestMethod, f.Options, f.CSRF}
	if err := enc.Encode(tuple); err != nil {
		return "", fmt.Errorf("route: hash: %w", err)
	}
	return strconv.FormatUint(xxhash.Sum64(buf.Bytes()), 16), nil
}

// Prepared is a record ready to be stored.
type Prepared struct {
	Fields  Fields
	Routing Routing
	Hash    string
}

// Prepare normalizes, validates, compiles and hashes f. Options are brought to their
// stored form first so the hash matches what a later read would recompute.
func (c *Compiler) Prepare(f Fields) (*Prepared, error) {
	f.Route = c.Normalize(f.Route)
	opts, err := CanonicalOptions(f.Options)
	if err != nil {
		return nil, err
	}
	f.Options = opts
	if err := c.Validate(f); err != nil {
		return nil, err
	}
	h, err := Hash(f)
	if err != nil {
		return nil, err
	}
	return &Prepared{Fields: f, Routing: Compile(f), Hash: h}, nil
}

// EncodeRouting serializes the routing payload as stored.
func EncodeRouting(r Routing) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRouting(raw []byte) (Routing, error) {
	var r Routing
	if err := json.Unmarshal(raw, &r); err != nil {
		return Routing{}, fmt.Errorf("route: decode routing: %w", err)
	}
	return r, nil
}

func EncodeOptions(o Options) ([]byte, error) {
	return json.Marshal(o)
}

// DecodeOptions reads stored options. The legacy handler key klass_dotted_path is
// accepted as module_path.
func DecodeOptions(raw []byte) (Options, error) {
	var opts Options
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return opts, nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return opts, fmt.Errorf("route: decode options: %w", err)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: legacyHandlerKeys,
		Result:     &opts,
		TagName:    "mapstructure",
	})
	if err != nil {
		return opts, err
	}
	if err := dec.Decode(m); err != nil {
		return opts, fmt.Errorf("route: decode options: %w", err)
	}
	return opts, nil
}

// CanonicalOptions round-trips o through its stored encoding.
func CanonicalOptions(o Options) (Options, error) {
	raw, err := EncodeOptions(o)
	if err != nil {
		return Options{}, fmt.Errorf("route: encode options: %w", err)
	}
	return DecodeOptions(raw)
}

var refType = reflect.TypeOf(handler.Ref{})

func legacyHandlerKeys(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != refType {
		return data, nil
	}
	m, ok := data.(map[string]interface{})
	if !ok {
		return data, nil
	}
	if legacy, ok := m["klass_dotted_path"]; ok {
		if _, has := m["module_path"]; !has {
			m["module_path"] = legacy
		}
		delete(m, "klass_dotted_path")
	}
	return m, nil
}
