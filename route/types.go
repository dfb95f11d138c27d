package route

import (
	"net/http"
	"sort"
	"sync"

	"endpoint.GO/handler"
)

// Type selects how a route is dispatched.
type Type string

const (
	TypeHTTP Type = "http"
	TypeJSON Type = "json" // JSON-RPC
)

const (
	AuthPublic = "public"
	AuthUser   = "user"
)

const (
	ContentTypeText = "text/plain"
	ContentTypeCSV  = "text/csv"
	ContentTypeJSON = "application/json"
	ContentTypeXML  = "application/xml"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

var (
	routeTypes   = []string{string(TypeHTTP), string(TypeJSON)}
	methods      = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}
	contentTypes = []string{"", ContentTypeText, ContentTypeCSV, ContentTypeJSON, ContentTypeXML, ContentTypeForm}

	authMu    sync.RWMutex
	authTypes = map[string]struct{}{AuthPublic: {}, AuthUser: {}}
)

// DefaultBlacklist lists routes no record may claim.
var DefaultBlacklist = []string{"/", "/web"}

// ReservedPrefixes are subtrees the server routes itself ahead of the routing map.
// They apply regardless of the configured blacklist.
var ReservedPrefixes = []string{"/api", "/graphql", "/playground"}

// RegisterAuthType extends the accepted auth_type values.
func RegisterAuthType(name string) {
	authMu.Lock()
	defer authMu.Unlock()
	authTypes[name] = struct{}{}
}

// AuthTypes returns the accepted auth_type values, sorted.
func AuthTypes() []string {
	authMu.RLock()
	defer authMu.RUnlock()
	out := make([]string, 0, len(authTypes))
	for k := range authTypes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func validAuthType(v string) bool {
	authMu.RLock()
	defer authMu.RUnlock()
	_, ok := authTypes[v]
	return ok
}

func Methods() []string      { return append([]string(nil), methods...) }
func ContentTypes() []string { return append([]string(nil), contentTypes...) }

// RequiresContentType reports whether requests with method carry a body.
func RequiresContentType(method string) bool {
	return method == http.MethodPost || method == http.MethodPut
}

// Options holds the handler reference of a route record.
type Options struct {
	Handler handler.Ref `json:"handler" mapstructure:"handler" msgpack:"handler"`
}

// Routing is the derived payload consumed by the dispatcher.
type Routing struct {
	Type    string   `json:"type"`
	Auth    string   `json:"auth"`
	Methods []string `json:"methods"`
	Routes  []string `json:"routes"`
	CSRF    bool     `json:"csrf"`
}

func (o Options) clone() Options {
	o.Handler.DefaultPargs, _ = cloneValue(o.Handler.DefaultPargs).([]interface{})
	o.Handler.DefaultKwargs, _ = cloneValue(o.Handler.DefaultKwargs).(map[string]interface{})
	return o
}

// cloneValue deep-copies the maps and slices of a decoded JSON value.
func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if t == nil {
			return t
		}
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []interface{}:
		if t == nil {
			return t
		}
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func (r Routing) clone() Routing {
	r.Methods = append([]string(nil), r.Methods...)
	r.Routes = append([]string(nil), r.Routes...)
	return r
}

// Fields are the dispatch-relevant inputs of a route record.
type Fields struct {
	Route              string
	RouteType          string
	AuthType           string
	RequestMethod      string
	RequestContentType string
	CSRF               bool
	Options            Options
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
