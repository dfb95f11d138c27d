package models

// --- Rule ---

type Rule struct {
	Key          string   `json:"key"`
	Route        string   `json:"route"`
	Group        *string  `json:"group,omitempty"`
	EndpointHash string   `json:"endpoint_hash"`
	Routing      *Routing `json:"routing"`
	Handler      *Handler `json:"handler"`
}

type Routing struct {
	Type    string   `json:"type"`
	Auth    string   `json:"auth"`
	Methods []string `json:"methods"`
	Routes  []string `json:"routes"`
	CSRF    bool     `json:"csrf"`
}

type Handler struct {
	ModulePath string  `json:"module_path"`
	SymbolName *string `json:"symbol_name,omitempty"`
	MethodName string  `json:"method_name"`
}

// --- Routing table ---

type RoutingTable struct {
	Version string        `json:"version"`
	BuiltAt string        `json:"built_at"`
	Failed  []string      `json:"failed"`
	Entries []*RouteEntry `json:"entries"`
}

type RouteEntry struct {
	Key     string   `json:"key"`
	Route   string   `json:"route"`
	Methods []string `json:"methods"`
}

// --- App ---

type App struct {
	TechName string   `json:"tech_name"`
	Name     string   `json:"name"`
	RootPath string   `json:"root_path"`
	AuthType string   `json:"auth_type"`
	Active   bool     `json:"active"`
	URLs     *AppURLs `json:"urls"`
}

type AppURLs struct {
	API      string `json:"api"`
	URL      string `json:"url"`
	Docs     string `json:"docs"`
	Manifest string `json:"manifest"`
}
