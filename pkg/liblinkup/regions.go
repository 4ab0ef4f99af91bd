package liblinkup

import (
	"strings"

	"github.com/pkg/errors"
)

// GlobalEndpoint is used when a region code is unrecognized.
const GlobalEndpoint = "https://api.libreview.io"

// Canonical region codes and their API bases.
var regionEndpoints = map[string]string{
	"global": GlobalEndpoint,
	"eu":     "https://api-eu.libreview.io",
	"eu2":    "https://api-eu2.libreview.io",
	"de":     "https://api-de.libreview.io",
	"fr":     "https://api-fr.libreview.io",
	"jp":     "https://api-jp.libreview.io",
	"ap":     "https://api-ap.libreview.io",
	"au":     "https://api-au.libreview.io",
	"ae":     "https://api-ae.libreview.io",
	"us":     "https://api-us.libreview.io",
	"ca":     "https://api-ca.libreview.io",
	"la":     "https://api-la.libreview.io",
}

// Aliases resolve to a canonical code. The ru entry is a policy approximation
// (the vendor does not document a Russian endpoint) and can be overridden.
var regionAliases = map[string]string{
	"gb": "eu",
	"uk": "eu",
	"ru": "global",
	"tw": "ap",
	"kr": "ap",
}

// Regions maps region codes to endpoints and endpoints back to canonical
// codes. The mapping is static apart from explicit overrides.
type Regions struct {
	endpoints map[string]string // code (canonical or alias) -> endpoint
	canonical map[string]string // endpoint -> canonical code
}

// NewRegions builds the bidirectional region table, applying overrides on top
// of the built-in aliases. Overrides map a code to a canonical region code.
// The table is validated for alias consistency.
func NewRegions(overrides map[string]string) (*Regions, error) {
	r := &Regions{
		endpoints: make(map[string]string, len(regionEndpoints)+len(regionAliases)),
		canonical: make(map[string]string, len(regionEndpoints)),
	}

	for code, endpoint := range regionEndpoints {
		r.endpoints[code] = endpoint
		if previous, ok := r.canonical[endpoint]; ok {
			return nil, errors.Errorf("regions %s and %s share endpoint %s", previous, code, endpoint)
		}
		r.canonical[endpoint] = code
	}

	for alias, target := range regionAliases {
		endpoint, ok := regionEndpoints[target]
		if !ok {
			return nil, errors.Errorf("region alias %s targets unknown region %s", alias, target)
		}
		r.endpoints[alias] = endpoint
	}

	for alias, target := range overrides {
		endpoint, ok := regionEndpoints[strings.ToLower(target)]
		if !ok {
			return nil, errors.Errorf("region override %s targets unknown region %s", alias, target)
		}
		r.endpoints[strings.ToLower(alias)] = endpoint
	}

	return r, nil
}

// EndpointFor returns the API base for the given region code. Unknown codes
// fall back to the global endpoint.
func (r *Regions) EndpointFor(code string) string {
	if endpoint, ok := r.endpoints[strings.ToLower(code)]; ok {
		return endpoint
	}
	return GlobalEndpoint
}

// CodeFor reverse-maps an endpoint to its canonical region code, used to
// persist the region after a server-issued redirect.
func (r *Regions) CodeFor(endpoint string) (string, bool) {
	code, ok := r.canonical[endpoint]
	return code, ok
}
