package download

import (
	"net/url"
	"sort"
	"strings"
)

// BuildEndpoint turns a request path plus optional query parameters into a
// request-relative URL fragment. With no params the path is returned
// unchanged. Keys and values are percent-encoded independently and joined as
// key=value pairs with '&'. Keys are sorted so the result is deterministic
// for a given map.
func BuildEndpoint(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(params[k]))
	}
	return path + "?" + strings.Join(pairs, "&")
}
