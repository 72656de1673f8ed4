package handlers

import (
	"net/http"
	"strconv"
)

// getParam returns a path parameter value regardless of whether the router
// stores it with a leading colon (pat) or via the stdlib PathValue API.
func getParam(r *http.Request, name string) string {
	if r == nil {
		return ""
	}

	if val := r.URL.Query().Get(":" + name); val != "" {
		return val
	}

	if val := r.URL.Query().Get(name); val != "" {
		return val
	}

	return r.PathValue(name)
}

func getIntParam(r *http.Request, name string) (int, error) {
	return strconv.Atoi(getParam(r, name))
}
