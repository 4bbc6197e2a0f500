package api

import (
	"net/http"
	"strings"
)

// RouteKind tags a route with the part of the API it belongs to
type RouteKind int

const (
	RouteAuth RouteKind = iota
	RouteProjects
	RoutePartners
	RouteCertificates
	RouteUpload
)

func (k RouteKind) String() string {
	switch k {
	case RouteAuth:
		return "auth"
	case RouteProjects:
		return "projects"
	case RoutePartners:
		return "partners"
	case RouteCertificates:
		return "certificates"
	case RouteUpload:
		return "upload"
	}
	return "unknown"
}

// Route is one entry of the dispatch table
type Route struct {
	Kind     RouteKind
	Method   string
	Resource string
	// WithID routes take a trailing {id} segment.
	WithID bool
	// Protected routes require a valid bearer token.
	Protected bool
	Handler   http.HandlerFunc
}

// Path returns the mux path template of the route below prefix
func (rt Route) Path(prefix string) string {
	p := strings.TrimRight(prefix, "/") + "/" + rt.Resource
	if rt.WithID {
		p += "/{id}"
	}
	return p
}

// Key identifies the route by method and path template
func (rt Route) Key() string {
	return rt.Method + " " + rt.Path("")
}
