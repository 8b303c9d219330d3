// Package redfish serves the resource store as a Redfish service.
//
// Request handling is table driven. resources.yaml (embedded) lists the
// resource types the service knows, the URI templates each one answers on,
// and which methods and actions it permits. A request is routed by matching
// its normalized path against those templates:
//
//   - GET, HEAD: return the stored document ($metadata as XML)
//   - POST on an insertable collection: add a member (201 + Location)
//   - PUT, PATCH on an updatable singleton: replace or merge
//   - DELETE on a deletable singleton: remove it and everything below it
//   - POST <resource>/Actions/<Name>: invoke a declared action
//
// Methods a type does not permit get 405 with an Allow header. Paths that
// match no template but exist in the store are served read-only.
//
// Usage:
//
//	registry, err := redfish.DefaultRegistry()
//	store := fish.NewStore()
//	redfish.Seed(store)
//	http.Handle("/", redfish.NewHandler(store, registry, redfish.WithLogger(log)))
package redfish
