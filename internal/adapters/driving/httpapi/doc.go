// Package httpapi exposes the answer, indexing and dataset services as a
// JSON API over HTTP, routed with chi and guarded by CORS.
package httpapi
