// Package server exposes the hybrid search pipeline over HTTP.
//
// Routes:
//
//	GET /search?q=...&k=5&pool=150&boost=0.2&profile=true
//	GET /products/{id}
//	GET /healthz
//
// Invalid parameters map to 400, embedding provider failures to 502, and
// rate-limited requests to 429. Responses are JSON.
package server
