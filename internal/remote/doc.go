// Package remote serves an artifact store over HTTP and provides a client
// that implements the same store contract.
//
// Routes:
//
//	POST /v1/artifacts          create an artifact
//	POST /v1/artifacts/lookup   probe -> 200 artifact, 404 on a miss
//	GET  /v1/artifacts/:id      fetch one artifact
//	GET  /health                liveness
package remote
