// Package app contains the core application logic. It wires model
// discovery, the caching orchestrator and the output writers into a single
// run, decoupled from any specific entrypoint like a CLI or server.
package app
