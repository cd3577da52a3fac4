// Package model defines the generation capability consumed by the
// specialists and the routing supervisor: a synchronous
// Generate(instructions, input, effort) -> text contract with pluggable
// provider adapters (see the openai and anthropic subpackages) and a
// MockModel for tests and examples.
package model
