// Package model defines the provider-agnostic language model interface the
// research agents generate text through, plus a deterministic MockModel for
// tests and examples. Provider backends live in the subpackages anthropic
// and openai.
package model
