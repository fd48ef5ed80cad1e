package models

import "errors"

var (
	// ErrSymbolNotFound is returned when the data source does not know a symbol
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrNoStatements is returned when a symbol has no reporting periods
	ErrNoStatements = errors.New("no financial statements")
	// ErrEmptyResponse is returned when an LLM produces no text
	ErrEmptyResponse = errors.New("empty model response")
	// ErrNoSymbols is returned when a comparison is requested without symbols
	ErrNoSymbols = errors.New("no symbols requested")
	// ErrNoLLM is returned when an operation needs a model but none is configured
	ErrNoLLM = errors.New("no LLM client configured")
)
