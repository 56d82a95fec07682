// Package content generates puzzle definitions from a theme with Gemini on
// Vertex AI. The model returns a JSON word list with hints, which is cleaned
// up into an engine.PuzzleConfig that always passes validation.
package content
