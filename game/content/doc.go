// Package content supplies narrative flavor for game events.
//
// The Gemini provider calls the generateContent REST endpoint and asks for
// JSON replies for personal, global and catastrophe events and plain text
// for character banter. The engine clamps every number it returns and
// falls back to built-in content whenever a call fails, so a missing key
// or an outage never blocks a turn.
package content
