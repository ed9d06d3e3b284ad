// Package pagedetect decides how an e-commerce listing page reveals more
// items: numbered next-page links, load-more buttons, URL offsets, or
// infinite scroll. It produces a machine-replayable strategy and validates
// it by exercising the live page rather than trusting static heuristics.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, gemini/, sqlite/); the
// detection pipeline itself lives in detect/.
package pagedetect
