package engine

// Backends linked into every session.
import _ "mainboard-engine/internal/opengl"
