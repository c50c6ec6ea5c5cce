package emu

// Core identification reported to frontends.
const (
	Name    = "edmg"
	Version = "0.1.0"
)
