// Package gnstar holds build information of the gnstar application.
package gnstar

var (
	// Version of gnstar, set by build flags.
	Version = "v0.1.0"

	// Build timestamp, set by build flags.
	Build = "n/a"
)
