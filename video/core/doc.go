// Package core holds the error classes and numeric helpers shared by the
// rolling shutter packages.
package core
