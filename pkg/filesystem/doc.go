// Package filesystem provides filesystem implementations for the installer.
//
// It contains implementations of the types.FS interface: the standard OS
// filesystem used in production and an afero-backed one used in tests.
package filesystem
