// Package tables registers the crash dataset definitions with the core registry.
// Import this package for its side effects before looking up a dataset.
package tables
