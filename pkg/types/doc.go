// Package types holds the small set of interfaces and value types
// shared across sessionctl's packages.
package types
