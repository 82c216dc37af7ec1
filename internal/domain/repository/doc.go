// Package repository defines the domain repository interfaces.
//
// The interfaces are storage-agnostic business contracts; concrete
// implementations live in internal/store/ (pg, memory).
//
// Conventions:
//   - context.Context is always the first parameter
//   - domain errors are in errors.go, matched with errors.Is
//   - user ids are opaque strings issued by the external identity service
package repository
