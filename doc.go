// Package main provides the entry point of AttendanceAdmin.
// It runs a Fiber based JSON API that manages members, departments, events and
// attendance records. Every request is authorized against the acting role of the
// session and, for responsables, the department the session is scoped to.
// Data is persisted with gorm on mysql, postgres or sqlite.
package main
