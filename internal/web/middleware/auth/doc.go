// Package auth provides the session middleware of the JSON API.
//
// The middleware performs the following tasks:
//   - Validates the session cookie and answers 401 when it is missing or invalid
//   - Reloads the account and drops sessions of disabled accounts
//   - Opens the role context of the session and logs role changes
//   - Adds the account, the role context and the acting role to fiber.Locals
//
// Usage:
//
//	app.Use(authmiddleware.New(authService, cfg.Webserver.Session.ExpiryTime))
//
// Login, logout, health and metrics are served without session.
package auth
