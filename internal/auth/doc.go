// Package auth provides authentication and authorization functionality for the application.
//
// Accounts live in the local database and are handled by LocalProvider:
// the secretariat creates pending accounts, an admin assigns a role (and a
// department for a responsable) which activates the account, and only active
// accounts with a role can log in. Passwords are hashed with Argon2id.
//
// # Authorization
//
// Service wraps the permission engine of package access. Every decision is
// counted in the access_decisions_total Prometheus counter and refusals are
// logged. The acting role of a session is held in an access.RoleContext
// persisted in the session storage; StartSession seeds it with the account
// role and SwitchRole lets admin accounts preview the application as another
// role.
//
// # Middleware
//
// Fiber middleware functions are provided for route protection:
//   - RequireSection: the acting role must see the section of a resource
//   - RequirePermission: the acting role must hold a permission
//
// Permissions whose decision depends on the department of a record pass the
// middleware for a responsable and are checked per record by the handler,
// e.g.:
//
//	subject := auth.CurrentSubject(c)
//	if err := authService.Authorize(subject, access.ResourceMembers, access.ActionUpdate, member.Dept); err != nil {
//	    return auth.Deny(c, err)
//	}
package auth
