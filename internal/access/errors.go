package access

import "errors"

var (
	// ErrInvalidRole is returned when a role string is not one of the known roles.
	ErrInvalidRole = errors.New("invalid role")

	// ErrPermissionDenied is returned by Authorize when the subject may not perform the action.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrMissingTargetDepartment is returned by Authorize when a department scoped
	// mutation is evaluated for a scoped role without a target department.
	ErrMissingTargetDepartment = errors.New("target department is required for this action")

	// ErrScopeRequiresResponsable is returned when a department scope is assigned
	// while the active role is not responsable.
	ErrScopeRequiresResponsable = errors.New("department scope can only be set for the responsable role")

	// ErrStoreNil is returned when a RoleContext is created without a store.
	ErrStoreNil = errors.New("role context store is nil")
)
