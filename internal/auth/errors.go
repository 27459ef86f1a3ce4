package auth

import "errors"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")

	// ErrEngineNil is returned when the service is created without a permission engine.
	ErrEngineNil = errors.New("permission engine is nil")

	// ErrInvalidOldPassword is returned when the provided old password does not match the user's current password.
	ErrInvalidOldPassword = errors.New("invalid old password")

	// ErrUserNameExists is returned when attempting to create a user with a username that already exists.
	ErrUserNameExists = errors.New("user with username already exists")

	// ErrUserAccountDisabled is returned when attempting to authenticate an account that is pending or inactive.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrPasswordTooShort is returned when a new password has fewer than MinPasswordLength characters.
	ErrPasswordTooShort = errors.New("password is too short")

	// ErrBirthDateInFuture is returned when a birth date lies after today.
	ErrBirthDateInFuture = errors.New("birth date is in the future")

	// ErrAgeOutOfRange is returned when the age derived from the birth date is not between MinAge and MaxAge.
	ErrAgeOutOfRange = errors.New("age is out of range")

	// ErrDepartmentRequired is returned when a responsable role is assigned without a department.
	ErrDepartmentRequired = errors.New("responsable role requires a department")

	// ErrUnknownDepartment is returned when a role is assigned with a department that does not exist.
	ErrUnknownDepartment = errors.New("department does not exist")

	// ErrSelfDelete is returned when an account tries to delete itself.
	ErrSelfDelete = errors.New("an account cannot delete itself")

	// ErrNoRoleAssigned is returned when an account without role tries to log in.
	ErrNoRoleAssigned = errors.New("no role assigned to account")

	// ErrRoleSwitchNotAllowed is returned when a non admin account tries to switch its acting role.
	ErrRoleSwitchNotAllowed = errors.New("role switch is reserved to admin accounts")
)
