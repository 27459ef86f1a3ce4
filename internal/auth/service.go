package auth

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/controller/department"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

const (
	decisionAllow = "allow"
	decisionDeny  = "deny"
)

// decisions counts permission checks by resource, action and outcome.
var decisions = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "access_decisions_total",
		Help: "Number of permission decisions, differentiated by resource, action and decision.",
	},
	[]string{"resource", "action", "decision"},
)

// Service provides authentication and authorization functionality.
type Service struct {
	db          *gorm.DB
	engine      *access.Engine
	local       *LocalProvider
	departments access.DepartmentsFunc
}

// NewService creates a new auth service. Departments for responsable
// role contexts are read from the database.
func NewService(db *gorm.DB, engine *access.Engine) (*Service, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if engine == nil {
		return nil, ErrEngineNil
	}

	return &Service{
		db:     db,
		engine: engine,
		local:  NewLocalProvider(db),
		departments: func() ([]string, error) {
			return department.Names(db)
		},
	}, nil
}

// Engine returns the permission engine.
func (s *Service) Engine() *access.Engine {
	return s.engine
}

// Local returns the local account provider.
func (s *Service) Local() *LocalProvider {
	return s.local
}

// RoleContext opens the role context persisted in store.
func (s *Service) RoleContext(store access.Store) (*access.RoleContext, error) {
	rc, err := access.NewRoleContext(store, s.departments)
	if err != nil {
		return nil, errors.Wrap(err, "open role context")
	}

	return rc, nil
}

// StartSession sets the acting role of a role context to the role and department of the account.
func (s *Service) StartSession(rc *access.RoleContext, user *models.User) error {
	return errors.Wrapf(rc.Set(user.Role, user.Dept), "start session of %s", user.Username)
}

// SyncSession resets the acting role of a session that no longer matches the account,
// e.g. after an admin assigned another role or department. Only admin accounts may
// act with a role other than their own. It reports whether the session was reset.
func (s *Service) SyncSession(rc *access.RoleContext, user *models.User) (bool, error) {
	if user.Role == access.RoleAdmin {
		return false, nil
	}

	current := rc.Current()
	want := access.NewSubject(user.Role, user.Dept)

	if current.Role == want.Role && (current.Scope == want.Scope || (want.Role.Scoped() && want.Scope == "")) {
		return false, nil
	}

	if err := s.StartSession(rc, user); err != nil {
		return false, err
	}

	return true, nil
}

// SwitchRole changes the acting role of a session. Only admin accounts may preview other roles.
// scope is only used for the responsable role and must name an existing department.
func (s *Service) SwitchRole(rc *access.RoleContext, user *models.User, role access.Role, scope string) error {
	if user.Role != access.RoleAdmin {
		return ErrRoleSwitchNotAllowed
	}

	if !role.Scoped() {
		scope = ""
	}

	if err := s.checkDepartment(scope); err != nil {
		return err
	}

	return rc.Set(role, scope) //nolint:wrapcheck
}

// SwitchDepartment changes the department scope of an admin account previewing the responsable role.
func (s *Service) SwitchDepartment(rc *access.RoleContext, user *models.User, scope string) error {
	if user.Role != access.RoleAdmin {
		return ErrRoleSwitchNotAllowed
	}

	if err := s.checkDepartment(scope); err != nil {
		return err
	}

	return rc.SetDepartmentScope(scope) //nolint:wrapcheck
}

func (s *Service) checkDepartment(name string) error {
	if name == "" {
		return nil
	}

	exists, err := department.Exists(s.db, name)
	if err != nil {
		return errors.Wrap(err, "check department scope")
	}

	if !exists {
		return ErrUnknownDepartment
	}

	return nil
}

// Check reports whether subject may perform action on resource for the target department.
func (s *Service) Check(subject access.Subject, resource access.Resource, action access.Action, target string) bool {
	allowed := s.engine.Check(subject, resource, action, target)
	record(resource, action, allowed)

	return allowed
}

// Authorize is Check with an error describing a refusal.
func (s *Service) Authorize(subject access.Subject, resource access.Resource, action access.Action, target string) error {
	err := s.engine.Authorize(subject, resource, action, target)
	record(resource, action, err == nil)

	if err != nil {
		log.Warn().
			Str("role", subject.Role.String()).
			Str("scope", subject.Scope).
			Str("permission", access.Permission{Resource: resource, Action: action}.String()).
			Str("target", target).
			Err(err).
			Msg("permission denied")
	}

	return err //nolint:wrapcheck
}

// VisibleSections lists the sections the role may open.
func (s *Service) VisibleSections(role access.Role) []access.Resource {
	return s.engine.VisibleSections(role)
}

func record(resource access.Resource, action access.Action, allowed bool) {
	decision := decisionDeny
	if allowed {
		decision = decisionAllow
	}

	decisions.WithLabelValues(string(resource), string(action), decision).Inc()
}

// LogRoleChanges returns a listener logging every change of acting role of the given account.
func LogRoleChanges(username string) access.ChangeListener {
	return func(subject access.Subject) {
		log.Info().
			Str("user", username).
			Str("role", subject.Role.String()).
			Str("scope", subject.Scope).
			Msg("acting role changed")
	}
}
