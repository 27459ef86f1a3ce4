// Package navigation builds the navigation of a role: its landing page and
// the sections it may open.
package navigation

import "github.com/AttendanceAdmin/AttendanceAdmin/internal/access"

// LoginPage is where a caller without known role lands.
const LoginPage = "/login"

// Item is one entry of the navigation menu.
type Item struct {
	Section access.Resource `json:"section"`
	Title   string          `json:"title"`
	Path    string          `json:"path"`
}

var items = map[access.Resource]Item{ //nolint:gochecknoglobals
	access.ResourceDashboard:      {Title: "Tableau de bord", Path: "/dashboard"},
	access.ResourceMembers:        {Title: "Membres", Path: "/members"},
	access.ResourceDepartments:    {Title: "Départements", Path: "/departments"},
	access.ResourceEvents:         {Title: "Événements", Path: "/events"},
	access.ResourceAttendances:    {Title: "Présences", Path: "/attendances"},
	access.ResourceReports:        {Title: "Rapports", Path: "/reports"},
	access.ResourceUsers:          {Title: "Utilisateurs", Path: "/users"},
	access.ResourceUserCreation:   {Title: "Nouveau compte", Path: "/users/new"},
	access.ResourceRoleAssignment: {Title: "Attribution des rôles", Path: "/users/roles"},
	access.ResourceHomeContent:    {Title: "Contenu d'accueil", Path: "/home-content"},
}

// Menu returns the navigation items of the sections role may view.
func Menu(engine *access.Engine, role access.Role) []Item {
	sections := engine.VisibleSections(role)
	out := make([]Item, 0, len(sections))

	for _, section := range sections {
		item, ok := items[section]
		if !ok {
			continue
		}

		item.Section = section
		out = append(out, item)
	}

	return out
}

// HomePage returns the landing page of a role after login.
func HomePage(role access.Role) string {
	if !role.Valid() {
		return LoginPage
	}

	return "/" + role.String()
}
