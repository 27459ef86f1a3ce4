package app

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/auth"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/config"
)

func init() { //nolint: gochecknoinits
	permissionsCmd.Flags().StringVar(&checkRole, "role", "", "Explain every permission for this acting role")
	permissionsCmd.Flags().StringVar(&checkScope, "scope", "", "Department scope of a responsable")
	permissionsCmd.Flags().StringVar(&checkTarget, "target", "", "Department of the record acted upon")

	rootCmd.AddCommand(permissionsCmd)
}

var (
	checkRole   string
	checkScope  string
	checkTarget string

	permissionsCmd = &cobra.Command{
		Use:   "permissions [resource.action]",
		Short: "Print the permission matrix or explain decisions for a role",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.ReadConfig(configPath)
			if err != nil {
				return err
			}

			engine := access.NewEngine(c.Access.EngineOptions())
			out := cmd.OutOrStdout()

			if checkRole == "" {
				return printMatrix(out, engine)
			}

			role, err := access.ParseRole(checkRole)
			if err != nil {
				return err
			}

			subject := access.NewSubject(role, checkScope)

			names := auth.PermissionNames(engine)
			if len(args) == 1 {
				names = args
			}

			return printDecisions(out, engine, subject, names, checkTarget)
		},
	}
)

func printMatrix(out io.Writer, engine *access.Engine) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PERMISSION\tRULE")

	for _, entry := range engine.Matrix() {
		fmt.Fprintf(w, "%s\t%s\n", entry.Permission, entry.Rule)
	}

	return w.Flush() //nolint:wrapcheck
}

func printDecisions(out io.Writer, engine *access.Engine, subject access.Subject, names []string, target string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PERMISSION\tALLOWED\tRULE\tREASON")

	for _, name := range names {
		permission, err := access.ParsePermission(name)
		if err != nil {
			return err
		}

		d := auth.Explain(engine, subject, permission, target)
		fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", d.Permission, d.Allowed, d.Rule, d.Reason)
	}

	return w.Flush() //nolint:wrapcheck
}
