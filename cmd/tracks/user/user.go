package user

import (
	"strconv"

	"github.com/caarlos0/tablewriter"
	"github.com/spf13/cobra"
	"github.com/tracksdev/tracks/cmd"
	"github.com/tracksdev/tracks/pkg/backend"
	"github.com/tracksdev/tracks/pkg/proto"
)

// Command is the user subcommand.
var Command = &cobra.Command{
	Use:                "user",
	Aliases:            []string{"users"},
	Short:              "Manage users",
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
}

func init() {
	var admin bool
	var email string
	var displayName string
	var password string
	userCreateCommand := &cobra.Command{
		Use:   "create USERNAME",
		Short: "Create a new user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			username := args[0]

			user, err := be.CreateUser(ctx, username, displayName, email, password, admin)
			if err != nil {
				return err
			}

			cmd.Printf("Created user %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}

	userCreateCommand.Flags().BoolVarP(&admin, "admin", "a", false, "make the user an admin")
	userCreateCommand.Flags().StringVarP(&email, "email", "e", "", "the user's email address")
	userCreateCommand.Flags().StringVarP(&displayName, "display-name", "n", "", "the user's display name")
	userCreateCommand.Flags().StringVarP(&password, "password", "p", "", "the user's password")

	userDeleteCommand := &cobra.Command{
		Use:   "delete USERNAME",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)

			user, err := be.UserByUsername(ctx, args[0])
			if err != nil {
				return err
			}

			return be.DeleteAccount(ctx, user)
		},
	}

	userListCommand := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			users, err := be.Users(ctx)
			if err != nil {
				return err
			}

			return tablewriter.Render(
				cmd.OutOrStdout(),
				users,
				[]string{"ID", "Username", "Display Name", "Email", "Admin"},
				func(u proto.User) ([]string, error) {
					return []string{
						strconv.FormatInt(u.ID, 10),
						u.Username,
						u.DisplayName,
						u.Email,
						strconv.FormatBool(u.Admin),
					}, nil
				},
			)
		},
	}

	userInfoCommand := &cobra.Command{
		Use:   "info USERNAME",
		Short: "Show information about a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)

			user, err := be.UserByUsername(ctx, args[0])
			if err != nil {
				return err
			}

			cmd.Printf("Username: %s\n", user.Username)
			cmd.Printf("Display name: %s\n", user.DisplayName)
			cmd.Printf("Email: %s\n", user.Email)
			cmd.Printf("Admin: %t\n", user.Admin)

			return nil
		},
	}

	var newPassword string
	userSetPasswordCommand := &cobra.Command{
		Use:   "set-password USERNAME",
		Short: "Set a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)

			user, err := be.UserByUsername(ctx, args[0])
			if err != nil {
				return err
			}

			return be.SetUserPassword(ctx, user, newPassword)
		},
	}

	userSetPasswordCommand.Flags().StringVarP(&newPassword, "password", "p", "", "the new password")

	Command.AddCommand(
		userCreateCommand,
		userInfoCommand,
		userListCommand,
		userDeleteCommand,
		userSetPasswordCommand,
	)
}
