package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/kennelhq/kennel"
	"github.com/kennelhq/kennel/config"
)

var userAddCmd = &cobra.Command{
	Use:   "user-add <username>",
	Short: "Create a user account",
	Long: `Create a user account directly in the database.

The password is read interactively and never echoed. Use --role to
create an admin account.

Examples:
  # Create a regular user
  kennel user-add alice

  # Create an admin
  kennel user-add --role admin ops`,
	Args: cobra.ExactArgs(1),
	RunE: runUserAdd,
}

var userAddRole string

func init() {
	userAddCmd.Flags().StringVar(&userAddRole, "role", kennel.RoleUser, "account role (user, admin)")
	rootCmd.AddCommand(userAddCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	username := args[0]

	if userAddRole != kennel.RoleUser && userAddRole != kennel.RoleAdmin {
		return fmt.Errorf("invalid role: %s", userAddRole)
	}

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	passwordPrompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(input string) error {
			n := utf8.RuneCountInString(input)
			if n < kennel.MinPasswordLength || n > kennel.MaxPasswordLength {
				return fmt.Errorf("password must be between %d and %d characters",
					kennel.MinPasswordLength, kennel.MaxPasswordLength)
			}
			return nil
		},
	}
	password, err := passwordPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	confirmPrompt := promptui.Prompt{
		Label: "Confirm password",
		Mask:  '*',
		Validate: func(input string) error {
			if input != password {
				return errors.New("passwords do not match")
			}
			return nil
		},
	}
	if _, err := confirmPrompt.Run(); err != nil {
		return handlePromptError(err)
	}

	d, err := setupDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.close()

	u, err := d.auth.CreateUser(ctx, username, password, userAddRole)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	slog.Info("user created", "id", u.ID, "username", u.Username, "role", u.Role)
	return nil
}

func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
