package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/humanityclub/hco-backend/internal/core/domain"
	"github.com/humanityclub/hco-backend/internal/core/ports"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrators",
		Long:  "Create, list and reset administrators directly in the store, bypassing the HTTP registration gate.",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminListCmd())
	cmd.AddCommand(newAdminResetPasswordCmd())

	return cmd
}

// ---------- admin create ----------

func newAdminCreateCmd() *cobra.Command {
	var input ports.RegisterInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new administrator",
		Example: `  hco admin create --name "Site Owner" --email owner@example.org --username owner --role superadmin
  hco admin create --name Editor --email editor@example.org --username editor --password 'long-secret'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminCreate(cmd.Context(), cmd.OutOrStdout(), input)
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&input.Email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&input.Username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&input.Password, "password", "", "Password (prompted if omitted)")
	cmd.Flags().StringVar(&input.Role, "role", string(domain.DefaultRole), "Role: admin, superadmin or moderator")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func runAdminCreate(ctx context.Context, out io.Writer, input ports.RegisterInput) error {
	if !strings.Contains(input.Email, "@") {
		return fmt.Errorf("invalid email address: %q", input.Email)
	}
	if input.Password == "" {
		pw, err := promptPassword(true)
		if err != nil {
			return err
		}
		input.Password = pw
	}

	a, err := openApp(commandContext(ctx), os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	admin, err := a.authService(nil).Register(commandContext(ctx), input, domain.SystemActor)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Created %s %q (%s)\n", admin.Role, admin.Username, admin.ID)
	return nil
}

// ---------- admin list ----------

func newAdminListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all administrators",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminList(cmd.Context(), cmd.OutOrStdout(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runAdminList(ctx context.Context, out io.Writer, jsonOutput bool) error {
	a, err := openApp(commandContext(ctx), os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	admins, err := a.repo.List(commandContext(ctx))
	if err != nil {
		return err
	}

	return printAdmins(out, admins, jsonOutput)
}

func printAdmins(out io.Writer, admins []*domain.Admin, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(admins)
	}

	if len(admins) == 0 {
		fmt.Fprintln(out, "No administrators found. Use 'hco admin create' to create one.")
		return nil
	}

	fmt.Fprintf(out, "%-26s %-20s %-32s %-12s %s\n", "ID", "USERNAME", "EMAIL", "ROLE", "CREATED")
	fmt.Fprintf(out, "%-26s %-20s %-32s %-12s %s\n", "--", "--------", "-----", "----", "-------")
	for _, a := range admins {
		fmt.Fprintf(out, "%-26s %-20s %-32s %-12s %s\n",
			a.ID, a.Username, a.Email, a.Role, a.CreatedAt.Format(time.DateOnly))
	}
	return nil
}

// ---------- admin reset-password ----------

func newAdminResetPasswordCmd() *cobra.Command {
	var identifier, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password and end the administrator's session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminResetPassword(cmd.Context(), cmd.OutOrStdout(), identifier, password)
		},
	}

	cmd.Flags().StringVar(&identifier, "identifier", "", "Email or username (required)")
	cmd.Flags().StringVar(&password, "password", "", "New password (prompted if omitted)")
	_ = cmd.MarkFlagRequired("identifier")

	return cmd
}

func runAdminResetPassword(ctx context.Context, out io.Writer, identifier, password string) error {
	if password == "" {
		pw, err := promptPassword(true)
		if err != nil {
			return err
		}
		password = pw
	}

	a, err := openApp(commandContext(ctx), os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	admin, err := a.repo.FindByIdentifier(commandContext(ctx), identifier)
	if err != nil {
		return err
	}
	if err := a.authService(nil).ChangePassword(commandContext(ctx), admin.ID, password); err != nil {
		return err
	}

	fmt.Fprintf(out, "Password updated for %q; active session revoked\n", admin.Username)
	return nil
}

func promptPassword(confirm bool) (string, error) {
	fmt.Print("Password: ")
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	if confirm {
		fmt.Print("Confirm password: ")
		confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return "", fmt.Errorf("failed to read confirmation: %w", err)
		}
		fmt.Println()

		if string(pwBytes) != string(confirmBytes) {
			return "", fmt.Errorf("passwords do not match")
		}
	}

	return string(pwBytes), nil
}

func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
