package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"employee-records/internal/config"
	"employee-records/internal/database"
	"employee-records/internal/model"
	"employee-records/internal/repository"
	"employee-records/internal/service"
	"employee-records/pkg/apierror"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage application accounts",
}

// passwordEnv lets scripts supply the initial password without a flag, so
// it never shows up in shell history or the process list.
const passwordEnv = "USER_PASSWORD"

var userCreateInput model.CreateUserInput
var userCreateRole string

var (
	readTerminalPassword = term.ReadPassword
	isTerminal           = term.IsTerminal
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account, typically the first administrator",
	Long: "Create an account. The password is read from " + passwordEnv + " when set, otherwise\n" +
		"from the terminal without echo, or from the first line of standard input.",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		userCreateInput.Password = password

		cfg := config.Parse()
		if err := cfg.ValidateDatabase(); err != nil {
			return err
		}

		db, err := database.New(cmd.Context(), cfg.DatabaseURL, 2, 0)
		if err != nil {
			return err
		}
		defer db.Close()

		users := service.NewUserService(
			repository.NewUserRepository(db.Pool),
			repository.NewRoleRepository(db.Pool),
			service.NewAuditService(repository.NewAuditRepository(db.Pool)),
			cfg.BcryptCost,
		)

		created, err := users.CreateUserWithRoleName(cmd.Context(), userCreateInput, userCreateRole)
		if err != nil {
			return describeCreateError(err)
		}

		slog.Info("user created", "id", created.ID, "username", created.Username, "role", created.RoleName)
		return nil
	},
}

func readPassword(cmd *cobra.Command) (string, error) {
	if password := os.Getenv(passwordEnv); password != "" {
		return password, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		password, err := readTerminalPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(password), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func describeCreateError(err error) error {
	var apiErr *apierror.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	if len(apiErr.Fields) == 0 {
		return fmt.Errorf("%s: %s", apiErr.Message, apiErr.Details)
	}
	msg := apiErr.Message
	for field, problem := range apiErr.Fields {
		msg += fmt.Sprintf("; %s: %s", field, problem)
	}
	return errors.New(msg)
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	flags := userCreateCmd.Flags()
	flags.StringVar(&userCreateInput.Username, "username", "", "login name")
	flags.StringVar(&userCreateInput.FirstName, "first-name", "", "first name")
	flags.StringVar(&userCreateInput.LastName, "last-name", "", "last name")
	flags.StringVar(&userCreateRole, "role", model.RoleViewer, "role name (Admin, Editor or Viewer)")

	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("first-name")
}
