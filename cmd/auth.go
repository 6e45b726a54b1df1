// ABOUTME: Account commands: login, register, logout, whoami, avatar
// ABOUTME: Missing credentials are prompted for with an interactive form

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/markalston/learnctl/internal/client"
	"github.com/markalston/learnctl/internal/models"
	"github.com/markalston/learnctl/internal/tui/forms"
	"github.com/markalston/learnctl/internal/validation"
)

var (
	loginUsername   string
	loginPassword   string
	registerEmail   string
	registerConfirm string
	whoamiRefresh   bool
)

// Prompts are swapped out in tests
var (
	promptLogin    = func(in *validation.LoginInput) error { return forms.Login(in).Run() }
	promptRegister = func(in *validation.RegisterInput) error { return forms.Register(in).Run() }
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	Long:  `Sign in with username and password. Prompts for anything not given as a flag.`,
	Args:  cobra.NoArgs,
	Run:   withApp(runLogin),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	Run:   withApp(runRegister),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and erase stored credentials",
	Args:  cobra.NoArgs,
	Run:   withApp(runLogout),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	Run:   withApp(runWhoami),
}

var avatarCmd = &cobra.Command{
	Use:   "avatar <image>",
	Short: "Upload a new profile picture",
	Args:  cobra.ExactArgs(1),
	Run:   withApp(runAvatar),
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, avatarCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")

	registerCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "Email address")
	registerCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")
	registerCmd.Flags().StringVar(&registerConfirm, "confirm-password", "", "Password again (defaults to --password)")

	whoamiCmd.Flags().BoolVar(&whoamiRefresh, "refresh", false, "Fetch the profile from the server")
}

func runLogin(ctx context.Context, a *app, w io.Writer, _ []string) int {
	in := validation.LoginInput{Username: loginUsername, Password: loginPassword}
	if in.Username == "" || in.Password == "" {
		if err := promptLogin(&in); err != nil {
			return fail(w, err)
		}
	}

	user, err := a.auth.Login(ctx, in.Username, in.Password)
	if client.IsAuth(err) {
		fmt.Fprintf(w, "Error: %s\n", client.MessageOf(err))
		return exitAuth
	}
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		return writeJSON(w, user)
	}
	fmt.Fprintf(w, "Logged in as %s\n", user.Username)
	return exitOK
}

func runRegister(ctx context.Context, a *app, w io.Writer, _ []string) int {
	in := validation.RegisterInput{
		Username:        loginUsername,
		Email:           registerEmail,
		Password:        loginPassword,
		ConfirmPassword: registerConfirm,
	}
	if in.ConfirmPassword == "" {
		in.ConfirmPassword = in.Password
	}
	if in.Username == "" || in.Email == "" || in.Password == "" {
		if err := promptRegister(&in); err != nil {
			return fail(w, err)
		}
	}

	user, signedIn, err := a.auth.Register(ctx, in)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		return writeJSON(w, map[string]any{"user": user, "signed_in": signedIn})
	}
	fmt.Fprintf(w, "Account %s created.\n", user.Username)
	if !signedIn {
		fmt.Fprintln(w, "Run 'learnctl login' to sign in.")
	}
	return exitOK
}

func runLogout(ctx context.Context, a *app, w io.Writer, _ []string) int {
	if err := a.auth.Logout(ctx); err != nil {
		return fail(w, err)
	}
	fmt.Fprintln(w, "Logged out")
	return exitOK
}

func runWhoami(ctx context.Context, a *app, w io.Writer, _ []string) int {
	if code, ok := requireLogin(a, w); !ok {
		return code
	}

	user := a.store.Session().User
	if whoamiRefresh {
		fresh, err := a.auth.RefreshProfile(ctx)
		if err != nil {
			return fail(w, err)
		}
		user = fresh
	}

	if IsJSONOutput() {
		return writeJSON(w, user)
	}
	fmt.Fprintln(w, formatUserHuman(user))
	return exitOK
}

func runAvatar(ctx context.Context, a *app, w io.Writer, args []string) int {
	user, err := a.auth.UpdateAvatar(ctx, args[0])
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, user)
	}
	fmt.Fprintln(w, "Avatar updated")
	fmt.Fprintln(w, formatUserHuman(user))
	return exitOK
}

// formatUserHuman formats a profile for human readability
func formatUserHuman(u *models.User) string {
	avatar := "-"
	if u.Avatar != nil && u.Avatar.URL != "" {
		avatar = u.Avatar.URL
	}
	return fmt.Sprintf(`Username: %s
Email:    %s
Role:     %s
Avatar:   %s`, u.Username, u.Email, u.Role, avatar)
}
