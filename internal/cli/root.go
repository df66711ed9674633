// Package cli is the terminal front end: every entity page of the web
// application becomes a command that drives the same list, form and delete
// screens.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/HankLeo/21-points/internal/client"
	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/ui"
)

const (
	EnvURL    = "TWENTYONEPOINTS_URL"
	EnvToken  = "TWENTYONEPOINTS_TOKEN"
	EnvAPIKey = "TWENTYONEPOINTS_API_KEY"
)

type app struct {
	url    string
	token  string
	apiKey string

	client  *client.Client
	screens map[string]screen
	router  *ui.Router
}

func (a *app) connect() {
	opts := []client.Option{client.WithToken(a.token)}
	if a.apiKey != "" {
		opts = append(opts, client.WithAPIKey(a.apiKey))
	}
	a.client = client.New(a.url, opts...)
	a.screens = map[string]screen{
		domain.PointsDescriptor.Name:        newScreen(a.client, domain.PointsDescriptor, ui.PointsDefaults),
		domain.WeightDescriptor.Name:        newScreen[domain.Weight](a.client, domain.WeightDescriptor, nil),
		domain.BloodPressureDescriptor.Name: newScreen[domain.BloodPressure](a.client, domain.BloodPressureDescriptor, nil),
		domain.PreferencesDescriptor.Name:   newScreen[domain.Preferences](a.client, domain.PreferencesDescriptor, nil),
	}
}

// NewRootCommand builds the command tree. Flags default to the
// TWENTYONEPOINTS_* environment variables.
func NewRootCommand() *cobra.Command {
	a := &app{router: ui.NewRouter(domain.Descriptors())}

	root := &cobra.Command{
		Use:           "twentyonepoints",
		Short:         "Track points, weight, blood pressure and preferences",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.connect()
		},
	}
	root.PersistentFlags().StringVar(&a.url, "url", getEnv(EnvURL, "http://localhost:8080"), "server base URL")
	root.PersistentFlags().StringVar(&a.token, "token", os.Getenv(EnvToken), "JWT from the login command")
	root.PersistentFlags().StringVar(&a.apiKey, "api-key", os.Getenv(EnvAPIKey), "API key, if the server requires one")

	root.AddCommand(a.loginCommand(), a.accountCommand(), a.openCommand())
	for _, d := range domain.Descriptors() {
		root.AddCommand(a.entityCommand(d))
	}
	return root
}

// Execute runs the command line and reports errors on stderr.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", describe(err))
		return 1
	}
	return 0
}

func (a *app) loginCommand() *cobra.Command {
	var username, password string
	var remember bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and print the token to export as " + EnvToken,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.client.Authenticate(cmd.Context(), username, password, remember)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "login")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.Flags().BoolVar(&remember, "remember-me", false, "issue a long-lived token")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) accountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := a.client.Account(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), acct)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describe turns API and validation failures into one readable line per
// field.
func describe(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	msg := err.Error()
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		for _, f := range apiErr.Problem.FieldErrors {
			msg += fmt.Sprintf("\n  %s: %s", f.Field, f.Message)
		}
	}
	return msg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
