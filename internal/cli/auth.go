package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/ntn/internal/auth"
	"github.com/aidanlsb/ntn/internal/config"
	"github.com/aidanlsb/ntn/internal/ui"
)

var (
	loginToken  string
	loginAPIKey string
	loginUserID string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored credentials",
	Long: `Credentials are looked up in order: --token/--api-key flags, the
NTN_TOKEN_V2/NTN_API_KEY environment variables, a .env file in the current
directory, then the credentials file next to config.toml.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a session token and/or API key",
	Long: `Stores credentials in the credentials file (mode 0600). Values not given
keep what is already stored.

The session token is the token_v2 cookie of a signed-in browser session.

Examples:
  ntn auth login --token <token_v2>
  ntn auth login --api-key secret_xxx`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(loginToken) == "" && strings.TrimSpace(loginAPIKey) == "" && strings.TrimSpace(loginUserID) == "" {
			return handleErrorMsg(ErrMissingArgument, "nothing to store", "Pass --token, --api-key or --user-id")
		}
		path := auth.Path(config.Dir(configPath))
		creds, err := auth.Load(path)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if v := strings.TrimSpace(loginToken); v != "" {
			creds.TokenV2 = v
		}
		if v := strings.TrimSpace(loginAPIKey); v != "" {
			creds.APIKey = v
		}
		if v := strings.TrimSpace(loginUserID); v != "" {
			creds.UserID = v
		}
		if err := auth.Save(path, creds); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(authStatus(path, creds), nil)
			return nil
		}
		printLine("%s", ui.Successf("Saved credentials to %s", path))
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Delete stored credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := auth.Path(config.Dir(configPath))
		if err := auth.Remove(path); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"path": path, "removed": true}, nil)
			return nil
		}
		printLine("%s", ui.Successf("Removed %s", path))
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which credentials are in effect",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver := credentials()
		status := map[string]interface{}{"credentials_file": resolver.Path}

		token, tokenSource, tokenErr := resolver.Token()
		key, keySource, keyErr := resolver.APIKey()
		status["token_v2"] = credentialStatus(token, tokenSource, tokenErr)
		status["api_key"] = credentialStatus(key, keySource, keyErr)
		if id := activeUserID(); id != "" {
			status["user_id"] = id
		}

		if isJSONOutput() {
			outputSuccess(status, nil)
			return nil
		}
		printLine("%s", ui.Header("Credentials"))
		printLine("  token_v2  %s", describeCredential(token, tokenSource, tokenErr))
		printLine("  api key   %s", describeCredential(key, keySource, keyErr))
		if id, ok := status["user_id"].(string); ok {
			printLine("  user      %s", ui.ID(id))
		}
		printLine("%s", ui.Hint("File: "+resolver.Path))
		return nil
	},
}

func authStatus(path string, creds *auth.Credentials) map[string]interface{} {
	return map[string]interface{}{
		"credentials_file": path,
		"token_v2":         credentialStatus(creds.TokenV2, auth.SourceFile, nil),
		"api_key":          credentialStatus(creds.APIKey, auth.SourceFile, nil),
	}
}

func credentialStatus(value string, source auth.Source, err error) map[string]interface{} {
	if err != nil || value == "" {
		return map[string]interface{}{"configured": false}
	}
	return map[string]interface{}{"configured": true, "source": string(source), "value": auth.Mask(value)}
}

func describeCredential(value string, source auth.Source, err error) string {
	if err != nil || value == "" {
		return ui.Hint("not configured")
	}
	return fmt.Sprintf("%s %s", auth.Mask(value), ui.Hint("("+string(source)+")"))
}

func init() {
	authLoginCmd.Flags().StringVar(&loginToken, "token", "", "Session token (token_v2 cookie)")
	authLoginCmd.Flags().StringVar(&loginAPIKey, "api-key", "", "Public API integration key")
	authLoginCmd.Flags().StringVar(&loginUserID, "user-id", "", "Active user id for multi-account sessions")

	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
