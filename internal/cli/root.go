// Package cli implements the command-line interface.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/ntn/internal/audit"
	"github.com/aidanlsb/ntn/internal/auth"
	"github.com/aidanlsb/ntn/internal/buildinfo"
	"github.com/aidanlsb/ntn/internal/config"
	"github.com/aidanlsb/ntn/internal/fetch"
	"github.com/aidanlsb/ntn/internal/logger"
	"github.com/aidanlsb/ntn/internal/mutate"
	"github.com/aidanlsb/ntn/internal/notion"
	"github.com/aidanlsb/ntn/internal/official"
	"github.com/aidanlsb/ntn/internal/ui"
)

var (
	// Global flags
	configPath string
	tokenFlag  string
	apiKeyFlag string
	verbose    bool

	// Resolved values
	resolvedConfigPath string
	cfg                *config.Config
	dotEnv             map[string]string
)

// Seams for tests.
var (
	newInternalAPI = defaultInternalAPI
	newOfficial    = defaultOfficial
	now            = time.Now
	newID          func() string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ntn",
	Short: "ntn - a command-line client for Notion",
	Long: `ntn reads and edits Notion pages, databases and comments from the terminal.

Most commands drive the same internal API the web app uses and authenticate
with the token_v2 session cookie. The 'ntn api' commands use the public API
with an integration key instead.

Every command accepts --json for a stable machine-readable envelope.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)

		switch cmd.Name() {
		case "completion", "help", "version":
			return nil
		}

		var err error
		cfg, resolvedConfigPath, err = loadGlobalConfigWithPath()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "Check the syntax of "+config.ResolveConfigPath(configPath))
		}
		cfg.ApplyEnv(os.Getenv)
		if cfg.UI.Accent != "" {
			ui.ConfigureTheme(cfg.UI.Accent)
		}
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)

		dotEnv, err = auth.ReadDotEnv(".env")
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI with ctx as the root context of every command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Session token (token_v2) for this invocation")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "Public API integration key for this invocation")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for scripts)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log requests to stderr")
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.ResolveConfigPath(configPath)

	var loadedCfg *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loadedCfg, err = config.LoadFrom(configPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, "", err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}
	return loadedCfg, resolvedPath, nil
}

func credentials() auth.Resolver {
	return auth.Resolver{
		FlagToken:  tokenFlag,
		FlagAPIKey: apiKeyFlag,
		Getenv:     os.Getenv,
		DotEnv:     dotEnv,
		Path:       auth.Path(config.Dir(configPath)),
	}
}

func defaultInternalAPI() (mutate.API, error) {
	c := getConfig()
	creds := credentials()
	token, source, err := creds.Token()
	if err != nil {
		return nil, err
	}
	logger.Debug("session token", "source", string(source))

	return notion.New(notion.Options{
		BaseURL:           c.BaseURL,
		Token:             token,
		UserID:            activeUserID(),
		UserAgent:         buildinfo.UserAgent(),
		HTTPClient:        &http.Client{Timeout: c.Timeout()},
		RequestsPerSecond: c.RequestsPerSecond,
	}), nil
}

// activeUserID is the configured user, else the one stored at login.
func activeUserID() string {
	if id := getConfig().UserID; id != "" {
		return id
	}
	return credentials().UserID()
}

func defaultOfficial() (*official.Client, error) {
	c := getConfig()
	key, source, err := credentials().APIKey()
	if err != nil {
		return nil, err
	}
	logger.Debug("api key", "source", string(source))
	return official.New(official.Options{
		APIKey:     key,
		BaseURL:    c.APIBaseURL,
		HTTPClient: &http.Client{Timeout: c.Timeout()},
	})
}

func readService(api fetch.API) *fetch.Service {
	svc := fetch.New(api)
	c := getConfig()
	if c.QueryLimit > 0 {
		svc.QueryLimit = c.QueryLimit
	}
	svc.TimeZone = c.TimeZone
	return svc
}

func writeService(api mutate.API) *mutate.Service {
	return mutate.New(api, mutate.Options{
		UserID: activeUserID(),
		Now:    now,
		NewID:  newID,
	})
}

// internalServices builds the read and write services over one client.
func internalServices() (*fetch.Service, *mutate.Service, error) {
	api, err := newInternalAPI()
	if err != nil {
		return nil, nil, err
	}
	journal := audit.New(config.Dir(configPath), getConfig().Audit)
	return readService(api), writeService(audit.Wrap(api, journal)), nil
}

// printLine writes a line of text output.
func printLine(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}
