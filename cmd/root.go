// ABOUTME: Root command for the learnctl CLI
// ABOUTME: Handles global flags and configuration

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	apiURL     string
	dataDir    string
	jsonOutput bool
	ephemeral  bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "learnctl",
	Short: "Terminal client for the learning catalog",
	Long: `learnctl signs in to the learning catalog API, fetches courses and
instructors, and keeps bookmarks, enrollment, progress and search history
locally.

Exit codes:
  0 - Success
  1 - Not logged in, session expired, or action refused
  2 - Error (network, validation, storage)

Environment Variables:
  LEARN_API_URL          API root (default: https://api.freeapi.app/api/v1)
  LEARN_DATA_DIR         Local state directory (default: ~/.config/learnctl)
  LEARN_KEY_DIR          Credential key directory (default: ~/.local/state/learnctl)
  LEARN_REQUEST_TIMEOUT  Per-request timeout (default: 15s)
  LEARN_CATALOG_SIZE     Courses fetched per refresh (default: 10)
  LEARN_ALL_PROXY        ssh+socks5://user@host:port?private-key=/path
  LOG_LEVEL, LOG_FORMAT  Logging (debug|info|warn|error, text|json)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API root URL (overrides LEARN_API_URL)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Local state directory (overrides LEARN_DATA_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep state in memory only for this invocation")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
