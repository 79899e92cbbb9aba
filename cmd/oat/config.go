package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oat-cli/oat/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  oat config                                  # Show all config
  oat config email                            # Get one value
  oat config email dept@colostate.edu         # Set a value
  oat config path                             # Print the config file location

Keys:
  email               Contact email sent with API requests (polite pool)
  tavily-api-key      Tavily API key for abbreviated-name resolution
  institution         Default institution for --affiliated and name context
  institution-domain  Institution website domain, e.g. colostate.edu

Settings live in $XDG_CONFIG_HOME/oat/config.json. Flags and environment
variables (OPENALEX_EMAIL, TAVILY_API_KEY) take precedence over stored
values at run time.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// ConfigView is the show-all response. The API key is masked; use an
// explicit get to read it back.
type ConfigView struct {
	Path              string `json:"path"`
	Email             string `json:"email,omitempty"`
	TavilyAPIKey      string `json:"tavily_api_key,omitempty"`
	Institution       string `json:"institution,omitempty"`
	InstitutionDomain string `json:"institution_domain,omitempty"`
}

// ConfigValue is the single-key get response.
type ConfigValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ConfigUpdate is the set response.
type ConfigUpdate struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := config.Path()
	cfg := mustLoadConfig()

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("path:               %s\n", path)
			fmt.Printf("email:              %s\n", cfg.Email)
			fmt.Printf("tavily-api-key:     %s\n", maskSecret(cfg.TavilyAPIKey))
			fmt.Printf("institution:        %s\n", cfg.Institution)
			fmt.Printf("institution-domain: %s\n", cfg.InstitutionDomain)
		} else {
			outputJSON(ConfigView{
				Path:              path,
				Email:             cfg.Email,
				TavilyAPIKey:      maskSecret(cfg.TavilyAPIKey),
				Institution:       cfg.Institution,
				InstitutionDomain: cfg.InstitutionDomain,
			})
		}
		return nil
	}

	key := args[0]
	if strings.EqualFold(key, "path") {
		if humanOutput {
			fmt.Println(path)
		} else {
			outputJSON(ConfigValue{Key: "path", Value: path})
		}
		return nil
	}

	// One arg: get specific value
	if len(args) == 1 {
		value, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(ConfigValue{Key: key, Value: value})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if err := config.Save(path, cfg); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Set %s\n", key)
	} else {
		outputJSON(ConfigUpdate{Status: "updated", Key: key, Value: value})
	}
	return nil
}

// maskSecret hides all but the trailing characters of a secret.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
