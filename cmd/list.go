package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/internal/prompt"
	"github.com/evalgate/evalgate/internal/suite"
)

func newListCmd() *cobra.Command {
	var (
		promptsDir string
		suitesDir  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available prompts and evaluation suites",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := suite.List(suitesDir)
			if err != nil {
				return fmt.Errorf("failed to list suites: %w", err)
			}

			if len(names) == 0 {
				fmt.Println("No suites found.")
			} else {
				fmt.Printf("Available suites:\n\n")
				for _, name := range names {
					s, err := suite.Load(name, suitesDir)
					if err != nil {
						fmt.Printf("  - %s (error loading: %v)\n", name, err)
						continue
					}
					fmt.Printf("  - %s\n", s.Name)
					if s.Description != "" {
						fmt.Printf("    Description: %s\n", s.Description)
					}
					if s.Version != "" {
						fmt.Printf("    Version: %s\n", s.Version)
					}
					fmt.Printf("    Prompt: %s\n", s.Prompt)
					fmt.Printf("    Metrics: %d\n\n", len(s.Metrics))
				}
			}

			prompts, err := prompt.NewStore(promptsDir).List()
			if err != nil {
				return fmt.Errorf("failed to list prompts: %w", err)
			}

			if len(prompts) == 0 {
				fmt.Println("No prompts found.")
				return nil
			}

			fmt.Printf("Available prompts:\n\n")
			for _, name := range prompts {
				fmt.Printf("  - %s\n", name)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&promptsDir, "prompts-dir", "", "External prompts directory")
	cmd.Flags().StringVar(&suitesDir, "suites-dir", "", "External suites directory")

	return cmd
}
