package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/score"
)

// platformsCmd represents the platforms command
var platformsCmd = &cobra.Command{
	Use:   "platforms [url-or-name]",
	Short: "List known platforms or resolve one",
	Long: `Platforms prints the platform table used to weigh report sources,
with each platform's tier and base trust.

With an argument it shows how that URL or name is resolved.

Example:
  reliefscout platforms
  reliefscout platforms https://www.reuters.com/world/
  reliefscout platforms reddit`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		engine, err := score.NewEngine(cfg.Rules, time.Now)
		if err != nil {
			return fmt.Errorf("scoring rules: %w", err)
		}
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			info := engine.Platforms().Resolve(args[0])
			fmt.Fprintf(out, "Platform:    %s (%s)\n", info.PlatformName, info.Platform)
			fmt.Fprintf(out, "Tier:        %d\n", info.Tier)
			fmt.Fprintf(out, "Base trust:  %.2f\n", info.BaseTrust)
			fmt.Fprintf(out, "Official:    %v\n", info.IsOfficial)
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTIER\tTRUST\tPATTERNS")
		for _, e := range engine.Platforms().Entries() {
			fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%s\n", e.ID, e.Name, e.Tier, e.Trust, strings.Join(e.Patterns, ", "))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(platformsCmd)
}
