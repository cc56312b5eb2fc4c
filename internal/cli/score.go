package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/score"
)

var (
	recordFile   string
	platformHint string
	rawText      string
	mediaKind    string
	enrichPeople bool
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score an already classified report",
	Long: `Score runs only the credibility engine on a classification record,
skipping fetching and classification. The record is read as JSON from
--record, or from stdin when --record is "-".

The full evaluation (platform, donation, freshness and people signals and
the verdict) is printed as JSON.

Example:
  reliefscout score --record record.json --platform twitter --text "Donate now via bit.ly/x"
  cat record.json | reliefscout score --record - --platform https://earthquake.usgs.gov/`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&recordFile, "record", "", "classification record JSON file, - for stdin (empty scores no record)")
	scoreCmd.Flags().StringVar(&platformHint, "platform", "", "platform hint: URL or platform name")
	scoreCmd.Flags().StringVar(&rawText, "text", "", "raw report text")
	scoreCmd.Flags().StringVar(&mediaKind, "media", "", "media kind (image_url, image_upload)")
	scoreCmd.Flags().BoolVar(&enrichPeople, "enrich-people", false, "fill a missing people_affected from the text")
}

func runScore(cmd *cobra.Command, args []string) error {
	media := model.MediaKind(mediaKind)
	switch media {
	case model.MediaNone, model.MediaImageURL, model.MediaImageUpload:
	default:
		return fmt.Errorf("unknown media %q (supported: image_url, image_upload)", mediaKind)
	}

	record, err := readRecord(cmd.InOrStdin(), recordFile)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := score.NewEngine(cfg.Rules, time.Now)
	if err != nil {
		return fmt.Errorf("scoring rules: %w", err)
	}

	eval := engine.Evaluate(score.Request{
		Record:       record,
		PlatformHint: platformHint,
		Text:         rawText,
		Media:        media,
		EnrichPeople: enrichPeople,
	})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(eval)
}

// readRecord decodes a classification record from path, or stdin for "-".
// An empty path means no record.
func readRecord(stdin io.Reader, path string) (*model.ClassificationRecord, error) {
	if path == "" {
		return nil, nil
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}

	var rec model.ClassificationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	return &rec, nil
}
