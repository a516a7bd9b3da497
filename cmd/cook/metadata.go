package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cooklang/internal/diagfmt"
	"cooklang/internal/metadata"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata [flags] file.cook",
	Short: "Extract recipe metadata without parsing the steps",
	Args:  cobra.ExactArgs(1),
	RunE:  runMetadata,
}

type metadataPayload struct {
	Entries  []diagfmt.MetaEntryJSON `json:"entries"`
	Tags     []string                `json:"tags,omitempty"`
	Emoji    string                  `json:"emoji,omitempty"`
	Author   *metadata.NameAndURL    `json:"author,omitempty"`
	Source   *metadata.NameAndURL    `json:"source,omitempty"`
	Servings []uint32                `json:"servings,omitempty"`
	Time     *metadata.RecipeTime    `json:"time,omitempty"`
}

func runMetadata(cmd *cobra.Command, args []string) error {
	p, err := buildParser(cmd)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	meta, bag := p.ParseMetadata(args[0], content)

	if bag.Len() > 0 {
		fmt.Fprintf(os.Stderr, "%d metadata diagnostics in %s\n", bag.Len(), args[0])
	}

	payload := metadataPayload{
		Tags:     meta.Tags,
		Emoji:    meta.Emoji,
		Author:   meta.Author,
		Source:   meta.Source,
		Servings: meta.Servings,
		Time:     meta.Time,
	}
	// entries hold only the free-form keys, the special ones are already
	// surfaced as typed fields above
	for _, pair := range meta.MapFiltered() {
		payload.Entries = append(payload.Entries, diagfmt.MetaEntryJSON{
			Key:   pair.Key,
			Value: pair.Value,
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
