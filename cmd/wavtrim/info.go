package main

import (
	"encoding/json"
	"fmt"

	"github.com/berlandbor/wavtrim/codec"
	"github.com/spf13/cobra"
)

type clipInfo struct {
	Path       string      `json:"path"`
	Format     string      `json:"format"`
	Duration   float64     `json:"duration"`
	SampleRate int         `json:"sample_rate"`
	Channels   int         `json:"channels"`
	Frames     int         `json:"frames"`
	Tags       *codec.Tags `json:"tags,omitempty"`
}

func newInfoCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <input>",
		Short: "Print the format, length and tags of a clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, raw, err := a.loadSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			asset := session.Asset()
			info := clipInfo{
				Path:       args[0],
				Duration:   asset.Duration(),
				SampleRate: asset.SampleRate(),
				Channels:   asset.NumChannels(),
				Frames:     asset.NumFrames(),
			}

			if format, err := codec.Detect(raw); err == nil {
				info.Format = string(format)
			}

			tags, err := codec.ReadTags(raw)
			if err != nil {
				return err
			}

			if *tags != (codec.Tags{}) {
				info.Tags = tags
			}

			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")

				return enc.Encode(info)
			}

			fmt.Fprintf(out, "File:        %s\n", info.Path)
			fmt.Fprintf(out, "Format:      %s\n", info.Format)
			fmt.Fprintf(out, "Duration:    %.3fs\n", info.Duration)
			fmt.Fprintf(out, "Sample rate: %d Hz\n", info.SampleRate)
			fmt.Fprintf(out, "Channels:    %d\n", info.Channels)
			fmt.Fprintf(out, "Frames:      %d\n", info.Frames)

			if info.Tags == nil {
				fmt.Fprintln(out, "No tags present")
				return nil
			}

			fmt.Fprintf(out, "Title:       %s\n", info.Tags.Title)
			fmt.Fprintf(out, "Artist:      %s\n", info.Tags.Artist)
			fmt.Fprintf(out, "Album:       %s\n", info.Tags.Album)
			fmt.Fprintf(out, "Genre:       %s\n", info.Tags.Genre)

			if info.Tags.Year != 0 {
				fmt.Fprintf(out, "Year:        %d\n", info.Tags.Year)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}
