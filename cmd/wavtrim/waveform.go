package main

import (
	"encoding/json"
	"fmt"

	"github.com/berlandbor/wavtrim"
	"github.com/spf13/cobra"
)

func newWaveformCmd(a *app) *cobra.Command {
	var (
		edit          editFlags
		width, height int
		full, asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "waveform <input>",
		Short: "Draw the min/max waveform of the trimmed range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := a.loadSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := edit.apply(cmd, session); err != nil {
				return err
			}

			if !cmd.Flags().Changed("width") {
				width = a.cfg.Waveform.Width
			}

			var points []wavtrim.WaveformPoint
			if full {
				points, err = session.FullWaveform(width)
			} else {
				points, err = session.Waveform(width)
			}

			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")

				return enc.Encode(points)
			}

			fmt.Fprintln(out, session.TrimLabel())
			fmt.Fprint(out, wavtrim.RenderASCII(points, height))

			return nil
		},
	}

	edit.bind(cmd, false)
	cmd.Flags().IntVar(&width, "width", wavtrim.DefaultWaveformWidth, "number of columns (default from config)")
	cmd.Flags().IntVar(&height, "height", 20, "rows of the text drawing")
	cmd.Flags().BoolVar(&full, "full", false, "ignore the trim range")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the points as JSON")

	return cmd
}
