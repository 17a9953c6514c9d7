package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		edit   editFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <input>",
		Short: "Render the trimmed range and save it as a WAV file",
		Example: `  wavtrim export song.mp3 --start 12.5 --end 20
  wavtrim export take.wav --rate 1.25 --gain 0.8 -o faster.wav`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := a.loadSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := edit.apply(cmd, session); err != nil {
				return err
			}

			out, err := session.Export(cmd.Context())
			if err != nil {
				return err
			}

			if output == "" {
				output = a.cfg.Export.Filename
			}

			if err := os.WriteFile(output, out.Data, 0o644); err != nil {
				return fmt.Errorf("error writing %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d frames, %d channel(s), %d bytes\n",
				output, out.Frames, out.Channels, len(out.Data))

			return nil
		},
	}

	edit.bind(cmd, true)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default from config: processed_audio.wav)")

	return cmd
}
