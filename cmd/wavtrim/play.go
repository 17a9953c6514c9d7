package main

import (
	"fmt"
	"log"

	"github.com/berlandbor/wavtrim"
	"github.com/berlandbor/wavtrim/internal/sink"
	"github.com/spf13/cobra"
)

func newPlayCmd(a *app) *cobra.Command {
	var edit editFlags

	cmd := &cobra.Command{
		Use:   "play <input>",
		Short: "Preview the trimmed range on the default output device",
		Long: `Preview the trimmed range with the given rate and gain. Playback stops at
the end of the range, or on interrupt when --loop is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, closer, err := a.newOutput()
			if err != nil {
				return err
			}
			defer closer.Close()

			device := sink.NewDevice(output, nil)
			defer device.Close()

			finished := make(chan struct{}, 1)

			session, _, err := a.loadSession(cmd.Context(), args[0], wavtrim.WithOutputSink(device))
			if err != nil {
				return err
			}

			session.OnPlaybackFinished(func([]wavtrim.WaveformPoint) {
				select {
				case finished <- struct{}{}:
				default:
				}
			})

			if err := edit.apply(cmd, session); err != nil {
				return err
			}

			h, err := session.Play()
			if err != nil {
				return err
			}

			log.Printf("playing preview %d", h)

			select {
			case <-finished:
				fmt.Fprintln(cmd.OutOrStdout(), "finished")
			case <-cmd.Context().Done():
				if err := session.Stop(); err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), "stopped")
			}

			return nil
		},
	}

	edit.bind(cmd, true)
	cmd.Flags().BoolVar(&edit.loop, "loop", false, "repeat the range until interrupted")

	return cmd
}
