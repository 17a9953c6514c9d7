package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/berlandbor/wavtrim"
	"github.com/berlandbor/wavtrim/codec"
	"github.com/berlandbor/wavtrim/internal/config"
	"github.com/berlandbor/wavtrim/internal/sink"
	"github.com/spf13/cobra"
)

// outputFactory opens the audio output used by the play command.
type outputFactory func() (sink.Output, io.Closer, error)

// app carries what the commands share once the root command has run.
type app struct {
	configPath string
	logLevel   string

	cfg       *config.Config
	newOutput outputFactory
}

func newApp() *app {
	return &app{
		newOutput: func() (sink.Output, io.Closer, error) {
			out, err := sink.NewMalgoOutput()
			if err != nil {
				return nil, nil, err
			}

			return out, out, nil
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "wavtrim",
		Short: "Trim, preview and export audio clips",
		Long: `wavtrim loads a WAV, AIFF or MP3 clip, selects a trim range, applies a
playback rate and gain, and exports the result as a 16-bit PCM WAV file.

The same operations are available over HTTP with "wavtrim serve".`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: ./wavtrim.yaml or ~/.config/wavtrim/wavtrim.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newExportCmd(a),
		newWaveformCmd(a),
		newInfoCmd(a),
		newPlayCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)

	return root
}

// setup loads the configuration and configures logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	a.cfg = cfg

	log.SetOutput(cmd.ErrOrStderr())

	switch cfg.Log.Level {
	case "debug":
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	case "warn", "error":
		log.SetOutput(io.Discard)
	default:
		log.SetFlags(log.LstdFlags)
	}

	return nil
}

// loadSession decodes path into a new session configured from a.cfg.
func (a *app) loadSession(ctx context.Context, path string, opts ...wavtrim.Option) (*wavtrim.Session, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	opts = append([]wavtrim.Option{
		wavtrim.WithDecoder(codec.Auto{}),
		wavtrim.WithSettings(a.cfg.Settings()),
		wavtrim.WithWaveformWidth(a.cfg.Waveform.Width),
	}, opts...)

	session := wavtrim.NewSession(opts...)
	if err := session.Load(ctx, raw); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Printf("loaded %s: %.3fs, %d Hz, %d channel(s)", path,
		session.Asset().Duration(), session.Asset().SampleRate(), session.Asset().NumChannels())

	return session, raw, nil
}

// editFlags are the trim and render controls shared by export, waveform and
// play.
type editFlags struct {
	start float64
	end   float64
	rate  float64
	gain  float64
	loop  bool
}

func (f *editFlags) bind(cmd *cobra.Command, withRender bool) {
	cmd.Flags().Float64Var(&f.start, "start", 0, "trim start in seconds")
	cmd.Flags().Float64Var(&f.end, "end", 0, "trim end in seconds (default: end of clip)")

	if withRender {
		cmd.Flags().Float64Var(&f.rate, "rate", 1, "playback rate (default from config)")
		cmd.Flags().Float64Var(&f.gain, "gain", 1, "gain (default from config)")
	}
}

// apply moves the trim edges like the interactive controls and overrides the
// configured rate and gain with explicitly set flags.
func (f *editFlags) apply(cmd *cobra.Command, session *wavtrim.Session) error {
	flags := cmd.Flags()

	if flags.Changed("start") {
		if _, err := session.SetTrimStart(f.start); err != nil {
			return err
		}
	}

	if flags.Changed("end") {
		if _, err := session.SetTrimEnd(f.end); err != nil {
			return err
		}
	}

	if flags.Lookup("rate") != nil && flags.Changed("rate") {
		if err := session.SetPlaybackRate(f.rate); err != nil {
			return err
		}
	}

	if flags.Lookup("gain") != nil && flags.Changed("gain") {
		if err := session.SetGain(f.gain); err != nil {
			return err
		}
	}

	session.SetLoop(f.loop)

	log.Printf("%s", session.TrimLabel())

	return nil
}
