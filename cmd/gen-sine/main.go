// This tool writes a sine test tone as a 16-bit PCM WAV file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/berlandbor/wavtrim"
)

var errInvalidLength = errors.New("length must be positive")

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("gen-sine", flag.ContinueOnError)

	output := flagSet.String("output", "output.wav", "filename to write to")
	frequency := flagSet.Float64("frequency", 440, "frequency in hertz to generate")
	length := flagSet.Float64("length", 5, "length in seconds of output file")
	sampleRate := flagSet.Int("rate", 48000, "sample rate in hertz")
	channels := flagSet.Int("channels", 1, "number of identical channels")
	amplitude := flagSet.Float64("amplitude", 1, "peak amplitude in [0, 1]")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	numFrames := int(float64(*sampleRate) * *length)
	if numFrames <= 0 {
		return fmt.Errorf("%w: %v", errInvalidLength, *length)
	}

	log.Printf("generating a %f sec sine wav at %f hz", *length, *frequency)

	buf := &wavtrim.Buffer{
		SampleRate: *sampleRate,
		Channels:   make([][]float32, max(*channels, 0)),
	}

	tone := make([]float32, numFrames)
	for i := range tone {
		tone[i] = float32(*amplitude * math.Sin(float64(i)/float64(*sampleRate)**frequency*2*math.Pi))
	}

	for c := range buf.Channels {
		buf.Channels[c] = tone
	}

	return wavtrim.WriteWAVFile(*output, buf)
}
