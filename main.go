package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pedromxavier/EEL816/composer"
	"github.com/pedromxavier/EEL816/config"
	"github.com/pedromxavier/EEL816/music"
	"github.com/pedromxavier/EEL816/piano"
	"github.com/pedromxavier/EEL816/render"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var version string

func main() {
	app := cli.NewApp()
	app.Version = version
	app.Compiled = time.Now()
	app.Name = "babel"
	app.Usage = "compose melodies with Markov chains"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config,c",
			Usage: "YAML configuration file",
		},
		cli.IntFlag{
			Name:  "bars,k",
			Value: 8,
			Usage: "number of bars to compose",
		},
		cli.Float64Flag{
			Name:  "bpm",
			Value: 120,
			Usage: "tempo, in beats of the time signature unit per minute",
		},
		cli.StringFlag{
			Name:  "time",
			Value: "4/4",
			Usage: "time signature",
		},
		cli.Float64Flag{
			Name:  "freq",
			Value: music.DefaultReference,
			Usage: "reference frequency of the tonic in hertz",
		},
		cli.Int64Flag{
			Name:  "seed",
			Usage: "random seed (0 picks one from the clock)",
		},
		cli.BoolFlag{
			Name:  "no-presets",
			Usage: "start from untrained models",
		},
		cli.StringFlag{
			Name:  "corpus",
			Usage: "JSON file of training phrases",
		},
		cli.StringSliceFlag{
			Name:  "phrase,p",
			Value: &cli.StringSlice{},
			Usage: "corpus phrase to train on (repeatable)",
		},
		cli.IntFlag{
			Name:  "weight,w",
			Value: 100,
			Usage: "training weight of corpus phrases",
		},
		cli.StringFlag{
			Name:  "out,o",
			Usage: "output file: .wav, .mid or .json (default babel-<id>.wav)",
		},
		cli.BoolFlag{
			Name:  "play",
			Usage: "play on a MIDI output device",
		},
		cli.IntFlag{
			Name:  "device",
			Value: -1,
			Usage: "MIDI output device (-1 for the default)",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "debug logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "phrases",
			Usage:  "list the phrases of a corpus",
			Action: listPhrases,
		},
	}
	app.Action = compose

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// settings merges the config file with the flags given on the command line.
func settings(c *cli.Context) (cfg *config.Config, err error) {
	if path := c.GlobalString("config"); path != "" {
		if cfg, err = config.Load(path); err != nil {
			return
		}
	} else {
		cfg = config.Default()
	}
	if c.GlobalIsSet("bars") {
		cfg.Composer.Bars = c.GlobalInt("bars")
	}
	if c.GlobalIsSet("bpm") {
		cfg.Composer.Tempo = c.GlobalFloat64("bpm")
	}
	if c.GlobalIsSet("time") {
		cfg.Composer.Time = c.GlobalString("time")
	}
	if c.GlobalIsSet("freq") {
		cfg.Composer.Reference = c.GlobalFloat64("freq")
	}
	if c.GlobalIsSet("seed") {
		cfg.Composer.Seed = c.GlobalInt64("seed")
	}
	if c.GlobalBool("no-presets") {
		cfg.Composer.Presets = false
	}
	if c.GlobalIsSet("corpus") {
		cfg.Training.Corpus = c.GlobalString("corpus")
	}
	if c.GlobalIsSet("phrase") {
		cfg.Training.Phrases = c.GlobalStringSlice("phrase")
	}
	if c.GlobalIsSet("weight") {
		cfg.Training.Weight = c.GlobalInt("weight")
	}
	if c.GlobalIsSet("out") {
		cfg.Render.Output = c.GlobalString("out")
	}
	if c.GlobalBool("play") {
		cfg.Render.Play = true
	}
	if c.GlobalIsSet("device") {
		cfg.Render.Device = c.GlobalInt("device")
	}
	err = cfg.Validate()
	return
}

func compose(c *cli.Context) (err error) {
	logger := log.WithFields(log.Fields{
		"function": "main.compose",
	})
	log.SetLevel(log.InfoLevel)
	if c.GlobalBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := settings(c)
	if err != nil {
		return
	}
	opts, err := cfg.Options()
	if err != nil {
		return
	}
	seed := cfg.Composer.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Infof("seed %d", seed)

	comp, err := composer.New(opts, rand.New(rand.NewSource(seed)))
	if err != nil {
		return
	}
	if cfg.Composer.Presets {
		if err = comp.TrainPresets(); err != nil {
			return
		}
	}
	if err = train(comp, cfg.Training); err != nil {
		return
	}

	m, err := comp.Music(cfg.Composer.Bars)
	if err != nil {
		if len(m.Notes) == 0 {
			return
		}
		logger.Warnf("keeping %d notes composed before: %s", len(m.Notes), err)
	}

	out := cfg.Render.Output
	if out == "" {
		id, idErr := music.ID(seed, cfg.Composer.Bars)
		if idErr != nil {
			return idErr
		}
		out = "babel-" + id + ".wav"
	}
	if writeErr := write(out, m, cfg.Render); writeErr != nil {
		return writeErr
	}
	logger.Infof("wrote %d bars (%.1fs) to %s", len(m.Notes.Bars()), m.Notes.Duration(), out)

	if cfg.Render.Play {
		p, playErr := piano.New(cfg.Render.Device)
		if playErr != nil {
			return playErr
		}
		defer p.Close()
		if playErr = p.Play(m.Notes); playErr != nil {
			return playErr
		}
	}
	return
}

func train(comp *composer.Composer, t config.TrainingConfig) error {
	if len(t.Phrases) == 0 {
		return nil
	}
	corpus, err := music.OpenCorpus(t.Corpus)
	if err != nil {
		return err
	}
	for _, name := range t.Phrases {
		steps, err := corpus.Phrase(name)
		if err != nil {
			return err
		}
		if err = comp.Train(steps, t.Weight); err != nil {
			return errors.Wrapf(err, "phrase %q", name)
		}
	}
	return nil
}

func write(filename string, m *music.Music, r config.RenderConfig) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		opts := render.DefaultWAVOptions()
		opts.SampleRate = r.SampleRate
		opts.Volume = r.Volume
		return render.SaveWAV(filename, m.Notes, opts)
	case ".mid", ".midi":
		return render.SaveMIDI(filename, m)
	case ".json":
		return m.Save(filename)
	}
	return errors.Errorf("unknown output format %q", filepath.Ext(filename))
}

func listPhrases(c *cli.Context) error {
	cfg, err := settings(c)
	if err != nil {
		return err
	}
	if cfg.Training.Corpus == "" {
		return errors.New("no corpus given, use --corpus")
	}
	corpus, err := music.OpenCorpus(cfg.Training.Corpus)
	if err != nil {
		return err
	}
	for _, name := range corpus.Names() {
		steps, err := corpus.Phrase(name)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%d steps\n", name, len(steps))
	}
	return nil
}
