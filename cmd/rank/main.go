// rank is the one-shot analysis binary: given one or more positions in
// text position notation, it prints each position's legal moves ranked
// by the search, as a plain table or as yaml.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/domino14/twenty48/analyzer"
	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/config"
	"github.com/domino14/twenty48/tpn"
)

var (
	depth    = flag.Int("depth", 0, "search depth; 0 uses the configured default")
	workers  = flag.Int("workers", 1, "parallel workers for multiple positions")
	yamlOut  = flag.Bool("yaml", false, "emit yaml instead of a table")
	debugLog = flag.Bool("debug", false, "enable debug logging")
)

type rankedPosition struct {
	Position string       `yaml:"position"`
	Moves    []rankedMove `yaml:"moves"`
}

type rankedMove struct {
	Direction string  `yaml:"direction"`
	Score     float64 `yaml:"score"`
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: rank [flags] <tpn> [<tpn> ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *debugLog {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := &config.Config{}
	if err := cfg.Load(nil); err != nil {
		log.Fatal().Err(err).Msg("config-load")
	}
	d := *depth
	if d == 0 {
		d = cfg.GetInt(config.KeyDepth)
	}

	boards := make([]board.Board, flag.NArg())
	for i, arg := range flag.Args() {
		p, err := tpn.Parse(arg)
		if err != nil {
			log.Fatal().Err(err).Str("position", arg).Msg("parse-position")
		}
		boards[i] = p.Board
	}

	rankings, err := analyzer.AnalyzePositions(context.Background(), cfg, boards, d, *workers)
	if err != nil {
		log.Fatal().Err(err).Msg("analyze-positions")
	}

	out := make([]rankedPosition, len(boards))
	for i, ranked := range rankings {
		rp := rankedPosition{Position: tpn.Emit(boards[i])}
		for _, rm := range ranked {
			rp.Moves = append(rp.Moves, rankedMove{
				Direction: rm.Dir.String(),
				Score:     rm.Score,
			})
		}
		out[i] = rp
	}

	if *yamlOut {
		enc := yaml.NewEncoder(os.Stdout)
		if err := enc.Encode(out); err != nil {
			log.Fatal().Err(err).Msg("encode")
		}
		enc.Close()
		return
	}
	for _, rp := range out {
		fmt.Println(rp.Position)
		if len(rp.Moves) == 0 {
			fmt.Println("  no legal moves")
			continue
		}
		for i, rm := range rp.Moves {
			fmt.Printf("  %d. %-6s %.1f\n", i+1, rm.Direction, rm.Score)
		}
	}
}
