package shell

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"lukechampine.com/frand"

	"github.com/domino14/twenty48/bench"
	"github.com/domino14/twenty48/config"
	"github.com/domino14/twenty48/equity"
	"github.com/domino14/twenty48/move"
	"github.com/domino14/twenty48/movegen"
	"github.com/domino14/twenty48/rowtable"
	"github.com/domino14/twenty48/tpn"
)

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (cmd *shellcmd) intOption(key string, defaultI int) (int, error) {
	v, ok := cmd.options[key]
	if !ok {
		return defaultI, nil
	}
	return strconv.Atoi(v)
}

func (cmd *shellcmd) boolOption(key string) bool {
	return strings.ToLower(cmd.options[key]) == "true"
}

func (sc *ShellController) position(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: position <tpn>")
	}
	// Opcodes contain spaces, so the notation may have been split
	// across several fields.
	p, err := tpn.Parse(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	sc.curBoard = p.Board
	if d, err := p.Depth(0); err == nil && d > 0 {
		sc.config.Set(config.KeyDepth, d)
	}
	return msg(sc.curBoard.String()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	return msg(sc.curBoard.String() + tpn.Emit(sc.curBoard)), nil
}

func (sc *ShellController) rank(cmd *shellcmd) (*Response, error) {
	depth, err := cmd.intOption("depth", sc.config.GetInt(config.KeyDepth))
	if err != nil {
		return nil, err
	}
	ranked := sc.an.RankBoard(sc.curBoard, depth)
	if len(ranked) == 0 {
		return msg("no legal moves"), nil
	}
	tbl := rowtable.Get()
	var sb strings.Builder
	sb.WriteString("     Move   Value      Points Result\n")
	for i, rm := range ranked {
		nb, pts, _ := movegen.Apply(tbl, sc.curBoard, rm.Dir)
		fmt.Fprintf(&sb, "%3d: %-7s%-11.1f%-7.0f%s\n",
			i+1, rm.Dir, rm.Score, pts, tpn.Emit(nb))
	}
	st := sc.an.Stats()
	fmt.Fprintf(&sb, "effective depth %d; %d nodes, %d evals, %d/%d cache hits",
		st.EffectiveDepth, st.Nodes, st.Evals, st.Cache.Hits, st.Cache.Lookups)
	return msg(sb.String()), nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	ev := sc.an.Evaluator()
	var sb strings.Builder
	if ts, ok := ev.(equity.TermScorer); ok {
		for _, term := range ts.Terms(sc.curBoard) {
			fmt.Fprintf(&sb, "%-16s%12.1f\n", term.Name, term.Value)
		}
	}
	fmt.Fprintf(&sb, "%-16s%12.1f (%s)", "total", ev.Evaluate(sc.curBoard), ev.Type())
	return msg(sb.String()), nil
}

func (sc *ShellController) apply(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: apply <up|down|left|right>")
	}
	d, err := move.ParseDirection(cmd.args[0])
	if err != nil {
		return nil, err
	}
	nb, pts, changed := movegen.Apply(rowtable.Get(), sc.curBoard, d)
	if !changed {
		return nil, fmt.Errorf("%v does not change the board", d)
	}
	sc.curBoard = nb
	return msg(fmt.Sprintf("%v scored %.0f\n%s", d, pts, sc.curBoard)), nil
}

func (sc *ShellController) spawn(cmd *shellcmd) (*Response, error) {
	rank, err := cmd.intOption("rank", 0)
	if err != nil {
		return nil, err
	}
	if rank == 0 {
		nb, ok := bench.Spawn(sc.curBoard)
		if !ok {
			return nil, errors.New("board is full")
		}
		sc.curBoard = nb
		return msg(sc.curBoard.String()), nil
	}
	if rank < 1 || rank > 15 {
		return nil, fmt.Errorf("rank %d out of range", rank)
	}
	var empties []int
	for i := 0; i < 16; i++ {
		if sc.curBoard>>(4*i)&0xF == 0 {
			empties = append(empties, i)
		}
	}
	if len(empties) == 0 {
		return nil, errors.New("board is full")
	}
	sc.curBoard = sc.curBoard.PlaceAt(empties[frand.Intn(len(empties))], rank)
	return msg(sc.curBoard.String()), nil
}

func (sc *ShellController) random(cmd *shellcmd) (*Response, error) {
	plies, err := cmd.intOption("plies", 120)
	if err != nil {
		return nil, err
	}
	sc.curBoard = bench.RandomPosition(plies)
	return msg(sc.curBoard.String()), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		settings := sc.config.AllSettings()
		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&sb, "%-26s%v\n", k, settings[k])
		}
		return msg(strings.TrimRight(sb.String(), "\n")), nil
	}
	key := cmd.args[0]
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%v", sc.config.Get(key))), nil
	}
	sc.config.Set(key, strings.Join(cmd.args[1:], " "))
	if err := sc.reloadAnalyzer(); err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("set %s to %s (weight fingerprint %016x)",
		key, strings.Join(cmd.args[1:], " "), sc.config.WeightFingerprint())), nil
}

func (sc *ShellController) bench(cmd *shellcmd) (*Response, error) {
	opts := bench.DefaultOptions(sc.config)
	var err error
	if opts.Positions, err = cmd.intOption("positions", opts.Positions); err != nil {
		return nil, err
	}
	if opts.Depth, err = cmd.intOption("depth", opts.Depth); err != nil {
		return nil, err
	}
	if opts.Plies, err = cmd.intOption("plies", opts.Plies); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	report, err := bench.Run(sc.config, opts, &out)
	if err != nil {
		return nil, err
	}
	if cmd.boolOption("yaml") {
		if err := report.WriteYAML(&out); err != nil {
			return nil, err
		}
	} else {
		fmt.Fprintf(&out,
			"%d positions at depth %d: mean %.2fms (±%.2f at 95%%), %.0f nodes, %.1f%% cache hits",
			report.Positions, report.Depth, report.MeanMs, report.CI95Ms,
			report.MeanNodes, report.CacheHitPct)
	}
	return msg(out.String()), nil
}

func (sc *ShellController) cachestats(cmd *shellcmd) (*Response, error) {
	st := sc.an.Stats()
	return msg(fmt.Sprintf(
		"lookups %d, hits %d, stores %d, clears %d, entries %d",
		st.Cache.Lookups, st.Cache.Hits, st.Cache.Stores, st.Cache.Clears,
		st.Cache.Entries)), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return usage()
	}
	return usageTopic(cmd.args[0])
}
