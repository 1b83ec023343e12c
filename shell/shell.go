// Package shell is the interactive operator console: load a position,
// rank its moves, inspect evaluations, step the board forward, and
// benchmark the configured search.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/twenty48/analyzer"
	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/config"
)

var (
	errNoData            = errors.New("no data in command")
	errWrongOptionSyntax = errors.New("command options need a value")
)

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

// extractFields splits a command line into the command, its positional
// arguments, and its -name value options. Quoting follows shell rules.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}
	lastWasOption := false
	lastOption := ""
	for _, field := range fields[1:] {
		if strings.HasPrefix(field, "-") {
			lastWasOption = true
			lastOption = field[1:]
			continue
		}
		if lastWasOption {
			options[lastOption] = field
			lastWasOption = false
		} else {
			args = append(args, field)
		}
	}
	if lastWasOption {
		return nil, errWrongOptionSyntax
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

// ShellController owns the readline loop and the engine objects the
// commands operate on.
type ShellController struct {
	l        *readline.Instance
	config   *config.Config
	execPath string

	an       *analyzer.Analyzer
	curBoard board.Board
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config, execPath string) (*ShellController, error) {
	an, err := analyzer.NewAnalyzer(cfg)
	if err != nil {
		return nil, err
	}
	sc := &ShellController{config: cfg, execPath: execPath, an: an}
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mtwenty48>\033[0m ",
		HistoryFile:     "/tmp/twenty48-readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
		AutoComplete:        newCompleter(),
	})
	if err != nil {
		return nil, err
	}
	sc.l = l
	return sc, nil
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.l.Stderr())
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// reloadAnalyzer rebuilds the analyzer after a config change so the
// evaluator and search options reflect the new settings.
func (sc *ShellController) reloadAnalyzer() error {
	an, err := analyzer.NewAnalyzer(sc.config)
	if err != nil {
		return err
	}
	sc.an = an
	return nil
}

func (sc *ShellController) dispatch(line string, sig chan os.Signal) error {
	cmd, err := extractFields(line)
	if err != nil {
		if err == errNoData {
			return nil
		}
		return err
	}

	var resp *Response
	switch cmd.cmd {
	case "position", "tpn", "load":
		resp, err = sc.position(cmd)
	case "show", "s":
		resp, err = sc.show(cmd)
	case "rank", "gen":
		resp, err = sc.rank(cmd)
	case "eval":
		resp, err = sc.eval(cmd)
	case "apply", "move":
		resp, err = sc.apply(cmd)
	case "spawn":
		resp, err = sc.spawn(cmd)
	case "random":
		resp, err = sc.random(cmd)
	case "set":
		resp, err = sc.set(cmd)
	case "bench":
		resp, err = sc.bench(cmd)
	case "cachestats":
		resp, err = sc.cachestats(cmd)
	case "help":
		resp, err = sc.help(cmd)
	case "exit", "quit", "bye":
		sig <- syscall.SIGINT
		return errors.New("sending quit signal")
	default:
		err = fmt.Errorf("command %v not found", strings.TrimSpace(cmd.cmd))
	}
	if err != nil {
		sc.showError(err)
		return nil
	}
	if resp != nil {
		sc.showMessage(resp.message)
	}
	return nil
}

// Loop reads and runs commands until EOF or an exit command.
func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		if err := sc.dispatch(strings.TrimSpace(line), sig); err != nil {
			log.Err(err).Msg("dispatch")
			break
		}
	}
	log.Debug().Msg("exiting-readline-loop")
}

// Execute runs a single semicolon-separated command line, for one-shot
// invocations from the command line.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	defer sc.l.Close()
	for _, single := range strings.Split(line, ";") {
		if err := sc.dispatch(strings.TrimSpace(single), sig); err != nil {
			log.Err(err).Msg("execute")
			return
		}
	}
}
