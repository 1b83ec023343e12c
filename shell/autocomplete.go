package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// commandMetadata maps each command to its completable options and
// argument values, taken from the implementations in api.go.
type commandMetadata struct {
	options []string
	args    []string
}

var commands = map[string]commandMetadata{
	"position": {},
	"show":     {},
	"rank":     {options: []string{"-depth"}},
	"eval":     {},
	"apply":    {args: []string{"up", "down", "left", "right"}},
	"spawn":    {options: []string{"-rank"}},
	"random":   {options: []string{"-plies"}},
	"set": {args: []string{
		"depth", "evaluator", "pruning", "prob-threshold",
		"max-chance-cells", "cache-ceiling", "cache-mem-fraction",
	}},
	"bench":      {options: []string{"-positions", "-depth", "-plies", "-yaml"}},
	"cachestats": {},
	"help":       {},
	"exit":       {},
}

type completer struct{}

func newCompleter() *completer { return &completer{} }

// Do implements readline.AutoCompleter. The first field completes to a
// command name; later fields complete to that command's options and
// argument values.
func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	fields, err := shellquote.Split(text)
	if err != nil {
		return nil, 0
	}
	endsWithSpace := strings.HasSuffix(text, " ")

	var candidates []string
	var partial string
	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			partial = fields[0]
		}
		for name := range commands {
			candidates = append(candidates, name)
		}
	} else {
		meta, ok := commands[fields[0]]
		if !ok {
			return nil, 0
		}
		if !endsWithSpace {
			partial = fields[len(fields)-1]
		}
		candidates = append(candidates, meta.options...)
		candidates = append(candidates, meta.args...)
		if fields[0] == "help" {
			for name := range commands {
				candidates = append(candidates, name)
			}
		}
	}

	var out [][]rune
	for _, cand := range candidates {
		if strings.HasPrefix(cand, partial) {
			out = append(out, []rune(cand[len(partial):]+" "))
		}
	}
	return out, len(partial)
}
