// Package script reads build-order scripts and runs them against the engine.
//
// A script is line oriented. Directives set up the run (nodes, reporting,
// stop condition) or advance the clock; every other line is an engine
// command written as an expr call and applied at the next time directive.
package script

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/talgya/boomsim/internal/economy"
	"github.com/talgya/boomsim/internal/world"
)

// Kind identifies a script line.
type Kind uint8

const (
	KindTime          Kind = iota // time MM:SS
	KindSkipBy                    // skipby N
	KindNode                      // forest|berries|chicken X Y QTY
	KindStopWhen                  // stopwhen <expr>
	KindDebugEnd                  // debugend
	KindReportSurplus             // reportsurplus F W S M
	KindGenerate                  // generate SEED [RADIUS]
	KindCommand                   // any other non-blank line
)

// Directive is one meaningful script line.
type Directive struct {
	Kind Kind
	Line int    // 1-based source line
	Text string // Trimmed text without the comment

	Tick     int               // KindTime
	Period   int               // KindSkipBy
	Node     world.NodeKind    // KindNode
	Position world.Position    // KindNode
	Quantity float64           // KindNode
	Expr     string            // KindStopWhen, KindCommand
	Level    economy.Resources // KindReportSurplus
	Seed     int64             // KindGenerate
	Radius   int               // KindGenerate; 0 keeps the default
}

// Script is a parsed build order.
type Script struct {
	Name       string
	Directives []Directive
}

// ParseFile reads and parses the script at path.
func ParseFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	sc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc.Name = path
	return sc, nil
}

// Parse reads a script. Commands are only checked for shape here; they are
// compiled by the Interpreter.
func Parse(r io.Reader) (*Script, error) {
	sc := &Script{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		d, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		d.Line = line
		d.Text = text
		sc.Directives = append(sc.Directives, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return sc, nil
}

func parseLine(text string) (Directive, error) {
	fields := strings.Fields(text)
	head := fields[0]
	args := fields[1:]

	switch head {
	case "time":
		if len(args) != 1 {
			return Directive{}, fmt.Errorf("time wants MM:SS")
		}
		tick, err := ParseClock(args[0])
		if err != nil {
			return Directive{}, err
		}
		return Directive{Kind: KindTime, Tick: tick}, nil

	case "skipby":
		if len(args) != 1 {
			return Directive{}, fmt.Errorf("skipby wants one period")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return Directive{}, fmt.Errorf("skipby period %q must be a positive integer", args[0])
		}
		return Directive{Kind: KindSkipBy, Period: n}, nil

	case "forest", "berries", "chicken":
		kind, _ := world.ParseNodeKind(head)
		nums, err := parseNumbers(args, 3, head)
		if err != nil {
			return Directive{}, err
		}
		if nums[2] < 0 {
			return Directive{}, fmt.Errorf("%s quantity %v is negative", head, nums[2])
		}
		return Directive{Kind: KindNode, Node: kind, Position: world.Pos(nums[0], nums[1]), Quantity: nums[2]}, nil

	case "stopwhen":
		src := strings.TrimSpace(strings.TrimPrefix(text, head))
		if src == "" {
			return Directive{}, fmt.Errorf("stopwhen wants an expression")
		}
		return Directive{Kind: KindStopWhen, Expr: src}, nil

	case "debugend":
		return Directive{Kind: KindDebugEnd}, nil

	case "reportsurplus":
		nums, err := parseNumbers(args, 4, head)
		if err != nil {
			return Directive{}, err
		}
		return Directive{Kind: KindReportSurplus, Level: economy.Resources{nums[0], nums[1], nums[2], nums[3]}}, nil

	case "generate":
		if len(args) < 1 || len(args) > 2 {
			return Directive{}, fmt.Errorf("generate wants SEED [RADIUS]")
		}
		seed, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return Directive{}, fmt.Errorf("generate seed %q: %w", args[0], err)
		}
		d := Directive{Kind: KindGenerate, Seed: seed}
		if len(args) == 2 {
			if d.Radius, err = strconv.Atoi(args[1]); err != nil || d.Radius < 1 {
				return Directive{}, fmt.Errorf("generate radius %q must be a positive integer", args[1])
			}
		}
		return d, nil
	}

	return Directive{Kind: KindCommand, Expr: text}, nil
}

func parseNumbers(args []string, n int, what string) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s wants %d numbers, got %d", what, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad number %q", what, a)
		}
		out[i] = v
	}
	return out, nil
}

// ParseClock converts "MM:SS" to a tick count.
func ParseClock(s string) (int, error) {
	mm, ss, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("time %q: want MM:SS", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("time %q: bad minutes", s)
	}
	sec, err := strconv.Atoi(ss)
	if err != nil || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("time %q: bad seconds", s)
	}
	return m*60 + sec, nil
}
