// Command vera compiles Vera multiset-rewriting source into an RV32IM
// image, the thin host around the parser/intern/codegen core that
// spec.md §6 explicitly leaves outside the compiler proper. Its flag
// surface and structure follow the reference assembler's main.go.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/max22/vera/config"
	"github.com/max22/vera/loader"
	"github.com/max22/vera/rv32"
	"github.com/max22/vera/tools"
	"github.com/max22/vera/traceview"
)

var (
	version = "dev"
	commit  = "unknown"
)

type portList []string

func (p *portList) String() string { return strings.Join(*p, ",") }
func (p *portList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func main() {
	var (
		outPath    = flag.String("o", "", "output image path (default: stdout, unless -run or -tui)")
		maxSize    = flag.Int("max-size", 0, "maximum emitted image size in bytes (0: use config default)")
		configPath = flag.String("config", "", "path to a TOML config file")
		verbose    = flag.Bool("verbose", false, "verbose compiler output")
		lint       = flag.Bool("lint", false, "run the linter instead of compiling")
		format     = flag.Bool("format", false, "print canonically formatted source instead of compiling")
		xref       = flag.Bool("xref", false, "print a register cross-reference instead of compiling")
		run        = flag.Bool("run", false, "execute the compiled image against the reference interpreter")
		tui        = flag.Bool("tui", false, "launch the traceview pass-by-pass viewer")
		showVer    = flag.Bool("version", false, "show version information")
		showHelp   = flag.Bool("help", false, "show help information")
		ports      portList
	)
	flag.Var(&ports, "port", "declare a port name (repeatable)")
	flag.Parse()

	if *showVer {
		fmt.Printf("vera %s (%s)\n", version, commit)
		os.Exit(0)
	}
	if *showHelp || flag.NArg() == 0 {
		printHelp()
		if *showHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	srcPath := flag.Arg(0)
	content, err := os.ReadFile(srcPath) // #nosec G304 -- user-supplied source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "vera: %v\n", err)
		os.Exit(1)
	}
	src := string(content)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vera: config: %v\n", err)
		os.Exit(1)
	}
	if *maxSize > 0 {
		cfg.Codegen.MaxSize = *maxSize
	}
	if len(ports) == 0 {
		ports = append(portList(nil), cfg.Ports.Names...)
	}

	switch {
	case *lint:
		runLint(src, srcPath, ports)
		return
	case *format:
		runFormat(src, srcPath)
		return
	case *xref:
		runXref(src, srcPath, ports)
		return
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "vera: compiling %s\n", srcPath)
	}

	res, err := loader.Compile(src, srcPath, ports, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vera: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "vera: %d register(s), %d byte(s) emitted\n", res.RegisterCount, len(res.Image))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, res.Image, 0o644); err != nil { // #nosec G306 -- compiled image is not sensitive
			fmt.Fprintf(os.Stderr, "vera: %v\n", err)
			os.Exit(1)
		}
	} else if !*run && !*tui {
		if _, err := os.Stdout.Write(res.Image); err != nil {
			fmt.Fprintf(os.Stderr, "vera: %v\n", err)
			os.Exit(1)
		}
	}

	if *tui {
		vm := rv32.NewVM(res.Image)
		names := registerNames(res, ports)
		t := traceview.New(vm, names, cfg.Run.MaxPasses, cfg.Run.MaxStepsPerPass)
		if err := t.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "vera: tui: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *run {
		vm := rv32.NewVM(res.Image)
		passes, err := vm.RunPasses(cfg.Run.MaxPasses, cfg.Run.MaxStepsPerPass)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vera: run: %v\n", err)
			os.Exit(1)
		}
		regs, err := vm.Mem.Registers(res.RegisterCount)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vera: run: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("passes: %d\n", passes)
		names := registerNames(res, ports)
		for i, v := range regs {
			label := ""
			if i < len(names) && names[i] != "" {
				label = " (" + names[i] + ")"
			}
			fmt.Printf("r%-4d = %d%s\n", i, v, label)
		}
	}
}

// registerNames maps each register index to a display name, taken
// from the port at that register if any, else the first fact's text.
func registerNames(res *loader.Result, ports []string) []string {
	out := make([]string, res.RegisterCount)
	for _, obj := range res.Pool.Objects {
		if obj.Register >= 0 && obj.Register < len(out) && out[obj.Register] == "" {
			out[obj.Register] = obj.Text
		}
	}
	return out
}

func runLint(src, filename string, ports []string) {
	issues := tools.NewLinter(nil).Lint(src, filename, ports)
	for _, issue := range issues {
		fmt.Println(issue)
	}
	for _, issue := range issues {
		if issue.Level == tools.LintError {
			os.Exit(1)
		}
	}
}

func runFormat(src, filename string) {
	out, err := tools.FormatString(src, filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vera: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}

func runXref(src, filename string, ports []string) {
	report, err := tools.GenerateXRef(src, filename, ports)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vera: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(report)
}

func printHelp() {
	fmt.Printf(`vera %s

Usage: vera [options] <source-file>

Options:
  -o FILE        output image path (default: stdout, unless -run or -tui)
  -max-size N    maximum emitted image size in bytes
  -port NAME     declare a port name (repeatable)
  -config FILE   path to a TOML config file
  -verbose       verbose compiler output
  -lint          run the linter instead of compiling
  -format        print canonically formatted source instead of compiling
  -xref          print a register cross-reference instead of compiling
  -run           execute the compiled image against the reference interpreter
  -tui           launch the traceview pass-by-pass viewer
  -version       show version information
  -help          show this help message

Examples:
  vera rules.vera
  vera -run rules.vera
  vera -port in -port out -o rules.bin rules.vera
  vera -lint rules.vera
  vera -tui rules.vera
`, version)
}
