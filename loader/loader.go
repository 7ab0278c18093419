// Package loader wires the parser, interner, and codegen stages together
// into the single call a host embeds, per spec.md §6's "Host → core"
// contract: init with source + pool, inject ports, parse, intern-strings,
// codegen. This is the Vera analogue of the reference assembler's
// loader.LoadProgramIntoVM, which plays the same glue role between its
// parser, encoder, and vm packages.
package loader

import (
	"os"

	"github.com/max22/vera/codegen"
	"github.com/max22/vera/config"
	"github.com/max22/vera/intern"
	"github.com/max22/vera/parser"
)

// Result is everything a caller needs after a successful compilation.
type Result struct {
	Image         []byte
	RegisterCount int
	Pool          *parser.Pool
}

// Compile parses src, interns its facts and ports, synthesizes the
// initial register vector, and assembles the RV32IM image, using cfg's
// codegen.max_size as the output bound.
func Compile(src, filename string, ports []string, cfg *config.Config) (*Result, error) {
	pool, err := parser.Parse(src, filename)
	if err != nil {
		return nil, err
	}
	parser.AddPorts(pool, ports)

	r := intern.Intern(pool)
	initial := intern.InitialRegisters(pool, r)

	image, err := codegen.Generate(pool, r, initial, cfg.Codegen.MaxSize)
	if err != nil {
		return nil, err
	}

	return &Result{Image: image, RegisterCount: r, Pool: pool}, nil
}

// CompileFile reads path and compiles it, writing the resulting image to
// outPath. It mirrors the reference CLI's read-compile-write flow.
func CompileFile(path, outPath string, ports []string, cfg *config.Config) (*Result, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- user-provided source file path
	if err != nil {
		return nil, err
	}

	res, err := Compile(string(content), path, ports, cfg)
	if err != nil {
		return nil, err
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, res.Image, 0o644); err != nil { // #nosec G306 -- compiled image is not sensitive
			return nil, err
		}
	}

	return res, nil
}
