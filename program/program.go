// Package program loads machine inputs: the initial registers and the raw
// instruction stream.
//
// Two formats are understood. The text format is
//
//	Register A: 729
//	Register B: 0
//	Register C: 0
//
//	Program: 0,1,5,4,3,0
//
// and the YAML format is
//
//	registers: {a: 729, b: 0, c: 0}
//	program: [0, 1, 5, 4, 3, 0]
package program

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/quinevm/core"
	"github.com/sarchlab/quinevm/instr"
)

// ErrSyntax is returned for input that does not follow either format.
var ErrSyntax = errors.New("syntax error")

// Input is a loaded machine input.
type Input struct {
	Registers core.Registers
	Raw       []uint8
}

// Decode decodes the raw stream into a program.
func (in Input) Decode() (instr.Program, error) {
	return instr.Decode(in.Raw)
}

// LoadFile reads an input file. Files ending in .yaml or .yml are read as
// YAML, everything else as text.
func LoadFile(path string) (Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return Input{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		in, err := ParseYAML(f)
		if err != nil {
			return Input{}, fmt.Errorf("%s: %w", path, err)
		}

		return in, nil
	default:
		in, err := Parse(f)
		if err != nil {
			return Input{}, fmt.Errorf("%s: %w", path, err)
		}

		return in, nil
	}
}

// MaxLineLen is the longest line Parse accepts.
const MaxLineLen = 1 << 20

// Parse reads the text format. Register lines may come in any order and
// default to zero; the program line is required.
func Parse(r io.Reader) (Input, error) {
	var (
		in         Input
		seen       = map[string]bool{}
		hasProgram bool
		lineNo     int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, MaxLineLen)

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return Input{}, fmt.Errorf("%w: line %d: missing ':'", ErrSyntax, lineNo)
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if seen[key] {
			return Input{}, fmt.Errorf("%w: line %d: duplicate %q", ErrSyntax, lineNo, key)
		}
		seen[key] = true

		switch key {
		case "Register A", "Register B", "Register C":
			v, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Input{}, fmt.Errorf("%w: line %d: %v", ErrSyntax, lineNo, err)
			}

			in.Registers.Set(registerNames[key], v)
		case "Program":
			raw, err := parseWords(value)
			if err != nil {
				return Input{}, fmt.Errorf("%w: line %d: %v", ErrSyntax, lineNo, err)
			}

			in.Raw = raw
			hasProgram = true
		default:
			return Input{}, fmt.Errorf("%w: line %d: unknown key %q", ErrSyntax, lineNo, key)
		}
	}

	if err := scanner.Err(); err != nil {
		return Input{}, fmt.Errorf("%w: line %d: %v", ErrSyntax, lineNo+1, err)
	}

	if !hasProgram {
		return Input{}, fmt.Errorf("%w: no program line", ErrSyntax)
	}

	return in, nil
}

var registerNames = map[string]instr.Register{
	"Register A": instr.RegA,
	"Register B": instr.RegB,
	"Register C": instr.RegC,
}

func parseWords(s string) ([]uint8, error) {
	if s == "" {
		return []uint8{}, nil
	}

	fields := strings.Split(s, ",")
	words := make([]uint8, len(fields))

	for i, f := range fields {
		w, err := strconv.ParseUint(strings.TrimSpace(f), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i, err)
		}

		words[i] = uint8(w)
	}

	return words, nil
}

type yamlInput struct {
	Registers struct {
		A int64 `yaml:"a"`
		B int64 `yaml:"b"`
		C int64 `yaml:"c"`
	} `yaml:"registers"`
	Program []int `yaml:"program"`
}

// ParseYAML reads the YAML format.
func ParseYAML(r io.Reader) (Input, error) {
	var doc yamlInput

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&doc); err != nil {
		return Input{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	if doc.Program == nil {
		return Input{}, fmt.Errorf("%w: no program", ErrSyntax)
	}

	raw := make([]uint8, len(doc.Program))
	for i, w := range doc.Program {
		if w < 0 || w > 255 {
			return Input{}, fmt.Errorf("%w: word %d out of range: %d", ErrSyntax, i, w)
		}

		raw[i] = uint8(w)
	}

	return Input{
		Registers: core.Registers{
			A: doc.Registers.A,
			B: doc.Registers.B,
			C: doc.Registers.C,
		},
		Raw: raw,
	}, nil
}
