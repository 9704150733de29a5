// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Preprocessor expands a small set of directives in WGSL sources:
//
//	#import name     splice shared/name.wgsl in place
//	#ifdef name      start a block that is kept if name is defined
//	#ifndef name     start a block that is kept if name isn't defined
//	#else            invert the innermost block
//	#endif           end the innermost block
//
// Directives other than #import must start their line. Imports are cached and
// may themselves contain directives.
type Preprocessor struct {
	ImportDir string
	Defines   map[string]struct{}
	Verbose   bool

	imports map[string][]byte
	depth   int
}

type SyntaxError struct {
	File string
	Line int
	Msg  string
}

func (err *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", err.File, err.Line, err.Msg)
}

const maxImportDepth = 16

type branch struct {
	active   bool
	sawElse  bool
	inactive bool // whether an enclosing branch is inactive
}

type branchStack []branch

func (s branchStack) emitting() bool {
	if len(s) == 0 {
		return true
	}
	top := s[len(s)-1]
	return top.active && !top.inactive
}

func (p *Preprocessor) debugf(f string, v ...any) {
	if !p.Verbose {
		return
	}
	fmt.Fprintf(os.Stderr, f, v...)
	fmt.Fprintln(os.Stderr)
}

func (p *Preprocessor) load(name string) ([]byte, error) {
	if src, ok := p.imports[name]; ok {
		return src, nil
	}
	p.debugf("loading import %q", name)
	src, err := os.ReadFile(filepath.Join(p.ImportDir, name+".wgsl"))
	if err != nil {
		return nil, err
	}
	if p.imports == nil {
		p.imports = make(map[string][]byte)
	}
	p.imports[name] = src
	return src, nil
}

// Preprocess expands src. name is only used in error messages.
func (p *Preprocessor) Preprocess(src []byte, name string) ([]byte, error) {
	var (
		out    []byte
		stack  branchStack
		lineNo int
	)
	fail := func(f string, v ...any) error {
		return &SyntaxError{File: name, Line: lineNo, Msg: fmt.Sprintf(f, v...)}
	}

	for len(src) > 0 {
		lineNo++
		var line []byte
		line, src, _ = bytes.Cut(src, []byte("\n"))

		directive, arg, prefix, ok := parseDirective(line)
		if !ok {
			if stack.emitting() {
				out = append(out, line...)
				out = append(out, '\n')
			}
			continue
		}
		if directive != "import" && len(bytes.TrimSpace(prefix)) != 0 {
			return nil, fail("#%s must be the first item on its line", directive)
		}

		switch directive {
		case "ifdef", "ifndef":
			if len(arg) == 0 {
				return nil, fail("#%s needs an argument", directive)
			}
			_, defined := p.Defines[string(arg)]
			stack = append(stack, branch{
				active:   defined == (directive == "ifdef"),
				inactive: !stack.emitting(),
			})
		case "else":
			if len(stack) == 0 {
				return nil, fail("#else without #ifdef")
			}
			if len(arg) != 0 {
				return nil, fail("#else doesn't accept arguments")
			}
			top := &stack[len(stack)-1]
			if top.sawElse {
				return nil, fail("second #else for the same block")
			}
			top.sawElse = true
			top.active = !top.active
		case "endif":
			if len(stack) == 0 {
				return nil, fail("mismatched #endif")
			}
			if len(arg) != 0 && !bytes.HasPrefix(arg, []byte("//")) {
				return nil, fail("#endif doesn't accept arguments")
			}
			stack = stack[:len(stack)-1]
		case "import":
			if len(arg) == 0 {
				return nil, fail("#import needs an argument")
			}
			if !stack.emitting() {
				continue
			}
			if p.depth >= maxImportDepth {
				return nil, fail("imports nested too deeply")
			}
			imported, err := p.load(string(arg))
			if err != nil {
				return nil, fail("couldn't import %q: %s", arg, err)
			}
			p.depth++
			expanded, err := p.Preprocess(imported, string(arg)+".wgsl")
			p.depth--
			if err != nil {
				return nil, err
			}
			out = append(out, prefix...)
			out = append(out, expanded...)
		default:
			return nil, fail("unknown preprocessor directive %q", directive)
		}
	}
	if len(stack) != 0 {
		return nil, fail("unterminated #ifdef")
	}
	return out, nil
}

// parseDirective finds a directive on line that isn't inside a comment.
func parseDirective(line []byte) (directive string, arg, prefix []byte, ok bool) {
	hash := bytes.IndexByte(line, '#')
	if hash == -1 {
		return "", nil, nil, false
	}
	if comment := bytes.Index(line, []byte("//")); comment != -1 && comment < hash {
		return "", nil, nil, false
	}
	rest := line[hash+1:]
	end := bytes.IndexAny(rest, " \t")
	if end == -1 {
		end = len(rest)
	}
	return string(rest[:end]), bytes.TrimSpace(rest[end:]), line[:hash], true
}
