// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Command compile-shaders preprocesses the WGSL sources of the wgpu engine.
// Every *.wgsl file in the input directory is expanded, with #import
// directives resolved against the shared subdirectory, and written to the
// output directory.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type defineList []string

func (l *defineList) String() string { return strings.Join(*l, ",") }

func (l *defineList) Set(s string) error {
	*l = append(*l, s)
	return nil
}

func main() {
	var (
		in      string
		out     string
		verbose bool
		defines defineList
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-v] [-D name]... -in <dir> -out <dir>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&in, "in", "", "Path to `directory` to process")
	flag.StringVar(&out, "out", "./gen", "Path to output `directory`")
	flag.BoolVar(&verbose, "v", false, "Be verbose")
	flag.Var(&defines, "D", "Define `name` for #ifdef; may be repeated")
	flag.Parse()

	if len(flag.Args()) != 0 || in == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(in, out, defines, verbose); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(in, out string, defines []string, verbose bool) error {
	p := Preprocessor{
		ImportDir: filepath.Join(in, "shared"),
		Defines:   make(map[string]struct{}),
		Verbose:   verbose,
	}
	for _, d := range defines {
		p.Defines[d] = struct{}{}
	}

	matches, err := filepath.Glob(filepath.Join(in, "*.wgsl"))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no shaders in %s", in)
	}
	if err := os.MkdirAll(out, 0777); err != nil {
		return fmt.Errorf("couldn't create output directory: %w", err)
	}

	for _, m := range matches {
		p.debugf("compiling %s", filepath.Base(m))
		src, err := os.ReadFile(m)
		if err != nil {
			return fmt.Errorf("couldn't read shader: %w", err)
		}
		src, err = p.Preprocess(src, filepath.Base(m))
		if err != nil {
			return fmt.Errorf("couldn't preprocess source: %w", err)
		}
		dst := filepath.Join(out, filepath.Base(m))
		if err := os.WriteFile(dst, header(src), 0666); err != nil {
			return err
		}
	}
	return nil
}

func header(src []byte) []byte {
	const h = "// Code generated by compile-shaders. DO NOT EDIT.\n\n"
	return append([]byte(h), src...)
}
