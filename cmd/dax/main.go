// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// dax is a non-interactive runner for the shell mini-language, built on
// top of the dax package. It exists mainly to drive the package's
// black-box tests; embedders normally call dax.New().Command directly.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	dax "github.com/hashrock/dax"
)

var (
	command      = flag.String("c", "", "command to be executed")
	printCommand = flag.Bool("x", false, "print the command before running it")
)

func main() {
	os.Exit(main1())
}

// main1 is split out from main so TestMain can register it with
// testscript.RunMain without the process actually exiting mid-test-run.
func main1() int {
	flag.Parse()
	code, err := runAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return int(code)
}

func runAll() (uint8, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src string
	switch {
	case *command != "":
		src = *command
	case flag.NArg() == 0:
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return 1, err
		}
		src = string(b)
	default:
		b, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			return 1, err
		}
		src = string(b)
	}

	b := dax.New().Command(src).PrintCommand(*printCommand)
	res, err := b.Spawn(ctx)

	var exitErr *dax.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, nil
	}
	if err != nil {
		return 1, err
	}
	return res.Code, nil
}
