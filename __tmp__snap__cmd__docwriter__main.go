// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// docwriter extracts documentation comment blocks from source files and
// renders them as cross-referenced Markdown.
//
// Usage:
//
//	docwriter -t "My Project" -o docs/api -p mp src/*.c include/*.h
//	docwriter -c docwriter.hcl --check
//	docwriter preview widgets src/*.c
//
// Exit status is 0 on success, 1 on fatal diagnostics (or any warning with
// --strict), 2 on usage or configuration errors and 3 when the output
// directory is not writable or --check finds out-of-date documents.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"grimm.is/docwriter/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		root.PrintErrln("docwriter:", err)
	}
	return errors.ExitCode(err)
}


