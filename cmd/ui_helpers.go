// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// interactive reports whether both stdout and w are terminals. The area and
// cursor escapes go to stdout, so a redirected stdout disables animation.
func interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// startSpinner animates text on w until the returned stop function is called.
// When w is not an interactive terminal it prints nothing.
func startSpinner(w io.Writer, text string) (stop func()) {
	if !interactive(w) {
		return func() {}
	}

	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for i := 0; ; i++ {
			area.Update(fmt.Sprintf("%s %s", spinnerFrames[i%len(spinnerFrames)], text))
			select {
			case <-t.C:
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
			area.Stop()
			cursor.Show()
		})
	}
}

// progress prints a status line to w, in the muted style used for
// per-file progress.
func progress(w io.Writer, format string, args ...any) {
	pterm.Fprintln(w, pterm.Gray(fmt.Sprintf(format, args...)))
}
