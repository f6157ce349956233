// Package cli implements the RCON-style command line front end described
// in spec.md §6: an external collaborator of the core connection
// runtime, not part of it, but shipped here for completeness.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/avitex/battlelayer/conn"
)

// wordPattern matches one CLI word: a run of one or more characters where
// a literal comma may be escaped as \, ; an unescaped comma separates
// words (spec.md §6).
var wordPattern = regexp.MustCompile(`(?:\\,|[^,])+`)

// Tokenize splits line into the word list a request is built from. The
// escape \, is unescaped to a literal comma before being handed to
// word.New — see DESIGN.md, Open Question O3: the backslash is
// input-syntax, never wire content.
func Tokenize(line string) []string {
	matches := wordPattern.FindAllString(line, -1)
	words := make([]string, len(matches))
	for i, m := range matches {
		words[i] = strings.ReplaceAll(m, `\,`, ",")
	}
	return words
}

// RunREPL reads newline-delimited input from r, tokenizes each line,
// sends it as one request over c, and writes the first response word
// followed by a newline to w. It returns nil on a clean EOF from r, and
// the first error encountered otherwise (a malformed line or a failed
// request both stop the loop, matching the original's "one bad command
// ends the session" behavior).
func RunREPL(ctx context.Context, r io.Reader, w io.Writer, c *conn.Conn) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		words := Tokenize(line)
		resp, err := c.Exec(ctx, words...)
		if err != nil {
			return fmt.Errorf("cli: request failed: %w", err)
		}
		if len(resp) == 0 {
			continue
		}
		if _, err := fmt.Fprintln(w, resp[0].String()); err != nil {
			return err
		}
	}
	return scanner.Err()
}
