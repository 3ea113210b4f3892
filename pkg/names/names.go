// Package names loads the two lookup tables that drive entity extraction:
// the name dictionary, which decides which tokens are characters, and the
// synonym table, which folds aliases into canonical names.
package names

import (
	"bufio"
	"io"
)

const maxLineBytes = 1024 * 1024

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxLineBytes)
	return scanner
}
