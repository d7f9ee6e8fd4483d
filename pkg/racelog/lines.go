package racelog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const utf8BOM = "\ufeff"

// readLines calls fn for every non-blank line. Line numbers start at 1.
func readLines(r io.Reader, fn func(num int, line string) error) error {
	scanner := bufio.NewScanner(r)
	num := 0
	for scanner.Scan() {
		num++
		line := scanner.Text()
		if num == 1 {
			line = strings.TrimPrefix(line, utf8BOM)
		}
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(num, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func withFile(path string, fn func(r io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return fn(f)
}
