// scraper/lines.go
package scraper

import (
	"bufio"
	"errors"
	"io"
)

// maxLineBytes caps a single input line. Longer lines are discarded whole.
const maxLineBytes = 1024 * 1024

// lineReader yields input lines without their terminators, skipping over
// lines longer than max instead of failing the read.
type lineReader struct {
	r      *bufio.Reader
	max    int
	lineNo int
	done   bool
	err    error
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r), max: maxLineBytes}
}

// next returns the next line. tooLong is set when the line exceeded the cap;
// its content is then empty. ok is false once input is exhausted or failed.
func (lr *lineReader) next() (line string, tooLong bool, ok bool) {
	if lr.done {
		return "", false, false
	}
	var buf []byte
	started := false
	for {
		chunk, isPrefix, err := lr.r.ReadLine()
		if err != nil {
			lr.done = true
			if !errors.Is(err, io.EOF) {
				lr.err = err
			}
			if !started {
				return "", false, false
			}
			break
		}
		started = true
		if !tooLong {
			if len(buf)+len(chunk) > lr.max {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			break
		}
	}
	lr.lineNo++
	return string(buf), tooLong, true
}
