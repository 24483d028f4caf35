// Package parser turns MedGen's pipe- and tab-delimited flat files into lazy,
// single-pass sequences of typed records. Every parser holds only one line of
// state, matching the teacher's own bufio.Scanner-based line readers
// (e.g. redbco-redb-open/cmd/supervisor/internal/initialize/initialize.go).
package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

const maxScanTokenSize = 1024 * 1024 // a single MedGen line is never this long; generous headroom over bufio's 64KiB default

// Stream is a pull-based iterator over one source file's records. Call Next
// until it returns false, then check Err for a budget-exceeded or I/O
// failure that terminated the stream early.
type Stream[T any] struct {
	sc        *bufio.Scanner
	file      string
	logger    *logrus.Logger
	schema    []string
	delim     byte
	trimTrail bool
	maxErrors int
	errCount  int
	lineNum   int
	build     func(fields map[string]string, raw string) T

	pending *string // a line read ahead (by the HPO header sniff) to replay as the first record

	cur T
	err error
}

func newStream[T any](r io.Reader, file string, schema []string, delim byte, trimTrail bool, maxErrors int, logger *logrus.Logger, build func(fields map[string]string, raw string) T) *Stream[T] {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxScanTokenSize)
	return &Stream[T]{
		sc:        sc,
		file:      file,
		logger:    logger,
		schema:    schema,
		delim:     delim,
		trimTrail: trimTrail,
		maxErrors: maxErrors,
		build:     build,
	}
}

func (s *Stream[T]) warnf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warnf(format, args...)
	}
}

// recordError records a malformed-line error against the budget. Returns true if the
// budget has been exceeded and the stream must stop.
func (s *Stream[T]) recordError(reason string) bool {
	s.warnf("skipping malformed row %d in %s: %s", s.lineNum, s.file, reason)
	s.errCount++
	if s.errCount > s.maxErrors {
		s.err = &ParseBudgetExceededError{File: s.file, MaxErrors: s.maxErrors}
		return true
	}
	return false
}

func splitLine(line string, delim byte) []string {
	return strings.Split(line, string(delim))
}

// Next advances the stream, returning false when exhausted or failed.
func (s *Stream[T]) Next() bool {
	for {
		var line string
		if s.pending != nil {
			line = *s.pending
			s.pending = nil
		} else if s.sc.Scan() {
			line = s.sc.Text()
		} else {
			if err := s.sc.Err(); err != nil {
				s.err = err
			}
			return false
		}
		s.lineNum++

		raw := line
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := splitLine(line, s.delim)
		if s.trimTrail && len(fields) > len(s.schema) {
			allEmpty := true
			for _, f := range fields[len(s.schema):] {
				if f != "" {
					allEmpty = false
					break
				}
			}
			if allEmpty {
				fields = fields[:len(s.schema)]
			}
		}

		if len(fields) != len(s.schema) {
			if s.recordError(fmt.Sprintf("expected %d columns, found %d", len(s.schema), len(fields))) {
				return false
			}
			continue
		}

		m := make(map[string]string, len(fields))
		for i, name := range s.schema {
			m[name] = strings.TrimSpace(fields[i])
		}
		s.cur = s.build(m, raw)
		return true
	}
}

// Record returns the most recently produced record. Only valid after Next
// returns true.
func (s *Stream[T]) Record() T {
	return s.cur
}

// Err returns the error, if any, that stopped the stream.
func (s *Stream[T]) Err() error {
	return s.err
}
