package logging

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// OutputCapture redirects stdout/stderr into a logger for the duration
// of the terminal session. A tiling terminal UI owns the whole screen,
// so any stray fmt.Println from a library would otherwise corrupt the
// display instead of reaching the user; captured lines go to the log
// file as warnings (a well-behaved dependency should never use them).
type OutputCapture struct {
	logger zerolog.Logger

	originalStdout, originalStderr *os.File
	stdoutRead, stdoutWrite        *os.File
	stderrRead, stderrWrite        *os.File

	stopChan chan struct{}
	started  bool
}

func NewOutputCapture(logger zerolog.Logger) *OutputCapture {
	return &OutputCapture{
		logger:         logger.With().Str("component", "stray_output").Logger(),
		originalStdout: os.Stdout,
		originalStderr: os.Stderr,
		stopChan:       make(chan struct{}),
	}
}

func (c *OutputCapture) Start() error {
	if c.started {
		return nil
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return err
	}

	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return err
	}

	c.stdoutRead, c.stdoutWrite = stdoutR, stdoutW
	c.stderrRead, c.stderrWrite = stderrR, stderrW

	os.Stdout = stdoutW
	os.Stderr = stderrW

	if err := unix.Dup3(int(stdoutW.Fd()), 1, 0); err != nil {
		c.logger.Warn().Err(err).Msg("redirect stdout fd")
	}
	if err := unix.Dup3(int(stderrW.Fd()), 2, 0); err != nil {
		c.logger.Warn().Err(err).Msg("redirect stderr fd")
	}

	go c.pipeToLogger(stdoutR, "stdout")
	go c.pipeToLogger(stderrR, "stderr")

	c.started = true
	return nil
}

func (c *OutputCapture) Stop() {
	if !c.started {
		return
	}
	close(c.stopChan)

	os.Stdout = c.originalStdout
	os.Stderr = c.originalStderr

	if err := unix.Dup3(int(c.originalStdout.Fd()), 1, 0); err != nil {
		c.logger.Warn().Err(err).Msg("restore stdout fd")
	}
	if err := unix.Dup3(int(c.originalStderr.Fd()), 2, 0); err != nil {
		c.logger.Warn().Err(err).Msg("restore stderr fd")
	}

	for _, f := range []*os.File{c.stdoutWrite, c.stderrWrite, c.stdoutRead, c.stderrRead} {
		if f != nil {
			_ = f.Close()
		}
	}

	c.started = false
}

func (c *OutputCapture) pipeToLogger(r io.Reader, stream string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case <-c.stopChan:
			return
		default:
		}
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line != "" {
			c.logger.Warn().Str("stream", stream).Msg(line)
		}
	}
}
