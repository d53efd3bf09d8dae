// Package ptyshell backs a tiling leaf with a real shell process: it
// spawns a pseudoterminal, renders the bytes it produces into a
// window's cell buffer, and forwards keyboard input back to the
// child's stdin. It is one concrete, minimal implementation of the
// "pseudoterminal host" collaborator the window manager's message
// contract leaves abstract — not a full terminal emulator, so control
// sequences beyond carriage motion and tabs are stripped rather than
// interpreted.
package ptyshell

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
)

// fallbackShells is tried in order when neither config nor the
// invoking user's passwd entry names a shell.
var fallbackShells = []string{"/bin/bash", "/bin/zsh", "/bin/sh"}

// Session wraps one pseudoterminal-backed child shell process.
type Session struct {
	cmd *exec.Cmd
	pty *os.File

	mu sync.Mutex

	exitedMu sync.Mutex
	exited   bool
}

// NewSession starts shellPath (or an autodetected login shell, if
// empty) in dir with the given initial terminal size.
func NewSession(shellPath, dir string, cols, rows uint16) (*Session, error) {
	shell := shellPath
	if shell == "" {
		shell = detectShell()
	}

	cmd := exec.Command(shell, "-i")
	cmd.Dir = dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Env = shellEnv(shell, cols, rows)

	f, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		return nil, fmt.Errorf("ptyshell: start %s: %w", shell, err)
	}

	s := &Session{cmd: cmd, pty: f}
	go s.waitForExit()
	return s, nil
}

func (s *Session) waitForExit() {
	_ = s.cmd.Wait()
	s.exitedMu.Lock()
	s.exited = true
	s.exitedMu.Unlock()
}

// detectShell tries $SHELL, then the invoking user's passwd entry,
// then a short list of common shells.
func detectShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		if _, err := os.Stat(sh); err == nil {
			return sh
		}
	}
	if u, err := user.Current(); err == nil {
		if sh := passwdShell(u.Username); sh != "" {
			return sh
		}
	}
	for _, sh := range fallbackShells {
		if _, err := os.Stat(sh); err == nil {
			return sh
		}
	}
	return "/bin/sh"
}

func passwdShell(username string) string {
	data, err := os.ReadFile("/etc/passwd")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) == 7 && fields[0] == username {
			return strings.TrimSpace(fields[6])
		}
	}
	return ""
}

func shellEnv(shell string, cols, rows uint16) []string {
	env := os.Environ()
	env = replaceEnv(env, "TERM", "xterm-256color")
	env = replaceEnv(env, "SHELL", shell)
	env = replaceEnv(env, "COLUMNS", fmt.Sprint(cols))
	env = replaceEnv(env, "LINES", fmt.Sprint(rows))
	return env
}

// replaceEnv overwrites key's entry in env if present, appends it
// otherwise.
func replaceEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

// Read reads raw bytes produced by the child shell.
func (s *Session) Read(p []byte) (int, error) {
	return s.pty.Read(p)
}

// Write sends p to the child shell's stdin.
func (s *Session) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pty.Write(p)
}

// Resize informs the pseudoterminal (and, via SIGWINCH, the child) of
// a new size.
func (s *Session) Resize(cols, rows uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pty.Setsize(s.pty, &pty.Winsize{Rows: rows, Cols: cols})
}

// HasExited reports whether the child process has already exited.
func (s *Session) HasExited() bool {
	s.exitedMu.Lock()
	defer s.exitedMu.Unlock()
	return s.exited
}

// FD returns the pseudoterminal master's file descriptor, for a
// select loop to watch for readability.
func (s *Session) FD() uintptr {
	return s.pty.Fd()
}

// Close signals the child process and releases the pseudoterminal.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Signal(syscall.SIGHUP)
	}
	return s.pty.Close()
}
