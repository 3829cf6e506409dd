// Package launcher starts the engine as a child process and stops it on
// shutdown.
package launcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/Iron-Ham/firefly/internal/channel"
	"github.com/Iron-Ham/firefly/internal/errors"
	"github.com/Iron-Ham/firefly/internal/logging"
)

// EngineCommand is the subcommand the child is started with.
const EngineCommand = "engine"

// DefaultGracePeriod is how long Stop waits after SIGTERM before killing.
const DefaultGracePeriod = 2 * time.Second

// Launcher runs one engine process.
type Launcher struct {
	mu     sync.Mutex
	exe    string
	prefix []string
	flags  []string
	env    []string
	stderr io.Writer
	logger *logging.Logger

	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithCommand runs exe with prefix arguments placed before the engine
// subcommand. The default is the running executable with no prefix.
func WithCommand(exe string, prefix ...string) Option {
	return func(l *Launcher) {
		l.exe = exe
		l.prefix = prefix
	}
}

// WithFlags appends flags after the channel names.
func WithFlags(flags ...string) Option {
	return func(l *Launcher) {
		l.flags = append(l.flags, flags...)
	}
}

// WithEnv adds environment variables to the inherited environment.
func WithEnv(env ...string) Option {
	return func(l *Launcher) {
		l.env = append(l.env, env...)
	}
}

// WithStderr redirects the child's stderr. By default it is discarded,
// since the terminal belongs to the front end.
func WithStderr(w io.Writer) Option {
	return func(l *Launcher) {
		l.stderr = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Launcher) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New returns a launcher that has not started anything yet.
func New(opts ...Option) *Launcher {
	l := &Launcher{logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Args returns the argument list the engine is started with, excluding
// the executable itself.
func (l *Launcher) Args(names channel.Names) []string {
	args := make([]string, 0, len(l.prefix)+3+len(l.flags))
	args = append(args, l.prefix...)
	args = append(args, EngineCommand, names.UIToEngine, names.EngineToUI)
	args = append(args, l.flags...)
	return args
}

// Start spawns the engine with both channel names. It fails with
// *errors.ProcessError if the executable cannot be found or started, or if
// an engine is already running.
func (l *Launcher) Start(names channel.Names) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cmd != nil {
		return errors.NewProcessError("engine already started", nil).WithPID(l.cmd.Process.Pid)
	}
	if err := names.Validate(); err != nil {
		return errors.NewProcessError("start engine", err)
	}

	exe := l.exe
	if exe == "" {
		self, err := os.Executable()
		if err != nil {
			return errors.NewProcessError("locate executable", errors.Join(errors.ErrEngineStartFailed, err))
		}
		exe = self
	}

	cmd := exec.Command(exe, l.Args(names)...)
	cmd.Env = append(os.Environ(), l.env...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = l.stderr

	if err := cmd.Start(); err != nil {
		return errors.NewProcessError("spawn engine", errors.Join(errors.ErrEngineStartFailed, err)).
			WithExecutable(exe)
	}

	l.cmd = cmd
	l.done = make(chan struct{})
	l.logger.Info("engine started", "pid", cmd.Process.Pid, "exe", exe)

	go l.wait(cmd, l.done)
	return nil
}

func (l *Launcher) wait(cmd *exec.Cmd, done chan struct{}) {
	err := cmd.Wait()

	l.mu.Lock()
	l.err = err
	l.mu.Unlock()

	if err != nil {
		l.logger.Warn("engine exited", "pid", cmd.Process.Pid, "error", err.Error())
	} else {
		l.logger.Info("engine exited", "pid", cmd.Process.Pid)
	}
	close(done)
}

// Done is closed when the engine process exits. It is nil before Start.
func (l *Launcher) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

// Err returns the engine's exit error once Done is closed.
func (l *Launcher) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// PID returns the engine's process id, or 0 before Start.
func (l *Launcher) PID() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cmd == nil {
		return 0
	}
	return l.cmd.Process.Pid
}

// Stop asks the engine to exit with SIGTERM and kills it if it is still
// running after grace. Stop returns once the process has been reaped and
// is a no-op when the engine already exited. Stopping a launcher that was
// never started fails with errors.ErrEngineNotRunning.
func (l *Launcher) Stop(grace time.Duration) error {
	l.mu.Lock()
	cmd, done := l.cmd, l.done
	l.mu.Unlock()

	if cmd == nil {
		return errors.NewProcessError("stop engine", errors.ErrEngineNotRunning)
	}
	select {
	case <-done:
		return nil
	default:
	}

	if err := cmd.Process.Signal(unix.SIGTERM); err != nil {
		l.logger.Debug("signal engine", "error", err.Error())
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
	}

	l.logger.Warn("engine ignored SIGTERM, killing", "pid", cmd.Process.Pid)
	if err := cmd.Process.Kill(); err != nil {
		select {
		case <-done:
			return nil
		default:
		}
		return errors.NewProcessError("kill engine", err).WithPID(cmd.Process.Pid)
	}
	<-done
	return nil
}

// String describes the launcher for logs.
func (l *Launcher) String() string {
	if pid := l.PID(); pid != 0 {
		return fmt.Sprintf("engine[%d]", pid)
	}
	return "engine[not started]"
}
