package tui

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/firefly/internal/frontend"
)

// Options configures the App.
type Options struct {
	Theme       string
	LineNumbers bool

	// EngineDone, when set, is closed when the engine exits. EngineErr is
	// consulted afterwards for the reason.
	EngineDone <-chan struct{}
	EngineErr  func() error
}

// App is the running TUI application.
type App struct {
	client  *frontend.Client
	opts    Options
	program *tea.Program

	// syncLoop feeds draw commands into the client; client.Run by default.
	syncLoop    func(ctx context.Context, onUpdate func()) error
	programOpts []tea.ProgramOption
}

// New creates an App over client.
func New(client *frontend.Client, opts Options) *App {
	return &App{
		client:      client,
		opts:        opts,
		syncLoop:    client.Run,
		programOpts: []tea.ProgramOption{tea.WithAltScreen()},
	}
}

// Run starts the TUI and blocks until the user quits or ctx is done.
// Every background goroutine has returned by the time Run does, so the
// caller may close the channel right after.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	model := NewModel(a.client, ThemeByName(a.opts.Theme), a.opts.LineNumbers)
	a.program = tea.NewProgram(model, append(a.programOpts, tea.WithContext(ctx))...)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	wg.Go(func() {
		select {
		case <-sigChan:
			a.program.Send(tea.Quit())
		case <-ctx.Done():
		}
	})

	wg.Go(func() {
		_ = a.syncLoop(ctx, func() { a.program.Send(redrawMsg{}) })
	})

	if a.opts.EngineDone != nil {
		wg.Go(func() {
			select {
			case <-a.opts.EngineDone:
				var err error
				if a.opts.EngineErr != nil {
					err = a.opts.EngineErr()
				}
				a.program.Send(engineExitedMsg{err: err})
			case <-ctx.Done():
			}
		})
	}

	_, err := a.program.Run()
	if err != nil && ctx.Err() != nil {
		// Cancellation by the caller is a normal shutdown.
		return nil
	}
	return err
}
