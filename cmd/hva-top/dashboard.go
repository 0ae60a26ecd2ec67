package main

import (
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nixlim/hva-top/internal/tui"
)

func runDashboard(cmd *cobra.Command, flags *globalFlags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, flags, cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}

	t := a.newTelemetry()
	t.start()
	go a.seedBaseline(ctx, t.cost)

	sm := a.shutdownManager(t)

	// Third-party packages logging through the standard logger would
	// corrupt the alt screen.
	log.SetOutput(io.Discard)

	model := tui.NewModel(a.cfg,
		tui.WithActivityProvider(t.activity),
		tui.WithStatusProvider(t.status),
		tui.WithCostProvider(t.cost),
		tui.WithLogProvider(a.logs),
		tui.WithNoticeProvider(t.notices),
		tui.WithListenToggler(t.toggler),
		tui.WithBackendLogs(a.api.TailLogs),
		tui.WithLogger(a.log),
	)

	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, runErr := p.Run()
	return errors.Join(runErr, sm.Shutdown())
}
