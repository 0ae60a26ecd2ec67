package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nixlim/hva-top/internal/activity"
	"github.com/nixlim/hva-top/internal/channel"
	"github.com/nixlim/hva-top/internal/frame"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print activity and status changes as they arrive",
		Long: `Connect to the event channel and print each activity entry and every
connection or listening change until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, flags, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}

			p := &printer{out: cmd.OutOrStdout()}
			t := a.newTelemetry(activity.WithObserver(p.entry))
			t.unsubs = append(t.unsubs, t.shared.Manager().OnStateChange(p.channelState))
			t.start()
			t.unsubs = append(t.unsubs, t.shared.Subscribe(p.onFrame))

			<-ctx.Done()
			return a.shutdownManager(t).Shutdown()
		},
	}
}

// printer writes watch output lines. Channel state callbacks and frame
// handlers may run on different goroutines.
type printer struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

func (p *printer) entry(e activity.Entry) {
	p.printf("%s [%s] %s\n", e.Timestamp.Format("15:04:05"), e.Type, e.Message)
}

func (p *printer) channelState(s channel.State) {
	p.printf("-- channel %s\n", s)
}

// onFrame reports listening changes; activity entries arrive through entry.
func (p *printer) onFrame(f frame.Frame) {
	if f.Type != frame.TypeStatus {
		return
	}
	if f.Listening {
		p.printf("-- listening\n")
	} else {
		p.printf("-- idle\n")
	}
}
