package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"printbot/internal/app"
	logx "printbot/pkg/logx"
)

func newRunCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Watch the spool directory and deliver notifications to the outbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := app.NewApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			log := a.Logger()
			notifySystemd(log, daemon.SdNotifyReady)
			err = a.Run(ctx)
			notifySystemd(log, daemon.SdNotifyStopping)
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

// notifySystemd reports state to systemd when running as a Type=notify unit.
func notifySystemd(log logx.Logger, state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		log.Warn("systemd notify failed", logx.String("state", state), logx.Err(err))
		return
	}
	if sent {
		log.Debug("systemd notified", logx.String("state", state))
	}
}
