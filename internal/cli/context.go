// Package cli provides the command-line interface for iemrank.
package cli

import (
	"context"

	"github.com/law-makers/iemrank/internal/app"
	"github.com/spf13/cobra"
)

// ctxKey is used for storing app context in cobra commands
type ctxKey string

const (
	appKey      ctxKey = "app"
	progressKey ctxKey = "progress"
)

// SetApp stores the Application in the command's context
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey, a))
}

// GetAppFromCmd retrieves the Application stored by SetApp, or nil
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	if cmd == nil || cmd.Context() == nil {
		return nil
	}
	a, _ := cmd.Context().Value(appKey).(*app.Application)
	return a
}

func setProgress(cmd *cobra.Command, p *progressObserver) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, progressKey, p))
}

// getProgress returns the observer created with the app, or a hidden one
func getProgress(cmd *cobra.Command) *progressObserver {
	if cmd.Context() != nil {
		if p, ok := cmd.Context().Value(progressKey).(*progressObserver); ok {
			return p
		}
	}
	return newProgress(cmd.ErrOrStderr(), false)
}
