package cli

import (
	"github.com/julianstephens/feedlog/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	ctx.PerformAutomaticBackup()
	return tui.Run(ctx.Service)
}
