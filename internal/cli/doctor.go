package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/feedlog/internal/backup"
	"github.com/julianstephens/feedlog/internal/calendar"
	"github.com/julianstephens/feedlog/internal/constants"
	"github.com/julianstephens/feedlog/internal/keyring"
	"github.com/julianstephens/feedlog/internal/storage"
)

var (
	listProcessesFunc = ps.Processes
	keyringAvailable  = keyring.IsAvailable
)

type DoctorCmd struct{}

type checkResult int

const (
	checkOK checkResult = iota
	checkWarn
	checkFail
	checkSkip
)

func (c *Context) report(name string, result checkResult, detail string) {
	switch result {
	case checkOK:
		c.printf("✓ %s: OK\n", name)
	case checkWarn:
		c.printf("⚠ %s: WARNING\n", name)
	case checkFail:
		c.printf("❌ %s: FAIL\n", name)
	case checkSkip:
		c.printf("⊘ %s: SKIPPED\n", name)
	}
	if detail != "" {
		c.printf("   %s\n", detail)
	}
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false
	fail := func(name string, err error) {
		ctx.report(name, checkFail, "Error: "+err.Error())
		hasError = true
	}

	reachable := true
	if err := checkDBReachable(ctx); err != nil {
		fail("Database reachable", err)
		reachable = false
	} else {
		ctx.report("Database reachable", checkOK, "")
	}

	if !reachable {
		ctx.report("Schema version", checkSkip, "database not reachable")
	} else if detail, err := checkSchema(ctx); err != nil {
		fail("Schema version", err)
	} else if detail != "" {
		ctx.report("Schema version", checkWarn, detail)
	} else {
		ctx.report("Schema version", checkOK, "")
	}

	if err := checkBackupsPresent(ctx); err != nil {
		ctx.report("Backups present", checkWarn, err.Error())
	} else {
		ctx.report("Backups present", checkOK, "")
	}

	if err := checkCalendar(ctx); err != nil {
		fail("Clock/timezone", err)
	} else {
		ctx.report("Clock/timezone", checkOK, "")
	}

	if ctx.Config != nil && ctx.Config.UsesKeyring() {
		if keyringAvailable() {
			ctx.report("OS keyring", checkOK, "")
		} else {
			fail("OS keyring", keyring.ErrUnavailable)
		}
	} else {
		ctx.report("OS keyring", checkSkip, "database is not read from the keyring")
	}

	if pids, err := findServers(); err != nil {
		ctx.report("Running servers", checkWarn, "could not list processes: "+err.Error())
	} else if len(pids) > 0 {
		ctx.report("Running servers", checkOK, fmt.Sprintf("%s running with PID(s) %s", constants.AppName, joinInts(pids)))
	} else {
		ctx.report("Running servers", checkOK, "no other "+constants.AppName+" process found")
	}

	ctx.println()
	if hasError {
		return errors.New("diagnostics found problems")
	}
	ctx.println("All checks passed.")
	return nil
}

func checkDBReachable(ctx *Context) error {
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return ctx.Store.Ping(pingCtx)
}

// checkSchema returns a non-empty detail when migrations are pending.
func checkSchema(ctx *Context) (string, error) {
	m, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return "", nil
	}
	current, latest, err := m.SchemaVersions()
	if err != nil {
		return "", err
	}
	if current > latest {
		return "", fmt.Errorf("database schema version %d is newer than supported version %d", current, latest)
	}
	if current < latest {
		return fmt.Sprintf("schema version %d, latest is %d; run '%s migrate'", current, latest, constants.AppName), nil
	}
	return "", nil
}

func checkBackupsPresent(ctx *Context) error {
	if !storage.IsSQLite(ctx.Store) {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found; run '%s backup create'", constants.AppName)
	}
	return nil
}

func checkCalendar(ctx *Context) error {
	cal := ctx.Service.Calendar()
	if cal.Location == nil {
		return errors.New("no timezone configured")
	}
	if ctx.Config != nil && ctx.Config.Feeding.Timezone != "" {
		if _, err := calendar.LoadLocation(ctx.Config.Feeding.Timezone); err != nil {
			return err
		}
	}
	now := cal.Now()
	if now.Year() < 2000 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	w := cal.Current()
	if !w.Contains(now) {
		return fmt.Errorf("current day window %s does not contain now", w.Key())
	}
	return nil
}

// findServers lists other processes running the feedlog binary.
func findServers() ([]int, error) {
	procs, err := listProcessesFunc()
	if err != nil {
		return nil, err
	}
	self := os.Getpid()
	var pids []int
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		if strings.TrimSuffix(p.Executable(), ".exe") == constants.AppName {
			pids = append(pids, p.Pid())
		}
	}
	return pids, nil
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
