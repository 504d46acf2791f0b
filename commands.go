package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/expidus/lunar-remote/api"
	"github.com/expidus/lunar-remote/backend"
	"github.com/expidus/lunar-remote/backend/stub"
	"github.com/expidus/lunar-remote/config"
	"github.com/expidus/lunar-remote/events"
	"github.com/expidus/lunar-remote/logger"
)

// usageError makes the process exit with status 2.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

type env struct {
	cfg        *config.Config
	backend    *backend.Backend
	standalone bool
	out        io.Writer
}

type command struct {
	args string
	help string
	// minArgs and maxArgs bound the positional arguments; maxArgs < 0 is unbounded.
	minArgs, maxArgs int
	run              func(ctx context.Context, e *env, args []string) error
}

var trashActions = []string{"display", "empty", "query", "move"}

var commands = map[string]command{
	"launch": {"URI", "open a window on URI", 1, 1, func(ctx context.Context, e *env, a []string) error {
		return e.backend.FileManager.Launch(ctx, a[0])
	}},
	"folder": {"URI", "open a folder window on URI", 1, 1, func(ctx context.Context, e *env, a []string) error {
		return e.backend.FileManager.DisplayFolder(ctx, a[0])
	}},
	"select": {"URI FILENAME", "open URI and select FILENAME", 2, 2, func(ctx context.Context, e *env, a []string) error {
		return e.backend.FileManager.DisplayFolderAndSelect(ctx, a[0], a[1])
	}},
	"preferences": {"", "open the preferences dialog", 0, 0, func(ctx context.Context, e *env, a []string) error {
		return e.backend.FileManager.DisplayPreferencesDialog(ctx)
	}},
	"properties": {"URI", "open the properties dialog of URI", 1, 1, func(ctx context.Context, e *env, a []string) error {
		return e.backend.FileManager.DisplayFileProperties(ctx, a[0])
	}},
	"terminate": {"", "quit the running file manager", 0, 0, func(ctx context.Context, e *env, a []string) error {
		return e.backend.Lunar.Terminate(ctx)
	}},
	"bulk-rename": {"DIR [FILE...]", "open the bulk rename dialog", 1, -1, func(ctx context.Context, e *env, a []string) error {
		return e.backend.Lunar.BulkRename(ctx, a[0], a[1:], e.standalone)
	}},
	"trash": {"display|empty|query|move [URI...]", "trash operations", 1, -1, runTrash},
	"show-folders": {"URI...", "org.freedesktop.FileManager1 ShowFolders", 1, -1, func(ctx context.Context, e *env, a []string) error {
		return e.backend.FDO.ShowFolders(ctx, a)
	}},
	"show-items": {"URI...", "org.freedesktop.FileManager1 ShowItems", 1, -1, func(ctx context.Context, e *env, a []string) error {
		return e.backend.FDO.ShowItems(ctx, a)
	}},
	"show-properties": {"URI...", "org.freedesktop.FileManager1 ShowItemProperties", 1, -1, func(ctx context.Context, e *env, a []string) error {
		return e.backend.FDO.ShowItemProperties(ctx, a)
	}},
	"watch-trash": {"", "print trash state changes until interrupted", 0, 0, runWatchTrash},
	"serve":       {"", "run the HTTP bridge until interrupted", 0, 0, runServe},
	"stub":        {"", "serve recording file manager interfaces until interrupted", 0, 0, runStub},
}

// lookup resolves name and checks the argument count.
func lookup(name string, args []string) (command, error) {
	cmd, ok := commands[name]
	if !ok {
		return command{}, usagef("unknown command %q", name)
	}
	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		return command{}, usagef("usage: %s %s %s", config.AppName, name, cmd.args)
	}
	if name == "trash" {
		if err := checkTrashArgs(args); err != nil {
			return command{}, err
		}
	}
	return cmd, nil
}

func checkTrashArgs(args []string) error {
	switch args[0] {
	case "display", "empty", "query":
		if len(args) != 1 {
			return usagef("trash %s takes no argument", args[0])
		}
	case "move":
		if len(args) < 2 {
			return usagef("usage: %s trash move URI...", config.AppName)
		}
	default:
		return usagef("unknown trash action %q, want one of %s", args[0], strings.Join(trashActions, ", "))
	}
	return nil
}

func runTrash(ctx context.Context, e *env, a []string) error {
	t := e.backend.Trash
	switch a[0] {
	case "display":
		return t.DisplayTrash(ctx)
	case "empty":
		return t.EmptyTrash(ctx)
	case "move":
		return t.MoveToTrash(ctx, a[1:])
	default:
		full, err := t.QueryTrash(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(e.out, trashState(full))
		return err
	}
}

func trashState(full bool) string {
	if full {
		return "full"
	}
	return "empty"
}

func runWatchTrash(ctx context.Context, e *env, _ []string) error {
	ch, err := e.backend.WatchTrash()
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if state, ok := ev.Data.(events.TrashState); ok {
				if _, err := fmt.Fprintln(e.out, trashState(state.Full)); err != nil {
					return err
				}
			}
		}
	}
}

func runServe(ctx context.Context, e *env, _ []string) error {
	server := api.NewServer(ctx, e.cfg.Api, e.backend)
	if server == nil {
		return errors.New("HTTP bridge is disabled, enable it with --api or api.enabled")
	}
	return server.Run(ctx)
}

func runStub(ctx context.Context, e *env, _ []string) error {
	conn := e.backend.Conn()
	if conn == nil {
		return errors.New("stub needs a bus connection")
	}
	s := stub.New(ctx, conn, e.cfg.Stub)
	if err := s.Start(); err != nil {
		return err
	}
	defer s.Close()

	for {
		select {
		case <-s.Done():
			return nil
		case ev := <-s.Events():
			logger.Debug("[stub] event %s: %+v", ev.Type, ev.Data)
		}
	}
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
