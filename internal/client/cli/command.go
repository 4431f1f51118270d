package cli

import (
	"context"
	"strconv"
)

// Command is the closed set of menu actions. Dispatch goes through a static
// table rather than a runtime-built one, so every reachable action is visible
// here.
type Command int

const (
	CmdLoadQueue Command = iota + 1
	CmdDownload
	CmdVerify
	CmdGenManifest
	CmdConvertLua
	CmdMakeQueue
	CmdLookup
	CmdLogin
	CmdClearQueue
	CmdLogout
	CmdExit
)

// menuOrder fixes the on-screen ordering of the menu.
var menuOrder = []Command{
	CmdLoadQueue,
	CmdDownload,
	CmdVerify,
	CmdGenManifest,
	CmdConvertLua,
	CmdMakeQueue,
	CmdLookup,
	CmdLogin,
	CmdClearQueue,
	CmdLogout,
	CmdExit,
}

var commandTitles = map[Command]string{
	CmdLoadQueue:   "Load queue file (.sfd)",
	CmdDownload:    "Download game (from queue)",
	CmdVerify:      "Verify/repair an existing download",
	CmdGenManifest: "Generate appmanifest.acf file",
	CmdConvertLua:  "Convert lua/manifest files to a queue file",
	CmdMakeQueue:   "Make queue file from scratch (requires login)",
	CmdLookup:      "AppID lookup tool",
	CmdLogin:       "Login (anonymous or with account)",
	CmdClearQueue:  "Clear download queue",
	CmdLogout:      "Logout",
	CmdExit:        "Exit",
}

// dispatch binds every command except CmdExit, which the menu loop handles
// itself.
var dispatch = map[Command]func(*App, context.Context) error{
	CmdLoadQueue:   (*App).loadQueue,
	CmdDownload:    func(a *App, ctx context.Context) error { return a.downloadGame(ctx, false) },
	CmdVerify:      func(a *App, ctx context.Context) error { return a.downloadGame(ctx, true) },
	CmdGenManifest: (*App).generateManifest,
	CmdConvertLua:  (*App).convertLua,
	CmdMakeQueue:   (*App).makeQueue,
	CmdLookup:      (*App).lookupApp,
	CmdLogin:       (*App).login,
	CmdClearQueue:  (*App).clearQueue,
	CmdLogout:      (*App).logout,
}

func parseCommand(s string) (Command, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	cmd := Command(n)
	if cmd == CmdExit {
		return cmd, true
	}
	_, ok := dispatch[cmd]
	return cmd, ok
}
