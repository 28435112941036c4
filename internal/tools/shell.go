package tools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// BlockFunc returns true if the given command args should be blocked
// outright. Block functions run inside the interpreter's exec handler, so
// they apply after the Invoke step's danger gates have already passed.
type BlockFunc func(args []string) bool

// CommandsBlocker returns a BlockFunc that blocks exact command name matches.
func CommandsBlocker(cmds []string) BlockFunc {
	blocked := make(map[string]struct{}, len(cmds))
	for _, c := range cmds {
		blocked[c] = struct{}{}
	}
	return func(args []string) bool {
		if len(args) == 0 {
			return false
		}
		_, ok := blocked[args[0]]
		return ok
	}
}

// ArgumentsBlocker returns a BlockFunc that blocks a command when specific
// subcommand args and/or flags are present, e.g. ArgumentsBlocker("npm",
// []string{"install"}, []string{"-g"}) blocks "npm install -g <pkg>" but
// allows "npm install <pkg>".
func ArgumentsBlocker(cmd string, subArgs, flags []string) BlockFunc {
	return func(args []string) bool {
		if len(args) == 0 || args[0] != cmd {
			return false
		}
		posArgs, posFlags := splitArgsFlags(args[1:])
		if !prefixMatch(posArgs, subArgs) {
			return false
		}
		if len(flags) > 0 && !flagsPresent(posFlags, flags) {
			return false
		}
		return true
	}
}

func splitArgsFlags(args []string) (positional, flags []string) {
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			flags = append(flags, a)
		} else {
			positional = append(positional, a)
		}
	}
	return
}

func prefixMatch(haystack, needle []string) bool {
	if len(haystack) < len(needle) {
		return false
	}
	for i, n := range needle {
		if haystack[i] != n {
			return false
		}
	}
	return true
}

func flagsPresent(actual, required []string) bool {
	have := make(map[string]struct{}, len(actual))
	for _, f := range actual {
		have[f] = struct{}{}
	}
	for _, r := range required {
		if _, ok := have[r]; !ok {
			return false
		}
	}
	return true
}

// BannedShellCommands are refused outright by name — privilege escalation,
// service management, disk and mount tools, and firewall control. Global
// package installs are blocked separately by DefaultBlockFuncs.
var BannedShellCommands = []string{
	"sudo", "su", "doas",
	"systemctl", "service", "mount", "umount", "fdisk", "mkfs",
	"iptables", "ufw", "firewall-cmd",
}

// DefaultBlockFuncs returns the standard set of block functions installed
// on every Bash tool invocation.
func DefaultBlockFuncs() []BlockFunc {
	return []BlockFunc{
		CommandsBlocker(BannedShellCommands),
		ArgumentsBlocker("npm", []string{"install"}, []string{"-g"}),
		ArgumentsBlocker("npm", []string{"install"}, []string{"--global"}),
		ArgumentsBlocker("pip", []string{"install"}, nil),
		ArgumentsBlocker("pip3", []string{"install"}, nil),
		ArgumentsBlocker("go", []string{"install"}, nil),
	}
}

// shellTimeout bounds a single Bash invocation; the interpreter runs
// in-process so a runaway script (e.g. an unintended infinite loop) would
// otherwise block the agent loop forever.
const shellTimeout = 2 * time.Minute

// blockedError is returned through the exec handler chain when a command
// matches one of the installed BlockFuncs; runShell returns it wrapped in
// its "command failed" error, which becomes the tool's failure output.
type blockedError struct{ args []string }

func (e *blockedError) Error() string {
	return fmt.Sprintf("command blocked: %s", strings.Join(e.args, " "))
}

func blockHandler(blockers []BlockFunc, next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		for _, blocked := range blockers {
			if blocked(args) {
				return &blockedError{args: args}
			}
		}
		return next(ctx, args)
	}
}

// runShell parses and runs command as a POSIX shell script in-process
// using an mvdan.cc/sh/v3 interpreter anchored at workingDir, rather than
// shelling out to /bin/sh. The script starts in workingDir, so globs and
// relative paths resolve against it; unlike safePath, nothing stops cd or
// an absolute path from reaching outside it. Routing exec through
// blockHandler lets DefaultBlockFuncs veto a command before it ever forks.
func runShell(command string) (string, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return "", fmt.Errorf("parse error: %w", err)
	}

	var out bytes.Buffer
	runner, err := interp.New(
		interp.StdIO(nil, &out, &out),
		interp.Interactive(false),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.Dir(workingDir),
		interp.ExecHandlers(func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
			return blockHandler(DefaultBlockFuncs(), next)
		}),
	)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), shellTimeout)
	defer cancel()

	if err := runner.Run(ctx, file); err != nil {
		return out.String(), fmt.Errorf("command failed: %w", err)
	}
	return out.String(), nil
}
