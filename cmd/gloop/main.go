// Command gloop is the terminal-resident agent: it drives an LLM through
// the recursive interpreter loop, either interactively or headless as a
// spawned subagent (--task).
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ianrumac/gloop/internal/config"
	"github.com/ianrumac/gloop/internal/contextprune"
	"github.com/ianrumac/gloop/internal/effects"
	"github.com/ianrumac/gloop/internal/eval"
	"github.com/ianrumac/gloop/internal/form"
	"github.com/ianrumac/gloop/internal/llmprovider"
	"github.com/ianrumac/gloop/internal/logging"
	"github.com/ianrumac/gloop/internal/memory"
	"github.com/ianrumac/gloop/internal/session"
	"github.com/ianrumac/gloop/internal/subagent"
	"github.com/ianrumac/gloop/internal/tools"
)

const supervisedEnv = "GLOOP_SUPERVISED"

func main() {
	if os.Getenv(supervisedEnv) == "" {
		os.Exit(runSupervisor())
	}
	run()
}

// runSupervisor respawns the worker process whenever it exits with the
// reboot exit code, per the reboot protocol. It is the process launched
// by a user or by the subagent launcher; the actual agent logic lives in
// run(), invoked in a child marked with GLOOP_SUPERVISED.
func runSupervisor() int {
	for {
		cmd := exec.Command(os.Args[0], os.Args[1:]...)
		cmd.Env = append(os.Environ(), supervisedEnv+"=1")
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		err := cmd.Run()
		if exitErr, ok := err.(*exec.ExitError); ok {
			if exitErr.ExitCode() == session.RebootExitCode {
				continue
			}
			return exitErr.ExitCode()
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
}

func run() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	headless := cfg.TaskPrompt != ""
	log := logging.Setup(cfg.LogLevel, headless)

	if err := os.MkdirAll(".gloop", 0o755); err != nil {
		log.Fatal().Err(err).Msg("create .gloop dir")
	}
	mem := memory.NewStore(".gloop/memory.txt")
	registry := tools.NewRegistry(tools.DefaultDefinitions()...)

	conv := llmprovider.NewAnthropicConversation(cfg.APIKey, cfg.Model, cfg.MaxTokens)

	resumeInput := ""
	if rf, ok, err := session.LoadAndDeleteRebootSession(); err != nil {
		log.Error().Err(err).Msg("load reboot session")
	} else if ok {
		conv.SetHistory(rf.History)
		resumeInput = session.ResumeMessage(rf.Reason)
	}

	conv.SetSystem(effects.BuildSystemPrompt(registry, mem))

	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	manageContextFn := func(instructions string) string {
		return contextprune.Run(ctx, conv, instructions)
	}
	spawnFn := func(task string) form.SpawnResult {
		return subagent.Launch(subagent.Options{
			BinaryPath: os.Args[0],
			Model:      cfg.Model,
			Provider:   cfg.Provider,
			Debug:      cfg.Debug,
		}, task)
	}
	installToolFn := func(source string) string {
		return "install is not supported in this build: " + source
	}

	world := eval.NewWorld(conv, registry, cfg.ContextPruneThreshold)

	if headless {
		runHeadless(ctx, cfg, log, mem, registry, world, manageContextFn, spawnFn, installToolFn, resumeInput)
		return
	}

	runInteractive(ctx, log, mem, registry, world, manageContextFn, spawnFn, installToolFn, resumeInput)
}

func runHeadless(ctx context.Context, cfg config.Config, log zerolog.Logger, mem *memory.Store, registry *tools.Registry, world *eval.World, manageContextFn func(string) string, spawnFn func(string) form.SpawnResult, installToolFn func(string) string, resumeInput string) {
	var out *os.File
	if cfg.EventsFile != "" {
		f, err := os.Create(cfg.EventsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("create events file")
		}
		defer f.Close()
		out = f
	} else {
		out = os.Stdout
	}

	events := subagent.NewEventWriter(out)
	events.Start(cfg.TaskPrompt)

	fx := &effects.Headless{
		Events: events,
		Log:    log,
		Memory: mem,
		Start:  time.Now(),
		BuildSystemPrompt: func() string {
			prompt := effects.BuildSystemPrompt(registry, mem)
			world.Conversation.SetSystem(prompt)
			return prompt
		},
		ManageContextFn: manageContextFn,
		SpawnFn:         spawnFn,
		InstallToolFn:   installToolFn,
	}

	task := cfg.TaskPrompt
	if resumeInput != "" {
		task = resumeInput + "\n\n" + task
	}

	if err := eval.Eval(ctx, form.Think(task), world, fx); err != nil {
		events.Error(err.Error())
		os.Exit(1)
	}
}

func runInteractive(ctx context.Context, log zerolog.Logger, mem *memory.Store, registry *tools.Registry, world *eval.World, manageContextFn func(string) string, spawnFn func(string) form.SpawnResult, installToolFn func(string) string, resumeInput string) {
	fx := effects.NewTerminal(log, mem, registry)
	fx.BuildSystemPrompt = func() string {
		prompt := effects.BuildSystemPrompt(registry, mem)
		world.Conversation.SetSystem(prompt)
		return prompt
	}
	fx.ManageContextFn = manageContextFn
	fx.SpawnFn = spawnFn
	fx.InstallToolFn = installToolFn

	scanner := bufio.NewScanner(os.Stdin)

	if resumeInput != "" {
		runForm(ctx, form.Think(resumeInput), world, fx, log)
	}

	fmt.Fprintln(os.Stdout, "gloop ready. Type a message, or /tools, /install <source>.")
	for {
		fmt.Fprint(os.Stdout, "> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		f := parseSlashCommand(line)
		runForm(ctx, f, world, fx, log)
	}
}

func runForm(ctx context.Context, f form.Form, world *eval.World, fx eval.Effects, log zerolog.Logger) {
	if err := eval.Eval(ctx, f, world, fx); err != nil {
		log.Error().Err(err).Msg("run failed")
		fmt.Fprintln(os.Stdout, "[Interrupted]")
	}
}

// parseSlashCommand implements the pre-Think slash-command routing: known
// commands map to their Form; unknown "/..." emits an error; anything else
// becomes a Think.
func parseSlashCommand(line string) form.Form {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		return form.Think(trimmed)
	}
	switch {
	case trimmed == "/tools":
		return form.ListTools()
	case strings.HasPrefix(trimmed, "/install "):
		return form.Install(strings.TrimSpace(strings.TrimPrefix(trimmed, "/install ")))
	default:
		return form.Emit("Unknown command: "+trimmed, form.Nil())
	}
}
