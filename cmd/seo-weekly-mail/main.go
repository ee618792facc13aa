package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"seo-weekly-mail/internal/config"
	"seo-weekly-mail/internal/digest"
	"seo-weekly-mail/internal/mailer"
	"seo-weekly-mail/internal/plan"
)

const (
	envFileName = ".env.seo-mail"
	planDocPath = "docs/plan-seo-local-90j.md"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, config.FromOS(), time.Now))
}

// run executes one invocation and returns the process exit code.
func run(args []string, stdout, stderr io.Writer, ambient config.Env, now func() time.Time) int {
	log.SetOutput(stderr)

	root := projectRoot()
	flags := flag.NewFlagSet("seo-weekly-mail", flag.ContinueOnError)
	flags.SetOutput(stderr)
	dryRun := flags.Bool("dry-run", false, "Print the email instead of sending it")
	week := flags.Int("week", 0, "Force week number (ignored unless positive)")
	envFile := flags.String("env-file", filepath.Join(root, envFileName), "Optional KEY=VALUE file; real environment variables win")
	showConfig := flags.Bool("show-config", false, "Print the resolved mail configuration (secrets masked) and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	env, added, err := config.LoadFile(*envFile, ambient)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if added > 0 {
		log.Printf("Loaded %d variables from %s", added, *envFile)
	}

	if *showConfig {
		return printConfig(stdout, stderr, env)
	}

	weekNumber := *week
	if weekNumber <= 0 {
		weekNumber = plan.WeekAt(now(), plan.StartDate)
	}

	msg := digest.Compose(weekNumber, config.SubjectPrefix(env), filepath.Join(root, planDocPath))

	if *dryRun {
		fmt.Fprintln(stdout, "=== DRY RUN ===")
		fmt.Fprintf(stdout, "Subject: %s\n", msg.Subject)
		fmt.Fprintln(stdout, msg.Body)
		return 0
	}

	if startTracer(env) {
		defer tracer.Stop()
	}

	if err := mailer.Dispatch(context.Background(), env, msg); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Email envoye pour la semaine %d.\n", weekNumber)
	return 0
}

func printConfig(stdout, stderr io.Writer, env config.Env) int {
	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	out, err := config.Dump(cfg, config.SubjectPrefix(env))
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, out)
	return 0
}

// startTracer starts the Datadog tracer when an agent is configured. The
// agent address comes from env so values from the env file are honored.
func startTracer(env config.Env) bool {
	if env.Get("DD_AGENT_HOST", "") == "" && env.Get("DD_ENV", "") == "" {
		return false
	}
	opts := []tracer.StartOption{
		tracer.WithService("seo-weekly-mail"),
		tracer.WithEnv(env.Get("DD_ENV", "")),
	}
	if addr := agentAddr(env); addr != "" {
		opts = append(opts, tracer.WithAgentAddr(addr))
	}
	tracer.Start(opts...)
	return true
}

// agentAddr is host:port of the trace agent, or "" to keep the tracer default.
func agentAddr(env config.Env) string {
	host := env.Get("DD_AGENT_HOST", "")
	if host == "" {
		return ""
	}
	return net.JoinHostPort(host, env.Get("DD_TRACE_AGENT_PORT", "8126"))
}

// projectRoot is the parent of the directory holding the executable, so a
// binary installed as <root>/bin/seo-weekly-mail finds <root>/.env.seo-mail.
// It falls back to the working directory when the executable path is unknown.
func projectRoot() string {
	exe, err := os.Executable()
	if err != nil {
		if wd, werr := os.Getwd(); werr == nil {
			return wd
		}
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(filepath.Dir(exe))
}
