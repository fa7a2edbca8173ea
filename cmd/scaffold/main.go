package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pagesmith/pagesmith/internal/service/sitegen"
	apiclient "github.com/pagesmith/pagesmith/pkg/api/client"
)

var buildVersion = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "generate":
		err = commandGenerate(args)
	case "submit":
		err = commandSubmit(args)
	case "deployments":
		err = commandDeployments(args)
	case "logs":
		err = commandLogs(args)
	case "health":
		err = commandHealth(args)
	case "version", "--version", "-v":
		fmt.Println(strings.TrimSpace(buildVersion))
		return
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// commandGenerate materializes a site bundle on the local filesystem without
// touching GitHub, useful for previewing what a brief produces.
func commandGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	task := fs.String("task", "", "Task identifier")
	brief := fs.String("brief", "", "Task brief text")
	round := fs.Int("round", 1, "Deployment round")
	out := fs.String("out", "", "Output directory (default ./<task>)")
	owner := fs.String("owner", "", "License copyright holder (default from GITHUB_USERNAME)")
	checks := fs.String("checks", "", "Comma-separated evaluation checks")
	fs.Parse(args)

	if strings.TrimSpace(*task) == "" {
		return errors.New("--task is required")
	}
	if strings.TrimSpace(*brief) == "" {
		return errors.New("--brief is required")
	}
	dir := strings.TrimSpace(*out)
	if dir == "" {
		dir = *task
	}

	licenseOwner := strings.TrimSpace(*owner)
	if licenseOwner == "" {
		licenseOwner = sitegen.OwnerFromEnv()
	}

	generator := sitegen.New(licenseOwner)
	bundle, err := generator.Generate(context.Background(), sitegen.Request{
		Task:   *task,
		Brief:  *brief,
		Round:  *round,
		Checks: splitChecks(*checks),
	})
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(bundle))
	for path := range bundle {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		target := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, []byte(bundle[path]), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		fmt.Printf("wrote %s\n", target)
	}
	return nil
}

func commandSubmit(args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	api := fs.String("api", "http://localhost:8000", "API base URL")
	email := fs.String("email", os.Getenv("STUDENT_EMAIL"), "Student email")
	secret := fs.String("secret", os.Getenv("SECRET"), "Shared secret")
	task := fs.String("task", "", "Task identifier")
	round := fs.Int("round", 1, "Deployment round")
	nonce := fs.String("nonce", "", "Idempotency nonce (default random)")
	brief := fs.String("brief", "", "Task brief text")
	evaluationURL := fs.String("evaluation-url", "", "Evaluator callback URL")
	checks := fs.String("checks", "", "Comma-separated evaluation checks")
	fs.Parse(args)

	if strings.TrimSpace(*email) == "" {
		return errors.New("--email is required (or set STUDENT_EMAIL)")
	}
	if strings.TrimSpace(*secret) == "" {
		return errors.New("--secret is required (or set SECRET)")
	}
	if strings.TrimSpace(*task) == "" {
		return errors.New("--task is required")
	}
	if strings.TrimSpace(*brief) == "" {
		return errors.New("--brief is required")
	}
	requestNonce := strings.TrimSpace(*nonce)
	if requestNonce == "" {
		requestNonce = uuid.NewString()
	}

	client, err := apiclient.New(*api)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ack, err := client.Submit(ctx, apiclient.DeployRequest{
		Email:         *email,
		Secret:        *secret,
		Task:          *task,
		Round:         *round,
		Nonce:         requestNonce,
		Brief:         *brief,
		Checks:        splitChecks(*checks),
		EvaluationURL: *evaluationURL,
	})
	if err != nil {
		return err
	}
	fmt.Printf("submitted: status=%s nonce=%s\n", ack.Status, requestNonce)
	if ack.Message != "" {
		fmt.Println(ack.Message)
	}
	return nil
}

func commandDeployments(args []string) error {
	fs := flag.NewFlagSet("deployments", flag.ExitOnError)
	api := fs.String("api", "http://localhost:8000", "API base URL")
	task := fs.String("task", "", "Task identifier")
	limit := fs.Int("limit", 10, "Maximum number of deployments")
	fs.Parse(args)

	if strings.TrimSpace(*task) == "" {
		return errors.New("--task is required")
	}

	client, err := apiclient.New(*api)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	deliveries, err := client.ListDeliveries(ctx, *task, *limit)
	if err != nil {
		return err
	}
	for _, d := range deliveries {
		fmt.Printf("%s\tround=%d\t%s\t%s\t%s\n", d.ID, d.Round, d.NotifyStatus, d.PagesURL, d.CreatedAt)
	}
	return nil
}

func commandLogs(args []string) error {
	fs := flag.NewFlagSet("logs", flag.ExitOnError)
	api := fs.String("api", "http://localhost:8000", "API base URL")
	task := fs.String("task", "", "Task identifier")
	limit := fs.Int("limit", 50, "Maximum number of log lines")
	offset := fs.Int("offset", 0, "Number of log lines to skip")
	fs.Parse(args)

	if strings.TrimSpace(*task) == "" {
		return errors.New("--task is required")
	}

	client, err := apiclient.New(*api)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	lines, err := client.Logs(ctx, *task, *limit, *offset)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(string(line))
	}
	return nil
}

func commandHealth(args []string) error {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	api := fs.String("api", "http://localhost:8000", "API base URL")
	fs.Parse(args)

	client, err := apiclient.New(*api)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	report, err := client.Health(ctx)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func splitChecks(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	checks := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			checks = append(checks, trimmed)
		}
	}
	return checks
}

func printUsage() {
	fmt.Printf("scaffold CLI %s\n\n", buildVersion)
	fmt.Print(`Usage:
	scaffold generate --task <name> --brief <text> [--round N] [--out dir] [--owner name] [--checks a,b]
	scaffold submit --task <name> --brief <text> [--email addr] [--secret s] [--round N] [--nonce id] [--evaluation-url url] [--checks a,b]
	scaffold deployments --task <name> [--api http://localhost:8000] [--limit N]
	scaffold logs --task <name> [--api http://localhost:8000] [--limit N] [--offset N]
	scaffold health [--api http://localhost:8000]
	scaffold version
`)
}
