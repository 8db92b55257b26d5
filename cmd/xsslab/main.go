package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"xsslab/internal/banner"
	"xsslab/internal/config"
	"xsslab/internal/dispatch"
	"xsslab/internal/dvwa"
	"xsslab/internal/httpclient"
	"xsslab/internal/logger"
	"xsslab/internal/module"
	"xsslab/internal/module/domxss"
	"xsslab/internal/module/reflected"
	"xsslab/internal/module/stored"
	"xsslab/internal/recorder"
	"xsslab/internal/target"
)

// Exit codes: 0 = walkthrough ran to completion (whether or not any payload
// landed), 1 = preflight/authentication/unexpected failure, 130 = operator
// interrupt.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config.yaml: %v\n", err)
		return exitFailure
	}

	// Command-line flags override config.yaml.
	var verbose, trace bool
	flag.StringVar(&cfg.Host, "host", cfg.Host, "Target hostname")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "Target port")
	flag.BoolVar(&cfg.UseHTTPS, "https", cfg.UseHTTPS, "Use HTTPS instead of HTTP")
	flag.StringVar(&cfg.Credentials.Username, "username", cfg.Credentials.Username, "DVWA username")
	flag.StringVar(&cfg.Credentials.Password, "password", cfg.Credentials.Password, "DVWA password")
	flag.StringVar(&cfg.Mode, "mode", cfg.Mode, "XSS class to demonstrate: reflected, stored, dom, all")
	flag.StringVar(&cfg.SecurityLevel, "security-level", cfg.SecurityLevel, "Set DVWA security level before testing (low, medium, high, impossible)")
	noInteractive := flag.Bool("no-interactive", !cfg.Interactive, "Run in non-interactive mode (auto-approve all steps)")
	flag.StringVar(&cfg.Output.LogDir, "log-dir", cfg.Output.LogDir, "Directory for log files")
	flag.BoolVar(&cfg.ConfirmTarget, "confirm-target", cfg.ConfirmTarget, "Explicitly confirm target is authorized for testing (required for non-localhost targets)")
	flag.BoolVar(&cfg.SkipBanner, "skip-banner", cfg.SkipBanner, "Skip the safety banner (not recommended)")
	flag.BoolVar(&verbose, "v", cfg.Output.Verbose, "Enable verbose output (DEBUG level)")
	flag.BoolVar(&trace, "vv", false, "Enable trace-level output (highly verbose)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "xsslab is an interactive, narrated XSS walkthrough for DVWA lab environments.\nIt teaches reflected, stored, and DOM-based cross-site scripting step by step.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "TARGET:\n")
		fmt.Fprintf(os.Stderr, "  -host string\n    \tTarget hostname (default: localhost)\n")
		fmt.Fprintf(os.Stderr, "  -port int\n    \tTarget port (default: 80)\n")
		fmt.Fprintf(os.Stderr, "  -https\n    \tUse HTTPS instead of HTTP\n")
		fmt.Fprintf(os.Stderr, "  -confirm-target\n    \tExplicitly confirm a non-local target is authorized\n")
		fmt.Fprintf(os.Stderr, "\nWALKTHROUGH:\n")
		fmt.Fprintf(os.Stderr, "  -mode string\n    \treflected, stored, dom, or all (default: all)\n")
		fmt.Fprintf(os.Stderr, "  -security-level string\n    \tSet DVWA security level before testing\n")
		fmt.Fprintf(os.Stderr, "  -no-interactive\n    \tAuto-approve all steps\n")
		fmt.Fprintf(os.Stderr, "\nCREDENTIALS:\n")
		fmt.Fprintf(os.Stderr, "  -username string\n    \tDVWA username (default: admin)\n")
		fmt.Fprintf(os.Stderr, "  -password string\n    \tDVWA password (default: password)\n")
		fmt.Fprintf(os.Stderr, "\nOUTPUT:\n")
		fmt.Fprintf(os.Stderr, "  -log-dir string\n    \tDirectory for log files (default: logs)\n")
		fmt.Fprintf(os.Stderr, "  -v\n    \tEnable verbose output (DEBUG level)\n")
		fmt.Fprintf(os.Stderr, "  -vv\n    \tEnable trace-level output\n")
		fmt.Fprintf(os.Stderr, "\nCONFIGURATION:\n")
		fmt.Fprintf(os.Stderr, "  xsslab automatically loads 'config.yaml' from the current directory.\n")
		fmt.Fprintf(os.Stderr, "  Command-line flags will override settings from the configuration file.\n")
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  # Run all XSS modules interactively against a local DVWA\n")
		fmt.Fprintf(os.Stderr, "  xsslab -mode all\n\n")
		fmt.Fprintf(os.Stderr, "  # Reflected XSS only, DVWA on a custom port\n")
		fmt.Fprintf(os.Stderr, "  xsslab -mode reflected -port 8080\n\n")
		fmt.Fprintf(os.Stderr, "  # Non-interactive run with all steps auto-approved\n")
		fmt.Fprintf(os.Stderr, "  xsslab -mode all -no-interactive\n\n")
	}
	flag.Parse()
	cfg.Interactive = !*noInteractive
	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		flag.Usage()
		return exitFailure
	}

	// Safety banner and authorization prompt happen before anything else.
	var tagline string
	if !cfg.SkipBanner {
		tagline = banner.Display()
		banner.DisplayLegalNotice()
		if !confirmAuthorization() {
			fmt.Println("\nAuthorization not confirmed. Exiting.")
			return exitFailure
		}
	} else {
		tagline = banner.Tagline(true)
	}

	minLevel := logger.INFO
	if trace {
		minLevel = logger.TRACE
	} else if cfg.Output.Verbose {
		minLevel = logger.DEBUG
	}
	log, err := logger.New(minLevel, cfg.Output.LogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return exitFailure
	}
	defer log.Close()

	// Operator prompts block on stdin, so the interrupt path cannot wait for
	// the walkthrough to notice cancellation: flush the logs and leave with
	// the distinguished status right away.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		log.Narrative("\n\n[!] Operation cancelled by user")
		log.Info("User interrupted with Ctrl+C")
		log.Close()
		os.Exit(exitInterrupted)
	}()

	return orchestrate(ctx, cfg, log, tagline)
}

// orchestrate runs preflight, authentication, and the selected scenario
// modules. Unexpected panics are caught at this boundary, logged with a
// stack trace, and turned into exit code 1.
func orchestrate(ctx context.Context, cfg *config.Config, log *logger.Logger, tagline string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			log.Narrative("\n[-] Unexpected error: %v", r)
			log.Error("Unexpected error: %v\n%s", r, debug.Stack())
			code = exitFailure
		}
	}()

	tgt := target.New(cfg.Host, cfg.Port, cfg.UseHTTPS)
	if cfg.ConfirmTarget {
		tgt.Confirm()
	}

	rec, err := recorder.New(cfg.Output.LogDir, log)
	if err != nil {
		log.Error("Failed to initialize request recorder: %v", err)
		return exitFailure
	}

	log.Section(fmt.Sprintf("XSSLAB - %s", tagline))
	log.Narrative("Target: %s", tgt.BaseURL())
	log.Narrative("Mode: %s", cfg.Mode)
	log.Narrative("Interactive: %t", cfg.Interactive)

	client := httpclient.NewClient(log, httpclient.ClientOptions{})

	log.Narrative("\nRunning preflight checks...")
	if err := target.Preflight(tgt, client, log); err != nil {
		log.Narrative("\n[-] Preflight check failed: %v", err)
		log.Error("Preflight check failed: %v", err)
		return exitFailure
	}
	log.Narrative("[+] All preflight checks passed\n")

	log.Narrative("Authenticating with DVWA...")
	auth := dvwa.NewAuthenticator(tgt, client, log)

	isDVWA, version := auth.VerifyPresence()
	if !isDVWA {
		log.Narrative("\n[-] Target does not appear to be DVWA: %s", version)
		log.Narrative("Please verify:")
		log.Narrative("  1. DVWA is running")
		log.Narrative("  2. Target URL is correct")
		log.Narrative("  3. %s is accessible", tgt.ResolvePath("login.php"))
		return exitFailure
	}
	log.Narrative("[+] DVWA detected (version: %s)", version)

	if !auth.Login(cfg.Credentials.Username, cfg.Credentials.Password) {
		log.Narrative("\n[-] Authentication failed")
		log.Narrative("Please verify:")
		log.Narrative("  1. DVWA credentials are correct")
		log.Narrative("  2. DVWA setup is complete")
		return exitFailure
	}

	if level, ok := auth.DetectSecurityLevel(); ok {
		log.Narrative("Current DVWA security level: %s", level)
		if cfg.SecurityLevel != "" && cfg.SecurityLevel != level {
			log.Narrative("Setting security level to: %s", cfg.SecurityLevel)
			if auth.SetSecurityLevel(cfg.SecurityLevel) {
				log.Narrative("[+] Security level changed to: %s", cfg.SecurityLevel)
			} else {
				log.Narrative("[!] Failed to change security level")
			}
		}
	} else if cfg.SecurityLevel != "" {
		log.Narrative("Setting security level to: %s", cfg.SecurityLevel)
		if !auth.SetSecurityLevel(cfg.SecurityLevel) {
			log.Narrative("[!] Failed to change security level")
		}
	}

	runner := &module.Runner{
		Dispatcher:  dispatch.New(client, log, rec),
		Auth:        auth,
		Target:      tgt,
		Log:         log,
		Prompter:    module.NewConsolePrompter(os.Stdin),
		Interactive: cfg.Interactive,
	}

	var outcomes []module.Outcome
	if cfg.Mode == "reflected" || cfg.Mode == "all" {
		log.Section("Starting Reflected XSS Module")
		outcomes = append(outcomes, reflected.New(runner).Run(ctx))
	}
	if ctx.Err() == nil && (cfg.Mode == "stored" || cfg.Mode == "all") {
		log.Section("Starting Stored XSS Module")
		outcomes = append(outcomes, stored.New(runner).Run(ctx))
	}
	if ctx.Err() == nil && (cfg.Mode == "dom" || cfg.Mode == "all") {
		log.Section("Starting DOM-Based XSS Module")
		outcomes = append(outcomes, domxss.New(runner).Run(ctx))
	}

	summarize(log, outcomes, cfg.Output.LogDir, rec.OutputPath)
	return exitOK
}

func summarize(log *logger.Logger, outcomes []module.Outcome, logDir, capturePath string) {
	var ran, succeeded []string
	for _, outcome := range outcomes {
		if outcome.Ran {
			ran = append(ran, outcome.Name)
		}
		if outcome.Succeeded {
			succeeded = append(succeeded, outcome.Name)
		}
	}

	log.Section("SESSION SUMMARY")
	log.Narrative("Modules run: %s", orNone(ran))
	log.Narrative("Modules succeeded: %s", orNone(succeeded))
	log.Narrative("\nLogs saved to: %s/", logDir)
	log.Narrative("Raw HTTP replays: %s", capturePath)
}

func orNone(names []string) string {
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}

// confirmAuthorization requires the operator to acknowledge the legal terms
// before any configuration is acted on.
func confirmAuthorization() bool {
	fmt.Println("Before proceeding, you must confirm that:")
	fmt.Println("  1. You have explicit authorization to test the target system")
	fmt.Println("  2. You understand the legal implications of unauthorized testing")
	fmt.Println("  3. You will use this tool responsibly and ethically")
	fmt.Println()
	fmt.Print("Do you confirm the above? Type 'I AGREE' to proceed: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(line) == "I AGREE"
}
