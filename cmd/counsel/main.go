package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/acrolabs/counsel/pkg/chat"
	"github.com/acrolabs/counsel/pkg/schema"
	"github.com/acrolabs/counsel/pkg/service"
	"github.com/acrolabs/counsel/pkg/session"
	"github.com/acrolabs/counsel/pkg/tui"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	loadDotEnv() // load .env file if present (gitignored)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadDotEnv reads a .env file from the working directory and sets
// any variables that aren't already set in the environment.
// Lines are KEY=VALUE (or KEY="VALUE"). Comments (#) and blanks are skipped.
// The .env file is gitignored so secrets never end up in source control.
func loadDotEnv() {
	f, err := os.Open(".env")
	if err != nil {
		return // no .env file — that's fine
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		val = strings.Trim(val, `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "counsel",
	Short: "Guided debt-rehabilitation eligibility interview",
	Long:  "counsel — a chat-style guided interview that estimates personal debt-rehabilitation eligibility and the expected repayment plan.",
}

// --- chat ---

var (
	chatAPI    string
	chatSurvey string
	chatTrace  string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run the interactive interview in the terminal",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	svc, err := buildService()
	if err != nil {
		return err
	}

	cfg := tui.Config{Service: svc}
	if chatTrace != "" {
		tw, err := session.NewTranscriptWriter(chatTrace)
		if err != nil {
			return err
		}
		defer tw.Close()
		cfg.Trace = tw
	}
	return tui.Run(cfg)
}

// buildService picks the backend: a remote API when --api is set, otherwise
// an in-process service over --survey or the embedded default document.
func buildService() (service.SurveyService, error) {
	if chatAPI != "" {
		return service.NewClient(chatAPI), nil
	}

	if chatSurvey != "" {
		sv, errs := schema.ValidateFile(chatSurvey)
		if hasErrors(errs) {
			printValidation(errs)
			return nil, fmt.Errorf("%s: invalid survey", chatSurvey)
		}
		return service.NewLocal(sv), nil
	}

	sv, err := service.DefaultSurvey()
	if err != nil {
		return nil, err
	}
	return service.NewLocal(sv), nil
}

// --- ask ---

var askRate float64

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a follow-up question from the canned response table",
	Long: "Answer a debt-rehabilitation follow-up question. With a question argument it\n" +
		"answers once and exits; without one it opens an interactive prompt.",
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	var result *schema.Result
	if cmd.Flags().Changed("rate") {
		result = &schema.Result{RepaymentRate: askRate}
	}

	if len(args) == 1 {
		fmt.Println(chat.Respond(args[0], result))
		return nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "상담사> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Println("질문을 입력하세요. 빈 줄 또는 Ctrl+D로 종료합니다.")
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return nil
		}
		fmt.Println(chat.Respond(line, result))
		fmt.Println()
	}
}

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate [survey.yaml]",
	Short: "Validate a survey YAML document against the schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	sv, errs := schema.ValidateFile(args[0])
	if len(errs) > 0 {
		printValidation(errs)
		if hasErrors(errs) {
			return fmt.Errorf("validation failed")
		}
	}
	fmt.Printf("✓ %s is valid (%d steps)\n", sv.Meta.Name, len(sv.Steps))
	return nil
}

func hasErrors(errs []*schema.ValidationError) bool {
	for _, e := range errs {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

func printValidation(errs []*schema.ValidationError) {
	var errors, warnings []*schema.ValidationError
	for _, e := range errs {
		if e.Severity == "warning" {
			warnings = append(warnings, e)
		} else {
			errors = append(errors, e)
		}
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "  ⚠ [%s] %s\n", w.Phase, w.Message)
		if w.Path != "" {
			fmt.Fprintf(os.Stderr, "    at: %s\n", w.Path)
		}
	}
	if len(errors) > 0 {
		fmt.Fprintf(os.Stderr, "Validation failed: %d error(s)\n\n", len(errors))
		for i, e := range errors {
			fmt.Fprintf(os.Stderr, "  %d. [%s] %s\n", i+1, e.Phase, e.Message)
			if e.Path != "" {
				fmt.Fprintf(os.Stderr, "     at: %s\n", e.Path)
			}
		}
	}
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Survey schema utilities",
}

var schemaExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the survey document JSON Schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := schema.GenerateJSONSchema()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("counsel %s (%s)\n", version, commit)
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatAPI, "api", "", "Base URL of the remote counsel backend (default: in-process survey)")
	chatCmd.Flags().StringVar(&chatSurvey, "survey", "", "Path to a survey YAML document for the in-process backend")
	chatCmd.Flags().StringVar(&chatTrace, "trace", "", "Append the transcript as JSONL to this file")

	askCmd.Flags().Float64Var(&askRate, "rate", 0, "Repayment rate in percent for rate-aware fallback answers")

	schemaCmd.AddCommand(schemaExportCmd)

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
