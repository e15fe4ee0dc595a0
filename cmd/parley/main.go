package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"parley-go/internal/app"
	"parley-go/internal/config"
	"parley-go/internal/parley"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readConfig loads the config file from the default location.
func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a ParleyApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Send", "Record").
func newApp(ctx context.Context, operation string) (*app.ParleyApp, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewParleyApp(ctx, cfg, operation, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// readPassphrase prompts on stderr and reads a line from stdin without echo
// when stdin is a terminal.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printMessage(m parley.Message) {
	ts := m.CreatedAt.Local().Format("2006-01-02 15:04")
	if m.HasAudio() {
		fmt.Printf("%s  %s  [audio %s]  %s\n", m.ID, ts, parley.FormatDuration(m.Audio.DurationMs), m.Translation)
		return
	}
	fmt.Printf("%s  %s  %s\n     -> %s\n", m.ID, ts, m.SourceText, m.Translation)
}

var rootCmd = &cobra.Command{
	Use:          "parley",
	Short:        "Translate typed and spoken phrases",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		sessionID := uuid.New().String()
		cfg := config.NewConfig(sessionID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Session ID: %s\n", sessionID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Session ID: %s\n", cfg.SessionID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Language:   %s\n", cfg.Language)
		fmt.Printf("Database:   %s\n", cfg.Database.Type)
		fmt.Printf("Audio:      %s\n", cfg.Audio.Type)
		fmt.Printf("AI:         %s %s\n", cfg.AI.Type, cfg.AI.Model)
		fmt.Printf("Recorder:   %s\n", cfg.Device.Recorder)
		fmt.Printf("Player:     %s\n", cfg.Device.Player)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage history export keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the export key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := app.SetupKeys(cfg.Encryption, pass); err != nil {
			return err
		}
		fmt.Printf("Keys written to %s and %s\n", cfg.Encryption.PublicKeyPath, cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// languages command
var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List text translation targets",
	Run: func(cmd *cobra.Command, args []string) {
		for _, l := range parley.Languages() {
			fmt.Printf("%s  %s\n", l.Code(), l.Name())
		}
	},
}

// send command
var sendCmd = &cobra.Command{
	Use:   "send TEXT...",
	Short: "Translate text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")

		a, err := newApp(cmd.Context(), "Send")
		if err != nil {
			return err
		}
		defer a.Close()

		msg, err := a.SendText(cmd.Context(), strings.Join(args, " "), lang)
		if err != nil {
			return err
		}
		fmt.Println(msg.Translation)
		return nil
	},
}

// record command
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record speech and translate it to English",
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, _ := cmd.Flags().GetDuration("duration")

		ctx, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stopSignals()

		a, err := newApp(ctx, "Record")
		if err != nil {
			return err
		}
		defer a.Close()

		stop := make(chan struct{})
		if duration == 0 {
			fmt.Fprintln(os.Stderr, "Press Enter to stop recording.")
			go func() {
				bufio.NewReader(os.Stdin).ReadString('\n')
				close(stop)
			}()
		}

		msg, err := a.Record(ctx, duration, stop)
		if err != nil {
			return err
		}
		if msg != nil {
			fmt.Printf("[%s] %s\n", parley.FormatDuration(msg.Audio.DurationMs), msg.Translation)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View the conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := newApp(cmd.Context(), "History")
		if err != nil {
			return err
		}
		defer a.Close()

		msgs := a.History()
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(msgs)
		}

		if len(msgs) == 0 {
			fmt.Println("No messages.")
			return nil
		}
		for _, m := range msgs {
			printMessage(m)
		}
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write an encrypted copy of the conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "Export")
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.OpenFile(args[0], os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("creating archive: %w", err)
		}
		n, err := a.Export(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(args[0])
			return err
		}
		fmt.Printf("Exported %d message(s) to %s\n", n, args[0])
		return nil
	},
}

var historyImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Merge an exported conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "Import")
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer f.Close()

		res, err := a.Import(cmd.Context(), f, pass)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d message(s), %d already present\n", res.Imported, res.Skipped)
		if res.Detached > 0 {
			fmt.Printf("%d message(s) imported without their recording\n", res.Detached)
		}
		return nil
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Delete messages and their recordings",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Delete(cmd.Context(), args)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d message(s)\n", n)
		return nil
	},
}

// play command
var playCmd = &cobra.Command{
	Use:   "play ID",
	Short: "Play a recorded message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, err := newApp(ctx, "Play")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Play(ctx, args[0])
	},
}

// speak command
var speakCmd = &cobra.Command{
	Use:   "speak ID",
	Short: "Read a translation aloud",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")

		a, err := newApp(cmd.Context(), "Speak")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Speak(cmd.Context(), args[0], lang)
	},
}

// audio command
var audioCmd = &cobra.Command{
	Use:   "audio",
	Short: "Manage stored recordings",
}

var audioOrphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "List recordings no message refers to",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "Orphans")
		if err != nil {
			return err
		}
		defer a.Close()

		uris, err := a.Orphans(cmd.Context())
		if err != nil {
			return err
		}
		if len(uris) == 0 {
			fmt.Println("No orphaned recordings.")
			return nil
		}
		for _, uri := range uris {
			fmt.Println(uri)
		}
		return nil
	},
}

var audioSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete recordings no message refers to",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "Sweep")
		if err != nil {
			return err
		}
		defer a.Close()

		deleted, err := a.Sweep(cmd.Context())
		fmt.Printf("Deleted %d recording(s)\n", len(deleted))
		return err
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// history subcommands
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyImportCmd)
	historyCmd.Flags().Bool("json", false, "Print messages as JSON")

	// audio subcommands
	audioCmd.AddCommand(audioOrphansCmd)
	audioCmd.AddCommand(audioSweepCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(languagesCmd)
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringP("lang", "l", "", "Target language code or name (default from config)")
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().DurationP("duration", "d", 0, "Stop after this long (default: wait for Enter)")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(speakCmd)
	speakCmd.Flags().StringP("lang", "l", "", "Voice language code (default from config)")
	rootCmd.AddCommand(audioCmd)
}
