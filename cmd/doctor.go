package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/ljos/budzilla/internal/config"
	"github.com/ljos/budzilla/internal/session"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that Budzilla's configuration, caches and clipboard support are in
order. Run this command when something seems wrong. It makes no network calls.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	fail := func(format string, args ...any) {
		printErr(fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("budzilla doctor")

	fmt.Println("\n[ config ]")
	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath, _ = config.ConfigPath()
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		printWarn(fmt.Sprintf("%s not found, using defaults and environment (run 'budzilla init')", cfgPath))
	} else {
		printOK(fmt.Sprintf("config file: %s", cfgPath))
	}
	cfg, err := config.Load(flagConfig)
	switch {
	case err != nil:
		fail("cannot load config: %v", err)
	default:
		if err := cfg.Validate(); err != nil {
			fail("%v", err)
		} else {
			printOK(fmt.Sprintf("user %s, threshold %d, timeout %s", cfg.Username, cfg.Threshold, cfg.TimeoutDuration()))
		}
		checkPasswordSource(cfg, fail)
	}

	fmt.Println("\n[ session ]")
	if sessPath, err := config.SessionPath(); err != nil {
		fail("%v", err)
	} else {
		ttl := time.Hour
		if cfg != nil {
			ttl = cfg.SessionTTLDuration()
		}
		checkSession(session.NewFileStore(sessPath, ttl), fail)
	}

	fmt.Println("\n[ response cache ]")
	if store, err := openCache(); err != nil {
		fail("%v", err)
	} else {
		if st, err := store.Stats(); err != nil {
			fail("cannot read cache stats: %v", err)
		} else {
			printOK(fmt.Sprintf("%d live, %d expired, %s", st.Live, st.Expired, formatBytes(st.Bytes)))
		}
		_ = store.Close()
	}

	fmt.Println("\n[ clipboard ]")
	if clipboard.Unsupported {
		fail("no clipboard utility found (install xclip, xsel or wl-clipboard)")
	} else {
		printOK("clipboard available")
	}

	fmt.Println("\n[ log ]")
	if logPath, err := config.LogPath(); err == nil {
		printInfo(logPath)
	}

	fmt.Println()
	if !allOK {
		return fmt.Errorf("some checks failed")
	}
	printOK("all checks passed")
	return nil
}

func checkSession(store *session.FileStore, fail func(string, ...any)) {
	sess, ok, err := store.Load()
	switch {
	case err != nil:
		fail("cannot read session: %v", err)
	case !ok:
		printSkip("no live session; the next query logs in")
	default:
		printOK(fmt.Sprintf("logged in, expires in %s", time.Until(sess.ExpiresAt).Round(time.Minute)))
	}
}

func checkPasswordSource(cfg *config.Config, fail func(string, ...any)) {
	src, err := config.PasswordSource(cfg)
	switch {
	case err != nil:
		fail("cannot read secrets: %v", err)
	case src == "":
		printSkip("no password set")
	case src == config.SourceFile:
		printWarn("password read from budzilla.yaml; prefer BUDZILLA_PASSWORD in .env")
	default:
		printOK("password read from " + src)
	}
}
