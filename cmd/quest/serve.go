package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-quest/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout time.Duration
	flagResumeTTL   time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the quest SSH server",
	Long: `Start an SSH server that allows learners to connect and play quests.

Each SSH connection gets its own session with a quest picker menu. The SSH
user name is the learner id, so attempts are recorded per user.

A learner whose connection drops can reconnect within the resume window and
continue the running quest exactly where it was.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, uses ssh.host_key from the config (relative to home)

Examples:
  quest serve                            # Listen on the configured address
  quest serve --ssh :2222                # Listen on port 2222
  quest serve --resume-ttl 10m           # Keep dropped quests for 10 minutes
  quest serve --db ./progress.db         # Use specific database

Learners connect with:
  ssh ada@localhost -p 2324`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout before disconnecting")
	serveCmd.Flags().DurationVar(&flagResumeTTL, "resume-ttl", 0, "How long a dropped quest can be resumed")
}

func runServe(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	if flagSSHAddr != "" {
		cfg.SSH.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.SSH.HostKey = flagHostKey
	}
	if cmd.Flags().Changed("idle-timeout") {
		cfg.SSH.IdleTimeout = flagIdleTimeout
	}
	if cmd.Flags().Changed("resume-ttl") {
		cfg.SSH.ResumeTTL = flagResumeTTL
	}

	quests, err := loadQuests(cfg)
	if err != nil {
		fail("%v", err)
	}

	// Server diagnostics go to stderr unless --log is set
	logger, closeLog, err := newLogger()
	if err != nil {
		fail("%v", err)
	}
	defer closeLog()
	if flagLogPath == "" {
		logger.SetOutput(os.Stderr)
	}

	store := openStore(cfg)
	defer func() {
		if store != nil {
			store.Close()
		}
	}()

	server, err := tui.NewSSHServer(tui.SSHServerConfigFrom(cfg.SSH), quests, newLauncher(cfg, store, logger))
	if err != nil {
		fail("creating server: %v", err)
	}

	fmt.Printf("Starting quest SSH server on %s (%d quests)\n", cfg.SSH.Address, len(quests))
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
	}
}
