package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func executeCLI() error {
	root := buildRootCommand(true)
	if err := root.Execute(); err != nil {
		return err
	}
	return nil
}

func buildRootCommand(includeDocsCommand bool) *cobra.Command {
	var (
		showVersion bool
		configPath  string
	)

	root := &cobra.Command{
		Use:   "personagen",
		Short: "Turn biographies into chat personas and serve them over HTTP",
		Long: strings.TrimSpace(`personagen builds a structured persona from a biographical PDF or text and
role-plays it in chat.

Use CLI commands to onboard, run the HTTP relay, analyze a document, chat with a
persona in the terminal, and list the built-in sample personas.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion()
				return nil
			}
			_ = cmd.Help()
			return fmt.Errorf("a subcommand is required")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Show build/version metadata")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.personagen/config.json)")

	cfgPath := func() string { return configPath }

	root.AddCommand(newOnboardCommand(cfgPath))
	root.AddCommand(newServeCommand(cfgPath))
	root.AddCommand(newAnalyzeCommand(cfgPath))
	root.AddCommand(newChatCommand(cfgPath))
	root.AddCommand(newSamplesCommand())
	root.AddCommand(newStatusCommand(cfgPath))
	root.AddCommand(newVersionCommand())

	if includeDocsCommand {
		docsCmd := newDocsCommand(func() *cobra.Command { return buildRootCommand(false) })
		root.AddCommand(docsCmd)
	}

	return root
}

func newOnboardCommand(cfgPath func() string) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "onboard",
		Short:   "Initialize ~/.personagen config and upload directory",
		Long:    "Write the default configuration and create the upload directory for a new installation.",
		Example: "  personagen onboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return onboard(cmd, cfgPath(), force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config without asking")
	return cmd
}

func newServeCommand(cfgPath func() string) *cobra.Command {
	var (
		addr  string
		debug bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP relay",
		Long:  "Serve persona building, chat, speech, sessions, health and metrics over HTTP until interrupted.",
		Example: strings.Join([]string{
			"  personagen serve",
			"  personagen serve --addr 127.0.0.1:8080 --debug",
		}, "\n"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if debug {
				enableDebug()
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.host/server.port)")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	return cmd
}

func newAnalyzeCommand(cfgPath func() string) *cobra.Command {
	var (
		text      string
		extractor string
		debug     bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Build a persona from a PDF or text file and print it as JSON",
		Long:  "Build a persona from a document the same way /upload_pdf does and print the persona JSON.",
		Example: strings.Join([]string{
			"  personagen analyze biography.pdf",
			"  personagen analyze notes.txt --extractor heuristic",
			"  personagen analyze --text \"My name is Ada Lovelace. ...\"",
		}, "\n"),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && strings.TrimSpace(text) == "" {
				return fmt.Errorf("a file argument or --text is required")
			}
			cfg, err := loadConfig(cfgPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if debug {
				enableDebug()
			}
			if extractor != "" {
				cfg.Persona.Extractor = extractor
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return analyze(cmd, cfg, path, text)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Analyze this text instead of a file")
	cmd.Flags().StringVar(&extractor, "extractor", "", "Override persona.extractor (auto, llm, heuristic)")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	return cmd
}

func newChatCommand(cfgPath func() string) *cobra.Command {
	var (
		sample  string
		file    string
		message string
		local   bool
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a persona in the terminal",
		Long:  "Chat interactively with a sample persona or one built from a document, or send a one-shot message.",
		Example: strings.Join([]string{
			"  personagen chat --sample kalam",
			"  personagen chat --file biography.pdf",
			"  personagen chat --sample einstein --message \"What inspires you?\"",
		}, "\n"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (sample == "") == (file == "") {
				return fmt.Errorf("exactly one of --sample or --file is required")
			}
			cfg, err := loadConfig(cfgPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if debug {
				enableDebug()
			}
			return chat(cmd, cfg, chatOptions{sample: sample, file: file, message: message, local: local})
		},
	}

	cmd.Flags().StringVarP(&sample, "sample", "s", "", "Sample persona id (see `personagen samples`)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Build the persona from this PDF or text file")
	cmd.Flags().StringVarP(&message, "message", "m", "", "One-shot message instead of an interactive session")
	cmd.Flags().BoolVar(&local, "local", false, "Answer locally even when a provider is configured")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	return cmd
}

func newSamplesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "samples",
		Short:   "List the built-in sample personas",
		Example: "  personagen samples",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSamples(cmd.OutOrStdout())
		},
	}
}

func newStatusCommand(cfgPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show configuration, provider, and store readiness",
		Example: "  personagen status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return status(cmd.OutOrStdout(), cfgPath())
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show build/version metadata",
		Example: "  personagen version",
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion()
			return nil
		},
	}
}
