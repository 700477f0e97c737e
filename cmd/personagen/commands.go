package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dotsetgreg/personagen/pkg/config"
	"github.com/dotsetgreg/personagen/pkg/logger"
	"github.com/dotsetgreg/personagen/pkg/metrics"
	"github.com/dotsetgreg/personagen/pkg/pdftext"
	"github.com/dotsetgreg/personagen/pkg/persona"
	"github.com/dotsetgreg/personagen/pkg/providers"
	"github.com/dotsetgreg/personagen/pkg/relay"
	"github.com/dotsetgreg/personagen/pkg/session"
)

const minPurgeInterval = time.Minute

func enableDebug() {
	logger.SetLevel(logger.DEBUG)
	fmt.Println("🔍 Debug mode enabled")
}

func onboard(cmd *cobra.Command, path string, force bool) error {
	if strings.TrimSpace(path) == "" {
		path = getConfigPath()
	}
	out := cmd.OutOrStdout()

	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintf(out, "Config already exists at %s\n", path)
		fmt.Fprint(out, "Overwrite? (y/n): ")
		reader := bufio.NewReader(cmd.InOrStdin())
		response, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read input: %w", readErr)
		}
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if err := config.SaveConfig(path, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadDirPath(), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	fmt.Fprintf(out, "%s is ready!\n", appName)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Add your Gemini API key to", path)
	fmt.Fprintln(out, "     (or set providers.active to \"none\" to use heuristics only)")
	fmt.Fprintln(out, "  2. Try a sample persona: personagen chat --sample kalam")
	fmt.Fprintln(out, "  3. Analyze a biography: personagen analyze biography.pdf")
	fmt.Fprintln(out, "  4. Run the relay: personagen serve")
	fmt.Fprintln(out, "  5. Check readiness: personagen status")
	return nil
}

// expiringStore is implemented by stores whose expired rows must be removed
// explicitly.
type expiringStore interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

func serve(ctx context.Context, cfg *config.Config, addr string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	ttl := time.Duration(cfg.Store.SessionTTLMinutes) * time.Minute
	schedule, err := newPurgeSchedule(cfg.Store.PurgeSchedule, ttl)
	if err != nil {
		return err
	}
	store, err := session.Open(cfg.Store.Driver, cfg.StorePath(), ttl)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	if strings.TrimSpace(addr) == "" {
		addr = cfg.ListenAddr()
	}
	providerName := providers.ProviderNone
	if a.provider != nil {
		providerName = providers.ActiveProviderName(cfg)
	}

	srv := relay.New(relay.Options{
		Addr:           addr,
		UploadDir:      cfg.UploadDirPath(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
		MaxPDFPages:    cfg.Server.MaxPDFPages,
		AllowOrigins:   []string(cfg.Server.AllowOrigins),
		HistoryLimit:   cfg.HistoryLimit(),
		DefaultVoice:   cfg.Speech.DefaultVoice,
		ProviderName:   providerName,
	}, relay.Deps{
		Builder:  a.builder,
		Remote:   a.remote,
		Speech:   a.speech,
		Sessions: store,
		Metrics:  metrics.New(),
		Jitter:   a.jitter,
	})

	logger.InfoCF("cli", "Relay starting", map[string]interface{}{
		"addr":      addr,
		"provider":  providerName,
		"extractor": cfg.Persona.Extractor,
		"store":     cfg.Store.Driver,
		"speech":    cfg.Speech.Enabled,
	})
	fmt.Printf("✓ Relay listening on http://%s\n", addr)
	fmt.Println("Press Ctrl+C to stop")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if purger, ok := store.(expiringStore); ok && ttl > 0 {
		g.Go(func() error {
			purgeExpired(gctx, purger, schedule)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Println("✓ Relay stopped")
	return nil
}

func purgeInterval(ttl time.Duration) time.Duration {
	if d := ttl / 4; d > minPurgeInterval {
		return d
	}
	return minPurgeInterval
}

// purgeSchedule decides when expired sessions are next removed: on the cron
// expression when one is set, otherwise every interval.
type purgeSchedule struct {
	expr  string
	every time.Duration
}

func newPurgeSchedule(expr string, ttl time.Duration) (purgeSchedule, error) {
	expr = strings.TrimSpace(expr)
	if g := gronx.New(); expr != "" && !g.IsValid(expr) {
		return purgeSchedule{}, fmt.Errorf("invalid store.purge_schedule %q", expr)
	}
	return purgeSchedule{expr: expr, every: purgeInterval(ttl)}, nil
}

func (s purgeSchedule) next(now time.Time) time.Duration {
	if s.expr == "" {
		return s.every
	}
	at, err := gronx.NextTickAfter(s.expr, now, false)
	if err != nil {
		logger.WarnCF("session", "Cron purge schedule failed, using interval", map[string]interface{}{
			"schedule": s.expr,
			"error":    err.Error(),
		})
		return s.every
	}
	if d := at.Sub(now); d > 0 {
		return d
	}
	return time.Second
}

func purgeExpired(ctx context.Context, store expiringStore, schedule purgeSchedule) {
	timer := time.NewTimer(schedule.next(time.Now()))
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			n, err := store.PurgeExpired(ctx)
			switch {
			case err != nil:
				if ctx.Err() == nil {
					logger.WarnCF("session", "Purging expired sessions failed", map[string]interface{}{"error": err.Error()})
				}
			case n > 0:
				logger.InfoCF("session", "Purged expired sessions", map[string]interface{}{"count": n})
			}
			timer.Reset(schedule.next(time.Now()))
		}
	}
}

// readDocument loads a PDF or text file into a builder input. PDFs whose text
// cannot be read are still returned so a model can read the bytes.
func readDocument(path string, maxPages int) (persona.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return persona.Input{}, fmt.Errorf("read %s: %w", path, err)
	}
	in := persona.Input{Kind: persona.KindDocument, Filename: filepath.Base(path)}

	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("%PDF-")) {
		in.Text = string(data)
		if strings.TrimSpace(in.Text) == "" {
			return persona.Input{}, fmt.Errorf("%s is empty", path)
		}
		return in, nil
	}

	in.PDF = data
	doc, err := pdftext.ExtractWithLimits(data, pdftext.Limits{MaxPages: maxPages})
	switch {
	case errors.Is(err, pdftext.ErrTooManyPages):
		return persona.Input{}, fmt.Errorf("%s: %w", path, err)
	case err != nil:
		logger.WarnCF("cli", "Could not extract text from PDF", map[string]interface{}{
			"file":  path,
			"error": err.Error(),
		})
	default:
		in.Text = doc.Text
		logger.DebugCF("cli", "Extracted PDF text", map[string]interface{}{
			"file":      path,
			"pages":     doc.Pages,
			"words":     doc.WordCount,
			"truncated": doc.Truncated,
		})
	}
	return in, nil
}

func analyze(cmd *cobra.Command, cfg *config.Config, path, text string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	in := persona.Input{Kind: persona.KindDocument, Text: text}
	if path != "" {
		in, err = readDocument(path, cfg.Server.MaxPDFPages)
		if err != nil {
			return err
		}
	}

	res, err := a.builder.Build(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("build persona: %w", err)
	}

	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "source: %s\n", res.Source)
	for _, reason := range res.Fallback {
		fmt.Fprintf(errOut, "fallback: %s\n", reason)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res.Persona)
}

type chatOptions struct {
	sample  string
	file    string
	message string
	local   bool
}

type chatSession struct {
	gen      *persona.Generator
	persona  *persona.Persona
	fullText string
	out      io.Writer
}

func (s *chatSession) send(ctx context.Context, message string) {
	reply := s.gen.Respond(ctx, persona.Request{
		Persona:  s.persona,
		Message:  message,
		FullText: s.fullText,
	})
	if strings.TrimSpace(reply.Response) == "" {
		reply.Response = persona.FallbackReply
	}
	logger.DebugCF("cli", "Chat reply", map[string]interface{}{
		"mode":    reply.Mode,
		"emotion": reply.Emotion,
	})
	fmt.Fprintf(s.out, "\n%s: %s\n\n", s.persona.Name, reply.Response)
}

func chat(cmd *cobra.Command, cfg *config.Config, opts chatOptions) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var (
		res      persona.Result
		fullText string
	)
	if opts.sample != "" {
		res, err = a.builder.Build(ctx, persona.Input{Kind: persona.KindSample, SampleID: opts.sample})
		if err != nil {
			return fmt.Errorf("sample %q (see `personagen samples`): %w", opts.sample, err)
		}
	} else {
		in, err := readDocument(opts.file, cfg.Server.MaxPDFPages)
		if err != nil {
			return err
		}
		res, err = a.builder.Build(ctx, in)
		if err != nil {
			return fmt.Errorf("build persona: %w", err)
		}
		fullText = in.Text
	}

	remote := a.remote
	if opts.local {
		remote = nil
	}
	p := res.Persona
	s := &chatSession{
		gen:      persona.NewGenerator(remote, a.jitter, cfg.HistoryLimit()),
		persona:  &p,
		fullText: fullText,
		out:      cmd.OutOrStdout(),
	}

	if strings.TrimSpace(opts.message) != "" {
		s.send(ctx, opts.message)
		return nil
	}

	fmt.Fprintf(s.out, "Chatting with %s (%s). Type exit to quit.\n\n", p.Name, p.Title)
	interactiveMode(ctx, s, cmd.InOrStdin())
	return nil
}

func interactiveMode(ctx context.Context, s *chatSession, in io.Reader) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "You: ",
		HistoryFile:     filepath.Join(os.TempDir(), ".personagen_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(s.out, "Error initializing readline: %v\n", err)
		fmt.Fprintln(s.out, "Falling back to simple input mode...")
		simpleInteractiveMode(ctx, s, in)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Fprintln(s.out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(s.out, "Error reading input: %v\n", err)
			continue
		}
		if !s.handleLine(ctx, line) {
			return
		}
	}
}

func simpleInteractiveMode(ctx context.Context, s *chatSession, in io.Reader) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(s.out, "You: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(s.out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(s.out, "Error reading input: %v\n", err)
			continue
		}
		if !s.handleLine(ctx, line) {
			return
		}
	}
}

// handleLine answers one line of input and reports whether to keep reading.
func (s *chatSession) handleLine(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}
	if input == "exit" || input == "quit" {
		fmt.Fprintln(s.out, "Goodbye!")
		return false
	}
	s.send(ctx, input)
	return true
}

func listSamples(out io.Writer) error {
	for _, id := range persona.SampleIDs() {
		p, err := persona.Sample(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-10s %s, %s\n", id, p.Name, p.Title)
	}
	return nil
}

func status(out io.Writer, path string) error {
	if strings.TrimSpace(path) == "" {
		path = getConfigPath()
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mark := func(p string) string {
		if _, err := os.Stat(p); err == nil {
			return "✓"
		}
		return "✗"
	}

	fmt.Fprintf(out, "%s Status\n", appName)
	fmt.Fprintf(out, "Version: %s\n", formatVersion())
	if build, _ := formatBuildInfo(); build != "" {
		fmt.Fprintf(out, "Build: %s\n", build)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Config:", path, mark(path))
	fmt.Fprintln(out, "Upload dir:", cfg.UploadDirPath(), mark(cfg.UploadDirPath()))
	switch strings.ToLower(strings.TrimSpace(cfg.Store.Driver)) {
	case session.DriverMemory:
		fmt.Fprintln(out, "Session store: memory")
	default:
		fmt.Fprintln(out, "Session store:", cfg.StorePath(), mark(cfg.StorePath()))
	}

	provider, configured, mode, err := providers.ProviderCredentialStatus(cfg)
	switch {
	case errors.Is(err, providers.ErrNotConfigured):
		fmt.Fprintln(out, "Provider: none (heuristics only)")
	case err != nil:
		fmt.Fprintln(out, "Provider:", err)
	default:
		state := "not set"
		if configured {
			state = "✓"
			if mode != "" {
				state += " (" + mode + ")"
			}
		}
		fmt.Fprintf(out, "Provider: %s %s\n", provider, state)
	}
	fmt.Fprintln(out, "Extractor:", cfg.Persona.Extractor)
	fmt.Fprintln(out, "Empty check:", cfg.Persona.EmptyCheck)
	if cfg.Speech.Enabled {
		fmt.Fprintf(out, "Speech: %s (%s)\n", cfg.Speech.Model, cfg.Speech.DefaultVoice)
	} else {
		fmt.Fprintln(out, "Speech: disabled")
	}
	fmt.Fprintln(out, "Relay address:", cfg.ListenAddr())
	return nil
}
