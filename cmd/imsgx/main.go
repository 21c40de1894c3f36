package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/nkowalski2/imsgx/internal/app"
	"github.com/nkowalski2/imsgx/internal/chatdb"
	"github.com/nkowalski2/imsgx/internal/config"
	"github.com/nkowalski2/imsgx/internal/vault"
)

func main() {
	var (
		configPath     = flag.String("config", "", "config file (default ~/.imsgx/config.toml)")
		dbPath         = flag.String("db", "", "chat.db file, Messages directory or iOS backup directory")
		out            = flag.String("out", "", "export directory")
		format         = flag.String("format", "", "output format: txt, html or sqlite")
		platformFlag   = flag.String("platform", "", "force source platform: macos or ios")
		start          = flag.String("start", "", "only messages on or after this date (YYYY-MM-DD)")
		end            = flag.String("end", "", "only messages on or before this date (YYYY-MM-DD)")
		copyMode       = flag.String("copy", "", "attachment copy mode: off, clone or full")
		attachmentRoot = flag.String("attachment-root", "", "attachment store location, for relocated stores")
		selfName       = flag.String("self", "", "display name for your own messages")
		conversation   = flag.String("conversation", "", "only conversations whose name or participants contain this")
		diagnostics    = flag.Bool("diagnostics", false, "print database health counts and exit")
		quiet          = flag.Bool("quiet", false, "suppress progress output")
		saveConfig     = flag.Bool("save-config", false, "write the resolved options to the config file and exit")
		search         = flag.String("search", "", "search a previously written sqlite archive and exit")
	)
	flag.Parse()

	// Flags beat environment and file values, but only the ones actually set.
	cfg := config.Resolve(*configPath)
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.SourcePath = *dbPath
		case "out":
			cfg.ExportPath = *out
		case "format":
			cfg.Format = *format
		case "platform":
			cfg.Platform = *platformFlag
		case "start":
			cfg.StartDate = *start
		case "end":
			cfg.EndDate = *end
		case "copy":
			cfg.CopyMode = *copyMode
		case "attachment-root":
			cfg.AttachmentRoot = *attachmentRoot
		case "self":
			cfg.SelfName = *selfName
		case "conversation":
			cfg.Conversation = *conversation
		case "diagnostics":
			cfg.Diagnostics = *diagnostics
		case "quiet":
			cfg.Quiet = *quiet
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *saveConfig {
		path := *configPath
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.Save(path, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", path)
		return
	}

	if cfg.Diagnostics {
		if err := runDiagnostics(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *search != "" {
		if err := runSearch(cfg, *search); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fxapp := fx.New(
		app.Module(app.Params{Config: cfg, RunID: uuid.NewString()}),
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err := fxapp.Start(startCtx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Wait receives both the run's own shutdown and Ctrl+C.
	sig := <-fxapp.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = fxapp.Stop(stopCtx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case sig.ExitCode != 0:
		os.Exit(sig.ExitCode)
	case sig.Signal != nil:
		os.Exit(1)
	}
}

func runDiagnostics(cfg *config.Config) error {
	src, err := app.ResolveSource(cfg)
	if err != nil {
		return err
	}
	db, err := chatdb.Open(src.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	d, err := db.Diagnostics()
	if err != nil {
		return err
	}
	f := db.Features()

	fmt.Printf("database:              %s\n", src.DBPath)
	fmt.Printf("platform:              %s\n", src.Platform)
	fmt.Printf("messages:              %d\n", d.Messages)
	fmt.Printf("chats:                 %d\n", d.Chats)
	fmt.Printf("handles:               %d\n", d.Handles)
	fmt.Printf("attachments:           %d (%d bytes)\n", d.Attachments, d.AttachmentBytes)
	fmt.Printf("messages w/o content:  %d\n", d.MessagesNoContent)
	fmt.Printf("attachments w/o file:  %d\n", d.AttachmentsNoFilename)
	fmt.Printf("dangling joins:        %d\n", d.DanglingAttachmentJoins)
	fmt.Printf("schema features:       threads=%v edits=%v unsends=%v\n",
		f.ThreadOriginator, f.DateEdited, f.DateRetracted)
	return nil
}

func runSearch(cfg *config.Config, query string) error {
	path := filepath.Join(cfg.ExportPath, app.VaultFile)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no archive at %s; run an export with -format sqlite first", path)
	}
	vdb, err := vault.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = vdb.Close() }()

	results, err := vdb.Search(query, 25)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, r := range results {
		ts := time.UnixMilli(r.SentAt).Format("2006-01-02 15:04")
		fmt.Printf("[%s] %s  %s: %s\n", r.ConversationName, ts, r.Sender, r.Snippet)
	}
	return nil
}
