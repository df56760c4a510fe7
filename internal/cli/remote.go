package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/pkg/api"
	"github.com/yaklabco/mdnote/pkg/autosave"
	"github.com/yaklabco/mdnote/pkg/config"
	"github.com/yaklabco/mdnote/pkg/fsutil"
	"github.com/yaklabco/mdnote/pkg/session"
)

// ErrNoServer is returned when a remote command has no api.base_url.
var ErrNoServer = errors.New("no document server configured; set api.base_url or MDNOTE_API_BASE_URL")

// remoteFlags override the api section for one invocation.
type remoteFlags struct {
	server string
	token  string
}

func (f *remoteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.server, "server", "", "document server base URL")
	cmd.Flags().StringVar(&f.token, "token", "", "bearer token for the document server")
}

func (f *remoteFlags) overrides() *config.Config {
	return &config.Config{API: config.APIConfig{BaseURL: f.server, Token: f.token}}
}

func newPullCommand(global *globalFlags) *cobra.Command {
	flags := &remoteFlags{}
	var ignoreDraft bool

	cmd := &cobra.Command{
		Use:   "pull ID [FILE]",
		Short: "Fetch a note from the document server",
		Long: `Fetch a note and write its content to FILE, or to stdout. A local draft
that is newer than the server copy and differs from it is used instead,
the same way the editor restores unsaved work.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 2 {
				target = args[1]
			}
			return runPull(cmd, global, flags, args[0], target, ignoreDraft)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&ignoreDraft, "ignore-draft", false, "always use the server copy")

	return cmd
}

func runPull(cmd *cobra.Command, global *globalFlags, flags *remoteFlags, id, target string, ignoreDraft bool) error {
	loaded, err := loadConfig(cmd, global, flags.overrides())
	if err != nil {
		return err
	}
	cfg := loaded.Config
	ctx := logging.WithDocument(commandContext(cmd), id)
	logger := logging.FromContext(ctx)

	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}
	doc, err := client.GetDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("pull %s: %w", id, err)
	}

	content := doc.Content
	if !ignoreDraft {
		store, closeStore, err := openDraftStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		draft, err := store.Load(ctx, id)
		if err != nil {
			logger.Warn("draft unreadable; using server copy", logging.FieldError, err)
		}
		var restored bool
		content, restored = autosave.Reconcile(autosave.LoadedDocument{
			Content:   doc.Content,
			UpdatedAt: doc.UpdatedAt,
		}, draft)
		if restored {
			logger.Info("using local draft newer than the server copy", logging.FieldRestored, true)
		}
	}

	if target == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	if err := fsutil.WriteAtomic(ctx, target, []byte(content), 0); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	logger.Info("pulled", logging.FieldTitle, doc.Title, logging.FieldOutput, target)
	return nil
}

func newPushCommand(global *globalFlags) *cobra.Command {
	flags := &remoteFlags{}

	cmd := &cobra.Command{
		Use:   "push ID FILE",
		Short: "Save a note to the document server",
		Long: `Save FILE as the content of note ID. The title is taken from the first
heading, or the first non-empty line. The note keeps its tags. A failed
save leaves the content in the local draft store so a later pull
restores it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPush(cmd, global, flags, args[0], args[1])
		},
	}

	flags.register(cmd)

	return cmd
}

func runPush(cmd *cobra.Command, global *globalFlags, flags *remoteFlags, id, path string) error {
	loaded, err := loadConfig(cmd, global, flags.overrides())
	if err != nil {
		return err
	}
	cfg := loaded.Config
	ctx := logging.WithDocument(commandContext(cmd), id)
	logger := logging.FromContext(ctx)

	content, err := readSource(cmd, path)
	if err != nil {
		return err
	}
	title := session.DeriveTitle(content)
	if title == "" {
		return &session.ValidationError{Field: "title", Reason: "the note has no heading or text"}
	}

	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}
	store, closeStore, err := openDraftStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	current, err := client.GetDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("push %s: %w", id, err)
	}

	saved, err := client.SaveDocument(ctx, id, api.SaveRequest{
		Title:   title,
		Content: content,
		TagIDs:  current.TagIDs,
	})
	if err != nil {
		draft := autosave.Draft{Content: content, UpdatedAt: time.Now()}
		if draftErr := store.Save(ctx, id, draft); draftErr != nil {
			logger.Warn("could not keep a local draft", logging.FieldError, draftErr)
		}
		return fmt.Errorf("push %s: %w", id, err)
	}

	if err := store.Delete(ctx, id); err != nil {
		logger.Warn("could not clear local draft", logging.FieldError, err)
	}
	logger.Info("pushed", logging.FieldTitle, saved.Title, logging.FieldInput, path)
	return nil
}

func newAPIClient(cfg *config.Config) (*api.Client, error) {
	if cfg.API.BaseURL == "" {
		return nil, ErrNoServer
	}

	client, err := api.New(cfg.API.BaseURL,
		api.WithToken(cfg.API.Token),
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logging.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}
	return client, nil
}

// openDraftStore opens the configured draft store. The returned func
// releases it.
func openDraftStore(ctx context.Context, cfg *config.Config) (autosave.DraftStore, func(), error) {
	path := cfg.DraftsPath()

	switch cfg.Drafts.Store {
	case config.DraftStoreMemory:
		return autosave.NewMemoryStore(), func() {}, nil

	case config.DraftStoreSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create draft dir: %w", err)
		}
		store, err := autosave.OpenSQLiteStore(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	default:
		return autosave.NewFileStore(path), func() {}, nil
	}
}
