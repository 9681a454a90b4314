package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/izu-labs/izuchat/internal/adapters/driving/httpapi"
	"github.com/izu-labs/izuchat/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat API over HTTP",
	Long: `Loads the corpus and index, then serves POST /chat plus health and
stats endpoints until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	sys, err := buildSystem()
	if err != nil {
		return err
	}
	defer sys.close()

	addr := serveAddr
	if addr == "" {
		addr = sys.cfg.Server.Addr
	}

	server := httpapi.NewServer(addr, sys.pipeline, sys.systemInfo())

	watcher := watchArtifacts(sys.cfg.Corpus.ChunksPath, sys.cfg.Corpus.IndexPath)
	if watcher != nil {
		defer watcher.Close()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	cmd.Printf("Serving on %s (%d passages loaded)\n", addr, sys.corpus.Len())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		cmd.Printf("Received %s, shutting down\n", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// watchArtifacts warns when the corpus or index file changes on disk.
// The server keeps serving the in-memory copies; corpus and index must
// stay aligned, so a reload only happens on restart.
func watchArtifacts(paths ...string) *fsnotify.Watcher {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("File watching unavailable: %v", err)
		return nil
	}

	watched := make(map[string]bool, len(paths))
	for _, p := range paths {
		watched[filepath.Clean(p)] = true
		// Watch the directory: editors and build steps replace files
		// rather than writing in place.
		if err := watcher.Add(filepath.Dir(p)); err != nil {
			logger.Warn("Cannot watch %s: %v", p, err)
		}
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !watched[filepath.Clean(event.Name)] {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					logger.Warn("%s changed on disk; restart the server to reload", event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("File watcher error: %v", err)
			}
		}
	}()

	return watcher
}
