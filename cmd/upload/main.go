package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"doc-intelligence-be/internal/config"
	"doc-intelligence-be/pkg/tracker"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// consoleNotifier prints failures in red.
type consoleNotifier struct{}

func (consoleNotifier) Notify(message string) {
	color.Red("! %s", message)
}

// consoleNavigator stands in for the web app's redirect to the document view.
type consoleNavigator struct {
	done chan struct{}
}

func (n *consoleNavigator) NavigateToDocument(documentID string) {
	color.Green("-> opening document %s", documentID)
	close(n.done)
}

// simulatedUploader fakes the transfer for --simulate runs.
type simulatedUploader struct{}

func (simulatedUploader) Upload(ctx context.Context, file tracker.File, onProgress func(int)) (string, error) {
	for p := 0; p <= 100; p += 25 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
		if onProgress != nil {
			onProgress(p)
		}
	}
	return uuid.New().String(), nil
}

func main() {
	filePath := flag.String("file", "", "path to the PDF to upload")
	simulate := flag.Bool("simulate", false, "run against a simulated backend")
	serverURL := flag.String("server", "", "backend base URL (overrides CLIENT_SERVER_URL)")
	token := flag.String("token", "", "bearer token (overrides CLIENT_TOKEN)")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("usage: upload -file <document.pdf> [-simulate]")
	}

	cfg := config.Load()
	if *serverURL == "" {
		*serverURL = cfg.Client.ServerURL
	}
	if *token == "" {
		*token = cfg.Client.Token
	}

	navigator := &consoleNavigator{done: make(chan struct{})}

	var uploader tracker.Uploader
	if *simulate {
		uploader = simulatedUploader{}
	} else {
		uploader = tracker.NewHTTPUploader(*serverURL, *token)
	}

	t := tracker.NewTracker(uploader, consoleNotifier{}, navigator)
	t.SelectFile(tracker.File{
		Name:     filepath.Base(*filePath),
		MimeType: "application/pdf",
		Path:     *filePath,
	})

	if len(t.Selected()) == 0 {
		log.Fatal("file rejected: only application/pdf is supported")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	fmt.Printf("Uploading %s...\n", *filePath)
	documentID, err := t.StartUpload(ctx)
	if err != nil {
		os.Exit(1)
	}
	color.Cyan("document_id: %s", documentID)

	var source tracker.StatusSource
	if *simulate || cfg.Client.StatusSource == "simulated" {
		source = tracker.NewSimulatedSource(documentID, 500*time.Millisecond)
	} else {
		source, err = tracker.NewWebsocketSource(*serverURL, uuid.New().String())
		if err != nil {
			log.Fatalf("status source: %v", err)
		}
	}

	go func() {
		if err := source.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("status source stopped: %v", err)
		}
	}()
	t.Listen(ctx, source)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	var lastStatus tracker.Status
	var lastProgress int
	for {
		select {
		case <-navigator.done:
			return
		case <-ctx.Done():
			color.Red("timed out waiting for processing to finish")
			os.Exit(1)
		case <-ticker.C:
			_, status, progress := t.State()
			if status != lastStatus || progress != lastProgress {
				fmt.Printf("  %-12s %3d%%\n", status, progress)
				lastStatus, lastProgress = status, progress
			}
			if status == tracker.StatusFailed {
				os.Exit(1)
			}
		}
	}
}
