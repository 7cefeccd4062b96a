// Command regctl registers a trained model artifact in the run registry.
//
// The training collaborator produces an artifact JSON; regctl validates that
// the artifact actually loads, then stores its location under a run ID so the
// server can find it at startup:
//
//	regctl -registry runs.db -artifact model.json -name FailurePredictor -version 1
//
// When -run-id is omitted a fresh identifier is minted and printed.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/failsense/failsense/server/internal/model"
	"github.com/failsense/failsense/server/internal/registry"
)

func main() {
	registryPath := flag.String("registry", "runs.db", "path to the run registry file")
	runID := flag.String("run-id", "", "run identifier (minted if empty)")
	artifactPath := flag.String("artifact", "", "path to the trained model artifact JSON")
	name := flag.String("name", "FailurePredictor", "model name")
	version := flag.String("version", "1", "model version")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if *artifactPath == "" {
		slog.Error("-artifact is required")
		os.Exit(1)
	}

	// Validate the artifact before registering — a registry entry pointing
	// at a broken file would silently degrade the server to the synthetic
	// fallback.
	tm, err := model.LoadArtifact(*artifactPath)
	if err != nil {
		slog.Error("artifact does not load", "path", *artifactPath, "err", err)
		os.Exit(1)
	}

	abs, err := filepath.Abs(*artifactPath)
	if err != nil {
		slog.Error("resolve artifact path", "err", err)
		os.Exit(1)
	}

	id := *runID
	if id == "" {
		id = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	reg, err := registry.Open(*registryPath)
	if err != nil {
		slog.Error("open registry", "err", err)
		os.Exit(1)
	}
	defer reg.Close()

	rec := &registry.RunRecord{
		RunID:        id,
		Name:         *name,
		Version:      *version,
		ArtifactPath: abs,
		RegisteredAt: time.Now().UTC(),
	}
	if err := reg.Register(rec); err != nil {
		slog.Error("register run", "err", err)
		os.Exit(1)
	}

	slog.Info("run registered",
		"run_id", id,
		"model", tm.Name(),
		"artifact", abs,
	)
	fmt.Println(id)
}
