package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/loam"
)

// MotionMetadata is the frontmatter of a motion document.
//
//	---
//	topic: "Climate Policy: Carbon Tax vs. Cap-and-Trade vs. Direct Regulation"
//	stances: [carbon tax, cap-and-trade, direct regulation]
//	order: 3
//	---
//	Optional notes for the operator.
type MotionMetadata struct {
	Topic   string   `json:"topic" mapstructure:"topic"`
	Stances []string `json:"stances" mapstructure:"stances"`
	Order   int      `json:"order" mapstructure:"order"`
}

// LoadDir reads every motion document of a directory through loam, in read-only mode.
// Motions are sorted by their order field, then by document ID.
// A document without a topic uses its ID.
func LoadDir(ctx context.Context, dir string) ([]domain.Motion, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithVersioning(false),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	typedRepo := loam.NewTypedRepository[MotionMetadata](repo)
	docs, err := typedRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	type entry struct {
		id     string
		order  int
		motion domain.Motion
	}
	entries := make([]entry, 0, len(docs))
	for _, doc := range docs {
		topic := doc.Data.Topic
		if topic == "" {
			topic = strings.TrimSuffix(doc.ID, filepath.Ext(doc.ID))
		}
		entries = append(entries, entry{
			id:     doc.ID,
			order:  doc.Data.Order,
			motion: domain.Motion{Topic: topic, Stances: doc.Data.Stances},
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].order != entries[j].order {
			return entries[i].order < entries[j].order
		}
		return entries[i].id < entries[j].id
	})

	motions := make([]domain.Motion, len(entries))
	for i, e := range entries {
		motions[i] = e.motion
	}
	if err := validate(motions); err != nil {
		return nil, err
	}
	return motions, nil
}

// Load picks the right loader for path: a directory goes through loam,
// anything else is read as a catalogue file. An empty path yields the built-in motions.
func Load(ctx context.Context, path string) ([]domain.Motion, error) {
	if path == "" {
		return Builtin(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open motions catalogue: %w", err)
	}
	if info.IsDir() {
		return LoadDir(ctx, path)
	}
	return LoadFile(path)
}
