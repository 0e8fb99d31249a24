package persistence

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cmhash/blobstore"
	"github.com/hupe1980/cmhash/codec"
	"github.com/hupe1980/cmhash/hashcode"
	"github.com/hupe1980/cmhash/labels"
)

const (
	checkpointDir    = "checkpoints"
	checkpointSuffix = "_checkpoint.ckpt"
	datasetDir       = "dataset"
)

// Artifact names inside dataset/<run>/.
const (
	S1CodesFile = "generatedS1Codes.arr"
	S2CodesFile = "generatedS2Codes.arr"
	LabelsFile  = "trainedLabels.arr"
	S1NamesFile = "trainedS1Names.str"
	S2NamesFile = "trainedS2Names.str"
)

// ErrInconsistentSnapshot is returned when the artifacts of a snapshot do
// not describe the same number of items.
var ErrInconsistentSnapshot = errors.New("inconsistent snapshot")

// Snapshot is everything persisted for the best epoch of a run.
type Snapshot struct {
	Checkpoint Checkpoint
	S1Codes    []hashcode.Code
	S2Codes    []hashcode.Code
	Labels     []labels.Set
	S1Names    []string
	S2Names    []string
}

// Len returns the number of retrieval items in the snapshot.
func (s *Snapshot) Len() int { return len(s.S1Codes) }

// Validate checks that all per-item artifacts have the same length.
func (s *Snapshot) Validate() error {
	n := len(s.S1Codes)
	for name, m := range map[string]int{
		"S2 codes": len(s.S2Codes),
		"labels":   len(s.Labels),
		"S1 names": len(s.S1Names),
		"S2 names": len(s.S2Names),
	} {
		if m != n {
			return fmt.Errorf("%w: %d S1 codes but %d %s", ErrInconsistentSnapshot, n, m, name)
		}
	}
	return nil
}

// CheckpointPath returns the blob name of the checkpoint of run.
func CheckpointPath(run string) string {
	return path.Join(checkpointDir, run+checkpointSuffix)
}

// DatasetPath returns the blob name of a dataset artifact of run.
func DatasetPath(run, file string) string {
	return path.Join(datasetDir, run, file)
}

// SnapshotterOptions configures a Snapshotter.
type SnapshotterOptions struct {
	// Codec encodes the checkpoint. Default: codec.Default.
	Codec codec.Codec
	// Compression is applied to code arrays and names. Default: LZ4.
	Compression Compression
}

// Snapshotter saves and loads run snapshots through a blob store.
type Snapshotter struct {
	store blobstore.BlobStore
	opts  SnapshotterOptions
}

// NewSnapshotter creates a Snapshotter writing to store.
func NewSnapshotter(store blobstore.BlobStore, optFns ...func(*SnapshotterOptions)) *Snapshotter {
	opts := SnapshotterOptions{
		Codec:       codec.Default,
		Compression: CompressionLZ4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Snapshotter{store: store, opts: opts}
}

// Store returns the underlying blob store.
func (s *Snapshotter) Store() blobstore.BlobStore { return s.store }

// Save writes all artifacts of snap under the run name recorded in its checkpoint.
// Artifacts are uploaded concurrently.
func (s *Snapshotter) Save(ctx context.Context, snap Snapshot) error {
	run := snap.Checkpoint.Run
	if run == "" {
		return errors.New("persistence: snapshot without run name")
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	type artifact struct {
		name   string
		encode func() ([]byte, error)
	}
	c := s.opts.Compression
	artifacts := []artifact{
		{CheckpointPath(run), func() ([]byte, error) { return EncodeCheckpoint(snap.Checkpoint, s.opts.Codec) }},
		{DatasetPath(run, S1CodesFile), func() ([]byte, error) { return EncodeCodes(snap.S1Codes, c) }},
		{DatasetPath(run, S2CodesFile), func() ([]byte, error) { return EncodeCodes(snap.S2Codes, c) }},
		{DatasetPath(run, LabelsFile), func() ([]byte, error) { return EncodeLabels(snap.Labels, c) }},
		{DatasetPath(run, S1NamesFile), func() ([]byte, error) { return EncodeStrings(snap.S1Names, c) }},
		{DatasetPath(run, S2NamesFile), func() ([]byte, error) { return EncodeStrings(snap.S2Names, c) }},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, a := range artifacts {
		g.Go(func() error {
			data, err := a.encode()
			if err != nil {
				return fmt.Errorf("encode %s: %w", a.name, err)
			}
			if err := s.store.Put(ctx, a.name, data); err != nil {
				return fmt.Errorf("put %s: %w", a.name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Load reads the snapshot of run.
func (s *Snapshotter) Load(ctx context.Context, run string) (Snapshot, error) {
	var snap Snapshot

	read := func(name string, decode func([]byte) error) error {
		data, err := blobstore.ReadAll(ctx, s.store, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := decode(data); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		return nil
	}

	steps := []struct {
		name   string
		decode func([]byte) error
	}{
		{CheckpointPath(run), func(b []byte) (err error) { snap.Checkpoint, err = DecodeCheckpoint(b); return }},
		{DatasetPath(run, S1CodesFile), func(b []byte) (err error) { snap.S1Codes, err = DecodeCodes(b); return }},
		{DatasetPath(run, S2CodesFile), func(b []byte) (err error) { snap.S2Codes, err = DecodeCodes(b); return }},
		{DatasetPath(run, LabelsFile), func(b []byte) (err error) { snap.Labels, err = DecodeLabels(b); return }},
		{DatasetPath(run, S1NamesFile), func(b []byte) (err error) { snap.S1Names, err = DecodeStrings(b); return }},
		{DatasetPath(run, S2NamesFile), func(b []byte) (err error) { snap.S2Names, err = DecodeStrings(b); return }},
	}
	for _, st := range steps {
		if err := read(st.name, st.decode); err != nil {
			return Snapshot{}, err
		}
	}

	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// LoadCheckpoint reads only the checkpoint of run.
func (s *Snapshotter) LoadCheckpoint(ctx context.Context, run string) (Checkpoint, error) {
	data, err := blobstore.ReadAll(ctx, s.store, CheckpointPath(run))
	if err != nil {
		return Checkpoint{}, err
	}
	return DecodeCheckpoint(data)
}

// Runs lists the run names that have a checkpoint, sorted.
func (s *Snapshotter) Runs(ctx context.Context) ([]string, error) {
	names, err := s.store.List(ctx, checkpointDir+"/")
	if err != nil {
		return nil, err
	}
	var runs []string
	for _, name := range names {
		base := path.Base(name)
		if run, ok := strings.CutSuffix(base, checkpointSuffix); ok {
			runs = append(runs, run)
		}
	}
	sort.Strings(runs)
	return runs, nil
}

// Delete removes every artifact of run.
func (s *Snapshotter) Delete(ctx context.Context, run string) error {
	names := []string{CheckpointPath(run)}
	for _, f := range []string{S1CodesFile, S2CodesFile, LabelsFile, S1NamesFile, S2NamesFile} {
		names = append(names, DatasetPath(run, f))
	}
	for _, name := range names {
		if err := s.store.Delete(ctx, name); err != nil {
			return fmt.Errorf("delete %s: %w", name, err)
		}
	}
	return nil
}
