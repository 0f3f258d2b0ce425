package auditor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/recordseal/recordseal-go/application"
	"github.com/recordseal/recordseal-go/crypto"
	"github.com/recordseal/recordseal-go/crypto/hasher"
	_ "github.com/recordseal/recordseal-go/crypto/hasher/blake3"
	_ "github.com/recordseal/recordseal-go/crypto/hasher/sha2"
	_ "github.com/recordseal/recordseal-go/crypto/hasher/sha3"
	"github.com/recordseal/recordseal-go/dataset"
	"github.com/recordseal/recordseal-go/merkletree"
	"github.com/recordseal/recordseal-go/record"
	"github.com/recordseal/recordseal-go/storage"
	"github.com/recordseal/recordseal-go/storage/filestore"
	"github.com/recordseal/recordseal-go/storage/kv"
	"github.com/recordseal/recordseal-go/storage/kv/leveldbkv"
	"github.com/recordseal/recordseal-go/storage/kv/snapshotkv"
)

// An Auditor seals datasets and checks them against their published
// apex snapshots. It is safe for sequential use by one process; the
// snapshot chain assumes a single publisher.
type Auditor struct {
	conf    *Config
	builder *merkletree.Builder
	store   storage.SnapshotStore
	logger  *application.Logger
	metrics *metrics
	now     func() time.Time
}

// New opens the snapshot store named by conf and returns an Auditor.
// A nil logger discards all logs.
func New(conf *Config, logger *application.Logger) (*Auditor, error) {
	h, err := hasher.Hasher(conf.Hasher)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	store, err := OpenStore(conf.Store)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = application.NopLogger()
	}
	return &Auditor{
		conf:    conf,
		builder: merkletree.NewBuilder(h, conf.IDField, conf.Workers),
		store:   store,
		logger:  logger,
		metrics: newMetrics(),
		now:     time.Now,
	}, nil
}

// OpenStore opens the snapshot store described by sc.
func OpenStore(sc *StoreConfig) (storage.SnapshotStore, error) {
	var db kv.DB
	var err error
	switch sc.Backend {
	case BackendFile:
		return filestore.Open(sc.Path)
	case BackendLevelDB:
		db, err = leveldbkv.OpenDB(sc.Path)
	case BackendMemory:
		db, err = leveldbkv.OpenMemDB()
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", ErrConfig, sc.Backend)
	}
	if err != nil {
		return nil, err
	}
	return snapshotkv.New(db), nil
}

// Close writes the metrics textfile, if one is configured, and closes
// the snapshot store.
func (a *Auditor) Close() error {
	var err error
	if a.conf.MetricsTextfile != "" {
		if err = a.WriteMetrics(a.conf.MetricsTextfile); err != nil {
			a.logger.Warn("writing metrics failed", "path", a.conf.MetricsTextfile, "error", err)
		}
	}
	if cerr := a.store.Close(); cerr != nil {
		return cerr
	}
	return err
}

// Store returns the snapshot store of a.
func (a *Auditor) Store() storage.SnapshotStore {
	return a.store
}

// Import reads up to limit raw records of name, normalizes them with
// schema and writes the processed dataset. A limit below 1 imports
// every record.
func (a *Auditor) Import(ctx context.Context, name string, limit int, schema dataset.Schema) (dataset.Stats, error) {
	if err := storage.CheckDataset(name); err != nil {
		return dataset.Stats{}, err
	}
	raw, err := dataset.ReadRaw(a.conf.DataDir, name, limit)
	if err != nil {
		return dataset.Stats{}, err
	}
	if err := ctx.Err(); err != nil {
		return dataset.Stats{}, err
	}
	if schema.IDField == "" {
		schema.IDField = a.conf.IDField
	}
	records, stats, err := schema.Normalize(raw)
	if err != nil {
		return dataset.Stats{}, err
	}
	if err := ctx.Err(); err != nil {
		return dataset.Stats{}, err
	}
	if err := dataset.Save(a.conf.DataDir, name, records); err != nil {
		return dataset.Stats{}, err
	}
	a.logger.Info("imported dataset",
		"dataset", name,
		"loaded", stats.TotalLoaded,
		"kept", stats.ValidRecords,
		"duplicates", stats.DuplicatesRemoved,
		"defaults_filled", stats.MissingFieldsHandled)
	return stats, nil
}

// Records loads the processed records of name.
func (a *Auditor) Records(ctx context.Context, name string) ([]record.Record, error) {
	if err := storage.CheckDataset(name); err != nil {
		return nil, err
	}
	records, err := dataset.Load(a.conf.DataDir, name)
	if err != nil {
		return nil, err
	}
	return records, ctx.Err()
}

// Build builds the tree of the processed records of name.
func (a *Auditor) Build(ctx context.Context, name string) (*merkletree.Tree, error) {
	records, err := a.Records(ctx, name)
	if err != nil {
		return nil, err
	}
	start := a.now()
	tree, err := a.builder.Build(records)
	if err != nil {
		a.logger.Error("build failed", "dataset", name, "error", err)
		return nil, err
	}
	elapsed := a.now().Sub(start)
	a.metrics.buildDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	a.metrics.buildRecords.WithLabelValues(name).Set(float64(tree.Len()))
	a.metrics.buildPeakBytes.WithLabelValues(name).Set(float64(tree.PeakMemory()))
	a.logger.Debug("built tree",
		"dataset", name,
		"records", tree.Len(),
		"height", tree.Height(),
		"vertices", tree.Vertices(),
		"peak_bytes", tree.PeakMemory(),
		"elapsed", elapsed)
	return tree, ctx.Err()
}

// A BuildReport describes a published build.
type BuildReport struct {
	Snapshot *merkletree.ApexSnapshot
	Leaves   int
	Height   int
	Vertices int
	// PeakMemory is the estimated peak working set of the build in bytes.
	PeakMemory uint64
}

// Publish builds the tree of name and stores its apex as the next
// snapshot version. Older versions are kept.
func (a *Auditor) Publish(ctx context.Context, name string) (*BuildReport, error) {
	tree, err := a.Build(ctx, name)
	if err != nil {
		return nil, err
	}
	prev, err := a.store.Latest(name)
	if err != nil && !errors.Is(err, storage.ErrNoSnapshot) {
		return nil, err
	}
	snapshot, err := merkletree.NewApexSnapshot(tree, name, prev, a.now())
	if err != nil {
		return nil, err
	}
	if sk := a.conf.SigningKey(); sk != nil {
		if err := snapshot.Sign(sk); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := a.store.Save(snapshot); err != nil {
		return nil, err
	}
	a.metrics.published.WithLabelValues(name).Inc()
	a.logger.Info("published snapshot",
		"dataset", name,
		"version", snapshot.Version,
		"apex", snapshot.RootHash,
		"records", snapshot.RecordCount,
		"signed", snapshot.Signature != "")
	return &BuildReport{
		Snapshot:   snapshot,
		Leaves:     tree.Len(),
		Height:     tree.Height(),
		Vertices:   tree.Vertices(),
		PeakMemory: tree.PeakMemory(),
	}, nil
}

// A CheckReport compares the latest snapshot of a dataset with a
// rebuild of its current records.
type CheckReport struct {
	Dataset      string
	Version      uint64
	StoredApex   string
	CurrentApex  string
	StoredCount  int
	CurrentCount int
	Result       merkletree.Result
}

// Check rebuilds name and compares its apex with the latest snapshot.
// A differing apex is reported in the result, not as an error.
func (a *Auditor) Check(ctx context.Context, name string) (*CheckReport, error) {
	snapshot, err := a.store.Latest(name)
	if err != nil {
		return nil, err
	}
	tree, err := a.treeFor(ctx, name, snapshot)
	if err != nil {
		return nil, err
	}
	report := &CheckReport{
		Dataset:      name,
		Version:      snapshot.Version,
		StoredApex:   snapshot.RootHash,
		CurrentApex:  tree.Apex(),
		StoredCount:  snapshot.RecordCount,
		CurrentCount: tree.Len(),
		Result:       merkletree.Detect(snapshot.RootHash, tree.Apex()),
	}
	a.metrics.checks.WithLabelValues(name, report.Result.String()).Inc()
	if report.Result == merkletree.Match {
		a.metrics.integrity.WithLabelValues(name).Set(1)
		a.logger.Info("integrity verified", "dataset", name, "version", snapshot.Version)
	} else {
		a.metrics.integrity.WithLabelValues(name).Set(0)
		a.logger.Warn("integrity mismatch",
			"dataset", name,
			"version", snapshot.Version,
			"stored", report.StoredApex,
			"current", report.CurrentApex,
			"stored_count", report.StoredCount,
			"current_count", report.CurrentCount)
	}
	return report, nil
}

// treeFor rebuilds name with the hasher snapshot was built with, so
// that a later change of the configured hasher does not read as
// tampering.
func (a *Auditor) treeFor(ctx context.Context, name string, snapshot *merkletree.ApexSnapshot) (*merkletree.Tree, error) {
	if snapshot.Hasher == a.builder.Hasher.ID() {
		return a.Build(ctx, name)
	}
	h, err := hasher.Hasher(snapshot.Hasher)
	if err != nil {
		return nil, err
	}
	records, err := a.Records(ctx, name)
	if err != nil {
		return nil, err
	}
	return merkletree.NewBuilder(h, a.builder.IDField, a.builder.Workers).Build(records)
}

// A Proof is an exported authentication path of one record, together
// with everything needed to verify it without the dataset.
type Proof struct {
	Dataset    string                         `json:"dataset"`
	Version    uint64                         `json:"version"`
	Apex       string                         `json:"apex"`
	LeafDigest string                         `json:"leaf_digest"`
	Path       *merkletree.AuthenticationPath `json:"path"`
}

// ErrNoTrustedApex indicates that a proof was to be verified without an
// apex to verify it against.
var ErrNoTrustedApex = errors.New("[auditor] No trusted apex to verify against")

// Verify checks that p leads to apex. The Apex recorded in p itself is
// never trusted; apex must come from a published snapshot or from the
// caller.
func (p *Proof) Verify(apex string) error {
	if apex == "" {
		return ErrNoTrustedApex
	}
	if p.Path == nil {
		return merkletree.ErrMalformedPath
	}
	leaf, err := crypto.FromHex(p.LeafDigest)
	if err != nil {
		return fmt.Errorf("leaf digest: %w", err)
	}
	expected, err := crypto.FromHex(apex)
	if err != nil {
		return fmt.Errorf("apex: %w", err)
	}
	return p.Path.Verify(leaf, expected)
}

// VerifyProof checks p against the apex of the snapshot it names in the
// snapshot store of a, and returns that snapshot.
func (a *Auditor) VerifyProof(ctx context.Context, p *Proof) (*merkletree.ApexSnapshot, error) {
	if p.Path == nil {
		return nil, merkletree.ErrMalformedPath
	}
	snapshot, err := a.store.Load(p.Dataset, p.Version)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if snapshot.Hasher != p.Path.HasherID {
		return snapshot, fmt.Errorf("%w: path hasher %s, snapshot hasher %s",
			merkletree.ErrPathMismatch, p.Path.HasherID, snapshot.Hasher)
	}
	return snapshot, p.Verify(snapshot.RootHash)
}

// A LocateReport is the outcome of locating a record.
type LocateReport struct {
	Record record.Record
	Proof  *Proof
	// CurrentApex is the apex of the dataset as it is now.
	CurrentApex string
	// Verified tells whether the path leads to the stored apex.
	Verified bool
}

// Locate finds recordID in the current records of name, produces its
// authentication path, and verifies the path against the apex of the
// latest snapshot.
func (a *Auditor) Locate(ctx context.Context, name, recordID string) (*LocateReport, error) {
	snapshot, err := a.store.Latest(name)
	if err != nil {
		return nil, err
	}
	records, err := a.Records(ctx, name)
	if err != nil {
		return nil, err
	}
	h, err := hasher.Hasher(snapshot.Hasher)
	if err != nil {
		return nil, err
	}
	tree, err := merkletree.NewBuilder(h, a.builder.IDField, a.builder.Workers).Build(records)
	if err != nil {
		return nil, err
	}
	path, err := tree.LocatePath(recordID)
	if err != nil {
		return nil, err
	}
	leaf, err := tree.TerminalDigest(path.LeafIndex)
	if err != nil {
		return nil, err
	}
	report := &LocateReport{
		Record: records[path.LeafIndex],
		Proof: &Proof{
			Dataset:    name,
			Version:    snapshot.Version,
			Apex:       snapshot.RootHash,
			LeafDigest: crypto.ToHex(leaf),
			Path:       path,
		},
		CurrentApex: tree.Apex(),
	}
	report.Verified = report.Proof.Verify(snapshot.RootHash) == nil
	a.logger.Info("located record",
		"dataset", name,
		"record", recordID,
		"index", path.LeafIndex,
		"steps", path.Len(),
		"verified", report.Verified)
	return report, nil
}

// A HistoryReport lists the snapshot chain of a dataset.
type HistoryReport struct {
	Snapshots []*merkletree.ApexSnapshot
	// Err is the first chain or signature failure, or nil.
	Err error
}

// History loads all snapshots of name and audits their hash chain and,
// if a public key is configured, their signatures.
func (a *Auditor) History(ctx context.Context, name string) (*HistoryReport, error) {
	snapshots, err := a.store.List(name)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("%w: %s", storage.ErrNoSnapshot, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report := &HistoryReport{Snapshots: snapshots}
	h, err := merkletree.LoadHistory(name, snapshots)
	if err == nil {
		if pk := a.conf.SigningPubKey(); pk != nil {
			err = h.Verify(pk)
		}
	}
	report.Err = err
	if err != nil {
		a.logger.Warn("history audit failed", "dataset", name, "error", err)
	}
	return report, nil
}
