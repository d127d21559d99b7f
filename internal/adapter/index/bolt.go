package index

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"leximini/internal/domain"
	"leximini/internal/port"
)

var (
	bucketEntries  = []byte("entries")
	bucketManifest = []byte("manifest")
	keyManifest    = []byte("manifest")
)

var (
	// ErrNoIndex means the index file does not exist. Callers are expected
	// to tell the user to run ingestion, not to fall back to an empty index.
	ErrNoIndex = errors.New("no index found")

	// ErrManifestMismatch means the configured embedder does not match the
	// one the index was built with.
	ErrManifestMismatch = errors.New("index was built with a different embedding model")
)

// BoltIndex is a single-file vector index backed by BoltDB. Entries are keyed
// by insertion sequence, which makes iteration order (and tie-breaking) the
// order in which passages were added. Search is brute-force cosine over an
// in-memory copy of the entries.
type BoltIndex struct {
	db       *bbolt.DB
	manifest domain.Manifest
	mu       sync.RWMutex
	entries  []entry
}

type entry struct {
	seq     uint64
	vector  []float32
	passage domain.Passage
}

type storedEntry struct {
	Vector  []float32   `json:"v"`
	Passage passageMeta `json:"p"`
}

type passageMeta struct {
	ID     string `json:"id"`
	DocID  string `json:"doc_id"`
	Source string `json:"source"`
	Seq    int    `json:"seq"`
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

// Create builds a fresh index file at path, truncating any existing one, and
// records the manifest describing the embedder used for this run.
func Create(path string, manifest domain.Manifest) (*BoltIndex, error) {
	if manifest.Dimension <= 0 {
		return nil, fmt.Errorf("manifest dimension must be positive, got %d", manifest.Dimension)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove existing index: %w", err)
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create index file: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketEntries, bucketManifest} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return writeManifest(tx, manifest)
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltIndex{db: db, manifest: manifest}, nil
}

// StagedIndex is an index under construction in a staging file. The previous
// index at the final path stays intact until Commit; a failed build is
// discarded without touching it.
type StagedIndex struct {
	*BoltIndex
	finalPath string
	stagePath string
}

// CreateStaged builds a fresh index in a staging file next to path. Commit
// atomically replaces the index at path; Discard removes the staging file.
func CreateStaged(path string, manifest domain.Manifest) (*StagedIndex, error) {
	stagePath := path + ".tmp"
	idx, err := Create(stagePath, manifest)
	if err != nil {
		return nil, err
	}
	return &StagedIndex{BoltIndex: idx, finalPath: path, stagePath: stagePath}, nil
}

// Commit closes the staging file and moves it over the final path.
func (s *StagedIndex) Commit() error {
	if err := s.BoltIndex.Close(); err != nil {
		return fmt.Errorf("failed to close staged index: %w", err)
	}
	if err := os.Rename(s.stagePath, s.finalPath); err != nil {
		return fmt.Errorf("failed to move index into place: %w", err)
	}
	return nil
}

// Discard closes and removes the staging file, leaving any previous index
// at the final path untouched.
func (s *StagedIndex) Discard() error {
	err := s.BoltIndex.Close()
	if rmErr := os.Remove(s.stagePath); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}

// Open loads an existing index file. A missing file is an explicit ErrNoIndex,
// never a silently empty index.
func Open(path string) (*BoltIndex, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %q", ErrNoIndex, path)
		}
		return nil, fmt.Errorf("failed to stat index file: %w", err)
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}

	idx := &BoltIndex{db: db}

	err = db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket(bucketManifest)
		if mb == nil {
			return fmt.Errorf("index file %q has no manifest; rebuild with ingest", path)
		}
		data := mb.Get(keyManifest)
		if data == nil {
			return fmt.Errorf("index file %q has no manifest; rebuild with ingest", path)
		}
		if err := json.Unmarshal(data, &idx.manifest); err != nil {
			return fmt.Errorf("failed to parse index manifest: %w", err)
		}

		eb := tx.Bucket(bucketEntries)
		if eb == nil {
			return nil
		}
		return eb.ForEach(func(k, v []byte) error {
			var stored storedEntry
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("corrupt index entry: %w", err)
			}
			idx.entries = append(idx.entries, entry{
				seq:     binary.BigEndian.Uint64(k),
				vector:  stored.Vector,
				passage: stored.Passage.toDomain(),
			})
			return nil
		})
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return idx, nil
}

// Validate checks the configured embedder against the index manifest.
func (x *BoltIndex) Validate(model string, dimension int) error {
	if x.manifest.Model != model || x.manifest.Dimension != dimension {
		return fmt.Errorf("%w: index has %s/%d, configured %s/%d",
			ErrManifestMismatch, x.manifest.Model, x.manifest.Dimension, model, dimension)
	}
	return nil
}

// Add appends (vector, passage) entries in order. The in-memory state is
// updated only after the transaction commits, so a rolled-back batch leaves
// the index exactly as it was.
func (x *BoltIndex) Add(items []port.IndexEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	staged := make([]entry, 0, len(items))
	manifest := x.manifest

	err := x.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if b == nil {
			return fmt.Errorf("entries bucket not found")
		}

		for _, item := range items {
			if len(item.Vector) != x.manifest.Dimension {
				return fmt.Errorf("vector dimension mismatch: expected %d, got %d",
					x.manifest.Dimension, len(item.Vector))
			}

			seq, err := b.NextSequence()
			if err != nil {
				return err
			}

			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)

			data, err := json.Marshal(storedEntry{
				Vector:  item.Vector,
				Passage: toMeta(item.Passage),
			})
			if err != nil {
				return err
			}

			if err := b.Put(key, data); err != nil {
				return err
			}

			staged = append(staged, entry{
				seq:     seq,
				vector:  item.Vector,
				passage: item.Passage,
			})
		}

		manifest.Entries = len(x.entries) + len(staged)
		return writeManifest(tx, manifest)
	})
	if err != nil {
		return err
	}

	x.entries = append(x.entries, staged...)
	x.manifest = manifest
	return nil
}

// Search returns up to k passages ordered by descending cosine similarity.
// Equal scores order by insertion sequence: first added wins.
func (x *BoltIndex) Search(query []float32, k int) ([]domain.ScoredPassage, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(query) != x.manifest.Dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d",
			x.manifest.Dimension, len(query))
	}
	if len(x.entries) == 0 || k <= 0 {
		return nil, nil
	}

	type scored struct {
		seq     uint64
		score   float64
		passage domain.Passage
	}

	scores := make([]scored, 0, len(x.entries))
	for _, e := range x.entries {
		scores = append(scores, scored{
			seq:     e.seq,
			score:   cosineSimilarity(query, e.vector),
			passage: e.passage,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].seq < scores[j].seq
	})

	if k > len(scores) {
		k = len(scores)
	}

	results := make([]domain.ScoredPassage, k)
	for i := 0; i < k; i++ {
		results[i] = domain.ScoredPassage{
			Passage: scores[i].passage,
			Score:   scores[i].score,
		}
	}

	return results, nil
}

// SetDocuments records the number of source documents in the manifest.
func (x *BoltIndex) SetDocuments(n int) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.manifest.Documents = n
	return x.db.Update(func(tx *bbolt.Tx) error {
		return writeManifest(tx, x.manifest)
	})
}

// Manifest returns the manifest the index was built with.
func (x *BoltIndex) Manifest() domain.Manifest {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.manifest
}

// Count returns the number of entries in the index.
func (x *BoltIndex) Count() (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries), nil
}

func (x *BoltIndex) Close() error {
	return x.db.Close()
}

func writeManifest(tx *bbolt.Tx, manifest domain.Manifest) error {
	b := tx.Bucket(bucketManifest)
	if b == nil {
		return fmt.Errorf("manifest bucket not found")
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		return err
	}
	return b.Put(keyManifest, data)
}

func toMeta(p domain.Passage) passageMeta {
	return passageMeta{
		ID:     p.ID,
		DocID:  p.DocID,
		Source: p.Source,
		Seq:    p.Seq,
		Offset: p.Offset,
		Text:   p.Text,
	}
}

func (m passageMeta) toDomain() domain.Passage {
	return domain.Passage{
		ID:     m.ID,
		DocID:  m.DocID,
		Source: m.Source,
		Seq:    m.Seq,
		Offset: m.Offset,
		Text:   m.Text,
	}
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
