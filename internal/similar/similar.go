// Package similar indexes reports in an in-memory vector collection so an
// administrator can find likely duplicates of a report.
package similar

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/BhavyaPagadala/urbix/internal/lifecycle"
	"github.com/BhavyaPagadala/urbix/internal/report"
)

const collectionName = "reports"

const indexTimeout = 30 * time.Second

// Match is one report close to the queried one.
type Match struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Category   report.Category `json:"category"`
	Status     report.Status   `json:"status"`
	Locality   string          `json:"locality"`
	Similarity float32         `json:"similarity"`
}

// Index holds one vector per report.
type Index struct {
	db   *chromem.DB
	ef   chromem.EmbeddingFunc
	wg   sync.WaitGroup

	mu   sync.RWMutex
	coll *chromem.Collection
}

// New creates an empty index that embeds text with ef.
func New(ef chromem.EmbeddingFunc) (*Index, error) {
	db := chromem.NewDB()
	coll, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}
	return &Index{db: db, ef: ef, coll: coll}, nil
}

func (i *Index) collection() *chromem.Collection {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.coll
}

func (i *Index) setCollection(c *chromem.Collection) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.coll = c
}

// Persist writes the vectors to a gzip-compressed file.
func (i *Index) Persist(path string) error {
	if err := i.db.ExportToFile(path, true, ""); err != nil {
		return fmt.Errorf("exporting index: %w", err)
	}
	return nil
}

// Load replaces the index contents with a file written by Persist.
func (i *Index) Load(path string) error {
	if err := i.db.ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("importing index: %w", err)
	}
	coll := i.db.GetCollection(collectionName, i.ef)
	if coll == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	i.setCollection(coll)
	return nil
}

// Sync indexes reports unless the index already holds exactly one vector
// per report.
func (i *Index) Sync(ctx context.Context, reports []report.Report) error {
	if i.collection().Count() == len(reports) {
		return nil
	}
	if err := i.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}
	coll, err := i.db.GetOrCreateCollection(collectionName, nil, i.ef)
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	i.setCollection(coll)
	return i.AddAll(ctx, reports)
}

// Document is the text embedded for a report.
func Document(r report.Report) string {
	var b strings.Builder
	b.WriteString(r.Title)
	b.WriteString("\n")
	b.WriteString(r.Description)
	if r.Category != "" {
		b.WriteString("\nCategory: ")
		b.WriteString(r.Category.Label())
	}
	if r.Location.Locality != "" {
		b.WriteString("\nLocality: ")
		b.WriteString(r.Location.Locality)
	}
	return b.String()
}

func toDocument(r report.Report) chromem.Document {
	return chromem.Document{
		ID:      r.ID,
		Content: Document(r),
		Metadata: map[string]string{
			"title":    r.Title,
			"category": string(r.Category),
			"status":   string(r.Status),
			"locality": r.Location.Locality,
		},
	}
}

// Add indexes r, replacing any earlier vector for the same id.
func (i *Index) Add(ctx context.Context, r report.Report) error {
	if err := i.collection().AddDocument(ctx, toDocument(r)); err != nil {
		return fmt.Errorf("indexing report %s: %w", r.ID, err)
	}
	return nil
}

// AddAll indexes a batch of reports.
func (i *Index) AddAll(ctx context.Context, reports []report.Report) error {
	if len(reports) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(reports))
	for n, r := range reports {
		docs[n] = toDocument(r)
	}
	if err := i.collection().AddDocuments(ctx, docs, 4); err != nil {
		return fmt.Errorf("indexing %d reports: %w", len(reports), err)
	}
	return nil
}

// Remove drops the vector for id.
func (i *Index) Remove(ctx context.Context, id string) error {
	return i.collection().Delete(ctx, nil, nil, id)
}

// Count returns the number of indexed reports.
func (i *Index) Count() int {
	return i.collection().Count()
}

// Similar returns up to n reports closest to r, excluding r itself.
func (i *Index) Similar(ctx context.Context, r report.Report, n int) ([]Match, error) {
	if n <= 0 {
		return []Match{}, nil
	}
	coll := i.collection()
	k := min(n+1, coll.Count())
	if k == 0 {
		return []Match{}, nil
	}

	results, err := coll.Query(ctx, Document(r), k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying similar reports: %w", err)
	}

	matches := make([]Match, 0, n)
	for _, res := range results {
		if res.ID == r.ID {
			continue
		}
		matches = append(matches, Match{
			ID:         res.ID,
			Title:      res.Metadata["title"],
			Category:   report.Category(res.Metadata["category"]),
			Status:     report.Status(res.Metadata["status"]),
			Locality:   res.Metadata["locality"],
			Similarity: res.Similarity,
		})
		if len(matches) == n {
			break
		}
	}
	return matches, nil
}

// OnReportEvent implements lifecycle.Observer. Embedding happens in the
// background so the lifecycle operation is not held up.
func (i *Index) OnReportEvent(ctx context.Context, ev lifecycle.Event) {
	switch ev.Type {
	case lifecycle.EventCreated, lifecycle.EventStatusChanged, lifecycle.EventEnriched:
	case lifecycle.EventDeleted:
		if err := i.Remove(ctx, ev.Report.ID); err != nil {
			log.Printf("similar: removing %s: %v", ev.Report.ID, err)
		}
		return
	default:
		return
	}

	r := ev.Report
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
		defer cancel()
		if err := i.Add(ctx, r); err != nil {
			log.Printf("similar: %v", err)
		}
	}()
}

// Wait blocks until background indexing has finished.
func (i *Index) Wait() {
	i.wg.Wait()
}
