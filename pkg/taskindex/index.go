package taskindex

import (
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/btree"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheCapacity bounds the front cache when Options.CacheCapacity
// is zero.
const DefaultCacheCapacity = 100

// dueTreeDegree is the btree branching factor for the due-date index.
const dueTreeDegree = 2

// Options configure a new [Index].
type Options struct {
	// CacheCapacity is the maximum number of records held by the front
	// cache. Zero means [DefaultCacheCapacity]; negative is invalid.
	CacheCapacity int

	// Clock supplies "now" for Today/Overdue queries. Nil means the wall
	// clock. Tests inject a mock.
	Clock clock.Clock
}

// idSet is one secondary-index bucket: the ids sharing a key value.
type idSet map[string]struct{}

// dueBucket is one due-date key and the ids due that day. Buckets are
// btree items ordered by date so range queries can walk them in order.
type dueBucket struct {
	date Date
	ids  idSet
}

// Less orders buckets by calendar day.
func (b *dueBucket) Less(than btree.Item) bool {
	return b.date.Before(than.(*dueBucket).date)
}

// Index is an in-memory, multi-index store of task records.
//
// It owns a primary id→record mapping, five secondary key→ids indices
// (file, status, project, due date, priority), a bounded LRU front cache
// and a monotonically increasing version counter. All structures are
// mutated together inside one exclusive section per operation, so readers
// never observe a record indexed twice or not at all mid-update.
//
// Callers always receive deep copies of records, never internal aliases.
type Index struct {
	mu sync.RWMutex

	tasks      map[string]*Record
	files      map[string]idSet
	statuses   map[Status]idSet
	projects   map[string]idSet
	priorities map[Priority]idSet
	due        *btree.BTree

	cache    *lru.Cache[string, *Record]
	capacity int
	hits     uint64
	misses   uint64

	version uint64
	clock   clock.Clock
}

// New creates an empty index.
func New(opts Options) (*Index, error) {
	capacity := opts.CacheCapacity
	if capacity == 0 {
		capacity = DefaultCacheCapacity
	}

	if capacity < 0 {
		return nil, errors.New("new index: cache capacity must be positive")
	}

	cache, err := lru.New[string, *Record](capacity)
	if err != nil {
		return nil, fmt.Errorf("new index: front cache: %w", err)
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &Index{
		tasks:      make(map[string]*Record),
		files:      make(map[string]idSet),
		statuses:   make(map[Status]idSet),
		projects:   make(map[string]idSet),
		priorities: make(map[Priority]idSet),
		due:        btree.New(dueTreeDegree),
		cache:      cache,
		capacity:   capacity,
		clock:      clk,
	}, nil
}

// Insert adds rec to the index. If a record with the same id already
// exists it is first removed from every secondary bucket it occupies
// using its old field values, then re-added under the new ones. Skipping
// that removal is how a record ends up indexed under two projects or a
// stale due date.
func (idx *Index) Insert(rec Record) error {
	if rec.ID == "" {
		return errors.New("insert: record id is empty")
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.insertLocked(rec)
	idx.version++

	return nil
}

// Update replaces the record with rec.ID. Unlike [Index.Insert] it fails
// with [ErrTaskNotFound] when the id is absent: create and modify are
// distinct caller contracts, never silently merged.
func (idx *Index) Update(rec Record) error {
	if rec.ID == "" {
		return errors.New("update: record id is empty")
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.tasks[rec.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, rec.ID)
	}

	idx.insertLocked(rec)
	idx.version++

	return nil
}

// Remove deletes the record with the given id from the primary mapping,
// every secondary bucket it occupies and the front cache. Returns
// [ErrTaskNotFound] if the id is absent; the index is left untouched.
func (idx *Index) Remove(id string) error {
	if id == "" {
		return errors.New("remove: id is empty")
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.tasks[id]; !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	idx.removeLocked(id)
	idx.version++

	return nil
}

// RemoveFileTasks removes every record currently indexed under path.
// Removing a path with no indexed tasks is not an error.
func (idx *Index) RemoveFileTasks(path string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, id := range bucketIDs(idx.files[path]) {
		idx.removeLocked(id)
	}

	idx.version++
}

// UpdateFileTasks is the batch "diff and replace" used after a file
// rescan: every record previously indexed under path whose id is absent
// from recs is removed, then every record in recs is inserted or updated.
// The whole diff runs inside one exclusive section, so no reader ever
// observes the file half-replaced.
func (idx *Index) UpdateFileTasks(path string, recs []Record) error {
	newIDs := make(idSet, len(recs))

	for _, rec := range recs {
		if rec.ID == "" {
			return errors.New("update file tasks: record id is empty")
		}

		newIDs[rec.ID] = struct{}{}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, id := range bucketIDs(idx.files[path]) {
		if _, keep := newIDs[id]; !keep {
			idx.removeLocked(id)
		}
	}

	for _, rec := range recs {
		idx.insertLocked(rec)
	}

	idx.version++

	return nil
}

// Get returns a copy of the record with the given id, or
// [ErrTaskNotFound]. The front cache is consulted first; hits refresh
// recency, misses populate the cache. Get takes the exclusive section
// even though it is conceptually a read: cache bookkeeping is mutable
// shared state.
func (idx *Index) Get(id string) (Record, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if rec, ok := idx.cache.Get(id); ok {
		idx.hits++

		return rec.Clone(), nil
	}

	idx.misses++

	rec, ok := idx.tasks[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	idx.cache.Add(id, rec)

	return rec.Clone(), nil
}

// Size returns the number of records in the primary mapping.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.tasks)
}

// IsEmpty reports whether the index holds no records.
func (idx *Index) IsEmpty() bool {
	return idx.Size() == 0
}

// Version returns the current mutation counter. It increases strictly on
// every mutating operation (batch operations count as one).
func (idx *Index) Version() uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.version
}

// Stats summarizes the indexed records.
type Stats struct {
	Total             int
	Open              int
	Done              int
	FilesWithTasks    int
	Projects          int
	TasksWithDueDates int
}

// Stats returns aggregate counts over the index.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	withDue := 0
	idx.due.Ascend(func(item btree.Item) bool {
		withDue += len(item.(*dueBucket).ids)

		return true
	})

	return Stats{
		Total:             len(idx.tasks),
		Open:              len(idx.statuses[StatusTodo]),
		Done:              len(idx.statuses[StatusDone]),
		FilesWithTasks:    len(idx.files),
		Projects:          len(idx.projects),
		TasksWithDueDates: withDue,
	}
}

// CacheStats summarizes front-cache effectiveness.
type CacheStats struct {
	Hits     uint64
	Misses   uint64
	HitRate  float64
	Size     int
	Capacity int
}

// CacheStats returns front-cache counters. HitRate is zero when the cache
// has never been consulted.
func (idx *Index) CacheStats() CacheStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	stats := CacheStats{
		Hits:     idx.hits,
		Misses:   idx.misses,
		Size:     idx.cache.Len(),
		Capacity: idx.capacity,
	}

	if total := idx.hits + idx.misses; total > 0 {
		stats.HitRate = float64(idx.hits) / float64(total)
	}

	return stats
}

// insertLocked stores rec, maintaining every secondary bucket and the
// front cache. Callers hold the exclusive lock.
func (idx *Index) insertLocked(rec Record) {
	if old, ok := idx.tasks[rec.ID]; ok {
		idx.dropFromBucketsLocked(old)
	}

	stored := rec.Clone()
	idx.tasks[rec.ID] = &stored
	idx.addToBucketsLocked(&stored)
	idx.cache.Add(rec.ID, &stored)
}

// removeLocked deletes the record with id from the primary mapping, all
// buckets and the cache. Callers hold the exclusive lock and have checked
// existence when absence matters.
func (idx *Index) removeLocked(id string) {
	rec, ok := idx.tasks[id]
	if !ok {
		return
	}

	idx.dropFromBucketsLocked(rec)
	delete(idx.tasks, id)
	idx.cache.Remove(id)
}

func (idx *Index) addToBucketsLocked(rec *Record) {
	addID(idx.files, rec.File, rec.ID)
	addID(idx.statuses, rec.Status, rec.ID)

	if rec.Project != "" {
		addID(idx.projects, rec.Project, rec.ID)
	}

	if rec.Priority != PriorityNone {
		addID(idx.priorities, rec.Priority, rec.ID)
	}

	if !rec.Due.IsZero() {
		if item := idx.due.Get(&dueBucket{date: rec.Due}); item != nil {
			item.(*dueBucket).ids[rec.ID] = struct{}{}
		} else {
			idx.due.ReplaceOrInsert(&dueBucket{
				date: rec.Due,
				ids:  idSet{rec.ID: {}},
			})
		}
	}
}

func (idx *Index) dropFromBucketsLocked(rec *Record) {
	dropID(idx.files, rec.File, rec.ID)
	dropID(idx.statuses, rec.Status, rec.ID)

	if rec.Project != "" {
		dropID(idx.projects, rec.Project, rec.ID)
	}

	if rec.Priority != PriorityNone {
		dropID(idx.priorities, rec.Priority, rec.ID)
	}

	if !rec.Due.IsZero() {
		if item := idx.due.Get(&dueBucket{date: rec.Due}); item != nil {
			bucket := item.(*dueBucket)
			delete(bucket.ids, rec.ID)

			if len(bucket.ids) == 0 {
				idx.due.Delete(bucket)
			}
		}
	}
}

// addID adds id to the bucket for key, creating the bucket on first use.
func addID[K comparable](buckets map[K]idSet, key K, id string) {
	set, ok := buckets[key]
	if !ok {
		set = make(idSet)
		buckets[key] = set
	}

	set[id] = struct{}{}
}

// dropID removes id from the bucket for key. Buckets that become empty
// are deleted, never left dangling.
func dropID[K comparable](buckets map[K]idSet, key K, id string) {
	set, ok := buckets[key]
	if !ok {
		return
	}

	delete(set, id)

	if len(set) == 0 {
		delete(buckets, key)
	}
}
