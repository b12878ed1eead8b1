package taskindex

import "github.com/prometheus/client_golang/prometheus"

var _ prometheus.Collector = (*Collector)(nil)

//nolint:gochecknoglobals
var (
	tasksDesc = prometheus.NewDesc(
		"taskindex_tasks",
		"Number of indexed tasks by status",
		[]string{"status"}, nil)

	filesDesc = prometheus.NewDesc(
		"taskindex_files_with_tasks",
		"Number of files holding at least one indexed task",
		nil, nil)

	projectsDesc = prometheus.NewDesc(
		"taskindex_projects",
		"Number of distinct projects across indexed tasks",
		nil, nil)

	withDueDesc = prometheus.NewDesc(
		"taskindex_tasks_with_due_date",
		"Number of indexed tasks carrying a due date",
		nil, nil)

	versionDesc = prometheus.NewDesc(
		"taskindex_version",
		"Mutation counter of the index",
		nil, nil)

	cacheHitsDesc = prometheus.NewDesc(
		"taskindex_cache_hits_total",
		"Front cache lookups answered without touching the primary mapping",
		nil, nil)

	cacheMissesDesc = prometheus.NewDesc(
		"taskindex_cache_misses_total",
		"Front cache lookups that fell through to the primary mapping",
		nil, nil)

	cacheEntriesDesc = prometheus.NewDesc(
		"taskindex_cache_entries",
		"Records currently held by the front cache",
		nil, nil)

	cacheCapacityDesc = prometheus.NewDesc(
		"taskindex_cache_capacity",
		"Configured front cache capacity",
		nil, nil)
)

// Collector exposes index and front-cache statistics to a prometheus
// registry. Values are read at scrape time; nothing is sampled in the
// background.
type Collector struct {
	idx *Index
}

// NewCollector returns a collector reading from idx.
func NewCollector(idx *Index) *Collector {
	return &Collector{idx: idx}
}

// Describe returns all descriptions of the collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- tasksDesc
	ch <- filesDesc
	ch <- projectsDesc
	ch <- withDueDesc
	ch <- versionDesc
	ch <- cacheHitsDesc
	ch <- cacheMissesDesc
	ch <- cacheEntriesDesc
	ch <- cacheCapacityDesc
}

// Collect returns the current state of all metrics of the collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.idx.Stats()
	cache := c.idx.CacheStats()

	ch <- prometheus.MustNewConstMetric(
		tasksDesc,
		prometheus.GaugeValue,
		float64(stats.Open),
		StatusTodo.String(),
	)

	ch <- prometheus.MustNewConstMetric(
		tasksDesc,
		prometheus.GaugeValue,
		float64(stats.Done),
		StatusDone.String(),
	)

	ch <- prometheus.MustNewConstMetric(
		filesDesc,
		prometheus.GaugeValue,
		float64(stats.FilesWithTasks),
	)

	ch <- prometheus.MustNewConstMetric(
		projectsDesc,
		prometheus.GaugeValue,
		float64(stats.Projects),
	)

	ch <- prometheus.MustNewConstMetric(
		withDueDesc,
		prometheus.GaugeValue,
		float64(stats.TasksWithDueDates),
	)

	ch <- prometheus.MustNewConstMetric(
		versionDesc,
		prometheus.CounterValue,
		float64(c.idx.Version()),
	)

	ch <- prometheus.MustNewConstMetric(
		cacheHitsDesc,
		prometheus.CounterValue,
		float64(cache.Hits),
	)

	ch <- prometheus.MustNewConstMetric(
		cacheMissesDesc,
		prometheus.CounterValue,
		float64(cache.Misses),
	)

	ch <- prometheus.MustNewConstMetric(
		cacheEntriesDesc,
		prometheus.GaugeValue,
		float64(cache.Size),
	)

	ch <- prometheus.MustNewConstMetric(
		cacheCapacityDesc,
		prometheus.GaugeValue,
		float64(cache.Capacity),
	)
}
