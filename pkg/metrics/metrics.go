package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 索引构建
var (
	ImagesIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_images_indexed_total",
			Help: "Total number of image files added to a gallery index",
		},
	)

	WalkErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_walk_errors_total",
			Help: "Total number of unreadable entries skipped while walking the library",
		},
	)

	LastBuildDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_last_build_duration_seconds",
			Help: "Duration of the last gallery build in seconds",
		},
	)

	LastBuildImages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_last_build_images",
			Help: "total_images of the last written index",
		},
	)

	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_builds_total",
			Help: "Total number of gallery builds by outcome",
		},
		[]string{"status"},
	)
)

// 文件同步
var (
	FilesCopied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_files_copied_total",
			Help: "Total number of image files copied into the output tree",
		},
	)

	FilesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_files_skipped_total",
			Help: "Total number of image files skipped because the destination was already in sync",
		},
	)

	BytesCopied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_bytes_copied_total",
			Help: "Total number of bytes copied into the output tree",
		},
	)
)
