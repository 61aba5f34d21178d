package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SoundsPlayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundboard_plays_total",
		Help: "Total number of play requests by trigger and outcome",
	}, []string{"trigger", "status"})

	SoundUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundboard_uploads_total",
		Help: "Total number of sound uploads by outcome",
	}, []string{"status"})

	CatalogSounds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "soundboard_catalog_sounds",
		Help: "Number of sounds in the catalog after the last reload",
	})

	CatalogReloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "soundboard_catalog_reload_duration_seconds",
		Help:    "Duration of catalog rescans",
		Buckets: prometheus.DefBuckets,
	})

	VoiceConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "soundboard_voice_connections",
		Help: "Number of open voice connections",
	})

	IdleDisconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soundboard_idle_disconnects_total",
		Help: "Total number of voice connections closed by the idle watchdog",
	})

	CommandSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundboard_command_syncs_total",
		Help: "Total number of per-guild command synchronizations by outcome",
	}, []string{"status"})

	AttachmentDownloadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "soundboard_attachment_download_duration_seconds",
		Help:    "Duration of attachment downloads",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})
)
