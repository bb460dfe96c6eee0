package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/stemsi/tagihan-dashboard/internal/billing"
	"github.com/stemsi/tagihan-dashboard/internal/config"
	"github.com/stemsi/tagihan-dashboard/internal/database"
	"github.com/stemsi/tagihan-dashboard/internal/logger"
	"github.com/stemsi/tagihan-dashboard/internal/model"
	"github.com/stemsi/tagihan-dashboard/internal/repository"
	"github.com/stemsi/tagihan-dashboard/internal/service"
	"github.com/stemsi/tagihan-dashboard/internal/upstream"
)

func main() {
	var (
		top    int
		fresh  bool
		filter billing.Filter
	)
	flag.IntVar(&top, "top", 0, "Number of arrears to list (default TOP_ARREARS_LIMIT)")
	flag.BoolVar(&fresh, "fresh", false, "Fetch from the upstream API instead of the cached snapshot")
	flag.StringVar(&filter.Nama, "nama", "", "Student name substring")
	flag.StringVar(&filter.Kelas, "kelas", "", "Class ID")
	flag.StringVar(&filter.Jurusan, "jurusan", "", "Major ID")
	flag.StringVar(&filter.Status, "status", billing.StatusAll, "all, belum_lunas, unpaid, partial, paid or pending")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if top <= 0 {
		top = cfg.TopArrearsLimit
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	client := upstream.NewClient(cfg.UpstreamURL, cfg.UpstreamToken, cfg.UpstreamTimeout)
	snapshots := service.NewSnapshotService(
		client,
		repository.NewSnapshotRepository(rdb),
		repository.NewRekapQueue(rdb),
		nil,
		cfg.SnapshotTTL,
		cfg.Location,
		log,
	)

	var snap *model.Snapshot
	if fresh {
		snap, err = snapshots.Refresh(ctx, model.RefreshReasonCLI)
	} else {
		snap, err = snapshots.Current(ctx)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load bills")
	}

	if err := writeReport(os.Stdout, snap, filter, top, snapshots.Now()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
