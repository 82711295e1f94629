// file: internals/features/uploads/service/orphan_sweeper.go
package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	model "edudesk_backend/internals/features/uploads/model"
	helperOSS "edudesk_backend/internals/helpers/oss"
	"edudesk_backend/internals/store"
)

type SweeperConfig struct {
	CronSchedule string // default "15 2 * * *"
	BatchSize    int    // default 200
	MaxAttempts  int    // 0 = tanpa batas
	DryRun       bool
}

type SweepStats struct {
	Scanned   int `json:"scanned"`
	Resolved  int `json:"resolved"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Abandoned int `json:"abandoned"`
}

// Sweeper mengulang delete untuk orphan yang masih pending.
type Sweeper struct {
	Gateway helperOSS.Gateway
	Orphans *store.Collection[model.OrphanCandidate]
	Cfg     SweeperConfig
	Log     *zap.Logger
	Now     func() time.Time
}

func NewSweeper(gw helperOSS.Gateway, b store.Backend, cfg SweeperConfig, log *zap.Logger) *Sweeper {
	if cfg.CronSchedule == "" {
		cfg.CronSchedule = "15 2 * * *"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		Gateway: gw,
		Orphans: model.NewOrphanCollection(b),
		Cfg:     cfg,
		Log:     log,
		Now:     time.Now,
	}
}

// RunOnce: satu putaran sweep, paling lama BatchSize kandidat (terlama dulu).
func (s *Sweeper) RunOnce(ctx context.Context) (SweepStats, error) {
	var st SweepStats
	list, _, err := s.Orphans.Find(ctx, store.GlobalTenant, store.Query{
		Filters: []store.Filter{{Field: "status", Value: string(model.OrphanPending)}},
		SortBy:  "createdAt",
		Limit:   s.Cfg.BatchSize,
	})
	if err != nil {
		return st, err
	}

	for i := range list {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		o := list[i]
		st.Scanned++
		if s.Cfg.DryRun {
			s.Log.Info("orphan sweep dry-run", zap.String("key", o.Key))
			st.Skipped++
			continue
		}

		now := s.Now()
		o.UpdatedAt = now
		if s.exhausted(o) {
			// record lama yang sudah melewati batas sebelum status abandoned ada
			o.Status = model.OrphanAbandoned
			st.Abandoned++
		} else {
			s.attempt(ctx, &o, now, &st)
		}
		if err := s.Orphans.Put(ctx, store.GlobalTenant, o.ID, &o); err != nil {
			s.Log.Error("orphan sweep: update record", zap.String("id", o.ID), zap.Error(err))
		}
	}

	if st.Scanned > 0 {
		s.Log.Info("orphan sweep done",
			zap.Int("scanned", st.Scanned),
			zap.Int("resolved", st.Resolved),
			zap.Int("failed", st.Failed),
			zap.Int("skipped", st.Skipped),
			zap.Int("abandoned", st.Abandoned),
		)
	}
	return st, nil
}

// attempt: satu kali delete; gagal pada percobaan terakhir -> abandoned.
func (s *Sweeper) attempt(ctx context.Context, o *model.OrphanCandidate, now time.Time, st *SweepStats) {
	o.Attempts++
	if err := s.Gateway.Delete(ctx, o.Key); err != nil {
		o.LastError = err.Error()
		st.Failed++
		if s.exhausted(*o) {
			o.Status = model.OrphanAbandoned
			st.Abandoned++
			s.Log.Warn("orphan abandoned", zap.String("key", o.Key), zap.Int("attempts", o.Attempts))
		}
		return
	}
	o.Status = model.OrphanResolved
	o.ResolvedAt = &now
	o.LastError = ""
	st.Resolved++
}

func (s *Sweeper) exhausted(o model.OrphanCandidate) bool {
	return s.Cfg.MaxAttempts > 0 && o.Attempts >= s.Cfg.MaxAttempts
}

// Start: panggil dari main.go; Stop() cron saat shutdown.
func (s *Sweeper) Start() (*cron.Cron, error) {
	cl := cronLogger{log: s.Log.Sugar()}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	_, err := c.AddFunc(s.Cfg.CronSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.Log.Error("orphan sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("orphan sweeper started",
		zap.String("schedule", s.Cfg.CronSchedule),
		zap.Int("batch", s.Cfg.BatchSize),
		zap.Bool("dryRun", s.Cfg.DryRun),
	)
	c.Start()
	return c, nil
}

// cronLogger: cron.Logger di atas zap
type cronLogger struct{ log *zap.SugaredLogger }

func (l cronLogger) Info(msg string, kv ...interface{}) { l.log.Debugw("cron: "+msg, kv...) }
func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	l.log.Errorw("cron: "+msg, append(kv, "error", err)...)
}
