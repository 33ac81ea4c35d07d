package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"MarketScreener/internal/notifier"
	"MarketScreener/internal/recorder"
	"MarketScreener/internal/scanner"
)

// Runner executes one screening run.
type Runner interface {
	Run(ctx context.Context, groups []scanner.Group) scanner.RunReport
}

// Scheduler triggers screening runs from cron and operator commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Groups   []scanner.Group
	Notifier *notifier.TelegramNotifier // nil disables run summaries
	Recorder recorder.Recorder
	TopN     int
	Ctx      context.Context

	mu      sync.Mutex
	running bool
	last    *scanner.RunReport
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner Runner, groups []scanner.Group, tn *notifier.TelegramNotifier, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Groups:   groups,
		Notifier: tn,
		Recorder: rec,
		TopN:     5,
		Ctx:      ctx,
	}
}

// Register schedules a full run on the cron expression (seconds field first).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.scheduledRun); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) scheduledRun() {
	if _, ok := s.RunNow(nil); !ok {
		log.Warn().Msg("previous run still in progress, skipping scheduled run")
	}
}

// RunNow runs the named groups, or all groups when names is empty. It
// returns false without running when another run is in progress.
func (s *Scheduler) RunNow(names []string) (scanner.RunReport, bool) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return scanner.RunReport{}, false
	}
	s.running = true
	s.mu.Unlock()

	report := s.Runner.Run(s.Ctx, s.selectGroups(names))

	s.mu.Lock()
	s.running = false
	s.last = &report
	s.mu.Unlock()

	if err := s.Recorder.RecordRun(s.Ctx, report); err != nil {
		log.Error().Err(err).Str("run_id", report.RunID).Msg("record run")
	}
	s.trySend(notifier.FormatRunReport(report, s.TopN))
	return report, true
}

// LastReport returns the most recent finished run.
func (s *Scheduler) LastReport() (scanner.RunReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return scanner.RunReport{}, false
	}
	return *s.last, true
}

// Running reports whether a run is in progress.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) selectGroups(names []string) []scanner.Group {
	if len(names) == 0 {
		return s.Groups
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = true
	}
	var out []scanner.Group
	for _, g := range s.Groups {
		if want[strings.ToLower(g.Name)] {
			out = append(out, g)
		}
	}
	return out
}

// HandleCommand processes an operator command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return help
	}
	switch fields[0] {
	case "/scan":
		names := fields[1:]
		if len(names) > 0 && len(s.selectGroups(names)) == 0 {
			return fmt.Sprintf("Unknown group: %s", strings.Join(names, ", "))
		}
		if _, ok := s.RunNow(names); !ok {
			return "A run is already in progress."
		}
		// the run summary has been sent already
		return ""
	case "/status":
		if s.Running() {
			return "⏳ Run in progress."
		}
		report, ok := s.LastReport()
		if !ok {
			return "No run yet."
		}
		return notifier.FormatRunReport(report, s.TopN)
	case "/groups":
		return notifier.FormatGroups(s.Groups)
	default:
		return help
	}
}

const help = "Commands:\n• /scan [group...]\n• /status\n• /groups"

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send run summary")
	}
}
