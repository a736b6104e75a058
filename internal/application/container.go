package application

import (
	"time"

	"github.com/linskybing/grant-review/internal/domain/call"
	"github.com/linskybing/grant-review/internal/domain/decision"
	"github.com/linskybing/grant-review/internal/events"
	"github.com/linskybing/grant-review/internal/notify"
	"github.com/linskybing/grant-review/internal/repository"
	"github.com/linskybing/grant-review/internal/storage"
	"github.com/linskybing/grant-review/pkg/logger"
)

// Settings are the workflow tunables shared by the services.
type Settings struct {
	DispersionThreshold float64
	AreaPrefixLength    int
	ScoreScale          float64
	PresignTTL          time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		DispersionThreshold: decision.DefaultDispersionThreshold,
		AreaPrefixLength:    1,
		ScoreScale:          10,
		PresignTTL:          15 * time.Minute,
	}
}

// Options carries the collaborators of the services. Nil fields fall back
// to no-op or default implementations.
type Options struct {
	Machine  *call.Machine
	Settings *Settings
	Notifier notify.Notifier
	Events   events.Publisher
	Store    storage.ObjectStore
	Log      *logger.Logger
	Now      func() time.Time
}

// deps is the shared wiring embedded in every service.
type deps struct {
	Repos    *repository.Repos
	machine  *call.Machine
	settings Settings
	notifier notify.Notifier
	events   events.Publisher
	store    storage.ObjectStore
	log      *logger.Logger
	now      func() time.Time
}

func newDeps(repos *repository.Repos, opts Options) *deps {
	d := &deps{
		Repos:    repos,
		machine:  opts.Machine,
		settings: DefaultSettings(),
		notifier: opts.Notifier,
		events:   opts.Events,
		store:    opts.Store,
		log:      opts.Log,
		now:      opts.Now,
	}
	if opts.Settings != nil {
		d.settings = *opts.Settings
	}
	if d.machine == nil {
		d.machine = call.DefaultMachine()
	}
	if d.log == nil {
		d.log = logger.NewNop()
	}
	if d.notifier == nil {
		d.notifier = notify.NewLogNotifier(d.log)
	}
	if d.events == nil {
		d.events = events.NopPublisher{}
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

type Services struct {
	Audit      *AuditService
	Lifecycle  *LifecycleService
	Proposal   *ProposalService
	Assignment *AssignmentService
	Review     *ReviewService
	Decision   *DecisionService
	Reveal     *RevealService
	Reviewer   *ReviewerService
}

func New(repos *repository.Repos, opts Options) *Services {
	d := newDeps(repos, opts)
	return &Services{
		Audit:      &AuditService{deps: d},
		Lifecycle:  &LifecycleService{deps: d},
		Proposal:   NewProposalService(d),
		Assignment: &AssignmentService{deps: d},
		Review:     &ReviewService{deps: d},
		Decision:   &DecisionService{deps: d},
		Reveal:     &RevealService{deps: d},
		Reviewer:   &ReviewerService{deps: d},
	}
}
