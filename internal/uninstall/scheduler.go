package uninstall

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mesosphere/uninstall-scheduler/internal/offerproto"
	"github.com/mesosphere/uninstall-scheduler/internal/secrets"
	"github.com/mesosphere/uninstall-scheduler/internal/servicespec"
	"github.com/mesosphere/uninstall-scheduler/internal/store"
)

// Scheduler implements component G: the glue between the offer protocol and
// the plan. It is driven by a single caller delivering offer, status, and
// lifecycle callbacks one at a time (spec §5) — it does not spawn
// goroutines of its own.
type Scheduler struct {
	driver        offerproto.Driver
	store         store.Store
	secretsClient secrets.Client
	namespace     string
	metrics       *Metrics

	manager     *PlanManager
	recorder    *Recorder
	taskIDNames map[string]string
}

// NewScheduler loads the persisted task set and framework ID, builds the
// plan (component B), and reports whether the caller should proceed to
// register with the master at all (component H). The plan is built
// regardless of that answer. In the "nothing to do" case it comes back as
// the trivial already-complete plan, unless a permanently-failed-in-error
// task is persisted: that task still gets a kill step (see BuildPlan).
func NewScheduler(
	driver offerproto.Driver,
	backing store.Store,
	secretsClient secrets.Client,
	namespace string,
	spec servicespec.ServiceSpec,
	metrics *Metrics,
) (sched *Scheduler, shouldRegister bool, err error) {
	tasks, err := LoadTasks(backing, namespace)
	if err != nil {
		return nil, false, errors.Wrap(ErrStorageUnavailable, err.Error())
	}
	_, hasFrameworkID, err := LoadFrameworkID(backing, namespace)
	if err != nil {
		return nil, false, errors.Wrap(ErrStorageUnavailable, err.Error())
	}

	plan := BuildPlan(tasks, hasFrameworkID, spec, secretsClient)
	manager := NewPlanManager(plan)
	recorder := NewRecorder(backing, namespace, plan, tasks)

	taskIDNames := make(map[string]string, len(tasks))
	for _, t := range tasks {
		if t.TaskID != "" {
			taskIDNames[t.TaskID] = t.Name
		}
	}

	sched = &Scheduler{
		driver:        driver,
		store:         backing,
		secretsClient: secretsClient,
		namespace:     namespace,
		metrics:       metrics,
		manager:       manager,
		recorder:      recorder,
		taskIDNames:   taskIDNames,
	}
	return sched, ShouldRegister(tasks, hasFrameworkID), nil
}

// Registered persists the framework ID the master assigned on (re)registration.
func (s *Scheduler) Registered(frameworkID string) error {
	if err := SaveFrameworkID(s.store, s.namespace, frameworkID); err != nil {
		return errors.Wrap(ErrStorageUnavailable, err.Error())
	}
	return nil
}

// PlanManager exposes the plan manager, e.g. for the operator HTTP surface.
func (s *Scheduler) PlanManager() *PlanManager {
	return s.manager
}

// ProcessOffers implements the per-offer-cycle algorithm of spec §4.G:
// start whatever candidates exist, hand every offer to the cleaner, accept
// or decline accordingly (advancing release steps via the recorder as a
// side effect of a successful accept), and report every fault encountered
// without letting one hide another.
func (s *Scheduler) ProcessOffers(offers []offerproto.Offer) error {
	var agg error

	for _, step := range s.manager.Candidates() {
		if err := s.startStep(step); err != nil {
			agg = appendError(agg, err)
		}
	}

	results := Clean(offers)
	consumed := make(map[string]struct{}, len(results))
	for _, cr := range results {
		if err := s.driver.Accept([]string{cr.OfferID}, cr.Operations, offerproto.Filters{}); err != nil {
			agg = appendError(agg, errors.Wrapf(ErrMasterRejected, "accept offer %q: %v", cr.OfferID, err))
			continue
		}
		consumed[cr.OfferID] = struct{}{}
		if s.metrics != nil {
			s.metrics.OffersAccepted.Inc()
		}
		if err := s.recorder.Record(cr.Operations); err != nil {
			agg = appendError(agg, err)
		}
	}

	for _, offer := range offers {
		if _, ok := consumed[offer.ID]; ok {
			continue
		}
		if err := s.driver.Decline(offer.ID, offerproto.Filters{RefuseSeconds: offerproto.LongDecline}); err != nil {
			agg = appendError(agg, errors.Wrapf(ErrMasterRejected, "decline offer %q: %v", offer.ID, err))
		} else if s.metrics != nil {
			s.metrics.OffersDeclined.Inc()
		}
	}

	s.metrics.Observe(s.manager.Plan())
	return agg
}

// startStep runs a candidate step's kind-specific prepare action. Kill,
// TLS, and deregister steps are synchronous: the "prepare" action fully
// determines completion within this same call (spec §8 S1's kill step
// completing after a single offer cycle with no separate status update).
// Release steps only transition to PREPARED here — they complete later,
// opportunistically, when the recorder observes their reservation released.
func (s *Scheduler) startStep(step *Step) error {
	step.Start()

	switch step.Kind {
	case KindKill:
		if err := s.driver.Kill(step.AssetID); err != nil {
			// The step stays PREPARED; the next offer cycle retries the kill.
			return errors.Wrapf(ErrMasterRejected, "kill %q: %v", step.AssetID, err)
		}
		step.Complete()

	case KindRelease:
		// Nothing further to do: the cleaner/recorder path completes this
		// step when the master re-offers the reservation.

	case KindTLS:
		if err := s.runTLSCleanup(step); err != nil {
			// The step goes back to PENDING and is retried on the next cycle.
			step.Status = StatusPending
			return err
		}
		step.Complete()

	case KindDeregister:
		if err := s.driver.Deregister(); err != nil {
			step.Fail()
			return errors.Wrapf(ErrMasterRejected, "deregister: %v", err)
		}
		if err := ClearAll(s.store, s.namespace); err != nil {
			step.Fail()
			return errors.Wrap(ErrStorageUnavailable, err.Error())
		}
		step.Complete()
	}
	return nil
}

func (s *Scheduler) runTLSCleanup(step *Step) error {
	names, err := s.secretsClient.List(step.AssetID)
	if err != nil {
		return errors.Wrapf(ErrSecretsUnavailable, "list secrets in %q: %v", step.AssetID, err)
	}
	for _, name := range names {
		if err := s.secretsClient.Delete(step.AssetID, name); err != nil {
			return errors.Wrapf(ErrSecretsUnavailable, "delete secret %q in %q: %v", name, step.AssetID, err)
		}
	}
	return nil
}

// StatusUpdate persists the reported status, keyed by the task name
// resolved from the task ID (spec §4.G step 4). Offer cycles may race with
// status callbacks; both only ever touch the store under its own
// concurrency discipline (§5), never the plan directly.
func (s *Scheduler) StatusUpdate(status offerproto.TaskStatus) error {
	name, ok := s.taskIDNames[status.TaskID]
	if !ok {
		log.WithField("taskId", status.TaskID).Warn("uninstall: status update for unknown task id")
		return nil
	}
	if err := SaveTaskStatus(s.store, s.namespace, name, fromOfferProtoState(status.State)); err != nil {
		return errors.Wrap(ErrStorageUnavailable, err.Error())
	}
	return nil
}

func fromOfferProtoState(state offerproto.TaskState) TaskStatusValue {
	switch state {
	case offerproto.TaskRunning:
		return TaskStatusRunning
	case offerproto.TaskFinished:
		return TaskStatusFinished
	case offerproto.TaskFailed:
		return TaskStatusFailed
	case offerproto.TaskError:
		return TaskStatusError
	case offerproto.TaskKilled:
		return TaskStatusKilled
	case offerproto.TaskLost:
		return TaskStatusLost
	default:
		return TaskStatusUnknown
	}
}
