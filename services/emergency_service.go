package services

import (
	"context"
	"errors"
	"lifeline/models"
	"lifeline/repositories"
	"lifeline/utils"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Notifier alerts the people and dashboards interested in a new case.
type Notifier interface {
	NotifyFor(ctx context.Context, c *models.EmergencyCase, profile *models.UserProfile) models.DispatchResult
}

// CaseService owns the SOS lifecycle: intake, triage transitions and the
// views the dashboard reads.
type CaseService struct {
	store      repositories.CaseStore
	profiles   repositories.ProfileStore
	geocoder   Geocoder
	classifier PriorityClassifier
	notifier   Notifier
	events     CaseEventPublisher

	persistTimeout time.Duration
	notifyTimeout  time.Duration

	wg sync.WaitGroup
}

func NewCaseService(
	store repositories.CaseStore,
	profiles repositories.ProfileStore,
	geocoder Geocoder,
	classifier PriorityClassifier,
	notifier Notifier,
	events CaseEventPublisher,
	notifyTimeout time.Duration,
) *CaseService {
	if classifier == nil {
		classifier = NewRuleClassifier()
	}
	if notifyTimeout <= 0 {
		notifyTimeout = time.Minute
	}
	return &CaseService{
		store:          store,
		profiles:       profiles,
		geocoder:       geocoder,
		classifier:     classifier,
		notifier:       notifier,
		events:         events,
		persistTimeout: 10 * time.Second,
		notifyTimeout:  notifyTimeout,
	}
}

// =================== INTAKE ===================

// CreateCase records an SOS and returns the stored case once it is durable.
// Contact notification continues in the background. The caller's context
// only bounds the address lookup: a client that hangs up after sending an
// SOS must not lose it.
func (cs *CaseService) CreateCase(ctx context.Context, req models.CreateSOSRequest) (*models.EmergencyCase, error) {
	if (req.Lat == nil) != (req.Long == nil) {
		return nil, utils.NewValidationError("lat and long must be provided together")
	}
	if req.Lat == nil {
		return nil, utils.NewValidationError("lat and long are required")
	}
	lat, long := *req.Lat, *req.Long
	if !utils.IsValidCoordinate(lat, long) {
		return nil, utils.NewInvalidCoordinatesError(lat, long)
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, utils.NewValidationError("userId is required")
	}

	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = cs.resolveAddress(ctx, lat, long)
	}

	vitals := models.Vitals{
		HeartRate:     req.HeartRate,
		BloodPressure: req.BloodPressure,
		Spo2:          req.Spo2,
	}
	cause := strings.TrimSpace(req.Cause)
	if cause == "" {
		cause = models.DefaultCause
	}

	input := models.NewCase{
		UserID:   userID,
		Lat:      &lat,
		Long:     &long,
		Location: location,
		Cause:    cause,
		Priority: cs.classifier.Classify(cause, vitals),
		Vitals:   vitals,
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cs.persistTimeout)
	defer cancel()

	created, err := cs.store.Create(persistCtx, input)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userId": userID,
			"cause":  cause,
		}).Errorf("Failed to persist emergency case: %v", err)
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"emergencyId": created.EmergencyID,
		"userId":      created.UserID,
		"priority":    created.Priority,
	}).Info("🚨 Emergency case created")

	cs.dispatch(context.WithoutCancel(ctx), created)

	return created, nil
}

func (cs *CaseService) resolveAddress(ctx context.Context, lat, long float64) string {
	if cs.geocoder == nil {
		return models.FallbackLocation(lat, long)
	}
	address, err := cs.geocoder.ResolveAddress(ctx, lat, long)
	if err != nil || strings.TrimSpace(address) == "" {
		if err != nil {
			logrus.Warnf("Address lookup failed, using coordinates: %v", err)
		}
		return models.FallbackLocation(lat, long)
	}
	return address
}

func (cs *CaseService) dispatch(ctx context.Context, c *models.EmergencyCase) {
	if cs.notifier == nil {
		cs.publish(ctx, models.CaseEvent{Type: models.EventEmergencyCreated, Case: *c})
		return
	}

	snapshot := *c
	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()

		notifyCtx, cancel := context.WithTimeout(ctx, cs.notifyTimeout)
		defer cancel()

		profile, err := cs.loadProfile(notifyCtx, snapshot.UserID)
		if err != nil {
			logrus.WithField("emergencyId", snapshot.EmergencyID).Warnf("Notifying without profile: %v", err)
		}
		cs.notifier.NotifyFor(notifyCtx, &snapshot, profile)
	}()
}

func (cs *CaseService) loadProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if cs.profiles == nil {
		return nil, utils.NewProfileNotFoundError(userID)
	}
	return cs.profiles.GetByUserID(ctx, userID)
}

// Wait blocks until background notifications started so far have finished.
func (cs *CaseService) Wait() {
	cs.wg.Wait()
}

// =================== TRIAGE ===================

func (cs *CaseService) Transition(ctx context.Context, emergencyID, status string) (*models.EmergencyCase, error) {
	if !models.IsValidStatus(status) {
		return nil, utils.NewValidationError("unknown status: " + status)
	}

	updated, prev, err := cs.store.UpdateStatus(ctx, emergencyID, status)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"emergencyId": emergencyID,
		"from":        prev,
		"to":          updated.Status,
	}).Info("Emergency case status changed")

	cs.publish(ctx, models.CaseEvent{
		Type:       models.EventEmergencyUpdated,
		Case:       *updated,
		PrevStatus: prev,
	})
	return updated, nil
}

func (cs *CaseService) Acknowledge(ctx context.Context, emergencyID string) (*models.EmergencyCase, error) {
	return cs.Transition(ctx, emergencyID, models.CaseStatusAcknowledged)
}

func (cs *CaseService) Resolve(ctx context.Context, emergencyID string) (*models.EmergencyCase, error) {
	return cs.Transition(ctx, emergencyID, models.CaseStatusResolved)
}

func (cs *CaseService) Cancel(ctx context.Context, emergencyID string) (*models.EmergencyCase, error) {
	return cs.Transition(ctx, emergencyID, models.CaseStatusCancelled)
}

func (cs *CaseService) UpdatePriority(ctx context.Context, emergencyID, priority string) (*models.EmergencyCase, error) {
	if !models.IsValidPriority(priority) {
		return nil, utils.NewValidationError("unknown priority: " + priority)
	}

	updated, err := cs.store.UpdatePriority(ctx, emergencyID, priority)
	if err != nil {
		return nil, err
	}

	cs.publish(ctx, models.CaseEvent{Type: models.EventEmergencyUpdated, Case: *updated})
	return updated, nil
}

// =================== VIEWS ===================

func (cs *CaseService) GetCase(ctx context.Context, emergencyID string) (*models.EmergencyCase, error) {
	return cs.store.GetByID(ctx, emergencyID)
}

// GetCaseWithProfile joins the case with its reporter's profile. A missing
// profile leaves User empty rather than failing the lookup.
func (cs *CaseService) GetCaseWithProfile(ctx context.Context, emergencyID string) (*models.EmergencyDetail, error) {
	c, err := cs.store.GetByID(ctx, emergencyID)
	if err != nil {
		return nil, err
	}

	detail := &models.EmergencyDetail{EmergencyCase: *c}

	profile, err := cs.loadProfile(ctx, c.UserID)
	switch {
	case err == nil:
		detail.User = profile
	case errors.Is(err, utils.ErrProfileNotFound):
	default:
		logrus.WithField("emergencyId", emergencyID).Warnf("Failed to load reporter profile: %v", err)
	}

	return detail, nil
}

func (cs *CaseService) ListCases(ctx context.Context) ([]models.EmergencyCase, error) {
	cases, err := cs.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if cases == nil {
		cases = []models.EmergencyCase{}
	}
	return cases, nil
}

func (cs *CaseService) CountCases(ctx context.Context) (int64, error) {
	return cs.store.Count(ctx)
}

// =================== ESCALATION ===================

// ListStale returns pending cases created more than age ago.
func (cs *CaseService) ListStale(ctx context.Context, age time.Duration) ([]models.EmergencyCase, error) {
	return cs.store.ListPendingBefore(ctx, time.Now().Add(-age))
}

// FlagStale announces a case nobody has acknowledged yet.
func (cs *CaseService) FlagStale(ctx context.Context, c models.EmergencyCase) {
	logrus.WithFields(logrus.Fields{
		"emergencyId": c.EmergencyID,
		"age":         utils.FormatDuration(time.Since(c.CreatedAt())),
	}).Warn("⏰ Emergency case still pending")

	cs.publish(ctx, models.CaseEvent{Type: models.EventEmergencyStale, Case: c})
}

func (cs *CaseService) publish(ctx context.Context, event models.CaseEvent) {
	if cs.events == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := cs.events.Publish(ctx, event); err != nil {
		logrus.WithField("emergencyId", event.Case.EmergencyID).Warnf("Failed to publish %s: %v", event.Type, err)
	}
}
