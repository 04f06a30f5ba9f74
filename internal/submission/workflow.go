package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/applicant-intake/internal/logger"
	"github.com/justsurfingit/applicant-intake/internal/models"
)

type Step int

const (
	StepDescription Step = iota
	StepDetails
	StepSubmitting
	StepSuccess
)

func (s Step) String() string {
	switch s {
	case StepDescription:
		return "description"
	case StepDetails:
		return "details"
	case StepSubmitting:
		return "submitting"
	case StepSuccess:
		return "success"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Phase is the sub-phase shown while submitting.
type Phase string

const (
	PhaseNone           Phase = ""
	PhaseChecking       Phase = "checking"
	PhaseCreating       Phase = "creating"
	PhaseUploading      Phase = "uploading"
	PhaseScreening      Phase = "screening"
	PhaseAttaching      Phase = "attaching"
	PhaseManualRecovery Phase = "manual_recovery"
	PhaseDone           Phase = "done"
)

const (
	screeningFailedMessage = "We couldn't read your resume automatically. Paste its text to finish your application."
	defaultNotifyTimeout   = 30 * time.Second
)

// Snapshot is a point-in-time view of a submission.
type Snapshot struct {
	ID                string    `json:"submission_id"`
	OrgID             string    `json:"org_id"`
	JobID             string    `json:"job_id"`
	Step              Step      `json:"step"`
	State             string    `json:"state"`
	Phase             Phase     `json:"phase,omitempty"`
	Submitting        bool      `json:"is_submitting"`
	ManualRecovery    bool      `json:"manual_recovery"`
	UploadProgress    float64   `json:"upload_progress"`
	ScreeningProgress float64   `json:"screening_progress"`
	CandidateID       string    `json:"candidate_id,omitempty"`
	Error             string    `json:"error,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Option func(*Workflow)

// WithEvents records audit events for each milestone.
func WithEvents(e EventRecorder) Option {
	return func(w *Workflow) { w.events = e }
}

func WithNotifier(n Notifier) Option {
	return func(w *Workflow) { w.notifier = n }
}

func WithObserver(f func(Snapshot)) Option {
	return func(w *Workflow) { w.observer = f }
}

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

func WithIDGenerator(f func() string) Option {
	return func(w *Workflow) { w.newID = f }
}

// Workflow holds the collaborators shared by every submission.
type Workflow struct {
	store     CandidateStore
	guard     *Guard
	uploads   *Uploader
	screening *Orchestrator
	notifier  Notifier
	events    EventRecorder
	observer  func(Snapshot)
	now       func() time.Time
	newID     func() string

	notifyTimeout time.Duration
	bg            sync.WaitGroup
}

func NewWorkflow(store CandidateStore, assets AssetStore, screening *Orchestrator, opts ...Option) *Workflow {
	w := &Workflow{
		store:         store,
		guard:         NewGuard(store),
		uploads:       NewUploader(assets),
		screening:     screening,
		now:           time.Now,
		newID:         uuid.NewString,
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Guard exposes the duplicate check for read-only callers.
func (w *Workflow) Guard() *Guard {
	return w.guard
}

// Shutdown waits for background notifications to settle.
func (w *Workflow) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.bg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Open starts a submission for job at the Description step.
func (w *Workflow) Open(job models.Job) *Submission {
	return &Submission{
		ID:        w.newID(),
		wf:        w,
		job:       job,
		step:      StepDescription,
		updatedAt: w.now(),
	}
}

// Submission is one applicant's pass through the workflow. Submit and
// RecoverManually never overlap; Snapshot may be called at any time.
type Submission struct {
	ID  string
	wf  *Workflow
	job models.Job

	run sync.Mutex // serialises mutating operations

	// owned by run
	draft     *Draft
	resumeURL string
	media     MediaURLs
	mediaDone bool

	mu             sync.Mutex
	step           Step
	phase          Phase
	submitting     bool
	manualRecovery bool
	recovered      bool
	closed         bool
	uploadPct      float64
	screeningPct   float64
	candidateID    string
	errMsg         string
	updatedAt      time.Time
}

func (s *Submission) Job() models.Job {
	return s.job
}

// Proceed moves from the job description to the applicant details form.
func (s *Submission) Proceed() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSubmissionClosed
	}
	if s.step != StepDescription {
		s.mu.Unlock()
		return ErrWrongStep
	}
	s.step = StepDetails
	snap := s.touchLocked()
	s.mu.Unlock()

	s.wf.emit(snap)
	return nil
}

func (s *Submission) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close discards the draft. An in-flight Submit is not cancelled.
func (s *Submission) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if s.run.TryLock() {
		s.draft = nil
		s.run.Unlock()
	}
}

func (s *Submission) snapshotLocked() Snapshot {
	state := s.step.String()
	if s.manualRecovery {
		state = string(PhaseManualRecovery)
	}
	return Snapshot{
		ID:                s.ID,
		OrgID:             s.job.OrgID,
		JobID:             s.job.ID,
		Step:              s.step,
		State:             state,
		Phase:             s.phase,
		Submitting:        s.submitting,
		ManualRecovery:    s.manualRecovery,
		UploadProgress:    s.uploadPct,
		ScreeningProgress: s.screeningPct,
		CandidateID:       s.candidateID,
		Error:             s.errMsg,
		UpdatedAt:         s.updatedAt,
	}
}

func (s *Submission) touchLocked() Snapshot {
	s.updatedAt = s.wf.now()
	return s.snapshotLocked()
}

func (s *Submission) update(f func()) {
	s.mu.Lock()
	f()
	snap := s.touchLocked()
	s.mu.Unlock()
	s.wf.emit(snap)
}

func (s *Submission) setPhase(p Phase) {
	s.update(func() { s.phase = p })
}

// Submit runs the primary submit action from the Details step.
//
// On ErrScreeningFailed the submission enters manual recovery and the caller
// must collect resume text and call RecoverManually. Any other error returns
// the submission to Details with the partially written record left in place.
func (s *Submission) Submit(ctx context.Context, d *Draft) (err error) {
	if !s.run.TryLock() {
		return ErrInProgress
	}
	defer s.run.Unlock()

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrSubmissionClosed
	case s.manualRecovery:
		s.mu.Unlock()
		return ErrWrongStep
	case s.step != StepDetails:
		s.mu.Unlock()
		return ErrWrongStep
	}
	s.step = StepSubmitting
	s.submitting = true
	s.errMsg = ""
	s.uploadPct, s.screeningPct = 0, 0
	snap := s.touchLocked()
	s.mu.Unlock()
	s.wf.emit(snap)

	defer s.settle(&err)

	ctx = logger.WithOrg(ctx, s.job.OrgID)
	log := logger.WithContext(ctx)

	if d == nil {
		return &ValidationError{Message: "application details are required"}
	}
	if err := d.Validate(); err != nil {
		return err
	}
	email := normalizeEmail(d.Email)

	s.setPhase(PhaseChecking)
	exists, _, err := s.wf.guard.Check(ctx, s.job.OrgID, s.job.ID, email)
	if err != nil {
		return err
	}
	if exists {
		log.Info("duplicate application rejected", "job_id", s.job.ID)
		return ErrDuplicateApplication
	}

	s.setPhase(PhaseCreating)
	record := &models.Candidate{
		ID:           s.wf.newID(),
		OrgID:        s.job.OrgID,
		JobID:        s.job.ID,
		Email:        email,
		Name:         d.FirstName + " " + d.LastName,
		Role:         s.job.Title,
		Stage:        models.StageNew,
		AppliedAt:    s.wf.now().UTC().Format(time.RFC3339),
		Availability: d.Availability,
		Source:       d.Source,
		Metrics:      models.CandidateMetrics{IntroVideoDuration: d.IntroVideoDuration()},
	}
	id, err := s.wf.store.CreateRecord(ctx, record)
	if err != nil {
		if errors.Is(err, models.ErrUniqueViolation) {
			return ErrDuplicateApplication
		}
		return fmt.Errorf("create candidate record: %w", err)
	}

	s.draft = d
	s.update(func() { s.candidateID = id })
	ctx = logger.WithCandidate(ctx, id)
	log = logger.WithContext(ctx)
	log.Info("candidate record created", "job_id", s.job.ID)
	s.wf.record(ctx, id, models.EventCreated, "application received for "+s.job.Title)

	s.setPhase(PhaseUploading)
	s.resumeURL, err = s.wf.uploads.Resume(ctx, s.job.OrgID, s.job.ID, id, d.Resume, func(pct float64) {
		s.update(func() { s.uploadPct = pct })
	})
	if err != nil {
		return err
	}

	s.setPhase(PhaseScreening)
	result, err := s.wf.screening.Run(ctx, ScreenRequest{
		ResumeURL:      s.resumeURL,
		JobTitle:       s.job.Title,
		JobDescription: s.job.Description,
	}, func(pct float64) {
		s.update(func() { s.screeningPct = pct })
	})
	if err != nil {
		s.wf.record(ctx, id, models.EventScreeningError, err.Error())
		// Keep the resume reachable if this submission is lost before recovery.
		if perr := s.wf.store.PatchRecord(ctx, id, models.Patch{"resumeUrl": s.resumeURL}); perr != nil {
			log.Warn("failed to save resume url before manual recovery", "error", perr)
		}
		return err
	}
	s.wf.record(ctx, id, models.EventScreened, fmt.Sprintf("score %.0f", *result.Score))

	s.setPhase(PhaseAttaching)
	if err := s.attachMedia(ctx, id); err != nil {
		return err
	}

	patch := s.assetPatch()
	patch["screeningScore"] = *result.Score
	patch["screeningSummary"] = result.Summary
	if err := s.wf.store.PatchRecord(ctx, id, patch); err != nil {
		return fmt.Errorf("attach assets: %w", err)
	}
	s.wf.record(ctx, id, models.EventAssetsAttached, "")

	s.update(func() {
		s.step = StepSuccess
		s.phase = PhaseDone
	})
	log.Info("application submitted", "score", *result.Score)

	s.wf.notify(ctx, id, email, s.job.Title, record.Name)
	return nil
}

// RecoverManually finishes a submission whose screening failed, using text
// pasted by the applicant. It patches the record found by (email, job) and
// can be repeated; it never creates a record.
func (s *Submission) RecoverManually(ctx context.Context, text string) (err error) {
	if !s.run.TryLock() {
		return ErrInProgress
	}
	defer s.run.Unlock()

	s.mu.Lock()
	closed, awaiting, recovered := s.closed, s.manualRecovery, s.recovered
	s.mu.Unlock()

	switch {
	case closed:
		return ErrSubmissionClosed
	case !awaiting && !recovered:
		return ErrNotAwaitingRecovery
	case s.draft == nil:
		return ErrNotAwaitingRecovery
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return &ValidationError{Field: "resume_text", Message: "paste your resume text to continue"}
	}

	s.update(func() {
		s.submitting = true
		s.errMsg = ""
	})
	defer s.settleRecovery(&err)

	ctx = logger.WithOrg(ctx, s.job.OrgID)

	exists, rec, err := s.wf.guard.Check(ctx, s.job.OrgID, s.job.ID, s.draft.Email)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRecordMissing
	}
	ctx = logger.WithCandidate(ctx, rec.ID)

	s.setPhase(PhaseAttaching)
	if err := s.attachMedia(ctx, rec.ID); err != nil {
		return err
	}

	patch := s.assetPatch()
	patch["resumeText"] = text
	patch["manualInput"] = true
	if err := s.wf.store.PatchRecord(ctx, rec.ID, patch); err != nil {
		return fmt.Errorf("patch candidate with manual input: %w", err)
	}
	s.wf.record(ctx, rec.ID, models.EventManualInput, fmt.Sprintf("%d characters pasted", len(text)))

	s.update(func() {
		s.step = StepSuccess
		s.phase = PhaseDone
		s.manualRecovery = false
		s.recovered = true
		s.candidateID = rec.ID
	})
	logger.WithContext(ctx).Info("application completed with manual resume text")

	if !recovered {
		s.wf.notify(ctx, rec.ID, rec.Email, s.job.Title, rec.Name)
	}
	return nil
}

// attachMedia uploads video and thumbnail once per submission.
func (s *Submission) attachMedia(ctx context.Context, candidateID string) error {
	if s.mediaDone {
		return nil
	}
	urls, err := s.wf.uploads.Media(ctx, s.job.OrgID, s.job.ID, candidateID, s.draft.Video, s.draft.thumbnail())
	if err != nil {
		return err
	}
	s.media = urls
	s.mediaDone = true
	return nil
}

func (s *Submission) assetPatch() models.Patch {
	return models.Patch{
		"resumeUrl":    s.resumeURL,
		"videoUrl":     s.media.VideoURL,
		"thumbnailUrl": s.media.ThumbnailURL,
	}
}

// settle is the single exit handler for Submit: it always clears the
// submitting flag and maps err to the user-facing state.
func (s *Submission) settle(errp *error) {
	if r := recover(); r != nil {
		*errp = fmt.Errorf("unexpected failure: %v", r)
	}
	err := *errp

	s.mu.Lock()
	s.submitting = false
	var ve *ValidationError
	switch {
	case err == nil:
	case errors.Is(err, ErrScreeningFailed):
		s.manualRecovery = true
		s.phase = PhaseManualRecovery
		s.errMsg = screeningFailedMessage
	case errors.As(err, &ve):
		s.step = StepDetails
		s.phase = PhaseNone
		s.errMsg = ve.Message
		if ve.Field != "" && ve != ErrDuplicateApplication {
			s.errMsg = ve.Error()
		}
	default:
		s.step = StepDetails
		s.phase = PhaseNone
		s.errMsg = GenericErrorMessage
	}
	snap := s.touchLocked()
	s.mu.Unlock()

	s.wf.emit(snap)
	if err != nil && !errors.As(err, &ve) && !errors.Is(err, ErrScreeningFailed) {
		logger.WithContext(context.Background()).Error("submission failed", "submission_id", s.ID, "error", err)
	}
}

func (s *Submission) settleRecovery(errp *error) {
	if r := recover(); r != nil {
		*errp = fmt.Errorf("unexpected failure: %v", r)
	}
	err := *errp

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			s.errMsg = ve.Error()
		} else {
			s.errMsg = GenericErrorMessage
		}
		if s.manualRecovery {
			s.phase = PhaseManualRecovery
		}
	}
	snap := s.touchLocked()
	s.mu.Unlock()
	s.wf.emit(snap)
}

// RecoverStateless applies pasted resume text to the record for (org, job,
// email) when the in-memory submission is gone. Media still pending on the
// lost submission is not recovered.
func (w *Workflow) RecoverStateless(ctx context.Context, orgID, jobID, email, text string) (*models.Candidate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Field: "resume_text", Message: "paste your resume text to continue"}
	}
	if strings.TrimSpace(email) == "" {
		return nil, &ValidationError{Field: "email", Message: "is required"}
	}

	ctx = logger.WithOrg(ctx, orgID)
	exists, rec, err := w.guard.Check(ctx, orgID, jobID, email)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRecordMissing
	}
	ctx = logger.WithCandidate(ctx, rec.ID)
	if !awaitingRecovery(rec) {
		logger.WithContext(ctx).Warn("manual resume text refused for screened candidate")
		return nil, ErrNotAwaitingRecovery
	}

	if err := w.store.PatchRecord(ctx, rec.ID, models.Patch{"resumeText": text, "manualInput": true}); err != nil {
		return nil, fmt.Errorf("patch candidate with manual input: %w", err)
	}
	w.record(ctx, rec.ID, models.EventManualInput, fmt.Sprintf("%d characters pasted", len(text)))
	logger.WithContext(ctx).Info("manual resume text applied without live submission")

	return w.store.Get(ctx, rec.ID)
}

// awaitingRecovery reports whether rec stopped at a failed screening. A
// repeated manual paste is allowed; a screened or advanced record is not.
func awaitingRecovery(rec *models.Candidate) bool {
	return rec.ScreeningScore == nil && rec.Stage == models.StageNew
}

func (w *Workflow) emit(snap Snapshot) {
	if w.observer != nil {
		w.observer(snap)
	}
}

func (w *Workflow) record(ctx context.Context, candidateID, eventType, details string) {
	if w.events == nil {
		return
	}
	if err := w.events.RecordEvent(ctx, candidateID, eventType, details); err != nil {
		logger.WithContext(ctx).Warn("failed to record candidate event", "event", eventType, "error", err)
	}
}

// notify sends the receipt in the background. Failures are logged only.
func (w *Workflow) notify(ctx context.Context, candidateID, email, jobTitle, name string) {
	if w.notifier == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	w.bg.Add(1)
	go func() {
		defer w.bg.Done()

		ctx, cancel := context.WithTimeout(ctx, w.notifyTimeout)
		defer cancel()

		if err := w.notifier.SendApplicationReceipt(ctx, email, jobTitle, name); err != nil {
			logger.WithContext(ctx).Warn("application receipt not sent", "error", err)
			return
		}
		w.record(ctx, candidateID, models.EventNotified, "receipt sent to "+email)
	}()
}
