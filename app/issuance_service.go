package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"verisure/adapters/sheet"
	"verisure/domain/core"
	"verisure/domain/credential"
	"verisure/domain/session"
	"verisure/internal/config"
	"verisure/internal/confirm"
	"verisure/internal/errors"
	"verisure/internal/metrics"
	"verisure/internal/preview"
	"verisure/internal/schema"
	"verisure/models"
	"verisure/ports"

	"go.uber.org/zap"
)

// Issue button labels
const (
	LabelSubmitting  = "Issuing..."
	LabelIssueSingle = "Issue credential"
	LabelIssueBatch  = "Issue batch"
)

// MsgNoRows is shown when batch issuance is requested without a preview.
const MsgNoRows = "Upload a CSV and preview it before issuing."

// ButtonState is the observable state of one issue button
type ButtonState struct {
	Label      string `json:"label"`
	Disabled   bool   `json:"disabled"`
	Submitting bool   `json:"submitting"`
}

// UploadSummary describes the record set currently loaded for batch issuance
type UploadSummary struct {
	ID       core.UploadID `json:"id"`
	FileName string        `json:"file_name"`
	Count    int           `json:"count"`
}

// UploadResult is returned after a file was parsed and validated
type UploadResult struct {
	UploadSummary
	Preview     preview.Table `json:"preview"`
	PreviewHTML string        `json:"preview_html"`
	Message     string        `json:"message"`
}

// IssuanceState is everything the console needs to draw the issuer page
type IssuanceState struct {
	Upload *UploadSummary `json:"upload,omitempty"`
	Single ButtonState    `json:"single_button"`
	Batch  ButtonState    `json:"batch_button"`
	Dialog confirm.Dialog `json:"dialog"`
}

// Outcome is the result of a confirmed issuance
type Outcome struct {
	Kind   confirm.Kind             `json:"kind"`
	Notice Notice                   `json:"notice"`
	Single *credential.SingleResult `json:"single,omitempty"`
	Batch  *credential.BatchResult  `json:"batch,omitempty"`
	// ClearForm tells the front-end to reset the manual entry form.
	ClearForm bool `json:"clear_form"`
}

type singlePayload struct {
	Issuer session.Issuer
	Form   credential.SingleIssuance
}

type batchPayload struct {
	Issuer   session.Issuer
	UploadID core.UploadID
	FileName string
	Set      *credential.RecordSet
}

// batchUpload is the record set owned by the issuer page. It is replaced on
// every file selection and discarded after every submission attempt.
type batchUpload struct {
	id       core.UploadID
	fileName string
	set      *credential.RecordSet
}

// IssuanceService runs the single and batch issuance flows behind the
// confirmation gate
type IssuanceService struct {
	sessions ports.SessionRepository
	api      ports.IssuerAPI
	history  ports.HistoryRepository
	gate     *confirm.Gate
	reader   *sheet.Reader
	cfg      config.IssuanceConfig
	profile  string
	logger   *zap.Logger

	mu         sync.Mutex
	upload     *batchUpload
	submitting map[confirm.Kind]bool
}

// NewIssuanceService creates an issuance service. history may be nil.
func NewIssuanceService(
	sessions ports.SessionRepository,
	api ports.IssuerAPI,
	history ports.HistoryRepository,
	gate *confirm.Gate,
	cfg config.IssuanceConfig,
	profile string,
	logger *zap.Logger,
) *IssuanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gate == nil {
		gate = confirm.NewGate(logger)
	}
	return &IssuanceService{
		sessions:   sessions,
		api:        api,
		history:    history,
		gate:       gate,
		reader:     sheet.NewReader(logger),
		cfg:        cfg,
		profile:    profile,
		logger:     logger.Named("issuance"),
		submitting: make(map[confirm.Kind]bool),
	}
}

// Gate exposes the confirmation gate shared by both flows
func (s *IssuanceService) Gate() *confirm.Gate {
	return s.gate
}

func (s *IssuanceService) requireIssuer(ctx context.Context) (session.Issuer, error) {
	sess, err := s.sessions.Get(ctx, s.profile)
	if err != nil {
		return session.Issuer{}, err
	}
	return session.RequireIssuer(sess)
}

// SelectFile parses and validates an uploaded file and makes it the record
// set for batch issuance. The previous set is dropped before parsing starts
// so a failed upload never leaves stale rows behind.
func (s *IssuanceService) SelectFile(ctx context.Context, name string, data []byte) (*UploadResult, error) {
	if _, err := s.requireIssuer(ctx); err != nil {
		return nil, err
	}

	s.ClearUpload()

	rows, err := s.reader.ReadRows(name, data)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("unreadable").Inc()
		return nil, err
	}
	set, err := schema.Validate(rows)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(strings.ToLower(errors.GetCode(err))).Inc()
		s.logger.Info("upload rejected", zap.String("file", name), zap.Error(err))
		return nil, err
	}

	up := &batchUpload{id: core.NewUploadID(), fileName: name, set: set}
	s.mu.Lock()
	s.upload = up
	s.mu.Unlock()
	metrics.UploadsTotal.WithLabelValues("ok").Inc()

	table := preview.Render(set.Header, set.Records, s.cfg.PreviewLimit)
	msg := fmt.Sprintf("Loaded %d valid rows.", set.Len())
	if table.Truncated {
		msg = fmt.Sprintf("Loaded %d valid rows. Showing the first %d.", set.Len(), table.Shown)
	}

	s.logger.Info("upload accepted",
		zap.String("upload", up.id.String()),
		zap.String("file", name),
		zap.Int("rows", len(rows)-1),
		zap.Int("valid", set.Len()))

	return &UploadResult{
		UploadSummary: UploadSummary{ID: up.id, FileName: name, Count: set.Len()},
		Preview:       table,
		PreviewHTML:   table.HTML(),
		Message:       msg,
	}, nil
}

// ClearUpload discards the loaded record set
func (s *IssuanceService) ClearUpload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upload = nil
}

// discardUpload drops the record set if it is still the one submitted
func (s *IssuanceService) discardUpload(id core.UploadID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upload != nil && s.upload.id == id {
		s.upload = nil
	}
}

// RequestBatch opens the confirmation dialog for the loaded record set
func (s *IssuanceService) RequestBatch(ctx context.Context) (confirm.Dialog, error) {
	issuer, err := s.requireIssuer(ctx)
	if err != nil {
		return confirm.Dialog{}, err
	}

	s.mu.Lock()
	up := s.upload
	s.mu.Unlock()
	if up == nil || up.set.Len() == 0 {
		return confirm.Dialog{}, errors.New(errors.CodeNoRows, MsgNoRows)
	}

	_, dialog := s.gate.Request(confirm.Intent{
		Kind: confirm.KindBatch,
		Payload: batchPayload{
			Issuer:   issuer,
			UploadID: up.id,
			FileName: up.fileName,
			Set:      up.set.Snapshot(),
		},
	})
	return dialog, nil
}

// RequestSingle validates the manual entry form and opens the confirmation
// dialog for it
func (s *IssuanceService) RequestSingle(ctx context.Context, form credential.SingleIssuance) (confirm.Dialog, error) {
	issuer, err := s.requireIssuer(ctx)
	if err != nil {
		return confirm.Dialog{}, err
	}

	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return confirm.Dialog{}, err
	}

	_, dialog := s.gate.Request(confirm.Intent{
		Kind:    confirm.KindSingle,
		Payload: singlePayload{Issuer: issuer, Form: form},
	})
	return dialog, nil
}

// Confirm executes the intent bound to the dialog. An empty id confirms
// whatever is bound.
func (s *IssuanceService) Confirm(ctx context.Context, id core.IntentID) (*Outcome, error) {
	var out *Outcome
	err := s.gate.ConfirmIntent(ctx, id, s.executor(&out))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ConfirmWith drives the bound intent through a prompter, re-asking after
// each failure until it succeeds or the user declines
func (s *IssuanceService) ConfirmWith(ctx context.Context, p confirm.Prompter) (*Outcome, error) {
	intent, ok := s.gate.Pending()
	if !ok {
		return nil, confirm.ErrNothingPending
	}
	var out *Outcome
	if err := s.gate.Run(ctx, intent, p, s.executor(&out)); err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel closes the dialog without issuing
func (s *IssuanceService) Cancel() {
	s.gate.Cancel()
}

func (s *IssuanceService) executor(out **Outcome) confirm.Executor {
	return confirm.ExecutorFunc(func(ctx context.Context, intent confirm.Intent) error {
		o, err := s.Execute(ctx, intent)
		if err != nil {
			return err
		}
		*out = o
		return nil
	})
}

// Execute performs a confirmed intent
func (s *IssuanceService) Execute(ctx context.Context, intent confirm.Intent) (*Outcome, error) {
	switch p := intent.Payload.(type) {
	case singlePayload:
		return s.executeSingle(ctx, p)
	case batchPayload:
		return s.executeBatch(ctx, p)
	default:
		return nil, errors.InternalError(fmt.Sprintf("unsupported intent payload %T", intent.Payload))
	}
}

func (s *IssuanceService) beginSubmit(kind confirm.Kind) func() {
	s.mu.Lock()
	s.submitting[kind] = true
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.submitting[kind] = false
		s.mu.Unlock()
	}
}

func (s *IssuanceService) executeSingle(ctx context.Context, p singlePayload) (*Outcome, error) {
	defer s.beginSubmit(confirm.KindSingle)()

	attempt := &models.IssuanceAttempt{
		Mode:        models.IssuanceModeSingle,
		IssuerEmail: p.Issuer.Email,
		RowCount:    1,
	}

	res, err := s.api.Issue(ctx, credential.NewIssueRequest(p.Issuer.Email, p.Form))
	if err != nil {
		attempt.Outcome = models.OutcomeFailed
		attempt.Failed = 1
		attempt.ErrorMessage = errors.UserMessage(err)
		s.record(ctx, attempt)
		return nil, err
	}

	attempt.Outcome = models.OutcomeIssued
	attempt.Issued = 1
	attempt.CredentialID = res.CredentialID
	s.record(ctx, attempt)

	return &Outcome{
		Kind:      confirm.KindSingle,
		Notice:    NewNotice("Credential issued", res.Summary()),
		Single:    &res,
		ClearForm: true,
	}, nil
}

func (s *IssuanceService) executeBatch(ctx context.Context, p batchPayload) (*Outcome, error) {
	defer s.beginSubmit(confirm.KindBatch)()
	defer s.discardUpload(p.UploadID)

	attempt := &models.IssuanceAttempt{
		Mode:        models.IssuanceModeBatch,
		IssuerEmail: p.Issuer.Email,
		FileName:    p.FileName,
		RowCount:    p.Set.Len(),
	}

	res, err := s.api.IssueBatch(ctx, credential.NewBatchRequest(p.Issuer.Email, p.Set))
	if err != nil {
		attempt.Outcome = models.OutcomeFailed
		attempt.ErrorMessage = errors.UserMessage(err)
		s.record(ctx, attempt)
		return nil, err
	}

	metrics.BatchRowsTotal.WithLabelValues("issued").Add(float64(res.Issued))
	metrics.BatchRowsTotal.WithLabelValues("failed").Add(float64(res.Failed))

	attempt.Outcome = models.OutcomeIssued
	if res.Failed > 0 || len(res.Failures()) > 0 {
		attempt.Outcome = models.OutcomePartial
	}
	attempt.Issued = res.Issued
	attempt.Failed = res.Failed
	if f := res.Failures(); len(f) > 0 {
		attempt.ErrorMessage = f[0].Error
	}
	s.record(ctx, attempt)

	return &Outcome{
		Kind:   confirm.KindBatch,
		Notice: NewNotice("Batch issued", res.Summary(s.errorSample())),
		Batch:  &res,
	}, nil
}

func (s *IssuanceService) errorSample() int {
	if s.cfg.ErrorSample > 0 {
		return s.cfg.ErrorSample
	}
	return 5
}

// record stores the attempt. History is best effort and never fails an
// issuance that already reached the API.
func (s *IssuanceService) record(ctx context.Context, attempt *models.IssuanceAttempt) {
	metrics.IssuanceAttemptsTotal.WithLabelValues(string(attempt.Mode), string(attempt.Outcome)).Inc()
	if s.history == nil {
		return
	}
	attempt.CreatedAt = time.Now().UTC()
	if err := s.history.Record(context.WithoutCancel(ctx), attempt); err != nil {
		s.logger.Warn("failed to record issuance attempt",
			zap.String("mode", string(attempt.Mode)),
			zap.Error(err))
	}
}

// History lists recent issuance attempts
func (s *IssuanceService) History(ctx context.Context, limit int) ([]*models.IssuanceAttempt, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx, limit)
}

// State reports the upload, button and dialog state
func (s *IssuanceService) State() IssuanceState {
	s.mu.Lock()
	st := IssuanceState{
		Single: buttonState(LabelIssueSingle, s.submitting[confirm.KindSingle], false),
		Batch:  buttonState(LabelIssueBatch, s.submitting[confirm.KindBatch], s.upload == nil),
	}
	if s.upload != nil {
		st.Upload = &UploadSummary{ID: s.upload.id, FileName: s.upload.fileName, Count: s.upload.set.Len()}
	}
	s.mu.Unlock()

	st.Dialog = s.gate.Dialog()
	return st
}

func buttonState(idle string, submitting, empty bool) ButtonState {
	if submitting {
		return ButtonState{Label: LabelSubmitting, Disabled: true, Submitting: true}
	}
	return ButtonState{Label: idle, Disabled: empty}
}
