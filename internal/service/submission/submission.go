// internal/service/submission/submission.go
package submission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"qarilive-service/internal/domain/submission"
	"qarilive-service/internal/pkg/dataurl"
	xerrors "qarilive-service/internal/pkg/errors"
	"qarilive-service/internal/pkg/identity"
	"qarilive-service/internal/repository/drive"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Store interface {
	Create(ctx context.Context, s *submission.Submission) error
	ListByAgent(ctx context.Context, agentUserID string) ([]submission.Submission, error)
	ListByMACode(ctx context.Context, maCode, status string) ([]submission.Submission, error)
}

type FileHost interface {
	Upload(ctx context.Context, u drive.Upload) (*drive.StoredFile, error)
}

// envelopeAllowance is the room left for the JSON fields around the proof.
const envelopeAllowance = 64 << 10

type Config struct {
	MaxProofBytes int
	FilePrefix    string
}

type SubmissionService struct {
	store  Store
	files  FileHost
	cfg    Config
	now    func() time.Time
	logger *zap.Logger
}

func NewSubmissionService(store Store, files FileHost, cfg Config, logger *zap.Logger) *SubmissionService {
	if cfg.MaxProofBytes <= 0 {
		cfg.MaxProofBytes = dataurl.DefaultMaxBytes
	}
	if cfg.FilePrefix == "" {
		cfg.FilePrefix = "QariLive"
	}
	return &SubmissionService{
		store:  store,
		files:  files,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// BodyLimit is the largest request body worth reading: the proof ceiling
// plus the other fields.
func (s *SubmissionService) BodyLimit() int64 {
	return int64(s.cfg.MaxProofBytes) + envelopeAllowance
}

// Create validates the claim, uploads the proof and records the row as
// pending. The upload is not undone if the insert fails; the file id is
// logged so the orphan can be removed by hand.
func (s *SubmissionService) Create(ctx context.Context, p *identity.Principal, req *submission.CreateRequest) (*submission.CreateResponse, error) {
	maCode := identity.NormalizeCode(req.MACode)
	customerName := strings.TrimSpace(req.CustomerName)
	customerPhone := strings.TrimSpace(req.CustomerPhone)

	switch {
	case maCode == "":
		return nil, xerrors.Validation("Missing ma_code")
	case customerName == "":
		return nil, xerrors.Validation("Missing customer_name")
	case customerPhone == "":
		return nil, xerrors.Validation("Missing customer_phone")
	case strings.TrimSpace(req.ProofDataURL) == "":
		return nil, xerrors.Validation("Missing proof_data_url")
	}

	amount, err := parseAmount(string(req.PurchaseAmountRM))
	if err != nil {
		return nil, err
	}

	proof, err := dataurl.Parse(req.ProofDataURL, s.cfg.MaxProofBytes)
	if err != nil {
		return nil, err
	}

	name := s.storageName(maCode, req.ProofFilename, proof.MIMEType)
	stored, err := s.files.Upload(ctx, drive.Upload{
		Name:     name,
		MIMEType: proof.MIMEType,
		Data:     proof.Data,
	})
	if err != nil {
		s.logger.Error("failed to upload proof", zap.String("ma_code", maCode), zap.String("agent_id", p.UserID), zap.Error(err))
		return nil, xerrors.Relabel(err, "Proof upload failed")
	}

	sub := &submission.Submission{
		MACode:           maCode,
		AgentUserID:      p.UserID,
		AgentName:        firstNonEmpty(req.AgentName, p.Name),
		AgentEmail:       strings.ToLower(firstNonEmpty(req.AgentEmail, p.Email)),
		CustomerName:     customerName,
		CustomerPhone:    customerPhone,
		CustomerAddress:  strings.TrimSpace(req.CustomerAddress),
		PurchaseAmountRM: amount,
		PurchaseDate:     optional(req.PurchaseDate),
		Notes:            optional(req.Notes),
		ProofURL:         stored.URL,
		ProofFileID:      stored.FileID,
		Status:           submission.StatusPending,
	}
	if err := s.store.Create(ctx, sub); err != nil {
		s.logger.Error("failed to record submission, uploaded proof is orphaned",
			zap.String("ma_code", maCode),
			zap.String("agent_id", p.UserID),
			zap.String("file_id", stored.FileID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("submission created",
		zap.Int64("submission_id", sub.ID),
		zap.String("ma_code", maCode),
		zap.String("agent_id", p.UserID),
	)

	return &submission.CreateResponse{
		ID:        sub.ID,
		CreatedAt: sub.CreatedAt,
		ProofURL:  sub.ProofURL,
	}, nil
}

// ListOwn returns the caller's latest claims.
func (s *SubmissionService) ListOwn(ctx context.Context, p *identity.Principal) ([]submission.Submission, error) {
	return s.store.ListByAgent(ctx, p.UserID)
}

// ListForMasterAgent returns the latest claims filed under maCode, optionally
// only those with the given status.
func (s *SubmissionService) ListForMasterAgent(ctx context.Context, maCode, status string) ([]submission.Submission, error) {
	maCode = identity.NormalizeCode(maCode)
	if maCode == "" {
		return nil, xerrors.Validation("Missing ma_code")
	}
	return s.store.ListByMACode(ctx, maCode, strings.ToLower(strings.TrimSpace(status)))
}

func (s *SubmissionService) storageName(maCode, filename, mimeType string) string {
	return fmt.Sprintf("%s_%s_%d_%s.%s",
		s.cfg.FilePrefix,
		maCode,
		s.now().UnixMilli(),
		dataurl.SanitizeFilename(filename),
		dataurl.ExtensionFor(mimeType),
	)
}

// maxAmount is the first value purchase_amount_rm's NUMERIC(12,2) column
// cannot hold.
var maxAmount = decimal.New(1, 10)

func parseAmount(raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, xerrors.Validation("Invalid purchase_amount_rm")
	}
	d = d.Round(2)
	if d.GreaterThanOrEqual(maxAmount) {
		return nil, xerrors.Validation("Invalid purchase_amount_rm")
	}
	v := d.StringFixed(2)
	return &v, nil
}

func optional(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
