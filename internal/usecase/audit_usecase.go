package usecase

import (
	"context"
	"encoding/json"
	"time"

	"secondhand/internal/domain/model"
	repo "secondhand/internal/repository"

	"github.com/sirupsen/logrus"
)

type AuditUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditUsecase(auditRepo repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{auditRepo: auditRepo}
}

type AuditListInput struct {
	ActorUserID  string
	Action       string
	ResourceType string
	ResourceID   string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// 管理者だけが見られる
func (u *AuditUsecase) List(ctx context.Context, actor Actor, in AuditListInput) ([]model.AuditLog, error) {
	if !actor.Is(model.RoleAdmin) {
		return nil, errForbidden("Only admin can perform this action.")
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return nil, errValidation("from must be before to.")
	}
	if in.Limit < 0 || in.Offset < 0 {
		return nil, errValidation("limit and offset must be non-negative.")
	}

	logs, err := u.auditRepo.List(ctx, repo.AuditLogFilter{
		ActorUserID:  in.ActorUserID,
		Action:       model.AuditAction(in.Action),
		ResourceType: model.AuditResourceType(in.ResourceType),
		ResourceID:   in.ResourceID,
		CreatedFrom:  in.From,
		CreatedTo:    in.To,
		Limit:        in.Limit,
		Offset:       in.Offset,
	})
	if err != nil {
		return nil, errInternal(err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}

// 監査ログを残す
// 本体の操作はもう終わっているので、失敗はログに出すだけ
type auditRecorder struct {
	auditRepo repo.AuditLogRepository
	idGen     IDGenerator
	clock     Clock
	log       logrus.FieldLogger
}

func (a auditRecorder) record(ctx context.Context, actor Actor, action model.AuditAction, resType model.AuditResourceType, resID string, before, after any) {
	if a.auditRepo == nil {
		return
	}
	entry := model.AuditLog{
		ID:           a.idGen.NewID(),
		ActorUserID:  actor.UserID,
		Action:       action,
		ResourceType: resType,
		ResourceID:   resID,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(after),
		CreatedAt:    a.clock.Now(),
	}
	if err := a.auditRepo.Create(ctx, entry); err != nil {
		a.log.WithError(err).WithFields(logrus.Fields{
			"action":      action,
			"resource_id": resID,
		}).Error("failed to create audit log")
	}
}

func toJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
