package dto

import (
	"time"

	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/idgen"
)

// RecordResponse 是一条审核记录，目标字段中恰好一个非空
type RecordResponse struct {
	ID              string    `json:"id"`
	ActionType      string    `json:"action_type"`
	Description     string    `json:"description"`
	ModeratorID     string    `json:"moderator_id"`
	TargetUserID    *string   `json:"target_user_id,omitempty"`
	TargetArticleID *string   `json:"target_article_id,omitempty"`
	TargetCommentID *string   `json:"target_comment_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func encodeTarget(enc *idgen.Encoder, id *uint, kind idgen.EntityType) (*string, error) {
	if id == nil {
		return nil, nil
	}
	publicID, err := enc.Encode(*id, kind)
	if err != nil {
		return nil, err
	}
	return &publicID, nil
}

func ToRecord(r *model.ModerationRecord, enc *idgen.Encoder) (*RecordResponse, error) {
	id, err := enc.Encode(r.ID, idgen.EntityTypeModerationRecord)
	if err != nil {
		return nil, err
	}
	moderatorID, err := enc.Encode(r.ModeratorID, idgen.EntityTypeUser)
	if err != nil {
		return nil, err
	}
	resp := &RecordResponse{
		ID:          id,
		ActionType:  r.ActionType.String(),
		Description: r.Description,
		ModeratorID: moderatorID,
		CreatedAt:   r.CreatedAt,
	}
	if resp.TargetUserID, err = encodeTarget(enc, r.Target.UserID, idgen.EntityTypeUser); err != nil {
		return nil, err
	}
	if resp.TargetArticleID, err = encodeTarget(enc, r.Target.ArticleID, idgen.EntityTypeArticle); err != nil {
		return nil, err
	}
	if resp.TargetCommentID, err = encodeTarget(enc, r.Target.CommentID, idgen.EntityTypeComment); err != nil {
		return nil, err
	}
	return resp, nil
}

func ToRecordList(records []*model.ModerationRecord, enc *idgen.Encoder) ([]*RecordResponse, error) {
	list := make([]*RecordResponse, 0, len(records))
	for _, r := range records {
		item, err := ToRecord(r, enc)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, nil
}
