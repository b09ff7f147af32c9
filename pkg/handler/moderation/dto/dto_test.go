package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/idgen"
)

func TestToRecord_EncodesOnlyTheTarget(t *testing.T) {
	enc, err := idgen.New("dto-test")
	require.NoError(t, err)

	r, err := model.NewModerationRecord(model.ActionTypeCommentRefusal, "广告", 3, model.TargetingComment(9))
	require.NoError(t, err)
	r.ID = 5
	r.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	resp, err := ToRecord(r, enc)
	require.NoError(t, err)
	assert.Equal(t, "comment_refusal", resp.ActionType)
	assert.Nil(t, resp.TargetUserID)
	assert.Nil(t, resp.TargetArticleID)
	require.NotNil(t, resp.TargetCommentID)

	commentID, err := enc.Decode(*resp.TargetCommentID, idgen.EntityTypeComment)
	require.NoError(t, err)
	assert.Equal(t, uint(9), commentID)

	moderatorID, err := enc.Decode(resp.ModeratorID, idgen.EntityTypeUser)
	require.NoError(t, err)
	assert.Equal(t, uint(3), moderatorID)
}
