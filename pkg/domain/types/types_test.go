package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/auditflow/pkg/domain/types"
)

func TestFindingCategory_CAPAKind(t *testing.T) {
	tests := []struct {
		category  types.FindingCategory
		wantKind  types.CAPAKind
		wantCase  bool
		companion types.CompanionKind
	}{
		{types.FindingCategoryNonConformity, types.CAPAKindCorrective, true, types.CompanionKindNonConformity},
		{types.FindingCategoryImprovement, types.CAPAKindPreventive, true, types.CompanionKindImprovementOpportunity},
		{types.FindingCategoryCompliance, "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			kind, ok := tt.category.CAPAKind()
			gt.V(t, ok).Equal(tt.wantCase)
			gt.V(t, kind).Equal(tt.wantKind)
			gt.V(t, tt.category.RequiresCAPA()).Equal(tt.wantCase)
			if ok {
				gt.V(t, kind.CompanionKind()).Equal(tt.companion)
			}
		})
	}
}

func TestParseFindingCategory(t *testing.T) {
	for _, c := range types.AllFindingCategories() {
		got, err := types.ParseFindingCategory(c.String())
		gt.NoError(t, err)
		gt.V(t, got).Equal(c)
	}

	_, err := types.ParseFindingCategory("OBSERVATION")
	gt.Error(t, err)
	_, err = types.ParseFindingCategory("")
	gt.Error(t, err)
}

func TestFollowUpAction_Status(t *testing.T) {
	tests := []struct {
		action types.FollowUpAction
		capa   types.CAPAStatus
		stage  types.StageStatus
	}{
		{types.FollowUpActionFullyCompleted, types.CAPAStatusCompleted, types.StageStatusClosed},
		{types.FollowUpActionPartiallyCompleted, types.CAPAStatusInProgress, types.StageStatusOpen},
		{types.FollowUpActionNoActionTaken, types.CAPAStatusOpen, types.StageStatusOpen},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			gt.B(t, tt.action.IsValid()).True()
			gt.V(t, tt.action.CAPAStatus()).Equal(tt.capa)
			gt.V(t, tt.action.StageStatus()).Equal(tt.stage)
		})
	}

	gt.A(t, types.AllFollowUpActions()).Length(3)
	_, err := types.ParseFollowUpAction("ACTION_ABANDONED")
	gt.Error(t, err)
}

func TestParseReviewResponse(t *testing.T) {
	got, err := types.ParseReviewResponse("YES")
	gt.NoError(t, err)
	gt.V(t, got).Equal(types.ReviewResponseYes)

	got, err = types.ParseReviewResponse("NO")
	gt.NoError(t, err)
	gt.V(t, got).Equal(types.ReviewResponseNo)

	_, err = types.ParseReviewResponse("MAYBE")
	gt.Error(t, err)
}

func TestParseCAPAKind(t *testing.T) {
	got, err := types.ParseCAPAKind("CORRECTIVE")
	gt.NoError(t, err)
	gt.V(t, got).Equal(types.CAPAKindCorrective)
	gt.S(t, got.Label()).NotEqual("")

	_, err = types.ParseCAPAKind("DETECTIVE")
	gt.Error(t, err)
}

func TestDispatchStatus_Delivered(t *testing.T) {
	gt.B(t, types.DispatchStatusSuccess.Delivered()).True()
	gt.B(t, types.DispatchStatusPartialSuccess.Delivered()).True()
	gt.B(t, types.DispatchStatusFailed.Delivered()).False()
	gt.B(t, types.DispatchStatus("LOST").IsValid()).False()
}
