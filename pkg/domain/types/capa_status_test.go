package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/auditflow/pkg/domain/types"
)

func TestParseCAPAStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.CAPAStatus
		wantErr bool
	}{
		{name: "open", input: "OPEN", want: types.CAPAStatusOpen},
		{name: "in progress", input: "IN_PROGRESS", want: types.CAPAStatusInProgress},
		{name: "completed", input: "COMPLETED", want: types.CAPAStatusCompleted},
		{name: "verified", input: "VERIFIED", want: types.CAPAStatusVerified},
		{name: "lower case is rejected", input: "open", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseCAPAStatus(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
			} else {
				gt.NoError(t, err)
				gt.V(t, got).Equal(tt.want)
			}
		})
	}
}

func TestAllCAPAStatuses(t *testing.T) {
	statuses := types.AllCAPAStatuses()
	gt.A(t, statuses).Length(4)

	for _, status := range statuses {
		gt.B(t, status.IsValid()).
			Describef("Status %s should be valid", status).
			True()
	}
	gt.B(t, types.CAPAStatusVerified.IsTerminal()).True()
	gt.B(t, types.CAPAStatusCompleted.IsTerminal()).False()
	gt.V(t, types.CAPAStatus("").Normalize()).Equal(types.CAPAStatusOpen)
}

func TestReviewResponse_IsValid(t *testing.T) {
	gt.B(t, types.ReviewResponseYes.IsValid()).True()
	gt.B(t, types.ReviewResponseNo.IsValid()).True()
	gt.B(t, types.ReviewResponse("yes").IsValid()).False()
	gt.B(t, types.ReviewResponse("").IsValid()).False()
}
