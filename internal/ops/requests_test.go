package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardRequestLifecycle(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	req, err := s.CreateCardRequest(ctx, CardRequest{
		RequestorID: "emp-7",
		RequestType: RequestNewCard,
		Status:      RequestCompleted, // caller-supplied status is discarded
		Details:     RequestDetails{CardHolderName: "Carol Diaz", Reason: "new hire"},
	})
	require.NoError(t, err)
	assert.Equal(t, RequestPending, req.Status)
	assert.Empty(t, req.ApprovedBy)
	assert.Nil(t, req.ApprovalDate)
	assert.False(t, req.RequestedDate.IsZero())

	approved, err := s.UpdateCardRequestStatus(ctx, req.ID, RequestApproved, "u1")
	require.NoError(t, err)
	assert.Equal(t, RequestApproved, approved.Status)
	assert.Equal(t, "u1", approved.ApprovedBy)
	require.NotNil(t, approved.ApprovalDate)
	assert.False(t, approved.ApprovalDate.Before(approved.RequestedDate))

	completed, err := s.UpdateCardRequestStatus(ctx, req.ID, RequestCompleted, "u1")
	require.NoError(t, err)
	assert.Equal(t, RequestCompleted, completed.Status)
}

func TestCardRequestIllegalTransitions(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	cases := []struct {
		name string
		prep []RequestStatus
		next RequestStatus
	}{
		{"pending to completed", nil, RequestCompleted},
		{"approved back to pending", []RequestStatus{RequestApproved}, RequestPending},
		{"rejected to approved", []RequestStatus{RequestRejected}, RequestApproved},
		{"completed to rejected", []RequestStatus{RequestApproved, RequestCompleted}, RequestRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := s.CreateCardRequest(ctx, CardRequest{RequestorID: "emp-1", RequestType: RequestLimitIncrease,
				Details: RequestDetails{Reason: "travel"}})
			require.NoError(t, err)
			for _, st := range tc.prep {
				_, err = s.UpdateCardRequestStatus(ctx, req.ID, st, "u1")
				require.NoError(t, err)
			}

			_, err = s.UpdateCardRequestStatus(ctx, req.ID, tc.next, "u2")
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestCardRequestUnknownID(t *testing.T) {
	s := newTestStore()
	_, err := s.UpdateCardRequestStatus(context.Background(), "ghost", RequestApproved, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}
