package ops

import (
	"context"
	"fmt"
	"time"

	"cardops.org/internal/ids"
)

// CreateCardRequest always creates in pending with the request date assigned
// at call time; any status or date supplied by the caller is discarded.
func (s *InMemory) CreateCardRequest(ctx context.Context, req CardRequest) (CardRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = ids.New()
	req.Status = RequestPending
	req.RequestedDate = time.Now().UTC()
	req.ApprovedBy = ""
	req.ApprovalDate = nil
	s.cardRequests = append(s.cardRequests, cloneRequest(req))
	s.committed("create_card_request", req.ID)
	return req, nil
}

// Legal request transitions. Rejected and completed are terminal.
var requestTransitions = map[RequestStatus]map[RequestStatus]bool{
	RequestPending:  {RequestApproved: true, RequestRejected: true},
	RequestApproved: {RequestCompleted: true},
}

// UpdateCardRequestStatus moves a request through its state machine.
// ApprovedBy and ApprovalDate are set atomically with the transition.
func (s *InMemory) UpdateCardRequestStatus(ctx context.Context, id string, status RequestStatus, approverID string) (CardRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cardRequests {
		if s.cardRequests[i].ID != id {
			continue
		}
		r := &s.cardRequests[i]
		if !requestTransitions[r.Status][status] {
			s.rejected("update_card_request_status")
			return CardRequest{}, fmt.Errorf("update_card_request_status: %s -> %s: %w", r.Status, status, ErrInvalidTransition)
		}
		now := time.Now().UTC()
		r.Status = status
		r.ApprovedBy = approverID
		r.ApprovalDate = &now
		s.committed("update_card_request_status", id)
		return cloneRequest(*r), nil
	}
	return CardRequest{}, s.missing("update_card_request_status")
}
