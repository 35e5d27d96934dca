package leave

import (
	"context"
)

type LeaveService interface {
	Submit(ctx context.Context, req SubmitRequest) (ApplicationResponse, error)
	Approve(ctx context.Context, req DecisionRequest) (ApplicationResponse, error)
	Reject(ctx context.Context, req RejectRequest) (ApplicationResponse, error)
	Cancel(ctx context.Context, req CancelRequest) (ApplicationResponse, error)
	GetApplication(ctx context.Context, id string) (ApplicationResponse, error)
	GetBalance(ctx context.Context, req BalanceRequest) (BalanceResponse, error)
}
