package handler

import (
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/faults"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	if err == nil {
		return nil
	}

	switch faults.Classify(err) {
	case faults.KindInvalid:
		return status.Error(codes.InvalidArgument, err.Error())
	case faults.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case faults.KindConflict:
		return status.Error(codes.AlreadyExists, err.Error())
	case faults.KindPrecondition:
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
