package errno

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	SuccessCode                = 0
	ServiceErrCode             = 10001
	ParamErrCode               = 10002
	ValidationErrCode          = 10003
	AuthorizationFailedErrCode = 10101
	TokenInvailedErrCode       = 10102
	TokenRevokedErrCode        = 10103
	ForbiddenErrCode           = 10104
	UserAlreadyExistErrCode    = 10201
	UserNotExistErrCode        = 10202
	GifNotExistErrCode         = 10301
	FileTypeErrCode            = 10302
	FileTooLargeErrCode        = 10303
	CommentNotExistErrCode     = 10401
	CollectionNotExistErrCode  = 10501
	ConflictErrCode            = 10601
	NotFoundErrCode            = 10602
	TooManyRequestsErrCode     = 10701
	ServiceBusyErrCode         = 10702
)

type ErrNo struct {
	ErrCode int64
	ErrMsg  string
}

func (e ErrNo) Error() string {
	return fmt.Sprintf("err_code=%d, err_msg=%s", e.ErrCode, e.ErrMsg)
}

func NewErrNo(code int64, msg string) ErrNo {
	return ErrNo{code, msg}
}

func (e ErrNo) WithMessage(msg string) ErrNo {
	e.ErrMsg = msg
	return e
}

var (
	Success                = NewErrNo(SuccessCode, "Success")
	ServiceErr             = NewErrNo(ServiceErrCode, "Service is unable to start successfully")
	ParamErr               = NewErrNo(ParamErrCode, "Wrong Parameter has been given")
	ValidationErr          = NewErrNo(ValidationErrCode, "Validation failed")
	AuthorizationFailedErr = NewErrNo(AuthorizationFailedErrCode, "Authorization failed")
	TokenInvailedErr       = NewErrNo(TokenInvailedErrCode, "Token is invalid or expired")
	TokenRevokedErr        = NewErrNo(TokenRevokedErrCode, "Token has been revoked")
	ForbiddenErr           = NewErrNo(ForbiddenErrCode, "You are not allowed to do this")
	UserAlreadyExistErr    = NewErrNo(UserAlreadyExistErrCode, "User already exists")
	UserNotExistErr        = NewErrNo(UserNotExistErrCode, "User does not exist")
	GifNotExistErr         = NewErrNo(GifNotExistErrCode, "Gif does not exist")
	FileTypeErr            = NewErrNo(FileTypeErrCode, "Unsupported file type")
	FileTooLargeErr        = NewErrNo(FileTooLargeErrCode, "File is too large")
	CommentNotExistErr     = NewErrNo(CommentNotExistErrCode, "Comment does not exist")
	CollectionNotExistErr  = NewErrNo(CollectionNotExistErrCode, "Collection does not exist")
	ConflictErr            = NewErrNo(ConflictErrCode, "Resource already exists")
	NotFoundErr            = NewErrNo(NotFoundErrCode, "Resource not found")
	TooManyRequestsErr     = NewErrNo(TooManyRequestsErrCode, "Too many requests, slow down")
	ServiceBusyErr         = NewErrNo(ServiceBusyErrCode, "Service is busy, try again later")
)

// ConvertErr convert error to Errno
func ConvertErr(err error) ErrNo {
	if err == nil {
		return Success
	}
	Err := ErrNo{}
	if errors.As(err, &Err) {
		return Err
	}

	s := ServiceErr
	s.ErrMsg = err.Error()
	return s
}

// HTTPStatus maps an ErrNo to the status code sent with the response envelope.
func HTTPStatus(e ErrNo) int {
	switch e.ErrCode {
	case SuccessCode:
		return http.StatusOK
	case ParamErrCode:
		return http.StatusBadRequest
	case ValidationErrCode, FileTypeErrCode:
		return http.StatusUnprocessableEntity
	case FileTooLargeErrCode:
		return http.StatusRequestEntityTooLarge
	case AuthorizationFailedErrCode, TokenInvailedErrCode, TokenRevokedErrCode:
		return http.StatusUnauthorized
	case ForbiddenErrCode:
		return http.StatusForbidden
	case UserNotExistErrCode, GifNotExistErrCode, CommentNotExistErrCode, CollectionNotExistErrCode, NotFoundErrCode:
		return http.StatusNotFound
	case UserAlreadyExistErrCode, ConflictErrCode:
		return http.StatusConflict
	case TooManyRequestsErrCode:
		return http.StatusTooManyRequests
	case ServiceBusyErrCode:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
