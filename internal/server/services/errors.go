package services

import "github.com/dmitrijs2005/simplog/internal/common"

var (
	ErrEmployeeNotFound   = common.NewError(common.ErrorNotFound, "employee not found")
	ErrEmployeeIDRequired = common.NewError(common.ErrorValidation, "employee id is required")
	ErrInvalidEmployeeID  = common.NewError(common.ErrorValidation, "employee id is not a valid uuid")
	ErrIdentityMismatch   = common.NewError(common.ErrorIdentityMismatch, "identifiers don't match")

	ErrUserNotFound      = common.NewError(common.ErrorNotFound, "user not found")
	ErrWrongCredentials  = common.NewError(common.ErrorUnauthorized, "wrong username or password")
	ErrDeleteCredentials = common.NewError(common.ErrorUnauthorized, "can't delete because of wrong username or password")
)

func required(field string) error {
	return common.NewError(common.ErrorValidation, field+" is required")
}
