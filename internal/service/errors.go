package service

import "errors"

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to order")
	ErrInvalidDelivery    = errors.New("invalid delivery details")
	ErrTotalMismatch      = errors.New("total amount does not match cart contents")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidFilter      = errors.New("invalid product filter")
	ErrInvalidSignUp      = errors.New("invalid sign up request")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
