package service

import "errors"

var ErrTenantNotFound = errors.New("tenant not found")
var ErrSubdomainTaken = errors.New("subdomain already exists")
var ErrEmptySettingKey = errors.New("empty setting key")
var ErrInvalidAssetType = errors.New("invalid asset type")

type sentinelError struct {
	msg      string
	sentinel error
}

func (e sentinelError) Error() string {
	return e.msg
}

func (e sentinelError) Unwrap() error {
	return e.sentinel
}

func wrapSentinel(msg string, sentinel error) error {
	return sentinelError{msg: msg, sentinel: sentinel}
}
