package lib

import "errors"

var (
	ErrInvalidKernelShape = errors.New("kernel must be a square matrix with odd size")
	ErrUnrecognizedMedia  = errors.New("file type not recognized as image or video")
	ErrDecodeFailed       = errors.New("decode failed")
	ErrEncodeFailed       = errors.New("encode failed")
	ErrEncoderUnavailable = errors.New("video encoder unavailable")
)
