package blocks

import "errors"

// Configuration errors returned by the Validate methods. Constructors panic
// with an error wrapping one of these.
var (
	// ErrInvalidChannels means a channel count is not positive.
	ErrInvalidChannels = errors.New("blocks: channel count must be positive")

	// ErrIndivisibleChannels means a channel count does not divide evenly
	// by the branch count or reduction ratio.
	ErrIndivisibleChannels = errors.New("blocks: channel count is not divisible")

	// ErrInvalidKernel means a kernel or pool size is not a positive odd number.
	ErrInvalidKernel = errors.New("blocks: kernel size must be positive and odd")

	// ErrInvalidStride means the stride is not supported by the block.
	ErrInvalidStride = errors.New("blocks: unsupported stride")
)

// must panics with err when it is not nil.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
