package http1

import (
	"bytes"
	"fmt"

	"github.com/indigo-web/h1client/errors"
	"github.com/indigo-web/h1client/internal/hexconv"
)

// maxChunkLengthDigits limits a single chunk length to what uint64 can hold. Leading
// zeros don't count.
const maxChunkLengthDigits = 16

// ParseChunkSize parses the chunk size line (without CRLF). Chunk extensions are
// ignored, as none of them is supported.
func ParseChunkSize(line []byte) (uint64, error) {
	digits, _, _ := bytes.Cut(line, []byte(";"))
	digits = bytes.Trim(digits, " \t")
	if len(digits) == 0 {
		return 0, fmt.Errorf("%w: %q", errors.ErrMalformedChunkSize, line)
	}

	if significant := bytes.TrimLeft(digits, "0"); len(significant) > 0 {
		digits = significant
	} else {
		digits = digits[len(digits)-1:]
	}

	if len(digits) > maxChunkLengthDigits {
		return 0, fmt.Errorf("%w: %q", errors.ErrMalformedChunkSize, line)
	}

	var size uint64
	for _, char := range digits {
		if !hexconv.Is(char) {
			return 0, fmt.Errorf("%w: %q", errors.ErrMalformedChunkSize, line)
		}

		size = (size << 4) | uint64(hexconv.Halfbyte[char])
	}

	return size, nil
}
