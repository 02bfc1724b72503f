package resp

import "errors"

// ErrInvalidDecimal is returned by ParseDecimal when the byte run is not a
// valid signed base-10 i64: empty input, a lone sign, a non-digit byte, a
// leading zero on a multi-digit number, or a magnitude outside int64 range.
var ErrInvalidDecimal = errors.New("resp: invalid decimal byte run")

// ParseDecimal parses a non-empty ASCII byte run into an int64. It accepts an
// optional leading '-' and rejects leading zeros on anything but the literal
// "0". Unlike strconv.ParseInt, it never tolerates a leading zero on a
// multi-digit number, since the wire protocol treats that as malformed.
func ParseDecimal(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, ErrInvalidDecimal
	}

	if len(b) == 1 && b[0] == '0' {
		return 0, nil
	}

	start := 0
	negative := false

	if b[0] == '-' {
		if len(b) == 1 {
			return 0, ErrInvalidDecimal
		}
		start = 1
		negative = true
	}

	if b[start] == '0' {
		return 0, ErrInvalidDecimal
	}

	var result uint64
	for _, c := range b[start:] {
		if c < '0' || c > '9' {
			return 0, ErrInvalidDecimal
		}
		// Past this point another digit would exceed 2^63, the largest
		// magnitude either sign accepts, and could wrap the accumulator.
		if result > (uint64(1)<<63)/10 {
			return 0, ErrInvalidDecimal
		}
		result = result*10 + uint64(c-'0')
	}

	if negative {
		// -(math.MinInt64) overflows int64, so compare against its uint64 form.
		if result > uint64(1)<<63 {
			return 0, ErrInvalidDecimal
		}
		return -int64(result), nil
	}

	if result > uint64(1)<<63-1 {
		return 0, ErrInvalidDecimal
	}

	return int64(result), nil
}

// FormatDecimal renders n as standard base-10 ASCII, using a leading '-' for
// negative values and no leading zeros.
func FormatDecimal(n int64) []byte {
	if n == 0 {
		return []byte("0")
	}

	negative := n < 0

	// Avoid overflowing on math.MinInt64 by working in uint64 from the start.
	var u uint64
	if negative {
		u = uint64(-(n + 1)) + 1
	} else {
		u = uint64(n)
	}

	var buf [20]byte
	i := len(buf)
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}

	if negative {
		i--
		buf[i] = '-'
	}

	out := make([]byte, len(buf)-i)
	copy(out, buf[i:])
	return out
}
