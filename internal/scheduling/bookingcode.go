package scheduling

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// BookingCodePrefix returns "BK-<year>-", the prefix shared by a year's codes.
func BookingCodePrefix(year int) string {
	return fmt.Sprintf("%s-%04d-", domain.BookingCodePrefix, year)
}

// FormatBookingCode renders BK-<year>-<seq> with a zero-padded sequence.
func FormatBookingCode(year, seq int) string {
	return fmt.Sprintf("%s%0*d", BookingCodePrefix(year), domain.BookingCodeSeqDigits, seq)
}

// ParseBookingCode splits a code into year and sequence.
func ParseBookingCode(code string) (year, seq int, err error) {
	parts := strings.Split(code, "-")
	if len(parts) != 3 || parts[0] != domain.BookingCodePrefix || len(parts[1]) != 4 || len(parts[2]) < domain.BookingCodeSeqDigits {
		return 0, 0, &domain.ValidationError{Field: "bookingCode", Reason: domain.ReasonInvalidValue}
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, &domain.ValidationError{Field: "bookingCode", Reason: domain.ReasonInvalidValue}
	}
	seq, err = strconv.Atoi(parts[2])
	if err != nil || seq < 1 {
		return 0, 0, &domain.ValidationError{Field: "bookingCode", Reason: domain.ReasonInvalidValue}
	}
	return year, seq, nil
}

// NextBookingCode returns the code following maxSeq in year. A maxSeq of 0
// means the year has no codes yet and yields sequence 0001.
func NextBookingCode(year, maxSeq int) string {
	return FormatBookingCode(year, maxSeq+1)
}

// MaxSequence scans codes and returns the highest sequence used in year.
// Codes of other years and malformed codes are ignored.
func MaxSequence(codes []string, year int) int {
	prefix := BookingCodePrefix(year)
	maxSeq := 0
	for _, c := range codes {
		if !strings.HasPrefix(c, prefix) {
			continue
		}
		_, seq, err := ParseBookingCode(c)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq
}
