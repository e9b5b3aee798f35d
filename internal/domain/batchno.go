package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Batch numbers follow the pattern PERIOD-MODEL-PROCESS-SEQ where SEQ
// is a zero padded three digit counter scoped to the period.

// PeriodKey derives the period segment of a batch number from the
// given instant, e.g. "AUG25" for August 2025. Time is taken in UTC.
func PeriodKey(t time.Time) string {
	return strings.ToUpper(t.UTC().Format("Jan06"))
}

// NextBatchNumber allocates the next batch number for the given period,
// model and process codes. The sequence counter continues across all
// model and process combinations within the same period: only the
// period segment of existing numbers is matched when finding the
// current maximum. Numbers with fewer than four segments or a
// non-numeric trailing segment are ignored.
func NextBatchNumber(existing []string, periodKey, modelCode, processCode string) string {
	maxSeq := 0
	for _, number := range existing {
		parts := strings.Split(number, "-")
		if len(parts) < 4 {
			continue
		}
		if parts[0] != periodKey {
			continue
		}
		seq, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("%s-%s-%s-%03d", periodKey, modelCode, processCode, maxSeq+1)
}
