package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

// ErrTaskIDRequired indicates no task id was provided.
var ErrTaskIDRequired = errors.New("task id required")

// ParseTaskIDs parses one or more task ids from args.
// Each id must be a positive integer written in ASCII digits. Duplicates
// are dropped, keeping the first occurrence.
func ParseTaskIDs(args []string) ([]int64, error) {
	if len(args) == 0 {
		return nil, ErrTaskIDRequired
	}

	seen := make(map[int64]bool, len(args))
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		if !isAllDigits(arg) {
			return nil, fmt.Errorf("invalid task id: %s", arg)
		}
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("invalid task id: %s", arg)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
