package monitor

import (
	"fmt"
	"strconv"
	"strings"
)

// coreGroup is one parsed target definition before registration.
type coreGroup struct {
	desc  string
	cores []int
}

// parseList parses a comma-separated list of non-negative integers,
// with a-b ranges expanded in place.
func parseList(s string) ([]int, error) {
	var out []int
	for _, elem := range strings.Split(s, ",") {
		elem = strings.TrimSpace(elem)
		if elem == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(elem, "-")
		start, err := strconv.Atoi(lo)
		if err != nil || start < 0 {
			return nil, fmt.Errorf("%q: invalid number", elem)
		}
		end := start
		if isRange {
			end, err = strconv.Atoi(hi)
			if err != nil || end < start {
				return nil, fmt.Errorf("%q: invalid range", elem)
			}
		}
		for v := start; v <= end; v++ {
			out = append(out, v)
		}
	}
	return out, nil
}

// parseCoreSpec breaks a core spec body into an ordered sequence of
// target definitions. Bare integers (and expanded ranges) become
// singleton groups whose descriptor is the decimal text; bracketed
// lists become one group covering all listed cores, with the raw
// bracket contents as descriptor.
func parseCoreSpec(body string) ([]coreGroup, error) {
	var groups []coreGroup
	s := body
	for s != "" {
		switch {
		case s[0] == ',':
			s = s[1:]
		case s[0] == '[':
			end := strings.IndexByte(s, ']')
			if end < 0 {
				return nil, fmt.Errorf("%q: unterminated core group", body)
			}
			raw := s[1:end]
			cores, err := parseList(raw)
			if err != nil {
				return nil, err
			}
			if len(cores) == 0 {
				return nil, fmt.Errorf("%q: empty core group", body)
			}
			groups = append(groups, coreGroup{desc: raw, cores: cores})
			s = s[end+1:]
		default:
			i := strings.IndexAny(s, ",[")
			elem := s
			if i >= 0 {
				elem, s = s[:i], s[i:]
			} else {
				s = ""
			}
			ids, err := parseList(elem)
			if err != nil {
				return nil, err
			}
			for _, id := range ids {
				groups = append(groups, coreGroup{desc: strconv.Itoa(id), cores: []int{id}})
			}
		}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%q: no cores selected for monitoring", body)
	}
	return groups, nil
}
