package request

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// WireFormat serializes a Request to and from the 7-field comma-packed
// record named in spec.md §6, using the same plain-text codec style as
// internal/edgeio's NetFlow codec.
type WireFormat struct{}

const wireFieldCount = 7

// Encode renders r as "source,target,startFirst,startSecond,endFirst,endSecond,returnNode".
func (WireFormat) Encode(r Request) string {
	fields := []string{
		r.Source,
		r.Target,
		strconv.FormatFloat(r.StartTimeFirst, 'g', -1, 64),
		strconv.FormatFloat(r.StartTimeSecond, 'g', -1, 64),
		strconv.FormatFloat(r.EndTimeFirst, 'g', -1, 64),
		strconv.FormatFloat(r.EndTimeSecond, 'g', -1, 64),
		strconv.FormatUint(uint64(r.ReturnNode), 10),
	}
	return strings.Join(fields, ",")
}

// Decode parses a line produced by Encode back into a Request.
func (WireFormat) Decode(line string) (Request, error) {
	parts := strings.Split(line, ",")
	if len(parts) != wireFieldCount {
		return Request{}, errors.Errorf("request: expected %d wire fields, got %d", wireFieldCount, len(parts))
	}

	parseFloat := func(s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		return v, errors.Wrapf(err, "request: parsing %q", s)
	}

	startFirst, err := parseFloat(parts[2])
	if err != nil {
		return Request{}, err
	}
	startSecond, err := parseFloat(parts[3])
	if err != nil {
		return Request{}, err
	}
	endFirst, err := parseFloat(parts[4])
	if err != nil {
		return Request{}, err
	}
	endSecond, err := parseFloat(parts[5])
	if err != nil {
		return Request{}, err
	}
	returnNode, err := strconv.ParseUint(parts[6], 10, 32)
	if err != nil {
		return Request{}, errors.Wrapf(err, "request: parsing return node %q", parts[6])
	}

	return Request{
		Source:          parts[0],
		Target:          parts[1],
		StartTimeFirst:  startFirst,
		StartTimeSecond: startSecond,
		EndTimeFirst:    endFirst,
		EndTimeSecond:   endSecond,
		ReturnNode:      uint32(returnNode),
	}, nil
}
