// Package edgeio converts between the wire representation of a tuple
// and internal/edge.Edge. The canonical wire format is the 19-field
// comma-separated NetFlow record from the VAST dataset, grounded on
// original_source/SamSrc/Netflow.hpp's makeNetflow; callers with a
// different tuple shape implement Serializer/Deserializer directly
// rather than going through this codec.
package edgeio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/dreamware/samgraph/internal/edge"
)

// Field indices within a NetFlow record, named after Netflow.hpp's
// macros.
const (
	TimeSecondsField           = 0
	ParseDateField             = 1
	DateTimeStrField           = 2
	IPLayerProtocolField       = 3
	IPLayerProtocolCodeField   = 4
	SourceIPField              = 5
	DestIPField                = 6
	SourcePortField            = 7
	DestPortField              = 8
	MoreFragmentsField         = 9
	CountFragmentsField        = 10
	DurationSecondsField       = 11
	SrcPayloadBytesField       = 12
	DestPayloadBytesField      = 13
	SrcTotalBytesField         = 14
	DestTotalBytesField        = 15
	FirstSeenSrcPacketCount  = 16
	FirstSeenDestPacketCount = 17
	RecordForceOutField      = 18

	numFields = 19
)

// Serializer renders an edge to its wire form.
type Serializer interface {
	Serialize(e edge.Edge) (string, error)
}

// Deserializer parses a wire-format line into an edge, stamping samID as
// the edge's SamID — the "first field stripped and replaced by the
// receiver's sam id" contract from spec.md §6.
type Deserializer interface {
	Deserialize(line string, samID uint64) (edge.Edge, error)
}

// NetFlowCodec is the default Serializer/Deserializer, reading and
// writing the 19-field comma-separated NetFlow record.
type NetFlowCodec struct{}

var _ Serializer = NetFlowCodec{}
var _ Deserializer = NetFlowCodec{}

// Serialize renders e back to a 19-field NetFlow line. Fields beyond
// Source/Target/StartTime/Duration are taken from e.Fields by name, each
// defaulting to its zero value when absent — this codec is lossy for
// tuple payloads that were never round-tripped through it.
func (NetFlowCodec) Serialize(e edge.Edge) (string, error) {
	get := func(name string) string {
		if f, ok := e.Fields[name]; ok {
			return fmt.Sprintf("%v", f.Value)
		}
		return ""
	}

	fields := make([]string, numFields)
	fields[TimeSecondsField] = strconv.FormatFloat(e.StartTime, 'f', -1, 64)
	fields[ParseDateField] = get("parsed_date")
	fields[DateTimeStrField] = get("date_time_str")
	fields[IPLayerProtocolField] = get("ip_layer_protocol")
	fields[IPLayerProtocolCodeField] = get("ip_layer_protocol_code")
	fields[SourceIPField] = e.Source
	fields[DestIPField] = e.Target
	fields[SourcePortField] = get("source_port")
	fields[DestPortField] = get("dest_port")
	fields[MoreFragmentsField] = get("more_fragments")
	fields[CountFragmentsField] = get("cont_fragments")
	fields[DurationSecondsField] = strconv.FormatFloat(e.Duration, 'f', -1, 64)
	fields[SrcPayloadBytesField] = get("src_payload_bytes")
	fields[DestPayloadBytesField] = get("dest_payload_bytes")
	fields[SrcTotalBytesField] = get("src_total_bytes")
	fields[DestTotalBytesField] = get("dest_total_bytes")
	fields[FirstSeenSrcPacketCount] = get("src_packet_count")
	fields[FirstSeenDestPacketCount] = get("dest_packet_count")
	fields[RecordForceOutField] = get("record_force_out")

	return strings.Join(fields, ","), nil
}

// Deserialize parses line into an Edge, mirroring makeNetflow's
// positional tokenizer. samID becomes the Edge's SamID, discarding
// whatever sam id (if any) the wire line itself carried — a node never
// trusts a remote sam id, per the Glossary's "Sam id" entry.
func (NetFlowCodec) Deserialize(line string, samID uint64) (edge.Edge, error) {
	parts := strings.Split(line, ",")
	if len(parts) != numFields {
		return edge.Edge{}, errors.Errorf("edgeio: expected %d fields, got %d", numFields, len(parts))
	}

	startTime, err := strconv.ParseFloat(parts[TimeSecondsField], 64)
	if err != nil {
		return edge.Edge{}, errors.Wrap(err, "edgeio: parsing time seconds field")
	}
	duration, err := strconv.ParseFloat(parts[DurationSecondsField], 64)
	if err != nil {
		return edge.Edge{}, errors.Wrap(err, "edgeio: parsing duration field")
	}

	e := edge.Edge{
		Source:    parts[SourceIPField],
		Target:    parts[DestIPField],
		StartTime: startTime,
		Duration:  duration,
		SamID:     samID,
		Fields: map[string]edge.Field{
			"parsed_date":            {Value: parts[ParseDateField]},
			"date_time_str":          {Value: parts[DateTimeStrField]},
			"ip_layer_protocol":      {Value: parts[IPLayerProtocolField]},
			"ip_layer_protocol_code": {Value: parts[IPLayerProtocolCodeField]},
			"source_port":            {Value: parts[SourcePortField]},
			"dest_port":              {Value: parts[DestPortField]},
			"more_fragments":         {Value: parts[MoreFragmentsField]},
			"cont_fragments":         {Value: parts[CountFragmentsField]},
			"src_payload_bytes":      {Value: parts[SrcPayloadBytesField]},
			"dest_payload_bytes":     {Value: parts[DestPayloadBytesField]},
			"src_total_bytes":        {Value: parts[SrcTotalBytesField]},
			"dest_total_bytes":       {Value: parts[DestTotalBytesField]},
			"src_packet_count":       {Value: parts[FirstSeenSrcPacketCount]},
			"dest_packet_count":      {Value: parts[FirstSeenDestPacketCount]},
			"record_force_out":       {Value: parts[RecordForceOutField]},
		},
	}
	return e, nil
}
