// Package sfd reads and writes the persisted depot-queue descriptor (.sfd).
//
// The descriptor is line-oriented text: the first line is the app id, followed
// by repeating four-line depot records (depot id, manifest id, hex-encoded
// depot key, base64-encoded raw manifest payload), terminated by a literal
// "EndOfFile" line. Record order is significant: it drives override precedence
// during aggregation and must round-trip exactly.
package sfd

import (
	"bufio"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"github.com/pssteam/steamfetch/internal/common"
)

// Sentinel terminates the record list of a queue descriptor.
const Sentinel = "EndOfFile"

// maxLine bounds a single descriptor line. Base64 manifest payloads are the
// largest lines; real depot manifests stay well under this.
const maxLine = 256 << 20

// DepotRecord is one queued depot: its identity, decryption key and the raw
// manifest payload captured when the queue was built. Immutable after load.
type DepotRecord struct {
	DepotID    uint32
	ManifestID uint64
	Key        []byte
	Payload    []byte
}

// Queue is the ordered list of depots selected for one download session.
type Queue struct {
	AppID  uint32
	Depots []DepotRecord
}

// Parse reads a queue descriptor. Any malformation (truncated record, bad
// number, bad key or payload encoding, duplicated depot id, missing sentinel)
// fails the whole load; callers must not keep a partial queue.
func Parse(r io.Reader) (*Queue, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	line, ok := nextLine(sc)
	if !ok {
		return nil, fmt.Errorf("%w: missing app id", common.ErrMalformedDescriptor)
	}
	appID, err := parseUint32(line)
	if err != nil {
		return nil, fmt.Errorf("%w: app id %q", common.ErrMalformedDescriptor, line)
	}

	q := &Queue{AppID: appID}
	seen := make(map[uint32]struct{})

	for {
		line, ok = nextLine(sc)
		if !ok {
			return nil, fmt.Errorf("%w: missing %q sentinel", common.ErrMalformedDescriptor, Sentinel)
		}
		if line == Sentinel {
			break
		}

		depotID, err := parseUint32(line)
		if err != nil {
			return nil, fmt.Errorf("%w: depot id %q", common.ErrMalformedDescriptor, line)
		}
		if _, dup := seen[depotID]; dup {
			return nil, fmt.Errorf("%w: %d", common.ErrDuplicateDepot, depotID)
		}
		seen[depotID] = struct{}{}

		rest := make([]string, 3)
		for i := range rest {
			rest[i], ok = nextLine(sc)
			if !ok {
				return nil, fmt.Errorf("%w: truncated record for depot %d",
					common.ErrMalformedDescriptor, depotID)
			}
		}

		manifestID, err := strconv.ParseUint(rest[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: manifest id %q", common.ErrMalformedDescriptor, rest[0])
		}
		key, err := hex.DecodeString(rest[1])
		if err != nil {
			return nil, fmt.Errorf("%w: depot %d key: %v", common.ErrMalformedDescriptor, depotID, err)
		}
		payload, err := base64.StdEncoding.DecodeString(rest[2])
		if err != nil {
			return nil, fmt.Errorf("%w: depot %d payload: %v", common.ErrMalformedDescriptor, depotID, err)
		}

		q.Depots = append(q.Depots, DepotRecord{
			DepotID:    depotID,
			ManifestID: manifestID,
			Key:        key,
			Payload:    payload,
		})
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedDescriptor, err)
	}
	return q, nil
}

// Write serializes q in its current depot order followed by the sentinel.
// It is the exact inverse of Parse.
func Write(w io.Writer, q *Queue) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%d\n", q.AppID)
	for _, d := range q.Depots {
		fmt.Fprintf(bw, "%d\n", d.DepotID)
		fmt.Fprintf(bw, "%d\n", d.ManifestID)
		fmt.Fprintf(bw, "%s\n", hex.EncodeToString(d.Key))
		fmt.Fprintf(bw, "%s\n", base64.StdEncoding.EncodeToString(d.Payload))
	}
	fmt.Fprintf(bw, "%s\n", Sentinel)

	return bw.Flush()
}

func nextLine(sc *bufio.Scanner) (string, bool) {
	if !sc.Scan() {
		return "", false
	}
	return sc.Text(), true
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}
