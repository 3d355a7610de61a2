package shipping

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// SnapshotFormatVersion is the only persisted layout this build understands
const SnapshotFormatVersion uint16 = 1

// ShipPlan is one persisted table entry
type ShipPlan struct {
	Ship shared.ShipID
	Plan Plan
}

// Snapshot is the scheduler's persisted state. Ships are kept in ascending
// id order so equal tables encode to equal bytes.
type Snapshot struct {
	Version      uint16
	LastUpdate   shared.Time
	LastExactETA shared.Time
	Ships        []ShipPlan
}

// Snapshot captures the scheduler's table and timestamps
func (s *Scheduler) Snapshot() Snapshot {
	snap := Snapshot{
		Version:      SnapshotFormatVersion,
		LastUpdate:   s.lastUpdate,
		LastExactETA: s.lastExactETA,
	}
	for _, id := range s.table.Ships() {
		plan, _ := s.table.Plan(id)
		snap.Ships = append(snap.Ships, ShipPlan{Ship: id, Plan: plan})
	}
	return snap
}

// Resolve checks every persisted id against the live objects. Nothing may be
// scheduled from a snapshot that does not resolve.
func (snap Snapshot) Resolve(live Liveness) error {
	for _, sp := range snap.Ships {
		if !live.ShipAlive(sp.Ship) {
			return shared.NewUnresolvedReferenceError("ship", uint32(sp.Ship))
		}
		for _, stop := range sp.Plan {
			if !live.PortAlive(stop.Port) {
				return shared.NewUnresolvedReferenceError("port", uint32(stop.Port))
			}
			for _, l := range stop.Loads {
				if !live.PortAlive(l.Destination) {
					return shared.NewUnresolvedReferenceError("port", uint32(l.Destination))
				}
			}
		}
	}
	return nil
}

// Restore replaces the scheduler's state with a resolved snapshot. Ships of
// the fleet missing from the snapshot get an empty plan. Destinations are
// steered toward the restored head stops.
func (s *Scheduler) Restore(snap Snapshot, live Liveness) error {
	if snap.Version != SnapshotFormatVersion {
		return shared.NewUnknownFormatVersionError(snap.Version)
	}
	if err := snap.Resolve(live); err != nil {
		return err
	}

	s.table = NewTable()
	s.pending = make(map[shared.ShipID]bool)
	s.lastUpdate = snap.LastUpdate
	s.lastExactETA = snap.LastExactETA
	for _, id := range s.fleet.Ships() {
		s.table.set(id, nil)
	}
	for _, sp := range snap.Ships {
		s.setPlan(sp.Ship, sp.Plan.Clone())
	}
	return nil
}

// MarshalBinary encodes the snapshot in the persisted layout
func (snap Snapshot) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a snapshot written by MarshalBinary
func (snap *Snapshot) UnmarshalBinary(data []byte) error {
	decoded, err := DecodeSnapshot(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*snap = decoded
	return nil
}

// EncodeSnapshot writes the persisted layout, little endian: format version
// (u16), last update (i64), last exact ETA (i64), ship count (u32), then per
// ship its id (u32) and stop count (u32), and per stop the port (u32),
// duration (i64), expedition flag (u8), load count (u32) and the
// (destination u32, quantity u32) pairs.
func EncodeSnapshot(w io.Writer, snap Snapshot) error {
	bw := bufio.NewWriter(w)
	e := &encoder{w: bw}

	e.put(snap.Version)
	e.put(int64(snap.LastUpdate))
	e.put(int64(snap.LastExactETA))
	e.put(uint32(len(snap.Ships)))
	for _, sp := range snap.Ships {
		e.put(uint32(sp.Ship))
		e.put(uint32(len(sp.Plan)))
		for _, stop := range sp.Plan {
			e.put(uint32(stop.Port))
			e.put(int64(stop.DurationFromPrevious))
			var flag uint8
			if stop.IsExpedition() {
				flag = 1
			}
			e.put(flag)
			e.put(uint32(len(stop.Loads)))
			for _, l := range stop.Loads {
				e.put(uint32(l.Destination))
				e.put(uint32(l.Quantity))
			}
		}
	}
	if e.err != nil {
		return fmt.Errorf("failed to encode schedule snapshot: %w", e.err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to encode schedule snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot reads the persisted layout. An unknown format version is
// reported as *shared.UnknownFormatVersionError before anything else is read.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	d := &decoder{r: bufio.NewReader(r)}
	var snap Snapshot

	d.get(&snap.Version)
	if d.err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode schedule snapshot: %w", d.err)
	}
	if snap.Version != SnapshotFormatVersion {
		return Snapshot{}, shared.NewUnknownFormatVersionError(snap.Version)
	}

	var lastUpdate, lastExact int64
	var shipCount uint32
	d.get(&lastUpdate)
	d.get(&lastExact)
	d.get(&shipCount)
	snap.LastUpdate = shared.Time(lastUpdate)
	snap.LastExactETA = shared.Time(lastExact)

	for i := uint32(0); i < shipCount && d.err == nil; i++ {
		var shipID, stopCount uint32
		d.get(&shipID)
		d.get(&stopCount)
		sp := ShipPlan{Ship: shared.ShipID(shipID)}
		for j := uint32(0); j < stopCount && d.err == nil; j++ {
			var port, loadCount uint32
			var duration int64
			var flag uint8
			d.get(&port)
			d.get(&duration)
			d.get(&flag)
			d.get(&loadCount)

			stop := NewCargoStop(shared.PortID(port), shared.Duration(duration))
			if flag == 1 {
				stop = NewExpeditionStop(shared.PortID(port), shared.Duration(duration))
			}
			for k := uint32(0); k < loadCount && d.err == nil; k++ {
				var dest, qty uint32
				d.get(&dest)
				d.get(&qty)
				stop.Loads = append(stop.Loads, Load{Destination: shared.PortID(dest), Quantity: int(qty)})
			}
			sp.Plan = append(sp.Plan, stop)
		}
		snap.Ships = append(snap.Ships, sp)
	}
	if d.err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode schedule snapshot: %w", d.err)
	}
	return snap, nil
}

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) put(v any) {
	if e.err == nil {
		e.err = binary.Write(e.w, binary.LittleEndian, v)
	}
}

type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) get(v any) {
	if d.err == nil {
		d.err = binary.Read(d.r, binary.LittleEndian, v)
	}
}
