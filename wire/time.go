package wire

import (
	"net/netip"
	"time"

	"github.com/google/uuid"
)

const secondsPerDay = 24 * 60 * 60

// MaxDateTime64Precision is the largest number of sub-second digits of a
// DateTime64 value.
const MaxDateTime64Precision = 9

var pow10 = [MaxDateTime64Precision + 1]int64{
	1, 10, 100, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9,
}

// Date reads an unsigned 16 bit number of days since the epoch.
func Date(b []byte, off int) (time.Time, int, bool) {
	days, next, ok := Uint16(b, off)
	if !ok {
		return time.Time{}, off, false
	}
	return time.Unix(int64(days)*secondsPerDay, 0).UTC(), next, true
}

// Date32 reads a signed 32 bit number of days since the epoch.
func Date32(b []byte, off int) (time.Time, int, bool) {
	days, next, ok := Int32(b, off)
	if !ok {
		return time.Time{}, off, false
	}
	return time.Unix(int64(days)*secondsPerDay, 0).UTC(), next, true
}

// DateTime reads an unsigned 32 bit number of seconds since the epoch and
// returns it in loc.
func DateTime(b []byte, off int, loc *time.Location) (time.Time, int, bool) {
	sec, next, ok := Uint32(b, off)
	if !ok {
		return time.Time{}, off, false
	}
	return time.Unix(int64(sec), 0).In(loc), next, true
}

// DateTime64 reads a signed 64 bit number of ticks since the epoch, each tick
// being 10^-precision seconds, and returns it in loc. The precision must be in
// the range [0:MaxDateTime64Precision].
func DateTime64(b []byte, off, precision int, loc *time.Location) (time.Time, int, bool) {
	ticks, next, ok := Int64(b, off)
	if !ok {
		return time.Time{}, off, false
	}
	scale := pow10[precision]
	sec, frac := ticks/scale, ticks%scale
	return time.Unix(sec, frac*pow10[MaxDateTime64Precision-precision]).In(loc), next, true
}

// UUID reads two little-endian 64 bit halves, the high half first.
func UUID(b []byte, off int) (uuid.UUID, int, bool) {
	var id uuid.UUID
	if !fits(b, off, 16) {
		return id, off, false
	}
	for i := range 8 {
		id[i] = b[off+7-i]
		id[8+i] = b[off+15-i]
	}
	return id, off + 16, true
}

// IPv4 reads an address stored as a little-endian unsigned 32 bit integer.
func IPv4(b []byte, off int) (netip.Addr, int, bool) {
	if !fits(b, off, 4) {
		return netip.Addr{}, off, false
	}
	return netip.AddrFrom4([4]byte{b[off+3], b[off+2], b[off+1], b[off]}), off + 4, true
}

// IPv6 reads an address stored as 16 bytes in network order.
func IPv6(b []byte, off int) (netip.Addr, int, bool) {
	if !fits(b, off, 16) {
		return netip.Addr{}, off, false
	}
	return netip.AddrFrom16([16]byte(b[off : off+16])), off + 16, true
}
