package types

// Bit layout of a packed Timestamp.
const (
	TimestampYearMask  uint16 = 0b1111111000000000
	TimestampMonthMask uint16 = 0b0000000111100000
	TimestampDayMask   uint16 = 0b0000000000011111
)

// Timestamp is the packed last-edit date stored in record and group headers.
// Values are not validated against a calendar.
type Timestamp struct {
	Year  uint8 `yaml:"year" cbor:"1,keyasint"`
	Month uint8 `yaml:"month" cbor:"2,keyasint"`
	Day   uint8 `yaml:"day" cbor:"3,keyasint"`
}

// TimestampFromUint16 unpacks a wire value. Every bit pattern is accepted.
func TimestampFromUint16(v uint16) Timestamp {
	return Timestamp{
		Year:  uint8((v & TimestampYearMask) >> 9),
		Month: uint8((v & TimestampMonthMask) >> 5),
		Day:   uint8(v & TimestampDayMask),
	}
}

// Uint16 packs the timestamp. Members wider than their bit field are masked.
func (t Timestamp) Uint16() uint16 {
	year := (uint16(t.Year) << 9) & TimestampYearMask
	month := (uint16(t.Month) << 5) & TimestampMonthMask
	day := uint16(t.Day) & TimestampDayMask
	return year | month | day
}
