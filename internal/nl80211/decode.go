package nl80211

import (
	"time"

	"github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"

	"github.com/bft-labs/qosship/pkg/qos"
)

// option is an attribute value that the kernel may or may not have sent.
type option[T any] struct {
	value T
	ok    bool
}

func some[T any](v T) option[T] { return option[T]{value: v, ok: true} }

// orZero returns the value if present and T's zero value otherwise.
func (o option[T]) orZero() T {
	if !o.ok {
		var zero T
		return zero
	}
	return o.value
}

// stationInfo holds the NL80211_STA_INFO_* attributes qosship samples.
type stationInfo struct {
	signal    option[int8]
	txPackets option[uint32]
	txRetries option[uint32]
	txFailed  option[uint32]
}

func (si stationInfo) sample(now time.Time) qos.Sample {
	return qos.Sample{
		TimestampNs: uint64(now.UnixNano()),
		RSSIdBm:     int32(si.signal.orZero()),
		TxOK:        si.txPackets.orZero(),
		TxRetry:     si.txRetries.orZero(),
		TxFail:      si.txFailed.orZero(),
	}
}

// DecodeStation decodes the attribute payload of an nl80211 message.
//
// It reports ok == false with a nil error when the message has no
// NL80211_ATTR_STA_INFO container; most nl80211 traffic is unrelated to
// station statistics. Attributes missing from the container leave their
// sample field at zero. A malformed attribute stream yields an error and
// no sample.
func DecodeStation(b []byte, now time.Time) (s qos.Sample, ok bool, err error) {
	ad, err := netlink.NewAttributeDecoder(b)
	if err != nil {
		return qos.Sample{}, false, err
	}

	var (
		info  stationInfo
		found bool
	)
	for ad.Next() {
		if ad.Type() != unix.NL80211_ATTR_STA_INFO {
			continue
		}
		found = true
		ad.Nested(func(nad *netlink.AttributeDecoder) error {
			info = parseStationInfo(nad)
			return nad.Err()
		})
	}
	if err := ad.Err(); err != nil {
		return qos.Sample{}, false, err
	}
	if !found {
		return qos.Sample{}, false, nil
	}

	return info.sample(now), true, nil
}

func parseStationInfo(ad *netlink.AttributeDecoder) stationInfo {
	var info stationInfo
	for ad.Next() {
		switch ad.Type() {
		case unix.NL80211_STA_INFO_SIGNAL:
			// u8 on the wire, but the value is a signed dBm.
			info.signal = some(int8(ad.Uint8()))
		case unix.NL80211_STA_INFO_TX_PACKETS:
			info.txPackets = some(ad.Uint32())
		case unix.NL80211_STA_INFO_TX_RETRIES:
			info.txRetries = some(ad.Uint32())
		case unix.NL80211_STA_INFO_TX_FAILED:
			info.txFailed = some(ad.Uint32())
		}
	}
	return info
}
