package nl80211

import (
	"errors"
	"fmt"

	"github.com/mdlayher/genetlink"
	"github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"

	"github.com/bft-labs/qosship/internal/domain"
)

// ErrNotAssociated is returned when the interface has no associated BSS.
var ErrNotAssociated = errors.New("nl80211: interface not associated")

// AssociatedBSS returns the BSSID the interface is currently associated
// with. It uses its own short-lived connection so that the dump does not
// interleave with multicast traffic on the long-lived Session socket.
func AssociatedBSS(ifindex int) (domain.PeerIdentity, error) {
	conn, err := genetlink.Dial(nil)
	if err != nil {
		return domain.PeerIdentity{}, fmt.Errorf("%w: %w", domain.ErrConnect, err)
	}
	defer conn.Close()

	family, err := conn.GetFamily(unix.NL80211_GENL_NAME)
	if err != nil {
		return domain.PeerIdentity{}, fmt.Errorf("%w: %w", domain.ErrFamilyUnavailable, err)
	}

	return associatedBSS(conn, family, ifindex)
}

func associatedBSS(conn *genetlink.Conn, family genetlink.Family, ifindex int) (domain.PeerIdentity, error) {
	ae := netlink.NewAttributeEncoder()
	ae.Uint32(unix.NL80211_ATTR_IFINDEX, uint32(ifindex))
	b, err := ae.Encode()
	if err != nil {
		return domain.PeerIdentity{}, err
	}

	msgs, err := conn.Execute(
		genetlink.Message{
			Header: genetlink.Header{
				Command: unix.NL80211_CMD_GET_SCAN,
				Version: family.Version,
			},
			Data: b,
		},
		family.ID,
		netlink.Request|netlink.Dump,
	)
	if err != nil {
		return domain.PeerIdentity{}, err
	}

	for _, m := range msgs {
		peer, ok, err := parseAssociatedBSS(m.Data)
		if err != nil {
			return domain.PeerIdentity{}, err
		}
		if ok {
			return peer, nil
		}
	}
	return domain.PeerIdentity{}, ErrNotAssociated
}

// parseAssociatedBSS reports the BSSID of a scan result whose status is
// associated.
func parseAssociatedBSS(b []byte) (domain.PeerIdentity, bool, error) {
	ad, err := netlink.NewAttributeDecoder(b)
	if err != nil {
		return domain.PeerIdentity{}, false, err
	}

	var (
		bssid      []byte
		associated bool
	)
	for ad.Next() {
		if ad.Type() != unix.NL80211_ATTR_BSS {
			continue
		}
		ad.Nested(func(nad *netlink.AttributeDecoder) error {
			for nad.Next() {
				switch nad.Type() {
				case unix.NL80211_BSS_BSSID:
					bssid = nad.Bytes()
				case unix.NL80211_BSS_STATUS:
					associated = nad.Uint32() == unix.NL80211_BSS_STATUS_ASSOCIATED
				}
			}
			return nad.Err()
		})
	}
	if err := ad.Err(); err != nil {
		return domain.PeerIdentity{}, false, err
	}
	if !associated || bssid == nil {
		return domain.PeerIdentity{}, false, nil
	}

	peer, err := domain.PeerIdentityFromHardwareAddr(bssid)
	if err != nil {
		return domain.PeerIdentity{}, false, err
	}
	return peer, true, nil
}
