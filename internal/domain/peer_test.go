package domain

import (
	"errors"
	"net"
	"testing"
)

func TestParsePeerIdentity(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    PeerIdentity
		wantErr bool
	}{
		{"colon", "aa:bb:cc:dd:ee:ff", PeerIdentity{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, false},
		{"upper", "AA:BB:CC:00:11:22", PeerIdentity{0xaa, 0xbb, 0xcc, 0x00, 0x11, 0x22}, false},
		{"dash", "02-00-00-00-00-01", PeerIdentity{0x02, 0, 0, 0, 0, 0x01}, false},
		{"empty", "", PeerIdentity{}, true},
		{"garbage", "not-a-mac", PeerIdentity{}, true},
		{"too short", "aa:bb:cc:dd:ee", PeerIdentity{}, true},
		{"eui64", "aa:bb:cc:dd:ee:ff:00:11", PeerIdentity{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePeerIdentity(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePeerIdentity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPeer) {
				t.Errorf("error %v does not wrap ErrInvalidPeer", err)
			}
			if got != tt.want {
				t.Errorf("ParsePeerIdentity(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPeerIdentity_String(t *testing.T) {
	p := PeerIdentity{0x02, 0x1a, 0x2b, 0x3c, 0x4d, 0x5e}
	if got := p.String(); got != "02:1a:2b:3c:4d:5e" {
		t.Errorf("String() = %q", got)
	}
	if p.IsZero() {
		t.Error("IsZero() = true for non-zero address")
	}
	if !(PeerIdentity{}).IsZero() {
		t.Error("IsZero() = false for zero address")
	}
}

func TestPeerIdentityFromHardwareAddr(t *testing.T) {
	if _, err := PeerIdentityFromHardwareAddr(net.HardwareAddr{1, 2, 3}); !errors.Is(err, ErrInvalidPeer) {
		t.Errorf("error = %v, want ErrInvalidPeer", err)
	}
	p, err := PeerIdentityFromHardwareAddr(net.HardwareAddr{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if p != (PeerIdentity{1, 2, 3, 4, 5, 6}) {
		t.Errorf("got %v", p)
	}
}
