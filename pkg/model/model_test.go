package model

import (
	"errors"
	"os"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestCheckAccess(t *testing.T) {
	modes := []Mode{0, ModeRead, ModeWrite, ModeReadWrite}

	t.Run("ReadWriteAllowsEverything", func(t *testing.T) {
		for _, m := range modes {
			if err := CheckAccess(PermReadWrite, m); err != nil {
				t.Errorf("mode %s: unexpected error %v", m, err)
			}
		}
	})

	tests := []struct {
		name  string
		perm  Permission
		mode  Mode
		allow bool
	}{
		{"ro/read", PermReadOnly, ModeRead, true},
		{"ro/write", PermReadOnly, ModeWrite, false},
		{"ro/readwrite", PermReadOnly, ModeReadWrite, false},
		{"ro/none", PermReadOnly, 0, false},
		{"wo/read", PermWriteOnly, ModeRead, false},
		{"wo/write", PermWriteOnly, ModeWrite, true},
		{"wo/readwrite", PermWriteOnly, ModeReadWrite, false},
		{"wo/none", PermWriteOnly, 0, false},
		{"unknown/read", Permission(0x42), ModeRead, false},
		{"zero/readwrite", Permission(0), ModeReadWrite, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAccess(tt.perm, tt.mode)
			if tt.allow && err != nil {
				t.Errorf("expected allow, got %v", err)
			}
			if !tt.allow && !errors.Is(err, ErrPermissionDenied) {
				t.Errorf("expected ErrPermissionDenied, got %v", err)
			}
		})
	}
}

func TestPermissionNames(t *testing.T) {
	if PermReadOnly.String() != "RDONLY" || PermWriteOnly.String() != "WRONLY" || PermReadWrite.String() != "RDWR" {
		t.Errorf("unexpected names: %s %s %s", PermReadOnly, PermWriteOnly, PermReadWrite)
	}
	if got := Permission(0x42).String(); got != "Permission(0x42)" {
		t.Errorf("expected Permission(0x42), got %s", got)
	}

	for in, want := range map[string]Permission{
		"ro": PermReadOnly, "RDONLY": PermReadOnly,
		"wo": PermWriteOnly, "WriteOnly": PermWriteOnly,
		"rw": PermReadWrite, " rdwr ": PermReadWrite,
	} {
		got, err := ParsePermission(in)
		if err != nil || got != want {
			t.Errorf("ParsePermission(%q) = %s, %v; want %s", in, got, err, want)
		}
	}

	if _, err := ParsePermission("exec"); !errors.Is(err, ErrInvalidPermission) {
		t.Errorf("expected ErrInvalidPermission, got %v", err)
	}
}

func TestPermissionYAML(t *testing.T) {
	var v struct {
		Perm Permission `yaml:"perm"`
	}
	if err := yaml.Unmarshal([]byte("perm: wronly\n"), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.Perm != PermWriteOnly {
		t.Errorf("expected WRONLY, got %s", v.Perm)
	}

	out, err := yaml.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != "perm: wronly\n" {
		t.Errorf("unexpected YAML %q", out)
	}

	if err := yaml.Unmarshal([]byte("perm: bogus\n"), &v); !errors.Is(err, ErrInvalidPermission) {
		t.Errorf("expected ErrInvalidPermission, got %v", err)
	}
}

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"r", ModeRead},
		{"w", ModeWrite},
		{"rw", ModeReadWrite},
		{"WR", ModeReadWrite},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %s, %v; want %s", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseMode("x"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
	if Mode(0).String() != "-" {
		t.Errorf("expected -, got %s", Mode(0))
	}

	if ModeFromFlags(os.O_RDONLY) != ModeRead {
		t.Error("O_RDONLY should map to read")
	}
	if ModeFromFlags(os.O_WRONLY|os.O_APPEND) != ModeWrite {
		t.Error("O_WRONLY should map to write")
	}
	if ModeFromFlags(os.O_RDWR|os.O_CREATE) != ModeReadWrite {
		t.Error("O_RDWR should map to read/write")
	}
}

func TestNewDevice(t *testing.T) {
	dev, err := NewDevice(2, 16, "SN", PermReadWrite)
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	if dev.Minor() != 2 || dev.Size() != 16 || dev.Serial() != "SN" || dev.Permission() != PermReadWrite {
		t.Errorf("unexpected device %+v", dev.Info())
	}

	if _, err := NewDevice(0, -1, "SN", PermReadWrite); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
	if _, err := NewDevice(0, 1, "SN", Permission(3)); !errors.Is(err, ErrInvalidPermission) {
		t.Errorf("expected ErrInvalidPermission, got %v", err)
	}
}

func TestDeviceCopy(t *testing.T) {
	dev, _ := NewDevice(0, 8, "SN", PermReadWrite)

	n, err := dev.CopyIn(6, []byte("abcd"))
	if err != nil || n != 2 {
		t.Fatalf("CopyIn = %d, %v; want 2", n, err)
	}

	buf := make([]byte, 8)
	n, err = dev.CopyOut(4, buf)
	if err != nil || n != 4 {
		t.Fatalf("CopyOut = %d, %v; want 4", n, err)
	}
	if string(buf[:4]) != "\x00\x00ab" {
		t.Errorf("unexpected contents %q", buf[:4])
	}

	n, err = dev.CopyOut(8, buf)
	if err != nil || n != 0 {
		t.Errorf("CopyOut at end = %d, %v; want 0", n, err)
	}

	if _, err := dev.CopyOut(9, buf); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("expected ErrInvalidOffset, got %v", err)
	}
	if _, err := dev.CopyIn(-1, buf); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("expected ErrInvalidOffset, got %v", err)
	}
}

func TestDefaultTable(t *testing.T) {
	table := NewDefaultTable()

	if table.Len() != DefaultDeviceCount {
		t.Fatalf("expected %d devices, got %d", DefaultDeviceCount, table.Len())
	}

	wantPerms := []Permission{PermReadOnly, PermWriteOnly, PermReadWrite, PermReadWrite}
	for i, dev := range table.Devices() {
		if dev.Minor() != i {
			t.Errorf("device %d has minor %d", i, dev.Minor())
		}
		if dev.Size() != DefaultDeviceSize {
			t.Errorf("device %d has size %d", i, dev.Size())
		}
		if dev.Permission() != wantPerms[i] {
			t.Errorf("device %d has permission %s", i, dev.Permission())
		}
	}

	t.Run("Lookup", func(t *testing.T) {
		dev, err := table.Lookup(3)
		if err != nil {
			t.Fatalf("Lookup(3): %v", err)
		}
		if dev.Serial() != "PCDXYZ_4_Q" {
			t.Errorf("expected PCDXYZ_4_Q, got %s", dev.Serial())
		}
	})

	t.Run("LookupOutOfRange", func(t *testing.T) {
		for _, minor := range []int{-1, 4, 255} {
			if _, err := table.Lookup(minor); !errors.Is(err, ErrNoSuchDevice) {
				t.Errorf("Lookup(%d): expected ErrNoSuchDevice, got %v", minor, err)
			}
		}
	})

	t.Run("DevicesIsACopy", func(t *testing.T) {
		devs := table.Devices()
		devs[0] = nil
		if _, err := table.Lookup(0); err != nil {
			t.Errorf("table modified through Devices(): %v", err)
		}
	})
}

func TestNewTableErrors(t *testing.T) {
	_, err := NewTable(
		DeviceSpec{Size: 1, Serial: "A", Permission: PermReadOnly},
		DeviceSpec{Size: 1, Serial: "A", Permission: PermReadOnly},
	)
	if !errors.Is(err, ErrDuplicateSerial) {
		t.Errorf("expected ErrDuplicateSerial, got %v", err)
	}

	_, err = NewTable(DeviceSpec{Size: -5, Serial: "A", Permission: PermReadOnly})
	if !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}
