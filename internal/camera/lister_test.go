package camera

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/genricoloni/camrec/internal/domain"
	"go.uber.org/zap"
)

func writeNode(t *testing.T, root, id, name, index string) {
	t.Helper()
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if name != "" {
		_ = os.WriteFile(filepath.Join(dir, "name"), []byte(name+"\n"), 0644)
	}
	if index != "" {
		_ = os.WriteFile(filepath.Join(dir, "index"), []byte(index+"\n"), 0644)
	}
}

func TestSysfsLister_Devices(t *testing.T) {
	root := t.TempDir()
	writeNode(t, root, "video0", "Integrated Camera", "0")
	writeNode(t, root, "video1", "Integrated Camera", "1") // metadata node
	writeNode(t, root, "video2", "USB Capture", "0")
	writeNode(t, root, "video3", "", "")

	l := &SysfsLister{logger: zap.NewNop(), root: root, devRoot: "/dev", back: "/dev/video2"}
	devs, err := l.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}

	want := []domain.Device{
		{ID: "video0", Name: "Integrated Camera", Path: "/dev/video0", Position: domain.PositionExternal},
		{ID: "video2", Name: "USB Capture", Path: "/dev/video2", Position: domain.PositionBack},
		{ID: "video3", Name: "video3", Path: "/dev/video3", Position: domain.PositionExternal},
	}
	if len(devs) != len(want) {
		t.Fatalf("want %d devices, got %d: %+v", len(want), len(devs), devs)
	}
	for i := range want {
		if devs[i] != want[i] {
			t.Errorf("device %d: want %+v, got %+v", i, want[i], devs[i])
		}
	}

	back, ok := domain.BackDevice(devs)
	if !ok || back.ID != "video2" {
		t.Errorf("BackDevice: got %+v, %v", back, ok)
	}
}

func TestSysfsLister_NoDevices(t *testing.T) {
	l := &SysfsLister{logger: zap.NewNop(), root: t.TempDir(), devRoot: "/dev", back: "/dev/video0"}
	devs, err := l.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}
	if len(devs) != 0 {
		t.Errorf("want no devices, got %+v", devs)
	}
	if _, ok := domain.BackDevice(devs); ok {
		t.Error("BackDevice should report no back camera")
	}
}
