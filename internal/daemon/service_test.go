package daemon

import (
	"strings"
	"testing"
)

func TestGenerateService(t *testing.T) {
	cfg := ServiceConfig{
		BinaryPath:       "/usr/local/bin/earshot",
		DataDir:          "/home/u/.local/share/earshot",
		LogPath:          "/home/u/.local/share/earshot/logs",
		WorkingDirectory: "/home/u",
	}

	tests := []struct {
		manager ServiceManager
		want    []string
	}{
		{Launchd, []string{
			"<string>com.earshot.daemon</string>",
			"<string>/usr/local/bin/earshot</string>",
			"<string>/home/u/.local/share/earshot</string>",
			"/home/u/.local/share/earshot/logs/earshot.log",
		}},
		{Systemd, []string{
			"ExecStart=/usr/local/bin/earshot daemon --data-dir /home/u/.local/share/earshot",
			"WorkingDirectory=/home/u",
			"WantedBy=default.target",
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.manager), func(t *testing.T) {
			out, err := GenerateService(tt.manager, cfg)
			if err != nil {
				t.Fatalf("GenerateService() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestGenerateService_UnknownManager(t *testing.T) {
	if _, err := GenerateService("upstart", ServiceConfig{}); err == nil {
		t.Error("expected error for unknown manager")
	}
}

func TestManagerFor(t *testing.T) {
	if m, err := ManagerFor("darwin"); err != nil || m != Launchd {
		t.Errorf("ManagerFor(darwin) = %v, %v", m, err)
	}
	if m, err := ManagerFor("linux"); err != nil || m != Systemd {
		t.Errorf("ManagerFor(linux) = %v, %v", m, err)
	}
	if _, err := ManagerFor("windows"); err == nil {
		t.Error("ManagerFor(windows) should fail")
	}
}
