package daemon

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// ServiceLabel identifies the daemon to the service manager
const ServiceLabel = "com.earshot.daemon"

// ServiceManager is a per-user service supervisor
type ServiceManager string

const (
	Launchd ServiceManager = "launchd" // macOS LaunchAgents
	Systemd ServiceManager = "systemd" // systemd --user units
)

// ManagerFor returns the service manager used on goos
func ManagerFor(goos string) (ServiceManager, error) {
	switch goos {
	case "darwin":
		return Launchd, nil
	case "linux":
		return Systemd, nil
	default:
		return "", fmt.Errorf("background service is not supported on %s", goos)
	}
}

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label}}</string>
	<key>ProgramArguments</key>
	<array>
		<string>{{.BinaryPath}}</string>
		<string>daemon</string>
		<string>--data-dir</string>
		<string>{{.DataDir}}</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
	<key>StandardOutPath</key>
	<string>{{.LogPath}}/earshot.log</string>
	<key>StandardErrorPath</key>
	<string>{{.LogPath}}/earshot.err</string>
	<key>WorkingDirectory</key>
	<string>{{.WorkingDirectory}}</string>
</dict>
</plist>
`

const systemdTemplate = `[Unit]
Description=earshot recognition queue daemon
After=network-online.target

[Service]
Type=simple
ExecStart={{.BinaryPath}} daemon --data-dir {{.DataDir}} --log-file {{.LogPath}}/earshot.log
WorkingDirectory={{.WorkingDirectory}}
Restart=on-failure
RestartSec=10

[Install]
WantedBy=default.target
`

// ServiceConfig holds the values substituted into a service definition
type ServiceConfig struct {
	Label            string
	BinaryPath       string
	DataDir          string
	LogPath          string
	WorkingDirectory string
}

// GenerateService renders the service definition for manager
func GenerateService(manager ServiceManager, config ServiceConfig) (string, error) {
	if config.Label == "" {
		config.Label = ServiceLabel
	}

	var text string
	switch manager {
	case Launchd:
		text = plistTemplate
	case Systemd:
		text = systemdTemplate
	default:
		return "", fmt.Errorf("unknown service manager %q", manager)
	}

	tmpl, err := template.New(string(manager)).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse service template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, config); err != nil {
		return "", fmt.Errorf("failed to execute service template: %w", err)
	}

	return buf.String(), nil
}

// ServicePath returns where the service definition is installed
func ServicePath(manager ServiceManager) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	switch manager {
	case Launchd:
		return filepath.Join(home, "Library", "LaunchAgents", ServiceLabel+".plist"), nil
	case Systemd:
		return filepath.Join(home, ".config", "systemd", "user", "earshot.service"), nil
	default:
		return "", fmt.Errorf("unknown service manager %q", manager)
	}
}

// DefaultDataDir returns where the queue, library and recordings live
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "earshot"), nil
}
