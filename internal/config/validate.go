package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, c.validateHardware()...)
	errs = append(errs, c.validateNetwork()...)
	errs = append(errs, c.validateStorage()...)

	if c.CloudInit.User == "" {
		errs = append(errs, errors.New("cloudinit.user is required"))
	}
	if c.CloudInit.IPConfig == "" {
		errs = append(errs, errors.New("cloudinit.ipconfig0 is required"))
	}

	if c.IsRemote() {
		if c.Remote.Port <= 0 || c.Remote.Port > 65535 {
			errs = append(errs, fmt.Errorf("remote.port %d is out of range", c.Remote.Port))
		}
		if c.Remote.User == "" {
			errs = append(errs, errors.New("remote.user is required when remote.host is set"))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) validateHardware() []error {
	var errs []error
	hw := c.Hardware

	if hw.OSType == "" {
		errs = append(errs, errors.New("hardware.ostype is required"))
	}
	if hw.Memory < 16 {
		errs = append(errs, fmt.Errorf("hardware.memory must be at least 16 MiB, got %d", hw.Memory))
	}
	if hw.CPU == "" {
		errs = append(errs, errors.New("hardware.cpu is required"))
	}
	if hw.Sockets < 1 {
		errs = append(errs, fmt.Errorf("hardware.sockets must be positive, got %d", hw.Sockets))
	}
	if hw.Cores < 1 {
		errs = append(errs, fmt.Errorf("hardware.cores must be positive, got %d", hw.Cores))
	}
	if hw.VGA == "" {
		errs = append(errs, errors.New("hardware.vga is required"))
	}
	if hw.Serial0 == "" {
		errs = append(errs, errors.New("hardware.serial0 is required"))
	}
	return errs
}

func (c *Config) validateNetwork() []error {
	var errs []error

	if c.Network.Model == "" {
		errs = append(errs, errors.New("network.model is required"))
	}
	if c.Network.Bridge == "" {
		errs = append(errs, errors.New("network.bridge is required"))
	}
	// 0 disables tagging; 4095 is reserved.
	if c.Network.VLANTag < 0 || c.Network.VLANTag > 4094 {
		errs = append(errs, fmt.Errorf("network.vlan_tag must be between 0 and 4094, got %d", c.Network.VLANTag))
	}
	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	if c.Storage.DiskStorage == "" {
		errs = append(errs, errors.New("storage.disk_storage is required"))
	}
	if c.Storage.SCSIHW == "" {
		errs = append(errs, errors.New("storage.scsihw is required"))
	}
	if c.Storage.SnippetStorage == "" {
		errs = append(errs, errors.New("storage.snippet_storage is required"))
	}
	if !filepath.IsAbs(c.Storage.SnippetsDir) {
		errs = append(errs, fmt.Errorf("storage.snippets_dir must be an absolute path, got %q", c.Storage.SnippetsDir))
	}
	return errs
}
